package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/StockLedger-api/internal/application/dto"
	"github.com/jhoicas/StockLedger-api/internal/application/ledger"
	"github.com/jhoicas/StockLedger-api/internal/domain/entity"
	"github.com/jhoicas/StockLedger-api/internal/domain/repository"
)

// MovementReportGenerator genera el PDF del historial filtrado.
type MovementReportGenerator interface {
	Generate(filter repository.MovementFilter, movements []*entity.StockMovement) ([]byte, error)
}

// MovementHandler maneja las consultas del historial de movimientos (protegido).
type MovementHandler struct {
	uc     *ledger.UseCase
	report MovementReportGenerator
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *ledger.UseCase, report MovementReportGenerator) *MovementHandler {
	return &MovementHandler{uc: uc, report: report}
}

// List godoc
// @Summary      Consultar historial de movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        branch_id   query  string  false  "Filtrar por sucursal"
// @Param        type        query  string  false  "Filtrar por tipo de movimiento"
// @Param        from        query  string  false  "Desde (RFC3339)"
// @Param        to          query  string  false  "Hasta (RFC3339)"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	filter, err := movementFilterFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: err.Error()})
	}
	movements, err := h.uc.GetMovementHistory(c.Context(), filter)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.NewMovementResponse(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// Export godoc
// @Summary      Exportar historial de movimientos a PDF
// @Tags         movements
// @Security     Bearer
// @Produce      application/pdf
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        branch_id   query  string  false  "Filtrar por sucursal"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/movements/export [get]
func (h *MovementHandler) Export(c *fiber.Ctx) error {
	filter, err := movementFilterFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: err.Error()})
	}
	movements, err := h.uc.GetMovementHistory(c.Context(), filter)
	if err != nil {
		return respondDomainError(c, err)
	}
	pdfBytes, err := h.report.Generate(filter, movements)
	if err != nil {
		return respondDomainError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="movimientos.pdf"`)
	return c.Send(pdfBytes)
}

func movementFilterFromQuery(c *fiber.Ctx) (repository.MovementFilter, error) {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return repository.MovementFilter{}, err
	}
	page.DefaultPage()
	filter := repository.MovementFilter{
		ProductID: c.Query("product_id"),
		BranchID:  c.Query("branch_id"),
		Limit:     page.Limit,
		Offset:    page.Offset,
	}
	if t := c.Query("type"); t != "" {
		filter.Types = []entity.MovementType{entity.MovementType(t)}
	}
	if from := c.Query("from"); from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return repository.MovementFilter{}, err
		}
		filter.From = &parsed
	}
	if to := c.Query("to"); to != "" {
		parsed, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return repository.MovementFilter{}, err
		}
		filter.To = &parsed
	}
	return filter, nil
}
