package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/StockLedger-api/internal/application/dto"
	apptransfer "github.com/jhoicas/StockLedger-api/internal/application/transfer"
	"github.com/jhoicas/StockLedger-api/internal/domain/entity"
	"github.com/jhoicas/StockLedger-api/internal/domain/repository"
)

// TransferHandler maneja las peticiones HTTP de traslados (protegido).
type TransferHandler struct {
	uc *apptransfer.UseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *apptransfer.UseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

// Create godoc
// @Summary      Crear un traslado entre sucursales
// @Description  Retiene la cantidad en la sucursal origen y crea el traslado
//
//	en pending. Si el disponible no alcanza no queda nada creado.
//
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "product_id, from_branch_id, to_branch_id, quantity"
// @Success      201  {object}  dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	tr, err := h.uc.Create(c.Context(), apptransfer.CreateInput{
		ProductID:    in.ProductID,
		FromBranchID: in.FromBranchID,
		ToBranchID:   in.ToBranchID,
		Quantity:     in.Quantity,
		Notes:        in.Notes,
		InitiatedBy:  GetUserID(c),
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransferResponse(tr))
}

// Advance godoc
// @Summary      Avanzar el estado de un traslado
// @Description  Transiciones válidas: pending→in_transit, pending→cancelled,
//
//	in_transit→completed, in_transit→cancelled. Completar descuenta
//	origen y acredita destino; cancelar libera la retención.
//
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del traslado"
// @Param        body  body  dto.AdvanceTransferRequest  true  "target_status"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/advance [post]
func (h *TransferHandler) Advance(c *fiber.Ctx) error {
	var in dto.AdvanceTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	tr, err := h.uc.Advance(c.Context(), apptransfer.AdvanceInput{
		TransferID:   c.Params("id"),
		TargetStatus: entity.TransferStatus(in.TargetStatus),
		ActorID:      GetUserID(c),
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NewTransferResponse(tr))
}

// GetByID godoc
// @Summary      Consultar un traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	tr, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NewTransferResponse(tr))
}

// List godoc
// @Summary      Listar traslados
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        product_id      query  string  false  "Filtrar por producto"
// @Param        from_branch_id  query  string  false  "Filtrar por sucursal origen"
// @Param        to_branch_id    query  string  false  "Filtrar por sucursal destino"
// @Param        status          query  string  false  "Filtrar por estado"
// @Success      200  {array}  dto.TransferResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	transfers, err := h.uc.List(c.Context(), repository.TransferFilter{
		ProductID:    c.Query("product_id"),
		FromBranchID: c.Query("from_branch_id"),
		ToBranchID:   c.Query("to_branch_id"),
		Status:       entity.TransferStatus(c.Query("status")),
		Limit:        page.Limit,
		Offset:       page.Offset,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.TransferResponse, 0, len(transfers))
	for _, tr := range transfers {
		out = append(out, dto.NewTransferResponse(tr))
	}
	return c.JSON(fiber.Map{"total": len(out), "transfers": out})
}
