package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/StockLedger-api/internal/application/dto"
	"github.com/jhoicas/StockLedger-api/internal/application/ledger"
	"github.com/jhoicas/StockLedger-api/internal/application/lowstock"
)

// StockHandler maneja las peticiones HTTP del ledger de stock (protegido).
type StockHandler struct {
	uc       *ledger.UseCase
	lowStock *lowstock.UseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *ledger.UseCase, lowStock *lowstock.UseCase) *StockHandler {
	return &StockHandler{uc: uc, lowStock: lowStock}
}

// Get godoc
// @Summary      Consultar stock de un producto en una sucursal
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Param        branchId   path  string  true  "ID de la sucursal"
// @Success      200  {object}  dto.StockRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId}/{branchId} [get]
func (h *StockHandler) Get(c *fiber.Ctx) error {
	record, err := h.uc.Get(c.Context(), c.Params("productId"), c.Params("branchId"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NewStockRecordResponse(record))
}

// Restock godoc
// @Summary      Ingresar stock físico
// @Description  Suma cantidad al registro; lo crea en cero si es la primera
//
//	vez que se ve el par (producto, sucursal). Los campos de precio,
//	reorden, proveedor y ubicación solo se sobreescriben si vienen.
//
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RestockRequest  true  "product_id, branch_id, quantity y metadatos opcionales"
// @Success      201  {object}  dto.StockRecordResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/restock [post]
func (h *StockHandler) Restock(c *fiber.Ctx) error {
	var in dto.RestockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	record, err := h.uc.Restock(c.Context(), ledger.RestockInput{
		ProductID:       in.ProductID,
		BranchID:        in.BranchID,
		Quantity:        in.Quantity,
		CostPrice:       in.CostPrice,
		SellingPrice:    in.SellingPrice,
		ReorderPoint:    in.ReorderPoint,
		ReorderQuantity: in.ReorderQuantity,
		SupplierID:      in.SupplierID,
		Location:        in.Location,
		Notes:           in.Notes,
		PerformedBy:     GetUserID(c),
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewStockRecordResponse(record))
}

// Adjust godoc
// @Summary      Ajustar la existencia por delta
// @Description  Corrige la cantidad en existencia. Un delta negativo mayor
//
//	que la existencia recorta en cero; el motivo es obligatorio.
//
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustRequest  true  "product_id, branch_id, delta, reason"
// @Success      200  {object}  dto.StockRecordResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/adjust [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	record, err := h.uc.Adjust(c.Context(), ledger.AdjustInput{
		ProductID:   in.ProductID,
		BranchID:    in.BranchID,
		Delta:       in.Delta,
		Reason:      in.Reason,
		Notes:       in.Notes,
		PerformedBy: GetUserID(c),
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NewStockRecordResponse(record))
}

// LowStock godoc
// @Summary      Lista de registros bajo punto de reorden
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Filtrar por sucursal. Vacío = todas."
// @Success      200  {array}  dto.LowStockItem
// @Router       /api/stock/low [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	items, err := h.lowStock.List(c.Context(), c.Query("branch_id"), page.Limit, page.Offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(items), "items": items})
}
