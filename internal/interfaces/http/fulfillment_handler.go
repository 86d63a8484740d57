package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/StockLedger-api/internal/application/dto"
	"github.com/jhoicas/StockLedger-api/internal/application/fulfillment"
)

// FulfillmentHandler expone el contrato de fulfillment a los procesadores de
// órdenes (ventas y servicios). El flujo esperado es reserve al crear la
// orden y complete o cancel al liquidarla.
type FulfillmentHandler struct {
	uc *fulfillment.UseCase
}

// NewFulfillmentHandler construye el handler.
func NewFulfillmentHandler(uc *fulfillment.UseCase) *FulfillmentHandler {
	return &FulfillmentHandler{uc: uc}
}

// Reserve godoc
// @Summary      Reservar stock para una línea de orden
// @Tags         fulfillment
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.FulfillmentRequest  true  "product_id, branch_id, quantity"
// @Success      200  {object}  dto.StockRecordResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/fulfillment/reserve [post]
func (h *FulfillmentHandler) Reserve(c *fiber.Ctx) error {
	var in dto.FulfillmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	record, err := h.uc.ReserveForOrder(c.Context(), in.ProductID, in.BranchID, in.Quantity)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NewStockRecordResponse(record))
}

// Complete godoc
// @Summary      Liquidar una orden completada
// @Description  Descuenta el stock reservado registrando SALE o SERVICE_USE
//
//	con la referencia de la orden.
//
// @Tags         fulfillment
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.FulfillmentRequest  true  "product_id, branch_id, quantity, order_kind, order_id"
// @Success      200  {object}  dto.StockRecordResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/fulfillment/complete [post]
func (h *FulfillmentHandler) Complete(c *fiber.Ctx) error {
	var in dto.FulfillmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	record, err := h.uc.SettleOrderCompletion(c.Context(), settleInput(c, in))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NewStockRecordResponse(record))
}

// Cancel godoc
// @Summary      Liquidar una orden cancelada
// @Description  Libera la retención y deja una entrada SALE_CANCEL con la
//
//	referencia de la orden (sin cambio de cantidad física).
//
// @Tags         fulfillment
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.FulfillmentRequest  true  "product_id, branch_id, quantity, order_kind, order_id"
// @Success      200  {object}  dto.StockRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/fulfillment/cancel [post]
func (h *FulfillmentHandler) Cancel(c *fiber.Ctx) error {
	var in dto.FulfillmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	record, err := h.uc.SettleOrderCancellation(c.Context(), settleInput(c, in))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NewStockRecordResponse(record))
}

func settleInput(c *fiber.Ctx, in dto.FulfillmentRequest) fulfillment.SettleInput {
	return fulfillment.SettleInput{
		ProductID:   in.ProductID,
		BranchID:    in.BranchID,
		Quantity:    in.Quantity,
		OrderKind:   fulfillment.OrderKind(in.OrderKind),
		OrderID:     in.OrderID,
		Notes:       in.Notes,
		PerformedBy: GetUserID(c),
	}
}
