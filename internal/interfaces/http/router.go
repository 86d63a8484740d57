package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/StockLedger-api/internal/application/fulfillment"
	"github.com/jhoicas/StockLedger-api/internal/application/ledger"
	"github.com/jhoicas/StockLedger-api/internal/application/lowstock"
	apptransfer "github.com/jhoicas/StockLedger-api/internal/application/transfer"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC       *ledger.UseCase
	TransferUC     *apptransfer.UseCase
	FulfillmentUC  *fulfillment.UseCase
	LowStockUC     *lowstock.UseCase
	MovementReport MovementReportGenerator
	JWTSecret      string
}

// Router registra las rutas de la API. Todo el ledger va protegido con
// Bearer Token; las mutaciones de stock además exigen rol de bodega.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	warehouse := RequireRole("admin", "bodeguero")

	// Stock ledger (protegido)
	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.LedgerUC, deps.LowStockUC)
	movementHandler := NewMovementHandler(deps.LedgerUC, deps.MovementReport)
	stock.Post("/restock", warehouse, stockHandler.Restock)
	stock.Post("/adjust", warehouse, stockHandler.Adjust)
	stock.Get("/low", stockHandler.LowStock)
	stock.Get("/movements", movementHandler.List)
	stock.Get("/movements/export", movementHandler.Export)
	stock.Get("/:productId/:branchId", stockHandler.Get)

	// Traslados entre sucursales (protegido)
	transfers := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.TransferUC)
	transfers.Post("/", warehouse, transferHandler.Create)
	transfers.Post("/:id/advance", warehouse, transferHandler.Advance)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Get("/", transferHandler.List)

	// Fulfillment (protegido; lo consumen los procesadores de órdenes)
	ff := protected.Group("/fulfillment")
	fulfillmentHandler := NewFulfillmentHandler(deps.FulfillmentUC)
	ff.Post("/reserve", fulfillmentHandler.Reserve)
	ff.Post("/complete", fulfillmentHandler.Complete)
	ff.Post("/cancel", fulfillmentHandler.Cancel)
}
