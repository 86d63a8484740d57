package entity

import "time"

// MovementType tipo de movimiento del ledger.
type MovementType string

// Tipos de movimiento. Todo cambio de Quantity produce exactamente un
// movimiento; las reservas no mueven stock físico y por eso no registran.
const (
	MovementInitial          = MovementType("INITIAL")
	MovementRestock          = MovementType("RESTOCK")
	MovementAdjustmentAdd    = MovementType("ADJUSTMENT_ADD")
	MovementAdjustmentRemove = MovementType("ADJUSTMENT_REMOVE")
	MovementSale             = MovementType("SALE")
	MovementSaleCancel       = MovementType("SALE_CANCEL")
	MovementServiceUse       = MovementType("SERVICE_USE")
	MovementTransferOut      = MovementType("TRANSFER_OUT")
	MovementTransferIn       = MovementType("TRANSFER_IN")
)

// ReferenceKind clase de entidad externa que originó un movimiento.
type ReferenceKind string

const (
	RefSalesOrder   = ReferenceKind("sales_order")
	RefServiceOrder = ReferenceKind("service_order")
	RefTransfer     = ReferenceKind("stock_transfer")
)

// MovementReference apunta a la orden o traslado que disparó el movimiento.
// El ledger lo almacena pero nunca lo desreferencia; el esquema de órdenes
// pertenece a otros servicios.
type MovementReference struct {
	Kind ReferenceKind
	ID   string
}

// StockMovement es una entrada inmutable del historial de movimientos.
// Se crea exactamente una por operación que muta un StockRecord, dentro de la
// misma transacción, y nunca se actualiza ni se borra.
type StockMovement struct {
	ID            string
	StockRecordID string
	ProductID     string
	BranchID      string
	Type          MovementType
	OldQuantity   int64
	NewQuantity   int64
	Reference     *MovementReference
	Reason        string
	Notes         string
	PerformedBy   string
	CreatedAt     time.Time
}
