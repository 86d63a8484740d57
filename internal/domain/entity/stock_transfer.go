package entity

import "time"

// TransferStatus estado de un traslado entre sucursales.
type TransferStatus string

const (
	TransferPending   = TransferStatus("pending")
	TransferInTransit = TransferStatus("in_transit")
	TransferCompleted = TransferStatus("completed")
	TransferCancelled = TransferStatus("cancelled")
)

// StockTransfer mueve una cantidad fija de un producto entre dos sucursales.
// Nace en pending con la reserva ya tomada en el origen; termina en completed
// (origen descontado, destino acreditado) o cancelled (reserva liberada).
// Invariante: FromBranchID != ToBranchID.
type StockTransfer struct {
	ID           string
	ProductID    string
	FromBranchID string
	ToBranchID   string
	Quantity     int64
	Status       TransferStatus
	InitiatedBy  string
	ApprovedBy   string
	ReceivedBy   string
	Notes        string
	ShippedAt    *time.Time
	ReceivedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
