package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus estado derivado de un registro de stock.
type StockStatus string

const (
	StockStatusOut = StockStatus("out_of_stock")
	StockStatusLow = StockStatus("low_stock")
	StockStatusIn  = StockStatus("in_stock")
)

// StockRecord es la fila del ledger: una por par (producto, sucursal).
// Quantity y ReservedQuantity solo se modifican a través del protocolo de
// reservas (Reserve/Release/Deduct/Restock/Adjust); nunca por aritmética
// directa fuera de él. Invariante: 0 <= ReservedQuantity <= Quantity.
type StockRecord struct {
	ID               string
	ProductID        string
	BranchID         string
	Quantity         int64
	ReservedQuantity int64
	CostPrice        decimal.Decimal
	SellingPrice     decimal.Decimal
	ReorderPoint     int64
	ReorderQuantity  int64
	SupplierID       *string
	Location         string
	LastRestockedAt  *time.Time
	LastRestockedBy  string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Available devuelve la cantidad libre para nuevas reservas.
func (s *StockRecord) Available() int64 {
	return s.Quantity - s.ReservedQuantity
}

// Status deriva el estado según cantidad y punto de reorden.
func (s *StockRecord) Status() StockStatus {
	switch {
	case s.Quantity == 0:
		return StockStatusOut
	case s.Quantity <= s.ReorderPoint:
		return StockStatusLow
	default:
		return StockStatusIn
	}
}
