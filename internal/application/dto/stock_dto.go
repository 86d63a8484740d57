package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/StockLedger-api/internal/domain/entity"
)

// RestockRequest body para POST /api/stock/restock.
// Los campos opcionales solo sobreescriben el metadato si vienen presentes.
type RestockRequest struct {
	ProductID       string           `json:"product_id"`
	BranchID        string           `json:"branch_id"`
	Quantity        int64            `json:"quantity"`
	CostPrice       *decimal.Decimal `json:"cost_price,omitempty"`
	SellingPrice    *decimal.Decimal `json:"selling_price,omitempty"`
	ReorderPoint    *int64           `json:"reorder_point,omitempty"`
	ReorderQuantity *int64           `json:"reorder_quantity,omitempty"`
	SupplierID      *string          `json:"supplier_id,omitempty"`
	Location        *string          `json:"location,omitempty"`
	Notes           string           `json:"notes,omitempty"`
}

// AdjustRequest body para POST /api/stock/adjust. Reason es obligatorio.
type AdjustRequest struct {
	ProductID string `json:"product_id"`
	BranchID  string `json:"branch_id"`
	Delta     int64  `json:"delta"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes,omitempty"`
}

// StockRecordResponse representación HTTP de una fila del ledger.
type StockRecordResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	BranchID          string          `json:"branch_id"`
	Quantity          int64           `json:"quantity"`
	ReservedQuantity  int64           `json:"reserved_quantity"`
	AvailableQuantity int64           `json:"available_quantity"`
	Status            string          `json:"status"`
	CostPrice         decimal.Decimal `json:"cost_price"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	ReorderPoint      int64           `json:"reorder_point"`
	ReorderQuantity   int64           `json:"reorder_quantity"`
	SupplierID        *string         `json:"supplier_id,omitempty"`
	Location          string          `json:"location,omitempty"`
	LastRestockedAt   *time.Time      `json:"last_restocked_at,omitempty"`
	LastRestockedBy   string          `json:"last_restocked_by,omitempty"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// NewStockRecordResponse arma la respuesta con los campos derivados.
func NewStockRecordResponse(rec *entity.StockRecord) StockRecordResponse {
	return StockRecordResponse{
		ID:                rec.ID,
		ProductID:         rec.ProductID,
		BranchID:          rec.BranchID,
		Quantity:          rec.Quantity,
		ReservedQuantity:  rec.ReservedQuantity,
		AvailableQuantity: rec.Available(),
		Status:            string(rec.Status()),
		CostPrice:         rec.CostPrice,
		SellingPrice:      rec.SellingPrice,
		ReorderPoint:      rec.ReorderPoint,
		ReorderQuantity:   rec.ReorderQuantity,
		SupplierID:        rec.SupplierID,
		Location:          rec.Location,
		LastRestockedAt:   rec.LastRestockedAt,
		LastRestockedBy:   rec.LastRestockedBy,
		UpdatedAt:         rec.UpdatedAt,
	}
}

// MovementResponse representación HTTP de una entrada del historial.
type MovementResponse struct {
	ID            string     `json:"id"`
	StockRecordID string     `json:"stock_record_id"`
	ProductID     string     `json:"product_id"`
	BranchID      string     `json:"branch_id"`
	Type          string     `json:"type"`
	OldQuantity   int64      `json:"old_quantity"`
	NewQuantity   int64      `json:"new_quantity"`
	ReferenceKind string     `json:"reference_kind,omitempty"`
	ReferenceID   string     `json:"reference_id,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	PerformedBy   string     `json:"performed_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewMovementResponse arma la respuesta de un movimiento.
func NewMovementResponse(m *entity.StockMovement) MovementResponse {
	out := MovementResponse{
		ID:            m.ID,
		StockRecordID: m.StockRecordID,
		ProductID:     m.ProductID,
		BranchID:      m.BranchID,
		Type:          string(m.Type),
		OldQuantity:   m.OldQuantity,
		NewQuantity:   m.NewQuantity,
		Reason:        m.Reason,
		Notes:         m.Notes,
		PerformedBy:   m.PerformedBy,
		CreatedAt:     m.CreatedAt,
	}
	if m.Reference != nil {
		out.ReferenceKind = string(m.Reference.Kind)
		out.ReferenceID = m.Reference.ID
	}
	return out
}

// LowStockItem sugerencia de reposición para un registro bajo punto de reorden.
type LowStockItem struct {
	ProductID         string `json:"product_id"`
	BranchID          string `json:"branch_id"`
	Quantity          int64  `json:"quantity"`
	ReservedQuantity  int64  `json:"reserved_quantity"`
	AvailableQuantity int64  `json:"available_quantity"`
	ReorderPoint      int64  `json:"reorder_point"`
	SuggestedQuantity int64  `json:"suggested_quantity"`
	Status            string `json:"status"`
}
