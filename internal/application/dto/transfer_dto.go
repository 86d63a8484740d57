package dto

import (
	"time"

	"github.com/jhoicas/StockLedger-api/internal/domain/entity"
)

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	ProductID    string `json:"product_id"`
	FromBranchID string `json:"from_branch_id"`
	ToBranchID   string `json:"to_branch_id"`
	Quantity     int64  `json:"quantity"`
	Notes        string `json:"notes,omitempty"`
}

// AdvanceTransferRequest body para POST /api/transfers/:id/advance.
type AdvanceTransferRequest struct {
	TargetStatus string `json:"target_status"`
}

// TransferResponse representación HTTP de un traslado.
type TransferResponse struct {
	ID           string     `json:"id"`
	ProductID    string     `json:"product_id"`
	FromBranchID string     `json:"from_branch_id"`
	ToBranchID   string     `json:"to_branch_id"`
	Quantity     int64      `json:"quantity"`
	Status       string     `json:"status"`
	InitiatedBy  string     `json:"initiated_by,omitempty"`
	ApprovedBy   string     `json:"approved_by,omitempty"`
	ReceivedBy   string     `json:"received_by,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	ShippedAt    *time.Time `json:"shipped_at,omitempty"`
	ReceivedAt   *time.Time `json:"received_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewTransferResponse arma la respuesta de un traslado.
func NewTransferResponse(tr *entity.StockTransfer) TransferResponse {
	return TransferResponse{
		ID:           tr.ID,
		ProductID:    tr.ProductID,
		FromBranchID: tr.FromBranchID,
		ToBranchID:   tr.ToBranchID,
		Quantity:     tr.Quantity,
		Status:       string(tr.Status),
		InitiatedBy:  tr.InitiatedBy,
		ApprovedBy:   tr.ApprovedBy,
		ReceivedBy:   tr.ReceivedBy,
		Notes:        tr.Notes,
		ShippedAt:    tr.ShippedAt,
		ReceivedAt:   tr.ReceivedAt,
		CreatedAt:    tr.CreatedAt,
		UpdatedAt:    tr.UpdatedAt,
	}
}

// FulfillmentRequest body para los endpoints de fulfillment (reserve,
// complete y cancel). OrderKind y OrderID solo aplican a complete/cancel.
type FulfillmentRequest struct {
	ProductID string `json:"product_id"`
	BranchID  string `json:"branch_id"`
	Quantity  int64  `json:"quantity"`
	OrderKind string `json:"order_kind,omitempty"`
	OrderID   string `json:"order_id,omitempty"`
	Notes     string `json:"notes,omitempty"`
}
