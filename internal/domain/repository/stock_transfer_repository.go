package repository

import "github.com/jhoicas/StockLedger-api/internal/domain/entity"

// TransferFilter criterios para listar traslados.
type TransferFilter struct {
	ProductID    string
	FromBranchID string
	ToBranchID   string
	Status       entity.TransferStatus
	Limit        int
	Offset       int
}

// StockTransferRepository puerto de persistencia de traslados entre sucursales.
type StockTransferRepository interface {
	Create(transfer *entity.StockTransfer) error
	// GetForUpdate bloquea la fila del traslado para evitar dos transiciones
	// concurrentes sobre el mismo traslado. Devuelve nil si no existe.
	GetForUpdate(id string) (*entity.StockTransfer, error)
	GetByID(id string) (*entity.StockTransfer, error)
	Update(transfer *entity.StockTransfer) error
	List(filter TransferFilter) ([]*entity.StockTransfer, error)
}
