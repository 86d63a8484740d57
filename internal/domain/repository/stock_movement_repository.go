package repository

import (
	"time"

	"github.com/jhoicas/StockLedger-api/internal/domain/entity"
)

// MovementFilter criterios para consultar el historial de movimientos.
type MovementFilter struct {
	ProductID string
	BranchID  string
	Types     []entity.MovementType
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// StockMovementRepository puerto de persistencia del historial de movimientos.
// Append-only: no expone Update ni Delete; las entradas son inmutables.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	List(filter MovementFilter) ([]*entity.StockMovement, error)
}
