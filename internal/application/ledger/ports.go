package ledger

import (
	"context"

	"github.com/jhoicas/StockLedger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad entre la mutación del
// registro y su entrada en el historial: o se confirman juntas o ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		recordRepo repository.StockRecordRepository,
		movementRepo repository.StockMovementRepository,
		transferRepo repository.StockTransferRepository,
	) error) error
}
