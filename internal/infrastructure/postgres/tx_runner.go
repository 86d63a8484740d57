package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/StockLedger-api/internal/application/ledger"
	"github.com/jhoicas/StockLedger-api/internal/domain/repository"
)

var _ ledger.TxRunner = (*TxRunner)(nil)

// maxTxAttempts intentos por transacción ante deadlocks (40P01) o conflictos
// de serialización (40001). Dos finalizaciones de traslados cruzados A→B y
// B→A toman los mismos bloqueos de fila en orden inverso; Postgres mata una
// de las dos y el reintento la completa.
const maxTxAttempts = 3

// txBeginner lo satisface *pgxpool.Pool (y pgx.Tx, para tests).
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Los
// bloqueos FOR UPDATE tomados por los repos viven hasta el Commit/Rollback,
// serializando las operaciones concurrentes sobre un mismo registro.
type TxRunner struct {
	db txBeginner
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{db: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit si fn devuelve nil o Rollback en caso contrario. La mutación del
// registro y su movimiento se confirman juntos o ninguno. Ante un error
// transitorio de la transacción (deadlock, conflicto de serialización) la
// reintenta completa hasta maxTxAttempts veces antes de devolverlo.
func (r *TxRunner) Run(ctx context.Context, fn func(
	recordRepo repository.StockRecordRepository,
	movementRepo repository.StockMovementRepository,
	transferRepo repository.StockTransferRepository,
) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil || !isRetryableTxError(err) {
			return err
		}
	}
	return fmt.Errorf("transaction retries exhausted: %w", err)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(
	recordRepo repository.StockRecordRepository,
	movementRepo repository.StockMovementRepository,
	transferRepo repository.StockTransferRepository,
) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	recordRepo := NewStockRecordRepository(tx)
	movementRepo := NewStockMovementRepository(tx)
	transferRepo := NewStockTransferRepository(tx)

	if err := fn(recordRepo, movementRepo, transferRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
