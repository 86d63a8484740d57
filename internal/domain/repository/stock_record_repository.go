package repository

import "github.com/jhoicas/StockLedger-api/internal/domain/entity"

// StockRecordRepository puerto de persistencia del ledger por (producto, sucursal).
// Dentro de una transacción, GetForUpdate bloquea la fila (SELECT FOR UPDATE)
// para serializar las operaciones concurrentes sobre el mismo registro.
type StockRecordRepository interface {
	Get(productID, branchID string) (*entity.StockRecord, error)
	// GetForUpdate bloquea la fila para update. Devuelve nil si no existe.
	GetForUpdate(productID, branchID string) (*entity.StockRecord, error)
	Create(record *entity.StockRecord) error
	Update(record *entity.StockRecord) error
	// ListBelowReorderPoint lista registros con quantity <= reorder_point,
	// ordenados por severidad: agotados primero, después por faltante frente
	// al punto de reorden. La paginación corta sobre ese mismo orden.
	// branchID vacío considera todas las sucursales.
	ListBelowReorderPoint(branchID string, limit, offset int) ([]*entity.StockRecord, error)
}
