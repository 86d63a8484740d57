package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/StockLedger-api/internal/domain"
	"github.com/jhoicas/StockLedger-api/internal/domain/entity"
	"github.com/jhoicas/StockLedger-api/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

// StockRecordRepo implementación de StockRecordRepository sobre PostgreSQL
// (usable con pool o tx).
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

const stockRecordColumns = `
	id, product_id, branch_id, quantity, reserved_quantity,
	cost_price, selling_price, reorder_point, reorder_quantity,
	supplier_id, location, last_restocked_at, last_restocked_by,
	created_at, updated_at`

// Get obtiene el registro de un par (producto, sucursal). Devuelve nil si no existe.
func (r *StockRecordRepo) Get(productID, branchID string) (*entity.StockRecord, error) {
	query := `SELECT` + stockRecordColumns + `
		FROM stock_records WHERE product_id = $1 AND branch_id = $2`
	return r.scanOne(r.q.QueryRow(context.Background(), query, productID, branchID), "get stock record")
}

// GetForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE).
// Devuelve nil si no existe.
func (r *StockRecordRepo) GetForUpdate(productID, branchID string) (*entity.StockRecord, error) {
	query := `SELECT` + stockRecordColumns + `
		FROM stock_records WHERE product_id = $1 AND branch_id = $2
		FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, productID, branchID), "get stock record for update")
}

// Create inserta un registro nuevo. ON CONFLICT DO NOTHING en vez de dejar
// fallar el unique (product_id, branch_id): un INSERT fallido aborta la
// transacción en curso (25P02) y el caller ya no podría releer la fila creada
// por el otro. Con cero filas insertadas devuelve domain.ErrDuplicate y la tx
// sigue utilizable.
func (r *StockRecordRepo) Create(rec *entity.StockRecord) error {
	query := `
		INSERT INTO stock_records (id, product_id, branch_id, quantity, reserved_quantity,
			cost_price, selling_price, reorder_point, reorder_quantity,
			supplier_id, location, last_restocked_at, last_restocked_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (product_id, branch_id) DO NOTHING`
	tag, err := r.q.Exec(context.Background(), query,
		rec.ID, rec.ProductID, rec.BranchID, rec.Quantity, rec.ReservedQuantity,
		rec.CostPrice, rec.SellingPrice, rec.ReorderPoint, rec.ReorderQuantity,
		rec.SupplierID, rec.Location, rec.LastRestockedAt, nullable(rec.LastRestockedBy),
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicate
	}
	return nil
}

// Update persiste cantidades y metadatos de un registro existente.
func (r *StockRecordRepo) Update(rec *entity.StockRecord) error {
	query := `
		UPDATE stock_records
		SET quantity = $1, reserved_quantity = $2, cost_price = $3, selling_price = $4,
			reorder_point = $5, reorder_quantity = $6, supplier_id = $7, location = $8,
			last_restocked_at = $9, last_restocked_by = $10, updated_at = $11
		WHERE id = $12`
	tag, err := r.q.Exec(context.Background(), query,
		rec.Quantity, rec.ReservedQuantity, rec.CostPrice, rec.SellingPrice,
		rec.ReorderPoint, rec.ReorderQuantity, rec.SupplierID, rec.Location,
		rec.LastRestockedAt, nullable(rec.LastRestockedBy), rec.UpdatedAt, rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update stock record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListBelowReorderPoint lista registros con quantity <= reorder_point, los
// más críticos primero. El orden va en el SQL para que la paginación corte
// por la misma clave: ordenar después en memoria dejaría fuera de la página
// registros más severos que los incluidos.
func (r *StockRecordRepo) ListBelowReorderPoint(branchID string, limit, offset int) ([]*entity.StockRecord, error) {
	query := `SELECT` + stockRecordColumns + `
		FROM stock_records WHERE quantity <= reorder_point`
	args := []any{}
	pos := 1
	if branchID != "" {
		query += fmt.Sprintf(" AND branch_id = $%d", pos)
		args = append(args, branchID)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY (quantity = 0) DESC, reorder_point - quantity DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list below reorder point: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock record: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

func (r *StockRecordRepo) scanOne(row pgx.Row, op string) (*entity.StockRecord, error) {
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

func scanRecord(row pgx.Row) (*entity.StockRecord, error) {
	var rec entity.StockRecord
	var lastRestockedBy *string
	err := row.Scan(
		&rec.ID, &rec.ProductID, &rec.BranchID, &rec.Quantity, &rec.ReservedQuantity,
		&rec.CostPrice, &rec.SellingPrice, &rec.ReorderPoint, &rec.ReorderQuantity,
		&rec.SupplierID, &rec.Location, &rec.LastRestockedAt, &lastRestockedBy,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastRestockedBy != nil {
		rec.LastRestockedBy = *lastRestockedBy
	}
	return &rec, nil
}
