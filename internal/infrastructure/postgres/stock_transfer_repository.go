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

var _ repository.StockTransferRepository = (*StockTransferRepo)(nil)

// StockTransferRepo implementación de StockTransferRepository sobre
// PostgreSQL (usable con pool o tx).
type StockTransferRepo struct {
	q Querier
}

// NewStockTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransferRepository(q Querier) *StockTransferRepo {
	return &StockTransferRepo{q: q}
}

const transferColumns = `
	id, product_id, from_branch_id, to_branch_id, quantity, status,
	initiated_by, approved_by, received_by, notes, shipped_at, received_at,
	created_at, updated_at`

// Create persiste un traslado nuevo.
func (r *StockTransferRepo) Create(tr *entity.StockTransfer) error {
	query := `
		INSERT INTO stock_transfers (id, product_id, from_branch_id, to_branch_id, quantity,
			status, initiated_by, approved_by, received_by, notes, shipped_at, received_at,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(context.Background(), query,
		tr.ID, tr.ProductID, tr.FromBranchID, tr.ToBranchID, tr.Quantity,
		tr.Status, nullable(tr.InitiatedBy), nullable(tr.ApprovedBy), nullable(tr.ReceivedBy),
		nullable(tr.Notes), tr.ShippedAt, tr.ReceivedAt, tr.CreatedAt, tr.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock transfer: %w", err)
	}
	return nil
}

// GetByID obtiene un traslado. Devuelve nil si no existe.
func (r *StockTransferRepo) GetByID(id string) (*entity.StockTransfer, error) {
	query := `SELECT` + transferColumns + ` FROM stock_transfers WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get stock transfer")
}

// GetForUpdate obtiene el traslado y bloquea la fila (SELECT FOR UPDATE) para
// que dos transiciones concurrentes sobre el mismo traslado se serialicen.
func (r *StockTransferRepo) GetForUpdate(id string) (*entity.StockTransfer, error) {
	query := `SELECT` + transferColumns + ` FROM stock_transfers WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get stock transfer for update")
}

// Update persiste estado, actores y marcas de tiempo de un traslado.
func (r *StockTransferRepo) Update(tr *entity.StockTransfer) error {
	query := `
		UPDATE stock_transfers
		SET status = $1, approved_by = $2, received_by = $3, notes = $4,
			shipped_at = $5, received_at = $6, updated_at = $7
		WHERE id = $8`
	tag, err := r.q.Exec(context.Background(), query,
		tr.Status, nullable(tr.ApprovedBy), nullable(tr.ReceivedBy), nullable(tr.Notes),
		tr.ShippedAt, tr.ReceivedAt, tr.UpdatedAt, tr.ID,
	)
	if err != nil {
		return fmt.Errorf("update stock transfer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista traslados con filtros opcionales, del más reciente al más antiguo.
func (r *StockTransferRepo) List(filter repository.TransferFilter) ([]*entity.StockTransfer, error) {
	query := `SELECT` + transferColumns + ` FROM stock_transfers WHERE 1=1`
	args := []any{}
	pos := 1
	if filter.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, filter.ProductID)
		pos++
	}
	if filter.FromBranchID != "" {
		query += fmt.Sprintf(" AND from_branch_id = $%d", pos)
		args = append(args, filter.FromBranchID)
		pos++
	}
	if filter.ToBranchID != "" {
		query += fmt.Sprintf(" AND to_branch_id = $%d", pos)
		args = append(args, filter.ToBranchID)
		pos++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, filter.Status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock transfers: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockTransfer
	for rows.Next() {
		tr, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock transfer: %w", err)
		}
		list = append(list, tr)
	}
	return list, rows.Err()
}

func (r *StockTransferRepo) scanOne(row pgx.Row, op string) (*entity.StockTransfer, error) {
	tr, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tr, nil
}

func scanTransfer(row pgx.Row) (*entity.StockTransfer, error) {
	var tr entity.StockTransfer
	var initiatedBy, approvedBy, receivedBy, notes *string
	err := row.Scan(
		&tr.ID, &tr.ProductID, &tr.FromBranchID, &tr.ToBranchID, &tr.Quantity, &tr.Status,
		&initiatedBy, &approvedBy, &receivedBy, &notes, &tr.ShippedAt, &tr.ReceivedAt,
		&tr.CreatedAt, &tr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if initiatedBy != nil {
		tr.InitiatedBy = *initiatedBy
	}
	if approvedBy != nil {
		tr.ApprovedBy = *approvedBy
	}
	if receivedBy != nil {
		tr.ReceivedBy = *receivedBy
	}
	if notes != nil {
		tr.Notes = *notes
	}
	return &tr, nil
}
