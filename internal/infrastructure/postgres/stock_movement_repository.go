package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/StockLedger-api/internal/domain/entity"
	"github.com/jhoicas/StockLedger-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación append-only del historial sobre
// PostgreSQL (usable con pool o tx). No ofrece UPDATE ni DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `
	id, stock_record_id, product_id, branch_id, type, old_quantity, new_quantity,
	reference_kind, reference_id, reason, notes, performed_by, created_at`

// Create persiste una entrada del historial.
func (r *StockMovementRepo) Create(m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	var refKind, refID *string
	if m.Reference != nil {
		kind := string(m.Reference.Kind)
		refKind, refID = &kind, &m.Reference.ID
	}
	query := `
		INSERT INTO stock_movements (id, stock_record_id, product_id, branch_id, type,
			old_quantity, new_quantity, reference_kind, reference_id, reason, notes,
			performed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.StockRecordID, m.ProductID, m.BranchID, m.Type,
		m.OldQuantity, m.NewQuantity, refKind, refID,
		nullable(m.Reason), nullable(m.Notes), nullable(m.PerformedBy), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene una entrada por ID. Devuelve nil si no existe.
func (r *StockMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	query := `SELECT` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

// List consulta el historial con filtros opcionales, del más reciente al más
// antiguo.
func (r *StockMovementRepo) List(filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	query := `SELECT` + movementColumns + ` FROM stock_movements WHERE 1=1`
	args := []any{}
	pos := 1
	if filter.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, filter.ProductID)
		pos++
	}
	if filter.BranchID != "" {
		query += fmt.Sprintf(" AND branch_id = $%d", pos)
		args = append(args, filter.BranchID)
		pos++
	}
	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		query += fmt.Sprintf(" AND type = ANY($%d)", pos)
		args = append(args, types)
		pos++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var refKind, refID, reason, notes, performedBy *string
	err := row.Scan(
		&m.ID, &m.StockRecordID, &m.ProductID, &m.BranchID, &m.Type,
		&m.OldQuantity, &m.NewQuantity, &refKind, &refID, &reason, &notes,
		&performedBy, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if refKind != nil && refID != nil {
		m.Reference = &entity.MovementReference{Kind: entity.ReferenceKind(*refKind), ID: *refID}
	}
	if reason != nil {
		m.Reason = *reason
	}
	if notes != nil {
		m.Notes = *notes
	}
	if performedBy != nil {
		m.PerformedBy = *performedBy
	}
	return &m, nil
}
