// Package memory implementa los puertos de persistencia sobre mapas en
// memoria, con las mismas garantías observables que el adaptador PostgreSQL:
// las transacciones se serializan (un mutex cumple el papel del bloqueo de
// fila) y un error dentro de la transacción revierte todo lo escrito en ella.
// Se usa en los tests de los casos de uso.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/StockLedger-api/internal/application/ledger"
	"github.com/jhoicas/StockLedger-api/internal/domain"
	"github.com/jhoicas/StockLedger-api/internal/domain/entity"
	"github.com/jhoicas/StockLedger-api/internal/domain/repository"
)

var _ ledger.TxRunner = (*Store)(nil)

// Store almacén en memoria. El mutex serializa las transacciones completas:
// dos operaciones concurrentes sobre el mismo registro nunca intercalan sus
// lecturas y escrituras.
type Store struct {
	mu        sync.Mutex
	records   map[string]*entity.StockRecord // clave: productID|branchID
	movements []*entity.StockMovement
	transfers map[string]*entity.StockTransfer
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		records:   make(map[string]*entity.StockRecord),
		transfers: make(map[string]*entity.StockTransfer),
	}
}

func recordKey(productID, branchID string) string {
	return productID + "|" + branchID
}

// Run ejecuta fn bajo el mutex con repos atados al almacén. Si fn falla, el
// estado previo se restaura completo (equivalente al rollback de la tx SQL).
func (s *Store) Run(ctx context.Context, fn func(
	recordRepo repository.StockRecordRepository,
	movementRepo repository.StockMovementRepository,
	transferRepo repository.StockTransferRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot()
	err := fn(&recordRepo{s: s}, &movementRepo{s: s}, &transferRepo{s: s})
	if err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

type storeState struct {
	records   map[string]*entity.StockRecord
	movements []*entity.StockMovement
	transfers map[string]*entity.StockTransfer
}

func (s *Store) snapshot() storeState {
	st := storeState{
		records:   make(map[string]*entity.StockRecord, len(s.records)),
		movements: append([]*entity.StockMovement(nil), s.movements...),
		transfers: make(map[string]*entity.StockTransfer, len(s.transfers)),
	}
	for k, v := range s.records {
		copied := *v
		st.records[k] = &copied
	}
	for k, v := range s.transfers {
		copied := *v
		st.transfers[k] = &copied
	}
	return st
}

func (s *Store) restore(st storeState) {
	s.records = st.records
	s.movements = st.movements
	s.transfers = st.transfers
}

// Seed carga un registro inicial (solo para tests).
func (s *Store) Seed(rec *entity.StockRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *rec
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now()
	}
	s.records[recordKey(rec.ProductID, rec.BranchID)] = &copied
}

// Movements devuelve una copia del historial completo (solo para tests).
func (s *Store) Movements() []*entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.StockMovement, len(s.movements))
	for i, m := range s.movements {
		copied := *m
		out[i] = &copied
	}
	return out
}

// RecordRepo devuelve un repositorio de registros para lecturas fuera de
// transacción (toma el mutex por operación).
func (s *Store) RecordRepo() repository.StockRecordRepository {
	return &lockedRecordRepo{s: s}
}

// MovementRepo devuelve un repositorio del historial para lecturas fuera de
// transacción.
func (s *Store) MovementRepo() repository.StockMovementRepository {
	return &lockedMovementRepo{s: s}
}

// TransferRepo devuelve un repositorio de traslados para lecturas fuera de
// transacción.
func (s *Store) TransferRepo() repository.StockTransferRepository {
	return &lockedTransferRepo{s: s}
}

// ── Repositorios dentro de transacción (el mutex ya está tomado) ────────────

type recordRepo struct{ s *Store }

func (r *recordRepo) Get(productID, branchID string) (*entity.StockRecord, error) {
	return r.s.getRecord(productID, branchID), nil
}

func (r *recordRepo) GetForUpdate(productID, branchID string) (*entity.StockRecord, error) {
	return r.s.getRecord(productID, branchID), nil
}

func (r *recordRepo) Create(rec *entity.StockRecord) error {
	key := recordKey(rec.ProductID, rec.BranchID)
	if _, exists := r.s.records[key]; exists {
		return domain.ErrDuplicate
	}
	copied := *rec
	r.s.records[key] = &copied
	return nil
}

func (r *recordRepo) Update(rec *entity.StockRecord) error {
	key := recordKey(rec.ProductID, rec.BranchID)
	if _, exists := r.s.records[key]; !exists {
		return domain.ErrNotFound
	}
	copied := *rec
	r.s.records[key] = &copied
	return nil
}

func (r *recordRepo) ListBelowReorderPoint(branchID string, limit, offset int) ([]*entity.StockRecord, error) {
	return r.s.listBelowReorderPoint(branchID, limit, offset), nil
}

func (s *Store) getRecord(productID, branchID string) *entity.StockRecord {
	rec, ok := s.records[recordKey(productID, branchID)]
	if !ok {
		return nil
	}
	copied := *rec
	return &copied
}

func (s *Store) listBelowReorderPoint(branchID string, limit, offset int) []*entity.StockRecord {
	var out []*entity.StockRecord
	for _, rec := range s.records {
		if branchID != "" && rec.BranchID != branchID {
			continue
		}
		if rec.Quantity <= rec.ReorderPoint {
			copied := *rec
			out = append(out, &copied)
		}
	}
	// Mismo orden de severidad que el adaptador PostgreSQL, para que la
	// paginación corte igual en ambos.
	sort.SliceStable(out, func(i, j int) bool {
		if (out[i].Quantity == 0) != (out[j].Quantity == 0) {
			return out[i].Quantity == 0
		}
		return out[i].ReorderPoint-out[i].Quantity > out[j].ReorderPoint-out[j].Quantity
	})
	if offset >= len(out) {
		return nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

type movementRepo struct{ s *Store }

func (r *movementRepo) Create(m *entity.StockMovement) error {
	copied := *m
	r.s.movements = append(r.s.movements, &copied)
	return nil
}

func (r *movementRepo) GetByID(id string) (*entity.StockMovement, error) {
	for _, m := range r.s.movements {
		if m.ID == id {
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *movementRepo) List(filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	return r.s.listMovements(filter), nil
}

func (s *Store) listMovements(filter repository.MovementFilter) []*entity.StockMovement {
	var out []*entity.StockMovement
	for i := len(s.movements) - 1; i >= 0; i-- {
		m := s.movements[i]
		if filter.ProductID != "" && m.ProductID != filter.ProductID {
			continue
		}
		if filter.BranchID != "" && m.BranchID != filter.BranchID {
			continue
		}
		if len(filter.Types) > 0 && !containsType(filter.Types, m.Type) {
			continue
		}
		if filter.From != nil && m.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.CreatedAt.After(*filter.To) {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out
}

func containsType(types []entity.MovementType, t entity.MovementType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

type transferRepo struct{ s *Store }

func (r *transferRepo) Create(tr *entity.StockTransfer) error {
	if _, exists := r.s.transfers[tr.ID]; exists {
		return domain.ErrDuplicate
	}
	copied := *tr
	r.s.transfers[tr.ID] = &copied
	return nil
}

func (r *transferRepo) GetByID(id string) (*entity.StockTransfer, error) {
	return r.s.getTransfer(id), nil
}

func (r *transferRepo) GetForUpdate(id string) (*entity.StockTransfer, error) {
	return r.s.getTransfer(id), nil
}

func (r *transferRepo) Update(tr *entity.StockTransfer) error {
	if _, exists := r.s.transfers[tr.ID]; !exists {
		return domain.ErrNotFound
	}
	copied := *tr
	r.s.transfers[tr.ID] = &copied
	return nil
}

func (r *transferRepo) List(filter repository.TransferFilter) ([]*entity.StockTransfer, error) {
	return r.s.listTransfers(filter), nil
}

func (s *Store) getTransfer(id string) *entity.StockTransfer {
	tr, ok := s.transfers[id]
	if !ok {
		return nil
	}
	copied := *tr
	return &copied
}

func (s *Store) listTransfers(filter repository.TransferFilter) []*entity.StockTransfer {
	var out []*entity.StockTransfer
	for _, tr := range s.transfers {
		if filter.ProductID != "" && tr.ProductID != filter.ProductID {
			continue
		}
		if filter.FromBranchID != "" && tr.FromBranchID != filter.FromBranchID {
			continue
		}
		if filter.ToBranchID != "" && tr.ToBranchID != filter.ToBranchID {
			continue
		}
		if filter.Status != "" && tr.Status != filter.Status {
			continue
		}
		copied := *tr
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out
}

// ── Repositorios fuera de transacción (toman el mutex por operación) ────────

type lockedRecordRepo struct{ s *Store }

func (r *lockedRecordRepo) Get(productID, branchID string) (*entity.StockRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.getRecord(productID, branchID), nil
}

func (r *lockedRecordRepo) GetForUpdate(productID, branchID string) (*entity.StockRecord, error) {
	return r.Get(productID, branchID)
}

func (r *lockedRecordRepo) Create(rec *entity.StockRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&recordRepo{s: r.s}).Create(rec)
}

func (r *lockedRecordRepo) Update(rec *entity.StockRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&recordRepo{s: r.s}).Update(rec)
}

func (r *lockedRecordRepo) ListBelowReorderPoint(branchID string, limit, offset int) ([]*entity.StockRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.listBelowReorderPoint(branchID, limit, offset), nil
}

type lockedMovementRepo struct{ s *Store }

func (r *lockedMovementRepo) Create(m *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&movementRepo{s: r.s}).Create(m)
}

func (r *lockedMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&movementRepo{s: r.s}).GetByID(id)
}

func (r *lockedMovementRepo) List(filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.listMovements(filter), nil
}

type lockedTransferRepo struct{ s *Store }

func (r *lockedTransferRepo) Create(tr *entity.StockTransfer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&transferRepo{s: r.s}).Create(tr)
}

func (r *lockedTransferRepo) GetByID(id string) (*entity.StockTransfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.getTransfer(id), nil
}

func (r *lockedTransferRepo) GetForUpdate(id string) (*entity.StockTransfer, error) {
	return r.GetByID(id)
}

func (r *lockedTransferRepo) Update(tr *entity.StockTransfer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&transferRepo{s: r.s}).Update(tr)
}

func (r *lockedTransferRepo) List(filter repository.TransferFilter) ([]*entity.StockTransfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.listTransfers(filter), nil
}
