// Package ledger implementa el protocolo de reservas sobre el ledger de
// stock: Reserve, ReleaseReserved, Deduct, Restock y Adjust. Toda mutación
// corre dentro de una transacción con bloqueo de fila (SELECT FOR UPDATE) y
// registra como máximo una entrada en el historial de movimientos.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/StockLedger-api/internal/domain"
	"github.com/jhoicas/StockLedger-api/internal/domain/entity"
	"github.com/jhoicas/StockLedger-api/internal/domain/repository"
)

// UseCase expone el protocolo de reservas. Las operaciones públicas abren su
// propia transacción; las variantes *InTx reutilizan la transacción del caller
// (traslados y fulfillment las componen dentro de la suya).
type UseCase struct {
	txRunner     TxRunner
	recordRepo   repository.StockRecordRepository
	movementRepo repository.StockMovementRepository
}

// NewUseCase construye el caso de uso. recordRepo y movementRepo se usan solo
// para lecturas fuera de transacción.
func NewUseCase(
	txRunner TxRunner,
	recordRepo repository.StockRecordRepository,
	movementRepo repository.StockMovementRepository,
) *UseCase {
	return &UseCase{
		txRunner:     txRunner,
		recordRepo:   recordRepo,
		movementRepo: movementRepo,
	}
}

// RestockInput entrada para Restock. Los campos puntero solo sobreescriben el
// metadato correspondiente cuando vienen definidos; la cantidad siempre suma,
// nunca reemplaza.
type RestockInput struct {
	ProductID       string
	BranchID        string
	Quantity        int64
	CostPrice       *decimal.Decimal
	SellingPrice    *decimal.Decimal
	ReorderPoint    *int64
	ReorderQuantity *int64
	SupplierID      *string
	Location        *string
	Notes           string
	PerformedBy     string
}

// DeductInput entrada para Deduct.
type DeductInput struct {
	ProductID   string
	BranchID    string
	Quantity    int64
	Type        entity.MovementType
	Reference   *entity.MovementReference
	Notes       string
	PerformedBy string
}

// AdjustInput entrada para Adjust. Reason es obligatorio.
type AdjustInput struct {
	ProductID   string
	BranchID    string
	Delta       int64
	Reason      string
	Notes       string
	PerformedBy string
}

// Get devuelve el registro de un par (producto, sucursal) o ErrNotFound.
func (uc *UseCase) Get(ctx context.Context, productID, branchID string) (*entity.StockRecord, error) {
	if productID == "" || branchID == "" {
		return nil, domain.ErrValidation
	}
	record, err := uc.recordRepo.Get(productID, branchID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

// GetOrCreate devuelve el registro del par (producto, sucursal), creándolo en
// cero si no existe. Es el único camino de creación de registros.
func (uc *UseCase) GetOrCreate(ctx context.Context, productID, branchID string) (*entity.StockRecord, error) {
	if productID == "" || branchID == "" {
		return nil, domain.ErrValidation
	}
	var record *entity.StockRecord
	err := uc.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		_ repository.StockMovementRepository,
		_ repository.StockTransferRepository,
	) error {
		var err error
		record, _, err = getOrCreate(recordRepo, productID, branchID, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Reserve toma una retención sobre la cantidad disponible. No mueve stock
// físico, por lo que no registra movimiento. Falla con ErrInsufficientStock
// si la cantidad disponible no alcanza.
func (uc *UseCase) Reserve(ctx context.Context, productID, branchID string, qty int64) (*entity.StockRecord, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: la cantidad a reservar debe ser positiva", domain.ErrValidation)
	}
	var record *entity.StockRecord
	err := uc.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		_ repository.StockMovementRepository,
		_ repository.StockTransferRepository,
	) error {
		var err error
		record, err = ReserveInTx(recordRepo, productID, branchID, qty)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ReleaseReserved libera una retención. Liberar más de lo retenido no es
// error: la reserva se recorta a cero (el estado pudo haberse liberado
// parcialmente antes), así que los callers no deben asumir simetría exacta.
func (uc *UseCase) ReleaseReserved(ctx context.Context, productID, branchID string, qty int64) (*entity.StockRecord, error) {
	if qty < 0 {
		return nil, fmt.Errorf("%w: la cantidad a liberar no puede ser negativa", domain.ErrValidation)
	}
	var record *entity.StockRecord
	err := uc.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		_ repository.StockMovementRepository,
		_ repository.StockTransferRepository,
	) error {
		var err error
		record, err = ReleaseInTx(recordRepo, productID, branchID, qty)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Deduct descuenta stock físico. Libera a la vez la retención equivalente
// (un descuento siempre sigue a una reserva previa) y registra exactamente un
// movimiento con la cantidad anterior y la nueva.
func (uc *UseCase) Deduct(ctx context.Context, input DeductInput) (*entity.StockRecord, error) {
	if err := validateDeduct(input); err != nil {
		return nil, err
	}
	var record *entity.StockRecord
	err := uc.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		movementRepo repository.StockMovementRepository,
		_ repository.StockTransferRepository,
	) error {
		var err error
		record, err = DeductInTx(recordRepo, movementRepo, input, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Restock ingresa stock físico. Crea el registro si es la primera vez que se
// ve el par (producto, sucursal); en ese caso el movimiento es INITIAL en vez
// de RESTOCK.
func (uc *UseCase) Restock(ctx context.Context, input RestockInput) (*entity.StockRecord, error) {
	if input.ProductID == "" || input.BranchID == "" {
		return nil, domain.ErrValidation
	}
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("%w: la cantidad a ingresar debe ser positiva", domain.ErrValidation)
	}
	var record *entity.StockRecord
	err := uc.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		movementRepo repository.StockMovementRepository,
		_ repository.StockTransferRepository,
	) error {
		now := time.Now()
		rec, created, err := getOrCreate(recordRepo, input.ProductID, input.BranchID, now)
		if err != nil {
			return err
		}
		oldQty := rec.Quantity
		rec.Quantity += input.Quantity
		applyRestockMetadata(rec, input, now)
		if err := recordRepo.Update(rec); err != nil {
			return err
		}
		movType := entity.MovementRestock
		if created {
			movType = entity.MovementInitial
		}
		record = rec
		return movementRepo.Create(newMovement(rec, movType, oldQty, rec.Quantity, nil, "", input.Notes, input.PerformedBy, now))
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Adjust corrige la cantidad en existencia por delta. A diferencia del resto
// del protocolo, un delta negativo mayor que la existencia no falla: la
// cantidad se recorta en cero (piso documentado del contrato). La reserva se
// recorta si quedó por encima de la nueva cantidad para preservar el
// invariante reserved <= quantity.
func (uc *UseCase) Adjust(ctx context.Context, input AdjustInput) (*entity.StockRecord, error) {
	if input.ProductID == "" || input.BranchID == "" {
		return nil, domain.ErrValidation
	}
	if input.Reason == "" {
		return nil, fmt.Errorf("%w: el motivo del ajuste es obligatorio", domain.ErrValidation)
	}
	if input.Delta == 0 {
		return nil, fmt.Errorf("%w: el ajuste no puede ser cero", domain.ErrValidation)
	}
	var record *entity.StockRecord
	err := uc.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		movementRepo repository.StockMovementRepository,
		_ repository.StockTransferRepository,
	) error {
		rec, err := recordRepo.GetForUpdate(input.ProductID, input.BranchID)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}
		oldQty := rec.Quantity
		newQty := oldQty + input.Delta
		if newQty < 0 {
			newQty = 0
		}
		rec.Quantity = newQty
		if rec.ReservedQuantity > rec.Quantity {
			rec.ReservedQuantity = rec.Quantity
		}
		rec.UpdatedAt = time.Now()
		if err := recordRepo.Update(rec); err != nil {
			return err
		}
		movType := entity.MovementAdjustmentAdd
		if input.Delta < 0 {
			movType = entity.MovementAdjustmentRemove
		}
		record = rec
		return movementRepo.Create(newMovement(rec, movType, oldQty, newQty, nil, input.Reason, input.Notes, input.PerformedBy, rec.UpdatedAt))
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetMovementHistory consulta el historial con filtros y paginación.
func (uc *UseCase) GetMovementHistory(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.movementRepo.List(filter)
}

// ── Primitivas dentro de transacción ─────────────────────────────────────────
// Reutilizadas por los casos de uso de traslados y fulfillment para componer
// varias operaciones del protocolo en una sola transacción.

// ReserveInTx toma la retención usando los repositorios de la transacción del
// caller. La fila queda bloqueada hasta el commit, cerrando la carrera de dos
// reservas concurrentes leyendo el mismo disponible.
func ReserveInTx(recordRepo repository.StockRecordRepository, productID, branchID string, qty int64) (*entity.StockRecord, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: la cantidad a reservar debe ser positiva", domain.ErrValidation)
	}
	rec, err := recordRepo.GetForUpdate(productID, branchID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	if rec.Available() < qty {
		return nil, fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, rec.Available(), qty)
	}
	rec.ReservedQuantity += qty
	rec.UpdatedAt = time.Now()
	if err := recordRepo.Update(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ReleaseInTx libera la retención (recortada a cero) dentro de la transacción
// del caller. No registra movimiento: liberar no mueve stock físico.
func ReleaseInTx(recordRepo repository.StockRecordRepository, productID, branchID string, qty int64) (*entity.StockRecord, error) {
	if qty < 0 {
		return nil, fmt.Errorf("%w: la cantidad a liberar no puede ser negativa", domain.ErrValidation)
	}
	rec, err := recordRepo.GetForUpdate(productID, branchID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	rec.ReservedQuantity -= qty
	if rec.ReservedQuantity < 0 {
		rec.ReservedQuantity = 0
	}
	rec.UpdatedAt = time.Now()
	if err := recordRepo.Update(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// DeductInTx descuenta stock y registra el movimiento dentro de la
// transacción del caller. Falla con ErrInsufficientQuantity si la existencia
// no alcanza; en ese caso nada queda escrito (rollback del caller).
func DeductInTx(
	recordRepo repository.StockRecordRepository,
	movementRepo repository.StockMovementRepository,
	input DeductInput,
	now time.Time,
) (*entity.StockRecord, error) {
	if err := validateDeduct(input); err != nil {
		return nil, err
	}
	rec, err := recordRepo.GetForUpdate(input.ProductID, input.BranchID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	if rec.Quantity < input.Quantity {
		return nil, fmt.Errorf("%w: existencia %d, solicitado %d", domain.ErrInsufficientQuantity, rec.Quantity, input.Quantity)
	}
	oldQty := rec.Quantity
	rec.Quantity -= input.Quantity
	rec.ReservedQuantity -= input.Quantity
	if rec.ReservedQuantity < 0 {
		rec.ReservedQuantity = 0
	}
	rec.UpdatedAt = now
	if err := recordRepo.Update(rec); err != nil {
		return nil, err
	}
	if err := movementRepo.Create(newMovement(rec, input.Type, oldQty, rec.Quantity, input.Reference, "", input.Notes, input.PerformedBy, now)); err != nil {
		return nil, err
	}
	return rec, nil
}

// CreditInTx acredita stock en destino durante la finalización de un
// traslado. Crea el registro si no existe, heredando precios, umbrales de
// reorden y proveedor del registro origen, y registra TRANSFER_IN.
func CreditInTx(
	recordRepo repository.StockRecordRepository,
	movementRepo repository.StockMovementRepository,
	source *entity.StockRecord,
	toBranchID string,
	qty int64,
	ref *entity.MovementReference,
	performedBy string,
	now time.Time,
) (*entity.StockRecord, error) {
	dest, created, err := getOrCreate(recordRepo, source.ProductID, toBranchID, now)
	if err != nil {
		return nil, err
	}
	if created {
		dest.CostPrice = source.CostPrice
		dest.SellingPrice = source.SellingPrice
		dest.ReorderPoint = source.ReorderPoint
		dest.ReorderQuantity = source.ReorderQuantity
		dest.SupplierID = source.SupplierID
	}
	oldQty := dest.Quantity
	dest.Quantity += qty
	dest.UpdatedAt = now
	if err := recordRepo.Update(dest); err != nil {
		return nil, err
	}
	if err := movementRepo.Create(newMovement(dest, entity.MovementTransferIn, oldQty, dest.Quantity, ref, "", "", performedBy, now)); err != nil {
		return nil, err
	}
	return dest, nil
}

func validateDeduct(input DeductInput) error {
	if input.ProductID == "" || input.BranchID == "" {
		return domain.ErrValidation
	}
	if input.Quantity <= 0 {
		return fmt.Errorf("%w: la cantidad a descontar debe ser positiva", domain.ErrValidation)
	}
	switch input.Type {
	case entity.MovementSale, entity.MovementServiceUse, entity.MovementTransferOut:
		return nil
	default:
		return fmt.Errorf("%w: tipo de movimiento %q no válido para un descuento", domain.ErrValidation, input.Type)
	}
}

// getOrCreate busca el registro con bloqueo; si no existe lo crea en cero.
// Ante una creación concurrente del mismo par, el unique (product, branch)
// la detecta y se relee la fila ya creada.
func getOrCreate(recordRepo repository.StockRecordRepository, productID, branchID string, now time.Time) (*entity.StockRecord, bool, error) {
	rec, err := recordRepo.GetForUpdate(productID, branchID)
	if err != nil {
		return nil, false, err
	}
	if rec != nil {
		return rec, false, nil
	}
	rec = &entity.StockRecord{
		ID:           uuid.New().String(),
		ProductID:    productID,
		BranchID:     branchID,
		CostPrice:    decimal.Zero,
		SellingPrice: decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := recordRepo.Create(rec); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			existing, err2 := recordRepo.GetForUpdate(productID, branchID)
			if err2 != nil {
				return nil, false, err2
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	return rec, true, nil
}

func applyRestockMetadata(rec *entity.StockRecord, input RestockInput, now time.Time) {
	if input.CostPrice != nil {
		rec.CostPrice = *input.CostPrice
	}
	if input.SellingPrice != nil {
		rec.SellingPrice = *input.SellingPrice
	}
	if input.ReorderPoint != nil {
		rec.ReorderPoint = *input.ReorderPoint
	}
	if input.ReorderQuantity != nil {
		rec.ReorderQuantity = *input.ReorderQuantity
	}
	if input.SupplierID != nil {
		rec.SupplierID = input.SupplierID
	}
	if input.Location != nil {
		rec.Location = *input.Location
	}
	restockedAt := now
	rec.LastRestockedAt = &restockedAt
	rec.LastRestockedBy = input.PerformedBy
	rec.UpdatedAt = now
}

func newMovement(
	rec *entity.StockRecord,
	movType entity.MovementType,
	oldQty, newQty int64,
	ref *entity.MovementReference,
	reason, notes, performedBy string,
	now time.Time,
) *entity.StockMovement {
	return &entity.StockMovement{
		ID:            uuid.New().String(),
		StockRecordID: rec.ID,
		ProductID:     rec.ProductID,
		BranchID:      rec.BranchID,
		Type:          movType,
		OldQuantity:   oldQty,
		NewQuantity:   newQty,
		Reference:     ref,
		Reason:        reason,
		Notes:         notes,
		PerformedBy:   performedBy,
		CreatedAt:     now,
	}
}
