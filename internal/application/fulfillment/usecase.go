// Package fulfillment expone el contrato que consumen los procesadores de
// órdenes (ventas y servicios, externos a este núcleo): reservar al crear la
// orden y liquidar al completarla o cancelarla. El contrato asume que el
// caller reservó antes de liquidar; el núcleo no verifica que exista una
// reserva previa por el monto exacto.
package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/StockLedger-api/internal/application/ledger"
	"github.com/jhoicas/StockLedger-api/internal/domain"
	"github.com/jhoicas/StockLedger-api/internal/domain/entity"
	"github.com/jhoicas/StockLedger-api/internal/domain/repository"
)

// OrderKind clase de orden externa que liquida contra el ledger.
type OrderKind string

const (
	OrderKindSale    = OrderKind("sale")
	OrderKindService = OrderKind("service")
)

// UseCase integra el procesamiento de órdenes con el protocolo de reservas.
type UseCase struct {
	txRunner ledger.TxRunner
	ledger   *ledger.UseCase
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner ledger.TxRunner, ledgerUC *ledger.UseCase) *UseCase {
	return &UseCase{txRunner: txRunner, ledger: ledgerUC}
}

// SettleInput entrada para liquidar una línea de orden.
type SettleInput struct {
	ProductID   string
	BranchID    string
	Quantity    int64
	OrderKind   OrderKind
	OrderID     string
	Notes       string
	PerformedBy string
}

// ReserveForOrder retiene stock para una línea de orden recién creada.
// Devuelve ErrInsufficientStock si el disponible no alcanza.
func (uc *UseCase) ReserveForOrder(ctx context.Context, productID, branchID string, qty int64) (*entity.StockRecord, error) {
	return uc.ledger.Reserve(ctx, productID, branchID, qty)
}

// SettleOrderCompletion descuenta el stock de una orden completada,
// registrando SALE o SERVICE_USE según la clase de orden, con la referencia a
// la orden en el movimiento.
func (uc *UseCase) SettleOrderCompletion(ctx context.Context, input SettleInput) (*entity.StockRecord, error) {
	movType, ref, err := orderReference(input)
	if err != nil {
		return nil, err
	}
	return uc.ledger.Deduct(ctx, ledger.DeductInput{
		ProductID:   input.ProductID,
		BranchID:    input.BranchID,
		Quantity:    input.Quantity,
		Type:        movType,
		Reference:   ref,
		Notes:       input.Notes,
		PerformedBy: input.PerformedBy,
	})
}

// SettleOrderCancellation libera la retención de una orden cancelada y deja
// una entrada SALE_CANCEL con cantidad anterior igual a la nueva: la
// cancelación no mueve stock físico pero sí queda auditada con la referencia
// de la orden.
func (uc *UseCase) SettleOrderCancellation(ctx context.Context, input SettleInput) (*entity.StockRecord, error) {
	if input.Quantity < 0 {
		return nil, fmt.Errorf("%w: la cantidad no puede ser negativa", domain.ErrValidation)
	}
	_, ref, err := orderReference(input)
	if err != nil {
		return nil, err
	}
	var record *entity.StockRecord
	err = uc.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		movementRepo repository.StockMovementRepository,
		_ repository.StockTransferRepository,
	) error {
		rec, err := ledger.ReleaseInTx(recordRepo, input.ProductID, input.BranchID, input.Quantity)
		if err != nil {
			return err
		}
		record = rec
		return movementRepo.Create(&entity.StockMovement{
			ID:            uuid.New().String(),
			StockRecordID: rec.ID,
			ProductID:     rec.ProductID,
			BranchID:      rec.BranchID,
			Type:          entity.MovementSaleCancel,
			OldQuantity:   rec.Quantity,
			NewQuantity:   rec.Quantity,
			Reference:     ref,
			Notes:         input.Notes,
			PerformedBy:   input.PerformedBy,
			CreatedAt:     time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// orderReference valida la clase de orden y arma el tipo de movimiento y la
// referencia polimórfica correspondiente.
func orderReference(input SettleInput) (entity.MovementType, *entity.MovementReference, error) {
	if input.ProductID == "" || input.BranchID == "" || input.OrderID == "" {
		return "", nil, domain.ErrValidation
	}
	switch input.OrderKind {
	case OrderKindSale:
		return entity.MovementSale, &entity.MovementReference{Kind: entity.RefSalesOrder, ID: input.OrderID}, nil
	case OrderKindService:
		return entity.MovementServiceUse, &entity.MovementReference{Kind: entity.RefServiceOrder, ID: input.OrderID}, nil
	default:
		return "", nil, fmt.Errorf("%w: clase de orden %q desconocida", domain.ErrValidation, input.OrderKind)
	}
}
