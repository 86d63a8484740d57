// Package transfer implementa el flujo de traslados entre sucursales sobre el
// protocolo de reservas: la creación retiene en origen, la finalización
// descuenta origen y acredita destino, la cancelación libera la retención.
// En todo momento la suma de lo ya movido más lo aún retenido de un traslado
// es igual a la cantidad solicitada: el flujo no pierde ni duplica stock.
package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/StockLedger-api/internal/application/ledger"
	"github.com/jhoicas/StockLedger-api/internal/domain"
	"github.com/jhoicas/StockLedger-api/internal/domain/entity"
	"github.com/jhoicas/StockLedger-api/internal/domain/repository"
	domtransfer "github.com/jhoicas/StockLedger-api/internal/domain/transfer"
)

// UseCase gestiona el ciclo de vida de los traslados.
type UseCase struct {
	txRunner     ledger.TxRunner
	transferRepo repository.StockTransferRepository
}

// NewUseCase construye el caso de uso. transferRepo se usa solo para lecturas
// fuera de transacción.
func NewUseCase(txRunner ledger.TxRunner, transferRepo repository.StockTransferRepository) *UseCase {
	return &UseCase{txRunner: txRunner, transferRepo: transferRepo}
}

// CreateInput entrada para Create.
type CreateInput struct {
	ProductID    string
	FromBranchID string
	ToBranchID   string
	Quantity     int64
	Notes        string
	InitiatedBy  string
}

// AdvanceInput entrada para Advance.
type AdvanceInput struct {
	TransferID   string
	TargetStatus entity.TransferStatus
	ActorID      string
}

// Create valida el traslado, retiene la cantidad en el origen y persiste el
// traslado en pending, todo en una transacción. Si la retención falla
// (ErrInsufficientStock) no queda ningún traslado creado.
func (uc *UseCase) Create(ctx context.Context, input CreateInput) (*entity.StockTransfer, error) {
	if input.ProductID == "" || input.FromBranchID == "" || input.ToBranchID == "" {
		return nil, domain.ErrValidation
	}
	if input.FromBranchID == input.ToBranchID {
		return nil, fmt.Errorf("%w: la sucursal origen y destino deben ser distintas", domain.ErrInvalidTransfer)
	}
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser positiva", domain.ErrInvalidTransfer)
	}

	var created *entity.StockTransfer
	err := uc.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		_ repository.StockMovementRepository,
		transferRepo repository.StockTransferRepository,
	) error {
		if _, err := ledger.ReserveInTx(recordRepo, input.ProductID, input.FromBranchID, input.Quantity); err != nil {
			return err
		}
		now := time.Now()
		created = &entity.StockTransfer{
			ID:           uuid.New().String(),
			ProductID:    input.ProductID,
			FromBranchID: input.FromBranchID,
			ToBranchID:   input.ToBranchID,
			Quantity:     input.Quantity,
			Status:       entity.TransferPending,
			InitiatedBy:  input.InitiatedBy,
			Notes:        input.Notes,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return transferRepo.Create(created)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Advance mueve el traslado al estado solicitado según la tabla de
// transiciones. El traslado queda bloqueado (FOR UPDATE) durante la
// transición, de modo que dos avances concurrentes se serializan y el segundo
// falla contra el estado ya actualizado.
func (uc *UseCase) Advance(ctx context.Context, input AdvanceInput) (*entity.StockTransfer, error) {
	if input.TransferID == "" {
		return nil, domain.ErrValidation
	}
	var advanced *entity.StockTransfer
	err := uc.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		movementRepo repository.StockMovementRepository,
		transferRepo repository.StockTransferRepository,
	) error {
		tr, err := transferRepo.GetForUpdate(input.TransferID)
		if err != nil {
			return err
		}
		if tr == nil {
			return domain.ErrNotFound
		}
		if err := domtransfer.Guard(tr.Status, input.TargetStatus); err != nil {
			return err
		}

		now := time.Now()
		switch input.TargetStatus {
		case entity.TransferInTransit:
			// Sin mutación de stock: la retención ya sostiene la cantidad.
			tr.ApprovedBy = input.ActorID
			tr.ShippedAt = &now
		case entity.TransferCompleted:
			if err := uc.complete(recordRepo, movementRepo, tr, input.ActorID, now); err != nil {
				return err
			}
			tr.ReceivedBy = input.ActorID
			tr.ReceivedAt = &now
		case entity.TransferCancelled:
			// Libera la retención en origen; sin movimiento (no cambia la
			// cantidad física).
			if _, err := ledger.ReleaseInTx(recordRepo, tr.ProductID, tr.FromBranchID, tr.Quantity); err != nil {
				return err
			}
		}
		tr.Status = input.TargetStatus
		tr.UpdatedAt = now
		if err := transferRepo.Update(tr); err != nil {
			return err
		}
		advanced = tr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return advanced, nil
}

// complete descuenta en origen (TRANSFER_OUT, liberando la retención) y
// acredita en destino (TRANSFER_IN), ambos referenciando el traslado.
func (uc *UseCase) complete(
	recordRepo repository.StockRecordRepository,
	movementRepo repository.StockMovementRepository,
	tr *entity.StockTransfer,
	actorID string,
	now time.Time,
) error {
	ref := &entity.MovementReference{Kind: entity.RefTransfer, ID: tr.ID}
	source, err := ledger.DeductInTx(recordRepo, movementRepo, ledger.DeductInput{
		ProductID:   tr.ProductID,
		BranchID:    tr.FromBranchID,
		Quantity:    tr.Quantity,
		Type:        entity.MovementTransferOut,
		Reference:   ref,
		PerformedBy: actorID,
	}, now)
	if err != nil {
		return err
	}
	_, err = ledger.CreditInTx(recordRepo, movementRepo, source, tr.ToBranchID, tr.Quantity, ref, actorID, now)
	return err
}

// GetByID devuelve un traslado o ErrNotFound.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*entity.StockTransfer, error) {
	tr, err := uc.transferRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, domain.ErrNotFound
	}
	return tr, nil
}

// List lista traslados con filtros y paginación.
func (uc *UseCase) List(ctx context.Context, filter repository.TransferFilter) ([]*entity.StockTransfer, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.transferRepo.List(filter)
}
