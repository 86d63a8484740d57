package fulfillment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/StockLedger-api/internal/application/fulfillment"
	"github.com/jhoicas/StockLedger-api/internal/application/ledger"
	"github.com/jhoicas/StockLedger-api/internal/domain"
	"github.com/jhoicas/StockLedger-api/internal/domain/entity"
	"github.com/jhoicas/StockLedger-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testProductID = "00000000-0000-0000-0000-0000000000aa"
	testBranchID  = "00000000-0000-0000-0000-0000000000b1"
	testOrderID   = "00000000-0000-0000-0000-0000000000f1"
	testUserID    = "00000000-0000-0000-0000-000000000001"
)

func newUseCase() (*fulfillment.UseCase, *memory.Store) {
	store := memory.NewStore()
	ledgerUC := ledger.NewUseCase(store, store.RecordRepo(), store.MovementRepo())
	return fulfillment.NewUseCase(store, ledgerUC), store
}

func seedRecord(store *memory.Store, qty int64) {
	store.Seed(&entity.StockRecord{
		ID:        "rec-1",
		ProductID: testProductID,
		BranchID:  testBranchID,
		Quantity:  qty,
	})
}

func settleInput(kind fulfillment.OrderKind, qty int64) fulfillment.SettleInput {
	return fulfillment.SettleInput{
		ProductID:   testProductID,
		BranchID:    testBranchID,
		Quantity:    qty,
		OrderKind:   kind,
		OrderID:     testOrderID,
		PerformedBy: testUserID,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// ReserveForOrder
// ──────────────────────────────────────────────────────────────────────────────

func TestReserveForOrder(t *testing.T) {
	uc, store := newUseCase()
	seedRecord(store, 50)

	rec, err := uc.ReserveForOrder(context.Background(), testProductID, testBranchID, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(50), rec.Quantity)
	assert.Equal(t, int64(10), rec.ReservedQuantity)
	assert.Empty(t, store.Movements(), "reservar para una orden no registra movimiento")
}

func TestReserveForOrder_DisponibleInsuficiente(t *testing.T) {
	uc, store := newUseCase()
	seedRecord(store, 5)

	_, err := uc.ReserveForOrder(context.Background(), testProductID, testBranchID, 10)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// ──────────────────────────────────────────────────────────────────────────────
// SettleOrderCompletion
// ──────────────────────────────────────────────────────────────────────────────

// Completar una venta descuenta el stock, consume la retención y deja un
// movimiento SALE con la referencia a la orden.
func TestSettleOrderCompletion_Venta(t *testing.T) {
	uc, store := newUseCase()
	seedRecord(store, 50)
	_, err := uc.ReserveForOrder(context.Background(), testProductID, testBranchID, 10)
	require.NoError(t, err)

	rec, err := uc.SettleOrderCompletion(context.Background(), settleInput(fulfillment.OrderKindSale, 10))
	require.NoError(t, err)

	assert.Equal(t, int64(40), rec.Quantity)
	assert.Equal(t, int64(0), rec.ReservedQuantity)

	movements := store.Movements()
	require.Len(t, movements, 1)
	m := movements[0]
	assert.Equal(t, entity.MovementSale, m.Type)
	assert.Equal(t, int64(50), m.OldQuantity)
	assert.Equal(t, int64(40), m.NewQuantity)
	require.NotNil(t, m.Reference)
	assert.Equal(t, entity.RefSalesOrder, m.Reference.Kind)
	assert.Equal(t, testOrderID, m.Reference.ID)
}

// Las órdenes de servicio registran SERVICE_USE con referencia service_order.
func TestSettleOrderCompletion_Servicio(t *testing.T) {
	uc, store := newUseCase()
	seedRecord(store, 50)
	_, err := uc.ReserveForOrder(context.Background(), testProductID, testBranchID, 3)
	require.NoError(t, err)

	_, err = uc.SettleOrderCompletion(context.Background(), settleInput(fulfillment.OrderKindService, 3))
	require.NoError(t, err)

	movements := store.Movements()
	require.Len(t, movements, 1)
	assert.Equal(t, entity.MovementServiceUse, movements[0].Type)
	require.NotNil(t, movements[0].Reference)
	assert.Equal(t, entity.RefServiceOrder, movements[0].Reference.Kind)
}

func TestSettleOrderCompletion_ClaseDesconocida_Falla(t *testing.T) {
	uc, store := newUseCase()
	seedRecord(store, 50)

	_, err := uc.SettleOrderCompletion(context.Background(), settleInput(fulfillment.OrderKind("rental"), 1))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSettleOrderCompletion_SinOrderID_Falla(t *testing.T) {
	uc, store := newUseCase()
	seedRecord(store, 50)

	input := settleInput(fulfillment.OrderKindSale, 1)
	input.OrderID = ""
	_, err := uc.SettleOrderCompletion(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ──────────────────────────────────────────────────────────────────────────────
// SettleOrderCancellation
// ──────────────────────────────────────────────────────────────────────────────

// Cancelar libera la retención sin mover stock físico y deja una entrada
// SALE_CANCEL auditada con cantidades antes/después iguales.
func TestSettleOrderCancellation_LiberaYAudita(t *testing.T) {
	uc, store := newUseCase()
	seedRecord(store, 50)
	_, err := uc.ReserveForOrder(context.Background(), testProductID, testBranchID, 10)
	require.NoError(t, err)

	rec, err := uc.SettleOrderCancellation(context.Background(), settleInput(fulfillment.OrderKindSale, 10))
	require.NoError(t, err)

	assert.Equal(t, int64(50), rec.Quantity, "cancelar no mueve stock físico")
	assert.Equal(t, int64(0), rec.ReservedQuantity)

	movements := store.Movements()
	require.Len(t, movements, 1)
	m := movements[0]
	assert.Equal(t, entity.MovementSaleCancel, m.Type)
	assert.Equal(t, m.OldQuantity, m.NewQuantity, "SALE_CANCEL registra sin cambio de cantidad")
	assert.Equal(t, int64(50), m.NewQuantity)
	require.NotNil(t, m.Reference)
	assert.Equal(t, entity.RefSalesOrder, m.Reference.Kind)
	assert.Equal(t, testOrderID, m.Reference.ID)
	assert.Equal(t, testUserID, m.PerformedBy)
}

func TestSettleOrderCancellation_RegistroInexistente_Falla(t *testing.T) {
	uc, _ := newUseCase()

	_, err := uc.SettleOrderCancellation(context.Background(), settleInput(fulfillment.OrderKindSale, 10))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// El ciclo completo de una orden (reservar, completar) seguido de otra orden
// cancelada mantiene el invariante reserved <= quantity en todo momento.
func TestFlujoCompleto_DosOrdenes(t *testing.T) {
	uc, store := newUseCase()
	seedRecord(store, 30)
	ctx := context.Background()

	_, err := uc.ReserveForOrder(ctx, testProductID, testBranchID, 20)
	require.NoError(t, err)
	_, err = uc.ReserveForOrder(ctx, testProductID, testBranchID, 10)
	require.NoError(t, err)

	// Primera orden se completa, la segunda se cancela.
	rec, err := uc.SettleOrderCompletion(ctx, settleInput(fulfillment.OrderKindSale, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(10), rec.Quantity)
	assert.Equal(t, int64(10), rec.ReservedQuantity)

	input := settleInput(fulfillment.OrderKindSale, 10)
	input.OrderID = "00000000-0000-0000-0000-0000000000f2"
	rec, err = uc.SettleOrderCancellation(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, int64(10), rec.Quantity)
	assert.Equal(t, int64(0), rec.ReservedQuantity)

	movements := store.Movements()
	require.Len(t, movements, 2)
	assert.Equal(t, entity.MovementSale, movements[0].Type)
	assert.Equal(t, entity.MovementSaleCancel, movements[1].Type)
}
