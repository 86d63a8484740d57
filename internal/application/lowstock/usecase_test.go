package lowstock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/StockLedger-api/internal/application/lowstock"
	"github.com/jhoicas/StockLedger-api/internal/domain/entity"
	"github.com/jhoicas/StockLedger-api/internal/infrastructure/memory"
)

const testBranchID = "00000000-0000-0000-0000-0000000000b1"

func seed(store *memory.Store, productID string, qty, reorderPoint, reorderQty int64) {
	store.Seed(&entity.StockRecord{
		ID:              "rec-" + productID,
		ProductID:       productID,
		BranchID:        testBranchID,
		Quantity:        qty,
		ReorderPoint:    reorderPoint,
		ReorderQuantity: reorderQty,
	})
}

// Solo entran los registros en o bajo su punto de reorden, los agotados
// primero.
func TestList_OrdenaPorCriticidad(t *testing.T) {
	store := memory.NewStore()
	seed(store, "prod-sano", 50, 5, 0)
	seed(store, "prod-bajo", 4, 5, 0)
	seed(store, "prod-agotado", 0, 5, 0)
	uc := lowstock.NewUseCase(store.RecordRepo())

	items, err := uc.List(context.Background(), testBranchID, 0, 0)
	require.NoError(t, err)

	require.Len(t, items, 2, "el registro sobre su punto de reorden no entra")
	assert.Equal(t, "prod-agotado", items[0].ProductID, "los agotados van primero")
	assert.Equal(t, "out_of_stock", items[0].Status)
	assert.Equal(t, "prod-bajo", items[1].ProductID)
	assert.Equal(t, "low_stock", items[1].Status)
}

// Con cantidad de reorden configurada, esa es la sugerencia; sin ella se
// sugiere llevar la existencia a punto de reorden * 1.5.
func TestList_CantidadSugerida(t *testing.T) {
	store := memory.NewStore()
	seed(store, "prod-configurado", 2, 10, 40)
	seed(store, "prod-sin-config", 2, 10, 0)
	uc := lowstock.NewUseCase(store.RecordRepo())

	items, err := uc.List(context.Background(), testBranchID, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byProduct := map[string]int64{}
	for _, item := range items {
		byProduct[item.ProductID] = item.SuggestedQuantity
	}
	assert.Equal(t, int64(40), byProduct["prod-configurado"])
	assert.Equal(t, int64(13), byProduct["prod-sin-config"], "10 + 10/2 - 2")
}

// La paginación corta por la misma clave de severidad con la que se ordena:
// un registro más severo nunca queda fuera de la página por uno más leve.
func TestList_PaginaPorSeveridad(t *testing.T) {
	store := memory.NewStore()
	seed(store, "prod-leve", 4, 5, 0)
	seed(store, "prod-critico", 1, 10, 0)
	seed(store, "prod-agotado", 0, 5, 0)
	uc := lowstock.NewUseCase(store.RecordRepo())

	page1, err := uc.List(context.Background(), testBranchID, 2, 0)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, "prod-agotado", page1[0].ProductID)
	assert.Equal(t, "prod-critico", page1[1].ProductID, "el faltante de 9 entra antes que el de 1")

	page2, err := uc.List(context.Background(), testBranchID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "prod-leve", page2[0].ProductID)
}

func TestList_FiltraPorSucursal(t *testing.T) {
	store := memory.NewStore()
	seed(store, "prod-a", 0, 5, 0)
	store.Seed(&entity.StockRecord{
		ID:           "rec-otra",
		ProductID:    "prod-b",
		BranchID:     "otra-sucursal",
		Quantity:     0,
		ReorderPoint: 5,
	})
	uc := lowstock.NewUseCase(store.RecordRepo())

	items, err := uc.List(context.Background(), testBranchID, 0, 0)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, "prod-a", items[0].ProductID)
}
