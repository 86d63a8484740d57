// Package lowstock lista los registros en o por debajo de su punto de
// reorden con una cantidad sugerida de pedido.
package lowstock

import (
	"context"

	"github.com/jhoicas/StockLedger-api/internal/application/dto"
	"github.com/jhoicas/StockLedger-api/internal/domain/repository"
)

// UseCase genera la lista de reposición por sucursal.
type UseCase struct {
	recordRepo repository.StockRecordRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(recordRepo repository.StockRecordRepository) *UseCase {
	return &UseCase{recordRepo: recordRepo}
}

// List devuelve los registros bajo punto de reorden, los más críticos
// primero (agotados antes que bajos, luego por faltante frente al punto de
// reorden). El repositorio ordena y pagina por esa misma clave de severidad.
// branchID vacío considera todas las sucursales.
func (uc *UseCase) List(ctx context.Context, branchID string, limit, offset int) ([]dto.LowStockItem, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	records, err := uc.recordRepo.ListBelowReorderPoint(branchID, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]dto.LowStockItem, 0, len(records))
	for _, rec := range records {
		suggested := rec.ReorderQuantity
		if suggested <= 0 {
			// Sin cantidad de reorden configurada: llevar la existencia a
			// punto de reorden * 1.5.
			suggested = rec.ReorderPoint + rec.ReorderPoint/2 - rec.Quantity
			if suggested < 0 {
				suggested = 0
			}
		}
		items = append(items, dto.LowStockItem{
			ProductID:         rec.ProductID,
			BranchID:          rec.BranchID,
			Quantity:          rec.Quantity,
			ReservedQuantity:  rec.ReservedQuantity,
			AvailableQuantity: rec.Available(),
			ReorderPoint:      rec.ReorderPoint,
			SuggestedQuantity: suggested,
			Status:            string(rec.Status()),
		})
	}
	return items, nil
}
