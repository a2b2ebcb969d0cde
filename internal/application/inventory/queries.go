package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/stocksync-api/internal/domain"
	"github.com/invorya/stocksync-api/internal/domain/entity"
	"github.com/invorya/stocksync-api/internal/domain/repository"
)

// StockQueryUseCase resuelve consultas de solo lectura sobre el libro de
// stock y el historial de movimientos (fuera de transacción).
type StockQueryUseCase struct {
	stockRepo     repository.StockRepository
	movRepo       repository.InventoryMovementRepository
	warehouseRepo repository.WarehouseRepository
}

// NewStockQueryUseCase construye el caso de uso de consultas.
func NewStockQueryUseCase(
	stockRepo repository.StockRepository,
	movRepo repository.InventoryMovementRepository,
	warehouseRepo repository.WarehouseRepository,
) *StockQueryUseCase {
	return &StockQueryUseCase{stockRepo: stockRepo, movRepo: movRepo, warehouseRepo: warehouseRepo}
}

// GetQuantity devuelve la cantidad disponible de un producto en una bodega de
// la empresa. Fila ausente significa cero.
func (uc *StockQueryUseCase) GetQuantity(ctx context.Context, companyID, productID, warehouseID string) (decimal.Decimal, error) {
	if productID == "" || warehouseID == "" {
		return decimal.Zero, domain.ErrInvalidInput
	}
	if err := uc.checkWarehouse(companyID, warehouseID); err != nil {
		return decimal.Zero, err
	}
	return NewStockLedger(uc.stockRepo).GetQuantity(productID, warehouseID)
}

// ListMovements lista el historial por bodega o por producto (uno de los dos).
func (uc *StockQueryUseCase) ListMovements(ctx context.Context, companyID, warehouseID, productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	switch {
	case warehouseID != "":
		if err := uc.checkWarehouse(companyID, warehouseID); err != nil {
			return nil, err
		}
		return uc.movRepo.ListByWarehouse(warehouseID, from, to, limit, offset)
	case productID != "":
		return uc.movRepo.ListByProduct(productID, from, to, limit, offset)
	}
	return nil, domain.NewValidationError("warehouse_id", "indicar bodega o producto")
}

// GetMovement devuelve un movimiento con sus líneas, verificando que
// pertenezca a la empresa del caller.
func (uc *StockQueryUseCase) GetMovement(ctx context.Context, companyID, id string) (*entity.InventoryMovement, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	mov, err := uc.movRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	if mov.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return mov, nil
}

// ListLowStock devuelve las filas de stock en o por debajo del punto de
// reorden del producto.
func (uc *StockQueryUseCase) ListLowStock(ctx context.Context, companyID string, limit, offset int) ([]*entity.Stock, error) {
	return uc.stockRepo.ListLowStock(companyID, limit, offset)
}

func (uc *StockQueryUseCase) checkWarehouse(companyID, warehouseID string) error {
	wh, err := uc.warehouseRepo.GetByID(warehouseID)
	if err != nil {
		return err
	}
	if wh == nil {
		return domain.ErrNotFound
	}
	if wh.CompanyID != companyID {
		return domain.ErrForbidden
	}
	return nil
}
