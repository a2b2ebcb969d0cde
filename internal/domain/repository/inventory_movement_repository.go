package repository

import (
	"time"

	"github.com/invorya/stocksync-api/internal/domain/entity"
)

// InventoryMovementRepository define el puerto de persistencia para movimientos
// (cabecera + líneas).
type InventoryMovementRepository interface {
	// Create persiste cabecera y líneas. Debe ejecutarse dentro de la misma
	// transacción que los ajustes de stock.
	Create(movement *entity.InventoryMovement) error
	GetByID(id string) (*entity.InventoryMovement, error)
	ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
	ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
}
