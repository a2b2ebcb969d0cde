package repository

import "github.com/invorya/stocksync-api/internal/domain/entity"

// StockRepository define el puerto para consultar/actualizar stock por bodega+producto.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// Get devuelve la fila; si no existe, una fila con cantidad cero (ausencia = cero).
	Get(productID, warehouseID string) (*entity.Stock, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(productID, warehouseID string) (*entity.Stock, error)
	Upsert(stock *entity.Stock) error
	// ListLowStock devuelve las filas en o por debajo del min_stock del producto.
	ListLowStock(companyID string, limit, offset int) ([]*entity.Stock, error)
}
