package inventory

import (
	"context"

	"github.com/invorya/stocksync-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad entre los ajustes de
// stock, la cabecera del movimiento y las entradas del outbox (mismo commit).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		queueRepo repository.SyncQueueRepository,
	) error) error
}
