package inventory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/stocksync-api/internal/domain"
	"github.com/invorya/stocksync-api/internal/domain/entity"
	domaininv "github.com/invorya/stocksync-api/internal/domain/inventory"
	"github.com/invorya/stocksync-api/internal/domain/repository"
)

// StockLedger es la única fuente de verdad de cantidad disponible por
// producto/bodega. Se construye sobre un StockRepository atado a la
// transacción del caller; todos los ajustes de un movimiento comparten tx.
type StockLedger struct {
	stocks repository.StockRepository
}

// NewStockLedger construye el libro sobre el repositorio dado (pool o tx).
func NewStockLedger(stocks repository.StockRepository) *StockLedger {
	return &StockLedger{stocks: stocks}
}

// LedgerChange describe una fila de stock tocada por un ajuste.
// Created indica que la fila se creó de forma perezosa en este ajuste.
type LedgerChange struct {
	Row     *entity.Stock
	Created bool
}

// GetQuantity devuelve la cantidad disponible; cero si la fila no existe
// (ausencia significa stock cero, no error).
func (l *StockLedger) GetQuantity(productID, warehouseID string) (decimal.Decimal, error) {
	s, err := l.stocks.Get(productID, warehouseID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.Quantity, nil
}

// Adjust aplica un delta (positivo o negativo) a una fila, creándola si no
// existe y el delta es positivo. Falla con InsufficientStockError si la
// cantidad resultante sería negativa. Devuelve la nueva cantidad.
func (l *StockLedger) Adjust(productID, warehouseID string, delta decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	changes, err := l.AdjustMany([]domaininv.StockDelta{{ProductID: productID, WarehouseID: warehouseID, Delta: delta}}, now)
	if err != nil {
		return decimal.Zero, err
	}
	return changes[0].Row.Quantity, nil
}

// AdjustMany aplica un lote de deltas de forma atómica: primero bloquea todas
// las filas (SELECT FOR UPDATE) en orden determinista de clave para evitar
// deadlocks entre movimientos concurrentes, verifica la no-negatividad de
// TODAS las filas resultantes y solo entonces escribe. Si un solo ajuste
// violaría la no-negatividad, el lote completo se rechaza sin escribir nada.
func (l *StockLedger) AdjustMany(deltas []domaininv.StockDelta, now time.Time) ([]LedgerChange, error) {
	if len(deltas) == 0 {
		return nil, domain.NewValidationError("deltas", "lote vacío")
	}

	ordered := make([]domaininv.StockDelta, len(deltas))
	copy(ordered, deltas)
	sort.Slice(ordered, func(i, j int) bool {
		ki := ordered[i].ProductID + "/" + ordered[i].WarehouseID
		kj := ordered[j].ProductID + "/" + ordered[j].WarehouseID
		return ki < kj
	})

	// Fase 1: bloquear y verificar todas las filas antes de escribir
	changes := make(map[string]*LedgerChange, len(ordered))
	for _, d := range ordered {
		row, err := l.stocks.GetForUpdate(d.ProductID, d.WarehouseID)
		if err != nil {
			return nil, err
		}
		created := row.UpdatedAt.IsZero() // fila ausente: el repo devuelve cantidad cero sin timestamp
		newQty := row.Quantity.Add(d.Delta)
		if newQty.LessThan(decimal.Zero) {
			return nil, &domain.InsufficientStockError{
				ProductID:   d.ProductID,
				WarehouseID: d.WarehouseID,
				Requested:   d.Delta.Neg(),
				Available:   row.Quantity,
			}
		}
		row.Quantity = newQty
		row.UpdatedAt = now
		changes[row.Key()] = &LedgerChange{Row: row, Created: created}
	}

	// Fase 2: escribir; el resultado conserva el orden de entrada original
	out := make([]LedgerChange, 0, len(changes))
	seen := make(map[string]bool, len(changes))
	for _, d := range deltas {
		key := d.ProductID + "/" + d.WarehouseID
		if seen[key] {
			continue
		}
		seen[key] = true
		ch := changes[key]
		if err := l.stocks.Upsert(ch.Row); err != nil {
			return nil, err
		}
		out = append(out, *ch)
	}
	return out, nil
}
