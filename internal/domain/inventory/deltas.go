package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/invorya/stocksync-api/internal/domain"
	"github.com/invorya/stocksync-api/internal/domain/entity"
)

// StockDelta es el efecto de un movimiento sobre una fila de stock.
// Delta puede ser positivo o negativo; la fila se identifica por producto+bodega.
type StockDelta struct {
	ProductID   string
	WarehouseID string
	Delta       decimal.Decimal
}

// Validate verifica los invariantes estructurales de un movimiento antes de
// tocar la base: tipo conocido, lista de líneas no vacía, combinación de
// bodegas consistente con el tipo y signos de cantidad correctos.
// No consulta existencia de productos/bodegas; eso es del caso de uso.
func Validate(m *entity.InventoryMovement) error {
	if len(m.Items) == 0 {
		return domain.NewValidationError("items", "el movimiento debe tener al menos una línea")
	}
	from := m.WarehouseFromID != nil && *m.WarehouseFromID != ""
	to := m.WarehouseToID != nil && *m.WarehouseToID != ""

	switch m.Type {
	case entity.MovementTypeIN:
		if !to || from {
			return domain.NewValidationError("warehouse_to_id", "IN requiere solo bodega destino")
		}
	case entity.MovementTypeOUT:
		if !from || to {
			return domain.NewValidationError("warehouse_from_id", "OUT requiere solo bodega origen")
		}
	case entity.MovementTypeTRANSFER:
		if !from || !to {
			return domain.NewValidationError("warehouse_from_id", "TRANSFER requiere bodega origen y destino")
		}
		if *m.WarehouseFromID == *m.WarehouseToID {
			return domain.NewValidationError("warehouse_to_id", "TRANSFER requiere bodegas distintas")
		}
	case entity.MovementTypeADJUSTMENT:
		if from == to { // ninguna o ambas
			return domain.NewValidationError("warehouse_from_id", "ADJUSTMENT requiere exactamente una bodega")
		}
	default:
		return domain.NewValidationError("type", "tipo de movimiento desconocido: "+m.Type)
	}

	for _, it := range m.Items {
		if it.ProductID == "" {
			return domain.NewValidationError("items.product_id", "línea sin producto")
		}
		if it.Quantity.IsZero() {
			return domain.NewValidationError("items.quantity", "la cantidad no puede ser cero")
		}
		// Solo ADJUSTMENT admite cantidades con signo
		if m.Type != entity.MovementTypeADJUSTMENT && !it.Quantity.GreaterThan(decimal.Zero) {
			return domain.NewValidationError("items.quantity", "la cantidad debe ser positiva")
		}
	}
	return nil
}

// BuildDeltas valida el movimiento y calcula la lista de deltas de stock:
// IN suma en destino, OUT resta en origen, TRANSFER resta en origen y suma en
// destino (dos deltas por línea), ADJUSTMENT aplica la cantidad con signo en
// la única bodega referenciada. Deltas de la misma fila (producto, bodega) se
// fusionan conservando el orden de primera aparición.
func BuildDeltas(m *entity.InventoryMovement) ([]StockDelta, error) {
	if err := Validate(m); err != nil {
		return nil, err
	}

	var raw []StockDelta
	for _, it := range m.Items {
		switch m.Type {
		case entity.MovementTypeIN:
			raw = append(raw, StockDelta{it.ProductID, *m.WarehouseToID, it.Quantity})
		case entity.MovementTypeOUT:
			raw = append(raw, StockDelta{it.ProductID, *m.WarehouseFromID, it.Quantity.Neg()})
		case entity.MovementTypeTRANSFER:
			raw = append(raw,
				StockDelta{it.ProductID, *m.WarehouseFromID, it.Quantity.Neg()},
				StockDelta{it.ProductID, *m.WarehouseToID, it.Quantity},
			)
		case entity.MovementTypeADJUSTMENT:
			wh := m.WarehouseToID
			if m.WarehouseFromID != nil && *m.WarehouseFromID != "" {
				wh = m.WarehouseFromID
			}
			raw = append(raw, StockDelta{it.ProductID, *wh, it.Quantity})
		}
	}
	return mergeDeltas(raw), nil
}

// mergeDeltas fusiona deltas de la misma fila de stock en uno solo.
func mergeDeltas(deltas []StockDelta) []StockDelta {
	idx := make(map[string]int, len(deltas))
	var merged []StockDelta
	for _, d := range deltas {
		key := d.ProductID + "/" + d.WarehouseID
		if i, ok := idx[key]; ok {
			merged[i].Delta = merged[i].Delta.Add(d.Delta)
			continue
		}
		idx[key] = len(merged)
		merged = append(merged, d)
	}
	return merged
}
