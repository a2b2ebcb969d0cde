package inventory

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/stocksync-api/internal/domain/entity"
)

// Snapshots JSON que viajan en SyncQueueEntry.Data hacia el proveedor remoto.
// El formato es estable: el remoto debe poder aplicar cada snapshot de forma
// idempotente por (entity_type, entity_id, operation).

type stockSnapshot struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type movementSnapshot struct {
	ID              string                 `json:"id"`
	CompanyID       string                 `json:"company_id"`
	Type            string                 `json:"type"`
	Date            time.Time              `json:"date"`
	UserID          string                 `json:"user_id"`
	WarehouseFromID *string                `json:"warehouse_from_id,omitempty"`
	WarehouseToID   *string                `json:"warehouse_to_id,omitempty"`
	Reference       string                 `json:"reference,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	Items           []movementItemSnapshot `json:"items"`
}

type movementItemSnapshot struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Notes     string          `json:"notes,omitempty"`
}

func marshalStockSnapshot(s *entity.Stock) (string, error) {
	b, err := json.Marshal(stockSnapshot{
		ProductID:   s.ProductID,
		WarehouseID: s.WarehouseID,
		Quantity:    s.Quantity,
		UpdatedAt:   s.UpdatedAt,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func marshalMovementSnapshot(m *entity.InventoryMovement) (string, error) {
	snap := movementSnapshot{
		ID:              m.ID,
		CompanyID:       m.CompanyID,
		Type:            m.Type,
		Date:            m.Date,
		UserID:          m.UserID,
		WarehouseFromID: m.WarehouseFromID,
		WarehouseToID:   m.WarehouseToID,
		Reference:       m.Reference,
		Notes:           m.Notes,
		CreatedAt:       m.CreatedAt,
	}
	for _, it := range m.Items {
		snap.Items = append(snap.Items, movementItemSnapshot{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitCost:  it.UnitCost,
			UnitPrice: it.UnitPrice,
			Notes:     it.Notes,
		})
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
