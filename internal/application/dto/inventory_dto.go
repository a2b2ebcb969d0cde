package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// IN: warehouse_to_id; OUT: warehouse_from_id; TRANSFER: ambos y distintos;
// ADJUSTMENT: exactamente uno, cantidades de línea con signo.
type RegisterMovementRequest struct {
	Type            string                `json:"type"`
	Date            *time.Time            `json:"date,omitempty"`
	WarehouseFromID string                `json:"warehouse_from_id,omitempty"`
	WarehouseToID   string                `json:"warehouse_to_id,omitempty"`
	Reference       string                `json:"reference,omitempty"`
	Notes           string                `json:"notes,omitempty"`
	Items           []MovementItemRequest `json:"items"`
}

// MovementItemRequest línea del movimiento.
type MovementItemRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Notes     string           `json:"notes,omitempty"`
}

// MovementResponse cabecera devuelta tras registrar o listar movimientos.
type MovementResponse struct {
	ID              string                 `json:"id"`
	Type            string                 `json:"type"`
	Date            time.Time              `json:"date"`
	UserID          string                 `json:"user_id"`
	WarehouseFromID *string                `json:"warehouse_from_id,omitempty"`
	WarehouseToID   *string                `json:"warehouse_to_id,omitempty"`
	Reference       string                 `json:"reference,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	Items           []MovementItemResponse `json:"items"`
}

// MovementItemResponse línea devuelta en consultas.
type MovementItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Notes     string          `json:"notes,omitempty"`
}

// StockResponse cantidad disponible de un producto en una bodega.
type StockResponse struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}
