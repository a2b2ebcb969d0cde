package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario (contrato de persistencia y de wire).
const (
	MovementTypeIN         = "IN"         // entrada
	MovementTypeOUT        = "OUT"        // salida
	MovementTypeTRANSFER   = "TRANSFER"   // traslado entre bodegas
	MovementTypeADJUSTMENT = "ADJUSTMENT" // ajuste con signo
)

// InventoryMovement es la cabecera de un movimiento multi-línea.
// TRANSFER exige ambas bodegas y distintas; IN solo WarehouseToID; OUT solo
// WarehouseFromID; ADJUSTMENT exactamente una de las dos (la dirección la da
// el signo de las cantidades de línea).
type InventoryMovement struct {
	ID              string
	CompanyID       string
	Type            string
	Date            time.Time
	UserID          string // quien autorizó el movimiento
	WarehouseFromID *string
	WarehouseToID   *string
	Reference       string
	Notes           string
	CreatedAt       time.Time
	Items           []*MovementItem
}

// MovementItem es la línea de un movimiento. Quantity es positiva salvo en
// ADJUSTMENT, donde el signo indica la dirección del ajuste.
type MovementItem struct {
	ID         string
	MovementID string
	ProductID  string
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	UnitPrice  decimal.Decimal
	Notes      string
}
