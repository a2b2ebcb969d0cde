package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock representa la fila del libro de inventario: cantidad actual de un
// producto en una bodega. Única por (ProductID, WarehouseID); la cantidad
// nunca es negativa. Se crea de forma perezosa la primera vez que el producto
// entra a la bodega.
type Stock struct {
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
	UpdatedAt   time.Time
}

// Key devuelve la clave lógica producto/bodega de la fila.
func (s *Stock) Key() string { return s.ProductID + "/" + s.WarehouseID }
