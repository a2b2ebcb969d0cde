package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de ciclo de vida de un producto.
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Product representa un producto o SKU del inventario (multi-bodega).
// Cost es promedio ponderado calculado desde movimientos; el stock se maneja
// por bodega en Stock. El catálogo es dueño del producto; el motor de
// inventario solo lo lee (salvo el costo promedio).
type Product struct {
	ID          string
	CompanyID   string
	Code        string // código único por empresa
	Name        string
	Description string
	Unit        string          // unidad de medida (und, kg, lt, ...)
	Cost        decimal.Decimal // costo promedio ponderado (inicia en 0)
	Price       decimal.Decimal // precio de venta
	MinStock    decimal.Decimal // punto de reorden
	MaxStock    decimal.Decimal // tope sugerido de almacenamiento
	Status      string          // active, inactive
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive indica si el producto acepta movimientos.
func (p *Product) IsActive() bool { return p.Status == ProductStatusActive }
