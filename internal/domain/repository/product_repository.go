package repository

import (
	"github.com/shopspring/decimal"

	"github.com/invorya/stocksync-api/internal/domain/entity"
)

// ProductRepository define el puerto de lectura del catálogo de productos.
// El motor de inventario nunca muta el catálogo, salvo el costo promedio.
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
	GetByCompanyAndCode(companyID, code string) (*entity.Product, error)
	UpdateCost(productID string, cost decimal.Decimal) error
}
