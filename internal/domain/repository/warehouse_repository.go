package repository

import "github.com/invorya/stocksync-api/internal/domain/entity"

// WarehouseRepository define el puerto de lectura de bodegas (catálogo externo).
type WarehouseRepository interface {
	GetByID(id string) (*entity.Warehouse, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Warehouse, error)
}
