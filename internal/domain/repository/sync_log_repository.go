package repository

import "github.com/invorya/stocksync-api/internal/domain/entity"

// SyncLogRepository define el puerto de persistencia de corridas de sincronización.
type SyncLogRepository interface {
	Create(entry *entity.SyncLogEntry) error
	// Update finaliza la corrida (status, completed_at, items_count, error, backup).
	Update(entry *entity.SyncLogEntry) error
	ListRecent(limit int) ([]*entity.SyncLogEntry, error)
}
