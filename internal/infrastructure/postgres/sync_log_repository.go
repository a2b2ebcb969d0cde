package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/invorya/stocksync-api/internal/domain/entity"
	"github.com/invorya/stocksync-api/internal/domain/repository"
)

var _ repository.SyncLogRepository = (*SyncLogRepo)(nil)

// SyncLogRepo persistencia de corridas de sincronización sobre PostgreSQL.
type SyncLogRepo struct {
	q Querier
}

// NewSyncLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSyncLogRepository(q Querier) *SyncLogRepo {
	return &SyncLogRepo{q: q}
}

// Create inserta la corrida (normalmente en estado running).
func (r *SyncLogRepo) Create(entry *entity.SyncLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sync_logs (id, provider, status, started_at, completed_at, items_count, error_message, backup_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.Provider, entry.Status, entry.StartedAt,
		entry.CompletedAt, entry.ItemsCount, entry.ErrorMessage, entry.BackupPath,
	)
	if err != nil {
		return fmt.Errorf("create sync log: %w", err)
	}
	return nil
}

// Update finaliza la corrida con su estado, conteo y detalle de error.
func (r *SyncLogRepo) Update(entry *entity.SyncLogEntry) error {
	query := `
		UPDATE sync_logs
		SET status = $2, completed_at = $3, items_count = $4, error_message = $5, backup_path = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.Status, entry.CompletedAt, entry.ItemsCount, entry.ErrorMessage, entry.BackupPath,
	)
	if err != nil {
		return fmt.Errorf("update sync log: %w", err)
	}
	return nil
}

// ListRecent devuelve las corridas más recientes primero.
func (r *SyncLogRepo) ListRecent(limit int) ([]*entity.SyncLogEntry, error) {
	query := `
		SELECT id, provider, status, started_at, completed_at, items_count, error_message, backup_path
		FROM sync_logs ORDER BY started_at DESC LIMIT $1`
	rows, err := r.q.Query(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync logs: %w", err)
	}
	defer rows.Close()
	var list []*entity.SyncLogEntry
	for rows.Next() {
		var e entity.SyncLogEntry
		if err := rows.Scan(&e.ID, &e.Provider, &e.Status, &e.StartedAt, &e.CompletedAt, &e.ItemsCount, &e.ErrorMessage, &e.BackupPath); err != nil {
			return nil, fmt.Errorf("scan sync log: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
