package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/invorya/stocksync-api/internal/domain/entity"
	"github.com/invorya/stocksync-api/internal/domain/repository"
)

var _ repository.SyncQueueRepository = (*SyncQueueRepo)(nil)

// SyncQueueRepo outbox de sincronización sobre PostgreSQL (usable con pool o tx).
// Enqueue se llama dentro de la transacción del movimiento; Peek/Mark desde el
// único SyncRunner activo.
type SyncQueueRepo struct {
	q Querier
}

// NewSyncQueueRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSyncQueueRepository(q Querier) *SyncQueueRepo {
	return &SyncQueueRepo{q: q}
}

// Enqueue inserta una entrada pendiente (solo-insert).
func (r *SyncQueueRepo) Enqueue(entry *entity.SyncQueueEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sync_queue (id, company_id, entity_type, entity_id, operation, data, created_at, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULL)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.CompanyID, entry.EntityType, entry.EntityID, entry.Operation, entry.Data, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("enqueue sync entry: %w", err)
	}
	return nil
}

// PeekPending devuelve las entradas sin sincronizar más antiguas primero
// (FIFO por inserción; id desempata creaciones en el mismo instante).
func (r *SyncQueueRepo) PeekPending(limit int) ([]*entity.SyncQueueEntry, error) {
	query := `
		SELECT id, company_id, entity_type, entity_id, operation, data, created_at, synced_at
		FROM sync_queue WHERE synced_at IS NULL
		ORDER BY created_at ASC, id ASC
		LIMIT $1`
	rows, err := r.q.Query(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("peek pending: %w", err)
	}
	defer rows.Close()
	var list []*entity.SyncQueueEntry
	for rows.Next() {
		var e entity.SyncQueueEntry
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.EntityType, &e.EntityID, &e.Operation, &e.Data, &e.CreatedAt, &e.SyncedAt); err != nil {
			return nil, fmt.Errorf("scan sync entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// MarkSynced fija synced_at = now() en las entradas indicadas; se conservan
// para auditoría y replay.
func (r *SyncQueueRepo) MarkSynced(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE sync_queue SET synced_at = now() WHERE id = ANY($1)`
	_, err := r.q.Exec(context.Background(), query, ids)
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

// CountPending cuenta las entradas sin replicar.
func (r *SyncQueueRepo) CountPending() (int, error) {
	var n int
	err := r.q.QueryRow(context.Background(), `SELECT count(*) FROM sync_queue WHERE synced_at IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}
	return n, nil
}
