package syncing

import (
	"context"

	"github.com/invorya/stocksync-api/internal/domain/entity"
	"github.com/invorya/stocksync-api/internal/domain/repository"
)

// QueryUseCase consultas de solo lectura sobre el estado de sincronización.
type QueryUseCase struct {
	logs  repository.SyncLogRepository
	queue repository.SyncQueueRepository
}

// NewQueryUseCase construye el caso de uso de consultas de sincronización.
func NewQueryUseCase(logs repository.SyncLogRepository, queue repository.SyncQueueRepository) *QueryUseCase {
	return &QueryUseCase{logs: logs, queue: queue}
}

// ListLogs devuelve las corridas más recientes.
func (uc *QueryUseCase) ListLogs(ctx context.Context, limit int) ([]*entity.SyncLogEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	return uc.logs.ListRecent(limit)
}

// PendingCount devuelve cuántas entradas del outbox siguen sin replicar.
func (uc *QueryUseCase) PendingCount(ctx context.Context) (int, error) {
	return uc.queue.CountPending()
}
