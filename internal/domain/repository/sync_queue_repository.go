package repository

import "github.com/invorya/stocksync-api/internal/domain/entity"

// SyncQueueRepository define el puerto del outbox de sincronización.
// Enqueue corre dentro de la transacción del cambio de negocio (patrón outbox);
// el consumo (Peek/Mark) corre fuera, desde el SyncRunner.
type SyncQueueRepository interface {
	// Enqueue inserta una entrada pendiente. Solo-insert; la deduplicación de
	// cambios repetidos es responsabilidad del SyncRunner.
	Enqueue(entry *entity.SyncQueueEntry) error
	// PeekPending devuelve las entradas sin sincronizar más antiguas primero
	// (FIFO por orden de inserción), acotadas por limit.
	PeekPending(limit int) ([]*entity.SyncQueueEntry, error)
	// MarkSynced fija synced_at; las entradas se conservan para auditoría/replay.
	MarkSynced(ids []string) error
	CountPending() (int, error)
}
