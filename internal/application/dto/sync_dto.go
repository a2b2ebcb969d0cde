package dto

import "time"

// SyncLogResponse resumen de una corrida de sincronización.
type SyncLogResponse struct {
	ID           string     `json:"id"`
	Provider     string     `json:"provider"`
	Status       string     `json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ItemsCount   int        `json:"items_count"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	BackupPath   *string    `json:"backup_path,omitempty"`
}

// SyncPendingResponse conteo de entradas del outbox sin replicar.
type SyncPendingResponse struct {
	Pending int `json:"pending"`
}
