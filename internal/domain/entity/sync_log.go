package entity

import "time"

// Estados de una corrida de sincronización (contrato de wire).
const (
	SyncStatusRunning   = "running"
	SyncStatusSucceeded = "succeeded"
	SyncStatusPartial   = "partial"
	SyncStatusFailed    = "failed"
)

// SyncLogEntry resume una corrida del SyncRunner contra un proveedor remoto.
// ItemsCount es el número de entradas confirmadas por el remoto en la corrida.
type SyncLogEntry struct {
	ID           string
	Provider     string
	Status       string // running, succeeded, partial, failed
	StartedAt    time.Time
	CompletedAt  *time.Time
	ItemsCount   int
	ErrorMessage *string
	BackupPath   *string // snapshot local previo a la corrida, para rollback
}
