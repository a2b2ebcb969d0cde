package entity

import "time"

// Operaciones replicables sobre una entidad (contrato con el proveedor remoto).
const (
	SyncOpCreate = "create"
	SyncOpUpdate = "update"
	SyncOpDelete = "delete"
)

// Tipos de entidad que viajan por la cola de sincronización.
const (
	SyncEntityStock    = "stock"
	SyncEntityMovement = "inventory_movement"
)

// SyncQueueEntry es una fila del outbox: un cambio local confirmado que aún no
// se ha replicado al proveedor remoto. Se inserta en la MISMA transacción que
// el cambio de negocio y se marca con SyncedAt cuando el remoto lo confirma.
// Las filas se conservan (no se borran) para auditoría y replay.
type SyncQueueEntry struct {
	ID         string
	CompanyID  string
	EntityType string
	EntityID   string
	Operation  string // create, update, delete
	Data       string // snapshot JSON de la entidad al momento del cambio
	CreatedAt  time.Time
	SyncedAt   *time.Time // nil = pendiente
}

// IsPending indica si la entrada aún no fue confirmada por el remoto.
func (e *SyncQueueEntry) IsPending() bool { return e.SyncedAt == nil }

// DedupKey agrupa entradas que colapsan bajo la política de snapshot.
func (e *SyncQueueEntry) DedupKey() string {
	return e.EntityType + "|" + e.EntityID + "|" + e.Operation
}
