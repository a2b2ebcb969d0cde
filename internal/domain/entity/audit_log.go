package entity

import "time"

// Acciones auditables emitidas por el motor de inventario y el sincronizador.
const (
	AuditActionMovementApplied = "movement_applied"
	AuditActionSyncRun         = "sync_run"
)

// AuditLog es el evento estructurado que el core emite hacia el sink de
// auditoría después de un movimiento aplicado o una corrida de sincronización.
type AuditLog struct {
	ID         string
	CompanyID  string
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	Details    string // JSON libre con el detalle del evento
	CreatedAt  time.Time
}
