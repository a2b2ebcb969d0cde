package repository

import "github.com/invorya/stocksync-api/internal/domain/entity"

// AuditLogRepository es el sink de auditoría: persiste los eventos que el core
// emite después de un movimiento aplicado o una corrida de sincronización.
// El core no formatea ni entrega notificaciones; solo registra el evento.
type AuditLogRepository interface {
	Create(entry *entity.AuditLog) error
}
