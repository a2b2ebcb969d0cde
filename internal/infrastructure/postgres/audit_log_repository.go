package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/invorya/stocksync-api/internal/domain/entity"
	"github.com/invorya/stocksync-api/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo sink de auditoría sobre PostgreSQL.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

// Create persiste el evento de auditoría.
func (r *AuditLogRepo) Create(entry *entity.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	userID := (*string)(nil)
	if entry.UserID != "" {
		userID = &entry.UserID
	}
	companyID := (*string)(nil)
	if entry.CompanyID != "" {
		companyID = &entry.CompanyID
	}
	query := `
		INSERT INTO audit_logs (id, company_id, user_id, action, entity_type, entity_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, companyID, userID, entry.Action, entry.EntityType, entry.EntityID, entry.Details, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
