package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/invorya/stocksync-api/internal/domain"
	"github.com/invorya/stocksync-api/internal/domain/entity"
	"github.com/invorya/stocksync-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste cabecera y líneas del movimiento. Llamar dentro de la misma
// transacción que los ajustes de stock.
func (r *InventoryMovementRepo) Create(movement *entity.InventoryMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (id, company_id, type, date, user_id, warehouse_from_id, warehouse_to_id, reference, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.CompanyID, movement.Type, movement.Date, movement.UserID,
		movement.WarehouseFromID, movement.WarehouseToID, movement.Reference, movement.Notes, movement.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create inventory movement: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("create inventory movement: %w", err)
	}

	itemQuery := `
		INSERT INTO movement_items (id, movement_id, product_id, quantity, unit_cost, unit_price, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, it := range movement.Items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.MovementID = movement.ID
		if _, err := r.q.Exec(context.Background(), itemQuery,
			it.ID, it.MovementID, it.ProductID, it.Quantity, it.UnitCost, it.UnitPrice, it.Notes,
		); err != nil {
			return fmt.Errorf("create movement item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene un movimiento con sus líneas.
func (r *InventoryMovementRepo) GetByID(id string) (*entity.InventoryMovement, error) {
	query := `
		SELECT id, company_id, type, date, user_id, warehouse_from_id, warehouse_to_id, reference, notes, created_at
		FROM inventory_movements WHERE id = $1`
	var m entity.InventoryMovement
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&m.ID, &m.CompanyID, &m.Type, &m.Date, &m.UserID,
		&m.WarehouseFromID, &m.WarehouseToID, &m.Reference, &m.Notes, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	if err := r.loadItems(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByWarehouse lista movimientos de una bodega (origen o destino) en un rango de fechas.
func (r *InventoryMovementRepo) ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT id, company_id, type, date, user_id, warehouse_from_id, warehouse_to_id, reference, notes, created_at
		FROM inventory_movements WHERE (warehouse_from_id = $1 OR warehouse_to_id = $1)`
	args := []any{warehouseID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND date <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY date DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	return r.list(query, args)
}

// ListByProduct lista movimientos que incluyen un producto en alguna línea.
func (r *InventoryMovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT DISTINCT m.id, m.company_id, m.type, m.date, m.user_id, m.warehouse_from_id, m.warehouse_to_id, m.reference, m.notes, m.created_at
		FROM inventory_movements m
		JOIN movement_items i ON i.movement_id = m.id
		WHERE i.product_id = $1`
	args := []any{productID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND m.date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND m.date <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY m.date DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	return r.list(query, args)
}

func (r *InventoryMovementRepo) list(query string, args []any) ([]*entity.InventoryMovement, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.Type, &m.Date, &m.UserID,
			&m.WarehouseFromID, &m.WarehouseToID, &m.Reference, &m.Notes, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, m := range list {
		if err := r.loadItems(m); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *InventoryMovementRepo) loadItems(m *entity.InventoryMovement) error {
	query := `
		SELECT id, movement_id, product_id, quantity, unit_cost, unit_price, notes
		FROM movement_items WHERE movement_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, m.ID)
	if err != nil {
		return fmt.Errorf("load movement items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.MovementItem
		if err := rows.Scan(&it.ID, &it.MovementID, &it.ProductID, &it.Quantity, &it.UnitCost, &it.UnitPrice, &it.Notes); err != nil {
			return fmt.Errorf("scan movement item: %w", err)
		}
		m.Items = append(m.Items, &it)
	}
	return rows.Err()
}
