package inventory_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/stocksync-api/internal/domain"
	"github.com/invorya/stocksync-api/internal/domain/entity"
	"github.com/invorya/stocksync-api/internal/domain/repository"
)

// fakeStore es el estado en memoria compartido por los repos fake. El
// fakeTxRunner clona el estado antes de cada Run y solo lo publica si la
// función termina sin error, emulando commit/rollback.
type fakeStore struct {
	stocks    map[string]*entity.Stock
	products  map[string]*entity.Product
	movements []*entity.InventoryMovement
	queue     []*entity.SyncQueueEntry
	locked    []string // claves pasadas por GetForUpdate, en orden
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		stocks:   make(map[string]*entity.Stock),
		products: make(map[string]*entity.Product),
	}
}

func (s *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	for k, v := range s.stocks {
		cp := *v
		c.stocks[k] = &cp
	}
	for k, v := range s.products {
		cp := *v
		c.products[k] = &cp
	}
	c.movements = append(c.movements, s.movements...)
	c.queue = append(c.queue, s.queue...)
	c.locked = append(c.locked, s.locked...)
	return c
}

func (s *fakeStore) setStock(productID, warehouseID, quantity string) {
	row := &entity.Stock{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    decimal.RequireFromString(quantity),
		UpdatedAt:   time.Now(),
	}
	s.stocks[row.Key()] = row
}

func (s *fakeStore) pendingQueue() []*entity.SyncQueueEntry {
	var out []*entity.SyncQueueEntry
	for _, e := range s.queue {
		if e.IsPending() {
			out = append(out, e)
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────

type fakeStockRepo struct{ store *fakeStore }

func (r *fakeStockRepo) Get(productID, warehouseID string) (*entity.Stock, error) {
	key := productID + "/" + warehouseID
	if row, ok := r.store.stocks[key]; ok {
		cp := *row
		return &cp, nil
	}
	// Ausencia = cero, sin timestamp (mismo contrato que el repo real).
	return &entity.Stock{ProductID: productID, WarehouseID: warehouseID, Quantity: decimal.Zero}, nil
}

func (r *fakeStockRepo) GetForUpdate(productID, warehouseID string) (*entity.Stock, error) {
	r.store.locked = append(r.store.locked, productID+"/"+warehouseID)
	return r.Get(productID, warehouseID)
}

func (r *fakeStockRepo) Upsert(stock *entity.Stock) error {
	cp := *stock
	r.store.stocks[stock.Key()] = &cp
	return nil
}

func (r *fakeStockRepo) ListLowStock(companyID string, limit, offset int) ([]*entity.Stock, error) {
	var out []*entity.Stock
	for _, row := range r.store.stocks {
		p, ok := r.store.products[row.ProductID]
		if !ok || p.CompanyID != companyID {
			continue
		}
		if row.Quantity.LessThanOrEqual(p.MinStock) {
			cp := *row
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quantity.LessThan(out[j].Quantity) })
	return out, nil
}

type fakeProductRepo struct{ store *fakeStore }

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	if p, ok := r.store.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeProductRepo) GetByCompanyAndCode(companyID, code string) (*entity.Product, error) {
	for _, p := range r.store.products {
		if p.CompanyID == companyID && p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) UpdateCost(productID string, cost decimal.Decimal) error {
	p, ok := r.store.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Cost = cost
	return nil
}

type fakeMovementRepo struct{ store *fakeStore }

func (r *fakeMovementRepo) Create(m *entity.InventoryMovement) error {
	r.store.movements = append(r.store.movements, m)
	return nil
}

func (r *fakeMovementRepo) GetByID(id string) (*entity.InventoryMovement, error) {
	for _, m := range r.store.movements {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (r *fakeMovementRepo) ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for _, m := range r.store.movements {
		if (m.WarehouseFromID != nil && *m.WarehouseFromID == warehouseID) ||
			(m.WarehouseToID != nil && *m.WarehouseToID == warehouseID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for _, m := range r.store.movements {
		for _, it := range m.Items {
			if it.ProductID == productID {
				out = append(out, m)
				break
			}
		}
	}
	return out, nil
}

type fakeQueueRepo struct{ store *fakeStore }

func (r *fakeQueueRepo) Enqueue(entry *entity.SyncQueueEntry) error {
	cp := *entry
	r.store.queue = append(r.store.queue, &cp)
	return nil
}

func (r *fakeQueueRepo) PeekPending(limit int) ([]*entity.SyncQueueEntry, error) {
	out := r.store.pendingQueue()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeQueueRepo) MarkSynced(ids []string) error {
	now := time.Now()
	byID := make(map[string]bool, len(ids))
	for _, id := range ids {
		byID[id] = true
	}
	for _, e := range r.store.queue {
		if byID[e.ID] {
			t := now
			e.SyncedAt = &t
		}
	}
	return nil
}

func (r *fakeQueueRepo) CountPending() (int, error) {
	return len(r.store.pendingQueue()), nil
}

type fakeWarehouseRepo struct {
	warehouses map[string]*entity.Warehouse
}

func (r *fakeWarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	if wh, ok := r.warehouses[id]; ok {
		return wh, nil
	}
	return nil, nil
}

func (r *fakeWarehouseRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	for _, wh := range r.warehouses {
		if wh.CompanyID == companyID {
			out = append(out, wh)
		}
	}
	return out, nil
}

type fakeAuditRepo struct {
	entries []*entity.AuditLog
}

func (r *fakeAuditRepo) Create(entry *entity.AuditLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────

// fakeTxRunner emula la semántica transaccional: la función trabaja sobre un
// clon del estado y el clon solo se publica si no hubo error (commit).
// conflicts hace fallar las primeras N corridas con ErrTxConflict para
// ejercitar la lógica de reintento. El mutex serializa las transacciones,
// como haría la base de datos con los bloqueos de fila.
type fakeTxRunner struct {
	mu        sync.Mutex
	store     *fakeStore
	conflicts int
	runs      int
}

func (t *fakeTxRunner) Run(ctx context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	queueRepo repository.SyncQueueRepository,
) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runs++
	if t.conflicts > 0 {
		t.conflicts--
		return fmt.Errorf("could not serialize access: %w", domain.ErrTxConflict)
	}
	work := t.store.clone()
	err := fn(
		&fakeMovementRepo{store: work},
		&fakeStockRepo{store: work},
		&fakeProductRepo{store: work},
		&fakeQueueRepo{store: work},
	)
	if err != nil {
		return err
	}
	*t.store = *work
	return nil
}
