package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/stocksync-api/internal/domain"
	"github.com/invorya/stocksync-api/internal/domain/entity"
	domaininv "github.com/invorya/stocksync-api/internal/domain/inventory"
	"github.com/invorya/stocksync-api/internal/domain/repository"
	"github.com/invorya/stocksync-api/pkg/logger"
)

// Reintentos ante conflictos transitorios de transacción (40001/40P01).
// Los rechazos de negocio (validación, stock insuficiente) nunca se reintentan.
const (
	txMaxAttempts  = 3
	txBackoffBase  = 50 * time.Millisecond
	txBackoffMax   = 1 * time.Second
	txJitterWindow = 25 * time.Millisecond
)

// RegisterMovementUseCase aplica movimientos de inventario multi-línea
// (IN, OUT, TRANSFER, ADJUSTMENT) de forma transaccional: ajustes de stock con
// bloqueo de fila, cabecera + líneas del movimiento y entradas del outbox de
// sincronización, todo en el mismo commit.
type RegisterMovementUseCase struct {
	txRunner      TxRunner
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	auditRepo     repository.AuditLogRepository
	log           *logger.Logger
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	auditRepo repository.AuditLogRepository,
	log *logger.Logger,
) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		txRunner:      txRunner,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		auditRepo:     auditRepo,
		log:           log,
	}
}

// MovementInputDTO entrada para registrar un movimiento de inventario.
// IN: solo ToWarehouseID; OUT: solo FromWarehouseID; TRANSFER: ambas y
// distintas; ADJUSTMENT: exactamente una, con cantidades de línea con signo.
type MovementInputDTO struct {
	CompanyID       string
	UserID          string
	Type            string
	Date            time.Time
	FromWarehouseID string
	ToWarehouseID   string
	Reference       string
	Notes           string
	Items           []MovementItemInput
}

// MovementItemInput línea del movimiento. UnitCost es obligatorio en IN y en
// líneas positivas de ADJUSTMENT (alimenta el costo promedio ponderado).
type MovementItemInput struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitCost  *decimal.Decimal
	UnitPrice *decimal.Decimal
	Notes     string
}

// RegisterMovement valida, calcula los deltas de stock y aplica todo en una
// transacción. Reintenta con backoff solo ante conflictos transitorios.
// Devuelve el movimiento persistido.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInputDTO) (*entity.InventoryMovement, error) {
	mov, err := uc.buildMovement(input)
	if err != nil {
		return nil, err
	}

	deltas, err := domaininv.BuildDeltas(mov)
	if err != nil {
		return nil, err
	}

	products, err := uc.checkReferences(mov, input.CompanyID)
	if err != nil {
		return nil, err
	}

	backoff := txBackoffBase
	for attempt := 1; ; attempt++ {
		err = uc.applyTx(ctx, mov, deltas, products)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrTxConflict) || attempt >= txMaxAttempts {
			return nil, err
		}
		uc.log.Warn().
			Str("movement_id", mov.ID).
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Msg("conflicto transitorio, reintentando movimiento")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(withJitter(backoff)):
		}
		backoff = nextBackoff(backoff)
	}

	uc.audit(mov)
	return mov, nil
}

// buildMovement arma la entidad con IDs y timestamps; la validación
// estructural fina la hace domaininv.Validate vía BuildDeltas.
func (uc *RegisterMovementUseCase) buildMovement(input MovementInputDTO) (*entity.InventoryMovement, error) {
	if input.CompanyID == "" || input.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	now := time.Now()
	date := input.Date
	if date.IsZero() {
		date = now
	}
	mov := &entity.InventoryMovement{
		ID:        uuid.New().String(),
		CompanyID: input.CompanyID,
		Type:      input.Type,
		Date:      date,
		UserID:    input.UserID,
		Reference: input.Reference,
		Notes:     input.Notes,
		CreatedAt: now,
	}
	if input.FromWarehouseID != "" {
		from := input.FromWarehouseID
		mov.WarehouseFromID = &from
	}
	if input.ToWarehouseID != "" {
		to := input.ToWarehouseID
		mov.WarehouseToID = &to
	}
	for _, in := range input.Items {
		item := &entity.MovementItem{
			ID:         uuid.New().String(),
			MovementID: mov.ID,
			ProductID:  in.ProductID,
			Quantity:   in.Quantity,
			Notes:      in.Notes,
		}
		if in.UnitCost != nil {
			item.UnitCost = *in.UnitCost
		}
		if in.UnitPrice != nil {
			item.UnitPrice = *in.UnitPrice
		}
		if isInbound(mov.Type, in.Quantity) && in.UnitCost == nil {
			return nil, domain.NewValidationError("items.unit_cost", "costo unitario obligatorio en entradas")
		}
		if in.UnitCost != nil && in.UnitCost.LessThan(decimal.Zero) {
			return nil, domain.NewValidationError("items.unit_cost", "el costo no puede ser negativo")
		}
		mov.Items = append(mov.Items, item)
	}
	return mov, nil
}

// checkReferences valida que productos y bodegas existan y pertenezcan a la
// empresa. Devuelve los productos por ID para el cálculo de costo promedio.
func (uc *RegisterMovementUseCase) checkReferences(mov *entity.InventoryMovement, companyID string) (map[string]*entity.Product, error) {
	products := make(map[string]*entity.Product, len(mov.Items))
	for _, it := range mov.Items {
		if _, ok := products[it.ProductID]; ok {
			continue
		}
		p, err := uc.productRepo.GetByID(it.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("producto %s: %w", it.ProductID, domain.ErrNotFound)
		}
		if p.CompanyID != companyID {
			return nil, domain.ErrForbidden
		}
		if !p.IsActive() {
			return nil, domain.NewValidationError("items.product_id", "producto inactivo: "+p.Code)
		}
		products[it.ProductID] = p
	}

	for _, whID := range []*string{mov.WarehouseFromID, mov.WarehouseToID} {
		if whID == nil || *whID == "" {
			continue
		}
		wh, err := uc.warehouseRepo.GetByID(*whID)
		if err != nil {
			return nil, err
		}
		if wh == nil {
			return nil, fmt.Errorf("bodega %s: %w", *whID, domain.ErrNotFound)
		}
		if wh.CompanyID != companyID {
			return nil, domain.ErrForbidden
		}
	}
	return products, nil
}

// applyTx ejecuta la transacción: ajustes de stock, costo promedio en
// entradas, cabecera + líneas y entradas del outbox (mismo commit).
func (uc *RegisterMovementUseCase) applyTx(
	ctx context.Context,
	mov *entity.InventoryMovement,
	deltas []domaininv.StockDelta,
	products map[string]*entity.Product,
) error {
	return uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		queueRepo repository.SyncQueueRepository,
	) error {
		ledger := NewStockLedger(stockRepo)

		// Costo promedio ponderado sobre el stock previo (misma tx, misma fila
		// que AdjustMany va a bloquear después).
		if err := uc.updateCosts(mov, stockRepo, productRepo, products); err != nil {
			return err
		}

		changes, err := ledger.AdjustMany(deltas, mov.CreatedAt)
		if err != nil {
			return err
		}

		if err := movRepo.Create(mov); err != nil {
			return err
		}

		// Patrón outbox: una entrada por fila de stock tocada + una por la
		// cabecera, dentro de la misma transacción.
		for _, ch := range changes {
			snap, err := marshalStockSnapshot(ch.Row)
			if err != nil {
				return err
			}
			op := entity.SyncOpUpdate
			if ch.Created {
				op = entity.SyncOpCreate
			}
			if err := queueRepo.Enqueue(&entity.SyncQueueEntry{
				ID:         uuid.New().String(),
				CompanyID:  mov.CompanyID,
				EntityType: entity.SyncEntityStock,
				EntityID:   ch.Row.Key(),
				Operation:  op,
				Data:       snap,
				CreatedAt:  mov.CreatedAt,
			}); err != nil {
				return err
			}
		}

		movSnap, err := marshalMovementSnapshot(mov)
		if err != nil {
			return err
		}
		return queueRepo.Enqueue(&entity.SyncQueueEntry{
			ID:         uuid.New().String(),
			CompanyID:  mov.CompanyID,
			EntityType: entity.SyncEntityMovement,
			EntityID:   mov.ID,
			Operation:  entity.SyncOpCreate,
			Data:       movSnap,
			CreatedAt:  mov.CreatedAt,
		})
	})
}

// updateCosts recalcula el costo promedio ponderado del producto en entradas
// (IN y líneas positivas de ADJUSTMENT con costo informado).
func (uc *RegisterMovementUseCase) updateCosts(
	mov *entity.InventoryMovement,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	products map[string]*entity.Product,
) error {
	if mov.Type != entity.MovementTypeIN && mov.Type != entity.MovementTypeADJUSTMENT {
		return nil
	}
	wh := mov.WarehouseToID
	if wh == nil || *wh == "" {
		wh = mov.WarehouseFromID
	}
	// Mismo orden de bloqueo que AdjustMany (clave producto/bodega); el sort
	// estable conserva el orden declarado entre líneas del mismo producto para
	// que el promedio acumule igual.
	items := make([]*entity.MovementItem, len(mov.Items))
	copy(items, mov.Items)
	sort.SliceStable(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	for _, it := range items {
		if !it.Quantity.GreaterThan(decimal.Zero) || it.UnitCost.IsZero() {
			continue
		}
		product := products[it.ProductID]
		stock, err := stockRepo.GetForUpdate(it.ProductID, *wh)
		if err != nil {
			return err
		}
		newCost := domaininv.CostCalculator(stock.Quantity, product.Cost, it.Quantity, it.UnitCost)
		if err := productRepo.UpdateCost(it.ProductID, newCost); err != nil {
			return err
		}
		product.Cost = newCost
	}
	return nil
}

// audit emite el evento al sink de auditoría; un fallo aquí no revierte el
// movimiento ya confirmado, solo se registra en el log.
func (uc *RegisterMovementUseCase) audit(mov *entity.InventoryMovement) {
	details, _ := json.Marshal(map[string]any{
		"type":      mov.Type,
		"items":     len(mov.Items),
		"reference": mov.Reference,
	})
	err := uc.auditRepo.Create(&entity.AuditLog{
		ID:         uuid.New().String(),
		CompanyID:  mov.CompanyID,
		UserID:     mov.UserID,
		Action:     entity.AuditActionMovementApplied,
		EntityType: entity.SyncEntityMovement,
		EntityID:   mov.ID,
		Details:    string(details),
		CreatedAt:  time.Now(),
	})
	if err != nil {
		uc.log.Error().Err(err).Str("movement_id", mov.ID).Msg("registro de auditoría falló")
	}
}

// isInbound indica si la línea suma stock (y por tanto requiere costo unitario).
func isInbound(movType string, qty decimal.Decimal) bool {
	switch movType {
	case entity.MovementTypeIN:
		return true
	case entity.MovementTypeADJUSTMENT:
		return qty.GreaterThan(decimal.Zero)
	}
	return false
}

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > txBackoffMax {
		return txBackoffMax
	}
	return next
}

// withJitter usa las funciones de paquete de math/rand, que llevan su propio
// lock: varios RegisterMovement pueden estar reintentando a la vez.
func withJitter(d time.Duration) time.Duration {
	return d + time.Duration(rand.Int63n(int64(txJitterWindow)))
}
