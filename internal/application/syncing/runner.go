package syncing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/invorya/stocksync-api/internal/domain/entity"
	"github.com/invorya/stocksync-api/internal/domain/repository"
	"github.com/invorya/stocksync-api/pkg/logger"
)

// Límite de entradas incluidas en el respaldo previo a la corrida.
const snapshotLimit = 1000

// Config parámetros de una corrida de sincronización.
type Config struct {
	BatchSize   int
	PushTimeout time.Duration
	// Collapse colapsa entradas con igual (entity_type, entity_id, operation)
	// al snapshot más reciente. Solo para proveedores basados en snapshot; con
	// false cada cambio viaja individualmente en orden FIFO.
	Collapse bool
	// BackupEnabled toma un respaldo local de las pendientes antes de empujar.
	BackupEnabled bool
}

// Runner drena el outbox contra un proveedor remoto y registra el resultado
// en SyncLog. Debe ejecutarse como un único worker lógico por proveedor; el
// caller garantiza la exclusión (cron con SkipIfStillRunning, leader lock).
type Runner struct {
	queue       repository.SyncQueueRepository
	logs        repository.SyncLogRepository
	audit       repository.AuditLogRepository
	provider    RemoteProvider
	snapshotter Snapshotter
	cfg         Config
	log         *logger.Logger
}

// NewRunner construye el runner. snapshotter puede ser nil si la política de
// respaldo está deshabilitada.
func NewRunner(
	queue repository.SyncQueueRepository,
	logs repository.SyncLogRepository,
	audit repository.AuditLogRepository,
	provider RemoteProvider,
	snapshotter Snapshotter,
	cfg Config,
	log *logger.Logger,
) *Runner {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.PushTimeout <= 0 {
		cfg.PushTimeout = 15 * time.Second
	}
	return &Runner{
		queue:       queue,
		logs:        logs,
		audit:       audit,
		provider:    provider,
		snapshotter: snapshotter,
		cfg:         cfg,
		log:         log,
	}
}

// group agrupa una o más entradas del outbox que viajan como un solo Push.
// Sin colapso cada entrada es su propio grupo.
type group struct {
	entry *entity.SyncQueueEntry // representante (snapshot más reciente)
	ids   []string
}

// RunOnce ejecuta una corrida completa: crea el SyncLog en running, respalda,
// drena por lotes y finaliza en succeeded, partial o failed. La entrega es
// at-least-once: si el proceso muere entre el Push y MarkSynced, la entrada
// se reenvía en la siguiente corrida.
func (r *Runner) RunOnce(ctx context.Context) (*entity.SyncLogEntry, error) {
	run := &entity.SyncLogEntry{
		ID:        uuid.New().String(),
		Provider:  r.provider.Name(),
		Status:    entity.SyncStatusRunning,
		StartedAt: time.Now(),
	}
	if err := r.logs.Create(run); err != nil {
		return nil, err
	}
	r.log.Info().Str("run_id", run.ID).Str("provider", run.Provider).Msg("corrida de sincronización iniciada")

	r.backup(run)

	var (
		synced      int
		leftPending int
		fatalErr    error
		cancelled   bool
		seen        = make(map[string]bool)
	)

drain:
	for {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		batch, err := r.queue.PeekPending(r.cfg.BatchSize)
		if err != nil {
			fatalErr = err
			break
		}
		fresh := batch[:0:0]
		for _, e := range batch {
			if !seen[e.ID] {
				fresh = append(fresh, e)
			}
		}
		if len(fresh) == 0 {
			break
		}

		for _, g := range r.groupBatch(fresh) {
			for _, id := range g.ids {
				seen[id] = true
			}
			if ctx.Err() != nil {
				cancelled = true
				leftPending += len(g.ids)
				break drain
			}
			if err := r.push(ctx, g.entry); err != nil {
				if IsRetryable(err) {
					leftPending += len(g.ids)
					r.log.Warn().Err(err).
						Str("run_id", run.ID).
						Str("entity_type", g.entry.EntityType).
						Str("entity_id", g.entry.EntityID).
						Msg("push reintentable, entrada queda pendiente")
					continue
				}
				fatalErr = err
				break drain
			}
			if err := r.queue.MarkSynced(g.ids); err != nil {
				fatalErr = err
				break drain
			}
			synced += len(g.ids)
		}
	}

	return r.finalize(run, synced, leftPending, fatalErr, cancelled)
}

// push envía una entrada con el timeout por llamada configurado.
func (r *Runner) push(ctx context.Context, e *entity.SyncQueueEntry) error {
	pushCtx, cancel := context.WithTimeout(ctx, r.cfg.PushTimeout)
	defer cancel()
	return r.provider.Push(pushCtx, e.EntityType, e.EntityID, e.Operation, e.Data)
}

// groupBatch arma los grupos del lote. Con colapso activo, las entradas con
// igual clave lógica viajan una sola vez con el snapshot más reciente y todas
// se marcan sincronizadas cuando ese Push confirma. El orden FIFO de primera
// aparición se conserva.
func (r *Runner) groupBatch(batch []*entity.SyncQueueEntry) []group {
	if !r.cfg.Collapse {
		groups := make([]group, 0, len(batch))
		for _, e := range batch {
			groups = append(groups, group{entry: e, ids: []string{e.ID}})
		}
		return groups
	}
	idx := make(map[string]int, len(batch))
	var groups []group
	for _, e := range batch {
		key := e.DedupKey()
		if i, ok := idx[key]; ok {
			groups[i].ids = append(groups[i].ids, e.ID)
			groups[i].entry = e // FIFO: la última del lote es la más reciente
			continue
		}
		idx[key] = len(groups)
		groups = append(groups, group{entry: e, ids: []string{e.ID}})
	}
	return groups
}

// backup toma el respaldo previo si la política lo pide. Un fallo del respaldo
// no aborta la corrida; se registra y se continúa.
func (r *Runner) backup(run *entity.SyncLogEntry) {
	if !r.cfg.BackupEnabled || r.snapshotter == nil {
		return
	}
	pending, err := r.queue.PeekPending(snapshotLimit)
	if err != nil {
		r.log.Warn().Err(err).Str("run_id", run.ID).Msg("lectura de pendientes para respaldo falló")
		return
	}
	if len(pending) == 0 {
		return
	}
	path, err := r.snapshotter.Snapshot(pending)
	if err != nil {
		r.log.Warn().Err(err).Str("run_id", run.ID).Msg("respaldo previo a la corrida falló")
		return
	}
	run.BackupPath = &path
}

// finalize cierra el SyncLog con el estado resultante y emite auditoría.
func (r *Runner) finalize(run *entity.SyncLogEntry, synced, leftPending int, fatalErr error, cancelled bool) (*entity.SyncLogEntry, error) {
	now := time.Now()
	run.CompletedAt = &now
	run.ItemsCount = synced
	switch {
	case fatalErr != nil:
		run.Status = entity.SyncStatusFailed
		msg := fatalErr.Error()
		run.ErrorMessage = &msg
	case leftPending > 0 || cancelled:
		run.Status = entity.SyncStatusPartial
	default:
		run.Status = entity.SyncStatusSucceeded
	}

	if err := r.logs.Update(run); err != nil {
		return run, err
	}

	details, _ := json.Marshal(map[string]any{
		"status":       run.Status,
		"items_count":  run.ItemsCount,
		"left_pending": leftPending,
	})
	if err := r.audit.Create(&entity.AuditLog{
		ID:         uuid.New().String(),
		Action:     entity.AuditActionSyncRun,
		EntityType: "sync_log",
		EntityID:   run.ID,
		Details:    string(details),
		CreatedAt:  now,
	}); err != nil {
		r.log.Error().Err(err).Str("run_id", run.ID).Msg("registro de auditoría falló")
	}

	r.log.Info().
		Str("run_id", run.ID).
		Str("status", run.Status).
		Int("items_count", run.ItemsCount).
		Int("left_pending", leftPending).
		Msg("corrida de sincronización finalizada")
	return run, fatalErr
}
