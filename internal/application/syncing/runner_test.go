package syncing_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/stocksync-api/internal/application/syncing"
	"github.com/invorya/stocksync-api/internal/domain/entity"
	"github.com/invorya/stocksync-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeQueue struct {
	entries []*entity.SyncQueueEntry
	peekErr error
	markErr error
}

func (q *fakeQueue) Enqueue(entry *entity.SyncQueueEntry) error {
	q.entries = append(q.entries, entry)
	return nil
}

func (q *fakeQueue) PeekPending(limit int) ([]*entity.SyncQueueEntry, error) {
	if q.peekErr != nil {
		return nil, q.peekErr
	}
	var out []*entity.SyncQueueEntry
	for _, e := range q.entries {
		if e.IsPending() {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (q *fakeQueue) MarkSynced(ids []string) error {
	if q.markErr != nil {
		return q.markErr
	}
	now := time.Now()
	byID := make(map[string]bool, len(ids))
	for _, id := range ids {
		byID[id] = true
	}
	for _, e := range q.entries {
		if byID[e.ID] {
			t := now
			e.SyncedAt = &t
		}
	}
	return nil
}

func (q *fakeQueue) CountPending() (int, error) {
	n := 0
	for _, e := range q.entries {
		if e.IsPending() {
			n++
		}
	}
	return n, nil
}

type fakeLogs struct {
	created []*entity.SyncLogEntry
	updated []*entity.SyncLogEntry
}

func (l *fakeLogs) Create(entry *entity.SyncLogEntry) error {
	l.created = append(l.created, entry)
	return nil
}

func (l *fakeLogs) Update(entry *entity.SyncLogEntry) error {
	l.updated = append(l.updated, entry)
	return nil
}

func (l *fakeLogs) ListRecent(limit int) ([]*entity.SyncLogEntry, error) {
	return l.created, nil
}

type fakeAudit struct {
	entries []*entity.AuditLog
}

func (a *fakeAudit) Create(entry *entity.AuditLog) error {
	a.entries = append(a.entries, entry)
	return nil
}

// pushCall registra los argumentos de un Push recibido por el proveedor fake.
type pushCall struct {
	entityType string
	entityID   string
	operation  string
	snapshot   string
}

// fakeProvider responde cada Push según el guion errs (indexado por llamada);
// fuera del guion responde OK.
type fakeProvider struct {
	calls []pushCall
	errs  map[int]error
}

func (p *fakeProvider) Name() string { return "fake-cloud" }

func (p *fakeProvider) Push(ctx context.Context, entityType, entityID, operation, snapshot string) error {
	idx := len(p.calls)
	p.calls = append(p.calls, pushCall{entityType, entityID, operation, snapshot})
	if err, ok := p.errs[idx]; ok {
		return err
	}
	return nil
}

type fakeSnapshotter struct {
	path string
	err  error
	got  int
}

func (s *fakeSnapshotter) Snapshot(entries []*entity.SyncQueueEntry) (string, error) {
	s.got = len(entries)
	if s.err != nil {
		return "", s.err
	}
	return s.path, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func seedEntries(q *fakeQueue, n int) {
	for i := 0; i < n; i++ {
		q.entries = append(q.entries, &entity.SyncQueueEntry{
			ID:         fmt.Sprintf("entry-%03d", i),
			CompanyID:  "c-1",
			EntityType: entity.SyncEntityStock,
			EntityID:   fmt.Sprintf("prod-%d/wh-1", i),
			Operation:  entity.SyncOpUpdate,
			Data:       fmt.Sprintf(`{"n":%d}`, i),
			CreatedAt:  time.Now(),
		})
	}
}

func newRunner(q *fakeQueue, p *fakeProvider, cfg syncing.Config) (*syncing.Runner, *fakeLogs, *fakeAudit) {
	logs := &fakeLogs{}
	audit := &fakeAudit{}
	return syncing.NewRunner(q, logs, audit, p, nil, cfg, logger.Nop()), logs, audit
}

// ──────────────────────────────────────────────────────────────────────────────
// RunOnce
// ──────────────────────────────────────────────────────────────────────────────

func TestRunOnce_TodoConfirmado_Succeeded(t *testing.T) {
	q := &fakeQueue{}
	seedEntries(q, 5)
	p := &fakeProvider{}
	runner, logs, audit := newRunner(q, p, syncing.Config{BatchSize: 2})

	run, err := runner.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entity.SyncStatusSucceeded, run.Status)
	assert.Equal(t, 5, run.ItemsCount)
	assert.NotNil(t, run.CompletedAt)
	assert.Len(t, p.calls, 5)

	pending, _ := q.CountPending()
	assert.Zero(t, pending, "todas las entradas quedan marcadas")

	// El log pasó por running y se cerró una sola vez.
	require.Len(t, logs.created, 1)
	require.Len(t, logs.updated, 1)

	// Auditoría de la corrida.
	require.Len(t, audit.entries, 1)
	assert.Equal(t, entity.AuditActionSyncRun, audit.entries[0].Action)
}

func TestRunOnce_SinPendientes_SucceededVacio(t *testing.T) {
	q := &fakeQueue{}
	p := &fakeProvider{}
	runner, _, _ := newRunner(q, p, syncing.Config{})

	run, err := runner.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.SyncStatusSucceeded, run.Status)
	assert.Zero(t, run.ItemsCount)
	assert.Empty(t, p.calls)
}

func TestRunOnce_FIFO(t *testing.T) {
	q := &fakeQueue{}
	seedEntries(q, 4)
	p := &fakeProvider{}
	runner, _, _ := newRunner(q, p, syncing.Config{BatchSize: 2})

	_, err := runner.RunOnce(context.Background())
	require.NoError(t, err)

	require.Len(t, p.calls, 4)
	for i, call := range p.calls {
		assert.Equal(t, fmt.Sprintf("prod-%d/wh-1", i), call.entityID, "las entradas viajan en orden de inserción")
	}
}

func TestRunOnce_ErrorFatal_AbortaYReportaFailed(t *testing.T) {
	q := &fakeQueue{}
	seedEntries(q, 5)
	p := &fakeProvider{errs: map[int]error{
		2: syncing.NewFatalError(errors.New("payload rechazado")),
	}}
	runner, _, _ := newRunner(q, p, syncing.Config{BatchSize: 10})

	run, err := runner.RunOnce(context.Background())
	require.Error(t, err)

	assert.Equal(t, entity.SyncStatusFailed, run.Status)
	assert.Equal(t, 2, run.ItemsCount, "solo lo confirmado antes del fatal cuenta")
	require.NotNil(t, run.ErrorMessage)
	assert.Contains(t, *run.ErrorMessage, "payload rechazado")

	// Las entradas posteriores al fatal siguen pendientes para la próxima corrida.
	pending, _ := q.CountPending()
	assert.Equal(t, 3, pending)
}

func TestRunOnce_ErrorReintentable_DejaPendienteYContinua(t *testing.T) {
	q := &fakeQueue{}
	seedEntries(q, 4)
	p := &fakeProvider{errs: map[int]error{
		1: syncing.NewRetryableError(errors.New("HTTP 503")),
	}}
	runner, _, _ := newRunner(q, p, syncing.Config{BatchSize: 10})

	run, err := runner.RunOnce(context.Background())
	require.NoError(t, err, "un fallo reintentable no es error de la corrida")

	assert.Equal(t, entity.SyncStatusPartial, run.Status)
	assert.Equal(t, 3, run.ItemsCount)

	pending, _ := q.CountPending()
	assert.Equal(t, 1, pending)
	assert.Len(t, p.calls, 4, "la corrida siguió tras el fallo reintentable")
}

func TestRunOnce_TimeoutDePushEsReintentable(t *testing.T) {
	q := &fakeQueue{}
	seedEntries(q, 2)
	p := &fakeProvider{errs: map[int]error{
		0: context.DeadlineExceeded,
	}}
	runner, _, _ := newRunner(q, p, syncing.Config{BatchSize: 10})

	run, err := runner.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.SyncStatusPartial, run.Status)
	assert.Equal(t, 1, run.ItemsCount)
}

func TestRunOnce_Cancelacion_TerminaEnPartial(t *testing.T) {
	q := &fakeQueue{}
	seedEntries(q, 3)
	p := &fakeProvider{}
	runner, _, _ := newRunner(q, p, syncing.Config{BatchSize: 10})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := runner.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.SyncStatusPartial, run.Status)
	assert.Zero(t, run.ItemsCount)

	pending, _ := q.CountPending()
	assert.Equal(t, 3, pending, "nada se marca si la corrida fue cancelada antes de empujar")
}

func TestRunOnce_FalloDeMarkSyncedEsFatal(t *testing.T) {
	q := &fakeQueue{markErr: errors.New("conexión perdida")}
	seedEntries(q, 2)
	p := &fakeProvider{}
	runner, _, _ := newRunner(q, p, syncing.Config{BatchSize: 10})

	run, err := runner.RunOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, entity.SyncStatusFailed, run.Status)
	// El Push pudo haber llegado al remoto: la entrega es at-least-once y la
	// entrada se reenviará en la próxima corrida.
	pending, _ := q.CountPending()
	assert.Equal(t, 2, pending)
}

// ──────────────────────────────────────────────────────────────────────────────
// Colapso de entradas
// ──────────────────────────────────────────────────────────────────────────────

func TestRunOnce_Colapso_UnPushPorClaveLogica(t *testing.T) {
	q := &fakeQueue{}
	// Tres updates de la misma fila de stock + uno de otra.
	for i := 0; i < 3; i++ {
		q.entries = append(q.entries, &entity.SyncQueueEntry{
			ID:         fmt.Sprintf("dup-%d", i),
			EntityType: entity.SyncEntityStock,
			EntityID:   "prod-1/wh-1",
			Operation:  entity.SyncOpUpdate,
			Data:       fmt.Sprintf(`{"qty":%d}`, i),
			CreatedAt:  time.Now(),
		})
	}
	q.entries = append(q.entries, &entity.SyncQueueEntry{
		ID:         "otro",
		EntityType: entity.SyncEntityStock,
		EntityID:   "prod-2/wh-1",
		Operation:  entity.SyncOpUpdate,
		Data:       `{"qty":9}`,
		CreatedAt:  time.Now(),
	})
	p := &fakeProvider{}
	runner, _, _ := newRunner(q, p, syncing.Config{BatchSize: 10, Collapse: true})

	run, err := runner.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entity.SyncStatusSucceeded, run.Status)
	assert.Equal(t, 4, run.ItemsCount, "las cuatro entradas quedan confirmadas")
	require.Len(t, p.calls, 2, "la clave repetida viaja una sola vez")
	assert.Equal(t, `{"qty":2}`, p.calls[0].snapshot, "viaja el snapshot más reciente")

	pending, _ := q.CountPending()
	assert.Zero(t, pending)
}

func TestRunOnce_SinColapso_CadaEntradaViaja(t *testing.T) {
	q := &fakeQueue{}
	for i := 0; i < 3; i++ {
		q.entries = append(q.entries, &entity.SyncQueueEntry{
			ID:         fmt.Sprintf("dup-%d", i),
			EntityType: entity.SyncEntityStock,
			EntityID:   "prod-1/wh-1",
			Operation:  entity.SyncOpUpdate,
			Data:       fmt.Sprintf(`{"qty":%d}`, i),
			CreatedAt:  time.Now(),
		})
	}
	p := &fakeProvider{}
	runner, _, _ := newRunner(q, p, syncing.Config{BatchSize: 10, Collapse: false})

	run, err := runner.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, run.ItemsCount)
	assert.Len(t, p.calls, 3)
}

// ──────────────────────────────────────────────────────────────────────────────
// Respaldo previo
// ──────────────────────────────────────────────────────────────────────────────

func TestRunOnce_RespaldoRegistraLaRuta(t *testing.T) {
	q := &fakeQueue{}
	seedEntries(q, 3)
	p := &fakeProvider{}
	snap := &fakeSnapshotter{path: "/backups/sync-backup-x.json"}
	logs := &fakeLogs{}
	runner := syncing.NewRunner(q, logs, &fakeAudit{}, p, snap,
		syncing.Config{BatchSize: 10, BackupEnabled: true}, logger.Nop())

	run, err := runner.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, snap.got)
	require.NotNil(t, run.BackupPath)
	assert.Equal(t, "/backups/sync-backup-x.json", *run.BackupPath)
}

func TestRunOnce_RespaldoFallidoNoAbortaLaCorrida(t *testing.T) {
	q := &fakeQueue{}
	seedEntries(q, 2)
	p := &fakeProvider{}
	snap := &fakeSnapshotter{err: errors.New("disco lleno")}
	runner := syncing.NewRunner(q, &fakeLogs{}, &fakeAudit{}, p, snap,
		syncing.Config{BatchSize: 10, BackupEnabled: true}, logger.Nop())

	run, err := runner.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.SyncStatusSucceeded, run.Status)
	assert.Nil(t, run.BackupPath)
	assert.Equal(t, 2, run.ItemsCount, "la corrida continúa aunque el respaldo falle")
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestQueryUseCase_PendingCount(t *testing.T) {
	q := &fakeQueue{}
	seedEntries(q, 3)
	uc := syncing.NewQueryUseCase(&fakeLogs{}, q)

	n, err := uc.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
