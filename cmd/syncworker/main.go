package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/invorya/stocksync-api/internal/application/syncing"
	"github.com/invorya/stocksync-api/internal/infrastructure/backup"
	"github.com/invorya/stocksync-api/internal/infrastructure/postgres"
	"github.com/invorya/stocksync-api/internal/infrastructure/remote"
	"github.com/invorya/stocksync-api/pkg/config"
	"github.com/invorya/stocksync-api/pkg/logger"
)

// syncworker drena el outbox según SYNC_SCHEDULE. SkipIfStillRunning
// garantiza una sola corrida en vuelo por proceso.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("schedule", cfg.Sync.Schedule).
		Str("provider", cfg.Sync.ProviderName).
		Msg("iniciando syncworker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	queueRepo := postgres.NewSyncQueueRepository(pool)
	syncLogRepo := postgres.NewSyncLogRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)

	provider := remote.NewHTTPProvider(cfg.Sync)
	var snapshotter syncing.Snapshotter
	if cfg.Sync.BackupEnabled {
		snapshotter = backup.NewFileSnapshotter(cfg.Sync.BackupDir)
	}
	runner := syncing.NewRunner(queueRepo, syncLogRepo, auditRepo, provider, snapshotter, syncing.Config{
		BatchSize:     cfg.Sync.BatchSize,
		PushTimeout:   cfg.Sync.PushTimeout(),
		Collapse:      cfg.Sync.CollapseEntries,
		BackupEnabled: cfg.Sync.BackupEnabled,
	}, log)

	runOnce := func() {
		run, err := runner.RunOnce(ctx)
		if err != nil {
			log.Error().Err(err).Msg("corrida de sincronización con error")
		}
		if run != nil {
			log.Info().
				Str("run_id", run.ID).
				Str("status", run.Status).
				Int("items", run.ItemsCount).
				Msg("corrida de sincronización finalizada")
		}
	}

	// Primera corrida inmediata para vaciar lo acumulado offline.
	runOnce()

	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))
	if _, err := c.AddFunc(cfg.Sync.Schedule, runOnce); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Sync.Schedule).Msg("expresión cron inválida")
	}
	c.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, deteniendo syncworker...")
	cancel()

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		log.Warn().Msg("timeout esperando la corrida en curso")
	}

	log.Info().Msg("syncworker detenido")
}
