package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/invorya/stocksync-api/internal/application/inventory"
	"github.com/invorya/stocksync-api/internal/application/syncing"
	"github.com/invorya/stocksync-api/internal/infrastructure/backup"
	"github.com/invorya/stocksync-api/internal/infrastructure/postgres"
	"github.com/invorya/stocksync-api/internal/infrastructure/remote"
	httpRouter "github.com/invorya/stocksync-api/internal/interfaces/http"
	"github.com/invorya/stocksync-api/pkg/config"
	"github.com/invorya/stocksync-api/pkg/logger"
)

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
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	stockRepo := postgres.NewStockRepository(pool)
	movRepo := postgres.NewInventoryMovementRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	queueRepo := postgres.NewSyncQueueRepository(pool)
	syncLogRepo := postgres.NewSyncLogRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	registerMovementUC := inventory.NewRegisterMovementUseCase(txRunner, productRepo, warehouseRepo, auditRepo, log)
	stockQueryUC := inventory.NewStockQueryUseCase(stockRepo, movRepo, warehouseRepo)

	provider := remote.NewHTTPProvider(cfg.Sync)
	var snapshotter syncing.Snapshotter
	if cfg.Sync.BackupEnabled {
		snapshotter = backup.NewFileSnapshotter(cfg.Sync.BackupDir)
	}
	syncRunner := syncing.NewRunner(queueRepo, syncLogRepo, auditRepo, provider, snapshotter, syncing.Config{
		BatchSize:     cfg.Sync.BatchSize,
		PushTimeout:   cfg.Sync.PushTimeout(),
		Collapse:      cfg.Sync.CollapseEntries,
		BackupEnabled: cfg.Sync.BackupEnabled,
	}, log)
	syncQueryUC := syncing.NewQueryUseCase(syncLogRepo, queueRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "StockSync API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		RegisterMovement: registerMovementUC,
		StockQueries:     stockQueryUC,
		SyncRunner:       syncRunner,
		SyncQueries:      syncQueryUC,
		JWTSecret:        cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
