package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/invorya/stocksync-api/internal/application/inventory"
	"github.com/invorya/stocksync-api/internal/application/syncing"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RegisterMovement *inventory.RegisterMovementUseCase
	StockQueries     *inventory.StockQueryUseCase
	SyncRunner       *syncing.Runner
	SyncQueries      *syncing.QueryUseCase
	JWTSecret        string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Inventory (protegido)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.StockQueries)
	invGroup.Post("/movements", RequireRole(RoleAdmin, RoleBodeguero), inventoryHandler.RegisterMovement)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Get("/movements/:id", inventoryHandler.GetMovement)
	invGroup.Get("/stock", inventoryHandler.GetStock)
	invGroup.Get("/stock/low", inventoryHandler.ListLowStock)

	// Sync (protegido; corrida manual solo admin)
	syncGroup := protected.Group("/sync")
	syncHandler := NewSyncHandler(deps.SyncRunner, deps.SyncQueries)
	syncGroup.Post("/run", RequireRole(RoleAdmin), syncHandler.Run)
	syncGroup.Get("/logs", syncHandler.ListLogs)
	syncGroup.Get("/pending", syncHandler.Pending)
}
