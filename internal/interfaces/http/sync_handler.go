package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/invorya/stocksync-api/internal/application/dto"
	"github.com/invorya/stocksync-api/internal/application/syncing"
	"github.com/invorya/stocksync-api/internal/domain/entity"
)

// SyncHandler expone el estado del outbox y permite disparar una corrida
// manual de sincronización (solo admin).
type SyncHandler struct {
	runner  *syncing.Runner
	queries *syncing.QueryUseCase
}

// NewSyncHandler construye el handler.
func NewSyncHandler(runner *syncing.Runner, queries *syncing.QueryUseCase) *SyncHandler {
	return &SyncHandler{runner: runner, queries: queries}
}

// Run godoc
// @Summary      Disparar sincronización manual
// @Description  Drena el outbox contra el proveedor remoto y devuelve el
//
//	resumen de la corrida. Idempotente frente al worker: las
//	entradas ya replicadas no se reenvían.
//
// @Tags         sync
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SyncLogResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/sync/run [post]
func (h *SyncHandler) Run(c *fiber.Ctx) error {
	run, err := h.runner.RunOnce(c.Context())
	if run == nil && err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "SYNC_FAILED", Message: err.Error()})
	}
	return c.JSON(syncLogToResponse(run))
}

// ListLogs godoc
// @Summary      Historial de corridas de sincronización
// @Tags         sync
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Máximo de corridas"
// @Success      200  {array}  dto.SyncLogResponse
// @Router       /api/sync/logs [get]
func (h *SyncHandler) ListLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	logs, err := h.queries.ListLogs(c.Context(), limit)
	if err != nil {
		return mapDomainError(c, err)
	}
	out := make([]dto.SyncLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, syncLogToResponse(l))
	}
	return c.JSON(out)
}

// Pending godoc
// @Summary      Entradas del outbox sin replicar
// @Tags         sync
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SyncPendingResponse
// @Router       /api/sync/pending [get]
func (h *SyncHandler) Pending(c *fiber.Ctx) error {
	n, err := h.queries.PendingCount(c.Context())
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(dto.SyncPendingResponse{Pending: n})
}

func syncLogToResponse(l *entity.SyncLogEntry) dto.SyncLogResponse {
	return dto.SyncLogResponse{
		ID:           l.ID,
		Provider:     l.Provider,
		Status:       l.Status,
		StartedAt:    l.StartedAt,
		CompletedAt:  l.CompletedAt,
		ItemsCount:   l.ItemsCount,
		ErrorMessage: l.ErrorMessage,
		BackupPath:   l.BackupPath,
	}
}
