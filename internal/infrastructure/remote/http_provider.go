package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/invorya/stocksync-api/internal/application/syncing"
	"github.com/invorya/stocksync-api/pkg/config"
)

// Ensure HTTPProvider implements syncing.RemoteProvider.
var _ syncing.RemoteProvider = (*HTTPProvider)(nil)

// HTTPProvider replica cambios a un backend remoto vía HTTP (resty).
// El endpoint remoto debe aplicar cada push de forma idempotente por
// (entity_type, entity_id, operation): la entrega es at-least-once.
type HTTPProvider struct {
	name       string
	httpClient *resty.Client
}

// NewHTTPProvider construye el proveedor con la configuración de sincronización.
// El timeout por llamada lo gobierna el contexto del caller, no el cliente.
func NewHTTPProvider(cfg config.SyncConfig) *HTTPProvider {
	base := strings.TrimSuffix(cfg.ProviderURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json")
	if cfg.ProviderAPIKey != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.ProviderAPIKey))
	}

	return &HTTPProvider{
		name:       cfg.ProviderName,
		httpClient: restyClient,
	}
}

// Name devuelve el nombre lógico del proveedor (va al SyncLog).
func (p *HTTPProvider) Name() string { return p.name }

// pushPayload cuerpo del POST /sync/push.
type pushPayload struct {
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Operation  string          `json:"operation"`
	Snapshot   json.RawMessage `json:"snapshot"`
}

// apiError cuerpo de error del backend remoto.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Push envía un cambio al remoto. Errores de transporte, timeouts, 408/429 y
// 5xx son reintentables (la entrada queda pendiente); el resto de 4xx es
// fatal y aborta la corrida.
func (p *HTTPProvider) Push(ctx context.Context, entityType, entityID, operation, snapshot string) error {
	payload := pushPayload{
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  operation,
		Snapshot:   json.RawMessage(snapshot),
	}

	resp, err := p.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post("/sync/push")
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return syncing.NewRetryableError(fmt.Errorf("timeout de push: %w", err))
		}
		return syncing.NewRetryableError(fmt.Errorf("transporte: %w", err))
	}

	if resp.IsSuccess() {
		return nil
	}

	msg := fmt.Sprintf("status %d", resp.StatusCode())
	var body apiError
	if jsonErr := json.Unmarshal(resp.Body(), &body); jsonErr == nil && body.Error.Message != "" {
		msg = fmt.Sprintf("status %d: %s", resp.StatusCode(), body.Error.Message)
	}

	switch resp.StatusCode() {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return syncing.NewRetryableError(errors.New(msg))
	}
	if resp.StatusCode() >= 500 {
		return syncing.NewRetryableError(errors.New(msg))
	}
	return syncing.NewFatalError(errors.New(msg))
}
