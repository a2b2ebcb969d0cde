package syncing

import (
	"context"
	"errors"

	"github.com/invorya/stocksync-api/internal/domain/entity"
)

// RemoteProvider es la capacidad inyectada que replica cambios locales a un
// sistema remoto (API cloud, export a archivo, etc.). Push debe ser
// idempotente por (entityType, entityID, operation) o tolerar duplicados:
// la entrega es at-least-once.
type RemoteProvider interface {
	Name() string
	// Push respeta el deadline del contexto; un timeout se trata como error
	// reintentable, nunca como fatal.
	Push(ctx context.Context, entityType, entityID, operation, snapshot string) error
}

// Snapshotter toma un respaldo local de las entradas pendientes antes de una
// corrida riesgosa y devuelve la ruta del respaldo (para rollback manual).
type Snapshotter interface {
	Snapshot(entries []*entity.SyncQueueEntry) (string, error)
}

// ProviderError clasifica un fallo del proveedor remoto. Retryable deja la
// entrada pendiente y la corrida continúa; fatal aborta la corrida.
type ProviderError struct {
	Retryable bool
	Err       error
}

func (e *ProviderError) Error() string {
	if e.Retryable {
		return "proveedor remoto (reintentable): " + e.Err.Error()
	}
	return "proveedor remoto (fatal): " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewRetryableError marca un fallo como transitorio del proveedor.
func NewRetryableError(err error) *ProviderError {
	return &ProviderError{Retryable: true, Err: err}
}

// NewFatalError marca un fallo como definitivo: la corrida se aborta.
func NewFatalError(err error) *ProviderError {
	return &ProviderError{Retryable: false, Err: err}
}

// IsRetryable clasifica el error de un Push. Timeouts y cancelaciones de
// contexto cuentan como reintentables.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
