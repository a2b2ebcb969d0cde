package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/invorya/stocksync-api/internal/application/syncing"
	"github.com/invorya/stocksync-api/internal/domain/entity"
)

// Ensure FileSnapshotter implements syncing.Snapshotter.
var _ syncing.Snapshotter = (*FileSnapshotter)(nil)

// FileSnapshotter escribe las entradas pendientes del outbox a un archivo
// JSON local antes de una corrida, para rollback manual si la corrida es
// destructiva en el remoto.
type FileSnapshotter struct {
	dir string
}

// NewFileSnapshotter construye el snapshotter sobre el directorio dado.
func NewFileSnapshotter(dir string) *FileSnapshotter {
	return &FileSnapshotter{dir: dir}
}

// snapshotEntry formato de cada entrada en el archivo de respaldo.
type snapshotEntry struct {
	ID         string          `json:"id"`
	CompanyID  string          `json:"company_id,omitempty"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Operation  string          `json:"operation"`
	Data       json.RawMessage `json:"data"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Snapshot escribe las entradas y devuelve la ruta del archivo creado.
func (s *FileSnapshotter) Snapshot(entries []*entity.SyncQueueEntry) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("crear directorio de respaldo: %w", err)
	}

	out := make([]snapshotEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, snapshotEntry{
			ID:         e.ID,
			CompanyID:  e.CompanyID,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Operation:  e.Operation,
			Data:       json.RawMessage(e.Data),
			CreatedAt:  e.CreatedAt,
		})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializar respaldo: %w", err)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("sync-backup-%s.json", time.Now().Format("20060102-150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("escribir respaldo: %w", err)
	}
	return path, nil
}
