package repositories

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"er_diagram/internal/apperrors"
	"er_diagram/internal/models"
)

const (
	latestDiagramFile = "latest_diagram.json"
	diagramFilePrefix = "diagram_"
)

// FileDiagramRepository keeps diagrams as files in one directory:
// diagram_<id>.json, diagram_<id>.sql and latest_diagram.json.
type FileDiagramRepository struct {
	dir string
	now func() time.Time
	mu  sync.Mutex
}

func NewFileDiagramRepository(dir string) *FileDiagramRepository {
	return &FileDiagramRepository{dir: dir, now: time.Now}
}

func (r *FileDiagramRepository) Dir() string {
	return r.dir
}

func (r *FileDiagramRepository) Save(ctx context.Context, d *models.Diagram, sql string) (*models.StorageHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.StorageFailure(err, "save cancelled")
	}
	data, err := json.MarshalIndent(d, "", "    ")
	if err != nil {
		return nil, apperrors.StorageFailure(err, "failed to encode diagram")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, apperrors.StorageFailure(err, "failed to create diagrams directory")
	}

	handle := models.NewStorageHandle(r.now())
	handle.DiagramLocation = diagramFilePrefix + handle.ID + ".json"
	handle.SQLLocation = diagramFilePrefix + handle.ID + ".sql"

	if err := r.write(handle.DiagramLocation, data); err != nil {
		return nil, err
	}
	if err := r.write(handle.SQLLocation, []byte(sql)); err != nil {
		return nil, err
	}
	if err := r.write(latestDiagramFile, data); err != nil {
		return nil, err
	}
	return handle, nil
}

func (r *FileDiagramRepository) SaveLatest(ctx context.Context, d *models.Diagram) error {
	if err := ctx.Err(); err != nil {
		return apperrors.StorageFailure(err, "save cancelled")
	}
	data, err := json.MarshalIndent(d, "", "    ")
	if err != nil {
		return apperrors.StorageFailure(err, "failed to encode diagram")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return apperrors.StorageFailure(err, "failed to create diagrams directory")
	}
	return r.write(latestDiagramFile, data)
}

// LoadLatest reads latest_diagram.json and falls back to the most recently
// modified diagram_*.json.
func (r *FileDiagramRepository) LoadLatest(ctx context.Context) (*models.Diagram, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.StorageFailure(err, "load cancelled")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	path := filepath.Join(r.dir, latestDiagramFile)
	data, err := os.ReadFile(path)
	if err == nil {
		return decodeStoredDiagram(data, latestDiagramFile)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.StorageFailure(err, "failed to read %s", latestDiagramFile)
	}

	newest, err := r.newestSnapshot()
	if err != nil {
		return nil, err
	}
	if newest == "" {
		return nil, errNoDiagram()
	}
	data, err = os.ReadFile(newest)
	if err != nil {
		return nil, apperrors.StorageFailure(err, "failed to read %s", filepath.Base(newest))
	}
	return decodeStoredDiagram(data, filepath.Base(newest))
}

func (r *FileDiagramRepository) newestSnapshot() (string, error) {
	matches, err := filepath.Glob(filepath.Join(r.dir, diagramFilePrefix+"*.json"))
	if err != nil {
		return "", apperrors.StorageFailure(err, "failed to list diagrams")
	}
	var (
		newest  string
		newestT time.Time
	)
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		// ties on mtime resolve to the later id
		if newest == "" || info.ModTime().After(newestT) ||
			(info.ModTime().Equal(newestT) && strings.Compare(m, newest) > 0) {
			newest = m
			newestT = info.ModTime()
		}
	}
	return newest, nil
}

func (r *FileDiagramRepository) write(name string, data []byte) error {
	if err := os.WriteFile(filepath.Join(r.dir, name), data, 0o644); err != nil {
		return apperrors.StorageFailure(err, "failed to write %s", name)
	}
	return nil
}
