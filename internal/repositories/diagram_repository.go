package repositories

import (
	"context"
	"encoding/json"
	"time"

	"er_diagram/internal/apperrors"
	"er_diagram/internal/models"
)

// DiagramRepository persists diagrams and the SQL generated from them.
type DiagramRepository interface {
	// LoadLatest returns the most recently saved diagram, or a NotFound error.
	LoadLatest(ctx context.Context) (*models.Diagram, error)
	// Save stores d and sql under a new timestamp id and makes d the latest.
	Save(ctx context.Context, d *models.Diagram, sql string) (*models.StorageHandle, error)
	// SaveLatest overwrites only the latest diagram.
	SaveLatest(ctx context.Context, d *models.Diagram) error
}

func errNoDiagram() error {
	return apperrors.NotFound("no diagram has been saved yet")
}

func encodeDiagram(d *models.Diagram) ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, apperrors.StorageFailure(err, "failed to encode diagram")
	}
	return data, nil
}

func decodeStoredDiagram(data []byte, source string) (*models.Diagram, error) {
	var d models.Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, apperrors.StorageFailure(err, "failed to decode stored diagram %s", source)
	}
	return &d, nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}
