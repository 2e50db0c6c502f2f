package services

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopmonkeyus/go-common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"er_diagram/internal/apperrors"
	"er_diagram/internal/compiler"
	"er_diagram/internal/models"
)

type memoryRepository struct {
	latest  *models.Diagram
	saved   map[string]string
	saveErr error
	loadErr error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{saved: map[string]string{}}
}

func (r *memoryRepository) LoadLatest(ctx context.Context) (*models.Diagram, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	if r.latest == nil {
		return nil, apperrors.NotFound("no diagram has been saved yet")
	}
	return r.latest, nil
}

func (r *memoryRepository) Save(ctx context.Context, d *models.Diagram, sql string) (*models.StorageHandle, error) {
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	h := models.NewStorageHandle(time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC))
	h.DiagramLocation = "diagram_" + h.ID + ".json"
	r.saved[h.ID] = sql
	r.latest = d
	return h, nil
}

func (r *memoryRepository) SaveLatest(ctx context.Context, d *models.Diagram) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.latest = d
	return nil
}

func customerOrder() *models.Diagram {
	return &models.Diagram{
		Entities: []models.Entity{
			{ID: "entity1", Type: models.EntityRectangle, Name: "Customer"},
			{ID: "entity2", Type: models.EntityRectangle, Name: "Order"},
		},
		Connections: []models.Connection{{Source: "entity2", Target: "entity1"}},
	}
}

func newTestService(repo *memoryRepository) *DiagramService {
	svc := NewDiagramService(repo, nil, logger.NewTestLogger(), "")
	svc.now = func() time.Time { return time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC) }
	return svc
}

func TestDiagramServiceSave(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	res, err := svc.Save(context.Background(), customerOrder())
	require.NoError(t, err)
	assert.Equal(t, "20240305_140709", res.Handle.ID)
	assert.Equal(t, repo.saved[res.Handle.ID], res.SQL)
	assert.Contains(t, res.SQL, "-- Generated on: 2024-03-05 14:07:09")
	assert.Contains(t, res.SQL, "CREATE TABLE IF NOT EXISTS `Customer`")
	assert.Contains(t, res.SQL, "ADD COLUMN IF NOT EXISTS `customer_id` INT")
	assert.NotContains(t, res.SQL, "DROP TABLE")
	assert.Equal(t, customerOrder(), repo.latest)
}

func TestDiagramServiceSaveStorageFailure(t *testing.T) {
	repo := newMemoryRepository()
	repo.saveErr = apperrors.StorageFailure(errors.New("disk full"), "failed to write")
	svc := newTestService(repo)

	_, err := svc.Save(context.Background(), customerOrder())
	require.Error(t, err)
	assert.True(t, apperrors.IsStorageFailure(err))
}

func TestDiagramServiceCustomDatabase(t *testing.T) {
	svc := NewDiagramService(newMemoryRepository(), nil, logger.NewTestLogger(), "shop")

	script, err := svc.Compile(&models.Diagram{}, compiler.VariantSave)
	require.NoError(t, err)
	assert.Contains(t, script.String(), "CREATE DATABASE IF NOT EXISTS `shop`;")
}

func TestDiagramServiceExport(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	_, err := svc.Export(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	repo.latest = customerOrder()
	sql, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.Contains(t, sql, "DROP TABLE IF EXISTS `Customer`;\nCREATE TABLE `Customer`")
	assert.Contains(t, sql, "ADD COLUMN `customer_id` INT")
	assert.Contains(t, sql, "INSERT INTO `Order`")
}

func TestDiagramServiceUpdatePosition(t *testing.T) {
	repo := newMemoryRepository()
	repo.latest = customerOrder()
	svc := newTestService(repo)

	d, err := svc.UpdatePosition(context.Background(), UpdatePositionRequest{
		Action:   "update_position",
		EntityID: "entity2",
		Left:     "120px",
		Top:      "45.9",
	})
	require.NoError(t, err)
	assert.Equal(t, models.Position{Left: 120, Top: 45}, d.Entities[1].Position)
	assert.Len(t, d.Entities, 2)

	d, err = svc.UpdatePosition(context.Background(), UpdatePositionRequest{EntityID: "entity7", Left: "1", Top: "2"})
	require.NoError(t, err)
	require.Len(t, d.Entities, 3)
	assert.Equal(t, models.Entity{ID: "entity7", Type: models.EntityRectangle, Position: models.Position{Left: 1, Top: 2}}, d.Entities[2])
	assert.Same(t, d, repo.latest)
}

func TestDiagramServiceUpdatePositionStartsEmpty(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	d, err := svc.UpdatePosition(context.Background(), UpdatePositionRequest{EntityID: "entity1"})
	require.NoError(t, err)
	require.Len(t, d.Entities, 1)
	assert.Equal(t, models.Position{}, d.Entities[0].Position)
	assert.Empty(t, d.Connections)
}

func TestDiagramServiceUpdatePositionInvalid(t *testing.T) {
	tests := []struct {
		name string
		req  UpdatePositionRequest
	}{
		{"missing entity", UpdatePositionRequest{Left: "1", Top: "1"}},
		{"wrong action", UpdatePositionRequest{Action: "delete", EntityID: "entity1"}},
		{"bad left", UpdatePositionRequest{EntityID: "entity1", Left: "left"}},
		{"bad top", UpdatePositionRequest{EntityID: "entity1", Top: "12em"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryRepository()
			_, err := newTestService(repo).UpdatePosition(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, apperrors.IsInvalidInput(err))
			assert.Nil(t, repo.latest)
		})
	}
}

func TestDiagramServiceUpdatePositionLoadFailure(t *testing.T) {
	repo := newMemoryRepository()
	repo.loadErr = apperrors.StorageFailure(errors.New("io"), "failed to read")

	_, err := newTestService(repo).UpdatePosition(context.Background(), UpdatePositionRequest{EntityID: "entity1"})
	require.Error(t, err)
	assert.True(t, apperrors.IsStorageFailure(err))
}

func TestDiagramServiceApplyWithoutTarget(t *testing.T) {
	repo := newMemoryRepository()
	repo.latest = customerOrder()

	_, err := newTestService(repo).Apply(context.Background(), compiler.VariantSave)
	assert.ErrorIs(t, err, ErrNoApplyTarget)
}

func TestDiagramServiceVisualize(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	_, err := svc.Visualize(context.Background())
	assert.True(t, apperrors.IsNotFound(err))

	repo.latest = customerOrder()
	out, err := svc.Visualize(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out, "    Order {\n")
	assert.Contains(t, out, "int customer_id FK")
}
