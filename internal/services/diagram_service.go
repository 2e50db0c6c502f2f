package services

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopmonkeyus/go-common/logger"

	"er_diagram/internal/apperrors"
	"er_diagram/internal/compiler"
	"er_diagram/internal/metrics"
	"er_diagram/internal/models"
	"er_diagram/internal/repositories"
)

// ErrNoApplyTarget is returned by Apply when no target database is configured.
var ErrNoApplyTarget = errors.New("no target database configured")

type DiagramService struct {
	repo     repositories.DiagramRepository
	applier  *SchemaApplier
	log      logger.Logger
	database string
	now      func() time.Time
}

// NewDiagramService wires the diagram store. applier may be nil, in which
// case Apply reports ErrNoApplyTarget.
func NewDiagramService(repo repositories.DiagramRepository, applier *SchemaApplier, log logger.Logger, database string) *DiagramService {
	if database == "" {
		database = compiler.DefaultDatabase
	}
	return &DiagramService{
		repo:     repo,
		applier:  applier,
		log:      log.WithPrefix("[diagrams]"),
		database: database,
		now:      time.Now,
	}
}

type SaveResult struct {
	Handle *models.StorageHandle `json:"handle"`
	SQL    string                `json:"sql"`
}

type UpdatePositionRequest struct {
	Action   string            `form:"action" json:"action"`
	EntityID string            `form:"entityId" json:"entityId"`
	Left     models.Coordinate `form:"left" json:"left"`
	Top      models.Coordinate `form:"top" json:"top"`
}

const actionUpdatePosition = "update_position"

// Compile runs the compiler with the service's schema name and records
// statement metrics.
func (s *DiagramService) Compile(d *models.Diagram, variant compiler.Variant, opts ...compiler.Option) (*compiler.Script, error) {
	opts = append([]compiler.Option{compiler.WithClock(s.now), compiler.WithDatabase(s.database)}, opts...)
	script, err := compiler.Compile(d, variant, opts...)
	if err != nil {
		return nil, err
	}
	metrics.Compilations.WithLabelValues(variant.String()).Inc()
	for _, st := range script.Statements {
		metrics.StatementsEmitted.WithLabelValues(st.Kind.String()).Inc()
	}
	return script, nil
}

// Save compiles d non-destructively and stores the diagram with its SQL.
func (s *DiagramService) Save(ctx context.Context, d *models.Diagram) (*SaveResult, error) {
	script, err := s.Compile(d, compiler.VariantSave)
	if err != nil {
		return nil, err
	}
	sql := script.String()
	handle, err := s.repo.Save(ctx, d, sql)
	if err != nil {
		s.storageFailed("save", err)
		return nil, err
	}
	metrics.DiagramsSaved.Inc()
	s.log.Info("saved diagram %s: %d entities, %d connections, %d tables", handle.ID, len(d.Entities), len(d.Connections), len(script.Tables))
	return &SaveResult{Handle: handle, SQL: sql}, nil
}

func (s *DiagramService) LoadLatest(ctx context.Context) (*models.Diagram, error) {
	d, err := s.repo.LoadLatest(ctx)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.storageFailed("load", err)
		}
		return nil, err
	}
	return d, nil
}

// Export compiles the latest diagram with drop and recreate semantics.
func (s *DiagramService) Export(ctx context.Context) (string, error) {
	d, err := s.LoadLatest(ctx)
	if err != nil {
		return "", err
	}
	script, err := s.Compile(d, compiler.VariantExport)
	if err != nil {
		return "", err
	}
	return script.String(), nil
}

// Visualize renders the tables of the latest diagram as a Mermaid erDiagram.
func (s *DiagramService) Visualize(ctx context.Context) (string, error) {
	d, err := s.LoadLatest(ctx)
	if err != nil {
		return "", err
	}
	script, err := s.Compile(d, compiler.VariantSave)
	if err != nil {
		return "", err
	}
	return RenderMermaid(script.Schema), nil
}

// UpdatePosition moves one entity of the latest diagram, creating a nameless
// rectangle when the id is unknown. With nothing stored yet it starts from an
// empty diagram.
func (s *DiagramService) UpdatePosition(ctx context.Context, req UpdatePositionRequest) (*models.Diagram, error) {
	if req.Action != "" && req.Action != actionUpdatePosition {
		return nil, apperrors.InvalidInput("unsupported action %q", req.Action)
	}
	if req.EntityID == "" {
		return nil, apperrors.InvalidInput("Entity ID required")
	}
	left, err := req.Left.Int()
	if err != nil {
		return nil, err
	}
	top, err := req.Top.Int()
	if err != nil {
		return nil, err
	}

	d, err := s.repo.LoadLatest(ctx)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.storageFailed("load", err)
			return nil, err
		}
		d = &models.Diagram{}
	}

	if created := d.MoveEntity(req.EntityID, models.Position{Left: left, Top: top}); created {
		s.log.Debug("position update created entity %s", req.EntityID)
	}
	if err := s.repo.SaveLatest(ctx, d); err != nil {
		s.storageFailed("save_latest", err)
		return nil, err
	}
	return d, nil
}

// Apply compiles the latest diagram and executes it on the target database.
func (s *DiagramService) Apply(ctx context.Context, variant compiler.Variant) (*ApplyResult, error) {
	if s.applier == nil {
		return nil, ErrNoApplyTarget
	}
	d, err := s.LoadLatest(ctx)
	if err != nil {
		return nil, err
	}
	script, err := s.Compile(d, variant)
	if err != nil {
		return nil, err
	}
	return s.applier.Apply(ctx, script)
}

func (s *DiagramService) storageFailed(operation string, err error) {
	metrics.StorageFailures.WithLabelValues(operation).Inc()
	s.log.Error("storage %s failed: %v", operation, err)
}
