package repositories

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"er_diagram/internal/apperrors"
	"er_diagram/internal/models"
)

type PostgresDiagramRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresDiagramRepository(pool *pgxpool.Pool) *PostgresDiagramRepository {
	return &PostgresDiagramRepository{pool: pool, now: utcNow}
}

func (r *PostgresDiagramRepository) Save(ctx context.Context, d *models.Diagram, sql string) (*models.StorageHandle, error) {
	data, err := encodeDiagram(d)
	if err != nil {
		return nil, err
	}
	handle := models.NewStorageHandle(r.now())
	handle.DiagramLocation = "er_diagrams/" + handle.ID
	handle.SQLLocation = "er_diagrams/" + handle.ID + "#sql_text"

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.StorageFailure(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO er_diagrams (id, diagram, sql_text, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET diagram = EXCLUDED.diagram, sql_text = EXCLUDED.sql_text, created_at = EXCLUDED.created_at
	`
	if _, err := tx.Exec(ctx, query, handle.ID, string(data), sql, handle.SavedAt); err != nil {
		return nil, apperrors.StorageFailure(err, "failed to store diagram %s", handle.ID)
	}
	if err := upsertLatestPostgres(ctx, tx, data, handle.SavedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.StorageFailure(err, "failed to commit diagram %s", handle.ID)
	}
	return handle, nil
}

func (r *PostgresDiagramRepository) SaveLatest(ctx context.Context, d *models.Diagram) error {
	data, err := encodeDiagram(d)
	if err != nil {
		return err
	}
	return upsertLatestPostgres(ctx, r.pool, data, r.now())
}

type pgExecer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func upsertLatestPostgres(ctx context.Context, db pgExecer, data []byte, at time.Time) error {
	query := `
		INSERT INTO er_latest_diagram (slot, diagram, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (slot) DO UPDATE
		SET diagram = EXCLUDED.diagram, updated_at = EXCLUDED.updated_at
	`
	if _, err := db.Exec(ctx, query, string(data), at); err != nil {
		return apperrors.StorageFailure(err, "failed to update latest diagram")
	}
	return nil
}

// LoadLatest reads the latest row, falling back to the newest snapshot.
func (r *PostgresDiagramRepository) LoadLatest(ctx context.Context) (*models.Diagram, error) {
	var data []byte
	err := r.pool.QueryRow(ctx, `SELECT diagram FROM er_latest_diagram WHERE slot = 1`).Scan(&data)
	if err == nil {
		return decodeStoredDiagram(data, "er_latest_diagram")
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.StorageFailure(err, "failed to load latest diagram")
	}

	var id string
	err = r.pool.QueryRow(ctx, `
		SELECT id, diagram FROM er_diagrams
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`).Scan(&id, &data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errNoDiagram()
		}
		return nil, apperrors.StorageFailure(err, "failed to load newest diagram")
	}
	return decodeStoredDiagram(data, id)
}
