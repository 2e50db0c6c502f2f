package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"

	"er_diagram/internal/apperrors"
	"er_diagram/internal/models"
)

type SQLiteDiagramRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteDiagramRepository(db *sql.DB) *SQLiteDiagramRepository {
	return &SQLiteDiagramRepository{db: db, now: utcNow}
}

func (r *SQLiteDiagramRepository) Save(ctx context.Context, d *models.Diagram, sqlText string) (*models.StorageHandle, error) {
	data, err := encodeDiagram(d)
	if err != nil {
		return nil, err
	}
	handle := models.NewStorageHandle(r.now())
	handle.DiagramLocation = "er_diagrams/" + handle.ID
	handle.SQLLocation = "er_diagrams/" + handle.ID + "#sql_text"

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.StorageFailure(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	query := `
		INSERT INTO er_diagrams (id, diagram, sql_text, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET diagram = excluded.diagram, sql_text = excluded.sql_text, created_at = excluded.created_at
	`
	if _, err := tx.ExecContext(ctx, query, handle.ID, string(data), sqlText, handle.SavedAt.UnixNano()); err != nil {
		return nil, apperrors.StorageFailure(err, "failed to store diagram %s", handle.ID)
	}
	if err := upsertLatestSQLite(ctx, tx, data, handle.SavedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, apperrors.StorageFailure(err, "failed to commit diagram %s", handle.ID)
	}
	return handle, nil
}

func (r *SQLiteDiagramRepository) SaveLatest(ctx context.Context, d *models.Diagram) error {
	data, err := encodeDiagram(d)
	if err != nil {
		return err
	}
	return upsertLatestSQLite(ctx, r.db, data, r.now())
}

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertLatestSQLite(ctx context.Context, db sqlExecer, data []byte, at time.Time) error {
	query := `
		INSERT INTO er_latest_diagram (slot, diagram, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT (slot) DO UPDATE
		SET diagram = excluded.diagram, updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(ctx, query, string(data), at.UnixNano()); err != nil {
		return apperrors.StorageFailure(err, "failed to update latest diagram")
	}
	return nil
}

func (r *SQLiteDiagramRepository) LoadLatest(ctx context.Context) (*models.Diagram, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT diagram FROM er_latest_diagram WHERE slot = 1`).Scan(&data)
	if err == nil {
		return decodeStoredDiagram([]byte(data), "er_latest_diagram")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.StorageFailure(err, "failed to load latest diagram")
	}

	var id string
	err = r.db.QueryRowContext(ctx, `
		SELECT id, diagram FROM er_diagrams
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`).Scan(&id, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errNoDiagram()
		}
		return nil, apperrors.StorageFailure(err, "failed to load newest diagram")
	}
	return decodeStoredDiagram([]byte(data), id)
}
