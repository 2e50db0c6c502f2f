package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopmonkeyus/go-common/logger"
)

// RunMigrations creates the diagram tables in PostgreSQL.
func RunMigrations(ctx context.Context, log logger.Logger, pool *pgxpool.Pool) error {
	migrations := []string{
		createPostgresDiagramsTable,
		createPostgresLatestDiagramTable,
	}

	for i, migration := range migrations {
		log.Debug("running migration %d/%d", i+1, len(migrations))
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Info("all migrations completed successfully")
	return nil
}

// RunSQLiteMigrations creates the diagram tables in SQLite.
func RunSQLiteMigrations(ctx context.Context, log logger.Logger, db *sql.DB) error {
	migrations := []string{
		createSQLiteDiagramsTable,
		createSQLiteLatestDiagramTable,
	}

	for i, migration := range migrations {
		log.Debug("running migration %d/%d", i+1, len(migrations))
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Info("all migrations completed successfully")
	return nil
}

const createPostgresDiagramsTable = `
CREATE TABLE IF NOT EXISTS er_diagrams (
  id TEXT PRIMARY KEY,
  diagram JSONB NOT NULL,
  sql_text TEXT NOT NULL,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_er_diagrams_created_at ON er_diagrams(created_at);
`

// er_latest_diagram holds at most one row, keyed by slot = 1.
const createPostgresLatestDiagramTable = `
CREATE TABLE IF NOT EXISTS er_latest_diagram (
  slot INT PRIMARY KEY CHECK (slot = 1),
  diagram JSONB NOT NULL,
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

const createSQLiteDiagramsTable = `
CREATE TABLE IF NOT EXISTS er_diagrams (
  id TEXT PRIMARY KEY,
  diagram TEXT NOT NULL,
  sql_text TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_er_diagrams_created_at ON er_diagrams(created_at);
`

const createSQLiteLatestDiagramTable = `
CREATE TABLE IF NOT EXISTS er_latest_diagram (
  slot INTEGER PRIMARY KEY CHECK (slot = 1),
  diagram TEXT NOT NULL,
  updated_at INTEGER NOT NULL
);
`
