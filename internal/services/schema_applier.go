package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopmonkeyus/go-common/logger"

	"er_diagram/internal/compiler"
	"er_diagram/internal/metrics"
)

// SchemaApplier executes generated scripts on a MySQL server.
type SchemaApplier struct {
	db  *sql.DB
	log logger.Logger
}

func NewSchemaApplier(db *sql.DB, log logger.Logger) *SchemaApplier {
	return &SchemaApplier{db: db, log: log.WithPrefix("[apply]")}
}

type ApplyResult struct {
	Variant    string   `json:"variant"`
	Statements int      `json:"statements"`
	Tables     []string `json:"tables"`
}

// Apply runs every statement of script in order on a single connection, so
// the USE statement holds for the rest of the script. It stops at the first
// failing statement.
func (a *SchemaApplier) Apply(ctx context.Context, script *compiler.Script) (*ApplyResult, error) {
	started := time.Now()
	defer func() { metrics.ApplyDuration.Observe(time.Since(started).Seconds()) }()

	conn, err := a.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	statements := script.Executable()
	for i, stmt := range statements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			a.log.Error("statement %d/%d failed: %v", i+1, len(statements), err)
			return nil, fmt.Errorf("failed to execute statement %d: %w", i+1, err)
		}
	}
	a.log.Info("applied %s script: %d statements, %d tables", script.Variant, len(statements), len(script.Tables))

	tables := script.Tables
	if tables == nil {
		tables = []string{}
	}
	return &ApplyResult{
		Variant:    script.Variant.String(),
		Statements: len(statements),
		Tables:     tables,
	}, nil
}
