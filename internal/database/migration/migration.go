package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"receiptiq/internal/logging"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is checked to decide whether the schema exists.
const sentinelTable = "public.receipt_items"

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_receipt_files",
		SQL: `CREATE TABLE IF NOT EXISTS receipt_files (
  id             UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  file_name      TEXT        NOT NULL,
  storage_path   TEXT        NOT NULL UNIQUE,
  is_valid       BOOLEAN,
  invalid_reason TEXT,
  is_processed   BOOLEAN     NOT NULL DEFAULT FALSE,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at     TIMESTAMPTZ
);`,
	},
	{
		Name: "create_table_receipts",
		SQL: `CREATE TABLE IF NOT EXISTS receipts (
  id              UUID             PRIMARY KEY DEFAULT uuid_generate_v4(),
  receipt_file_id UUID             NOT NULL UNIQUE REFERENCES receipt_files (id) ON DELETE CASCADE,
  purchased_at    TIMESTAMPTZ,
  merchant_name   TEXT,
  total_amount    DOUBLE PRECISION NOT NULL DEFAULT 0,
  created_at      TIMESTAMPTZ      NOT NULL DEFAULT now(),
  updated_at      TIMESTAMPTZ
);`,
	},
	{
		Name: "create_table_receipt_items",
		SQL: `CREATE TABLE IF NOT EXISTS receipt_items (
  id          UUID             PRIMARY KEY DEFAULT uuid_generate_v4(),
  receipt_id  UUID             NOT NULL REFERENCES receipts (id) ON DELETE CASCADE,
  position    INT              NOT NULL,
  description TEXT             NOT NULL,
  quantity    DOUBLE PRECISION NOT NULL DEFAULT 0,
  price       DOUBLE PRECISION NOT NULL DEFAULT 0
);`,
	},
	{
		Name: "create_index_receipts_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_receipts_created_at ON receipts (created_at);`,
	},
	{
		Name: "create_index_receipt_items_receipt_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_receipt_items_receipt_id ON receipt_items (receipt_id, position);`,
	},
}

// EnsureMigrated creates the receipt schema unless the sentinel table already exists.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger zerolog.Logger, dbHost string) error {
	start := time.Now()
	l := logging.Component(logger, "database").With().Str("db_host", dbHost).Logger()

	l.Info().Str("event", "db_migration_check").Str("status", "starting").Msg("checking schema")

	var exists bool
	query := fmt.Sprintf("SELECT to_regclass('%s') IS NOT NULL", sentinelTable)
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		l.Error().Err(err).
			Str("event", "db_migration_failed").
			Str("status", "error").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		l.Info().
			Str("event", "db_migration_skip").
			Str("status", "success").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("schema already exists, skipping migration")
		return nil
	}

	l.Info().Str("event", "db_migration_start").Str("status", "in_progress").Msg("migrating")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			l.Error().Err(err).
				Str("event", "db_migration_failed").
				Str("status", "error").
				Str("migration_step", step.Name).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
				Msg("migration step failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		l.Info().
			Str("event", "db_migration_step").
			Str("status", "success").
			Str("migration_step", step.Name).
			Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
			Msg("step applied")
	}

	l.Info().
		Str("event", "db_migration_success").
		Str("status", "success").
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("schema migrated")

	return nil
}
