package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created by the last table step; its presence means the schema is complete.
const sentinelTable = "public.document_metadata"

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id                UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  owner_id          UUID        NOT NULL,
  filename          TEXT        NOT NULL,
  original_filename TEXT        NOT NULL,
  storage_path      TEXT        NOT NULL UNIQUE,
  size              BIGINT      NOT NULL CHECK (size >= 0),
  content_type      TEXT        NOT NULL,
  created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_document_permissions",
		SQL: `CREATE TABLE IF NOT EXISTS document_permissions (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  document_id UUID        NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  user_id     UUID        NOT NULL,
  permission  TEXT        NOT NULL CHECK (permission IN ('read', 'write', 'delete', 'admin')),
  granted_by  UUID        NOT NULL,
  granted_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT uq_document_permissions_document_user UNIQUE (document_id, user_id)
);`,
	},
	{
		Name: "create_table_download_tokens",
		SQL: `CREATE TABLE IF NOT EXISTS download_tokens (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  document_id UUID        NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  token       TEXT        NOT NULL UNIQUE,
  expires_at  TIMESTAMPTZ NOT NULL,
  used_at     TIMESTAMPTZ,
  created_by  UUID        NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_document_tags",
		SQL: `CREATE TABLE IF NOT EXISTS document_tags (
  document_id UUID NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  tag         TEXT NOT NULL,
  PRIMARY KEY (document_id, tag)
);`,
	},
	{
		Name: "create_table_document_metadata",
		SQL: `CREATE TABLE IF NOT EXISTS document_metadata (
  id          BIGSERIAL PRIMARY KEY,
  document_id UUID      NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  key         TEXT      NOT NULL,
  value       TEXT      NOT NULL
);`,
	},
	{
		Name: "create_index_documents_owner_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_owner_id ON documents (owner_id);`,
	},
	{
		Name: "create_index_documents_original_filename",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_original_filename ON documents (original_filename);`,
	},
	{
		Name: "create_index_documents_content_type",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_content_type ON documents (content_type);`,
	},
	{
		Name: "create_index_documents_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at);`,
	},
	{
		Name: "create_index_document_permissions_user_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_permissions_user_id ON document_permissions (user_id);`,
	},
	{
		Name: "create_index_download_tokens_expires_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_download_tokens_expires_at ON download_tokens (expires_at);`,
	},
	{
		Name: "create_index_document_tags_tag",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_tags_tag ON document_tags (tag);`,
	},
	{
		Name: "create_index_document_metadata_key",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_metadata_key ON document_metadata (key, document_id);`,
	},
}

// EnsureMigrated checks whether the schema is present and runs the migration steps if it isn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, dbHost string) error {
	start := time.Now()
	logger := log.With().Str("component", "database").Str("db_host", dbHost).Logger()

	logger.Info().Str("event", "db_migration_check").Str("status", "starting").Send()

	var exists bool
	query := "SELECT to_regclass($1) IS NOT NULL"
	if err := db.QueryRowContext(ctx, query, sentinelTable).Scan(&exists); err != nil {
		logger.Error().
			Str("event", "db_migration_failed").
			Str("status", "error").
			Err(err).
			Dur("duration_ms", time.Since(start)).
			Msg("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logger.Info().
			Str("event", "db_migration_skip").
			Str("status", "success").
			Dur("duration_ms", time.Since(start)).
			Msg("schema already exists, skipping migration")
		return nil
	}

	logger.Info().Str("event", "db_migration_start").Str("status", "in_progress").Send()

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			logStep(logger.Error(), step.Name, stepStart).
				Str("event", "db_migration_failed").
				Str("status", "error").
				Err(err).
				Dur("duration_ms", time.Since(start)).
				Send()
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logStep(logger.Info(), step.Name, stepStart).
			Str("event", "db_migration_step").
			Str("status", "success").
			Send()
	}

	logger.Info().
		Str("event", "db_migration_success").
		Str("status", "success").
		Int("steps", len(steps)).
		Dur("duration_ms", time.Since(start)).
		Send()

	return nil
}

func logStep(e *zerolog.Event, name string, stepStart time.Time) *zerolog.Event {
	return e.Str("migration_step", name).Dur("step_duration_ms", time.Since(stepStart))
}
