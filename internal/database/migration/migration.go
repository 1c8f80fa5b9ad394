package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  document_type       TEXT        NOT NULL CHECK (document_type IN ('inbound', 'outbound')),
  reference_id        BIGINT      NOT NULL CHECK (reference_id >= 1),
  title               TEXT        NOT NULL,
  subject             TEXT        NOT NULL,
  sender              TEXT        NOT NULL,
  document_date       DATE        NOT NULL,
  uploaded_by         TEXT        NOT NULL,
  file_name           TEXT,
  storage_path        TEXT        UNIQUE,
  file_size           BIGINT      CHECK (file_size IS NULL OR file_size >= 0),
  file_content_type   TEXT,
  file_hash           TEXT,
  is_manual_reference BOOLEAN     NOT NULL DEFAULT FALSE,
  created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
  deleted_at          TIMESTAMPTZ,
  PRIMARY KEY (document_type, reference_id)
);`,
	},
	{
		Name: "create_index_documents_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at);`,
	},
	{
		Name: "create_index_documents_uploaded_by",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_uploaded_by ON documents (uploaded_by);`,
	},
	{
		Name: "create_table_reference_sequences",
		SQL: `CREATE TABLE IF NOT EXISTS reference_sequences (
  document_type TEXT   PRIMARY KEY CHECK (document_type IN ('inbound', 'outbound')),
  next_value    BIGINT NOT NULL DEFAULT 1 CHECK (next_value >= 1)
);`,
	},
	{
		Name: "seed_reference_sequences",
		SQL: `INSERT INTO reference_sequences (document_type)
VALUES ('inbound'), ('outbound')
ON CONFLICT (document_type) DO NOTHING;`,
	},
	{
		Name: "create_table_reference_reservations",
		SQL: `CREATE TABLE IF NOT EXISTS reference_reservations (
  id               UUID        PRIMARY KEY,
  seq              BIGSERIAL,
  document_type    TEXT        NOT NULL CHECK (document_type IN ('inbound', 'outbound')),
  reference_id     BIGINT      NOT NULL CHECK (reference_id >= 1),
  notes            TEXT        NOT NULL DEFAULT '',
  reserved_by      TEXT        NOT NULL,
  reserved_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  is_used          BOOLEAN     NOT NULL DEFAULT FALSE,
  used_at          TIMESTAMPTZ,
  used_document_id TEXT
);`,
	},
	{
		// One active reservation per (type, reference) pair; used rows are
		// kept for audit and no longer block.
		Name: "create_unique_index_active_reservations",
		SQL: `CREATE UNIQUE INDEX IF NOT EXISTS uq_reference_reservations_active
ON reference_reservations (document_type, reference_id) WHERE NOT is_used;`,
	},
	{
		Name: "create_table_document_access_log",
		SQL: `CREATE TABLE IF NOT EXISTS document_access_log (
  id            BIGSERIAL   PRIMARY KEY,
  document_type TEXT        NOT NULL,
  reference_id  BIGINT      NOT NULL,
  actor_id      TEXT        NOT NULL,
  action        TEXT        NOT NULL CHECK (action IN ('create', 'download', 'delete')),
  request_id    TEXT,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_access_log_document",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_access_log_document ON document_access_log (document_type, reference_id);`,
	},
}

// EnsureMigrated checks if the 'documents' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.documents') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
