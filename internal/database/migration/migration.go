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

// The ledger is archival: there are no UPDATE or DELETE paths anywhere in the
// schema. Fulfillment order is preserved by the seq sequence; issuance order
// per issuer/recipient by the index tables' position sequence.
var steps = []migrationStep{
	{
		Name: "create_table_prescriptions",
		SQL: `CREATE TABLE IF NOT EXISTS prescriptions (
  id          TEXT        PRIMARY KEY,
  issuer      TEXT        NOT NULL,
  recipient   TEXT        NOT NULL,
  fingerprint TEXT        NOT NULL CHECK (fingerprint = id),
  locator     TEXT        NOT NULL,
  issued_at   TIMESTAMPTZ NOT NULL,
  expires_at  TIMESTAMPTZ NOT NULL CHECK (expires_at > issued_at)
);`,
	},
	{
		Name: "create_table_fulfillments",
		SQL: `CREATE TABLE IF NOT EXISTS fulfillments (
  prescription_id TEXT        NOT NULL REFERENCES prescriptions (id),
  party           TEXT        NOT NULL,
  party_name      TEXT        NOT NULL,
  fulfilled_at    TIMESTAMPTZ NOT NULL,
  seq             BIGSERIAL,
  PRIMARY KEY (prescription_id, party)
);`,
	},
	{
		Name: "create_table_issuer_index",
		SQL: `CREATE TABLE IF NOT EXISTS issuer_index (
  issuer          TEXT      NOT NULL,
  prescription_id TEXT      NOT NULL REFERENCES prescriptions (id),
  position        BIGSERIAL,
  PRIMARY KEY (issuer, prescription_id)
);`,
	},
	{
		Name: "create_table_recipient_index",
		SQL: `CREATE TABLE IF NOT EXISTS recipient_index (
  recipient       TEXT      NOT NULL,
  prescription_id TEXT      NOT NULL REFERENCES prescriptions (id),
  position        BIGSERIAL,
  PRIMARY KEY (recipient, prescription_id)
);`,
	},
	{
		Name: "create_index_fulfillments_seq",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_fulfillments_seq ON fulfillments (prescription_id, seq);`,
	},
	{
		Name: "create_index_issuer_index_position",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_issuer_index_position ON issuer_index (issuer, position);`,
	},
	{
		Name: "create_index_recipient_index_position",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_recipient_index_position ON recipient_index (recipient, position);`,
	},
}

// EnsureMigrated checks if the 'prescriptions' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.prescriptions') IS NOT NULL"
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
