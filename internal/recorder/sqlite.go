package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eliezerRevach/finance-data/internal/logger"
	"github.com/eliezerRevach/finance-data/internal/model"
)

// SQLiteRecorder persists export history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the exporter writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.L().Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS export_runs (
			id          TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			symbols     INTEGER,
			published   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON export_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS symbol_outcomes (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id    TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			symbol    TEXT,
			status    TEXT,
			detail    TEXT,
			artifact  TEXT,
			rows      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_run ON symbol_outcomes(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_ts ON symbol_outcomes(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *ExportRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO export_runs
		(id, started_at, finished_at, symbols, published)
		VALUES (?,?,?,?,?)`,
		run.ID, run.StartedAt.Unix(), run.FinishedAt.Unix(),
		run.Symbols, run.Published,
	)
	return err
}

func (r *SQLiteRecorder) RecordOutcome(runID string, o *model.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO symbol_outcomes
		(run_id, timestamp, symbol, status, detail, artifact, rows)
		VALUES (?,?,?,?,?,?,?)`,
		runID, time.Now().Unix(), o.Symbol, string(o.Status),
		o.Detail, o.Artifact, o.Rows,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	logger.L().Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
