package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"

	"netlab/internal/domain"
	"netlab/internal/repository"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

var _ repository.Repository = (*Repository)(nil)

// New creates a new SQLite repository. ":memory:" opens a private
// in-memory database.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath
	memory := dbPath == ":memory:"
	if !memory {
		dsn = dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	// Each connection to :memory: is its own database
	if memory {
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "failed to enable foreign keys")
		}
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to migrate database")
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS diagnostic_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		host TEXT NOT NULL,
		kind TEXT NOT NULL,
		target TEXT,
		command TEXT NOT NULL,
		output TEXT NOT NULL,
		exit_code INTEGER NOT NULL DEFAULT 0,
		started_at INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS ping_results (
		run_id INTEGER PRIMARY KEY,
		transmitted INTEGER,
		received INTEGER,
		duplicates INTEGER,
		errors INTEGER,
		packet_loss_percent REAL,
		time_ms REAL,
		rtt_min REAL,
		rtt_avg REAL,
		rtt_max REAL,
		rtt_mdev REAL,
		FOREIGN KEY (run_id) REFERENCES diagnostic_runs(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS tracepath_hops (
		run_id INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		hop_number INTEGER NOT NULL,
		address TEXT NOT NULL,
		hostname TEXT NOT NULL DEFAULT '',
		rtt_ms REAL NOT NULL,
		pmtu INTEGER,
		PRIMARY KEY (run_id, seq),
		FOREIGN KEY (run_id) REFERENCES diagnostic_runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_runs_host ON diagnostic_runs(host, started_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveRun stores a run with its parsed ping result and hops in one
// transaction and sets run.ID
func (r *Repository) SaveRun(ctx context.Context, run *domain.DiagnosticRun) error {
	if run == nil {
		return errors.New("nil run")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO diagnostic_runs (host, kind, target, command, output, exit_code, started_at, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, runInsertArgs(run)...)
	if err != nil {
		return errors.Wrap(err, "failed to insert run")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "failed to read run id")
	}

	if run.Ping != nil {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO ping_results (run_id, `+pingColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, pingInsertArgs(id, run.Ping)...); err != nil {
			return errors.Wrap(err, "failed to insert ping result")
		}
	}

	for seq, hop := range run.Hops {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tracepath_hops (run_id, seq, hop_number, address, hostname, rtt_ms, pmtu)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, seq, hop.Number, hop.Address, hop.Hostname, hop.RTTMs, intPtrToNull(hop.PMTU)); err != nil {
			return errors.Wrapf(err, "failed to insert hop %d", seq)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit run")
	}

	run.ID = id
	return nil
}

// GetRun loads a run with its parsed results
func (r *Repository) GetRun(ctx context.Context, id int64) (*domain.DiagnosticRun, error) {
	var row runRow
	err := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM diagnostic_runs WHERE id = ?`, id).
		Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(repository.ErrNotFound, "run %d", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query run %d", id)
	}

	run := row.toDomain()
	if err := r.loadResults(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns runs newest first, optionally filtered by host
func (r *Repository) ListRuns(ctx context.Context, host string, limit int) ([]*domain.DiagnosticRun, error) {
	var (
		where []string
		args  []interface{}
	)
	if host != "" {
		where = append(where, "host = ?")
		args = append(args, host)
	}

	query := `SELECT ` + runColumns + ` FROM diagnostic_runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY started_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query runs")
	}

	var runs []*domain.DiagnosticRun
	for rows.Next() {
		var row runRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "failed to scan run")
		}
		runs = append(runs, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, errors.Wrap(err, "error iterating runs")
	}
	// Release the connection before loading results; :memory: has only one
	rows.Close()

	for _, run := range runs {
		if err := r.loadResults(ctx, run); err != nil {
			return nil, err
		}
	}

	return runs, nil
}

// DeleteRuns removes every run recorded for host
func (r *Repository) DeleteRuns(ctx context.Context, host string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	sub := `(SELECT id FROM diagnostic_runs WHERE host = ?)`
	if _, err := tx.ExecContext(ctx, `DELETE FROM tracepath_hops WHERE run_id IN `+sub, host); err != nil {
		return 0, errors.Wrap(err, "failed to delete hops")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM ping_results WHERE run_id IN `+sub, host); err != nil {
		return 0, errors.Wrap(err, "failed to delete ping results")
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM diagnostic_runs WHERE host = ?`, host)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete runs")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to count deleted runs")
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit delete")
	}
	return n, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// loadResults attaches the parsed ping result and hops for run's kind
func (r *Repository) loadResults(ctx context.Context, run *domain.DiagnosticRun) error {
	var ping pingRow
	err := r.db.QueryRowContext(ctx, `SELECT `+pingColumns+` FROM ping_results WHERE run_id = ?`, run.ID).
		Scan(ping.scanArgs()...)
	switch {
	case err == nil:
		run.Ping = ping.toDomain()
	case !errors.Is(err, sql.ErrNoRows):
		return errors.Wrapf(err, "failed to query ping result for run %d", run.ID)
	}

	if run.Kind != domain.DiagnosticTracepath {
		return nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT hop_number, address, hostname, rtt_ms, pmtu
		FROM tracepath_hops WHERE run_id = ? ORDER BY seq
	`, run.ID)
	if err != nil {
		return errors.Wrapf(err, "failed to query hops for run %d", run.ID)
	}
	defer rows.Close()

	run.Hops = make([]domain.Hop, 0)
	for rows.Next() {
		var (
			hop  domain.Hop
			pmtu sql.NullInt64
		)
		if err := rows.Scan(&hop.Number, &hop.Address, &hop.Hostname, &hop.RTTMs, &pmtu); err != nil {
			return errors.Wrap(err, "failed to scan hop")
		}
		hop.PMTU = nullToIntPtr(pmtu)
		run.Hops = append(run.Hops, hop)
	}
	return rows.Err()
}
