// Package ledger keeps an SQLite audit trail of every verdict across runs.
// It is write-mostly and never consulted for deduplication.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	celebrity TEXT,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	total_images INTEGER
);
CREATE TABLE IF NOT EXISTS verdicts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL REFERENCES runs(id),
	role TEXT NOT NULL,
	file TEXT NOT NULL,
	source_url TEXT,
	accepted INTEGER NOT NULL,
	reason TEXT,
	detail TEXT,
	hash TEXT,
	digest TEXT,
	recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_verdicts_run ON verdicts(run_id);
CREATE INDEX IF NOT EXISTS idx_verdicts_reason ON verdicts(reason);`

// addedColumns were introduced after the first schema; older databases get
// them on Open.
var addedColumns = []struct{ table, column, decl string }{
	{"verdicts", "digest", "TEXT"},
}

const indexes = `CREATE INDEX IF NOT EXISTS idx_verdicts_digest ON verdicts(digest);`

// NewRunID returns a fresh, time-ordered run identifier.
func NewRunID() string {
	return ulid.Make().String()
}

// Entry is one recorded verdict.
type Entry struct {
	RunID     string
	Role      string
	File      string
	SourceURL string
	Accepted  bool
	Reason    string // empty when accepted
	Detail    string
	Hash      string // perceptual fingerprint
	Digest    string // content hash of the source file
}

// Repeat is file content recorded in more than one run.
type Repeat struct {
	Digest string
	Runs   int
	File   string // one of the paths it was recorded under
}

// Run summarizes one pipeline run.
type Run struct {
	ID          string
	Celebrity   string
	StartedAt   time.Time
	FinishedAt  time.Time // zero while unfinished
	TotalImages int
}

// Ledger wraps the database handle.
type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the database at path.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("ledger: open %s: %w", path, err)
	}
	// Workers record concurrently; SQLite allows one writer.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: init schema: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: migrate: %w", err)
	}
	if _, err := db.Exec(indexes); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: init indexes: %w", err)
	}
	return &Ledger{db: db, now: time.Now}, nil
}

func migrate(db *sql.DB) error {
	for _, c := range addedColumns {
		var n int
		err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, c.table, c.column).Scan(&n)
		if err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		if _, err := db.Exec(fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, c.table, c.column, c.decl)); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// BeginRun registers a run.
func (l *Ledger) BeginRun(ctx context.Context, runID, celebrity string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, celebrity, started_at) VALUES (?, ?, ?)`,
		runID, celebrity, l.timestamp())
	if err != nil {
		return fmt.Errorf("ledger: begin run %s: %w", runID, err)
	}
	return nil
}

// FinishRun stamps the run with its output count.
func (l *Ledger) FinishRun(ctx context.Context, runID string, totalImages int) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, total_images = ? WHERE id = ?`,
		l.timestamp(), totalImages, runID)
	if err != nil {
		return fmt.Errorf("ledger: finish run %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("ledger: unknown run %s", runID)
	}
	return nil
}

// Record appends one verdict.
func (l *Ledger) Record(ctx context.Context, e Entry) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO verdicts (run_id, role, file, source_url, accepted, reason, detail, hash, digest, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Role, e.File, e.SourceURL, e.Accepted, e.Reason, e.Detail, e.Hash, e.Digest, l.timestamp())
	if err != nil {
		return fmt.Errorf("ledger: record %s: %w", e.File, err)
	}
	return nil
}

// Reasons counts rejections per reason for a run. An empty runID counts
// across all runs.
func (l *Ledger) Reasons(ctx context.Context, runID string) (map[string]int, error) {
	q := `SELECT reason, COUNT(*) FROM verdicts WHERE accepted = 0`
	var args []any
	if runID != "" {
		q += ` AND run_id = ?`
		args = append(args, runID)
	}
	q += ` GROUP BY reason`

	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger: reasons: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var reason string
		var n int
		if err := rows.Scan(&reason, &n); err != nil {
			return nil, err
		}
		out[reason] = n
	}
	return out, rows.Err()
}

// Repeats lists file contents recorded in more than one run, the most
// widespread first. They point at sources that keep being fetched again.
func (l *Ledger) Repeats(ctx context.Context, limit int) ([]Repeat, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT digest, COUNT(DISTINCT run_id) AS runs, MAX(file)
		FROM verdicts WHERE digest IS NOT NULL AND digest != ''
		GROUP BY digest HAVING runs > 1
		ORDER BY runs DESC, digest LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger: repeats: %w", err)
	}
	defer rows.Close()

	var out []Repeat
	for rows.Next() {
		var r Repeat
		if err := rows.Scan(&r.Digest, &r.Runs, &r.File); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Runs returns the most recent runs first.
func (l *Ledger) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, COALESCE(celebrity, ''), started_at, COALESCE(finished_at, ''), COALESCE(total_images, 0)
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger: runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Celebrity, &started, &finished, &r.TotalImages); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished != "" {
			r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (l *Ledger) timestamp() string {
	return l.now().UTC().Format(time.RFC3339Nano)
}
