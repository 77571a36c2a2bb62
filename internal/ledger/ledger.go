// Package ledger provides SQLite-backed storage for experiment
// records.
//
// Each project owns one database file under the configuration root,
// named <project>_experiment_record.db, holding an append-only table of
// saved configuration references. Rows are addressed externally by
// ordinal position, not a stable id: row order is insertion order
// except after a delete, which compacts and renumbers. Deleting a
// document or a module cascades across every ledger found under the
// root, not only the owning project's.
package ledger

import (
	"database/sql"
	_ "embed"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// FileSuffix is the ledger file name suffix under the configuration
// root.
const FileSuffix = "_experiment_record.db"

// timestampLayout is the row datetime format.
const timestampLayout = "2006-01-02 15:04:05"

// Timestamp renders a row datetime stamp.
func Timestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

// FileName returns the ledger file name for a project.
func FileName(project string) string {
	return project + FileSuffix
}

// Files lists every project ledger file under the configuration root.
func Files(root string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(root, "*"+FileSuffix))
	if err != nil {
		return nil, fmt.Errorf("scan ledgers: %w", err)
	}
	return paths, nil
}

// Row is one saved experiment reference.
type Row struct {
	// ID is a time-sortable UUIDv7 carried for diagnostics. External
	// addressing stays ordinal.
	ID         string
	Datetime   string
	Yaml       string
	Module     string
	Experiment string
	Version    float64
	Note       string
}

// NewRowID generates a UUIDv7 row identifier.
//
// UUIDv7 embeds a timestamp in the most significant bits, making ids
// sortable by creation time, which helps when eyeballing logs.
func NewRowID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Ledger is one project's experiment record table.
type Ledger struct {
	db   *sql.DB
	path string
}

// Open creates or opens a ledger database at the given path.
// Applies required pragmas and the schema automatically; safe to call
// on an existing ledger.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect ledger: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Ledger{db: db, path: path}, nil
}

// applyPragmas configures SQLite for safe concurrent access: WAL
// journaling so a cascade can rewrite a ledger another process holds
// open, and a busy timeout instead of immediate SQLITE_BUSY failures.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Path returns the ledger's database file path.
func (l *Ledger) Path() string {
	return l.path
}

// Load reads the full table in ordinal order.
func (l *Ledger) Load() ([]Row, error) {
	rows, err := l.db.Query(`
		SELECT id, datetime, yaml, module, experiment_name, version, note
		FROM experiments
		ORDER BY pos ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.Datetime, &r.Yaml, &r.Module, &r.Experiment, &r.Version, &r.Note); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return out, nil
}

// Replace rewrites the full table with the given rows, renumbering
// positions 0..n-1 in slice order. The rewrite runs in one
// transaction.
func (l *Ledger) Replace(rows []Row) error {
	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("replace ledger: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.Exec(`DELETE FROM experiments`); err != nil {
		return fmt.Errorf("replace ledger: clear: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO experiments
		(pos, id, datetime, yaml, module, experiment_name, version, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("replace ledger: prepare: %w", err)
	}
	defer stmt.Close()

	for pos, r := range rows {
		if _, err := stmt.Exec(pos, r.ID, r.Datetime, r.Yaml, r.Module, r.Experiment, r.Version, r.Note); err != nil {
			return fmt.Errorf("replace ledger: insert row %d: %w", pos, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace ledger: commit: %w", err)
	}
	return nil
}

// PurgeDocument removes every row whose yaml column equals the given
// document file name, from every ledger under the root. Each modified
// ledger is compacted and persisted. A failure mid-cascade leaves
// earlier ledgers already purged.
func PurgeDocument(root, yamlName string) error {
	return purge(root, func(r Row) bool { return r.Yaml != yamlName })
}

// PurgeModule removes every row whose module column equals the given
// module name, from every ledger under the root.
func PurgeModule(root, module string) error {
	return purge(root, func(r Row) bool { return r.Module != module })
}

// purge rewrites every ledger under root, keeping only rows for which
// keep returns true.
func purge(root string, keep func(Row) bool) error {
	paths, err := Files(root)
	if err != nil {
		return err
	}

	for _, path := range paths {
		if err := purgeOne(path, keep); err != nil {
			return err
		}
	}
	return nil
}

func purgeOne(path string, keep func(Row) bool) error {
	l, err := Open(path)
	if err != nil {
		return err
	}
	defer l.Close()

	rows, err := l.Load()
	if err != nil {
		return err
	}

	kept := rows[:0]
	for _, r := range rows {
		if keep(r) {
			kept = append(kept, r)
		}
	}
	return l.Replace(kept)
}
