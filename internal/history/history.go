package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"
)

// DefaultFile is the database name used inside a work directory when no
// explicit path is given.
const DefaultFile = "riscofdut.sqlite"

// Entry is one recorded adapter invocation. Recording is best-effort:
// callers log a failed Record and move on, the run itself never fails
// because of it.
type Entry struct {
	ID        int64
	Timestamp time.Time
	Command   string
	Model     string
	DUTName   string
	XLEN      int
	ISA       string
	Targets   int
	ExitCode  int
	Terminal  bool
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts TEXT NOT NULL,
			command TEXT NOT NULL,
			model TEXT NOT NULL,
			dut_name TEXT NOT NULL,
			xlen INTEGER NOT NULL,
			isa TEXT NOT NULL,
			targets INTEGER NOT NULL,
			exit_code INTEGER NOT NULL,
			terminal INTEGER NOT NULL
		)
	`)
	if err != nil {
		return errors.Wrap(err, "create history schema")
	}
	return nil
}

func open(dbPath string) (*sql.DB, error) {
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "resolve history db path")
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "ensure history db dir")
	}
	db, err := sql.Open("sqlite", absPath)
	if err != nil {
		return nil, errors.Wrap(err, "open history db")
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Record appends one entry to the history database, creating it on
// first use. A zero Timestamp is filled with the current time.
func Record(dbPath string, e Entry) error {
	db, err := open(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	terminal := 0
	if e.Terminal {
		terminal = 1
	}
	_, err = db.Exec(`
		INSERT INTO runs (ts, command, model, dut_name, xlen, isa, targets, exit_code, terminal)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ts.UTC().Format(time.RFC3339), e.Command, e.Model, e.DUTName, e.XLEN, e.ISA, e.Targets, e.ExitCode, terminal)
	if err != nil {
		return errors.Wrap(err, "insert history entry")
	}
	return nil
}

// List returns up to limit entries, newest first.
func List(dbPath string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	db, err := open(dbPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = db.Close()
	}()

	rows, err := db.Query(`
		SELECT id, ts, command, model, dut_name, xlen, isa, targets, exit_code, terminal
		FROM runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query history")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts string
		var terminal int
		if err := rows.Scan(&e.ID, &ts, &e.Command, &e.Model, &e.DUTName, &e.XLEN, &e.ISA, &e.Targets, &e.ExitCode, &terminal); err != nil {
			return nil, errors.Wrap(err, "scan history entry")
		}
		e.Timestamp, _ = time.Parse(time.RFC3339, ts)
		e.Terminal = terminal != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate history")
	}
	return entries, nil
}
