package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB holds split writer/reader handles to the run-history database. Every
// status transition (register, complete, fail, remove) goes through the
// writer, which is pinned to one connection so concurrent monitor goroutines
// queue their writes instead of tripping "database is locked". Reads — the
// history listing and run lookups — go through a small separate pool.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
	path   string
}

// NewDB opens the run-history database at dbPath, creating it if absent.
// WAL mode lets the history command read while a monitor goroutine commits a
// status transition.
func NewDB(dbPath string) (*DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		dbPath,
	)

	writer, err := openPool(dsn, 1)
	if err != nil {
		return nil, fmt.Errorf("open history writer: %w", err)
	}

	// Two reader connections cover the concurrent consumers a single process
	// has: a history listing and a run lookup from a notifier refresh.
	reader, err := openPool(dsn, 2)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open history reader: %w", err)
	}

	return &DB{
		Writer: writer,
		Reader: reader,
		path:   dbPath,
	}, nil
}

func openPool(dsn string, maxConns int) (*sql.DB, error) {
	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(maxConns)

	if err := pool.Ping(); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// Close closes both handles. Returns the first error encountered.
func (db *DB) Close() error {
	var firstErr error

	if err := db.Reader.Close(); err != nil {
		firstErr = fmt.Errorf("close reader: %w", err)
	}

	if err := db.Writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close writer: %w", err)
	}

	return firstErr
}
