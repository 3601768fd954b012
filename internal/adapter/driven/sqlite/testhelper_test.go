package sqlite

import (
	"fmt"
	"net/url"
	"testing"
)

// setupTestDB builds a migrated in-memory run-history database for one test.
// cache=shared makes the writer and reader handles see the same database;
// naming it after the test keeps parallel tests isolated from each other.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Percent-encode the test name: subtest names contain '/' and would
	// otherwise be read as path segments or query parameters in the DSN.
	// WAL does not apply to in-memory databases, so that pragma is omitted.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		url.PathEscape(t.Name()),
	)

	writer, err := openPool(dsn, 1)
	if err != nil {
		t.Fatalf("open test writer: %v", err)
	}

	reader, err := openPool(dsn, 2)
	if err != nil {
		_ = writer.Close()
		t.Fatalf("open test reader: %v", err)
	}

	db := &DB{Writer: writer, Reader: reader, path: dsn}

	if err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		t.Fatalf("migrate runs schema: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}
