// Package testutil provides shared test helpers and fixture databases.
package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// TempDBPath returns a temporary directory and database file path suitable
// for tests. The directory is automatically cleaned up when the test completes.
func TempDBPath(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "test.sqlite")
	return dir, path
}

// MustNotExist asserts that the file does not exist.
func MustNotExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("expected %s to not exist", path)
	}
}

// CreateDB creates a SQLite database at path and runs stmts against it.
func CreateDB(t *testing.T, path string, stmts ...string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer db.Close()
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
}

// CompanySchema is the layout of the fixture built by CompanyDB.
var CompanySchema = []string{
	`CREATE TABLE Employee (Employee_ID INTEGER, Name TEXT, Age INTEGER, Team TEXT)`,
	`CREATE TABLE sales (sale_date TEXT, amount REAL, Region TEXT)`,
	`CREATE TABLE empty_orders (order_id INTEGER, Name TEXT)`,
}

// CompanyRows fills the fixture built by CompanyDB. 2024-01-01 is a Monday.
var CompanyRows = []string{
	`INSERT INTO Employee VALUES (1, 'alice', 30, 'red'), (2, 'bob', 41, 'blue'), (3, 'carol', 30, 'red'), (4, 'dave', 25, 'green')`,
	`INSERT INTO sales VALUES ('2024-01-01', 10.5, 'west'), ('2024-01-08', 4.5, 'east'), ('2024-02-03', 7, 'west'), ('2025-02-10', 1, 'east')`,
}

// CompanyDB creates the company fixture under dir/<dbID>/<dbID>.sqlite and
// returns the file path.
func CompanyDB(t *testing.T, dir, dbID string) string {
	t.Helper()
	path := filepath.Join(dir, dbID, dbID+".sqlite")
	CreateDB(t, path, append(append([]string{}, CompanySchema...), CompanyRows...)...)
	return path
}
