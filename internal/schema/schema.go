// Package schema describes the tables of a bound database and rewrites SQL
// identifiers to the casing the database stores them with.
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Table is a table name and its ordered column names, as stored.
type Table struct {
	Name    string
	Columns []string
}

// Schema is the read-only table layout of one database connection.
type Schema struct {
	Tables []Table

	tables  map[string]string
	columns map[string]string
}

// New builds a Schema and its case-insensitive lookups. When two tables
// share a column name with different casing, the first one in table order
// wins.
func New(tables []Table) *Schema {
	s := &Schema{
		Tables:  tables,
		tables:  make(map[string]string, len(tables)),
		columns: make(map[string]string),
	}
	for _, t := range tables {
		if _, ok := s.tables[strings.ToLower(t.Name)]; !ok {
			s.tables[strings.ToLower(t.Name)] = t.Name
		}
		for _, c := range t.Columns {
			if _, ok := s.columns[strings.ToLower(c)]; !ok {
				s.columns[strings.ToLower(c)] = c
			}
		}
	}
	return s
}

// Table returns the stored name of a table, matched case-insensitively.
func (s *Schema) Table(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	stored, ok := s.tables[strings.ToLower(name)]
	return stored, ok
}

// Column returns the stored name of a column in any table, matched
// case-insensitively.
func (s *Schema) Column(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	stored, ok := s.columns[strings.ToLower(name)]
	return stored, ok
}

// Load reads the table layout of a SQLite database.
func Load(ctx context.Context, db *sql.DB) (*Schema, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	rows.Close()

	tables := make([]Table, 0, len(names))
	for _, name := range names {
		cols, err := loadColumns(ctx, db, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, Table{Name: name, Columns: cols})
	}
	return New(tables), nil
}

func loadColumns(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

// Quote returns name as a double-quoted SQL identifier.
func Quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
