// Package dbfile binds a database id to a SQLite file and opens per-sample
// connections to it.
package dbfile

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	// SQLite driver using pure Go implementation
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no database file exists for a db_id.
var ErrNotFound = errors.New("database file not found")

// DefaultExtension is the file extension searched for by Find.
const DefaultExtension = ".sqlite"

// Find returns the first file ending in ext found by recursive search under
// root/dbID. Candidates are ordered lexically by their slash-separated path
// relative to root/dbID.
func Find(root, dbID, ext string) (string, error) {
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	dir := filepath.Join(root, dbID)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s has no directory under %s", ErrNotFound, dbID, root)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), "**/*"+ext, doublestar.WithFilesOnly())
	if err != nil {
		return "", fmt.Errorf("failed to search %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: no %s file under %s", ErrNotFound, ext, dir)
	}
	sort.Strings(matches)
	return filepath.Join(dir, filepath.FromSlash(matches[0])), nil
}

// Options configures a connection.
type Options struct {
	// QueryOnly rejects statements that would modify the database.
	QueryOnly bool

	// BusyTimeout is how long to wait for a locked database.
	BusyTimeout time.Duration
}

// DefaultOptions returns default connection options.
func DefaultOptions() Options {
	return Options{
		QueryOnly:   true,
		BusyTimeout: 5 * time.Second,
	}
}

// Open opens a single-connection handle to the SQLite file at path. The
// caller owns the handle and must close it.
func Open(path string, opts Options) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = 5 * time.Second
	}

	pragmas := url.Values{}
	pragmas.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", opts.BusyTimeout.Milliseconds()))
	if opts.QueryOnly {
		pragmas.Add("_pragma", "query_only(1)")
	}
	dsn := path + "?" + pragmas.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}
