package vqleval

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepvis/vqleval/internal/dbfile"
	"github.com/deepvis/vqleval/internal/testutil"
)

func TestCompareValues(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ordered := []any{nil, int64(-3), 2.5, int64(3), "a", "b", []byte("a"), t0, t0.Add(time.Hour)}
	for i := 0; i < len(ordered); i++ {
		for j := 0; j < len(ordered); j++ {
			got := compareValues(ordered[i], ordered[j])
			switch {
			case i < j:
				assert.Equal(t, -1, got, "%v < %v", ordered[i], ordered[j])
			case i > j:
				assert.Equal(t, 1, got, "%v > %v", ordered[i], ordered[j])
			default:
				assert.Equal(t, 0, got)
			}
		}
	}
}

func TestCompareValues_IntegerEqualsReal(t *testing.T) {
	assert.Equal(t, 0, compareValues(int64(2), 2.0))
	assert.Equal(t, 0, compareValues(normalizeValue(int32(2)), int64(2)))
	assert.Equal(t, 0, compareValues(normalizeValue(true), int64(1)))
}

func TestSameRows(t *testing.T) {
	a := []Row{{"red", int64(2)}, {"blue", int64(1)}, {"green", int64(1)}}
	b := []Row{{"blue", int64(1)}, {"green", int64(1)}, {"red", int64(2)}}
	assert.True(t, sameRows(a, b))

	assert.False(t, sameRows(
		[]Row{{"red", int64(2)}},
		[]Row{{"red", int64(3)}},
	))
	assert.False(t, sameRows(
		[]Row{{"red"}, {"red"}},
		[]Row{{"red"}},
	), "duplicates count")
	assert.False(t, sameRows(
		[]Row{{"red", nil}},
		[]Row{{"red"}},
	))
	assert.True(t, sameRows(nil, []Row{}))
}

func TestSortRows_NullsFirst(t *testing.T) {
	rows := []Row{{"b"}, {nil}, {int64(1)}, {"a"}}
	sortRows(rows)
	assert.Equal(t, []Row{{nil}, {int64(1)}, {"a"}, {"b"}}, rows)
}

func openFixture(t *testing.T, stmts ...string) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.sqlite")
	testutil.CreateDB(t, path, stmts...)
	db, err := dbfile.Open(path, dbfile.DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestQueryTable_DateColumnsKeepStoredText(t *testing.T) {
	ctx := context.Background()
	db := openFixture(t,
		`CREATE TABLE hires (hire_date DATE, stamp DATETIME, n INTEGER)`,
		`INSERT INTO hires VALUES ('2024-01-01', '2024-01-01 00:00:00', 1), ('2024-01-02', '2024-01-02', 2)`,
	)

	cols, rows, err := queryTable(ctx, db, "SELECT hire_date, stamp, n FROM hires ORDER BY n")
	require.NoError(t, err)
	assert.Equal(t, []string{"hire_date", "stamp", "n"}, cols)
	assert.Equal(t, []Row{
		{"2024-01-01", "2024-01-01 00:00:00", int64(1)},
		{"2024-01-02", "2024-01-02", int64(2)},
	}, rows)

	column, err := queryRows(ctx, db, "SELECT hire_date FROM hires")
	require.NoError(t, err)
	expr, err := queryRows(ctx, db, "SELECT date(hire_date) FROM hires")
	require.NoError(t, err)
	assert.True(t, sameRows(column, expr), "same text from a column and an expression")

	first, err := queryRows(ctx, db, "SELECT hire_date FROM hires WHERE n = 1")
	require.NoError(t, err)
	stamp, err := queryRows(ctx, db, "SELECT stamp FROM hires WHERE n = 1")
	require.NoError(t, err)
	assert.False(t, sameRows(first, stamp), "different text for the same instant")
}

func TestQueryTable_UntypedKeepsColumnNames(t *testing.T) {
	db := openFixture(t,
		`CREATE TABLE hires (hire_date TIMESTAMP, n INTEGER)`,
		`INSERT INTO hires VALUES ('2024-01-01', 3)`,
	)

	cols, rows, err := queryTable(context.Background(), db, "SELECT hire_date, COUNT(hire_date) FROM hires GROUP BY hire_date")
	require.NoError(t, err)
	assert.Equal(t, []string{"hire_date", "COUNT(hire_date)"}, cols)
	assert.Equal(t, []Row{{"2024-01-01", int64(1)}}, rows)
}
