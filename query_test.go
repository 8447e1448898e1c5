package vqleval

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepvis/vqleval/internal/dbfile"
	"github.com/deepvis/vqleval/internal/testutil"
	"github.com/deepvis/vqleval/internal/vql"
)

func TestQuery(t *testing.T) {
	path := testutil.CompanyDB(t, t.TempDir(), "company")

	res, err := Query(context.Background(), path,
		"Visualize BAR SELECT team, COUNT(team) FROM employee GROUP BY team ORDER BY team", dbfile.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "BAR", res.Chart)
	assert.Equal(t, "SELECT Team, COUNT(Team) FROM Employee GROUP BY Team ORDER BY Team", res.SQL)
	assert.Equal(t, []string{"Team", "COUNT(Team)"}, res.Columns)
	assert.Equal(t, []Row{
		{"blue", int64(1)},
		{"green", int64(1)},
		{"red", int64(2)},
	}, res.Rows)
}

func TestQuery_Binned(t *testing.T) {
	path := testutil.CompanyDB(t, t.TempDir(), "company")

	res, err := Query(context.Background(), path,
		"Visualize LINE SELECT sale_date, SUM(amount) FROM sales BIN sale_date BY weekday", dbfile.DefaultOptions())
	require.NoError(t, err)
	assert.ElementsMatch(t, []Row{
		{"1", 16.0},
		{"6", 7.0},
	}, res.Rows)
}

func TestQuery_MonthBinWithColumnNamedM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s", "s.sqlite")
	testutil.CreateDB(t, path,
		`CREATE TABLE s (d TEXT, M INTEGER)`,
		`INSERT INTO s VALUES ('2024-01-05 10:30:00', 1), ('2024-01-20 11:45:00', 2), ('2024-03-01 10:30:00', 3)`,
	)

	res, err := Query(context.Background(), path, "Visualize LINE SELECT d, COUNT(d) FROM s BIN d BY month", dbfile.DefaultOptions())
	require.NoError(t, err)
	assert.ElementsMatch(t, []Row{
		{"01", int64(2)},
		{"03", int64(1)},
	}, res.Rows)
}

func TestQuery_Errors(t *testing.T) {
	path := testutil.CompanyDB(t, t.TempDir(), "company")

	_, err := Query(context.Background(), path, "Visualize BAR SELECT a FROM t", dbfile.DefaultOptions())
	var perr *vql.ParseError
	assert.True(t, errors.As(err, &perr))

	_, err = Query(context.Background(), path, "Visualize BAR SELECT a, b FROM nope", dbfile.DefaultOptions())
	assert.True(t, errors.Is(err, ErrExecution))
}
