package schema

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepvis/vqleval/internal/testutil"
)

func companySchema() *Schema {
	return New([]Table{
		{Name: "Employee", Columns: []string{"Employee_ID", "Name", "Age", "Team"}},
		{Name: "sales", Columns: []string{"sale_date", "amount", "Region"}},
		{Name: "orders", Columns: []string{"order_id", "NAME"}},
		{Name: "Sales2", Columns: []string{"Q1"}},
	})
}

func TestLoad(t *testing.T) {
	dir, _ := testutil.TempDBPath(t)
	path := testutil.CompanyDB(t, dir, "company")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	s, err := Load(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, s.Tables, 3)
	assert.Equal(t, Table{Name: "Employee", Columns: []string{"Employee_ID", "Name", "Age", "Team"}}, s.Tables[0])
	assert.Equal(t, "sales", s.Tables[1].Name)
	assert.Equal(t, []string{"order_id", "Name"}, s.Tables[2].Columns)

	name, ok := s.Table("EMPLOYEE")
	assert.True(t, ok)
	assert.Equal(t, "Employee", name)
}

func TestSchema_Lookup(t *testing.T) {
	s := companySchema()

	got, ok := s.Column("region")
	assert.True(t, ok)
	assert.Equal(t, "Region", got)

	got, ok = s.Column("name")
	assert.True(t, ok)
	assert.Equal(t, "Name", got, "first declaring table wins")

	_, ok = s.Table("missing")
	assert.False(t, ok)
}

func TestCanonicalize(t *testing.T) {
	s := companySchema()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "tables and columns",
			in:   "SELECT name, COUNT(name) FROM employee GROUP BY name",
			want: "SELECT Name, COUNT(Name) FROM Employee GROUP BY Name",
		},
		{
			name: "quoted identifiers keep their quotes",
			in:   `SELECT "team", age FROM 'EMPLOYEE'`,
			want: `SELECT "Team", Age FROM 'Employee'`,
		},
		{
			name: "keywords and unknown words untouched",
			in:   "select region, sum(amount) from SALES where region = 'west'",
			want: "select Region, sum(amount) from sales where Region = 'west'",
		},
		{
			name: "shared column rewritten regardless of table",
			in:   "SELECT order_id, NAME FROM orders",
			want: "SELECT order_id, Name FROM orders",
		},
		{
			name: "substrings of longer words untouched",
			in:   "SELECT names, ages FROM employees",
			want: "SELECT names, ages FROM employees",
		},
		{
			name: "identifiers with digits",
			in:   "SELECT q1, COUNT(q1) FROM sales2 GROUP BY q1",
			want: "SELECT Q1, COUNT(Q1) FROM Sales2 GROUP BY Q1",
		},
		{
			name: "digit suffix is part of the word",
			in:   "SELECT amount2 FROM sales",
			want: "SELECT amount2 FROM sales",
		},
		{
			name: "underscored identifiers",
			in:   "SELECT employee_id FROM employee WHERE age > 3",
			want: "SELECT Employee_ID FROM Employee WHERE Age > 3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonicalize(tt.in, s))
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	s := companySchema()
	inputs := []string{
		"SELECT name, COUNT(name) FROM employee GROUP BY name",
		`SELECT "TEAM", strftime('%m', SALE_DATE) FROM sales`,
		"select x from y",
		"",
	}
	for _, in := range inputs {
		once := Canonicalize(in, s)
		assert.Equal(t, once, Canonicalize(once, s), in)
	}
}

func TestCanonicalize_KeepsStrftimeFormats(t *testing.T) {
	s := New([]Table{
		{Name: "s", Columns: []string{"d", "M", "Y", "W"}},
	})
	in := "SELECT strftime('%m', d), COUNT(strftime('%m', d)) FROM s GROUP BY strftime('%m', d)"
	assert.Equal(t, in, Canonicalize(in, s))

	for _, format := range []string{"%Y", "%w", "%m"} {
		q := "SELECT strftime('" + format + "', d) FROM s"
		assert.Equal(t, q, Canonicalize(q, s))
	}
	assert.Equal(t, "SELECT M FROM s WHERE Y > 1", Canonicalize("SELECT m FROM s WHERE y > 1", s))
}

func TestCanonicalize_NilSchema(t *testing.T) {
	assert.Equal(t, "SELECT a FROM b", Canonicalize("SELECT a FROM b", nil))
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"Employee"`, Quote("Employee"))
	assert.Equal(t, `"a""b"`, Quote(`a"b`))
}
