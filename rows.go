package vqleval

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Row is one result row as returned by the driver.
type Row []any

// queryRows executes query and fetches every row.
func queryRows(ctx context.Context, db *sql.DB, query string) ([]Row, error) {
	_, rows, err := queryTable(ctx, db, query)
	return rows, err
}

// timeDeclTypes are the declared column types whose TEXT values the driver
// parses into time.Time.
var timeDeclTypes = map[string]bool{"DATE": true, "DATETIME": true, "TIMESTAMP": true}

// untypedTable names the wrapper query untypedQuery builds around a query.
const untypedTable = "vqleval_result"

// queryTable executes query and returns its column names and every row.
// Values are the ones SQLite stores: a result column read straight from a
// DATE, DATETIME or TIMESTAMP column comes back as its TEXT, not as a parsed
// time.
func queryTable(ctx context.Context, db *sql.DB, query string) ([]string, []Row, error) {
	cols, out, typed, err := scanTable(ctx, db, query, true)
	if err != nil || !typed {
		return cols, out, err
	}
	_, out, _, err = scanTable(ctx, db, untypedQuery(query, len(cols)), false)
	return cols, out, err
}

// scanTable runs query and fetches its rows. When checkTypes is set and a
// result column carries a time declared type, it stops before reading any
// row and reports typed.
func scanTable(ctx context.Context, db *sql.DB, query string, checkTypes bool) (cols []string, out []Row, typed bool, err error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, false, err
	}
	defer rows.Close()

	if cols, err = rows.Columns(); err != nil {
		return nil, nil, false, err
	}
	if checkTypes {
		types, err := rows.ColumnTypes()
		if err != nil {
			return nil, nil, false, err
		}
		for _, ct := range types {
			if timeDeclTypes[strings.ToUpper(ct.DatabaseTypeName())] {
				return cols, nil, true, nil
			}
		}
	}

	for rows.Next() {
		row := make(Row, len(cols))
		dest := make([]any, len(cols))
		for i := range row {
			dest[i] = &row[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, false, err
		}
		for i, v := range row {
			row[i] = normalizeValue(v)
		}
		out = append(out, row)
	}
	return cols, out, false, rows.Err()
}

// untypedQuery wraps query so that every result column is an expression.
// SQLite reports no declared type for expressions, and unary plus leaves
// both the value and its storage class unchanged.
func untypedQuery(query string, n int) string {
	names := make([]string, n)
	exprs := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("c%d", i)
		exprs[i] = "+" + names[i]
	}
	return fmt.Sprintf("WITH %s(%s) AS (%s) SELECT %s FROM %s",
		untypedTable, strings.Join(names, ", "), query, strings.Join(exprs, ", "), untypedTable)
}

// normalizeValue folds driver types into int64, float64, string, []byte,
// time.Time or nil.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	case []byte:
		return append([]byte(nil), x...)
	}
	return v
}

// Rank of each value class in the row ordering.
const (
	rankNull = iota
	rankNumber
	rankText
	rankBlob
	rankTime
	rankOther
)

func valueRank(v any) int {
	switch v.(type) {
	case nil:
		return rankNull
	case int64, float64:
		return rankNumber
	case string:
		return rankText
	case []byte:
		return rankBlob
	case time.Time:
		return rankTime
	}
	return rankOther
}

// compareValues orders NULL before numbers, numbers before text, text before
// blobs and blobs before times. Integers and reals compare numerically.
func compareValues(a, b any) int {
	ra, rb := valueRank(a), valueRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ra {
	case rankNull:
		return 0
	case rankNumber:
		return compareNumbers(a, b)
	case rankText:
		return strings.Compare(a.(string), b.(string))
	case rankBlob:
		return bytes.Compare(a.([]byte), b.([]byte))
	case rankTime:
		return a.(time.Time).Compare(b.(time.Time))
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func compareNumbers(a, b any) int {
	ai, aInt := a.(int64)
	bi, bInt := b.(int64)
	if aInt && bInt {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	}
	af, bf := toFloat(a), toFloat(b)
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	}
	return 0
}

func toFloat(v any) float64 {
	if i, ok := v.(int64); ok {
		return float64(i)
	}
	return v.(float64)
}

// compareRows orders rows lexicographically; a shorter prefix sorts first.
func compareRows(a, b Row) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareValues(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func sortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return compareRows(rows[i], rows[j]) < 0
	})
}

// sameRows reports whether a and b hold the same multiset of rows. Both
// slices are sorted in place.
func sameRows(a, b []Row) bool {
	if len(a) != len(b) {
		return false
	}
	sortRows(a)
	sortRows(b)
	for i := range a {
		if compareRows(a[i], b[i]) != 0 {
			return false
		}
	}
	return true
}
