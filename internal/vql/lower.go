package vql

import (
	"fmt"
	"strconv"
	"strings"
)

// BinExpr returns the SQLite expression that buckets column by unit.
func BinExpr(column string, unit BinUnit) (string, error) {
	switch unit {
	case BinDay:
		return "date(" + column + ")", nil
	case BinWeekday:
		return "strftime('%w', " + column + ")", nil
	case BinMonth:
		return "strftime('%m', " + column + ")", nil
	case BinYear:
		return "strftime('%Y', " + column + ")", nil
	default:
		return "", fmt.Errorf("vql: unknown bin unit %q", unit)
	}
}

// Lower compiles a statement into an executable SQL query.
//
// When the statement carries a BIN clause, every select expression that
// refers to the bin column is rewritten to the bucket expression, and the
// bucket expression becomes the GROUP BY key unless one was given explicitly.
func Lower(stmt *Statement) (string, error) {
	if stmt == nil {
		return "", fmt.Errorf("vql: nil statement")
	}

	cols := []string{stmt.Select[0].String(), stmt.Select[1].String()}
	groupBy := exprList(stmt.GroupBy)

	if stmt.Bin != nil {
		binExpr, err := BinExpr(stmt.Bin.Column, stmt.Bin.Unit)
		if err != nil {
			return "", err
		}
		for i, e := range stmt.Select {
			cols[i] = substituteBin(e, stmt.Bin.Column, binExpr)
		}
		if len(stmt.GroupBy) == 0 {
			groupBy = binExpr
		}
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(stmt.From)
	if stmt.Where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(stmt.Where)
	}
	if groupBy != "" {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(groupBy)
	}
	if stmt.OrderBy != nil {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(stmt.OrderBy.Expr.String())
		if stmt.OrderBy.Dir != "" {
			sb.WriteString(" ")
			sb.WriteString(stmt.OrderBy.Dir)
		}
	}
	if stmt.Limit != nil {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(*stmt.Limit))
	}
	return sb.String(), nil
}

// substituteBin replaces references to the bin column inside e. SQLite
// identifiers are case-insensitive, so the comparison is too.
func substituteBin(e Expr, column, binExpr string) string {
	if !strings.EqualFold(e.Arg, column) {
		return e.String()
	}
	if e.IsAggregate() {
		return e.Func + "(" + binExpr + ")"
	}
	return binExpr
}

func exprList(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
