package vql

import (
	"fmt"
	"strings"
)

// ChartType is the chart directive of a VISUALIZE clause.
type ChartType string

const (
	ChartBar     ChartType = "BAR"
	ChartLine    ChartType = "LINE"
	ChartPie     ChartType = "PIE"
	ChartScatter ChartType = "SCATTER"
)

// BinUnit is the bucket granularity of a BIN clause.
type BinUnit string

const (
	BinDay     BinUnit = "day"
	BinWeekday BinUnit = "weekday"
	BinMonth   BinUnit = "month"
	BinYear    BinUnit = "year"
)

// Expr is a column reference or an aggregate applied to a column or `*`.
type Expr struct {
	// Func is the upper-cased aggregate name, empty for a bare column.
	Func string
	// Arg is the column name, or "*" inside an aggregate.
	Arg string
}

// IsAggregate reports whether e applies an aggregate function.
func (e Expr) IsAggregate() bool { return e.Func != "" }

func (e Expr) String() string {
	if e.Func == "" {
		return e.Arg
	}
	return e.Func + "(" + e.Arg + ")"
}

// OrderBy is a single ORDER BY key.
type OrderBy struct {
	Expr Expr
	// Dir is "ASC", "DESC" or empty.
	Dir string
}

// Bin groups a time-valued column into buckets.
type Bin struct {
	Column string
	Unit   BinUnit
}

func (b Bin) String() string {
	return "BIN " + b.Column + " BY " + string(b.Unit)
}

// Statement is a parsed VQL statement.
type Statement struct {
	Chart   ChartType
	Select  [2]Expr
	From    string
	Where   string
	GroupBy []Expr
	OrderBy *OrderBy
	Limit   *int
	Bin     *Bin
}

// BinClause returns the normalized BIN clause text, or "" when absent.
func (s *Statement) BinClause() string {
	if s == nil || s.Bin == nil {
		return ""
	}
	return s.Bin.String()
}

// Clause identifies a grammar position for error reporting.
type Clause int

const (
	ClauseVisualize Clause = iota
	ClauseSelect
	ClauseFrom
	ClauseWhere
	ClauseGroupBy
	ClauseOrderBy
	ClauseLimit
	ClauseBin
	ClauseEnd
)

var clauseNames = [...]string{
	ClauseVisualize: "VISUALIZE",
	ClauseSelect:    "SELECT",
	ClauseFrom:      "FROM",
	ClauseWhere:     "WHERE",
	ClauseGroupBy:   "GROUP BY",
	ClauseOrderBy:   "ORDER BY",
	ClauseLimit:     "LIMIT",
	ClauseBin:       "BIN",
	ClauseEnd:       "end of query",
}

func (c Clause) String() string {
	if c < 0 || int(c) >= len(clauseNames) {
		return fmt.Sprintf("clause(%d)", int(c))
	}
	return clauseNames[c]
}

// ParseError describes why a VQL string was rejected.
type ParseError struct {
	Clause Clause
	Reason string
	// Remaining is the unconsumed input at the point of failure.
	Remaining string
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	sb.WriteString("vql: ")
	if e.Clause == ClauseEnd {
		sb.WriteString("unrecognized query parts: ")
		sb.WriteString(e.Remaining)
		return sb.String()
	}
	sb.WriteString("invalid ")
	sb.WriteString(e.Clause.String())
	sb.WriteString(" clause")
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}
	if e.Remaining != "" {
		fmt.Fprintf(&sb, " (remaining: %q)", e.Remaining)
	}
	return sb.String()
}
