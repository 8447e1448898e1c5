package vql

import (
	"strconv"
	"strings"

	"github.com/grafana/regexp"
)

const (
	identPattern = `[a-zA-Z_][a-zA-Z0-9_]*`
	aggPattern   = `(?:COUNT|SUM|AVG|MIN|MAX|GROUP_CONCAT)\s*\(\s*(?:\*|` + identPattern + `)\s*\)`
	exprPattern  = `(?:` + aggPattern + `|` + identPattern + `)`

	// clauseEnd requires a clause to stop at whitespace or end of input.
	clauseEnd = `(?:\s+|$)`
)

var (
	visualizeRe = regexp.MustCompile(`^(?i)VISUALIZE\s+(LINE|BAR|PIE|SCATTER)` + clauseEnd)
	selectRe    = regexp.MustCompile(`^(?i)SELECT\s+(` + exprPattern + `)\s*,\s*(` + exprPattern + `)` + clauseEnd)
	fromRe      = regexp.MustCompile(`^(?i)FROM\s+(` + identPattern + `)` + clauseEnd)
	whereRe     = regexp.MustCompile(`^(?i)WHERE\s+`)
	whereEndRe  = regexp.MustCompile(`(?i)\b(?:GROUP\s+BY|ORDER\s+BY|LIMIT|BIN)\b`)
	groupByRe   = regexp.MustCompile(`^(?i)GROUP\s+BY\s+(` + exprPattern + `(?:\s*,\s*` + exprPattern + `)*)` + clauseEnd)
	orderByRe   = regexp.MustCompile(`^(?i)ORDER\s+BY\s+(` + exprPattern + `)(?:\s+(ASC|DESC))?` + clauseEnd)
	limitRe     = regexp.MustCompile(`^(?i)LIMIT\s+(\d+)` + clauseEnd)
	binRe       = regexp.MustCompile(`^(?i)BIN\s+(` + identPattern + `)\s+BY\s+(DAY|WEEKDAY|MONTH|YEAR)` + clauseEnd)

	exprRe = regexp.MustCompile(`^(?i)(?:(COUNT|SUM|AVG|MIN|MAX|GROUP_CONCAT)\s*\(\s*(\*|` + identPattern + `)\s*\)|(` + identPattern + `))$`)
)

// clauseRule is one state of the parser. Optional clauses carry a gate that
// must match the head of the remaining input before the rule is attempted.
type clauseRule struct {
	clause Clause
	gate   *regexp.Regexp
	parse  func(p *parser) error
}

var clauseRules = []clauseRule{
	{clause: ClauseVisualize, parse: (*parser).parseVisualize},
	{clause: ClauseSelect, parse: (*parser).parseSelect},
	{clause: ClauseFrom, parse: (*parser).parseFrom},
	{clause: ClauseWhere, gate: regexp.MustCompile(`^(?i)WHERE\b`), parse: (*parser).parseWhere},
	{clause: ClauseGroupBy, gate: regexp.MustCompile(`^(?i)GROUP\s+BY\b`), parse: (*parser).parseGroupBy},
	{clause: ClauseOrderBy, gate: regexp.MustCompile(`^(?i)ORDER\s+BY\b`), parse: (*parser).parseOrderBy},
	{clause: ClauseLimit, gate: regexp.MustCompile(`^(?i)LIMIT\b`), parse: (*parser).parseLimit},
	{clause: ClauseBin, gate: regexp.MustCompile(`^(?i)BIN\b`), parse: (*parser).parseBin},
}

type parser struct {
	rest string
	stmt *Statement
}

// Parse parses a VQL statement. Whitespace runs are collapsed before
// matching, and clauses are matched in their fixed order against the head of
// the remaining input. Any failure is returned as a *ParseError.
func Parse(text string) (*Statement, error) {
	p := &parser{
		rest: Normalize(text),
		stmt: &Statement{},
	}
	for _, rule := range clauseRules {
		if rule.gate != nil && !rule.gate.MatchString(p.rest) {
			continue
		}
		if err := rule.parse(p); err != nil {
			return nil, err
		}
	}
	if p.rest != "" {
		return nil, &ParseError{Clause: ClauseEnd, Remaining: p.rest}
	}
	return p.stmt, nil
}

// Normalize collapses every whitespace run to a single space and trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func (p *parser) fail(c Clause, reason string) error {
	return &ParseError{Clause: c, Reason: reason, Remaining: p.rest}
}

// match applies re to the head of the input and advances past the match.
func (p *parser) match(re *regexp.Regexp) []string {
	m := re.FindStringSubmatch(p.rest)
	if m == nil {
		return nil
	}
	p.rest = strings.TrimSpace(p.rest[len(m[0]):])
	return m
}

func (p *parser) parseVisualize() error {
	m := p.match(visualizeRe)
	if m == nil {
		return p.fail(ClauseVisualize, "must be: Visualize line|bar|pie|scatter")
	}
	p.stmt.Chart = ChartType(strings.ToUpper(m[1]))
	return nil
}

func (p *parser) parseSelect() error {
	m := p.match(selectRe)
	if m == nil {
		return p.fail(ClauseSelect, "must specify exactly two columns/aggregations separated by comma")
	}
	for i := 0; i < 2; i++ {
		e, ok := parseExpr(m[i+1])
		if !ok {
			return p.fail(ClauseSelect, "malformed expression "+m[i+1])
		}
		p.stmt.Select[i] = e
	}
	return nil
}

func (p *parser) parseFrom() error {
	m := p.match(fromRe)
	if m == nil {
		return p.fail(ClauseFrom, "must specify one table name")
	}
	p.stmt.From = m[1]
	return nil
}

func (p *parser) parseWhere() error {
	loc := whereRe.FindStringIndex(p.rest)
	if loc == nil {
		return p.fail(ClauseWhere, "missing predicate")
	}
	body := p.rest[loc[1]:]
	tail := ""
	if end := whereEndRe.FindStringIndex(body); end != nil {
		body, tail = body[:end[0]], body[end[0]:]
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return p.fail(ClauseWhere, "missing predicate")
	}
	p.stmt.Where = body
	p.rest = strings.TrimSpace(tail)
	return nil
}

func (p *parser) parseGroupBy() error {
	m := p.match(groupByRe)
	if m == nil {
		return p.fail(ClauseGroupBy, "must list columns or aggregations")
	}
	for _, part := range strings.Split(m[1], ",") {
		e, ok := parseExpr(part)
		if !ok {
			return p.fail(ClauseGroupBy, "malformed expression "+part)
		}
		p.stmt.GroupBy = append(p.stmt.GroupBy, e)
	}
	return nil
}

func (p *parser) parseOrderBy() error {
	m := p.match(orderByRe)
	if m == nil {
		return p.fail(ClauseOrderBy, "must name one column or aggregation with optional ASC|DESC")
	}
	e, ok := parseExpr(m[1])
	if !ok {
		return p.fail(ClauseOrderBy, "malformed expression "+m[1])
	}
	p.stmt.OrderBy = &OrderBy{Expr: e, Dir: strings.ToUpper(m[2])}
	return nil
}

func (p *parser) parseLimit() error {
	m := p.match(limitRe)
	if m == nil {
		return p.fail(ClauseLimit, "must be a non-negative integer")
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return p.fail(ClauseLimit, "out of range: "+m[1])
	}
	p.stmt.Limit = &n
	return nil
}

func (p *parser) parseBin() error {
	m := p.match(binRe)
	if m == nil {
		return p.fail(ClauseBin, "must be: BIN <column> BY day|weekday|month|year")
	}
	p.stmt.Bin = &Bin{Column: m[1], Unit: BinUnit(strings.ToLower(m[2]))}
	return nil
}

func parseExpr(s string) (Expr, bool) {
	m := exprRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Expr{}, false
	}
	if m[1] != "" {
		return Expr{Func: strings.ToUpper(m[1]), Arg: m[2]}, true
	}
	return Expr{Arg: m[3]}, true
}
