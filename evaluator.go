package vqleval

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/grafana/regexp"

	"github.com/deepvis/vqleval/internal/schema"
)

// fromTableRe finds the first table named after FROM, quotes included.
var fromTableRe = regexp.MustCompile(`(?i)\bFROM\s+(["'` + "`" + `]?[a-zA-Z_][a-zA-Z0-9_]*["'` + "`" + `]?)`)

// Evaluator scores samples against one open database. Both SQL bodies of a
// sample are expected to be canonicalized already.
type Evaluator struct {
	db     *sql.DB
	schema *schema.Schema
}

// NewEvaluator returns an Evaluator over db described by s.
func NewEvaluator(db *sql.DB, s *schema.Schema) *Evaluator {
	return &Evaluator{db: db, schema: s}
}

// Evaluate runs both queries of sample and compares their results. It never
// returns an error; failures are folded into the outcome status.
func (e *Evaluator) Evaluate(ctx context.Context, sample Sample) Outcome {
	if table, err := e.probe(ctx, sample); err != nil {
		o := failedOutcome(sample, err)
		o.SkippedTable = table
		return o
	}

	predicted, err := queryRows(ctx, e.db, sample.Predicted.SQL)
	if err != nil {
		return failedOutcome(sample, execError(ctx, sample, "predicted query failed", err))
	}
	reference, err := queryRows(ctx, e.db, sample.Reference.SQL)
	if err != nil {
		return failedOutcome(sample, execError(ctx, sample, "reference query failed", err))
	}

	return score(sample, sameRows(predicted, reference))
}

// probe checks that the first FROM table of the predicted query exists and
// has at least one row. A query without a recognizable FROM table passes.
// On skip the offending table name is returned with the error.
func (e *Evaluator) probe(ctx context.Context, sample Sample) (string, error) {
	table := FirstTable(sample.Predicted.SQL)
	if table == "" {
		return "", nil
	}
	name, ok := e.schema.Table(table)
	if !ok {
		return table, skippedError(sample, table)
	}

	var exists int
	q := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s)", schema.Quote(name))
	if err := e.db.QueryRowContext(ctx, q).Scan(&exists); err != nil {
		return "", execError(ctx, sample, "probing table "+name, err)
	}
	if exists == 0 {
		return name, skippedError(sample, name)
	}
	return "", nil
}

func skippedError(sample Sample, table string) *EvalError {
	return newEvalError(EvalErrorTypeSkipped, fmt.Sprintf("table %s does not exist or is empty", table), sample.DBID, nil)
}

// execError classifies a database error. A context deadline becomes a
// timeout so the outcome does not blame the query.
func execError(ctx context.Context, sample Sample, msg string, err error) *EvalError {
	if ctxErr := ctx.Err(); ctxErr == context.DeadlineExceeded {
		return newEvalError(EvalErrorTypeTimeout, "sample timed out", sample.DBID, ctxErr)
	}
	return newEvalError(EvalErrorTypeExecution, msg, sample.DBID, err)
}

// FirstTable returns the first table named after FROM in query, without
// quotes, or "" when there is none.
func FirstTable(query string) string {
	m := fromTableRe.FindStringSubmatch(query)
	if m == nil {
		return ""
	}
	return strings.Trim(m[1], "\"'`")
}

// score credits the facets of an executed sample.
func score(sample Sample, sqlMatch bool) Outcome {
	o := Outcome{
		Index:        sample.Index,
		DBID:         sample.DBID,
		Status:       StatusExecuted,
		SQLMatch:     sqlMatch,
		VisMatch:     strings.EqualFold(sample.Predicted.Chart, sample.Reference.Chart),
		BinMatch:     strings.EqualFold(strings.TrimSpace(sample.Predicted.Bin), strings.TrimSpace(sample.Reference.Bin)),
		PredictedSQL: sample.Predicted.SQL,
		ReferenceSQL: sample.Reference.SQL,
	}
	o.AllMatch = o.SQLMatch && o.VisMatch && o.BinMatch
	o.BinSQLMatch = o.SQLMatch && o.BinMatch
	return o
}
