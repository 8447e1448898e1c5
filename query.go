package vqleval

import (
	"context"

	"github.com/deepvis/vqleval/internal/dbfile"
	"github.com/deepvis/vqleval/internal/schema"
	"github.com/deepvis/vqleval/internal/vql"
)

// QueryResult is the data behind one chart.
type QueryResult struct {
	Chart   string
	SQL     string
	Columns []string
	Rows    []Row
}

// Query parses text, lowers it, canonicalizes it against the database at
// path and returns the rows it selects.
func Query(ctx context.Context, path, text string, opts dbfile.Options) (*QueryResult, error) {
	stmt, err := vql.Parse(text)
	if err != nil {
		return nil, err
	}
	query, err := vql.Lower(stmt)
	if err != nil {
		return nil, err
	}

	db, err := dbfile.Open(path, opts)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	sch, err := schema.Load(ctx, db)
	if err != nil {
		return nil, err
	}
	query = schema.Canonicalize(query, sch)

	cols, data, err := queryTable(ctx, db, query)
	if err != nil {
		return nil, newEvalError(EvalErrorTypeExecution, "query failed", "", err)
	}
	return &QueryResult{Chart: string(stmt.Chart), SQL: query, Columns: cols, Rows: data}, nil
}
