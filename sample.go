package vqleval

import (
	"fmt"

	"github.com/deepvis/vqleval/internal/vql"
)

// Side is one half of a sample: a chart directive, the lowered SQL and the
// normalized BIN clause.
type Side struct {
	Chart string `json:"chart"`
	SQL   string `json:"sql"`
	// Bin is "BIN <column> BY <unit>", or empty when the statement has none.
	Bin string `json:"bin,omitempty"`
}

// NewSide lowers stmt into a Side.
func NewSide(stmt *vql.Statement) (Side, error) {
	if stmt == nil {
		return Side{}, fmt.Errorf("nil statement")
	}
	sql, err := vql.Lower(stmt)
	if err != nil {
		return Side{}, err
	}
	return Side{Chart: string(stmt.Chart), SQL: sql, Bin: stmt.BinClause()}, nil
}

// ParseSide parses and lowers a VQL statement.
func ParseSide(text string) (Side, error) {
	stmt, err := vql.Parse(text)
	if err != nil {
		return Side{}, err
	}
	return NewSide(stmt)
}

// Sample pairs a prediction with its reference and the database both run
// against.
type Sample struct {
	// Index is the position of the sample in the input dataset.
	Index     int    `json:"index"`
	DBID      string `json:"db_id"`
	DBPath    string `json:"db_path"`
	Predicted Side   `json:"predicted"`
	Reference Side   `json:"reference"`
}
