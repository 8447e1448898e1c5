package vqleval

import (
	"errors"
	"fmt"
	"time"
)

// Status is the execution status of one sample.
type Status int

const (
	StatusExecuted Status = iota
	StatusSkipped
	StatusTimedOut
	StatusErrored
)

var statusNames = [...]string{
	StatusExecuted: "executed",
	StatusSkipped:  "skipped",
	StatusTimedOut: "timed_out",
	StatusErrored:  "errored",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(b []byte) error {
	for i, name := range statusNames {
		if name == string(b) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", b)
}

// Outcome is the scored result of one sample. Facets are only ever true when
// Status is StatusExecuted.
type Outcome struct {
	Index  int    `json:"index"`
	DBID   string `json:"db_id"`
	Status Status `json:"status"`

	SQLMatch    bool `json:"sql_match"`
	VisMatch    bool `json:"vis_match"`
	BinMatch    bool `json:"bin_match"`
	AllMatch    bool `json:"all_match"`
	BinSQLMatch bool `json:"bin_sql_match"`

	// Reason explains every non-executed outcome.
	Reason string `json:"reason,omitempty"`
	// SkippedTable is the missing or empty table of a skipped outcome.
	SkippedTable string `json:"skipped_table,omitempty"`

	PredictedSQL string        `json:"predicted_sql"`
	ReferenceSQL string        `json:"reference_sql"`
	Duration     time.Duration `json:"duration"`
}

// failedOutcome returns an outcome with no facet credited.
func failedOutcome(s Sample, err error) Outcome {
	o := Outcome{
		Index:        s.Index,
		DBID:         s.DBID,
		Status:       StatusErrored,
		Reason:       err.Error(),
		PredictedSQL: s.Predicted.SQL,
		ReferenceSQL: s.Reference.SQL,
	}
	var ee *EvalError
	if errors.As(err, &ee) {
		o.Status = ee.Status()
	}
	return o
}
