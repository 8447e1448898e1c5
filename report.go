package vqleval

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/deepvis/vqleval/internal/textmatch"
)

// Report is everything an evaluation run produced.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`

	Records     int `json:"records"`
	Unextracted int `json:"unextracted"`

	// Text averages the textual comparison of every extracted pair.
	Text textmatch.Summary `json:"text"`
	// Execution aggregates the executed samples.
	Execution Summary   `json:"execution"`
	Outcomes  []Outcome `json:"outcomes"`

	ParseFailures []ParseFailure `json:"parse_failures"`
	Unbound       []Unbound      `json:"unbound"`
}

// NewReport combines a dataset and the result of running its samples.
func NewReport(ds *Dataset, res *Result) *Report {
	r := &Report{GeneratedAt: time.Now().UTC()}
	if ds != nil {
		r.Records = ds.Records
		r.Unextracted = ds.Unextracted
		r.Text = textmatch.Aggregate(ds.TextScores)
		r.ParseFailures = ds.ParseFailures
		r.Unbound = ds.Unbound
	}
	if res != nil {
		r.Execution = res.Summary
		r.Outcomes = res.Outcomes
	}
	return r
}

// WriteJSON writes r as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding report")
	}
	b = append(b, '\n')
	if _, err := w.Write(b); err != nil {
		return errors.Wrap(err, "writing report")
	}
	return nil
}

// WriteText writes a human-readable report. Colors are used only when
// colored is true.
func (r *Report) WriteText(w io.Writer, colored bool) error {
	header := color.New(color.Bold)
	good := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	warn := color.New(color.FgYellow)
	for _, c := range []*color.Color{header, good, bad, warn} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	var sb strings.Builder
	header.Fprintln(&sb, "Dataset")
	fmt.Fprintf(&sb, "  records:        %d\n", r.Records)
	fmt.Fprintf(&sb, "  unextracted:    %d\n", r.Unextracted)
	fmt.Fprintf(&sb, "  parse failures: %d\n", len(r.ParseFailures))
	fmt.Fprintf(&sb, "  unbound:        %d\n", len(r.Unbound))

	sb.WriteString("\n")
	header.Fprintf(&sb, "Text match (%d samples)\n", r.Text.Samples)
	for _, row := range []struct {
		name string
		v    float64
	}{
		{"vis", r.Text.Vis},
		{"sql", r.Text.SQL},
		{"bin", r.Text.Bin},
		{"axis", r.Text.Axis},
		{"data", r.Text.Data},
		{"all", r.Text.All},
	} {
		fmt.Fprintf(&sb, "  %-8s %6.2f%%\n", row.name, row.v*100)
	}

	e := r.Execution
	sb.WriteString("\n")
	header.Fprintf(&sb, "Execution (%d samples)\n", e.Total)
	fmt.Fprintf(&sb, "  executed: %d  skipped: %d  timed out: %d  errored: %d\n", e.Executed, e.Skipped, e.TimedOut, e.Errored)
	for _, row := range []struct {
		name string
		v    float64
	}{
		{"sql", e.SQLAccuracy},
		{"vis", e.VisAccuracy},
		{"bin", e.BinAccuracy},
		{"all", e.AllAccuracy},
		{"bin+sql", e.BinSQLAccuracy},
	} {
		c := good
		if row.v < 50 {
			c = bad
		}
		fmt.Fprintf(&sb, "  %-8s %s\n", row.name, c.Sprintf("%6.2f%%", row.v))
	}

	if len(e.SkippedDBIDs) > 0 {
		sb.WriteString("\n")
		header.Fprintf(&sb, "Skipped databases (%d)\n", len(e.SkippedDBIDs))
		fmt.Fprintf(&sb, "  %s\n", strings.Join(e.SkippedDBIDs, ", "))
	}

	if len(e.Diagnostics) > 0 {
		sb.WriteString("\n")
		header.Fprintf(&sb, "Diagnostics (%d)\n", len(e.Diagnostics))
		for _, d := range e.Diagnostics {
			warn.Fprintf(&sb, "  [%d] %s %s\n", d.Index, d.DBID, d.Status)
			fmt.Fprintf(&sb, "    reason:    %s\n", d.Reason)
			fmt.Fprintf(&sb, "    predicted: %s\n", d.PredictedSQL)
			fmt.Fprintf(&sb, "    reference: %s\n", d.ReferenceSQL)
		}
	}

	if len(r.ParseFailures) > 0 {
		sb.WriteString("\n")
		header.Fprintf(&sb, "Parse failures (%d)\n", len(r.ParseFailures))
		for _, p := range r.ParseFailures {
			warn.Fprintf(&sb, "  [%d] %s %s\n", p.Index, p.DBID, p.Side)
			fmt.Fprintf(&sb, "    %s\n", p.Reason)
		}
	}

	if len(r.Unbound) > 0 {
		sb.WriteString("\n")
		header.Fprintf(&sb, "Unbound samples (%d)\n", len(r.Unbound))
		for _, u := range r.Unbound {
			warn.Fprintf(&sb, "  [%d] %s\n", u.Index, u.DBID)
			fmt.Fprintf(&sb, "    %s\n", u.Reason)
		}
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return errors.Wrap(err, "writing report")
	}
	return nil
}
