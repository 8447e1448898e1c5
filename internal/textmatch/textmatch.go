// Package textmatch scores a predicted VQL statement against a reference by
// comparing text, without touching any database.
package textmatch

import (
	"strings"

	"github.com/grafana/regexp"
)

var (
	spaceRe      = regexp.MustCompile(`\s+`)
	spaceCommaRe = regexp.MustCompile(`\s+,`)
	binRe        = regexp.MustCompile(`(?i)\bBIN\b`)
	fromRe       = regexp.MustCompile(`(?i)\bFROM\b`)
)

// Scores holds the per-facet text comparison of one sample.
type Scores struct {
	// Vis is true when both charts name the same type.
	Vis bool `json:"vis"`
	// SQL is true when the text before any BIN clause matches.
	SQL bool `json:"sql"`
	// Bin is true when the BIN clauses match or both are absent.
	Bin bool `json:"bin"`
	// Axis is the fraction of reference select items found in the prediction.
	Axis float64 `json:"axis"`
	// Data is true when everything after the chart type matches.
	Data bool `json:"data"`
	// All is true when Vis and Data both hold.
	All bool `json:"all"`
}

// Score compares pred to ref. Whitespace runs are collapsed, whitespace
// before commas is dropped and letter case is ignored on both sides.
func Score(pred, ref string) Scores {
	pred, ref = normalize(pred), normalize(ref)

	var s Scores
	pv, pBody := splitChart(pred)
	rv, rBody := splitChart(ref)
	s.Vis = pv == rv

	pSQL, pBin := splitBin(pBody)
	rSQL, rBin := splitBin(rBody)
	s.SQL = strings.EqualFold(pSQL, rSQL)
	s.Bin = strings.EqualFold(pBin, rBin)

	s.Axis = axisScore(selectItems(pSQL), selectItems(rSQL))
	s.Data = strings.EqualFold(pBody, rBody)
	s.All = s.Vis && s.Data
	return s
}

func normalize(s string) string {
	s = spaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
	return spaceCommaRe.ReplaceAllString(s, ",")
}

// splitChart returns the upper-cased chart type and the remaining text. The
// chart type is empty when s does not start with VISUALIZE.
func splitChart(s string) (string, string) {
	fields := strings.SplitN(s, " ", 3)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "VISUALIZE") {
		return "", s
	}
	if len(fields) == 2 {
		return strings.ToUpper(fields[1]), ""
	}
	return strings.ToUpper(fields[1]), fields[2]
}

func splitBin(s string) (string, string) {
	loc := binRe.FindStringIndex(s)
	if loc == nil {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(s[:loc[0]]), strings.TrimSpace(s[loc[0]:])
}

// selectItems returns the lower-cased leading word of every select-list item.
func selectItems(sql string) []string {
	if len(sql) < len("SELECT") || !strings.EqualFold(sql[:len("SELECT")], "SELECT") {
		return nil
	}
	list := sql[len("SELECT"):]
	if loc := fromRe.FindStringIndex(list); loc != nil {
		list = list[:loc[0]]
	}

	var items []string
	for _, item := range splitTopLevel(list) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		items = append(items, strings.ToLower(strings.Fields(item)[0]))
	}
	return items
}

func splitTopLevel(s string) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

func axisScore(pred, ref []string) float64 {
	if len(ref) == 0 {
		if len(pred) == 0 {
			return 1
		}
		return 0
	}
	have := make(map[string]struct{}, len(pred))
	for _, p := range pred {
		have[p] = struct{}{}
	}
	hits := 0
	for _, r := range ref {
		if _, ok := have[r]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(ref))
}

// Summary averages Scores over a set of samples.
type Summary struct {
	Samples int     `json:"samples"`
	Vis     float64 `json:"vis"`
	SQL     float64 `json:"sql"`
	Bin     float64 `json:"bin"`
	Axis    float64 `json:"axis"`
	Data    float64 `json:"data"`
	All     float64 `json:"all"`
}

// Aggregate returns the mean of every facet. An empty input yields zeros.
func Aggregate(scores []Scores) Summary {
	sum := Summary{Samples: len(scores)}
	if len(scores) == 0 {
		return sum
	}
	for _, s := range scores {
		sum.Vis += b2f(s.Vis)
		sum.SQL += b2f(s.SQL)
		sum.Bin += b2f(s.Bin)
		sum.Axis += s.Axis
		sum.Data += b2f(s.Data)
		sum.All += b2f(s.All)
	}
	n := float64(len(scores))
	sum.Vis /= n
	sum.SQL /= n
	sum.Bin /= n
	sum.Axis /= n
	sum.Data /= n
	sum.All /= n
	return sum
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
