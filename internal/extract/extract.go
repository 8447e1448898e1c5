// Package extract isolates VQL statements from free-form model output and
// ground-truth annotations.
package extract

import (
	"strings"

	"github.com/grafana/regexp"
)

// DefaultMarker precedes the reference statement in ground-truth records.
const DefaultMarker = "Final VQL:"

var statementStartRe = regexp.MustCompile(`(?i)Visualize\s+[A-Z]+\s+SELECT`)

// LastStatement returns the text from the last statement start to the end of
// text, cleaned up by Clean.
func LastStatement(text string) (string, bool) {
	locs := statementStartRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return "", false
	}
	out := Clean(text[locs[len(locs)-1][0]:])
	return out, out != ""
}

// AfterMarker returns the text after the last case-insensitive occurrence of
// marker, cleaned up by Clean.
func AfterMarker(text, marker string) (string, bool) {
	if marker == "" {
		marker = DefaultMarker
	}
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(marker))
	if err != nil {
		return "", false
	}
	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return "", false
	}
	out := Clean(text[locs[len(locs)-1][1]:])
	return out, out != ""
}

// Clean turns line breaks into spaces, drops double quotes and trims.
func Clean(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", `"`, "").Replace(s)
	return strings.TrimSpace(s)
}
