package schema

import (
	"strings"

	"github.com/grafana/regexp"
)

// wordRe matches an identifier (a letter or underscore followed by letters,
// digits or underscores), optionally wrapped in single or double quotes.
var wordRe = regexp.MustCompile(`["']?\b[a-zA-Z_][a-zA-Z0-9_]*\b["']?`)

// Canonicalize rewrites every identifier token of query whose lower-cased
// form names a table or column of s to the stored casing. Table names take
// precedence over column names. Columns are not scoped to the tables the
// query references: a name shared by several tables is rewritten to the
// casing of the first table that declares it. A word directly after '%' is
// a strftime conversion and is never rewritten.
func Canonicalize(query string, s *Schema) string {
	if s == nil {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query))
	last := 0
	for _, loc := range wordRe.FindAllStringIndex(query, -1) {
		if loc[0] > 0 && query[loc[0]-1] == '%' {
			continue
		}
		word := query[loc[0]:loc[1]]
		bare := strings.Trim(word, `"'`)
		stored, ok := s.Table(bare)
		if !ok {
			stored, ok = s.Column(bare)
		}
		if !ok || stored == bare {
			continue
		}
		sb.WriteString(query[last:loc[0]])
		sb.WriteString(strings.Replace(word, bare, stored, 1))
		last = loc[1]
	}
	if last == 0 {
		return query
	}
	sb.WriteString(query[last:])
	return sb.String()
}
