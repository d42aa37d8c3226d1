package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/lifespan/internal/model"
)

// EnDash separates birth and death years in the deceased format.
// Hyphens and other dash-like characters never match.
const EnDash = "\u2013"

var (
	dateSegmentRe = regexp.MustCompile(`\d{4}` + EnDash + `\d{4}`)
	bornTagRe     = regexp.MustCompile(`born[\s\x{00A0}]+\d{4}`)
)

// Split turns a raw text cell into its name, date span and born marker
func Split(row model.RawRow) (model.SplitTriple, error) {
	name, remainder := segment(row.Text)
	if name == "" {
		return model.SplitTriple{}, fmt.Errorf("row %d %q: %w: empty name", row.Index, row.Text, model.ErrMalformedRecord)
	}

	return model.SplitTriple{
		Name:        name,
		DateSegment: dateSegmentRe.FindString(remainder),
		BornTag:     bornTagRe.FindString(remainder),
	}, nil
}

// segment cuts text at the first opening parenthesis or bracket
func segment(text string) (name, remainder string) {
	idx := strings.IndexAny(text, "([")
	if idx < 0 {
		return strings.TrimSpace(text), ""
	}
	return strings.TrimSpace(text[:idx]), text[idx:]
}

// FilterRows drops echoed header rows and exact duplicate rows.
// Duplicates keep their first occurrence; the second value is the number of rows removed.
func FilterRows(rows []model.RawRow, headerLabel string) ([]model.RawRow, int) {
	header := normalizeLabel(headerLabel)
	seen := make(map[string]bool)
	var kept []model.RawRow

	for _, row := range rows {
		if header != "" && normalizeLabel(row.Text) == header {
			continue
		}
		if seen[row.Text] {
			continue
		}
		seen[row.Text] = true
		kept = append(kept, row)
	}

	return kept, len(rows) - len(kept)
}

// normalizeLabel folds case and drops all whitespace so "Name (Birth–Death)"
// matches "Name(Birth–Death)" as rendered by some table layouts
func normalizeLabel(s string) string {
	var b strings.Builder
	for _, f := range strings.Fields(s) {
		b.WriteString(f)
	}
	return strings.ToLower(b.String())
}
