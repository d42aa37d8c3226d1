// Package normalize turns split rows into typed person records and
// assembles the final table.
package normalize

import (
	"strconv"
	"strings"

	"github.com/ppiankov/lifespan/internal/model"
)

// ParseYear parses a four-digit year. Anything else is an *model.YearError.
func ParseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) != 4 {
		return 0, &model.YearError{Input: s, Reason: "want 4 digits"}
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, &model.YearError{Input: s, Reason: "non-digit character"}
		}
	}

	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, &model.YearError{Input: s, Reason: err.Error()}
	}
	return year, nil
}
