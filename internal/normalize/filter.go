package normalize

import (
	"fmt"

	"github.com/ppiankov/lifespan/internal/model"
)

// Filter decides whether a scraped record belongs in the final table.
// It replaces positional cutoffs: each record is judged on its own content.
type Filter interface {
	Check(rec model.PersonRecord) error
}

// FilterFunc adapts a function to Filter
type FilterFunc func(rec model.PersonRecord) error

// Check calls f(rec)
func (f FilterFunc) Check(rec model.PersonRecord) error {
	return f(rec)
}

// AllowList keeps only the named subjects. An empty list keeps everyone.
func AllowList(names []string) Filter {
	allowed := toSet(names)
	return FilterFunc(func(rec model.PersonRecord) error {
		if len(allowed) == 0 || allowed[rec.Name] {
			return nil
		}
		return fmt.Errorf("%q not in allow list", rec.Name)
	})
}

// DenyList drops the named subjects
func DenyList(names []string) Filter {
	denied := toSet(names)
	return FilterFunc(func(rec model.PersonRecord) error {
		if denied[rec.Name] {
			return fmt.Errorf("%q in deny list", rec.Name)
		}
		return nil
	})
}

// RequireBorn drops records without a birth year unless an override covers them
func RequireBorn(overrides *OverrideSet) Filter {
	return FilterFunc(func(rec model.PersonRecord) error {
		if rec.Born != nil {
			return nil
		}
		if overrides != nil && overrides.Has(rec.Name) {
			return nil
		}
		return fmt.Errorf("%q has no birth year and no override", rec.Name)
	})
}

// All combines filters; the first rejection wins
func All(filters ...Filter) Filter {
	return FilterFunc(func(rec model.PersonRecord) error {
		for _, f := range filters {
			if f == nil {
				continue
			}
			if err := f.Check(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// DefaultFilter is the filter built from an override set's allow and deny
// lists, plus RequireBorn when the set opts in. A nil set keeps everything.
func DefaultFilter(overrides *OverrideSet) Filter {
	if overrides == nil {
		return nil
	}
	filters := []Filter{AllowList(overrides.Allow), DenyList(overrides.Deny)}
	if overrides.RequireBorn {
		filters = append(filters, RequireBorn(overrides))
	}
	return All(filters...)
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
