package normalize

import (
	"sort"

	"github.com/ppiankov/lifespan/internal/model"
)

// Dedup removes records equal in every field; the first occurrence wins
func Dedup(records []model.PersonRecord) []model.PersonRecord {
	var unique []model.PersonRecord

	for _, rec := range records {
		dup := false
		for _, u := range unique {
			if u.Equal(rec) {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, rec)
		}
	}

	return unique
}

// Merge appends overrides after the scraped records. A scraped record whose
// name matches an override is removed; the override keeps its own known
// years and takes the scraped value for any year it leaves unknown.
func Merge(scraped []model.PersonRecord, overrides []model.PersonRecord) []model.PersonRecord {
	byName := make(map[string]model.PersonRecord, len(scraped))
	for _, rec := range scraped {
		if _, ok := byName[rec.Name]; !ok {
			byName[rec.Name] = rec
		}
	}

	overridden := make(map[string]bool, len(overrides))
	for _, o := range overrides {
		overridden[o.Name] = true
	}

	merged := make([]model.PersonRecord, 0, len(scraped)+len(overrides))
	for _, rec := range scraped {
		if !overridden[rec.Name] {
			merged = append(merged, rec)
		}
	}

	for _, o := range overrides {
		if rec, ok := byName[o.Name]; ok {
			o = fill(o, rec)
		}
		merged = append(merged, o)
	}

	return merged
}

// fill returns a new override record with unknown years taken from rec
func fill(o, rec model.PersonRecord) model.PersonRecord {
	born, died := o.Born, o.Died
	if born == nil {
		born = rec.Born
	}
	if died == nil && rec.Died != nil && born != nil && *rec.Died >= *born {
		died = rec.Died
	}
	return model.NewPersonRecord(o.Name, born, died, model.SourceOverride)
}

// SortByBorn orders records by birth year; unknown birth years trail in
// their existing order
func SortByBorn(records []model.PersonRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].Born, records[j].Born
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a < *b
	})
}
