package model

// RawRow is one scraped text cell, one subject per row
type RawRow struct {
	Index int    `json:"index"` // Position in the scraped column (0-based)
	Text  string `json:"text"`
}

// SplitTriple is the intermediate result of splitting a raw row.
// Empty DateSegment/BornTag means the marker was absent.
type SplitTriple struct {
	Name        string `json:"name"`
	DateSegment string `json:"date_segment,omitempty"` // "1916–1952" (deceased format)
	BornTag     string `json:"born_tag,omitempty"`     // "born 1963" (living format)
}

// RecordSource tells where a record came from
type RecordSource string

const (
	SourceScraped  RecordSource = "scraped"
	SourceOverride RecordSource = "override"
)

// PersonRecord is one subject in the final table. Nil years are unknown.
type PersonRecord struct {
	Name       string       `json:"name" yaml:"name"`
	Born       *int         `json:"born" yaml:"born,omitempty"`
	Died       *int         `json:"died" yaml:"died,omitempty"`
	AgeAtDeath *int         `json:"age_at_death" yaml:"-"`
	Source     RecordSource `json:"source,omitempty" yaml:"-"`
}

// NewPersonRecord builds a record and derives AgeAtDeath
func NewPersonRecord(name string, born, died *int, source RecordSource) PersonRecord {
	rec := PersonRecord{
		Name:   name,
		Born:   born,
		Died:   died,
		Source: source,
	}
	if born != nil && died != nil {
		age := *died - *born
		rec.AgeAtDeath = &age
	}
	return rec
}

// IsAlive reports whether no death year is known
func (p PersonRecord) IsAlive() bool {
	return p.Died == nil
}

// Equal compares all fields, treating two nil years as equal
func (p PersonRecord) Equal(o PersonRecord) bool {
	return p.Name == o.Name &&
		p.Source == o.Source &&
		yearsEqual(p.Born, o.Born) &&
		yearsEqual(p.Died, o.Died) &&
		yearsEqual(p.AgeAtDeath, o.AgeAtDeath)
}

func yearsEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Year returns a pointer to y, for building records in literals
func Year(y int) *int {
	return &y
}

// PlotPoint is a layout-only projection of a record for timeline plots
type PlotPoint struct {
	Name  string `json:"name"`
	Born  int    `json:"born"`
	End   int    `json:"end"`   // Death year, or the current-year sentinel when alive
	Alive bool   `json:"alive"` // No death year known
}
