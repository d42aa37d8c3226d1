package normalize

import (
	"fmt"
	"strings"

	"github.com/ppiankov/lifespan/internal/extract"
	"github.com/ppiankov/lifespan/internal/model"
)

const bornMarker = "born"

// Normalize converts a split triple into a scraped person record.
//
// A date span yields born and died; a born tag yields born only (living
// subject); neither leaves both unknown for an override to fill.
func Normalize(t model.SplitTriple) (model.PersonRecord, error) {
	switch {
	case t.DateSegment != "":
		born, died, err := parseSpan(t.DateSegment)
		if err != nil {
			return model.PersonRecord{}, fmt.Errorf("%s: %w", t.Name, err)
		}
		return model.NewPersonRecord(t.Name, &born, &died, model.SourceScraped), nil

	case t.BornTag != "":
		rest := strings.TrimPrefix(strings.TrimSpace(t.BornTag), bornMarker)
		born, err := ParseYear(rest)
		if err != nil {
			return model.PersonRecord{}, fmt.Errorf("%s: %w", t.Name, err)
		}
		return model.NewPersonRecord(t.Name, &born, nil, model.SourceScraped), nil

	default:
		return model.NewPersonRecord(t.Name, nil, nil, model.SourceScraped), nil
	}
}

// parseSpan splits "YYYY–YYYY" on the en dash and checks died >= born
func parseSpan(span string) (born, died int, err error) {
	bornStr, diedStr, ok := strings.Cut(span, extract.EnDash)
	if !ok {
		return 0, 0, &model.YearError{Input: span, Reason: "missing en dash"}
	}

	if born, err = ParseYear(bornStr); err != nil {
		return 0, 0, err
	}
	if died, err = ParseYear(diedStr); err != nil {
		return 0, 0, err
	}
	if died < born {
		return 0, 0, &model.YearError{Input: span, Reason: "death year before birth year"}
	}

	return born, died, nil
}
