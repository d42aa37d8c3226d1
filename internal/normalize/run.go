package normalize

import (
	"fmt"

	"github.com/ppiankov/lifespan/internal/extract"
	"github.com/ppiankov/lifespan/internal/model"
)

// Batch is the outcome of one pass over the scraped rows
type Batch struct {
	Records []model.PersonRecord
	Drops   []model.Drop
}

// scrapedRecord keeps a record next to the row it came from, for drop reports
type scrapedRecord struct {
	rec model.PersonRecord
	row model.RawRow
}

// Run builds the final table from already-filtered raw rows.
//
// Rows that fail to split or normalize are dropped and reported; the batch
// always continues. Identical records collapse silently; a later record
// reusing an earlier name with different years is dropped as a duplicate.
// Survivors are filtered, then the overrides are merged in and the result
// is sorted by birth year.
func Run(rows []model.RawRow, overrides *OverrideSet, filter Filter) Batch {
	var batch Batch
	scraped := make([]scrapedRecord, 0, len(rows))

	for _, row := range rows {
		triple, err := extract.Split(row)
		if err != nil {
			batch.Drops = append(batch.Drops, model.NewDrop(row.Index, row.Text, model.StageSplit, err))
			continue
		}

		rec, err := Normalize(triple)
		if err != nil {
			batch.Drops = append(batch.Drops, model.NewDrop(row.Index, row.Text, model.StageNormalize, err))
			continue
		}

		scraped = append(scraped, scrapedRecord{rec: rec, row: row})
	}

	scraped = uniqueNames(scraped, &batch)

	records := make([]model.PersonRecord, 0, len(scraped))
	for _, s := range scraped {
		if filter != nil {
			if err := filter.Check(s.rec); err != nil {
				batch.Drops = append(batch.Drops, model.NewDrop(s.row.Index, s.row.Text, model.StageFilter, err))
				continue
			}
		}
		records = append(records, s.rec)
	}

	var overrideRecords []model.PersonRecord
	if overrides != nil {
		overrideRecords = overrides.PersonRecords()
	}

	batch.Records = Dedup(Merge(records, overrideRecords))
	SortByBorn(batch.Records)

	return batch
}

// uniqueNames keeps the first record per name. Exact repeats vanish;
// conflicting repeats are reported as duplicate-name drops.
func uniqueNames(scraped []scrapedRecord, batch *Batch) []scrapedRecord {
	first := make(map[string]scrapedRecord, len(scraped))
	kept := make([]scrapedRecord, 0, len(scraped))

	for _, s := range scraped {
		prev, ok := first[s.rec.Name]
		if !ok {
			first[s.rec.Name] = s
			kept = append(kept, s)
			continue
		}
		if prev.rec.Equal(s.rec) {
			continue
		}
		err := fmt.Errorf("%w: %q already taken by row %d", model.ErrDuplicateName, s.rec.Name, prev.row.Index)
		batch.Drops = append(batch.Drops, model.NewDrop(s.row.Index, s.row.Text, model.StageDuplicate, err))
	}

	return kept
}
