package model

import "time"

// Report is the finished batch handed to renderers
type Report struct {
	Subject     string         `json:"subject"`         // Human-readable subject (e.g., "List of presidents of the United States")
	SourceURL   string         `json:"source_url"`      // Page the rows were scraped from
	FetchedAt   time.Time      `json:"fetched_at"`      // When the run happened
	FetchMeta   FetchMeta      `json:"fetch_meta"`      // HTTP metadata of the page fetch
	FromCache   bool           `json:"from_cache"`      // Page served from the local cache
	OverrideSet string         `json:"override_set"`    // name@version of the override data applied
	RowsScraped int            `json:"rows_scraped"`    // Raw rows before filtering
	Records     []PersonRecord `json:"records"`         // Final table, sorted by birth year
	Drops       []Drop         `json:"drops,omitempty"` // Rows rejected during the run
}

// DropCount returns the number of rejected rows
func (r *Report) DropCount() int {
	return len(r.Drops)
}

// FetchMeta contains HTTP metadata from fetching the source
type FetchMeta struct {
	StatusCode   int               `json:"status_code"`
	ContentType  string            `json:"content_type,omitempty"`
	LastModified string            `json:"last_modified,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
}

// DropStage names the pipeline step that rejected a row
type DropStage string

const (
	StageSplit     DropStage = "split"
	StageNormalize DropStage = "normalize"
	StageFilter    DropStage = "filter"
	StageDuplicate DropStage = "duplicate-name"
)

// Drop records one rejected row
type Drop struct {
	Row   int       `json:"row"` // RawRow.Index, or -1 for records not tied to a row
	Text  string    `json:"text"`
	Stage DropStage `json:"stage"`
	Err   error     `json:"-"`
	Cause string    `json:"cause"`
}

// NewDrop builds a Drop with its cause string filled from err
func NewDrop(row int, text string, stage DropStage, err error) Drop {
	d := Drop{Row: row, Text: text, Stage: stage, Err: err}
	if err != nil {
		d.Cause = err.Error()
	}
	return d
}
