package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/ppiankov/lifespan/internal/model"
)

// tableColumns is the column order of every rendered table
var tableColumns = []string{"Name", "Born", "Died", "Age at death"}

// markdownEscaper keeps cell text from splitting a pipe table row
var markdownEscaper = strings.NewReplacer("|", `\|`)

// Renderer writes reports to files and terminals
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a renderer; summaries go to out
func NewRenderer(out io.Writer) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	return &Renderer{out: out}
}

// RenderJSON writes the full report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderCSV writes the final table; unknown years are empty cells
func (r *Renderer) RenderCSV(report *model.Report, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"name", "born", "died", "age_at_death"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range report.Records {
		if err := w.Write(recordCells(rec, "")); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// RenderMarkdown writes the final table as an aligned Markdown document
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", report.Subject)
	fmt.Fprintf(&sb, "Source: %s  \n", report.SourceURL)
	fmt.Fprintf(&sb, "Fetched: %s  \n", report.FetchedAt.Format("2006-01-02 15:04 MST"))
	if report.OverrideSet != "" {
		fmt.Fprintf(&sb, "Overrides: %s  \n", report.OverrideSet)
	}
	fmt.Fprintf(&sb, "Records: %d, dropped rows: %d\n\n", len(report.Records), report.DropCount())

	for _, line := range markdownTable(report.Records) {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if len(report.Drops) > 0 {
		sb.WriteString("\n## Dropped rows\n\n")
		for _, d := range report.Drops {
			fmt.Fprintf(&sb, "- row %d (%s): `%s`: %s\n", d.Row, d.Stage, d.Text, d.Cause)
		}
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderPlot writes the timeline series as JSON for a plotting tool
func (r *Renderer) RenderPlot(points []model.PlotPoint, path string) error {
	data, err := json.MarshalIndent(points, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal plot series: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderSummary prints the final table and the drop count
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Fprintln(r.out)
	for _, line := range markdownTable(report.Records) {
		fmt.Fprintln(r.out, line)
	}
	fmt.Fprintln(r.out)

	source := "network"
	if report.FromCache {
		source = "cache"
	}
	fmt.Fprintf(r.out, "%d records from %s (%s), %d rows dropped\n",
		len(report.Records), report.Subject, source, report.DropCount())
}

// markdownTable lays records out as a pipe table padded by display width
func markdownTable(records []model.PersonRecord) []string {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, tableColumns)
	for _, rec := range records {
		cells := recordCells(rec, "—")
		for i, cell := range cells {
			cells[i] = markdownEscaper.Replace(cell)
		}
		rows = append(rows, cells)
	}

	widths := make([]int, len(tableColumns))
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] < 3 {
			widths[i] = 3
		}
	}

	lines := make([]string, 0, len(rows)+1)
	for i, row := range rows {
		lines = append(lines, formatRow(row, widths))
		if i == 0 {
			sep := make([]string, len(widths))
			for j, w := range widths {
				sep[j] = strings.Repeat("-", w)
			}
			lines = append(lines, formatRow(sep, widths))
		}
	}
	return lines
}

func formatRow(cells []string, widths []int) string {
	var sb strings.Builder
	sb.WriteString("|")
	for i, cell := range cells {
		sb.WriteString(" ")
		sb.WriteString(runewidth.FillRight(cell, widths[i]))
		sb.WriteString(" |")
	}
	return sb.String()
}

func recordCells(rec model.PersonRecord, unknown string) []string {
	return []string{rec.Name, yearCell(rec.Born, unknown), yearCell(rec.Died, unknown), yearCell(rec.AgeAtDeath, unknown)}
}

func yearCell(v *int, unknown string) string {
	if v == nil {
		return unknown
	}
	return strconv.Itoa(*v)
}
