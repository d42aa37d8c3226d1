package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/ppiankov/lifespan/internal/model"
	"golang.org/x/net/html"
)

// Table is the text content of one HTML table, spans expanded
type Table struct {
	Header []string
	Rows   [][]string
}

// ExtractTable parses the page and returns the first table matching selector
func ExtractTable(htmlContent string, selector string) (*Table, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("compile selector %q: %w", selector, err)
	}

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	node := sel.MatchFirst(doc)
	if node == nil {
		return nil, fmt.Errorf("selector %q: %w", selector, model.ErrNoTableFound)
	}

	// Selector may point at a wrapper; use the first table inside it
	if node.Data != "table" {
		node = findFirst(node, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == "table"
		})
		if node == nil {
			return nil, fmt.Errorf("selector %q matched no table element: %w", selector, model.ErrNoTableFound)
		}
	}

	grid := expandSpans(tableRows(node))
	if len(grid) == 0 {
		return nil, fmt.Errorf("selector %q matched an empty table: %w", selector, model.ErrNoTableFound)
	}

	return &Table{
		Header: grid[0],
		Rows:   grid[1:],
	}, nil
}

// Column returns the cells of one column as raw rows.
// The column is found by header text; index is used when no header matches.
func (t *Table) Column(header string, index int) ([]model.RawRow, error) {
	col := t.columnIndex(header)
	if col < 0 {
		col = index
	}
	if col < 0 || col >= len(t.Header) {
		return nil, fmt.Errorf("column %q (index %d) not in table with %d columns: %w",
			header, index, len(t.Header), model.ErrNoTableFound)
	}

	rows := make([]model.RawRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		if col >= len(row) {
			continue
		}
		rows = append(rows, model.RawRow{Index: i, Text: row[col]})
	}

	return rows, nil
}

func (t *Table) columnIndex(header string) int {
	want := normalizeLabel(header)
	if want == "" {
		return -1
	}
	for i, h := range t.Header {
		if normalizeLabel(h) == want {
			return i
		}
	}
	return -1
}

// cell is one <td>/<th> before span expansion
type cell struct {
	text    string
	rowspan int
	colspan int
}

// tableRows collects the rows of table without descending into nested tables
func tableRows(table *html.Node) [][]cell {
	var rows [][]cell

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "table":
				continue
			case "tr":
				rows = append(rows, rowCells(c))
			default:
				walk(c)
			}
		}
	}

	walk(table)
	return rows
}

func rowCells(tr *html.Node) []cell {
	var cells []cell
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		cells = append(cells, cell{
			text:    cellText(c),
			rowspan: spanAttr(c, "rowspan"),
			colspan: spanAttr(c, "colspan"),
		})
	}
	return cells
}

// expandSpans lays cells out on a grid, repeating rowspan/colspan cells
// into every slot they cover
func expandSpans(rows [][]cell) [][]string {
	type carry struct {
		text      string
		remaining int
	}
	pending := make(map[int]*carry)
	grid := make([][]string, 0, len(rows))

	for _, row := range rows {
		var out []string
		col := 0
		next := 0

		fill := func() {
			for {
				p, ok := pending[col]
				if !ok || p.remaining == 0 {
					return
				}
				out = append(out, p.text)
				p.remaining--
				if p.remaining == 0 {
					delete(pending, col)
				}
				col++
			}
		}

		for next < len(row) {
			fill()
			c := row[next]
			next++
			for i := 0; i < c.colspan; i++ {
				out = append(out, c.text)
				if c.rowspan > 1 {
					pending[col] = &carry{text: c.text, remaining: c.rowspan - 1}
				}
				col++
			}
		}
		fill()

		grid = append(grid, out)
	}

	return grid
}

// cellText returns visible cell text with citation markers removed
// and whitespace collapsed
func cellText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "sup":
				if hasClass(n, "reference") || hasClass(n, "noprint") {
					return
				}
			case "br":
				buf.WriteString(" ")
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

// Span limits from the HTML table model
const (
	maxColspan = 1000
	maxRowspan = 65534
)

// spanAttr reads rowspan/colspan, clamped to 1..limit
func spanAttr(n *html.Node, key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(getAttribute(n, key)))
	if err != nil || v < 1 {
		return 1
	}
	limit := maxColspan
	if key == "rowspan" {
		limit = maxRowspan
	}
	return min(v, limit)
}

// hasClass checks if a node has a specific CSS class
func hasClass(n *html.Node, className string) bool {
	for _, class := range strings.Fields(getAttribute(n, "class")) {
		if class == className {
			return true
		}
	}
	return false
}

// getAttribute gets an attribute value from a node
func getAttribute(n *html.Node, attrKey string) string {
	for _, attr := range n.Attr {
		if attr.Key == attrKey {
			return attr.Val
		}
	}
	return ""
}

// findFirst finds the first node matching a predicate
func findFirst(n *html.Node, predicate func(*html.Node) bool) *html.Node {
	var result *html.Node

	var walk func(*html.Node) bool
	walk = func(node *html.Node) bool {
		if predicate(node) {
			result = node
			return true
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}

	walk(n)
	return result
}
