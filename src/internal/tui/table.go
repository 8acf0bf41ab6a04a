package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table is a bordered, column-aligned table
type Table struct {
	title      string
	headers    []string
	rows       []tableRow
	widths     []int
	hideHeader bool
	minWidth   int
}

type tableRow struct {
	cells       []string
	highlighted bool
}

// NewTable creates a table with the given column headers
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	return &Table{headers: headers, widths: widths}
}

// NewKeyValueTable creates a two-column table without a header row,
// used for "name: value" listings
func NewKeyValueTable(title string) *Table {
	t := NewTable("Key", "Value")
	t.title = title
	t.hideHeader = true
	return t
}

// SetTitle sets a centered title above the columns
func (t *Table) SetTitle(title string) {
	t.title = title
}

// HideHeader hides the column header row
func (t *Table) HideHeader() {
	t.hideHeader = true
}

// SetMinWidth pads the last column so the table is at least width wide
func (t *Table) SetMinWidth(width int) {
	t.minWidth = width
}

// AddRow appends a row; missing cells are left blank and extra cells dropped
func (t *Table) AddRow(cells ...string) {
	t.addRow(cells, false)
}

// AddHighlightedRow appends a row rendered in the success color
func (t *Table) AddHighlightedRow(cells ...string) {
	t.addRow(cells, true)
}

func (t *Table) addRow(cells []string, highlighted bool) {
	row := make([]string, len(t.headers))
	for i := range row {
		if i >= len(cells) {
			continue
		}
		row[i] = cells[i]
		// lipgloss.Width ignores ANSI sequences
		if w := lipgloss.Width(cells[i]); w > t.widths[i] {
			t.widths[i] = w
		}
	}
	t.rows = append(t.rows, tableRow{cells: row, highlighted: highlighted})
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int {
	return len(t.rows)
}

// Render returns the table as a string
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}
	initStyles()

	widths := append([]int(nil), t.widths...)
	totalWidth := 0
	for _, w := range widths {
		totalWidth += w + 2
	}
	if t.minWidth > 0 && totalWidth < t.minWidth {
		widths[len(widths)-1] += t.minWidth - totalWidth
		totalWidth = t.minWidth
	}

	var lines []string

	if t.title != "" {
		title := StyleTitle.Width(totalWidth).Align(lipgloss.Center)
		lines = append(lines, title.Render(t.title), separator(totalWidth))
	}

	if !t.hideHeader {
		var header strings.Builder
		var rule strings.Builder
		for i, h := range t.headers {
			header.WriteString(StyleTableHeader.Width(widths[i] + 2).Render(h))
			rule.WriteString(separator(widths[i] + 2))
		}
		lines = append(lines, header.String(), rule.String())
	}

	for _, row := range t.rows {
		style := StyleTableCell
		if row.highlighted {
			style = StyleTableHighlighted
		}
		var line strings.Builder
		for i, cell := range row.cells {
			line.WriteString(style.Width(widths[i] + 2).Render(cell))
		}
		lines = append(lines, line.String())
	}

	return StyleTableBorder.Render(strings.Join(lines, "\n"))
}

func separator(width int) string {
	return StyleMuted.Render(strings.Repeat("─", width))
}
