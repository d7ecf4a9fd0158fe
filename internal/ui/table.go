package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column is a fixed-width table column.
type Column struct {
	Title string
	Width int
}

// Row is one line of cells, in column order.
type Row []string

// Table renders plain cells under fixed-width headers. Long cells are cut
// with an ellipsis; missing cells render blank.
type Table struct {
	Columns []Column
	Rows    []Row
}

// NewTable creates an empty table.
func NewTable(cols ...Column) *Table {
	return &Table{Columns: cols}
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, Row(cells))
}

// Render returns the table as a string, header and divider first.
func (t *Table) Render() string {
	var sb strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(ColorValue)

	headers := make([]string, len(t.Columns))
	divider := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		headers[i] = headerStyle.Render(fit(col.Title, col.Width))
		divider[i] = StyleDim.Render(strings.Repeat("─", col.Width))
	}
	sb.WriteString(strings.Join(headers, " ") + "\n")
	sb.WriteString(strings.Join(divider, " ") + "\n")

	for _, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for j, col := range t.Columns {
			val := ""
			if j < len(row) {
				val = row[j]
			}
			cells[j] = cellStyle.Render(fit(val, col.Width))
		}
		sb.WriteString(strings.Join(cells, " ") + "\n")
	}

	return sb.String()
}

// KV is one labelled line of a KeyValueBlock.
type KV struct {
	Key   string
	Value string
}

// KeyValueBlock renders labelled values in a bordered box.
func KeyValueBlock(title string, pairs []KV) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-16s", p.Key+":"))
		sb.WriteString("  " + key + " " + StyleValue.Render(p.Value) + "\n")
	}
	return StyleBorder.Render(strings.TrimRight(sb.String(), "\n"))
}

// padR pads s with spaces to n visible columns. ANSI sequences do not count.
func padR(s string, n int) string {
	w := lipgloss.Width(s)
	if w >= n {
		return s
	}
	return s + strings.Repeat(" ", n-w)
}

// fit pads or cuts plain text to exactly n visible columns.
func fit(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) > n {
		if n == 1 {
			return "…"
		}
		return string(r[:n-1]) + "…"
	}
	return padR(s, n)
}
