package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/prodaudit/prodaudit/pkg/audit"
)

// WriteMarkdown writes the report as a pipe table padded to display width.
func WriteMarkdown(w io.Writer, records []audit.Record) error {
	for _, line := range markdownTable(records, markdownCell) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// markdownTable builds an aligned pipe table with every cell passed
// through cell.
func markdownTable(records []audit.Record, cell func(string) string) []string {
	table := make([][]string, 0, len(records)+1)
	table = append(table, escapeRow(Header(), cell))
	for _, rec := range records {
		table = append(table, escapeRow(Row(rec), cell))
	}
	return alignTable(table, true)
}

func escapeRow(row []string, cell func(string) string) []string {
	for i := range row {
		row[i] = cell(row[i])
	}
	return row
}

func markdownCell(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

// htmlCell makes scraped text inert before it is rendered: markup
// characters become entities and markdown punctuation is backslash-escaped.
func htmlCell(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '&':
			b.WriteString("&amp;")
		case '\\', '`', '*', '_', '[', ']', '~', '!', '#':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return markdownCell(b.String())
}

// alignTable pads every cell to its column's display width. With separator
// set, a dash row is inserted after the header.
func alignTable(table [][]string, separator bool) []string {
	if len(table) == 0 {
		return nil
	}
	colCount := 0
	for _, row := range table {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	widths := make([]int, colCount)
	for _, row := range table {
		for i, c := range row {
			if w := runewidth.StringWidth(c); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] < 3 {
			widths[i] = 3
		}
	}

	line := func(row []string) string {
		var sb strings.Builder
		sb.WriteString("|")
		for j := 0; j < colCount; j++ {
			content := ""
			if j < len(row) {
				content = row[j]
			}
			sb.WriteString(" ")
			sb.WriteString(runewidth.FillRight(content, widths[j]))
			sb.WriteString(" |")
		}
		return sb.String()
	}

	out := make([]string, 0, len(table)+1)
	out = append(out, line(table[0]))
	if separator {
		dashes := make([]string, colCount)
		for i, w := range widths {
			dashes[i] = strings.Repeat("-", w)
		}
		out = append(out, line(dashes))
	}
	for _, row := range table[1:] {
		out = append(out, line(row))
	}
	return out
}

// previewColumns are shown in the terminal preview; the full report has
// every field.
var previewColumns = []string{ColItemName, ColSource, ColImagesFound, "Allergen Info", "Ingredients list", "Flavor", "Item Form"}

const previewCellWidth = 32

// Preview prints up to limit records as an aligned table with long cells
// cut to a fixed display width.
func Preview(w io.Writer, records []audit.Record, limit int) error {
	if limit <= 0 || len(records) == 0 {
		return nil
	}
	if limit > len(records) {
		limit = len(records)
	}

	header := Header()
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[h] = i
	}

	table := [][]string{previewColumns}
	for _, rec := range records[:limit] {
		full := Row(rec)
		row := make([]string, len(previewColumns))
		for i, name := range previewColumns {
			row[i] = runewidth.Truncate(markdownCell(full[pos[name]]), previewCellWidth, "…")
		}
		table = append(table, row)
	}

	for _, line := range alignTable(table, true) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
