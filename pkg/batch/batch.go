package batch

import (
	"strings"

	"github.com/prodaudit/prodaudit/pkg/audit"
	"github.com/prodaudit/prodaudit/pkg/urls"
)

// DefaultTitle is given to pasted links, which carry no product title.
const DefaultTitle = "Manual Input"

// ParseLinks turns newline-delimited text into queue items, one per
// non-blank line, each titled with title (DefaultTitle if empty).
func ParseLinks(text, title string) []audit.Item {
	if title == "" {
		title = DefaultTitle
	}
	var items []audit.Item
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, audit.Item{Title: title, URL: urls.Normalize(line)})
	}
	return items
}

// ItemsFromRows builds queue items from a header row and data rows. Rows
// shorter than the header read missing cells as empty; fully blank rows are
// skipped.
func ItemsFromRows(headers []string, rows [][]string) []audit.Item {
	cols := ResolveColumns(headers)
	items := make([]audit.Item, 0, len(rows))
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		items = append(items, audit.Item{
			Title:      cell(row, cols.Title),
			URL:        urls.Normalize(cell(row, cols.URL)),
			ExternalID: cell(row, cols.ID),
		})
	}
	return items
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
