// Package batch builds the audit queue from pasted links and uploaded
// tabular files.
package batch

import "strings"

// Columns holds the resolved column indexes of a tabular file. An index of
// -1 means the column is absent.
type Columns struct {
	ID    int
	Title int
	URL   int
}

// columnRule resolves one logical column: the first header (in file order)
// containing any alias, case-insensitively, wins; otherwise fallback is used
// when the file has that many columns.
type columnRule struct {
	aliases  []string
	fallback int
}

var (
	idRule    = columnRule{aliases: []string{"upc", "asin", "gtin", "id"}, fallback: 0}
	titleRule = columnRule{aliases: []string{"title", "name"}, fallback: 1}
	urlRule   = columnRule{aliases: []string{"link", "url", "website"}, fallback: -1}
)

// ResolveColumns maps headers onto the ID, title and URL columns.
func ResolveColumns(headers []string) Columns {
	cols := Columns{
		ID:    idRule.resolve(headers),
		Title: titleRule.resolve(headers),
		URL:   urlRule.resolve(headers),
	}
	// A single-column file has no second column to fall back to.
	if cols.Title == -1 && len(headers) > 0 {
		cols.Title = 0
	}
	return cols
}

func (r columnRule) resolve(headers []string) int {
	for i, h := range headers {
		h = strings.ToLower(h)
		for _, a := range r.aliases {
			if strings.Contains(h, a) {
				return i
			}
		}
	}
	if r.fallback >= 0 && r.fallback < len(headers) {
		return r.fallback
	}
	return -1
}
