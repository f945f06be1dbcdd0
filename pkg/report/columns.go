// Package report writes audit records as a single flat table.
package report

import (
	"strconv"

	"github.com/prodaudit/prodaudit/pkg/audit"
	"github.com/prodaudit/prodaudit/pkg/catalog"
)

// Metadata column names.
const (
	ColItemName    = "Item Name"
	ColBrand       = "Brand"
	ColRetailer    = "Retailer"
	ColExternalID  = "External ID"
	ColSourceURL   = "Source URL"
	ColSource      = "Source"
	ColImagesFound = "Images Found"
)

type column struct {
	name    string
	numeric bool
	value   func(audit.Record) (string, bool)
}

func metadataColumns() []column {
	return []column{
		{name: ColItemName, value: func(r audit.Record) (string, bool) { return r.ItemName, true }},
		{name: ColBrand, value: func(r audit.Record) (string, bool) { return r.Brand, true }},
		{name: ColRetailer, value: func(r audit.Record) (string, bool) { return r.Retailer, r.Retailer != "" }},
		{name: ColExternalID, value: func(r audit.Record) (string, bool) { return r.ExternalID, r.ExternalID != "" }},
		{name: ColSourceURL, value: func(r audit.Record) (string, bool) { return r.SourceURL, r.SourceURL != "" }},
		{name: ColSource, value: func(r audit.Record) (string, bool) { return string(r.Provenance), true }},
		{name: ColImagesFound, numeric: true, value: func(r audit.Record) (string, bool) {
			return strconv.Itoa(r.ImagesFound), r.Fetched
		}},
	}
}

func columns() []column {
	cols := metadataColumns()
	for _, name := range catalog.Names() {
		name := name
		cols = append(cols, column{name: name, value: func(r audit.Record) (string, bool) {
			return r.Value(name)
		}})
	}
	return cols
}

// Header returns the column names in report order: metadata first, then
// every catalog field in catalog order.
func Header() []string {
	cols := columns()
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return out
}

// Row renders a record in Header order. Absent values are empty strings.
func Row(rec audit.Record) []string {
	cols := columns()
	out := make([]string, len(cols))
	for i, c := range cols {
		if v, ok := c.value(rec); ok {
			out[i] = v
		}
	}
	return out
}
