// Package audit turns queued products into audit records by running every
// catalog field against the product's rendered page.
package audit

// Provenance tells where a record's values came from.
type Provenance string

const (
	// Scraped values were read from the page.
	Scraped Provenance = "Scraped"
	// Guessed values were inferred from the item's title.
	Guessed Provenance = "Guessed"
	// Fallback marks a record whose page could not be fetched or parsed.
	Fallback Provenance = "Fallback"
)

// Item is one product queued for auditing. URL and ExternalID may be empty.
type Item struct {
	Title      string
	URL        string
	ExternalID string
}

// Record is the audit result for one Item.
type Record struct {
	ItemName   string
	Brand      string
	Retailer   string
	ExternalID string
	SourceURL  string

	// Fields holds one value per extracted field. After a successful fetch it
	// has an entry for every catalog field; otherwise only the guessed ones.
	Fields map[string]string
	// FieldSources records, per field, whether the value was scraped or guessed.
	FieldSources map[string]Provenance
	// Provenance summarizes the record: Fallback if the fetch failed,
	// Guessed if any field was guessed, Scraped otherwise.
	Provenance Provenance

	// Fetched is true when extraction ran against a fetched page, which is
	// the only case where ImagesFound is meaningful.
	Fetched     bool
	ImagesFound int
}

// Value returns a field's value and whether the record has it.
func (r Record) Value(field string) (string, bool) {
	v, ok := r.Fields[field]
	return v, ok
}

// summarize computes the provenance of a record built from a fetched page.
func summarize(sources map[string]Provenance) Provenance {
	for _, p := range sources {
		if p == Guessed {
			return Guessed
		}
	}
	return Scraped
}
