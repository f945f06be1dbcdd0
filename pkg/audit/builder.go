package audit

import (
	"github.com/prodaudit/prodaudit/pkg/catalog"
	"github.com/prodaudit/prodaudit/pkg/extract"
	"github.com/prodaudit/prodaudit/pkg/infer"
	"github.com/prodaudit/prodaudit/pkg/urls"
)

// Builder assembles audit records. It holds no per-item state, so building
// the same item against the same page always yields an equal record.
type Builder struct {
	fields []catalog.FieldSpec
	brand  string
}

// NewBuilder returns a Builder that stamps every record with brand.
func NewBuilder(brand string) *Builder {
	return &Builder{fields: catalog.Fields(), brand: brand}
}

// Build extracts every catalog field from page. Boolean fields are resolved
// by presence anywhere on the page, text fields by label proximity. A text
// field that is not found keeps "Not Found" unless the inferencer has a
// guess for it, in which case the guess is used and tagged Guessed.
func (b *Builder) Build(item Item, page *extract.Page) Record {
	rec := b.base(item)
	rec.Fields = make(map[string]string, len(b.fields))
	rec.FieldSources = make(map[string]Provenance, len(b.fields))
	rec.Fetched = true
	rec.ImagesFound = page.ImageCount()

	lower := page.LowerText()
	for _, f := range b.fields {
		if f.Kind == catalog.Boolean {
			rec.Fields[f.Name] = extract.ResolveBoolean(lower, f.Candidates)
			rec.FieldSources[f.Name] = Scraped
			continue
		}

		value := extract.Locate(page, f.Candidates)
		source := Scraped
		if value == extract.NotFound {
			if guess, ok := infer.Infer(f.Name, item.Title); ok {
				value, source = guess, Guessed
			}
		}
		rec.Fields[f.Name] = value
		rec.FieldSources[f.Name] = source
	}

	rec.Provenance = summarize(rec.FieldSources)
	return rec
}

// Fallback is the record for an item whose page could not be fetched or
// parsed: only the guessed ingredients list is present.
func (b *Builder) Fallback(item Item) Record {
	rec := b.guessOnly(item)
	rec.Provenance = Fallback
	return rec
}

// Unfetched is the record for an item queued without a URL.
func (b *Builder) Unfetched(item Item) Record {
	rec := b.guessOnly(item)
	rec.Provenance = Guessed
	return rec
}

func (b *Builder) guessOnly(item Item) Record {
	rec := b.base(item)
	rec.Fields = map[string]string{catalog.IngredientsList: infer.Ingredients(item.Title)}
	rec.FieldSources = map[string]Provenance{catalog.IngredientsList: Guessed}
	return rec
}

func (b *Builder) base(item Item) Record {
	return Record{
		ItemName:   item.Title,
		Brand:      b.brand,
		Retailer:   urls.RetailerDomain(item.URL),
		ExternalID: item.ExternalID,
		SourceURL:  item.URL,
	}
}
