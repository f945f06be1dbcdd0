// Package catalog holds the fixed set of product-specification fields the
// auditor extracts, together with the label synonyms used to find them.
package catalog

import "strings"

// Kind tells the extractor how a field is resolved.
type Kind int

const (
	// Text fields take the value found next to a matching label.
	Text Kind = iota
	// Boolean fields only record whether any label appears on the page.
	Boolean
)

func (k Kind) String() string {
	switch k {
	case Boolean:
		return "boolean"
	default:
		return "text"
	}
}

// BooleanMarker is the name suffix that makes a field Boolean. A field is
// Boolean if and only if its name contains this marker (case-insensitive);
// KindOf is the only place this rule is applied.
const BooleanMarker = "(y/n)"

// IngredientsList is the one field with a title-based fallback.
const IngredientsList = "Ingredients list"

// FieldSpec describes one extractable attribute. Candidate order matters:
// the first label that matches wins.
type FieldSpec struct {
	Name       string
	Kind       Kind
	Candidates []string
}

var definitions = []struct {
	name       string
	candidates []string
}{
	{"Allergen Info", []string{"Allergen", "Contains", "Free from", "Allergy"}},
	{"Expiration Type", []string{"Expiration Type", "Date Code", "EXP Format"}},
	{"Expiry (y/n)", []string{"Expiry", "Expiration", "EXP Date"}},
	{"Shelf Life", []string{"Shelf life", "Storage", "Duration"}},
	{"CPSIA Warning", []string{"CPSIA", "Choking Hazard", "Small parts"}},
	{"Legal Disclaimer", []string{"Legal disclaimer", "Disclaimer", "FDA Statement"}},
	{"Safety Warning", []string{"Safety Warning", "Warning", "Precautions"}},
	{"Indications", []string{"Indications", "Recommended use"}},
	{"Age Range", []string{"Age Range", "Adults", "Kids", "Children"}},
	{"Item Form", []string{"Item Form", "Format", "Capsule", "Tablet", "Powder"}},
	{"Primary Supplement Type", []string{"Supplement Type", "Main Ingredient"}},
	{"Directions", []string{"Directions", "How to use", "Suggested Use"}},
	{"Flavor", []string{"Flavor", "Taste", "Scent"}},
	{"Target Gender", []string{"Target Gender", "Gender", "Men", "Women"}},
	{"Product Benefits", []string{"Benefits", "Features", "Why use"}},
	{"Specific Uses", []string{"Specific Uses", "Used for"}},
	{IngredientsList, []string{"Ingredients", "Supplement Facts", "Active Ingredients"}},
	{"Days of use", []string{"Days of use", "Supply length", "Servings"}},
	{"Hazmat(y/n)", []string{"Hazmat", "Flammable", "Dangerous Goods"}},
	{"Product description", []string{"Description", "About this item"}},
}

var fields = func() []FieldSpec {
	out := make([]FieldSpec, 0, len(definitions))
	for _, d := range definitions {
		out = append(out, FieldSpec{
			Name:       d.name,
			Kind:       KindOf(d.name),
			Candidates: d.candidates,
		})
	}
	return out
}()

// KindOf derives a field's kind from its name.
func KindOf(name string) Kind {
	if strings.Contains(strings.ToLower(name), BooleanMarker) {
		return Boolean
	}
	return Text
}

// Fields returns the catalog in declaration order. The returned slice is a
// copy; callers may not change the catalog through it.
func Fields() []FieldSpec {
	out := make([]FieldSpec, len(fields))
	for i, f := range fields {
		out[i] = FieldSpec{
			Name:       f.Name,
			Kind:       f.Kind,
			Candidates: append([]string(nil), f.Candidates...),
		}
	}
	return out
}

// Names returns the field names in catalog order.
func Names() []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// Lookup finds a field by exact name.
func Lookup(name string) (FieldSpec, bool) {
	for _, f := range fields {
		if f.Name == name {
			return FieldSpec{Name: f.Name, Kind: f.Kind, Candidates: append([]string(nil), f.Candidates...)}, true
		}
	}
	return FieldSpec{}, false
}
