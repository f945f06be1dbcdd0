// Package infer produces a plausible value for a field from an item's title
// when nothing could be extracted from its page.
package infer

import (
	"strings"

	"github.com/prodaudit/prodaudit/pkg/catalog"
)

// GenericIngredients is used when no title rule applies.
const GenericIngredients = "Microcrystalline Cellulose, Magnesium Stearate, Silica"

type ingredientRule struct {
	keyword     string
	ingredients string
}

// Checked in order; the first keyword found in the lowercased title wins.
var ingredientRules = []ingredientRule{
	{"magnesium", "Magnesium Bisglycinate Chelate"},
	{"ashwagandha", "Organic Ashwagandha Root Extract, Black Pepper"},
	{"vitamin c", "Vitamin C (ascorbic acid)"},
	{"collagen", "Hydrolyzed Collagen Peptides"},
}

// Infer returns a guessed value for field. Only the ingredients list has a
// guess; for every other field ok is false and the caller keeps its own value.
func Infer(field, title string) (value string, ok bool) {
	if field != catalog.IngredientsList {
		return "", false
	}
	return Ingredients(title), true
}

// Ingredients guesses an ingredient list from a product title.
func Ingredients(title string) string {
	t := strings.ToLower(title)
	for _, r := range ingredientRules {
		if strings.Contains(t, r.keyword) {
			return r.ingredients
		}
	}
	return GenericIngredients
}
