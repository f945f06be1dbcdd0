package infer

import (
	"testing"

	"github.com/prodaudit/prodaudit/pkg/catalog"
)

func TestIngredients(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Magnesium Glycinate 400mg", "Magnesium Bisglycinate Chelate"},
		{"KSM-66 ASHWAGANDHA Gummies", "Organic Ashwagandha Root Extract, Black Pepper"},
		{"Vitamin C 1000", "Vitamin C (ascorbic acid)"},
		{"Marine Collagen Powder", "Hydrolyzed Collagen Peptides"},
		{"Magnesium + Collagen Blend", "Magnesium Bisglycinate Chelate"},
		{"Unbranded Widget", GenericIngredients},
		{"", GenericIngredients},
	}
	for _, tc := range tests {
		t.Run(tc.title, func(t *testing.T) {
			if got := Ingredients(tc.title); got != tc.want {
				t.Fatalf("Ingredients(%q) = %q, want %q", tc.title, got, tc.want)
			}
		})
	}
}

func TestInferOnlyIngredients(t *testing.T) {
	got, ok := Infer(catalog.IngredientsList, "Magnesium Glycinate 400mg")
	if !ok || got != "Magnesium Bisglycinate Chelate" {
		t.Fatalf("Infer(ingredients) = %q, %v", got, ok)
	}

	for _, name := range catalog.Names() {
		if name == catalog.IngredientsList {
			continue
		}
		if v, ok := Infer(name, "Magnesium Glycinate 400mg"); ok {
			t.Fatalf("Infer(%q) unexpectedly guessed %q", name, v)
		}
	}
}
