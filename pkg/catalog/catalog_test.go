package catalog

import (
	"bytes"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestFieldsShape(t *testing.T) {
	fs := Fields()
	if len(fs) != 20 {
		t.Fatalf("expected 20 fields, got %d", len(fs))
	}

	seen := make(map[string]bool)
	for _, f := range fs {
		if seen[f.Name] {
			t.Errorf("duplicate field name %q", f.Name)
		}
		seen[f.Name] = true
		if len(f.Candidates) == 0 {
			t.Errorf("field %q has no candidates", f.Name)
		}
	}

	if fs[0].Name != "Allergen Info" || fs[len(fs)-1].Name != "Product description" {
		t.Fatalf("unexpected catalog order: first=%q last=%q", fs[0].Name, fs[len(fs)-1].Name)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"Expiry (y/n)", Boolean},
		{"Hazmat(y/n)", Boolean},
		{"Something (Y/N)", Boolean},
		{"Ingredients list", Text},
		{"Age Range", Text},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.name); got != tc.want {
				t.Fatalf("KindOf(%q) = %v, want %v", tc.name, got, tc.want)
			}
		})
	}

	var booleans []string
	for _, f := range Fields() {
		if f.Kind == Boolean {
			booleans = append(booleans, f.Name)
		}
	}
	if strings.Join(booleans, ",") != "Expiry (y/n),Hazmat(y/n)" {
		t.Fatalf("unexpected boolean fields: %v", booleans)
	}
}

func TestFieldsReturnsCopy(t *testing.T) {
	fs := Fields()
	fs[0].Candidates[0] = "mutated"
	fs[0].Name = "mutated"

	again := Fields()
	if again[0].Name != "Allergen Info" || again[0].Candidates[0] != "Allergen" {
		t.Fatalf("catalog was mutated through Fields(): %+v", again[0])
	}
}

func TestLookup(t *testing.T) {
	f, ok := Lookup(IngredientsList)
	if !ok || f.Kind != Text || f.Candidates[0] != "Ingredients" {
		t.Fatalf("unexpected lookup result: %+v ok=%v", f, ok)
	}
	if _, ok := Lookup("nope"); ok {
		t.Fatal("expected lookup of unknown field to fail")
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteYAML(&buf); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	var doc struct {
		Fields []yamlField `yaml:"fields"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("yaml output does not parse: %v", err)
	}
	if len(doc.Fields) != len(Names()) {
		t.Fatalf("expected %d fields in yaml, got %d", len(Names()), len(doc.Fields))
	}
	if doc.Fields[2].Name != "Expiry (y/n)" || doc.Fields[2].Kind != "boolean" {
		t.Fatalf("unexpected third field: %+v", doc.Fields[2])
	}
}
