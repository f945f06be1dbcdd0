package extract

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, s string) *Page {
	t.Helper()
	p, err := ParseHTML(s)
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	return p
}

func TestLocate(t *testing.T) {
	long := strings.Repeat("x", 450)

	tests := []struct {
		name       string
		page       string
		candidates []string
		want       string
	}{
		{
			name:       "label followed by sibling value",
			page:       `<div><span>Allergen</span><span>Free from Tree Nuts</span></div>`,
			candidates: []string{"Allergen", "Contains"},
			want:       "Free from Tree Nuts",
		},
		{
			name:       "value in next block when label shares a paragraph",
			page:       `<p>Allergen Free from Tree Nuts</p><p>Made in a facility that handles soy</p>`,
			candidates: []string{"Allergen"},
			want:       "Made in a facility that handles soy",
		},
		{
			name:       "climbs out of the label's parent",
			page:       `<dl><dt><b>Flavor</b></dt><dd> Unflavored </dd></dl>`,
			candidates: []string{"Flavor"},
			want:       "Unflavored",
		},
		{
			name:       "case insensitive",
			page:       `<h3>DIRECTIONS</h3><p>Take two capsules daily</p>`,
			candidates: []string{"Directions"},
			want:       "Take two capsules daily",
		},
		{
			name:       "whole word only",
			page:       `<p>Mentholated</p><p>some value</p>`,
			candidates: []string{"Men"},
			want:       NotFound,
		},
		{
			name:       "no candidate present",
			page:       `<p>Nothing relevant here</p><p>at all</p>`,
			candidates: []string{"CPSIA", "Choking Hazard", "Small parts"},
			want:       NotFound,
		},
		{
			name:       "short value is not found",
			page:       `<span>Flavor</span><span>NA</span>`,
			candidates: []string{"Flavor"},
			want:       NotFound,
		},
		{
			name:       "first matching candidate wins even with empty value",
			page:       `<p>Taste</p><p>Chocolate</p><div><span>Flavor</span></div>`,
			candidates: []string{"Flavor", "Taste"},
			want:       NotFound,
		},
		{
			name:       "declared order beats document order",
			page:       `<p>Taste</p><p>Chocolate</p><p>Flavor</p><p>Vanilla</p>`,
			candidates: []string{"Flavor", "Taste"},
			want:       "Vanilla",
		},
		{
			name:       "long values truncated",
			page:       `<span>Description</span><p>` + long + `</p>`,
			candidates: []string{"Description"},
			want:       long[:MaxValueLength],
		},
		{
			name:       "script text is ignored",
			page:       `<script>var Flavor = "x";</script><span>Flavor</span><span>Berry Blast</span>`,
			candidates: []string{"Flavor"},
			want:       "Berry Blast",
		},
		{
			name:       "noscript content is visible",
			page:       `<span>Flavor</span><noscript><span>Vanilla Bean</span></noscript>`,
			candidates: []string{"Flavor"},
			want:       "Vanilla Bean",
		},
		{
			name:       "hidden next element is skipped",
			page:       `<span>Flavor</span><style>.a{}</style><span>Lemon</span>`,
			candidates: []string{"Flavor"},
			want:       "Lemon",
		},
		{
			name:       "fragments joined without separator",
			page:       `<span>Servings</span><div> 60 <b> servings </b></div>`,
			candidates: []string{"Servings"},
			want:       "60servings",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Locate(mustParse(t, tc.page), tc.candidates)
			if got != tc.want {
				t.Fatalf("Locate() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLocateTruncatesRunes(t *testing.T) {
	long := strings.Repeat("é", 500)
	got := Locate(mustParse(t, `<span>Description</span><p>`+long+`</p>`), []string{"Description"})
	if n := len([]rune(got)); n != MaxValueLength {
		t.Fatalf("expected %d runes, got %d", MaxValueLength, n)
	}
}

func TestResolveBoolean(t *testing.T) {
	p := mustParse(t, `<p>Contains FLAMMABLE propellant.</p>`)

	tests := []struct {
		name       string
		candidates []string
		want       string
	}{
		{"first candidate present", []string{"Flammable"}, Yes},
		{"later candidate present", []string{"Hazmat", "Flammable", "Dangerous Goods"}, Yes},
		{"substring not whole word", []string{"flamm"}, Yes},
		{"absent", []string{"Expiry", "Expiration", "EXP Date"}, No},
		{"no candidates", nil, No},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveBoolean(p.LowerText(), tc.candidates); got != tc.want {
				t.Fatalf("ResolveBoolean() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPageText(t *testing.T) {
	p := mustParse(t, `<html><head><title>Bar</title><style>body{}</style></head>
<body><h1>Protein</h1><img src="a.png"><div><img src="b.png"></div><noscript><p>Enable JavaScript</p><img src="c.png"></noscript></body></html>`)

	if strings.Contains(p.Text(), "body{}") {
		t.Fatalf("style text leaked into page text: %q", p.Text())
	}
	if !strings.Contains(p.LowerText(), "protein") || !strings.Contains(p.LowerText(), "bar") {
		t.Fatalf("expected page text to contain title and heading: %q", p.LowerText())
	}
	if !strings.Contains(p.LowerText(), "enable javascript") {
		t.Fatalf("noscript text missing from page text: %q", p.LowerText())
	}
	if strings.Contains(p.Text(), "<p>") {
		t.Fatalf("noscript markup leaked into page text: %q", p.Text())
	}
	// noscript children are real elements, so its image is counted too.
	if got := p.ImageCount(); got != 3 {
		t.Fatalf("ImageCount() = %d, want 3", got)
	}
}
