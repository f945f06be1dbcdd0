package catalog

import (
	"io"

	"gopkg.in/yaml.v3"
)

type yamlField struct {
	Name       string   `yaml:"name"`
	Kind       string   `yaml:"kind"`
	Candidates []string `yaml:"candidates"`
}

// WriteYAML dumps the catalog to w, one document listing every field.
func WriteYAML(w io.Writer) error {
	out := make([]yamlField, 0, len(fields))
	for _, f := range fields {
		out = append(out, yamlField{Name: f.Name, Kind: f.Kind.String(), Candidates: f.Candidates})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string][]yamlField{"fields": out}); err != nil {
		return err
	}
	return enc.Close()
}
