package extract

import "strings"

const (
	Yes = "Y"
	No  = "N"
)

// ResolveBoolean reports "Y" when any candidate is a substring of the
// lowercased page text and "N" otherwise. Unlike Locate there is no word
// boundary and no adjacency requirement.
func ResolveBoolean(lowerText string, candidates []string) string {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if strings.Contains(lowerText, strings.ToLower(c)) {
			return Yes
		}
	}
	return No
}
