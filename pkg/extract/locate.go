package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const (
	// NotFound is the value recorded when a text field cannot be extracted.
	NotFound = "Not Found"

	// MaxValueLength caps an extracted value, in characters.
	MaxValueLength = 400

	// Values of this many characters or fewer are treated as noise.
	shortValueLength = 2
)

// Locate looks for the first candidate label, in declared order, that occurs
// as a whole word (case-insensitive) in a visible text node of the page. The
// value is the text of the first element that follows that text node in
// document order. Once a label matches, later labels are not tried, even if
// the value turns out empty.
func Locate(p *Page, candidates []string) string {
	root := p.root()
	if root == nil {
		return NotFound
	}

	for _, c := range candidates {
		re, err := labelPattern(c)
		if err != nil {
			continue
		}
		node := findText(root, re)
		if node == nil {
			continue
		}
		var raw string
		if next := nextElement(node); next != nil {
			raw = elementText(next)
		}
		return normalizeValue(raw)
	}
	return NotFound
}

func labelPattern(label string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)\b` + regexp.QuoteMeta(label) + `\b`)
}

// findText returns the first visible text node matching re, in document order.
func findText(n *html.Node, re *regexp.Regexp) *html.Node {
	if isHidden(n) {
		return nil
	}
	if n.Type == html.TextNode {
		if re.MatchString(n.Data) {
			return n
		}
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findText(c, re); found != nil {
			return found
		}
	}
	return nil
}

// nextElement returns the first element after n in document order, skipping
// n's own subtree and hidden elements.
func nextElement(n *html.Node) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		for s := cur.NextSibling; s != nil; s = s.NextSibling {
			if s.Type == html.ElementNode && !isHidden(s) {
				return s
			}
		}
	}
	return nil
}

// elementText is the element's visible text with every fragment trimmed and
// the fragments joined without a separator.
func elementText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if isHidden(n) {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func normalizeValue(raw string) string {
	raw = strings.TrimSpace(raw)
	if utf8.RuneCountInString(raw) <= shortValueLength {
		return NotFound
	}
	return truncate(raw, MaxValueLength)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
