// Package extract locates specification values inside a rendered product page.
package extract

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Page is a parsed, rendered product page.
type Page struct {
	doc   *goquery.Document
	text  string
	lower string
}

// ParsePage parses rendered HTML read from r. Scripting is off while
// parsing, so the contents of <noscript> are elements rather than raw text.
func ParsePage(r io.Reader) (*Page, error) {
	root, err := html.ParseWithOptions(r, html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, err
	}
	doc := goquery.NewDocumentFromNode(root)
	p := &Page{doc: doc}
	if len(doc.Nodes) > 0 {
		p.text = visibleText(doc.Nodes[0], "")
	}
	p.lower = strings.ToLower(p.text)
	return p, nil
}

// ParseHTML is ParsePage for an in-memory document.
func ParseHTML(s string) (*Page, error) {
	return ParsePage(strings.NewReader(s))
}

// Text returns the concatenated text content of the page.
func (p *Page) Text() string { return p.text }

// LowerText returns Text lowercased.
func (p *Page) LowerText() string { return p.lower }

// ImageCount counts <img> elements anywhere in the document.
func (p *Page) ImageCount() int {
	return p.doc.Find("img").Length()
}

func (p *Page) root() *html.Node {
	if len(p.doc.Nodes) == 0 {
		return nil
	}
	return p.doc.Nodes[0]
}

// Text inside these elements is never shown to a shopper.
var hiddenElements = map[string]bool{
	"script":   true,
	"style":    true,
	"template": true,
}

func isHidden(n *html.Node) bool {
	return n.Type == html.ElementNode && hiddenElements[n.Data]
}

// visibleText joins every visible text node under n with sep.
func visibleText(n *html.Node, sep string) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if isHidden(n) {
			return
		}
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, sep)
}
