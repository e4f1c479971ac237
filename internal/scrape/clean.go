package scrape

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// invisibleSelector matches subtrees whose text is never shown to readers.
const invisibleSelector = "script, style, noscript, template"

// CleanHTML parses an HTML document, drops invisible subtrees, and returns
// the page title and its visible text with every whitespace run collapsed
// to a single space.
func CleanHTML(r io.Reader) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", "", eris.Wrap(err, "scrape: parse html")
	}

	doc.Find(invisibleSelector).Remove()
	title = collapse(doc.Find("title").First().Text())

	var parts []string
	for _, n := range doc.Nodes {
		collectText(n, &parts)
	}
	return title, collapse(strings.Join(parts, "\n")), nil
}

// collectText appends every text node under n in document order.
func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		*parts = append(*parts, n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// collapse applies NFKC so full-width digits and non-breaking spaces read as
// their ASCII forms, then joins whitespace-separated fields with one space.
func collapse(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}
