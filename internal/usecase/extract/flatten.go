package extract

import (
	"strings"

	"golang.org/x/net/html"
)

var skippedTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "svg": true,
	"iframe": true, "head": true, "template": true,
}

var blockTags = map[string]bool{
	"p": true, "div": true, "tr": true, "li": true, "br": true,
	"table": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"section": true, "article": true, "ul": true, "ol": true,
}

// Flatten renders an HTML snapshot as plain text, dropping non-content
// subtrees and keeping cell and line boundaries as whitespace so that
// label/value adjacency survives. Malformed input falls back to the raw
// string, never an error.
func Flatten(rawHTML string) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockTags[n.Data] {
			b.WriteByte('\n')
		}
	}
	walk(doc)

	return b.String()
}

func looksLikeHTML(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "<html") || strings.Contains(s, "<body") ||
		strings.Contains(s, "<table") || strings.Contains(s, "<div") ||
		strings.Contains(s, "</")
}
