// Package sanitize cleans user-supplied text before it is stored.
package sanitize

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Text strips HTML markup from s, decodes entities, collapses runs of
// whitespace and trims the result. Plain text passes through unchanged
// apart from whitespace normalisation.
func Text(s string) string {
	if s == "" {
		return ""
	}
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
	}

	// ParseFragment keeps a bare "<" that does not open a tag as text.
	nodes, err := html.ParseFragment(strings.NewReader(s), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		s = html.UnescapeString(tagPattern.ReplaceAllString(s, " "))
		return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
	}

	var buf strings.Builder
	for _, n := range nodes {
		writeText(n, &buf)
	}
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(buf.String(), " "))
}

// Name cleans a record name. Names are compared byte for byte afterwards,
// so casing is left alone.
func Name(s string) string {
	return Text(s)
}

func writeText(n *html.Node, buf *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(n.Data)
	case html.ElementNode:
		switch n.Data {
		case "script", "style":
			return
		case "p", "div", "br", "li", "h1", "h2", "h3", "h4", "h5", "h6":
			buf.WriteString(" ")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(c, buf)
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6":
			buf.WriteString(" ")
		}
	}
}
