package ai

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var allowedTags = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true,
	atom.P: true, atom.Ul: true, atom.Ol: true, atom.Li: true,
	atom.Strong: true, atom.Em: true,
	atom.Section: true, atom.Div: true, atom.Span: true,
}

// Only these elements may keep a class attribute.
var classTags = map[atom.Atom]bool{atom.Div: true, atom.Section: true, atom.Span: true}

// Elements dropped together with their content.
var droppedTags = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Textarea: true,
	atom.Option: true, atom.Noscript: true, atom.Iframe: true,
}

// SanitizeHTML keeps the allow-listed formatting tags and unwraps every other
// element, so generated HTML can be rendered by the client as is.
func SanitizeHTML(raw string) (string, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(StripFences(raw)), ctx)
	if err != nil {
		return "", fmt.Errorf("%w: unparsable HTML: %v", ErrUpstreamFormat, err)
	}
	var b strings.Builder
	for _, n := range nodes {
		writeNode(&b, n)
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", fmt.Errorf("%w: empty HTML", ErrUpstreamFormat)
	}
	return out, nil
}

func writeNode(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(html.EscapeString(n.Data))
		return
	case html.ElementNode:
	default:
		return
	}

	if droppedTags[n.DataAtom] {
		return
	}
	keep := allowedTags[n.DataAtom]
	if keep {
		b.WriteByte('<')
		b.WriteString(n.Data)
		if classTags[n.DataAtom] {
			for _, a := range n.Attr {
				if a.Namespace == "" && a.Key == "class" {
					b.WriteString(` class="`)
					b.WriteString(html.EscapeString(a.Val))
					b.WriteByte('"')
				}
			}
		}
		b.WriteByte('>')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeNode(b, c)
	}
	if keep {
		b.WriteString("</")
		b.WriteString(n.Data)
		b.WriteByte('>')
	}
}
