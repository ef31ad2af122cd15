package snapshot

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"flow_navigator/domain/entities"
)

var skippedAtoms = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
}

var clickableClasses = []string{"clickable", "btn", "button", "card", "Card"}

// ParseHTML - builds the raw node tree of a static document, rooted at <body>.
// Clickability is inferred from markup only since no styles are computed.
func ParseHTML(r io.Reader) (*entities.DOMNode, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	body := findBody(doc)
	if body == nil {
		return nil, nil
	}
	return convert(body), nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func convert(n *html.Node) *entities.DOMNode {
	node := &entities.DOMNode{
		Tag:      strings.ToLower(n.Data),
		Attrs:    make(map[string]string, len(n.Attr)),
		Children: []*entities.DOMNode{},
	}
	for _, a := range n.Attr {
		node.Attrs[a.Key] = a.Val
	}

	var direct strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			direct.WriteString(c.Data)
			direct.WriteByte(' ')
		case html.ElementNode:
			if skippedAtoms[c.DataAtom] {
				continue
			}
			node.Children = append(node.Children, convert(c))
		}
	}

	node.DirectText = collapseSpace(direct.String())
	node.FullText = collapseSpace(textContent(n))
	node.Clickable = isClickable(node)
	return node
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedAtoms[n.DataAtom] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func isClickable(node *entities.DOMNode) bool {
	attrs := node.Attrs
	if _, ok := attrs["onclick"]; ok {
		return true
	}
	if attrs["role"] == "button" || attrs["data-testid"] != "" {
		return true
	}
	if _, ok := attrs["tabindex"]; ok {
		return true
	}
	if strings.Contains(strings.ReplaceAll(attrs["style"], " ", ""), "cursor:pointer") {
		return true
	}
	class := attrs["class"]
	for _, c := range clickableClasses {
		if strings.Contains(class, c) {
			return true
		}
	}
	return false
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
