package htmldoc

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Document wraps a parsed HTML tree and exposes read-only queries.
// Checkers share one Document per audit; nothing mutates the tree after Parse.
type Document struct {
	root *html.Node
}

// Parse reads and parses an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString parses HTML from a string. Mostly useful in tests.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document root node.
func (d *Document) Root() *html.Node {
	return d.root
}

// FindAll returns all element nodes matching any of the given tag names,
// in document order.
func (d *Document) FindAll(tags ...string) []*html.Node {
	want := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		want[strings.ToLower(t)] = struct{}{}
	}
	var out []*html.Node
	walk(d.root, func(n *html.Node) {
		if n.Type == html.ElementNode {
			if _, ok := want[n.Data]; ok {
				out = append(out, n)
			}
		}
	})
	return out
}

// First returns the first element with the given tag name, or nil.
func (d *Document) First(tag string) *html.Node {
	tag = strings.ToLower(tag)
	var found *html.Node
	walk(d.root, func(n *html.Node) {
		if found == nil && n.Type == html.ElementNode && n.Data == tag {
			found = n
		}
	})
	return found
}

// FindLabelFor returns the first label element whose "for" attribute
// references the given id, or nil.
func (d *Document) FindLabelFor(id string) *html.Node {
	if id == "" {
		return nil
	}
	var found *html.Node
	walk(d.root, func(n *html.Node) {
		if found != nil || n.Type != html.ElementNode || n.Data != "label" {
			return
		}
		if v, ok := Attr(n, "for"); ok && v == id {
			found = n
		}
	})
	return found
}

// WithInlineColor returns all elements whose inline style attribute mentions
// a color property, in document order.
func (d *Document) WithInlineColor() []*html.Node {
	var out []*html.Node
	walk(d.root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		if style, ok := Attr(n, "style"); ok && strings.Contains(strings.ToLower(style), "color") {
			out = append(out, n)
		}
	})
	return out
}

// Attr returns an attribute value and whether the attribute is present.
func Attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns an attribute value or the fallback when absent.
func AttrOr(n *html.Node, name, fallback string) string {
	if v, ok := Attr(n, name); ok {
		return v
	}
	return fallback
}

// Text returns the concatenated text content of a node and its descendants.
func Text(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return b.String()
}

// HasAncestor reports whether any ancestor of n is an element with the given tag.
func HasAncestor(n *html.Node, tag string) bool {
	tag = strings.ToLower(tag)
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == tag {
			return true
		}
	}
	return false
}

// ContainsTag reports whether n has a descendant element with the given tag.
func ContainsTag(n *html.Node, tag string) bool {
	tag = strings.ToLower(tag)
	found := false
	walk(n, func(c *html.Node) {
		if c != n && c.Type == html.ElementNode && c.Data == tag {
			found = true
		}
	})
	return found
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}
