package dom

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wippyai/browser-runtime/errors"
)

// Document is the root of a host-side DOM tree.
type Document struct {
	root *html.Node
}

// Parse builds a Document from HTML. Fragments are tolerated: x/net/html
// completes the html/head/body skeleton.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDOM, errors.KindInvalidData, err, "parse HTML")
	}
	return &Document{root: root}, nil
}

// ParseString builds a Document from an HTML string.
func ParseString(src string) (*Document, error) {
	return Parse(strings.NewReader(src))
}

// NewDocument creates an empty document with the standard skeleton.
func NewDocument() *Document {
	doc, err := ParseString("<!DOCTYPE html><html><head></head><body></body></html>")
	if err != nil {
		// The skeleton is constant; Parse cannot fail on it.
		panic(err)
	}
	return doc
}

// CreateElement creates a detached element owned by this document.
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(tag)
	a := atom.Lookup([]byte(tag))
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: a,
	}
	return &Element{n: n, doc: d}
}

// GetElementByID returns the first element with the given id attribute,
// or nil if no such element exists.
func (d *Document) GetElementByID(id string) *Element {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attrValue(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil
	}
	return &Element{n: found, doc: d}
}

// QuerySelector returns the first element matching the selector, or nil.
// Supported selectors: #id, .class, tag, compound tag.class#id forms, and
// descendant combinators ("div .item").
func (d *Document) QuerySelector(query string) (*Element, error) {
	sel, err := parseSelector(query)
	if err != nil {
		return nil, err
	}
	n := sel.first(d.root)
	if n == nil {
		return nil, nil
	}
	return &Element{n: n, doc: d}, nil
}

// QuerySelectorAll returns every element matching the selector in document order.
func (d *Document) QuerySelectorAll(query string) ([]*Element, error) {
	sel, err := parseSelector(query)
	if err != nil {
		return nil, err
	}
	var out []*Element
	for _, n := range sel.all(d.root) {
		out = append(out, &Element{n: n, doc: d})
	}
	return out, nil
}

// Body returns the document body element, or nil for rootless fragments.
func (d *Document) Body() *Element {
	var body *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = n
			return false
		}
		return true
	})
	if body == nil {
		return nil
	}
	return &Element{n: body, doc: d}
}

// Render serializes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	if err := html.Render(w, d.root); err != nil {
		return errors.Wrap(errors.PhaseDOM, errors.KindInvalidData, err, "render HTML")
	}
	return nil
}

// HTML returns the serialized document.
func (d *Document) HTML() string {
	var buf bytes.Buffer
	// bytes.Buffer writes cannot fail
	_ = d.Render(&buf)
	return buf.String()
}

// walk visits n and its descendants in document order until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
