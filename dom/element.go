package dom

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"

	"github.com/wippyai/browser-runtime/errors"
)

// Element wraps a single element node of a Document.
type Element struct {
	n   *html.Node
	doc *Document
}

// Tag returns the lower-cased tag name.
func (e *Element) Tag() string {
	return e.n.Data
}

// Document returns the owning document.
func (e *Element) Document() *Document {
	return e.doc
}

// ID returns the id attribute.
func (e *Element) ID() string {
	return attrValue(e.n, "id")
}

// GetAttribute returns the attribute value and whether it is present.
func (e *Element) GetAttribute(key string) (string, bool) {
	key = strings.ToLower(key)
	for _, a := range e.n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttribute sets or replaces an attribute, preserving attribute order.
func (e *Element) SetAttribute(key, value string) {
	key = strings.ToLower(key)
	for i, a := range e.n.Attr {
		if a.Key == key {
			e.n.Attr[i].Val = value
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: key, Val: value})
}

// RemoveAttribute deletes an attribute if present.
func (e *Element) RemoveAttribute(key string) {
	key = strings.ToLower(key)
	for i, a := range e.n.Attr {
		if a.Key == key {
			e.n.Attr = append(e.n.Attr[:i], e.n.Attr[i+1:]...)
			return
		}
	}
}

// Attributes returns the attributes in document order.
func (e *Element) Attributes() []html.Attribute {
	out := make([]html.Attribute, len(e.n.Attr))
	copy(out, e.n.Attr)
	return out
}

// Parent returns the parent element, or nil for detached or top-level nodes.
func (e *Element) Parent() *Element {
	p := e.n.Parent
	for p != nil && p.Type != html.ElementNode {
		p = p.Parent
	}
	if p == nil {
		return nil
	}
	return &Element{n: p, doc: e.doc}
}

// Children returns the element children in document order.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, &Element{n: c, doc: e.doc})
		}
	}
	return out
}

// AppendChild attaches child as the last child of e. A child that already has
// a parent is moved. Appending an element to itself or to one of its own
// descendants fails.
func (e *Element) AppendChild(child *Element) error {
	if child == nil || child.n == nil {
		return errors.InvalidInput(errors.PhaseDOM, "appendChild: nil child")
	}
	for n := e.n; n != nil; n = n.Parent {
		if n == child.n {
			return errors.New(errors.PhaseDOM, errors.KindCycle).
				Path("appendChild").
				Detail("node cannot contain itself").
				Build()
		}
	}
	if child.n.Parent != nil {
		child.n.Parent.RemoveChild(child.n)
	}
	e.n.AppendChild(child.n)
	return nil
}

// RemoveChild detaches child from e.
func (e *Element) RemoveChild(child *Element) error {
	if child == nil || child.n == nil || child.n.Parent != e.n {
		return errors.InvalidInput(errors.PhaseDOM, "removeChild: node is not a child")
	}
	e.n.RemoveChild(child.n)
	return nil
}

// Text returns the concatenated text content of the subtree.
func (e *Element) Text() string {
	var b strings.Builder
	walk(e.n, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		return true
	})
	return b.String()
}

// SetText replaces all children with a single text node.
func (e *Element) SetText(text string) {
	for e.n.FirstChild != nil {
		e.n.RemoveChild(e.n.FirstChild)
	}
	e.n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// QuerySelector searches the subtree rooted at e.
func (e *Element) QuerySelector(query string) (*Element, error) {
	sel, err := parseSelector(query)
	if err != nil {
		return nil, err
	}
	n := sel.first(e.n)
	if n == nil {
		return nil, nil
	}
	return &Element{n: n, doc: e.doc}, nil
}

// OuterHTML serializes the element subtree.
func (e *Element) OuterHTML() string {
	var buf bytes.Buffer
	_ = html.Render(&buf, e.n)
	return buf.String()
}

// Same reports whether two Element wrappers denote the same node.
func (e *Element) Same(other *Element) bool {
	return other != nil && e.n == other.n
}
