package dom

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/wippyai/browser-runtime/errors"
)

// simpleSelector matches a single element: tag, #id and .class parts,
// all optional but at least one present.
type simpleSelector struct {
	tag     string
	id      string
	classes []string
}

// selector is a chain of simple selectors joined by descendant combinators.
type selector struct {
	parts []simpleSelector
}

func parseSelector(query string) (*selector, error) {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return nil, errors.InvalidInput(errors.PhaseDOM, "empty selector")
	}

	sel := &selector{}
	for _, f := range fields {
		s, err := parseSimple(f)
		if err != nil {
			return nil, err
		}
		sel.parts = append(sel.parts, s)
	}
	return sel, nil
}

func parseSimple(s string) (simpleSelector, error) {
	var out simpleSelector
	rest := s
	// Leading tag name runs until the first # or .
	if i := strings.IndexAny(rest, "#."); i != 0 {
		if i < 0 {
			out.tag = strings.ToLower(rest)
			return out, nil
		}
		out.tag = strings.ToLower(rest[:i])
		rest = rest[i:]
	}

	for rest != "" {
		marker := rest[0]
		rest = rest[1:]
		end := strings.IndexAny(rest, "#.")
		var name string
		if end < 0 {
			name, rest = rest, ""
		} else {
			name, rest = rest[:end], rest[end:]
		}
		if name == "" {
			return out, errors.InvalidData(errors.PhaseDOM, []string{"selector"}, "empty #id or .class segment in "+s)
		}
		switch marker {
		case '#':
			out.id = name
		case '.':
			out.classes = append(out.classes, name)
		}
	}
	return out, nil
}

func (s simpleSelector) matches(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if s.tag != "" && n.Data != s.tag {
		return false
	}
	if s.id != "" && attrValue(n, "id") != s.id {
		return false
	}
	if len(s.classes) > 0 {
		have := strings.Fields(attrValue(n, "class"))
		for _, want := range s.classes {
			found := false
			for _, c := range have {
				if c == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

// matchesChain reports whether n matches the final simple selector and has
// ancestors matching the preceding parts in order.
func (sel *selector) matchesChain(n *html.Node) bool {
	last := len(sel.parts) - 1
	if !sel.parts[last].matches(n) {
		return false
	}
	idx := last - 1
	for p := n.Parent; p != nil && idx >= 0; p = p.Parent {
		if sel.parts[idx].matches(p) {
			idx--
		}
	}
	return idx < 0
}

// first returns the first match among strict descendants of root.
func (sel *selector) first(root *html.Node) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if n == root {
			return true
		}
		if sel.matchesChain(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// all returns every match among strict descendants of root in document order.
func (sel *selector) all(root *html.Node) []*html.Node {
	var out []*html.Node
	walk(root, func(n *html.Node) bool {
		if n != root && sel.matchesChain(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}
