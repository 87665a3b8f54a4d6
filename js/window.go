package js

import (
	"github.com/wippyai/browser-runtime/dom"
	"github.com/wippyai/browser-runtime/errors"
)

// Window is the global object. It exposes the document plus whatever host
// functions the runtime defines on it (fetch, requestAnimationFrame, alert).
// Unknown property writes land in a plain bag so guests can stash globals.
type Window struct {
	doc  *DocumentRef
	bag  *Object
	fns  map[string]*Func
	keys []string
}

// NewWindow creates a window over a document.
func NewWindow(doc *dom.Document) *Window {
	return &Window{
		doc: &DocumentRef{Doc: doc},
		bag: NewObject(),
		fns: make(map[string]*Func),
	}
}

func (w *Window) Kind() Kind { return KindWindow }

// Document returns the document reference.
func (w *Window) Document() *DocumentRef { return w.doc }

// Define registers a host function as a window property.
func (w *Window) Define(name string, f *Func) {
	if _, ok := w.fns[name]; !ok {
		w.keys = append(w.keys, name)
	}
	w.fns[name] = f
}

// Prop resolves window properties: document, self/window, host functions,
// then the writable bag.
func (w *Window) Prop(name string) (Value, bool) {
	switch name {
	case "document":
		return w.doc, true
	case "window", "self", "globalThis":
		return w, true
	}
	if f, ok := w.fns[name]; ok {
		return f, true
	}
	return w.bag.Prop(name)
}

// SetProp writes into the global bag. Built-in names are not assignable.
func (w *Window) SetProp(name string, v Value) error {
	switch name {
	case "document", "window", "self", "globalThis":
		return errors.InvalidInput(errors.PhaseABI, "cannot assign window."+name)
	}
	return w.bag.SetProp(name, v)
}

// DocumentRef exposes a dom.Document as a JS value.
type DocumentRef struct {
	Doc *dom.Document
}

func (d *DocumentRef) Kind() Kind { return KindDocument }

// Prop resolves document methods and properties. Methods are unbound where
// the browser API allows calling them on elements (appendChild in particular
// is fetched off document and invoked with an element as this).
func (d *DocumentRef) Prop(name string) (Value, bool) {
	switch name {
	case "createElement":
		return NewFunc("createElement", func(_ Value, args []Value) (Value, error) {
			tag, err := argString(args, 0, "createElement", "tag")
			if err != nil {
				return nil, err
			}
			return &ElementRef{El: d.Doc.CreateElement(tag)}, nil
		}), true

	case "getElementById":
		return NewFunc("getElementById", func(_ Value, args []Value) (Value, error) {
			id, err := argString(args, 0, "getElementById", "id")
			if err != nil {
				return nil, err
			}
			el := d.Doc.GetElementByID(id)
			if el == nil {
				return Null, nil
			}
			return &ElementRef{El: el}, nil
		}), true

	case "querySelector":
		return NewFunc("querySelector", func(_ Value, args []Value) (Value, error) {
			q, err := argString(args, 0, "querySelector", "selector")
			if err != nil {
				return nil, err
			}
			el, err := d.Doc.QuerySelector(q)
			if err != nil {
				return nil, err
			}
			if el == nil {
				return Null, nil
			}
			return &ElementRef{El: el}, nil
		}), true

	case "appendChild":
		// Unbound on purpose: this selects the parent element.
		return NewFunc("appendChild", appendChild), true

	case "removeChild":
		return NewFunc("removeChild", removeChild), true

	case "body":
		body := d.Doc.Body()
		if body == nil {
			return Null, true
		}
		return &ElementRef{El: body}, true
	}
	return nil, false
}

// ElementRef exposes a dom.Element as a JS value. Property reads resolve
// element methods first, then fall back to attributes; property writes set
// attributes (img.set_prop("src", ...) in the original surface).
type ElementRef struct {
	El *dom.Element
}

func (e *ElementRef) Kind() Kind { return KindElement }

func (e *ElementRef) Prop(name string) (Value, bool) {
	switch name {
	case "tagName":
		return String(e.El.Tag()), true
	case "id":
		return String(e.El.ID()), true
	case "textContent":
		return String(e.El.Text()), true
	case "appendChild":
		return NewFunc("appendChild", appendChild), true
	case "removeChild":
		return NewFunc("removeChild", removeChild), true
	case "parentElement":
		p := e.El.Parent()
		if p == nil {
			return Null, true
		}
		return &ElementRef{El: p}, true
	case "setAttribute":
		return NewFunc("setAttribute", func(this Value, args []Value) (Value, error) {
			target, err := thisElement(this, e, "setAttribute")
			if err != nil {
				return nil, err
			}
			key, err := argString(args, 0, "setAttribute", "name")
			if err != nil {
				return nil, err
			}
			if len(args) < 2 {
				return nil, errors.InvalidInput(errors.PhaseABI, "setAttribute: missing value")
			}
			target.El.SetAttribute(key, ToString(args[1]))
			return Undefined, nil
		}), true
	case "getAttribute":
		return NewFunc("getAttribute", func(this Value, args []Value) (Value, error) {
			target, err := thisElement(this, e, "getAttribute")
			if err != nil {
				return nil, err
			}
			key, err := argString(args, 0, "getAttribute", "name")
			if err != nil {
				return nil, err
			}
			val, ok := target.El.GetAttribute(key)
			if !ok {
				return Null, nil
			}
			return String(val), nil
		}), true
	case "querySelector":
		return NewFunc("querySelector", func(this Value, args []Value) (Value, error) {
			target, err := thisElement(this, e, "querySelector")
			if err != nil {
				return nil, err
			}
			q, err := argString(args, 0, "querySelector", "selector")
			if err != nil {
				return nil, err
			}
			el, err := target.El.QuerySelector(q)
			if err != nil {
				return nil, err
			}
			if el == nil {
				return Null, nil
			}
			return &ElementRef{El: el}, nil
		}), true
	}

	if val, ok := e.El.GetAttribute(name); ok {
		return String(val), true
	}
	return nil, false
}

// SetProp writes an attribute.
func (e *ElementRef) SetProp(name string, v Value) error {
	switch v.Kind() {
	case KindString, KindNumber, KindBool:
		e.El.SetAttribute(name, ToString(v))
		return nil
	case KindNull, KindUndefined:
		e.El.RemoveAttribute(name)
		return nil
	default:
		return errors.TypeMismatch(errors.PhaseABI, "string attribute value", v.Kind().String())
	}
}

// appendChild appends args[0] to the element given as this.
func appendChild(this Value, args []Value) (Value, error) {
	parent, ok := this.(*ElementRef)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseDOM, "element as this for appendChild", this.Kind().String())
	}
	if len(args) < 1 {
		return nil, errors.InvalidInput(errors.PhaseDOM, "appendChild: missing child")
	}
	child, ok := args[0].(*ElementRef)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseDOM, "element child", args[0].Kind().String())
	}
	if err := parent.El.AppendChild(child.El); err != nil {
		return nil, err
	}
	return args[0], nil
}

func removeChild(this Value, args []Value) (Value, error) {
	parent, ok := this.(*ElementRef)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseDOM, "element as this for removeChild", this.Kind().String())
	}
	if len(args) < 1 {
		return nil, errors.InvalidInput(errors.PhaseDOM, "removeChild: missing child")
	}
	child, ok := args[0].(*ElementRef)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseDOM, "element child", args[0].Kind().String())
	}
	if err := parent.El.RemoveChild(child.El); err != nil {
		return nil, err
	}
	return args[0], nil
}

// thisElement resolves this for element methods, defaulting to the element
// the method was fetched from when this is undefined or null.
func thisElement(this Value, fallback *ElementRef, op string) (*ElementRef, error) {
	switch t := this.(type) {
	case *ElementRef:
		return t, nil
	case undefinedValue, nullValue:
		return fallback, nil
	default:
		return nil, errors.TypeMismatch(errors.PhaseDOM, "element as this for "+op, this.Kind().String())
	}
}

func argString(args []Value, i int, op, name string) (string, error) {
	if i >= len(args) {
		return "", errors.InvalidInput(errors.PhaseABI, op+": missing "+name)
	}
	s, ok := args[i].(String)
	if !ok {
		return "", errors.TypeMismatch(errors.PhaseABI, "string "+name, args[i].Kind().String())
	}
	return string(s), nil
}
