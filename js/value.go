package js

import (
	"strconv"

	"github.com/wippyai/browser-runtime/errors"
)

// Kind identifies the dynamic type of a Value.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
	KindFunction
	KindElement
	KindDocument
	KindWindow
	KindPromise
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindFunction:
		return "function"
	case KindElement:
		return "element"
	case KindDocument:
		return "document"
	case KindWindow:
		return "window"
	case KindPromise:
		return "promise"
	default:
		return "unknown"
	}
}

// Value is any JS-like value visible to the guest.
type Value interface {
	Kind() Kind
}

// Getter is implemented by values that support property reads.
type Getter interface {
	Prop(name string) (Value, bool)
}

// Setter is implemented by values that support property writes.
type Setter interface {
	SetProp(name string, v Value) error
}

// undefinedValue and nullValue are singletons.
type undefinedValue struct{}
type nullValue struct{}

func (undefinedValue) Kind() Kind { return KindUndefined }
func (nullValue) Kind() Kind      { return KindNull }

// Undefined and Null are the shared singleton values.
var (
	Undefined Value = undefinedValue{}
	Null      Value = nullValue{}
)

// Bool is a boolean value.
type Bool bool

func (Bool) Kind() Kind { return KindBool }

// Number is a float64 value, matching JS number semantics.
type Number float64

func (Number) Kind() Kind { return KindNumber }

// String is a string value.
type String string

func (String) Kind() Kind { return KindString }

// Object is a plain property bag with stable key order.
type Object struct {
	keys  []string
	props map[string]Value
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{props: make(map[string]Value)}
}

func (o *Object) Kind() Kind { return KindObject }

// Prop returns a property value.
func (o *Object) Prop(name string) (Value, bool) {
	v, ok := o.props[name]
	return v, ok
}

// SetProp sets a property, preserving insertion order of keys.
func (o *Object) SetProp(name string, v Value) error {
	if _, ok := o.props[name]; !ok {
		o.keys = append(o.keys, name)
	}
	o.props[name] = v
	return nil
}

// Keys returns property names in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of properties.
func (o *Object) Len() int { return len(o.props) }

// Func is a callable host function. Functions are unbound: callers supply
// this explicitly.
type Func struct {
	name string
	fn   func(this Value, args []Value) (Value, error)
}

// NewFunc creates a named callable.
func NewFunc(name string, fn func(this Value, args []Value) (Value, error)) *Func {
	return &Func{name: name, fn: fn}
}

func (f *Func) Kind() Kind   { return KindFunction }
func (f *Func) Name() string { return f.name }

// Invoke calls the function.
func (f *Func) Invoke(this Value, args []Value) (Value, error) {
	if f.fn == nil {
		return nil, errors.NotCallable("function")
	}
	return f.fn(this, args)
}

// Call invokes v as a function, failing for non-callable kinds.
func Call(v Value, this Value, args []Value) (Value, error) {
	f, ok := v.(*Func)
	if !ok {
		return nil, errors.NotCallable(v.Kind().String())
	}
	return f.Invoke(this, args)
}

// ToString renders a value the way attribute assignment and logging need it.
func ToString(v Value) string {
	switch t := v.(type) {
	case undefinedValue:
		return "undefined"
	case nullValue:
		return "null"
	case Bool:
		if t {
			return "true"
		}
		return "false"
	case Number:
		return strconv.FormatFloat(float64(t), 'f', -1, 64)
	case String:
		return string(t)
	case *Func:
		return "function " + t.name
	case *ElementRef:
		return "<" + t.El.Tag() + ">"
	case *DocumentRef:
		return "[object Document]"
	case *Window:
		return "[object Window]"
	case *Promise:
		return "[object Promise]"
	case *Object:
		return "[object Object]"
	case *Array:
		return "[object Array]"
	default:
		return v.Kind().String()
	}
}

// Truthy reports JS truthiness for condition-like host decisions.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case undefinedValue, nullValue:
		return false
	case Bool:
		return bool(t)
	case Number:
		return t != 0
	case String:
		return t != ""
	default:
		return true
	}
}
