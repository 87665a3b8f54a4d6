package js

import "strconv"

// Array is an ordered list value, produced mainly by JSON decoding.
type Array struct {
	items []Value
}

// NewArray creates an array over the given items.
func NewArray(items ...Value) *Array {
	return &Array{items: items}
}

func (a *Array) Kind() Kind { return KindArray }

// Len returns the element count.
func (a *Array) Len() int { return len(a.items) }

// At returns the element at i, or Undefined when out of range.
func (a *Array) At(i int) Value {
	if i < 0 || i >= len(a.items) {
		return Undefined
	}
	return a.items[i]
}

// Push appends an element.
func (a *Array) Push(v Value) { a.items = append(a.items, v) }

// Prop exposes length and numeric indices.
func (a *Array) Prop(name string) (Value, bool) {
	if name == "length" {
		return Number(len(a.items)), true
	}
	i, err := strconv.Atoi(name)
	if err != nil || i < 0 || i >= len(a.items) {
		return nil, false
	}
	return a.items[i], true
}
