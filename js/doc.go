// Package js models the JavaScript-like values the browser bindings expose to
// guest code: primitives, plain objects, functions, promises, and references
// into the dom package.
//
// Everything the guest touches is a Value. Property access goes through the
// Getter/Setter interfaces; functions are invoked with an explicit this value
// because guests fetch methods off one object and call them on another
// (document.appendChild called with an element as this, for example).
package js
