// Package guest emits core WebAssembly modules programmatically: imports
// from a host namespace, one local memory with data segments, and exported
// functions with straight-line bodies. It exists so examples and end-to-end
// tests can produce guests without a toolchain, and it carries the built-in
// demo that drives the browser bindings.
package guest
