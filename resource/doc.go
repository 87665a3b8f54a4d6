// Package resource implements the handle table shared by the browser host modules.
//
// Every value that crosses the guest boundary (strings, numbers, objects,
// elements, promises) is stored here and referenced by an opaque uint32 Handle.
// Handle 0 is reserved and always invalid. Slots are recycled through a free
// list, so handle values are stable only for the lifetime of the resource.
//
// Values implementing Dropper are cleaned up when removed or when the table
// closes. Observers can subscribe to lifecycle events, which the runtime uses
// for debug logging of handle churn.
package resource
