// Package fetch is the host HTTP client behind the browser fetch binding.
// Requests run off the event loop on their own goroutine and settle a
// promise through the loop, so guest-visible callbacks stay single-threaded.
package fetch
