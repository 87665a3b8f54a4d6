// Package browser implements the "browser" host module guests import. Every
// JS-like value crosses the boundary as a uint32 handle into a value table;
// strings and argument arrays travel through guest linear memory. Failed
// operations never trap the guest: they return handle 0 (or errno 1) and
// record a message retrievable with last_error.
package browser
