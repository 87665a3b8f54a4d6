// Package browserruntime hosts WebAssembly guests against a browser-like
// binding surface: a host-owned DOM, a JS value model addressed by handles,
// fetch, promises, and synthetic animation frames.
//
// # Architecture Overview
//
// The library is organized into packages with distinct responsibilities:
//
//	browser-runtime/     Root package documentation
//	├── runtime/         High-level API: sessions, modules, instances
//	├── engine/          Low-level wazero integration and guest memory access
//	├── browser/         The "browser" host module (handle-based wire ABI)
//	├── js/              Host-side JS value model (window, elements, promises)
//	├── dom/             Host-owned document tree over golang.org/x/net/html
//	├── eventloop/       Single-threaded microtask and frame scheduler
//	├── fetch/           Outgoing HTTP with promise settlement
//	├── guest/           Programmatic core-module builder and the demo guest
//	├── resource/        Handle table implementation
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Run a guest against a page and read back the mutated document:
//
//	sess, err := runtime.NewSession(ctx, runtime.SessionConfig{
//	    HTML: `<div id="error"></div>`,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Close(ctx)
//
//	if err := sess.Run(ctx, wasmBytes, ""); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(sess.HTML())
//
// Guests import functions from the "browser" namespace. Values never cross
// the boundary directly: every string, number, object, element, and promise
// lives in a host-side table and is addressed by a uint32 handle. Handle 1
// is always undefined and handle 2 is always null. Failed operations return
// handle 0 (or errno 1) and record a message readable via last_error; they
// never trap the guest.
package browserruntime
