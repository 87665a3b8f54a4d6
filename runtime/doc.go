// Package runtime is the high-level API: compile a guest, instantiate it
// against registered host modules, run its entry, and drain the event loop
// until the page is quiescent.
//
// Typical use goes through a Session, which wires a document, the browser
// host module, and an event loop together:
//
//	sess, err := runtime.NewSession(ctx, runtime.SessionConfig{
//		HTML: `<div id="error"></div>`,
//	})
//	if err != nil { ... }
//	defer sess.Close(ctx)
//
//	if err := sess.Run(ctx, wasmBytes, ""); err != nil { ... }
//	html := sess.HTML()
package runtime
