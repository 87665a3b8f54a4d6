// Package eventloop runs the single-threaded task queue that guest-visible
// callbacks execute on. Microtasks drain before each synthetic animation
// frame, and the loop stays alive while async host work (fetch) is in
// flight, waking when a completion is posted from another goroutine.
package eventloop
