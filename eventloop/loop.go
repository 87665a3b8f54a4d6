package eventloop

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/browser-runtime/errors"
)

// Task is a unit of work executed on the loop goroutine.
type Task func() error

// FrameCallback receives the frame id it was scheduled for.
type FrameCallback func(frameID uint32) error

type frame struct {
	id uint32
	fn FrameCallback
}

// Loop is the single-threaded scheduler. Post and Done are safe to call
// from any goroutine; everything else runs on the goroutine that owns Run.
type Loop struct {
	mu     sync.Mutex
	tasks  []Task
	wake   chan struct{}
	closed bool

	frames    []frame
	nextFrame uint32

	pendingAsync int
	maxFrames    int
	logger       *zap.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the loop logger.
func WithLogger(l *zap.Logger) Option {
	return func(lp *Loop) {
		if l != nil {
			lp.logger = l
		}
	}
}

// WithMaxFrames caps how many synthetic frames Run will deliver.
// Zero means no frames run; negative means unlimited.
func WithMaxFrames(n int) Option {
	return func(lp *Loop) { lp.maxFrames = n }
}

// New creates a loop. By default frame delivery is unlimited.
func New(opts ...Option) *Loop {
	lp := &Loop{
		wake:      make(chan struct{}, 1),
		nextFrame: 1,
		maxFrames: -1,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(lp)
	}
	return lp
}

// Post enqueues a microtask. Safe from any goroutine.
func (l *Loop) Post(t Task) {
	if t == nil {
		return
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.tasks = append(l.tasks, t)
	l.mu.Unlock()
	l.signal()
}

// Schedule adapts Post for callers that have no error to report.
func (l *Loop) Schedule(fn func()) {
	l.Post(func() error {
		fn()
		return nil
	})
}

// RequestFrame registers a callback for the next synthetic frame and
// returns its cancellation id. Ids increase and are never reused.
func (l *Loop) RequestFrame(fn FrameCallback) uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextFrame
	l.nextFrame++
	l.frames = append(l.frames, frame{id: id, fn: fn})
	return id
}

// CancelFrame removes a pending frame callback. Unknown ids are a no-op.
func (l *Loop) CancelFrame(id uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, f := range l.frames {
		if f.id == id {
			l.frames = append(l.frames[:i], l.frames[i+1:]...)
			return
		}
	}
}

// AsyncBegin marks one in-flight host operation. The loop will not go
// quiescent while any remain.
func (l *Loop) AsyncBegin() {
	l.mu.Lock()
	l.pendingAsync++
	l.mu.Unlock()
}

// AsyncDone marks one host operation complete, typically right after the
// completion task was posted.
func (l *Loop) AsyncDone() {
	l.mu.Lock()
	if l.pendingAsync > 0 {
		l.pendingAsync--
	}
	l.mu.Unlock()
	l.signal()
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending reports queued microtasks, pending frames, and in-flight async
// operations.
func (l *Loop) Pending() (tasks, frames, asyncs int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks), len(l.frames), l.pendingAsync
}

// Run drains the loop until it is quiescent: no microtasks, no pending
// frames (or the frame cap reached), and no in-flight async work. It
// returns the first task error encountered.
func (l *Loop) Run(ctx context.Context) error {
	framesRun := 0
	for {
		if err := l.drainTasks(ctx); err != nil {
			return err
		}

		batch := l.takeFrameBatch(framesRun)
		if len(batch) > 0 {
			framesRun += len(batch)
			for _, f := range batch {
				if err := ctx.Err(); err != nil {
					return errors.Wrap(errors.PhaseLoop, errors.KindAborted, err, "frame dispatch")
				}
				if f.fn == nil {
					continue
				}
				if err := f.fn(f.id); err != nil {
					return err
				}
			}
			continue
		}

		l.mu.Lock()
		idle := len(l.tasks) == 0 && l.pendingAsync == 0 &&
			(len(l.frames) == 0 || l.frameBudget(framesRun) == 0)
		waitAsync := l.pendingAsync > 0 && len(l.tasks) == 0
		l.mu.Unlock()

		if idle {
			return nil
		}
		if waitAsync {
			select {
			case <-ctx.Done():
				return errors.Wrap(errors.PhaseLoop, errors.KindAborted, ctx.Err(), "waiting for async completion")
			case <-l.wake:
			}
		}
	}
}

func (l *Loop) drainTasks(ctx context.Context) error {
	for {
		l.mu.Lock()
		if len(l.tasks) == 0 {
			l.mu.Unlock()
			return nil
		}
		t := l.tasks[0]
		l.tasks = l.tasks[1:]
		l.mu.Unlock()

		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.PhaseLoop, errors.KindAborted, err, "microtask dispatch")
		}
		if err := t(); err != nil {
			l.logger.Debug("microtask failed", zap.Error(err))
			return err
		}
	}
}

// takeFrameBatch detaches the current frame list so callbacks registered
// during a frame run in the next one, honoring the frame cap.
func (l *Loop) takeFrameBatch(framesRun int) []frame {
	l.mu.Lock()
	defer l.mu.Unlock()
	budget := l.frameBudget(framesRun)
	if budget == 0 || len(l.frames) == 0 {
		return nil
	}
	batch := l.frames
	if budget > 0 && len(batch) > budget {
		batch = batch[:budget]
		l.frames = l.frames[budget:]
	} else {
		l.frames = nil
	}
	return batch
}

// frameBudget returns how many more frames may run, or -1 for unlimited.
func (l *Loop) frameBudget(framesRun int) int {
	if l.maxFrames < 0 {
		return -1
	}
	rem := l.maxFrames - framesRun
	if rem < 0 {
		return 0
	}
	return rem
}

// Close rejects further Posts and wakes any waiter.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.signal()
}
