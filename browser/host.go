package browser

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/browser-runtime/dom"
	"github.com/wippyai/browser-runtime/errors"
	"github.com/wippyai/browser-runtime/eventloop"
	"github.com/wippyai/browser-runtime/fetch"
	"github.com/wippyai/browser-runtime/js"
	"github.com/wippyai/browser-runtime/resource"
)

// Namespace is the import module name guests use.
const Namespace = "browser"

// typeValue tags every entry in the value table.
const typeValue uint32 = 1

// framesPerSecond fixes the synthetic frame timestamp step.
const framesPerSecond = 60.0

// Fixed handles guests may hardcode: they are the first two table entries
// and drop never retires them.
const (
	HandleUndefined resource.Handle = 1
	HandleNull      resource.Handle = 2
)

// Invoker dispatches a guest callback: the runtime binds it to the guest's
// browser_invoke export after instantiation.
type Invoker func(callbackID uint32, value resource.Handle) error

// Host owns the value table and implements every browser import.
type Host struct {
	values *resource.UnifiedTable
	window *js.Window
	loop   *eventloop.Loop
	client *fetch.Client
	logger *zap.Logger

	undefinedH resource.Handle
	nullH      resource.Handle

	invoke  Invoker
	lastErr string
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the host logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithFetchClient overrides the HTTP client, mainly for tests and for
// carrying CLI fetch limits.
func WithFetchClient(c *fetch.Client) Option {
	return func(h *Host) {
		if c != nil {
			h.client = c
		}
	}
}

// NewHost creates the host module over a document and event loop.
func NewHost(doc *dom.Document, loop *eventloop.Loop, opts ...Option) *Host {
	h := &Host{
		values: resource.NewTable(),
		window: js.NewWindow(doc),
		loop:   loop,
		client: fetch.NewClient(fetch.Config{}),
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(h)
	}

	// Fixed handles: guests rely on these never moving.
	h.undefinedH = h.values.Insert(typeValue, js.Undefined)
	h.nullH = h.values.Insert(typeValue, js.Null)
	if h.undefinedH != HandleUndefined || h.nullH != HandleNull {
		panic("browser: fixed handle layout violated")
	}

	h.defineWindowBindings()
	return h
}

// Namespace implements the host registration contract.
func (h *Host) Namespace() string { return Namespace }

// SetInvoker binds guest callback dispatch. Until set, promise_then and
// request_animation_frame callbacks fail when delivered.
func (h *Host) SetInvoker(inv Invoker) { h.invoke = inv }

// Window returns the global object guests see.
func (h *Host) Window() *js.Window { return h.window }

// Loop returns the event loop the host schedules on.
func (h *Host) Loop() *eventloop.Loop { return h.loop }

// LastError returns the message recorded by the most recent failed op.
func (h *Host) LastError() string { return h.lastErr }

// Close drops every live value.
func (h *Host) Close() error { return h.values.Close() }

// handle interns a value into the table. Undefined and null map to their
// fixed handles so drop never retires them.
func (h *Host) handle(v js.Value) resource.Handle {
	if v == nil {
		return h.undefinedH
	}
	switch v.Kind() {
	case js.KindUndefined:
		return h.undefinedH
	case js.KindNull:
		return h.nullH
	}
	return h.values.Insert(typeValue, v)
}

// value resolves a guest handle.
func (h *Host) value(raw uint32) (js.Value, bool) {
	v, ok := h.values.Get(resource.Handle(raw))
	if !ok {
		return nil, false
	}
	jsv, ok := v.(js.Value)
	return jsv, ok
}

// fail records the error and returns the invalid handle.
func (h *Host) fail(err error) uint32 {
	h.lastErr = err.Error()
	h.logger.Debug("browser op failed", zap.Error(err))
	return 0
}

// failErrno records the error and returns errno 1.
func (h *Host) failErrno(err error) uint32 {
	h.fail(err)
	return 1
}

func (h *Host) invokeGuest(callbackID uint32, value js.Value) error {
	if h.invoke == nil {
		return errors.NotInitialized(errors.PhaseLoop, "guest callback dispatch")
	}
	return h.invoke(callbackID, h.handle(value))
}

// guestCallback wraps a guest callback id as a host function. Id 0 means
// no callback.
func (h *Host) guestCallback(callbackID uint32) *js.Func {
	if callbackID == 0 {
		return nil
	}
	return js.NewFunc("guest_callback", func(_ js.Value, args []js.Value) (js.Value, error) {
		v := js.Undefined
		if len(args) > 0 {
			v = args[0]
		}
		return js.Undefined, h.invokeGuest(callbackID, v)
	})
}

// defineWindowBindings installs the host functions reachable through
// get_prop on the window: alert, fetch, and the frame scheduling pair.
// These take js values, the handle-level ABI wrappers live in ops.go.
func (h *Host) defineWindowBindings() {
	h.window.Define("alert", js.NewFunc("alert", func(_ js.Value, args []js.Value) (js.Value, error) {
		msg := ""
		if len(args) > 0 {
			msg = js.ToString(args[0])
		}
		h.logger.Info("alert", zap.String("message", msg))
		return js.Undefined, nil
	}))

	h.window.Define("fetch", js.NewFunc("fetch", func(_ js.Value, args []js.Value) (js.Value, error) {
		if len(args) < 1 {
			return nil, errors.InvalidInput(errors.PhaseFetch, "fetch: missing url")
		}
		url, ok := args[0].(js.String)
		if !ok {
			return nil, errors.TypeMismatch(errors.PhaseFetch, "string url", args[0].Kind().String())
		}
		var optsVal js.Value = js.Undefined
		if len(args) > 1 {
			optsVal = args[1]
		}
		opts, err := fetch.OptionsFromValue(optsVal)
		if err != nil {
			return nil, err
		}
		return h.client.Fetch(context.Background(), h.loop, string(url), opts), nil
	}))

	h.window.Define("requestAnimationFrame", js.NewFunc("requestAnimationFrame", func(_ js.Value, args []js.Value) (js.Value, error) {
		if len(args) < 1 {
			return nil, errors.InvalidInput(errors.PhaseLoop, "requestAnimationFrame: missing callback")
		}
		fn, ok := args[0].(*js.Func)
		if !ok {
			return nil, errors.NotCallable(args[0].Kind().String())
		}
		id := h.loop.RequestFrame(func(frameID uint32) error {
			_, err := fn.Invoke(js.Undefined, []js.Value{frameTimestamp(frameID)})
			return err
		})
		return js.Number(id), nil
	}))

	h.window.Define("cancelAnimationFrame", js.NewFunc("cancelAnimationFrame", func(_ js.Value, args []js.Value) (js.Value, error) {
		if len(args) < 1 {
			return nil, errors.InvalidInput(errors.PhaseLoop, "cancelAnimationFrame: missing id")
		}
		id, ok := args[0].(js.Number)
		if !ok {
			return nil, errors.TypeMismatch(errors.PhaseLoop, "numeric frame id", args[0].Kind().String())
		}
		h.loop.CancelFrame(uint32(id))
		return js.Undefined, nil
	}))
}

func frameTimestamp(frameID uint32) js.Number {
	return js.Number(float64(frameID) * (1000.0 / framesPerSecond))
}
