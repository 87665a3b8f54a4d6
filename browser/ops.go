package browser

import (
	"context"

	"github.com/wippyai/browser-runtime/engine"
	"github.com/wippyai/browser-runtime/errors"
	"github.com/wippyai/browser-runtime/fetch"
	"github.com/wippyai/browser-runtime/js"
	"github.com/wippyai/browser-runtime/resource"
)

// invalidKind is what value_kind returns for a dead handle.
const invalidKind = ^uint32(0)

func (h *Host) stringNew(mem engine.Memory, ptr, length uint32) uint32 {
	s, err := engine.ReadString(mem, ptr, length)
	if err != nil {
		return h.fail(err)
	}
	return uint32(h.handle(js.String(s)))
}

func (h *Host) stringLen(raw uint32) uint32 {
	v, ok := h.value(raw)
	if !ok {
		return h.fail(errors.InvalidHandle(errors.PhaseABI, "string", raw))
	}
	s, ok := v.(js.String)
	if !ok {
		return h.fail(errors.TypeMismatch(errors.PhaseABI, "string", v.Kind().String()))
	}
	return uint32(len(s))
}

// stringRead copies min(cap, len) bytes of the string into guest memory and
// returns the count copied.
func (h *Host) stringRead(mem engine.Memory, raw, ptr, capacity uint32) uint32 {
	v, ok := h.value(raw)
	if !ok {
		return h.fail(errors.InvalidHandle(errors.PhaseABI, "string", raw))
	}
	s, ok := v.(js.String)
	if !ok {
		return h.fail(errors.TypeMismatch(errors.PhaseABI, "string", v.Kind().String()))
	}
	n := uint32(len(s))
	if capacity < n {
		n = capacity
	}
	if n == 0 {
		return 0
	}
	if err := engine.WriteBytes(mem, ptr, []byte(s)[:n]); err != nil {
		return h.fail(err)
	}
	return n
}

func (h *Host) numberNew(f float64) uint32 {
	return uint32(h.handle(js.Number(f)))
}

func (h *Host) numberValue(raw uint32) float64 {
	v, ok := h.value(raw)
	if !ok {
		h.fail(errors.InvalidHandle(errors.PhaseABI, "number", raw))
		return 0
	}
	n, ok := v.(js.Number)
	if !ok {
		h.fail(errors.TypeMismatch(errors.PhaseABI, "number", v.Kind().String()))
		return 0
	}
	return float64(n)
}

func (h *Host) objectNew() uint32 {
	return uint32(h.handle(js.NewObject()))
}

func (h *Host) windowHandle() uint32 {
	return uint32(h.handle(h.window))
}

// getProp resolves a property. An unknown name yields the undefined handle,
// not 0: absence is a value, failure is not.
func (h *Host) getProp(mem engine.Memory, obj, namePtr, nameLen uint32) uint32 {
	v, ok := h.value(obj)
	if !ok {
		return h.fail(errors.InvalidHandle(errors.PhaseABI, "object", obj))
	}
	name, err := engine.ReadString(mem, namePtr, nameLen)
	if err != nil {
		return h.fail(err)
	}
	getter, ok := v.(js.Getter)
	if !ok {
		return h.fail(errors.TypeMismatch(errors.PhaseABI, "object with properties", v.Kind().String()))
	}
	prop, ok := getter.Prop(name)
	if !ok {
		return uint32(h.undefinedH)
	}
	return uint32(h.handle(prop))
}

func (h *Host) setProp(mem engine.Memory, obj, namePtr, nameLen, val uint32) uint32 {
	target, ok := h.value(obj)
	if !ok {
		return h.failErrno(errors.InvalidHandle(errors.PhaseABI, "object", obj))
	}
	v, ok := h.value(val)
	if !ok {
		return h.failErrno(errors.InvalidHandle(errors.PhaseABI, "value", val))
	}
	name, err := engine.ReadString(mem, namePtr, nameLen)
	if err != nil {
		return h.failErrno(err)
	}
	setter, ok := target.(js.Setter)
	if !ok {
		return h.failErrno(errors.TypeMismatch(errors.PhaseABI, "assignable object", target.Kind().String()))
	}
	if err := setter.SetProp(name, v); err != nil {
		return h.failErrno(err)
	}
	return 0
}

// call invokes fn with this and a packed u32 argument array.
func (h *Host) call(mem engine.Memory, fn, this, argvPtr, argc uint32) uint32 {
	fnVal, ok := h.value(fn)
	if !ok {
		return h.fail(errors.InvalidHandle(errors.PhaseABI, "function", fn))
	}
	thisVal, ok := h.value(this)
	if !ok {
		return h.fail(errors.InvalidHandle(errors.PhaseABI, "this", this))
	}
	rawArgs, err := engine.ReadHandles(mem, argvPtr, argc)
	if err != nil {
		return h.fail(err)
	}
	args := make([]js.Value, len(rawArgs))
	for i, raw := range rawArgs {
		v, ok := h.value(raw)
		if !ok {
			return h.fail(errors.InvalidHandle(errors.PhaseABI, "argument", raw))
		}
		args[i] = v
	}
	out, err := js.Call(fnVal, thisVal, args)
	if err != nil {
		return h.fail(err)
	}
	return uint32(h.handle(out))
}

func (h *Host) valueKind(raw uint32) uint32 {
	v, ok := h.value(raw)
	if !ok {
		h.fail(errors.InvalidHandle(errors.PhaseABI, "value", raw))
		return invalidKind
	}
	return uint32(v.Kind())
}

// drop retires a handle. The fixed undefined/null handles survive drops.
func (h *Host) drop(raw uint32) {
	hd := resource.Handle(raw)
	if hd == h.undefinedH || hd == h.nullH {
		return
	}
	h.values.Remove(hd)
}

// lastError copies the recorded message into guest memory and returns the
// bytes written. The message stays until the next failure overwrites it.
func (h *Host) lastError(mem engine.Memory, ptr, capacity uint32) uint32 {
	msg := h.lastErr
	n := uint32(len(msg))
	if capacity < n {
		n = capacity
	}
	if n == 0 {
		return 0
	}
	if err := engine.WriteBytes(mem, ptr, []byte(msg)[:n]); err != nil {
		return 0
	}
	return n
}

// fetchOp starts a request from handle-level arguments and returns the
// promise handle.
func (h *Host) fetchOp(ctx context.Context, urlH, optsH uint32) uint32 {
	urlVal, ok := h.value(urlH)
	if !ok {
		return h.fail(errors.InvalidHandle(errors.PhaseFetch, "url", urlH))
	}
	url, ok := urlVal.(js.String)
	if !ok {
		return h.fail(errors.TypeMismatch(errors.PhaseFetch, "string url", urlVal.Kind().String()))
	}
	var optsVal js.Value = js.Undefined
	if optsH != 0 {
		optsVal, ok = h.value(optsH)
		if !ok {
			return h.fail(errors.InvalidHandle(errors.PhaseFetch, "options", optsH))
		}
	}
	opts, err := fetch.OptionsFromValue(optsVal)
	if err != nil {
		return h.fail(err)
	}
	p := h.client.Fetch(ctx, h.loop, string(url), opts)
	return uint32(h.handle(p))
}

// promiseThen chains guest callbacks onto a promise. Callback id 0 means
// absent; the returned handle is the derived promise.
func (h *Host) promiseThen(promiseH, onFulfillCb, onRejectCb uint32) uint32 {
	v, ok := h.value(promiseH)
	if !ok {
		return h.fail(errors.InvalidHandle(errors.PhaseLoop, "promise", promiseH))
	}
	p, ok := v.(*js.Promise)
	if !ok {
		return h.fail(errors.TypeMismatch(errors.PhaseLoop, "promise", v.Kind().String()))
	}
	next := p.Then(h.guestCallback(onFulfillCb), h.guestCallback(onRejectCb))
	return uint32(h.handle(next))
}

// requestAnimationFrame schedules a guest callback for the next synthetic
// frame. The callback receives a number handle carrying the timestamp.
func (h *Host) requestAnimationFrame(callbackID uint32) uint32 {
	if callbackID == 0 {
		return h.fail(errors.InvalidInput(errors.PhaseLoop, "callback id 0"))
	}
	return h.loop.RequestFrame(func(frameID uint32) error {
		return h.invokeGuest(callbackID, frameTimestamp(frameID))
	})
}

func (h *Host) cancelAnimationFrame(frameID uint32) {
	h.loop.CancelFrame(frameID)
}
