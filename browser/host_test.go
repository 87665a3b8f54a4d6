package browser

import (
	"context"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wippyai/browser-runtime/dom"
	"github.com/wippyai/browser-runtime/eventloop"
	"github.com/wippyai/browser-runtime/fetch"
	"github.com/wippyai/browser-runtime/js"
	"github.com/wippyai/browser-runtime/resource"
)

type fakeMemory struct {
	data []byte
}

func newFakeMemory(size int) *fakeMemory {
	return &fakeMemory{data: make([]byte, size)}
}

func (m *fakeMemory) Read(offset, byteCount uint32) ([]byte, bool) {
	if uint64(offset)+uint64(byteCount) > uint64(len(m.data)) {
		return nil, false
	}
	return m.data[offset : offset+byteCount], true
}

func (m *fakeMemory) Write(offset uint32, v []byte) bool {
	if uint64(offset)+uint64(len(v)) > uint64(len(m.data)) {
		return false
	}
	copy(m.data[offset:], v)
	return true
}

func (m *fakeMemory) ReadUint32Le(offset uint32) (uint32, bool) {
	b, ok := m.Read(offset, 4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

func (m *fakeMemory) WriteUint32Le(offset uint32, v uint32) bool {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return m.Write(offset, b[:])
}

type testHost struct {
	*Host
	mem  *fakeMemory
	loop *eventloop.Loop
	next uint32 // scratch memory cursor
}

func newTestHost(t *testing.T, opts ...Option) *testHost {
	t.Helper()
	doc, err := dom.ParseString(`<!DOCTYPE html><html><head></head><body><div id="error"></div></body></html>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	loop := eventloop.New()
	return &testHost{
		Host: NewHost(doc, loop, opts...),
		mem:  newFakeMemory(4096),
		loop: loop,
		next: 16,
	}
}

// str places s in fake guest memory and creates its string handle.
func (th *testHost) str(t *testing.T, s string) uint32 {
	t.Helper()
	ptr := th.next
	th.next += uint32(len(s)) + 8
	if !th.mem.Write(ptr, []byte(s)) {
		t.Fatalf("scratch memory exhausted")
	}
	h := th.stringNew(th.mem, ptr, uint32(len(s)))
	if h == 0 {
		t.Fatalf("string_new(%q) failed: %s", s, th.LastError())
	}
	return h
}

// prop runs get_prop with a name placed in guest memory.
func (th *testHost) prop(t *testing.T, obj uint32, name string) uint32 {
	t.Helper()
	ptr := th.next
	th.next += uint32(len(name)) + 8
	th.mem.Write(ptr, []byte(name))
	return th.getProp(th.mem, obj, ptr, uint32(len(name)))
}

// callFn packs args into guest memory and runs call.
func (th *testHost) callFn(fn, this uint32, args ...uint32) uint32 {
	argv := th.next
	th.next += uint32(len(args))*4 + 8
	for i, a := range args {
		th.mem.WriteUint32Le(argv+uint32(i)*4, a)
	}
	return th.call(th.mem, fn, this, argv, uint32(len(args)))
}

func TestStringRoundTrip(t *testing.T) {
	th := newTestHost(t)
	h := th.str(t, "hello world")

	if n := th.stringLen(h); n != 11 {
		t.Fatalf("string_len = %d, want 11", n)
	}

	out := uint32(2048)
	n := th.stringRead(th.mem, h, out, 64)
	if n != 11 {
		t.Fatalf("string_read = %d, want 11", n)
	}
	if got, _ := th.mem.Read(out, n); string(got) != "hello world" {
		t.Fatalf("memory = %q", got)
	}

	// A short buffer truncates and reports the copied count.
	if n := th.stringRead(th.mem, h, out, 5); n != 5 {
		t.Fatalf("truncated read = %d, want 5", n)
	}
}

func TestNumberRoundTrip(t *testing.T) {
	th := newTestHost(t)
	h := th.numberNew(6.25)
	if h == 0 {
		t.Fatal("number_new failed")
	}
	if got := th.numberValue(h); got != 6.25 {
		t.Fatalf("number_value = %v", got)
	}
	if got := th.numberValue(9999); got != 0 || th.LastError() == "" {
		t.Fatalf("dead handle: value %v, err %q", got, th.LastError())
	}
}

func TestInvalidHandleNeverTraps(t *testing.T) {
	th := newTestHost(t)

	if h := th.prop(t, 9999, "document"); h != 0 {
		t.Fatalf("get_prop on dead handle = %d, want 0", h)
	}
	if th.LastError() == "" {
		t.Fatal("last_error empty after failure")
	}

	out := uint32(2048)
	n := th.lastError(th.mem, out, 512)
	if n == 0 {
		t.Fatal("last_error wrote nothing")
	}
	msg, _ := th.mem.Read(out, n)
	if !strings.Contains(string(msg), "not live") {
		t.Fatalf("message = %q", msg)
	}
}

func TestValueKindAndDrop(t *testing.T) {
	th := newTestHost(t)

	win := th.windowHandle()
	if k := th.valueKind(win); k != uint32(js.KindWindow) {
		t.Fatalf("window kind = %d", k)
	}
	s := th.str(t, "x")
	if k := th.valueKind(s); k != uint32(js.KindString) {
		t.Fatalf("string kind = %d", k)
	}

	th.drop(s)
	if k := th.valueKind(s); k != invalidKind {
		t.Fatalf("dropped handle kind = %d, want invalid", k)
	}

	// The fixed undefined/null handles survive drop.
	undef := uint32(th.undefinedH)
	th.drop(undef)
	if k := th.valueKind(undef); k != uint32(js.KindUndefined) {
		t.Fatalf("undefined kind after drop = %d", k)
	}
}

func TestGetPropUnknownIsUndefined(t *testing.T) {
	th := newTestHost(t)
	win := th.windowHandle()
	h := th.prop(t, win, "no_such_thing")
	if h != uint32(th.undefinedH) {
		t.Fatalf("unknown prop handle = %d, want undefined %d", h, th.undefinedH)
	}
}

// TestImageDemoOverABI drives the full snippet through handles only: window,
// document, getElementById("error"), three img creations, set_prop of src,
// appendChild with explicit this.
func TestImageDemoOverABI(t *testing.T) {
	th := newTestHost(t)
	const src = "https://raw.githubusercontent.com/RustPython/RustPython/master/logo.png"

	win := th.windowHandle()
	docH := th.prop(t, win, "document")
	if docH == 0 || th.valueKind(docH) != uint32(js.KindDocument) {
		t.Fatalf("document handle = %d", docH)
	}

	getByID := th.prop(t, docH, "getElementById")
	errDiv := th.callFn(getByID, uint32(th.undefinedH), th.str(t, "error"))
	if errDiv == 0 || th.valueKind(errDiv) != uint32(js.KindElement) {
		t.Fatalf("#error handle = %d: %s", errDiv, th.LastError())
	}

	createElement := th.prop(t, docH, "createElement")
	appendChild := th.prop(t, docH, "appendChild")
	imgTag := th.str(t, "img")
	srcH := th.str(t, src)

	srcName := th.next
	th.next += 16
	th.mem.Write(srcName, []byte("src"))

	for i := 0; i < 3; i++ {
		img := th.callFn(createElement, uint32(th.undefinedH), imgTag)
		if img == 0 {
			t.Fatalf("createElement %d: %s", i, th.LastError())
		}
		if errno := th.setProp(th.mem, img, srcName, 3, srcH); errno != 0 {
			t.Fatalf("set_prop src: %s", th.LastError())
		}
		if out := th.callFn(appendChild, errDiv, img); out == 0 {
			t.Fatalf("appendChild %d: %s", i, th.LastError())
		}
	}

	div := th.Window().Document().Doc.GetElementByID("error")
	kids := div.Children()
	if len(kids) != 3 {
		t.Fatalf("children = %d, want 3", len(kids))
	}
	for _, k := range kids {
		if got, _ := k.GetAttribute("src"); k.Tag() != "img" || got != src {
			t.Fatalf("child = <%s src=%q>", k.Tag(), got)
		}
	}
}

func TestCallNonFunction(t *testing.T) {
	th := newTestHost(t)
	s := th.str(t, "x")
	if out := th.callFn(s, uint32(th.undefinedH)); out != 0 {
		t.Fatalf("calling a string = %d, want 0", out)
	}
	if !strings.Contains(th.LastError(), "not_callable") && !strings.Contains(th.LastError(), "cannot call") {
		t.Fatalf("last_error = %q", th.LastError())
	}
}

func TestPromiseThenDispatchesGuestCallback(t *testing.T) {
	th := newTestHost(t)

	var invoked []uint32
	var got js.Value
	th.SetInvoker(func(cb uint32, value resource.Handle) error {
		invoked = append(invoked, cb)
		v, _ := th.value(uint32(value))
		got = v
		return nil
	})

	p := js.NewPromise(th.loop.Schedule)
	pH := uint32(th.handle(p))

	next := th.promiseThen(pH, 7, 0)
	if next == 0 || th.valueKind(next) != uint32(js.KindPromise) {
		t.Fatalf("derived promise handle = %d", next)
	}

	p.Resolve(js.String("done"))
	if err := th.loop.Run(context.Background()); err != nil {
		t.Fatalf("loop: %v", err)
	}

	if len(invoked) != 1 || invoked[0] != 7 {
		t.Fatalf("invoked = %v, want [7]", invoked)
	}
	if got != js.Value(js.String("done")) {
		t.Fatalf("callback value = %v", got)
	}
}

func TestPromiseThenCallbackZeroPropagates(t *testing.T) {
	th := newTestHost(t)
	var rejectedWith js.Value
	th.SetInvoker(func(cb uint32, value resource.Handle) error {
		v, _ := th.value(uint32(value))
		rejectedWith = v
		return nil
	})

	p := js.NewPromise(th.loop.Schedule)
	pH := uint32(th.handle(p))

	// First link has no reject handler; the second catches.
	mid := th.promiseThen(pH, 0, 0)
	th.promiseThen(mid, 0, 9)

	p.Reject(js.String("bad"))
	if err := th.loop.Run(context.Background()); err != nil {
		t.Fatalf("loop: %v", err)
	}
	if rejectedWith != js.Value(js.String("bad")) {
		t.Fatalf("rejection = %v, want bad", rejectedWith)
	}
}

func TestAnimationFrameCallbacks(t *testing.T) {
	loopOpts := eventloop.WithMaxFrames(2)
	doc, _ := dom.ParseString(`<html><body></body></html>`)
	loop := eventloop.New(loopOpts)
	h := NewHost(doc, loop)

	var frames []uint32
	h.SetInvoker(func(cb uint32, value resource.Handle) error {
		frames = append(frames, cb)
		return nil
	})

	id1 := h.requestAnimationFrame(1)
	id2 := h.requestAnimationFrame(2)
	if id1 == 0 || id2 <= id1 {
		t.Fatalf("frame ids = %d, %d", id1, id2)
	}
	h.cancelAnimationFrame(id2)

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("loop: %v", err)
	}
	if len(frames) != 1 || frames[0] != 1 {
		t.Fatalf("delivered callbacks = %v, want [1]", frames)
	}

	if h.requestAnimationFrame(0) != 0 {
		t.Fatal("callback id 0 should fail")
	}
}

func TestFetchOpEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("body"))
	}))
	defer srv.Close()

	th := newTestHost(t, WithFetchClient(fetch.NewClient(fetch.Config{})))

	var got js.Value
	th.SetInvoker(func(cb uint32, value resource.Handle) error {
		v, _ := th.value(uint32(value))
		got = v
		return nil
	})

	urlH := th.str(t, srv.URL)
	pH := th.fetchOp(context.Background(), urlH, 0)
	if pH == 0 || th.valueKind(pH) != uint32(js.KindPromise) {
		t.Fatalf("fetch promise handle = %d: %s", pH, th.LastError())
	}
	th.promiseThen(pH, 3, 0)

	if err := th.loop.Run(context.Background()); err != nil {
		t.Fatalf("loop: %v", err)
	}
	if got != js.Value(js.String("body")) {
		t.Fatalf("fetched = %v, want body", got)
	}
}
