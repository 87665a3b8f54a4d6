package runtime

import (
	"context"
	"strings"
	"testing"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/browser-runtime/browser"
	"github.com/wippyai/browser-runtime/guest"
	"github.com/wippyai/browser-runtime/js"
)

const errorDivPage = `<!DOCTYPE html><html><head></head><body><div id="error"></div></body></html>`

func TestSessionRunsImageDemo(t *testing.T) {
	ctx := context.Background()
	sess, err := NewSession(ctx, SessionConfig{HTML: errorDivPage})
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	defer sess.Close(ctx)

	if err := sess.Run(ctx, guest.BuildImageDemo(), ""); err != nil {
		t.Fatalf("run: %v", err)
	}

	div := sess.Document.GetElementByID("error")
	if div == nil {
		t.Fatal("#error vanished")
	}
	kids := div.Children()
	if len(kids) != guest.ImageCount {
		t.Fatalf("children = %d, want %d", len(kids), guest.ImageCount)
	}
	for _, k := range kids {
		src, _ := k.GetAttribute("src")
		if k.Tag() != "img" || src != guest.LogoURL {
			t.Fatalf("child = <%s src=%q>", k.Tag(), src)
		}
	}

	html := sess.HTML()
	if strings.Count(html, "<img") != guest.ImageCount {
		t.Fatalf("html = %s", html)
	}
}

func TestSessionEntryFallback(t *testing.T) {
	ctx := context.Background()
	sess, err := NewSession(ctx, SessionConfig{})
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	defer sess.Close(ctx)

	// A guest exporting only _start still runs with the default entry.
	b := guest.NewBuilder()
	b.ExportFunc("_start", nil, nil, nil, guest.NewCode().Bytes())
	if err := sess.Run(ctx, b.Build(), ""); err != nil {
		t.Fatalf("run: %v", err)
	}

	if err := sess.Run(ctx, b.Build(), "missing"); err == nil {
		t.Fatal("unknown entry should fail")
	}
}

func TestSessionRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	sess, err := NewSession(ctx, SessionConfig{})
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	defer sess.Close(ctx)

	if err := sess.Run(ctx, []byte("not wasm"), ""); err == nil {
		t.Fatal("garbage module should fail to compile")
	}
	if err := sess.Run(ctx, nil, ""); err == nil {
		t.Fatal("empty module should fail")
	}
}

// TestFrameCallbackRoundTrip runs a guest that schedules an animation frame
// and, when browser_invoke fires, stores the timestamp on the window.
func TestFrameCallbackRoundTrip(t *testing.T) {
	ctx := context.Background()
	sess, err := NewSession(ctx, SessionConfig{MaxFrames: 1})
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	defer sess.Close(ctx)

	i32 := api.ValueTypeI32
	one := []api.ValueType{i32}

	b := guest.NewBuilder()
	fnWindow := b.ImportFunc(browser.Namespace, "window", nil, one)
	fnRaf := b.ImportFunc(browser.Namespace, "request_animation_frame", one, one)
	fnSetProp := b.ImportFunc(browser.Namespace, "set_prop", []api.ValueType{i32, i32, i32, i32}, one)
	b.AddData(0, []byte("ticked"))

	b.ExportFunc("run", nil, nil, nil,
		guest.NewCode().I32Const(1).Call(fnRaf).Drop().Bytes())
	// browser_invoke(cb, value): window.ticked = value
	b.ExportFunc("browser_invoke", []api.ValueType{i32, i32}, nil, one,
		guest.NewCode().
			Call(fnWindow).LocalSet(2).
			LocalGet(2).I32Const(0).I32Const(6).LocalGet(1).Call(fnSetProp).Drop().
			Bytes())

	if err := sess.Run(ctx, b.Build(), ""); err != nil {
		t.Fatalf("run: %v", err)
	}

	v, ok := sess.Host.Window().Prop("ticked")
	if !ok {
		t.Fatal("window.ticked not set by frame callback")
	}
	ts, ok := v.(js.Number)
	if !ok || ts <= 0 {
		t.Fatalf("ticked = %v", v)
	}
}

func TestRegisterHostDuplicateNamespace(t *testing.T) {
	ctx := context.Background()
	sess, err := NewSession(ctx, SessionConfig{})
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	defer sess.Close(ctx)

	// The session already registered the browser namespace.
	if err := sess.Runtime.RegisterHost(ctx, sess.Host); err == nil {
		t.Fatal("duplicate namespace should fail")
	}
}
