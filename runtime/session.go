package runtime

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/browser-runtime/browser"
	"github.com/wippyai/browser-runtime/dom"
	"github.com/wippyai/browser-runtime/engine"
	"github.com/wippyai/browser-runtime/eventloop"
	"github.com/wippyai/browser-runtime/fetch"
)

// defaultHTML is the page a Session starts from when none is given.
const defaultHTML = `<!DOCTYPE html><html><head></head><body></body></html>`

// SessionConfig wires one document, one event loop, and one browser host.
type SessionConfig struct {
	// HTML is the initial document. Empty means a bare page.
	HTML string
	// Fetch bounds outgoing requests.
	Fetch fetch.Config
	// MaxFrames caps synthetic animation frames per Run. Negative means
	// unlimited; the zero value delivers no frames.
	MaxFrames int
	// MemoryLimitPages caps guest memory (64KB pages); 0 is wazero's default.
	MemoryLimitPages uint32
	// Logger defaults to a nop logger.
	Logger *zap.Logger
}

// Session is the one-call wiring of the browser runtime.
type Session struct {
	Runtime  *Runtime
	Loop     *eventloop.Loop
	Host     *browser.Host
	Document *dom.Document
}

// NewSession builds a runtime with the browser host module registered.
func NewSession(ctx context.Context, cfg SessionConfig) (*Session, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	html := cfg.HTML
	if html == "" {
		html = defaultHTML
	}
	doc, err := dom.ParseString(html)
	if err != nil {
		return nil, err
	}

	loop := eventloop.New(
		eventloop.WithLogger(logger.Named("loop")),
		eventloop.WithMaxFrames(cfg.MaxFrames),
	)
	host := browser.NewHost(doc, loop,
		browser.WithLogger(logger.Named("browser")),
		browser.WithFetchClient(fetch.NewClient(cfg.Fetch, fetch.WithLogger(logger.Named("fetch")))),
	)

	rt, err := New(ctx, &engine.Config{MemoryLimitPages: cfg.MemoryLimitPages},
		WithLogger(logger.Named("runtime")))
	if err != nil {
		return nil, err
	}
	if err := rt.RegisterHost(ctx, host); err != nil {
		rt.Close(ctx)
		return nil, err
	}

	return &Session{
		Runtime:  rt,
		Loop:     loop,
		Host:     host,
		Document: doc,
	}, nil
}

// Run loads the guest, binds its callback export, and runs it to
// quiescence. Entry "" tries "run" then "_start".
func (s *Session) Run(ctx context.Context, wasmBytes []byte, entry string) error {
	mod, err := s.Runtime.Load(ctx, wasmBytes)
	if err != nil {
		return err
	}
	defer mod.Close(ctx)

	inst, err := mod.Instantiate(ctx, "guest")
	if err != nil {
		return err
	}
	defer inst.Close(ctx)

	if err := inst.BindBrowser(s.Host); err != nil {
		return err
	}
	return inst.Run(ctx, entry)
}

// HTML serializes the current document.
func (s *Session) HTML() string {
	return s.Document.HTML()
}

// Close tears down the runtime, loop, and value table.
func (s *Session) Close(ctx context.Context) error {
	s.Loop.Close()
	if err := s.Host.Close(); err != nil {
		return err
	}
	return s.Runtime.Close(ctx)
}
