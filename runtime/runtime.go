package runtime

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/wippyai/browser-runtime/engine"
	"github.com/wippyai/browser-runtime/errors"
)

// Host is the interface for struct-based host modules: a namespace plus the
// wire-level function table exported under it.
type Host interface {
	Namespace() string
	Register() map[string]engine.FuncDef
}

// Runtime owns an engine and the host modules registered into it.
type Runtime struct {
	engine *engine.Engine
	logger *zap.Logger
	stdout io.Writer
	stderr io.Writer
	hosts  map[string]Host
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the runtime logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithStdio routes guest stdout/stderr.
func WithStdio(stdout, stderr io.Writer) Option {
	return func(r *Runtime) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// New creates a runtime with WASI preview1 available to guests.
func New(ctx context.Context, cfg *engine.Config, opts ...Option) (*Runtime, error) {
	eng, err := engine.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := eng.InitWASI(ctx); err != nil {
		eng.Close(ctx)
		return nil, err
	}
	r := &Runtime{
		engine: eng,
		logger: zap.NewNop(),
		hosts:  make(map[string]Host),
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// RegisterHost instantiates a host module into the runtime. Each namespace
// registers once.
func (r *Runtime) RegisterHost(ctx context.Context, h Host) error {
	ns := h.Namespace()
	if _, dup := r.hosts[ns]; dup {
		return errors.Registration(errors.PhaseHost, ns, "", nil)
	}
	if err := r.engine.RegisterHostModule(ctx, ns, h.Register()); err != nil {
		return err
	}
	r.hosts[ns] = h
	r.logger.Debug("host registered", zap.String("namespace", ns))
	return nil
}

// Load compiles guest bytes into a Module.
func (r *Runtime) Load(ctx context.Context, wasmBytes []byte) (*Module, error) {
	compiled, err := r.engine.Compile(ctx, wasmBytes)
	if err != nil {
		return nil, err
	}
	return &Module{runtime: r, compiled: compiled}, nil
}

// Engine exposes the underlying engine.
func (r *Runtime) Engine() *engine.Engine { return r.engine }

// Close tears down the engine and every instance created from it.
func (r *Runtime) Close(ctx context.Context) error {
	return r.engine.Close(ctx)
}
