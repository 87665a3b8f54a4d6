package engine

import (
	"context"
	"io"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/wippyai/browser-runtime/errors"
)

// Config holds configuration for engine creation.
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages
	// (64KB each). 0 means wazero's default (65536 pages = 4GB).
	MemoryLimitPages uint32
}

// Engine wraps a wazero runtime for core-module guests.
type Engine struct {
	runtime      wazero.Runtime
	wasiInitMu   sync.Mutex
	wasiInitDone atomic.Bool
}

// New creates an engine with defaults.
func New(ctx context.Context) (*Engine, error) {
	return NewWithConfig(ctx, nil)
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(ctx context.Context, cfg *Config) (*Engine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	return &Engine{
		runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
	}, nil
}

// Runtime exposes the underlying wazero runtime.
func (e *Engine) Runtime() wazero.Runtime { return e.runtime }

// InitWASI instantiates the WASI preview1 singleton so guests get stdio.
// Safe for concurrent calls from multiple modules sharing the same engine.
func (e *Engine) InitWASI(ctx context.Context) error {
	if e.wasiInitDone.Load() {
		return nil
	}

	e.wasiInitMu.Lock()
	defer e.wasiInitMu.Unlock()

	if e.wasiInitDone.Load() {
		return nil
	}
	if e.runtime.Module(wasi_snapshot_preview1.ModuleName) != nil {
		e.wasiInitDone.Store(true)
		return nil
	}

	builder := e.runtime.NewHostModuleBuilder(wasi_snapshot_preview1.ModuleName)
	wasi_snapshot_preview1.NewFunctionExporter().ExportFunctions(builder)
	if _, err := builder.Instantiate(ctx); err != nil {
		return errors.Wrap(errors.PhaseHost, errors.KindInstantiation, err, "instantiate WASI")
	}

	e.wasiInitDone.Store(true)
	return nil
}

// RegisterHostModule instantiates a host module from function definitions.
// Export order is name-sorted so instantiation is deterministic.
func (e *Engine) RegisterHostModule(ctx context.Context, namespace string, funcs map[string]FuncDef) error {
	if namespace == "" {
		return errors.InvalidInput(errors.PhaseHost, "namespace cannot be empty")
	}
	if len(funcs) == 0 {
		return errors.InvalidInput(errors.PhaseHost, "host module "+namespace+" has no functions")
	}

	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)

	builder := e.runtime.NewHostModuleBuilder(namespace)
	for _, name := range names {
		def := funcs[name]
		if def.Fn == nil {
			return errors.Registration(errors.PhaseHost, namespace, name, nil)
		}
		builder = builder.NewFunctionBuilder().
			WithGoModuleFunction(def.Fn, def.Params, def.Results).
			Export(name)
	}

	if _, err := builder.Instantiate(ctx); err != nil {
		return errors.Wrap(errors.PhaseHost, errors.KindInstantiation, err, "instantiate host module "+namespace)
	}

	Logger().Debug("host module registered",
		zap.String("namespace", namespace),
		zap.Int("functions", len(funcs)))
	return nil
}

// Compile validates and compiles guest bytes.
func (e *Engine) Compile(ctx context.Context, wasmBytes []byte) (wazero.CompiledModule, error) {
	if len(wasmBytes) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "empty module bytes")
	}
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.Load("compile module", err)
	}
	return compiled, nil
}

// Instantiate creates a module instance. Start functions are suppressed so
// the caller controls when the guest entry runs.
func (e *Engine) Instantiate(ctx context.Context, compiled wazero.CompiledModule, name string, stdout, stderr io.Writer) (api.Module, error) {
	cfg := wazero.NewModuleConfig().
		WithName(name).
		WithStartFunctions()
	if stdout != nil {
		cfg = cfg.WithStdout(stdout)
	}
	if stderr != nil {
		cfg = cfg.WithStderr(stderr)
	}

	mod, err := e.runtime.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInstantiation, err, "instantiate "+name)
	}
	return mod, nil
}

// Close releases the runtime and everything instantiated in it.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}
