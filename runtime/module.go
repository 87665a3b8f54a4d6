package runtime

import (
	"context"

	"github.com/tetratelabs/wazero"
)

// Module is a compiled guest awaiting instantiation.
type Module struct {
	runtime  *Runtime
	compiled wazero.CompiledModule
}

// Instantiate creates an instance. The name distinguishes instances sharing
// one engine; empty is fine for a single guest.
func (m *Module) Instantiate(ctx context.Context, name string) (*Instance, error) {
	mod, err := m.runtime.engine.Instantiate(ctx, m.compiled, name, m.runtime.stdout, m.runtime.stderr)
	if err != nil {
		return nil, err
	}
	return &Instance{
		runtime: m.runtime,
		mod:     mod,
	}, nil
}

// Close releases the compiled module.
func (m *Module) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}
