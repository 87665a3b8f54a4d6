package runtime

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/browser-runtime/browser"
	"github.com/wippyai/browser-runtime/errors"
	"github.com/wippyai/browser-runtime/eventloop"
	"github.com/wippyai/browser-runtime/resource"
)

// DefaultEntry is the guest export Run tries first.
const DefaultEntry = "run"

// fallbackEntry covers WASI-style guests.
const fallbackEntry = "_start"

// invokeExport is the guest export callbacks dispatch through.
const invokeExport = "browser_invoke"

// Instance is a live guest.
type Instance struct {
	runtime *Runtime
	mod     api.Module
	loop    *eventloop.Loop

	// runCtx is the context of the active Run, used when host-side events
	// re-enter the guest. The loop is single-threaded so a field suffices.
	runCtx context.Context
}

// BindBrowser connects the instance to a browser host: guest callbacks
// dispatch through the guest's browser_invoke export, and Run drains the
// host's event loop after the entry returns.
func (i *Instance) BindBrowser(host *browser.Host) error {
	fn := i.mod.ExportedFunction(invokeExport)
	i.loop = host.Loop()
	if fn == nil {
		// Guests without callbacks never need the export.
		i.runtime.logger.Debug("guest has no callback export", zap.String("export", invokeExport))
		return nil
	}
	host.SetInvoker(func(callbackID uint32, value resource.Handle) error {
		ctx := i.runCtx
		if ctx == nil {
			ctx = context.Background()
		}
		if _, err := fn.Call(ctx, uint64(callbackID), uint64(value)); err != nil {
			return errors.Wrap(errors.PhaseGuest, errors.KindInvalidData, err, "dispatch guest callback")
		}
		return nil
	})
	return nil
}

// Run calls the guest entry, then drains the event loop until quiescent.
// An empty entry tries "run" and falls back to "_start".
func (i *Instance) Run(ctx context.Context, entry string) error {
	fn, name, err := i.entry(entry)
	if err != nil {
		return err
	}

	i.runCtx = ctx
	defer func() { i.runCtx = nil }()

	i.runtime.logger.Debug("running guest", zap.String("entry", name))
	if _, err := fn.Call(ctx); err != nil {
		return errors.Wrap(errors.PhaseGuest, errors.KindInvalidData, err, "guest entry "+name)
	}

	if i.loop == nil {
		return nil
	}
	return i.loop.Run(ctx)
}

func (i *Instance) entry(entry string) (api.Function, string, error) {
	if entry != "" {
		fn := i.mod.ExportedFunction(entry)
		if fn == nil {
			return nil, "", errors.NotFound(errors.PhaseRuntime, "guest export", entry)
		}
		return fn, entry, nil
	}
	if fn := i.mod.ExportedFunction(DefaultEntry); fn != nil {
		return fn, DefaultEntry, nil
	}
	if fn := i.mod.ExportedFunction(fallbackEntry); fn != nil {
		return fn, fallbackEntry, nil
	}
	return nil, "", errors.NotFound(errors.PhaseRuntime, "guest export", DefaultEntry+"/"+fallbackEntry)
}

// Module exposes the underlying wazero module.
func (i *Instance) Module() api.Module { return i.mod }

// Close releases the instance.
func (i *Instance) Close(ctx context.Context) error {
	return i.mod.Close(ctx)
}
