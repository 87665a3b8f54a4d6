package browser

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/browser-runtime/engine"
)

var (
	i32 = api.ValueTypeI32
	f64 = api.ValueTypeF64
)

// Register returns the wire-level function table for the browser namespace.
// Each import unpacks the wazero stack and delegates to the typed op.
func (h *Host) Register() map[string]engine.FuncDef {
	return map[string]engine.FuncDef{
		"string_new": {
			Params:  []api.ValueType{i32, i32},
			Results: []api.ValueType{i32},
			Fn: api.GoModuleFunc(func(_ context.Context, mod api.Module, stack []uint64) {
				stack[0] = uint64(h.stringNew(mod.Memory(), uint32(stack[0]), uint32(stack[1])))
			}),
		},
		"string_len": {
			Params:  []api.ValueType{i32},
			Results: []api.ValueType{i32},
			Fn: api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
				stack[0] = uint64(h.stringLen(uint32(stack[0])))
			}),
		},
		"string_read": {
			Params:  []api.ValueType{i32, i32, i32},
			Results: []api.ValueType{i32},
			Fn: api.GoModuleFunc(func(_ context.Context, mod api.Module, stack []uint64) {
				stack[0] = uint64(h.stringRead(mod.Memory(), uint32(stack[0]), uint32(stack[1]), uint32(stack[2])))
			}),
		},
		"number_new": {
			Params:  []api.ValueType{f64},
			Results: []api.ValueType{i32},
			Fn: api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
				stack[0] = uint64(h.numberNew(api.DecodeF64(stack[0])))
			}),
		},
		"number_value": {
			Params:  []api.ValueType{i32},
			Results: []api.ValueType{f64},
			Fn: api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
				stack[0] = api.EncodeF64(h.numberValue(uint32(stack[0])))
			}),
		},
		"object_new": {
			Results: []api.ValueType{i32},
			Fn: api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
				stack[0] = uint64(h.objectNew())
			}),
		},
		"window": {
			Results: []api.ValueType{i32},
			Fn: api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
				stack[0] = uint64(h.windowHandle())
			}),
		},
		"get_prop": {
			Params:  []api.ValueType{i32, i32, i32},
			Results: []api.ValueType{i32},
			Fn: api.GoModuleFunc(func(_ context.Context, mod api.Module, stack []uint64) {
				stack[0] = uint64(h.getProp(mod.Memory(), uint32(stack[0]), uint32(stack[1]), uint32(stack[2])))
			}),
		},
		"set_prop": {
			Params:  []api.ValueType{i32, i32, i32, i32},
			Results: []api.ValueType{i32},
			Fn: api.GoModuleFunc(func(_ context.Context, mod api.Module, stack []uint64) {
				stack[0] = uint64(h.setProp(mod.Memory(), uint32(stack[0]), uint32(stack[1]), uint32(stack[2]), uint32(stack[3])))
			}),
		},
		"call": {
			Params:  []api.ValueType{i32, i32, i32, i32},
			Results: []api.ValueType{i32},
			Fn: api.GoModuleFunc(func(_ context.Context, mod api.Module, stack []uint64) {
				stack[0] = uint64(h.call(mod.Memory(), uint32(stack[0]), uint32(stack[1]), uint32(stack[2]), uint32(stack[3])))
			}),
		},
		"value_kind": {
			Params:  []api.ValueType{i32},
			Results: []api.ValueType{i32},
			Fn: api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
				stack[0] = uint64(h.valueKind(uint32(stack[0])))
			}),
		},
		"drop": {
			Params: []api.ValueType{i32},
			Fn: api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
				h.drop(uint32(stack[0]))
			}),
		},
		"last_error": {
			Params:  []api.ValueType{i32, i32},
			Results: []api.ValueType{i32},
			Fn: api.GoModuleFunc(func(_ context.Context, mod api.Module, stack []uint64) {
				stack[0] = uint64(h.lastError(mod.Memory(), uint32(stack[0]), uint32(stack[1])))
			}),
		},
		"fetch": {
			Params:  []api.ValueType{i32, i32},
			Results: []api.ValueType{i32},
			Fn: api.GoModuleFunc(func(ctx context.Context, _ api.Module, stack []uint64) {
				stack[0] = uint64(h.fetchOp(ctx, uint32(stack[0]), uint32(stack[1])))
			}),
		},
		"promise_then": {
			Params:  []api.ValueType{i32, i32, i32},
			Results: []api.ValueType{i32},
			Fn: api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
				stack[0] = uint64(h.promiseThen(uint32(stack[0]), uint32(stack[1]), uint32(stack[2])))
			}),
		},
		"request_animation_frame": {
			Params:  []api.ValueType{i32},
			Results: []api.ValueType{i32},
			Fn: api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
				stack[0] = uint64(h.requestAnimationFrame(uint32(stack[0])))
			}),
		},
		"cancel_animation_frame": {
			Params: []api.ValueType{i32},
			Fn: api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
				h.cancelAnimationFrame(uint32(stack[0]))
			}),
		},
	}
}
