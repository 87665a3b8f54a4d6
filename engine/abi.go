package engine

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/browser-runtime/errors"
)

// FuncDef describes one host function as the guest imports it: flat core
// value types plus the raw implementation.
type FuncDef struct {
	Params  []api.ValueType
	Results []api.ValueType
	Fn      api.GoModuleFunc
}

// Memory is the subset of api.Memory host functions touch. Tests substitute
// a byte-slice fake.
type Memory interface {
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
	ReadUint32Le(offset uint32) (uint32, bool)
	WriteUint32Le(offset uint32, v uint32) bool
}

// ReadString copies length bytes at ptr out of guest memory.
func ReadString(mem Memory, ptr, length uint32) (string, error) {
	if length == 0 {
		return "", nil
	}
	buf, ok := mem.Read(ptr, length)
	if !ok {
		return "", errors.OutOfBounds(errors.PhaseABI, "string read", ptr, length)
	}
	// Read may return a view of guest memory; copy before the guest moves on.
	return string(buf), nil
}

// ReadHandles reads a packed u32 handle array at ptr.
func ReadHandles(mem Memory, ptr, count uint32) ([]uint32, error) {
	if count == 0 {
		return nil, nil
	}
	handles := make([]uint32, count)
	for i := uint32(0); i < count; i++ {
		h, ok := mem.ReadUint32Le(ptr + i*4)
		if !ok {
			return nil, errors.OutOfBounds(errors.PhaseABI, "handle array read", ptr, count*4)
		}
		handles[i] = h
	}
	return handles, nil
}

// WriteBytes copies data into guest memory at ptr.
func WriteBytes(mem Memory, ptr uint32, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if !mem.Write(ptr, data) {
		return errors.OutOfBounds(errors.PhaseABI, "memory write", ptr, uint32(len(data)))
	}
	return nil
}
