package guest

import (
	"encoding/binary"
	"math"
)

// Code accumulates a straight-line function body. Callers push operands in
// wasm stack order; Bytes appends the end opcode.
type Code struct {
	buf []byte
}

// NewCode creates an empty body.
func NewCode() *Code { return &Code{} }

// I32Const pushes a 32-bit constant.
func (c *Code) I32Const(v int32) *Code {
	c.buf = append(c.buf, 0x41)
	c.buf = append(c.buf, EncodeSLEB128(v)...)
	return c
}

// F64Const pushes a 64-bit float constant.
func (c *Code) F64Const(v float64) *Code {
	c.buf = append(c.buf, 0x44)
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	c.buf = append(c.buf, b[:]...)
	return c
}

// Call invokes a function by index (imports come first).
func (c *Code) Call(funcIdx uint32) *Code {
	c.buf = append(c.buf, 0x10)
	c.buf = append(c.buf, EncodeULEB128(funcIdx)...)
	return c
}

// LocalGet pushes a local.
func (c *Code) LocalGet(idx uint32) *Code {
	c.buf = append(c.buf, 0x20)
	c.buf = append(c.buf, EncodeULEB128(idx)...)
	return c
}

// LocalSet pops into a local.
func (c *Code) LocalSet(idx uint32) *Code {
	c.buf = append(c.buf, 0x21)
	c.buf = append(c.buf, EncodeULEB128(idx)...)
	return c
}

// LocalTee stores into a local, keeping the value on the stack.
func (c *Code) LocalTee(idx uint32) *Code {
	c.buf = append(c.buf, 0x22)
	c.buf = append(c.buf, EncodeULEB128(idx)...)
	return c
}

// I32Store pops value then address and writes 4 bytes at address+offset.
func (c *Code) I32Store(offset uint32) *Code {
	c.buf = append(c.buf, 0x36)
	c.buf = append(c.buf, EncodeULEB128(2)...) // alignment 2^2
	c.buf = append(c.buf, EncodeULEB128(offset)...)
	return c
}

// Drop discards the top of the stack.
func (c *Code) Drop() *Code {
	c.buf = append(c.buf, 0x1a)
	return c
}

// Bytes returns the body terminated with end.
func (c *Code) Bytes() []byte {
	return append(append([]byte{}, c.buf...), 0x0b)
}
