package engine

import (
	"encoding/binary"
	"testing"
)

// fakeMemory is a flat byte slice standing in for guest linear memory.
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

func TestReadStringCopies(t *testing.T) {
	mem := newFakeMemory(64)
	copy(mem.data[8:], "error")

	s, err := ReadString(mem, 8, 5)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if s != "error" {
		t.Fatalf("s = %q", s)
	}

	// Mutating guest memory must not change the returned string.
	mem.data[8] = 'x'
	if s != "error" {
		t.Fatal("string aliases guest memory")
	}
}

func TestReadStringBounds(t *testing.T) {
	mem := newFakeMemory(16)
	if _, err := ReadString(mem, 12, 8); err == nil {
		t.Fatal("out-of-bounds read should fail")
	}
	if s, err := ReadString(mem, 4, 0); err != nil || s != "" {
		t.Fatalf("zero-length read: %q, %v", s, err)
	}
}

func TestReadHandles(t *testing.T) {
	mem := newFakeMemory(64)
	mem.WriteUint32Le(16, 7)
	mem.WriteUint32Le(20, 9)
	mem.WriteUint32Le(24, 3)

	hs, err := ReadHandles(mem, 16, 3)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(hs) != 3 || hs[0] != 7 || hs[1] != 9 || hs[2] != 3 {
		t.Fatalf("handles = %v", hs)
	}

	if _, err := ReadHandles(mem, 60, 2); err == nil {
		t.Fatal("out-of-bounds handle array should fail")
	}
	if hs, err := ReadHandles(mem, 0, 0); err != nil || hs != nil {
		t.Fatalf("empty array: %v, %v", hs, err)
	}
}

func TestWriteBytes(t *testing.T) {
	mem := newFakeMemory(16)
	if err := WriteBytes(mem, 4, []byte("abc")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got, _ := mem.Read(4, 3); string(got) != "abc" {
		t.Fatalf("memory = %q", got)
	}
	if err := WriteBytes(mem, 15, []byte("abc")); err == nil {
		t.Fatal("out-of-bounds write should fail")
	}
}
