package guest

import (
	"github.com/tetratelabs/wazero/api"
)

// section ids in the core binary format.
const (
	secType     = 0x01
	secImport   = 0x02
	secFunction = 0x03
	secMemory   = 0x05
	secExport   = 0x07
	secCode     = 0x0a
	secData     = 0x0b
)

type importFunc struct {
	module  string
	name    string
	params  []api.ValueType
	results []api.ValueType
}

type exportFunc struct {
	name    string
	params  []api.ValueType
	results []api.ValueType
	locals  []api.ValueType
	body    []byte
}

type dataSegment struct {
	offset uint32
	bytes  []byte
}

// Builder assembles a core module. Function indices start with imports in
// registration order; defined functions follow.
type Builder struct {
	imports  []importFunc
	funcs    []exportFunc
	data     []dataSegment
	memPages uint32
}

// NewBuilder creates a builder with one page of memory.
func NewBuilder() *Builder {
	return &Builder{memPages: 1}
}

// SetMemoryPages sets the minimum memory size in 64KB pages.
func (b *Builder) SetMemoryPages(pages uint32) {
	if pages > 0 {
		b.memPages = pages
	}
}

// ImportFunc declares a host import and returns its function index.
func (b *Builder) ImportFunc(module, name string, params, results []api.ValueType) uint32 {
	b.imports = append(b.imports, importFunc{
		module:  module,
		name:    name,
		params:  params,
		results: results,
	})
	return uint32(len(b.imports) - 1)
}

// ExportFunc defines and exports a function, returning its index.
func (b *Builder) ExportFunc(name string, params, results, locals []api.ValueType, body []byte) uint32 {
	b.funcs = append(b.funcs, exportFunc{
		name:    name,
		params:  params,
		results: results,
		locals:  locals,
		body:    body,
	})
	return uint32(len(b.imports) + len(b.funcs) - 1)
}

// AddData places bytes at a fixed memory offset.
func (b *Builder) AddData(offset uint32, data []byte) {
	b.data = append(b.data, dataSegment{offset: offset, bytes: data})
}

// Build emits the module bytes.
func (b *Builder) Build() []byte {
	var wasm []byte

	// Magic and version
	wasm = append(wasm, 0x00, 0x61, 0x73, 0x6d)
	wasm = append(wasm, 0x01, 0x00, 0x00, 0x00)

	wasm = appendSection(wasm, secType, b.buildTypeSection())
	if len(b.imports) > 0 {
		wasm = appendSection(wasm, secImport, b.buildImportSection())
	}
	if len(b.funcs) > 0 {
		wasm = appendSection(wasm, secFunction, b.buildFuncSection())
	}
	wasm = appendSection(wasm, secMemory, b.buildMemorySection())
	wasm = appendSection(wasm, secExport, b.buildExportSection())
	if len(b.funcs) > 0 {
		wasm = appendSection(wasm, secCode, b.buildCodeSection())
	}
	if len(b.data) > 0 {
		wasm = appendSection(wasm, secData, b.buildDataSection())
	}

	return wasm
}

func appendSection(wasm []byte, id byte, section []byte) []byte {
	wasm = append(wasm, id)
	wasm = append(wasm, EncodeULEB128(uint32(len(section)))...)
	return append(wasm, section...)
}

// buildTypeSection emits one type per function, imports first.
func (b *Builder) buildTypeSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(len(b.imports)+len(b.funcs)))...)

	appendType := func(params, results []api.ValueType) {
		section = append(section, 0x60)
		section = append(section, EncodeULEB128(uint32(len(params)))...)
		for _, t := range params {
			section = append(section, valTypeToWasm(t))
		}
		section = append(section, EncodeULEB128(uint32(len(results)))...)
		for _, t := range results {
			section = append(section, valTypeToWasm(t))
		}
	}

	for _, f := range b.imports {
		appendType(f.params, f.results)
	}
	for _, f := range b.funcs {
		appendType(f.params, f.results)
	}
	return section
}

func (b *Builder) buildImportSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(len(b.imports)))...)
	for i, f := range b.imports {
		section = append(section, EncodeULEB128(uint32(len(f.module)))...)
		section = append(section, []byte(f.module)...)
		section = append(section, EncodeULEB128(uint32(len(f.name)))...)
		section = append(section, []byte(f.name)...)
		section = append(section, 0x00) // func import
		section = append(section, EncodeULEB128(uint32(i))...)
	}
	return section
}

func (b *Builder) buildFuncSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(len(b.funcs)))...)
	for i := range b.funcs {
		section = append(section, EncodeULEB128(uint32(len(b.imports)+i))...)
	}
	return section
}

func (b *Builder) buildMemorySection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(1)...)
	section = append(section, 0x00) // min only
	section = append(section, EncodeULEB128(b.memPages)...)
	return section
}

// buildExportSection exports the memory as "memory" plus every function.
func (b *Builder) buildExportSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(len(b.funcs)+1))...)

	section = append(section, EncodeULEB128(6)...)
	section = append(section, []byte("memory")...)
	section = append(section, 0x02) // memory export
	section = append(section, EncodeULEB128(0)...)

	for i, f := range b.funcs {
		section = append(section, EncodeULEB128(uint32(len(f.name)))...)
		section = append(section, []byte(f.name)...)
		section = append(section, 0x00) // func export
		section = append(section, EncodeULEB128(uint32(len(b.imports)+i))...)
	}
	return section
}

func (b *Builder) buildCodeSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(len(b.funcs)))...)
	for _, f := range b.funcs {
		var body []byte
		// Locals: one run per declared local, no grouping.
		body = append(body, EncodeULEB128(uint32(len(f.locals)))...)
		for _, l := range f.locals {
			body = append(body, EncodeULEB128(1)...)
			body = append(body, valTypeToWasm(l))
		}
		body = append(body, f.body...)

		section = append(section, EncodeULEB128(uint32(len(body)))...)
		section = append(section, body...)
	}
	return section
}

func (b *Builder) buildDataSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(len(b.data)))...)
	for _, d := range b.data {
		section = append(section, 0x00) // active, memory 0
		section = append(section, 0x41) // i32.const offset expr
		section = append(section, EncodeSLEB128(int32(d.offset))...)
		section = append(section, 0x0b)
		section = append(section, EncodeULEB128(uint32(len(d.bytes)))...)
		section = append(section, d.bytes...)
	}
	return section
}
