// Package engine wraps wazero for core-module execution: compiling guests,
// instantiating host modules from function definitions, WASI preview1 for
// guest stdio, and guest linear memory access with bounds checking.
package engine
