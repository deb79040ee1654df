// Copyright (c) 2026 Dmitry Majere.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package golox implements a Lox compiler and bytecode virtual machine. A
// single pass compiler parses source with Pratt precedence rules and emits
// stack bytecode, which the VM executes with call frames, closures over
// captured locals, and class based dispatch.
package golox

import "errors"

// InterpretResult is the outcome of one interpretation, valued as the
// process exit status the driver reports.
type InterpretResult int

// List of interpretation outcomes
const (
	ResultOK           InterpretResult = 0
	ResultCompileError InterpretResult = 65
	ResultRuntimeError InterpretResult = 70
)

// Interpret compiles and runs source on the given VM. The returned error
// holds the compile error list or the runtime error matching the result.
func Interpret(src []byte, vm *VM, opts CompilerOptions) (InterpretResult, error) {
	fn, err := Compile(src, opts)
	if err != nil {
		return ResultCompileError, err
	}
	if err := vm.Run(fn); err != nil {
		return ResultRuntimeError, err
	}
	return ResultOK, nil
}

// IsCompileError reports whether err is a compile error list.
func IsCompileError(err error) bool {
	var list ErrorList
	return errors.As(err, &list)
}

// IsRuntimeError reports whether err is a runtime error.
func IsRuntimeError(err error) bool {
	var rte *RuntimeError
	return errors.As(err, &rte)
}
