// Copyright (c) 2026 Dmitry Majere.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package golox

import (
	"fmt"
	"strings"
)

var (
	// ErrType represents a type error at runtime, e.g. arithmetic on
	// operands that are not numbers.
	ErrType = &Error{Name: "TypeError"}

	// ErrUndefinedGlobal is returned when reading or assigning a global
	// variable that has not been defined.
	ErrUndefinedGlobal = &Error{Name: "UndefinedGlobalError"}

	// ErrGlobalRedefinition is returned when a global variable is defined
	// twice.
	ErrGlobalRedefinition = &Error{Name: "GlobalRedefinitionError"}

	// ErrUndefinedProperty is returned when an instance has neither a field
	// nor a method with the requested name.
	ErrUndefinedProperty = &Error{Name: "UndefinedPropertyError"}

	// ErrNotCallable is returned when the called value is not a function or
	// a class.
	ErrNotCallable = &Error{
		Name:    "NotCallableError",
		Message: "can only call functions and classes",
	}

	// ErrWrongNumArguments represents a wrong number of arguments error.
	ErrWrongNumArguments = &Error{Name: "WrongNumberOfArgumentsError"}

	// ErrSuperclassNotAClass is returned when the superclass expression does
	// not evaluate to a class.
	ErrSuperclassNotAClass = &Error{
		Name:    "SuperclassError",
		Message: "superclass must be a class",
	}

	// ErrStackOverflow represents a stack overflow error.
	ErrStackOverflow = &Error{
		Name:    "StackOverflowError",
		Message: "stack overflow",
	}
)

// Error is the base error type. Runtime errors are derived from the exported
// sentinel values with NewError so that errors.Is matches the sentinel.
type Error struct {
	Name    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	name := e.Name
	if name == "" {
		name = "error"
	}
	if e.Message == "" {
		return name
	}
	return fmt.Sprintf("%s: %s", name, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError creates a new Error with the given message, keeping the receiver
// as its cause so that errors.Is(err, sentinel) holds.
func (e *Error) NewError(messages ...string) *Error {
	return &Error{
		Name:    e.Name,
		Message: strings.Join(messages, " "),
		Cause:   e,
	}
}

// CompileError represents a scan, parse or scope error with its source
// position. The compiler collects all compile errors before giving up.
type CompileError struct {
	Line   int
	Lexeme string
	Msg    string
}

func (e *CompileError) Error() string {
	if e.Lexeme == "" {
		return fmt.Sprintf("Compile Error [line %d]: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("Compile Error [line %d]: %s at '%s'", e.Line, e.Msg, e.Lexeme)
}

// ErrorList is a list of compile errors in source order.
type ErrorList []*CompileError

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	var sb strings.Builder
	sb.WriteString(l[0].Error())
	for _, e := range l[1:] {
		sb.WriteByte('\n')
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// Err returns the list as an error, or nil if it is empty.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// RuntimeError wraps an Error raised by the VM with the source lines of the
// instructions that were executing, innermost frame first.
type RuntimeError struct {
	Err   *Error
	Trace []int
}

func (e *RuntimeError) Error() string {
	if e.Err == nil {
		return "<nil>"
	}
	if len(e.Trace) == 0 {
		return e.Err.Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Runtime Error [line %d]: %s", e.Trace[0], e.Err.Error())
	for _, line := range e.Trace[1:] {
		fmt.Fprintf(&sb, "\n\tat line %d", line)
	}
	return sb.String()
}

func (e *RuntimeError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return nil
}

func (e *RuntimeError) addTrace(line int) {
	if len(e.Trace) > 0 && e.Trace[len(e.Trace)-1] == line {
		return
	}
	e.Trace = append(e.Trace, line)
}
