// Copyright (c) 2026 Dmitry Majere.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package golox

import (
	"fmt"
	"time"
)

// interpStart anchors clock(); scripts observe seconds since process start.
var interpStart = time.Now()

// DefaultGlobals returns the builtin native functions every new VM defines:
// clock() and sleep(seconds).
func DefaultGlobals() map[string]Object {
	return map[string]Object{
		"clock": &NativeFunction{Name: "clock", Value: builtinClock},
		"sleep": &NativeFunction{Name: "sleep", Value: builtinSleep},
	}
}

func builtinClock(args ...Object) (Object, error) {
	if len(args) != 0 {
		return nil, ErrWrongNumArguments.NewError(
			fmt.Sprintf("want=0 got=%d", len(args)))
	}
	return Number(time.Since(interpStart).Seconds()), nil
}

// builtinSleep blocks the interpreter for the given number of seconds and
// returns true. A negative duration returns false without sleeping.
func builtinSleep(args ...Object) (Object, error) {
	if len(args) != 1 {
		return nil, ErrWrongNumArguments.NewError(
			fmt.Sprintf("want=1 got=%d", len(args)))
	}
	seconds, ok := args[0].(Number)
	if !ok {
		return nil, NewArgumentTypeError("first", "number", args[0].TypeName())
	}
	if seconds < 0 {
		return False, nil
	}
	time.Sleep(time.Duration(float64(seconds) * float64(time.Second)))
	return True, nil
}

// NewArgumentTypeError creates a new Error from ErrType.
func NewArgumentTypeError(pos, expectType, foundType string) *Error {
	return ErrType.NewError(fmt.Sprintf(
		"invalid type for argument '%s': expected %s, found %s",
		pos, expectType, foundType))
}
