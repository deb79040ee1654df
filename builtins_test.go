// Copyright (c) 2026 Dmitry Majere.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package golox_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	. "github.com/dmajere/golox"
)

func TestBuiltinClock(t *testing.T) {
	fn, err := Compile([]byte(`print clock() >= 0;`), DefaultCompilerOptions)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, NewVM().SetOut(&out).Run(fn))
	require.Equal(t, "[Out]: true\n", out.String())

	expectRunErrIs(t, `clock(1);`, ErrWrongNumArguments)
}

func TestBuiltinClockAdvances(t *testing.T) {
	fn, err := Compile([]byte(`
var before = clock();
sleep(0.02);
print clock() > before;`), DefaultCompilerOptions)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, NewVM().SetOut(&out).Run(fn))
	require.Equal(t, "[Out]: true\n", out.String())
}

func TestBuiltinSleep(t *testing.T) {
	fn, err := Compile([]byte(`print sleep(0.01);`), DefaultCompilerOptions)
	require.NoError(t, err)

	var out bytes.Buffer
	start := time.Now()
	require.NoError(t, NewVM().SetOut(&out).Run(fn))
	require.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	require.Equal(t, "[Out]: true\n", out.String())

	// a negative duration does not sleep and reports failure
	expectRun(t, `print sleep(-1);`, "false")

	expectRunErrIs(t, `sleep();`, ErrWrongNumArguments)
	expectRunErrIs(t, `sleep("2");`, ErrType)
}
