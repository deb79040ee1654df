// Copyright (c) 2026 Dmitry Majere.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package golox

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopeDeclareResolve(t *testing.T) {
	sc := NewScope("")
	require.Equal(t, 1, sc.NumLocals())

	sc.Begin()
	require.NoError(t, sc.Declare("a"))

	// not readable until initialized
	slot, ownInit := sc.Resolve("a")
	require.Equal(t, -1, slot)
	require.True(t, ownInit)

	sc.MarkInitialized()
	slot, ownInit = sc.Resolve("a")
	require.Equal(t, 1, slot)
	require.False(t, ownInit)

	slot, ownInit = sc.Resolve("missing")
	require.Equal(t, -1, slot)
	require.False(t, ownInit)
}

func TestScopeRedefinition(t *testing.T) {
	sc := NewScope("")
	sc.Begin()
	require.NoError(t, sc.Declare("a"))
	sc.MarkInitialized()
	require.ErrorIs(t, sc.Declare("a"), errLocalRedefined)

	// shadowing in a deeper block is allowed
	sc.Begin()
	require.NoError(t, sc.Declare("a"))
	sc.MarkInitialized()
	slot, _ := sc.Resolve("a")
	require.Equal(t, 2, slot)
}

func TestScopeShadowInitReadsOuter(t *testing.T) {
	sc := NewScope("")
	sc.Begin()
	require.NoError(t, sc.Declare("a"))
	sc.MarkInitialized()

	// while the inner a is uninitialized, resolution reaches the outer one
	sc.Begin()
	require.NoError(t, sc.Declare("a"))
	slot, ownInit := sc.Resolve("a")
	require.Equal(t, 1, slot)
	require.False(t, ownInit)

	sc.MarkInitialized()
	slot, _ = sc.Resolve("a")
	require.Equal(t, 2, slot)
}

func TestScopeEnd(t *testing.T) {
	sc := NewScope("")
	sc.Begin()
	require.NoError(t, sc.Declare("a"))
	sc.MarkInitialized()

	sc.Begin()
	require.NoError(t, sc.Declare("b"))
	sc.MarkInitialized()
	require.NoError(t, sc.Declare("c"))
	sc.MarkInitialized()
	sc.Capture(2) // b

	removed := sc.End()
	require.Len(t, removed, 2)
	// most recently declared first
	require.Equal(t, "c", removed[0].Name)
	require.False(t, removed[0].Captured)
	require.Equal(t, "b", removed[1].Name)
	require.True(t, removed[1].Captured)

	// the outer block is untouched
	slot, _ := sc.Resolve("a")
	require.Equal(t, 1, slot)
	require.Equal(t, 2, sc.NumLocals())
}

func TestScopeLimit(t *testing.T) {
	sc := NewScope("")
	sc.Begin()
	for i := 0; i < maxLocals-1; i++ {
		require.NoError(t, sc.Declare(fmt.Sprintf("v%d", i)))
		sc.MarkInitialized()
	}
	require.ErrorIs(t, sc.Declare("overflow"), errTooManyLocals)
}
