// Copyright (c) 2026 Dmitry Majere.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package golox

import "errors"

// maxLocals is the number of stack slots addressable by one frame; slot
// operands are a single byte.
const maxLocals = 256

var (
	errLocalRedefined = errors.New("already a variable with this name in this scope")
	errTooManyLocals  = errors.New("too many local variables in function")
)

// Local is a compile time record of one local variable. Depth is the lexical
// scope depth it was declared at. A local is readable only once initialized;
// a captured local is closed over by some nested function, so leaving scope
// emits CLOSEUPVALUE for it instead of POP.
type Local struct {
	Name        string
	Depth       int
	Initialized bool
	Captured    bool
}

// Scope tracks the locals of the function being compiled as a single vector
// with a depth per entry. Slot numbers are indexes into this vector and map
// one to one onto frame stack slots at runtime. Slot 0 is reserved for the
// callee, or for 'this' inside methods.
type Scope struct {
	locals []Local
	depth  int
}

// NewScope creates a Scope with slot 0 reserved under the given name.
func NewScope(slotZero string) *Scope {
	return &Scope{locals: []Local{{Name: slotZero, Initialized: true}}}
}

// Depth returns the current lexical depth. Depth 0 is function top level.
func (sc *Scope) Depth() int { return sc.depth }

// Begin enters a new lexical block.
func (sc *Scope) Begin() { sc.depth++ }

// End leaves the current block and returns the locals that went out of
// scope, most recently declared first.
func (sc *Scope) End() []Local {
	n := len(sc.locals)
	for n > 0 && sc.locals[n-1].Depth == sc.depth {
		n--
	}
	removed := make([]Local, 0, len(sc.locals)-n)
	for i := len(sc.locals) - 1; i >= n; i-- {
		removed = append(removed, sc.locals[i])
	}
	sc.locals = sc.locals[:n]
	sc.depth--
	return removed
}

// Declare adds an uninitialized local at the current depth. Declaring a name
// twice in the same block is an error; shadowing an outer block is not.
func (sc *Scope) Declare(name string) error {
	for i := len(sc.locals) - 1; i >= 0; i-- {
		l := &sc.locals[i]
		if l.Initialized && l.Depth < sc.depth {
			break
		}
		if l.Name == name {
			return errLocalRedefined
		}
	}
	if len(sc.locals) == maxLocals {
		return errTooManyLocals
	}
	sc.locals = append(sc.locals, Local{Name: name, Depth: sc.depth})
	return nil
}

// MarkInitialized makes the most recently declared local readable.
func (sc *Scope) MarkInitialized() {
	sc.locals[len(sc.locals)-1].Initialized = true
}

// Resolve finds the slot of the deepest initialized local with the given
// name. An uninitialized match is skipped so a shadowing initializer can
// still read the outer binding; ownInit reports that such a match was the
// only one, which makes 'var a = a;' a compile error rather than a global
// lookup.
func (sc *Scope) Resolve(name string) (slot int, ownInit bool) {
	for i := len(sc.locals) - 1; i >= 0; i-- {
		if sc.locals[i].Name != name {
			continue
		}
		if sc.locals[i].Initialized {
			return i, false
		}
		ownInit = true
	}
	return -1, ownInit
}

// Capture marks the local at slot as closed over.
func (sc *Scope) Capture(slot int) {
	sc.locals[slot].Captured = true
}

// NumLocals returns the number of live local slots.
func (sc *Scope) NumLocals() int { return len(sc.locals) }
