// Copyright (c) 2026 Dmitry Majere.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package golox

import (
	"strconv"
)

// Object represents a value in the language. Numbers, booleans, nil and
// strings compare by value; every other kind compares by identity.
type Object interface {
	// TypeName returns the name of the value kind.
	TypeName() string

	// String returns the printable representation of the value. It is the
	// form used by print and by string concatenation.
	String() string

	// IsFalsy reports whether the value is falsy. Only false and nil are.
	IsFalsy() bool

	// Equal tests the value for equality with another value.
	Equal(right Object) bool
}

// CallableFunc is the function signature for native functions callable from
// scripts. Arguments arrive in evaluation order; the returned Object replaces
// the callee and arguments on the operand stack.
type CallableFunc = func(args ...Object) (Object, error)

// nilValue is the unit value.
type nilValue struct{}

// Nil represents the nil value of the language.
var Nil Object = nilValue{}

// TypeName implements Object interface.
func (nilValue) TypeName() string { return "nil" }

// String implements Object interface.
func (nilValue) String() string { return "nil" }

// IsFalsy implements Object interface.
func (nilValue) IsFalsy() bool { return true }

// Equal implements Object interface.
func (nilValue) Equal(right Object) bool {
	_, ok := right.(nilValue)
	return ok
}

// Bool represents a boolean value.
type Bool bool

const (
	// True represents the true value.
	True = Bool(true)
	// False represents the false value.
	False = Bool(false)
)

// TypeName implements Object interface.
func (Bool) TypeName() string { return "bool" }

// String implements Object interface.
func (o Bool) String() string {
	if o {
		return "true"
	}
	return "false"
}

// IsFalsy implements Object interface.
func (o Bool) IsFalsy() bool { return !bool(o) }

// Equal implements Object interface.
func (o Bool) Equal(right Object) bool {
	v, ok := right.(Bool)
	return ok && o == v
}

// Number represents a double precision floating point number.
type Number float64

// TypeName implements Object interface.
func (Number) TypeName() string { return "number" }

// String implements Object interface.
func (o Number) String() string {
	return strconv.FormatFloat(float64(o), 'g', -1, 64)
}

// IsFalsy implements Object interface.
func (o Number) IsFalsy() bool { return false }

// Equal implements Object interface.
func (o Number) Equal(right Object) bool {
	v, ok := right.(Number)
	return ok && o == v
}

// String represents an immutable string value.
type String string

// TypeName implements Object interface.
func (String) TypeName() string { return "string" }

// String implements Object interface.
func (o String) String() string { return string(o) }

// IsFalsy implements Object interface.
func (o String) IsFalsy() bool { return false }

// Equal implements Object interface.
func (o String) Equal(right Object) bool {
	v, ok := right.(String)
	return ok && o == v
}

// Quoted returns the string in double quotes, for listings and traces.
func (o String) Quoted() string { return strconv.Quote(string(o)) }

// Function holds the bytecode of a compiled function together with its name
// and arity. Functions are immutable after compilation.
type Function struct {
	Arity int
	Name  string
	Chunk *Chunk
}

// TypeName implements Object interface.
func (*Function) TypeName() string { return "function" }

// String implements Object interface.
func (o *Function) String() string {
	if o.Name == "" || o.Name == mainName {
		return "<script>"
	}
	return "<fn " + o.Name + ">"
}

// IsFalsy implements Object interface.
func (o *Function) IsFalsy() bool { return false }

// Equal implements Object interface.
func (o *Function) Equal(right Object) bool {
	v, ok := right.(*Function)
	return ok && o == v
}

// NativeFunction represents a host function callable from scripts.
type NativeFunction struct {
	Name  string
	Value CallableFunc
}

// TypeName implements Object interface.
func (*NativeFunction) TypeName() string { return "native-function" }

// String implements Object interface.
func (o *NativeFunction) String() string { return "<native fn " + o.Name + ">" }

// IsFalsy implements Object interface.
func (o *NativeFunction) IsFalsy() bool { return false }

// Equal implements Object interface.
func (o *NativeFunction) Equal(right Object) bool {
	v, ok := right.(*NativeFunction)
	return ok && o == v
}

// Upvalue is a variable captured by a closure. While the captured stack slot
// is live the upvalue is open and slot holds its absolute stack index; once
// the slot leaves scope the value moves into closed and slot becomes -1.
// Open upvalues form a list sorted by slot, highest first.
type Upvalue struct {
	slot   int
	closed Object
	next   *Upvalue
}

// IsOpen reports whether the upvalue still points into the operand stack.
func (o *Upvalue) IsOpen() bool { return o.slot >= 0 }

// TypeName implements Object interface.
func (*Upvalue) TypeName() string { return "upvalue" }

// String implements Object interface.
func (o *Upvalue) String() string { return "<upvalue>" }

// IsFalsy implements Object interface.
func (o *Upvalue) IsFalsy() bool { return false }

// Equal implements Object interface.
func (o *Upvalue) Equal(right Object) bool {
	v, ok := right.(*Upvalue)
	return ok && o == v
}

// Closure pairs a function with the upvalues captured at closure creation.
type Closure struct {
	Fn       *Function
	Upvalues []*Upvalue
}

// TypeName implements Object interface.
func (*Closure) TypeName() string { return "closure" }

// String implements Object interface.
func (o *Closure) String() string { return o.Fn.String() }

// IsFalsy implements Object interface.
func (o *Closure) IsFalsy() bool { return false }

// Equal implements Object interface.
func (o *Closure) Equal(right Object) bool {
	v, ok := right.(*Closure)
	return ok && o == v
}

// Class represents a class and its method table.
type Class struct {
	Name    string
	Methods map[string]*Closure
}

// NewClass creates a Class with an empty method table.
func NewClass(name string) *Class {
	return &Class{Name: name, Methods: make(map[string]*Closure)}
}

// TypeName implements Object interface.
func (*Class) TypeName() string { return "class" }

// String implements Object interface.
func (o *Class) String() string { return "<class " + o.Name + ">" }

// IsFalsy implements Object interface.
func (o *Class) IsFalsy() bool { return false }

// Equal implements Object interface.
func (o *Class) Equal(right Object) bool {
	v, ok := right.(*Class)
	return ok && o == v
}

// Instance represents an instance of a class with its fields.
type Instance struct {
	Class  *Class
	Fields map[string]Object
}

// NewInstance creates an Instance of the given class with no fields.
func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: make(map[string]Object)}
}

// TypeName implements Object interface.
func (*Instance) TypeName() string { return "instance" }

// String implements Object interface.
func (o *Instance) String() string { return "<" + o.Class.Name + " instance>" }

// IsFalsy implements Object interface.
func (o *Instance) IsFalsy() bool { return false }

// Equal implements Object interface.
func (o *Instance) Equal(right Object) bool {
	v, ok := right.(*Instance)
	return ok && o == v
}

// BoundMethod is a method closure with its receiver pre-assigned. Calling it
// places the receiver in slot 0 of the new frame.
type BoundMethod struct {
	Receiver *Instance
	Method   *Closure
}

// TypeName implements Object interface.
func (*BoundMethod) TypeName() string { return "bound-method" }

// String implements Object interface.
func (o *BoundMethod) String() string { return o.Method.String() }

// IsFalsy implements Object interface.
func (o *BoundMethod) IsFalsy() bool { return false }

// Equal implements Object interface.
func (o *BoundMethod) Equal(right Object) bool {
	v, ok := right.(*BoundMethod)
	return ok && o == v
}
