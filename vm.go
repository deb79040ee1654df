// Copyright (c) 2026 Dmitry Majere.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package golox

import (
	"fmt"
	"io"
	"os"
)

const (
	framesMax = 64
	stackSize = framesMax * maxLocals
)

const outputPrompt = "[Out]: "

// frame captures one in-flight call: its closure, instruction pointer and
// the stack slot of the callee. Locals of the call occupy base, base+1, ...
// with the callee (or 'this') in slot base itself.
type frame struct {
	closure *Closure
	ip      int
	base    int
}

// VM executes compiled functions. It owns the operand stack, the call frame
// stack, the global table and the open upvalue list; one VM runs one script
// at a time on the calling goroutine. Globals survive across Run calls so a
// REPL can keep state.
type VM struct {
	stack      [stackSize]Object
	sp         int
	frames     [framesMax]frame
	frameCount int
	curFrame   *frame
	globals    map[string]Object
	openUpvals *Upvalue
	out        io.Writer
	traceOut   io.Writer
}

// NewVM creates a VM with the builtin native functions defined as globals
// and output directed to stdout.
func NewVM() *VM {
	vm := &VM{
		globals: make(map[string]Object),
		out:     os.Stdout,
	}
	for name, fn := range DefaultGlobals() {
		vm.globals[name] = fn
	}
	return vm
}

// SetOut redirects print output.
func (vm *VM) SetOut(w io.Writer) *VM {
	vm.out = w
	return vm
}

// SetStackTrace enables a per instruction dump of the operand stack to w.
func (vm *VM) SetStackTrace(w io.Writer) *VM {
	vm.traceOut = w
	return vm
}

// SetGlobal defines a global, typically to register a host function.
func (vm *VM) SetGlobal(name string, value Object) *VM {
	vm.globals[name] = value
	return vm
}

// Globals returns the global table. The returned map is live.
func (vm *VM) Globals() map[string]Object {
	return vm.globals
}

// Run wraps the script function in a closure and executes it. On a runtime
// error the operand and frame stacks are dropped; globals are kept.
func (vm *VM) Run(fn *Function) error {
	vm.reset()
	closure := &Closure{Fn: fn}
	vm.stack[vm.sp] = closure
	vm.sp++
	if cerr := vm.callClosure(closure, 0); cerr != nil {
		vm.reset()
		return &RuntimeError{Err: cerr}
	}
	if rerr := vm.run(); rerr != nil {
		vm.reset()
		return rerr
	}
	return nil
}

func (vm *VM) reset() {
	for i := 0; i < vm.sp; i++ {
		vm.stack[i] = nil
	}
	vm.sp = 0
	vm.frameCount = 0
	vm.curFrame = nil
	vm.openUpvals = nil
}

// ---------------------------------------------------------
// dispatch

func (vm *VM) run() *RuntimeError {
	for {
		if vm.traceOut != nil {
			vm.dumpStack()
		}
		if vm.sp+1 >= stackSize {
			return vm.runtimeError(ErrStackOverflow)
		}

		switch op := vm.readByte(); op {
		case OpConstant:
			vm.push(vm.readConstant())
		case OpNil:
			vm.push(Nil)
		case OpTrue:
			vm.push(True)
		case OpFalse:
			vm.push(False)
		case OpPop:
			vm.pop()

		case OpGetLocal:
			slot := int(vm.readByte())
			vm.push(vm.stack[vm.curFrame.base+slot])
		case OpSetLocal:
			slot := int(vm.readByte())
			vm.stack[vm.curFrame.base+slot] = vm.peek(0)

		case OpGetGlobal:
			name := vm.readString()
			v, ok := vm.globals[name]
			if !ok {
				return vm.runtimeError(
					ErrUndefinedGlobal.NewError("undefined variable '" + name + "'"))
			}
			vm.push(v)
		case OpDefineGlobal:
			name := vm.readString()
			if _, ok := vm.globals[name]; ok {
				return vm.runtimeError(
					ErrGlobalRedefinition.NewError("variable '" + name + "' already defined"))
			}
			vm.globals[name] = vm.peek(0)
			vm.pop()
		case OpSetGlobal:
			// assignment is an expression, the value stays on the stack
			name := vm.readString()
			if _, ok := vm.globals[name]; !ok {
				return vm.runtimeError(
					ErrUndefinedGlobal.NewError("undefined variable '" + name + "'"))
			}
			vm.globals[name] = vm.peek(0)

		case OpGetUpvalue:
			slot := int(vm.readByte())
			vm.push(vm.upvalueGet(vm.curFrame.closure.Upvalues[slot]))
		case OpSetUpvalue:
			slot := int(vm.readByte())
			vm.upvalueSet(vm.curFrame.closure.Upvalues[slot], vm.peek(0))
		case OpCloseUpvalue:
			vm.closeUpvalues(vm.sp - 1)
			vm.pop()

		case OpGetProperty:
			name := vm.readString()
			inst, ok := vm.peek(0).(*Instance)
			if !ok {
				return vm.runtimeError(ErrType.NewError(
					"only instances have properties, got '" + vm.peek(0).TypeName() + "'"))
			}
			if v, ok := inst.Fields[name]; ok {
				vm.stack[vm.sp-1] = v
				break
			}
			method, ok := inst.Class.Methods[name]
			if !ok {
				return vm.runtimeError(
					ErrUndefinedProperty.NewError("undefined property '" + name + "'"))
			}
			vm.stack[vm.sp-1] = &BoundMethod{Receiver: inst, Method: method}
		case OpSetProperty:
			name := vm.readString()
			inst, ok := vm.peek(1).(*Instance)
			if !ok {
				return vm.runtimeError(ErrType.NewError(
					"only instances have fields, got '" + vm.peek(1).TypeName() + "'"))
			}
			value := vm.peek(0)
			inst.Fields[name] = value
			vm.sp--
			vm.stack[vm.sp] = nil
			vm.stack[vm.sp-1] = value

		case OpEqual:
			right := vm.pop()
			left := vm.pop()
			vm.push(Bool(left.Equal(right)))
		case OpNotEqual:
			right := vm.pop()
			left := vm.pop()
			vm.push(Bool(!left.Equal(right)))

		case OpGreater, OpLess, OpGreaterEqual, OpLessEqual:
			if rerr := vm.compareOp(op); rerr != nil {
				return rerr
			}
		case OpAdd:
			if rerr := vm.addOp(); rerr != nil {
				return rerr
			}
		case OpSubtract, OpMultiply, OpDivide:
			if rerr := vm.arithmeticOp(op); rerr != nil {
				return rerr
			}

		case OpNot:
			vm.stack[vm.sp-1] = Bool(vm.peek(0).IsFalsy())
		case OpNegate:
			n, ok := vm.peek(0).(Number)
			if !ok {
				return vm.runtimeError(ErrType.NewError("operand must be a number"))
			}
			vm.stack[vm.sp-1] = -n

		case OpPrint:
			_, _ = fmt.Fprintf(vm.out, "%s%s\n", outputPrompt, vm.peek(0).String())

		case OpJump:
			offset := vm.readShort()
			vm.curFrame.ip += offset
		case OpJumpFalsy:
			// peeks the condition, the compiler pops it on both paths
			offset := vm.readShort()
			if vm.peek(0).IsFalsy() {
				vm.curFrame.ip += offset
			}
		case OpLoop:
			offset := vm.readShort()
			vm.curFrame.ip -= offset

		case OpCall:
			argc := int(vm.readByte())
			if cerr := vm.callValue(vm.peek(argc), argc); cerr != nil {
				return vm.runtimeError(cerr)
			}
		case OpInvoke:
			name := vm.readString()
			argc := int(vm.readByte())
			if cerr := vm.invoke(name, argc); cerr != nil {
				return vm.runtimeError(cerr)
			}
		case OpSuperInvoke:
			name := vm.readString()
			argc := int(vm.readByte())
			superclass, ok := vm.pop().(*Class)
			if !ok {
				return vm.runtimeError(ErrSuperclassNotAClass)
			}
			if cerr := vm.invokeFromClass(superclass, name, argc); cerr != nil {
				return vm.runtimeError(cerr)
			}

		case OpClosure:
			fn := vm.readConstant().(*Function)
			closure := &Closure{
				Fn:       fn,
				Upvalues: make([]*Upvalue, 0, len(fn.Chunk.Upvalues)),
			}
			for range fn.Chunk.Upvalues {
				isLocal := vm.readByte()
				index := int(vm.readByte())
				if isLocal == 1 {
					closure.Upvalues = append(closure.Upvalues,
						vm.captureUpvalue(vm.curFrame.base+index))
				} else {
					closure.Upvalues = append(closure.Upvalues,
						vm.curFrame.closure.Upvalues[index])
				}
			}
			vm.push(closure)

		case OpClass:
			vm.push(NewClass(vm.readString()))
		case OpMethod:
			name := vm.readString()
			method := vm.peek(0).(*Closure)
			class := vm.peek(1).(*Class)
			class.Methods[name] = method
			vm.pop()
		case OpInherit:
			superclass, ok := vm.peek(1).(*Class)
			if !ok {
				return vm.runtimeError(ErrSuperclassNotAClass)
			}
			subclass := vm.peek(0).(*Class)
			for name, method := range superclass.Methods {
				subclass.Methods[name] = method
			}
			vm.pop()
		case OpGetSuper:
			name := vm.readString()
			superclass, ok := vm.pop().(*Class)
			if !ok {
				return vm.runtimeError(ErrSuperclassNotAClass)
			}
			method, ok := superclass.Methods[name]
			if !ok {
				return vm.runtimeError(
					ErrUndefinedProperty.NewError("undefined property '" + name + "'"))
			}
			receiver := vm.peek(0).(*Instance)
			vm.stack[vm.sp-1] = &BoundMethod{Receiver: receiver, Method: method}

		case OpReturn:
			result := vm.pop()
			base := vm.curFrame.base
			vm.closeUpvalues(base)
			vm.frameCount--
			if vm.frameCount == 0 {
				for i := vm.sp - 1; i >= base; i-- {
					vm.stack[i] = nil
				}
				vm.sp = base
				return nil
			}
			for i := vm.sp - 1; i >= base; i-- {
				vm.stack[i] = nil
			}
			vm.sp = base
			vm.push(result)
			vm.curFrame = &vm.frames[vm.frameCount-1]

		default:
			return vm.runtimeError(&Error{
				Name:    "InternalError",
				Message: fmt.Sprintf("unknown opcode %d", op),
			})
		}
	}
}

// ---------------------------------------------------------
// calls

// callValue dispatches a call on the kind of the callee sitting at
// peek(argc), with the arguments above it.
func (vm *VM) callValue(callee Object, argc int) *Error {
	switch callee := callee.(type) {
	case *Closure:
		return vm.callClosure(callee, argc)
	case *NativeFunction:
		result, err := callee.Value(vm.stack[vm.sp-argc : vm.sp]...)
		if err != nil {
			if e, ok := err.(*Error); ok {
				return e
			}
			return &Error{Name: "NativeError", Message: err.Error(), Cause: err}
		}
		// the callee and exactly argc arguments are consumed
		for i := vm.sp - argc - 1; i < vm.sp; i++ {
			vm.stack[i] = nil
		}
		vm.sp -= argc + 1
		if result == nil {
			result = Nil
		}
		vm.push(result)
		return nil
	case *Class:
		instance := NewInstance(callee)
		vm.stack[vm.sp-argc-1] = instance
		if init, ok := callee.Methods["init"]; ok {
			return vm.callClosure(init, argc)
		}
		if argc != 0 {
			return ErrWrongNumArguments.NewError(fmt.Sprintf("want=0 got=%d", argc))
		}
		return nil
	case *BoundMethod:
		vm.stack[vm.sp-argc-1] = callee.Receiver
		return vm.callClosure(callee.Method, argc)
	default:
		return ErrNotCallable
	}
}

func (vm *VM) callClosure(closure *Closure, argc int) *Error {
	if argc != closure.Fn.Arity {
		return ErrWrongNumArguments.NewError(
			fmt.Sprintf("want=%d got=%d", closure.Fn.Arity, argc))
	}
	if vm.frameCount == framesMax {
		return ErrStackOverflow
	}
	f := &vm.frames[vm.frameCount]
	vm.frameCount++
	f.closure = closure
	f.ip = 0
	f.base = vm.sp - argc - 1
	vm.curFrame = f
	return nil
}

// invoke is the fused property access and call. A field with the invoked
// name shadows any method of the same name.
func (vm *VM) invoke(name string, argc int) *Error {
	receiver := vm.peek(argc)
	inst, ok := receiver.(*Instance)
	if !ok {
		return ErrType.NewError(
			"only instances have methods, got '" + receiver.TypeName() + "'")
	}
	if field, ok := inst.Fields[name]; ok {
		vm.stack[vm.sp-argc-1] = field
		return vm.callValue(field, argc)
	}
	return vm.invokeFromClass(inst.Class, name, argc)
}

func (vm *VM) invokeFromClass(class *Class, name string, argc int) *Error {
	method, ok := class.Methods[name]
	if !ok {
		return ErrUndefinedProperty.NewError("undefined property '" + name + "'")
	}
	return vm.callClosure(method, argc)
}

// ---------------------------------------------------------
// upvalues

// captureUpvalue returns the open upvalue for a stack slot, creating and
// inserting it in the sorted list when the slot is captured for the first
// time.
func (vm *VM) captureUpvalue(slot int) *Upvalue {
	var prev *Upvalue
	u := vm.openUpvals
	for u != nil && u.slot > slot {
		prev = u
		u = u.next
	}
	if u != nil && u.slot == slot {
		return u
	}
	created := &Upvalue{slot: slot, next: u}
	if prev == nil {
		vm.openUpvals = created
	} else {
		prev.next = created
	}
	return created
}

// closeUpvalues closes every open upvalue at or above the given slot,
// moving the stack value into the upvalue itself.
func (vm *VM) closeUpvalues(downTo int) {
	for vm.openUpvals != nil && vm.openUpvals.slot >= downTo {
		u := vm.openUpvals
		u.closed = vm.stack[u.slot]
		u.slot = -1
		vm.openUpvals = u.next
		u.next = nil
	}
}

func (vm *VM) upvalueGet(u *Upvalue) Object {
	if u.IsOpen() {
		return vm.stack[u.slot]
	}
	return u.closed
}

func (vm *VM) upvalueSet(u *Upvalue, v Object) {
	if u.IsOpen() {
		vm.stack[u.slot] = v
		return
	}
	u.closed = v
}

// ---------------------------------------------------------
// operators

func (vm *VM) addOp() *RuntimeError {
	left := vm.peek(1)
	right := vm.peek(0)

	if l, ok := left.(Number); ok {
		if r, ok := right.(Number); ok {
			vm.popTwoAndPush(l + r)
			return nil
		}
	}
	// either side a string concatenates, the other side rendered printable
	_, lstr := left.(String)
	_, rstr := right.(String)
	if lstr || rstr {
		vm.popTwoAndPush(String(left.String() + right.String()))
		return nil
	}
	return vm.runtimeError(NewOperandTypeError("+", left.TypeName(), right.TypeName()))
}

func (vm *VM) arithmeticOp(op Opcode) *RuntimeError {
	right, ok := vm.peek(0).(Number)
	if !ok {
		return vm.runtimeError(NewOperandTypeError(
			OpcodeNames[op], vm.peek(1).TypeName(), vm.peek(0).TypeName()))
	}
	left, ok := vm.peek(1).(Number)
	if !ok {
		return vm.runtimeError(NewOperandTypeError(
			OpcodeNames[op], vm.peek(1).TypeName(), vm.peek(0).TypeName()))
	}
	switch op {
	case OpSubtract:
		vm.popTwoAndPush(left - right)
	case OpMultiply:
		vm.popTwoAndPush(left * right)
	case OpDivide:
		vm.popTwoAndPush(left / right)
	}
	return nil
}

func (vm *VM) compareOp(op Opcode) *RuntimeError {
	right, ok := vm.peek(0).(Number)
	if !ok {
		return vm.runtimeError(NewOperandTypeError(
			OpcodeNames[op], vm.peek(1).TypeName(), vm.peek(0).TypeName()))
	}
	left, ok := vm.peek(1).(Number)
	if !ok {
		return vm.runtimeError(NewOperandTypeError(
			OpcodeNames[op], vm.peek(1).TypeName(), vm.peek(0).TypeName()))
	}
	var result Bool
	switch op {
	case OpGreater:
		result = Bool(left > right)
	case OpLess:
		result = Bool(left < right)
	case OpGreaterEqual:
		result = Bool(left >= right)
	case OpLessEqual:
		result = Bool(left <= right)
	}
	vm.popTwoAndPush(result)
	return nil
}

// NewOperandTypeError creates a new Error from ErrType.
func NewOperandTypeError(op, leftType, rightType string) *Error {
	return ErrType.NewError(fmt.Sprintf(
		"unsupported operand types for '%s': '%s' and '%s'", op, leftType, rightType))
}

// ---------------------------------------------------------
// stack and decoding helpers

func (vm *VM) push(v Object) {
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) pop() Object {
	vm.sp--
	v := vm.stack[vm.sp]
	vm.stack[vm.sp] = nil
	return v
}

func (vm *VM) peek(n int) Object {
	return vm.stack[vm.sp-1-n]
}

func (vm *VM) popTwoAndPush(v Object) {
	vm.sp--
	vm.stack[vm.sp] = nil
	vm.stack[vm.sp-1] = v
}

func (vm *VM) readByte() byte {
	f := vm.curFrame
	b := f.closure.Fn.Chunk.Code[f.ip]
	f.ip++
	return b
}

func (vm *VM) readShort() int {
	f := vm.curFrame
	code := f.closure.Fn.Chunk.Code
	f.ip += 2
	return int(code[f.ip-1]) | int(code[f.ip-2])<<8
}

func (vm *VM) readConstant() Object {
	return vm.curFrame.closure.Fn.Chunk.Constants[vm.readByte()]
}

func (vm *VM) readString() string {
	return string(vm.readConstant().(String))
}

// runtimeError annotates err with the source line of every frame, innermost
// first.
func (vm *VM) runtimeError(err *Error) *RuntimeError {
	rte := &RuntimeError{Err: err}
	for i := vm.frameCount - 1; i >= 0; i-- {
		f := &vm.frames[i]
		chunk := f.closure.Fn.Chunk
		if ip := f.ip - 1; ip >= 0 && ip < len(chunk.Lines) {
			rte.addTrace(chunk.Lines[ip])
		}
	}
	return rte
}

func (vm *VM) dumpStack() {
	_, _ = fmt.Fprint(vm.traceOut, "          ")
	for i := 0; i < vm.sp; i++ {
		v := vm.stack[i]
		if s, ok := v.(String); ok {
			_, _ = fmt.Fprintf(vm.traceOut, "[ %s ]", s.Quoted())
		} else {
			_, _ = fmt.Fprintf(vm.traceOut, "[ %s ]", v.String())
		}
	}
	_, _ = fmt.Fprintln(vm.traceOut)
}
