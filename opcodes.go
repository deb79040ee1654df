// Copyright (c) 2026 Dmitry Majere.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package golox

// Opcode represents a single byte operation code.
type Opcode = byte

// List of opcodes
const (
	OpConstant Opcode = iota
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpGetLocal
	OpSetLocal
	OpGetGlobal
	OpDefineGlobal
	OpSetGlobal
	OpGetUpvalue
	OpSetUpvalue
	OpCloseUpvalue
	OpGetProperty
	OpSetProperty
	OpEqual
	OpNotEqual
	OpGreater
	OpLess
	OpGreaterEqual
	OpLessEqual
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpNegate
	OpPrint
	OpJump
	OpJumpFalsy
	OpLoop
	OpCall
	OpInvoke
	OpClosure
	OpClass
	OpMethod
	OpInherit
	OpGetSuper
	OpSuperInvoke
	OpReturn
)

// OpcodeNames are string representation of opcodes.
var OpcodeNames = [...]string{
	OpConstant:     "CONSTANT",
	OpNil:          "NIL",
	OpTrue:         "TRUE",
	OpFalse:        "FALSE",
	OpPop:          "POP",
	OpGetLocal:     "GETLOCAL",
	OpSetLocal:     "SETLOCAL",
	OpGetGlobal:    "GETGLOBAL",
	OpDefineGlobal: "DEFINEGLOBAL",
	OpSetGlobal:    "SETGLOBAL",
	OpGetUpvalue:   "GETUPVALUE",
	OpSetUpvalue:   "SETUPVALUE",
	OpCloseUpvalue: "CLOSEUPVALUE",
	OpGetProperty:  "GETPROPERTY",
	OpSetProperty:  "SETPROPERTY",
	OpEqual:        "EQUAL",
	OpNotEqual:     "NOTEQUAL",
	OpGreater:      "GREATER",
	OpLess:         "LESS",
	OpGreaterEqual: "GREATEREQUAL",
	OpLessEqual:    "LESSEQUAL",
	OpAdd:          "ADD",
	OpSubtract:     "SUBTRACT",
	OpMultiply:     "MULTIPLY",
	OpDivide:       "DIVIDE",
	OpNot:          "NOT",
	OpNegate:       "NEGATE",
	OpPrint:        "PRINT",
	OpJump:         "JUMP",
	OpJumpFalsy:    "JUMPFALSY",
	OpLoop:         "LOOP",
	OpCall:         "CALL",
	OpInvoke:       "INVOKE",
	OpClosure:      "CLOSURE",
	OpClass:        "CLASS",
	OpMethod:       "METHOD",
	OpInherit:      "INHERIT",
	OpGetSuper:     "GETSUPER",
	OpSuperInvoke:  "SUPERINVOKE",
	OpReturn:       "RETURN",
}

// OpcodeOperands is the width of each operand in bytes. OpClosure is followed
// by a variable part as well: one (isLocal, index) byte pair per upvalue of
// the referenced function constant.
var OpcodeOperands = [...][]int{
	OpConstant:     {1}, // constant index
	OpNil:          {},
	OpTrue:         {},
	OpFalse:        {},
	OpPop:          {},
	OpGetLocal:     {1}, // local slot
	OpSetLocal:     {1}, // local slot
	OpGetGlobal:    {1}, // constant index of name
	OpDefineGlobal: {1}, // constant index of name
	OpSetGlobal:    {1}, // constant index of name
	OpGetUpvalue:   {1}, // upvalue index
	OpSetUpvalue:   {1}, // upvalue index
	OpCloseUpvalue: {},
	OpGetProperty:  {1}, // constant index of name
	OpSetProperty:  {1}, // constant index of name
	OpEqual:        {},
	OpNotEqual:     {},
	OpGreater:      {},
	OpLess:         {},
	OpGreaterEqual: {},
	OpLessEqual:    {},
	OpAdd:          {},
	OpSubtract:     {},
	OpMultiply:     {},
	OpDivide:       {},
	OpNot:          {},
	OpNegate:       {},
	OpPrint:        {},
	OpJump:         {2}, // forward offset
	OpJumpFalsy:    {2}, // forward offset
	OpLoop:         {2}, // backward offset
	OpCall:         {1}, // number of arguments
	OpInvoke:       {1, 1}, // constant index of name, number of arguments
	OpClosure:      {1}, // constant index of function
	OpClass:        {1}, // constant index of name
	OpMethod:       {1}, // constant index of name
	OpInherit:      {},
	OpGetSuper:     {1}, // constant index of name
	OpSuperInvoke:  {1, 1}, // constant index of name, number of arguments
	OpReturn:       {},
}

// ReadOperands reads operands from the bytecode. Given operands slice is used
// to fill operands and is returned to allocate less.
func ReadOperands(numOperands []int, ins []byte, operands []int) ([]int, int) {
	operands = operands[:0]
	var offset int
	for _, width := range numOperands {
		switch width {
		case 1:
			operands = append(operands, int(ins[offset]))
		case 2:
			operands = append(operands, int(ins[offset+1])|int(ins[offset])<<8)
		}
		offset += width
	}
	return operands, offset
}

// MakeInstruction returns the encoded form of an opcode and its operands.
// The variable part of OpClosure is not encoded here; the compiler appends
// the upvalue byte pairs itself.
func MakeInstruction(op Opcode, args ...int) []byte {
	operands := OpcodeOperands[op]
	if len(operands) != len(args) {
		panic("MakeInstruction: " + OpcodeNames[op] + ": wrong operand count")
	}
	inst := make([]byte, 0, 3)
	inst = append(inst, op)
	for i, width := range operands {
		switch width {
		case 1:
			inst = append(inst, byte(args[i]))
		case 2:
			inst = append(inst, byte(args[i]>>8), byte(args[i]))
		}
	}
	return inst
}
