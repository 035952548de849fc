package vm

import (
	"strings"
)

// Opcode identifies one machine operation. It is carried in the first
// byte of every instruction word.
type Opcode byte

const (
	HLT  = Opcode(0)  // Stop execution.
	LOAD = Opcode(1)  // reg = I16, sign extended.
	ADD  = Opcode(2)  // reg3 = reg1 + reg2
	MUL  = Opcode(3)  // reg3 = reg1 * reg2
	SUB  = Opcode(4)  // reg3 = reg1 - reg2
	DIV  = Opcode(5)  // reg3 = reg1 / reg2, remainder register updated
	JMP  = Opcode(6)  // pc = reg, absolute byte offset
	JMPF = Opcode(7)  // pc += reg
	JMPB = Opcode(8)  // pc -= reg
	EQ   = Opcode(9)  // equal flag = (reg1 == reg2)
	NEQ  = Opcode(10) // equal flag = (reg1 != reg2)
	GT   = Opcode(11) // equal flag = (reg1 > reg2)
	GTE  = Opcode(12) // equal flag = (reg1 >= reg2)
	LT   = Opcode(13) // equal flag = (reg1 < reg2)
	LTE  = Opcode(14) // equal flag = (reg1 <= reg2)
	JEQ  = Opcode(15) // pc = reg when the equal flag is set
	JNEQ = Opcode(16) // pc = reg when the equal flag is clear
	ALOC = Opcode(17) // grow the heap by reg bytes, zero filled
	INC  = Opcode(18) // reg += 1
	DEC  = Opcode(19) // reg -= 1
	IGL  = Opcode(255)
)

// Shape describes the operand layout of an opcode within its four-byte word.
type Shape struct {
	Registers int  // Number of register operands.
	Immediate bool // A 16-bit big-endian immediate follows the register.
}

var opcodeShapes = map[Opcode]Shape{
	HLT:  {},
	LOAD: {Registers: 1, Immediate: true},
	ADD:  {Registers: 3},
	MUL:  {Registers: 3},
	SUB:  {Registers: 3},
	DIV:  {Registers: 3},
	JMP:  {Registers: 1},
	JMPF: {Registers: 1},
	JMPB: {Registers: 1},
	EQ:   {Registers: 2},
	NEQ:  {Registers: 2},
	GT:   {Registers: 2},
	GTE:  {Registers: 2},
	LT:   {Registers: 2},
	LTE:  {Registers: 2},
	JEQ:  {Registers: 1},
	JNEQ: {Registers: 1},
	ALOC: {Registers: 1},
	INC:  {Registers: 1},
	DEC:  {Registers: 1},
}

var opcodeNames = map[Opcode]string{
	HLT:  "HLT",
	LOAD: "LOAD",
	ADD:  "ADD",
	MUL:  "MUL",
	SUB:  "SUB",
	DIV:  "DIV",
	JMP:  "JMP",
	JMPF: "JMPF",
	JMPB: "JMPB",
	EQ:   "EQ",
	NEQ:  "NEQ",
	GT:   "GT",
	GTE:  "GTE",
	LT:   "LT",
	LTE:  "LTE",
	JEQ:  "JEQ",
	JNEQ: "JNEQ",
	ALOC: "ALOC",
	INC:  "INC",
	DEC:  "DEC",
}

var opcodeByName = func() map[string]Opcode {
	byName := make(map[string]Opcode, len(opcodeNames))
	for op, name := range opcodeNames {
		byName[name] = op
	}
	return byName
}()

// String returns the canonical upper-case mnemonic.
func (op Opcode) String() string {
	name, ok := opcodeNames[op]
	if !ok {
		return "IGL"
	}
	return name
}

// Shape returns the operand layout of the opcode. ok is false for IGL
// and for any byte value outside the instruction set.
func (op Opcode) Shape() (shape Shape, ok bool) {
	shape, ok = opcodeShapes[op]
	return
}

// DecodeOpcode maps a byte to its Opcode. The mapping is total: byte
// values outside the instruction set decode to IGL, never to an error.
// Rejecting an illegal instruction is the executor's job.
func DecodeOpcode(v byte) Opcode {
	if _, ok := opcodeShapes[Opcode(v)]; ok {
		return Opcode(v)
	}
	return IGL
}

// OpcodeByName maps a mnemonic, case-insensitively, to its Opcode.
func OpcodeByName(name string) (op Opcode, ok bool) {
	op, ok = opcodeByName[strings.ToUpper(name)]
	if !ok {
		op = IGL
	}
	return
}
