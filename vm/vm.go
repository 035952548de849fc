package vm

import (
	"fmt"
	"iter"

	log "github.com/sirupsen/logrus"

	"github.com/azadvm/azad/internal"
)

// NumRegisters is the size of the register file.
const NumRegisters = 32

// VM is one independent instance of the azad machine. Instances share no
// state; tests and the REPL may hold several at once.
type VM struct {
	registers [NumRegisters]int32 // Register file.
	pc        int                 // Byte offset of the next opcode to fetch.
	program   []byte              // Loaded code section.
	remainder uint32              // Remainder of the last integer division.
	equal     bool                // Result of the last comparison.
	heap      []byte              // Grown only by ALOC, zero filled.
	steps     int                 // Instructions executed since the last Reset.
}

// New creates a fresh VM with an empty program.
func New() *VM {
	return &VM{}
}

// Reset returns the VM to its initial state, dropping the loaded program
// and the heap.
func (vm *VM) Reset() {
	*vm = VM{}
}

// Load replaces the program with the given bytes and rewinds the program
// counter. A container header, when present, is verified and stripped.
func (vm *VM) Load(raw []byte) (err error) {
	code, err := StripHeader(raw)
	if err != nil {
		return
	}

	log.Debugf("vm: load %d code bytes", len(code))

	vm.program = append(vm.program[:0], code...)
	vm.pc = 0

	return
}

// Append extends the loaded program without disturbing the program
// counter, so a REPL can feed incremental fragments. A container header,
// when present, is verified and stripped.
func (vm *VM) Append(raw []byte) (err error) {
	code, err := StripHeader(raw)
	if err != nil {
		return
	}

	vm.program = append(vm.program, code...)

	return
}

// Program returns the loaded code section.
func (vm *VM) Program() []byte {
	return vm.program
}

// PC returns the current program counter.
func (vm *VM) PC() int {
	return vm.pc
}

// Equal returns the equality flag written by the comparison instructions.
func (vm *VM) Equal() bool {
	return vm.equal
}

// Remainder returns the remainder of the last integer division.
func (vm *VM) Remainder() uint32 {
	return vm.remainder
}

// HeapSize returns the current heap size in bytes.
func (vm *VM) HeapSize() int {
	return len(vm.heap)
}

// Register returns the value of one register.
func (vm *VM) Register(index int) (value int32, err error) {
	if index < 0 || index >= NumRegisters {
		err = ErrRegisterRange
		return
	}

	value = vm.registers[index]

	return
}

// Registers iterates over the register file in order. The sequence is
// restartable and always yields NumRegisters values.
func (vm *VM) Registers() iter.Seq[int32] {
	return func(yield func(int32) bool) {
		for _, value := range vm.registers {
			if !yield(value) {
				return
			}
		}
	}
}

// Dump iterates over a diagnostic snapshot of the machine state.
func (vm *VM) Dump() iter.Seq2[string, string] {
	state := func(yield func(string, string) bool) {
		_ = yield("pc", fmt.Sprintf("%d", vm.pc)) &&
			yield("equal", fmt.Sprintf("%v", vm.equal)) &&
			yield("remainder", fmt.Sprintf("%d", vm.remainder)) &&
			yield("heap", fmt.Sprintf("%d", len(vm.heap)))
	}
	stats := func(yield func(string, string) bool) {
		_ = yield("steps", fmt.Sprintf("%d", vm.steps)) &&
			yield("program", fmt.Sprintf("%d", len(vm.program)))
	}

	return internal.ConcatSeq2(state, stats)
}

// Run executes instructions until a terminal condition: HLT, the end of
// the program, an illegal opcode, or an execution fault. Only the latter
// two return an error.
func (vm *VM) Run() (err error) {
	var done bool
	for !done && err == nil {
		done, err = vm.step()
	}

	return
}

// RunOnce executes at most one instruction. done reports a terminal
// condition; with the program counter already at or past the end of the
// program it is a no-op.
func (vm *VM) RunOnce() (done bool, err error) {
	return vm.step()
}

func (vm *VM) step() (done bool, err error) {
	if vm.pc >= len(vm.program) {
		done = true
		return
	}

	base := vm.pc
	defer func() {
		if err != nil {
			done = true
			err = &Fault{Offset: base, Err: err}
		}
	}()

	op := DecodeOpcode(vm.program[vm.pc])
	vm.pc++
	vm.steps++

	switch op {
	case HLT:
		log.Debugf("vm: halt at offset %d", base)
		done = true

	case LOAD:
		var index byte
		var value uint16
		if index, err = vm.regIndex(); err != nil {
			return
		}
		if value, err = vm.next16(); err != nil {
			return
		}
		vm.registers[index] = int32(int16(value))
		vm.pc = base + InstructionSize

	case ADD, SUB, MUL, DIV:
		var lhs, rhs int32
		var index byte
		if lhs, err = vm.readReg(); err != nil {
			return
		}
		if rhs, err = vm.readReg(); err != nil {
			return
		}
		if index, err = vm.regIndex(); err != nil {
			return
		}
		switch op {
		case ADD:
			vm.registers[index] = lhs + rhs
		case SUB:
			vm.registers[index] = lhs - rhs
		case MUL:
			vm.registers[index] = lhs * rhs
		case DIV:
			if rhs == 0 {
				err = ErrDivideByZero
				return
			}
			vm.registers[index] = lhs / rhs
			vm.remainder = uint32(lhs % rhs)
		}
		vm.pc = base + InstructionSize

	case JMP:
		var target int32
		if target, err = vm.readReg(); err != nil {
			return
		}
		if target < 0 {
			err = ErrPcRange
			return
		}
		vm.pc = int(target)

	case JMPF, JMPB:
		var delta int32
		if delta, err = vm.readReg(); err != nil {
			return
		}
		// Relative to the position just past the operand byte, which
		// is how the encoding counts it.
		next := vm.pc
		if op == JMPF {
			next += int(delta)
		} else {
			next -= int(delta)
		}
		if next < 0 {
			err = ErrPcRange
			return
		}
		vm.pc = next

	case EQ, NEQ, GT, GTE, LT, LTE:
		var lhs, rhs int32
		if lhs, err = vm.readReg(); err != nil {
			return
		}
		if rhs, err = vm.readReg(); err != nil {
			return
		}
		switch op {
		case EQ:
			vm.equal = lhs == rhs
		case NEQ:
			vm.equal = lhs != rhs
		case GT:
			vm.equal = lhs > rhs
		case GTE:
			vm.equal = lhs >= rhs
		case LT:
			vm.equal = lhs < rhs
		case LTE:
			vm.equal = lhs <= rhs
		}
		// The third operand byte is pad. Consume it so the program
		// counter stays word aligned.
		vm.pc = base + InstructionSize

	case JEQ, JNEQ:
		var target int32
		if target, err = vm.readReg(); err != nil {
			return
		}
		if vm.equal == (op == JEQ) {
			if target < 0 {
				err = ErrPcRange
				return
			}
			vm.pc = int(target)
		} else {
			vm.pc = base + InstructionSize
		}

	case ALOC:
		var amount int32
		if amount, err = vm.readReg(); err != nil {
			return
		}
		if amount < 0 {
			err = ErrHeapGrow
			return
		}
		vm.heap = append(vm.heap, make([]byte, amount)...)
		vm.pc = base + InstructionSize

	case INC, DEC:
		var index byte
		if index, err = vm.regIndex(); err != nil {
			return
		}
		if op == INC {
			vm.registers[index]++
		} else {
			vm.registers[index]--
		}
		vm.pc = base + InstructionSize

	default:
		log.Debugf("vm: illegal opcode 0x%02x at offset %d", vm.program[base], base)
		err = ErrIllegalOpcode
	}

	return
}

// next8 consumes one program byte.
func (vm *VM) next8() (value byte, err error) {
	if vm.pc >= len(vm.program) {
		err = ErrTruncated
		return
	}

	value = vm.program[vm.pc]
	vm.pc++

	return
}

// next16 consumes a 16-bit big-endian immediate.
func (vm *VM) next16() (value uint16, err error) {
	hi, err := vm.next8()
	if err != nil {
		return
	}
	lo, err := vm.next8()
	if err != nil {
		return
	}

	value = uint16(hi)<<8 | uint16(lo)

	return
}

// regIndex consumes a register operand and validates it against the
// register file size.
func (vm *VM) regIndex() (index byte, err error) {
	index, err = vm.next8()
	if err != nil {
		return
	}

	if int(index) >= NumRegisters {
		err = ErrRegisterRange
	}

	return
}

// readReg consumes a register operand and returns the register's value.
func (vm *VM) readReg() (value int32, err error) {
	index, err := vm.regIndex()
	if err != nil {
		return
	}

	value = vm.registers[index]

	return
}
