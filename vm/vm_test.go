package vm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHlt(t *testing.T) {
	assert := assert.New(t)

	vm := New()
	vm.program = []byte{byte(HLT), Pad, Pad, Pad}

	assert.NoError(vm.Run())
	assert.Equal(1, vm.pc)
}

func TestLoad(t *testing.T) {
	assert := assert.New(t)

	vm := New()
	// LOAD $0 #500
	vm.program = []byte{byte(LOAD), 0, 1, 244}

	assert.NoError(vm.Run())
	assert.Equal(int32(500), vm.registers[0])
	assert.Equal(4, vm.pc)
}

func TestLoadSignExtends(t *testing.T) {
	assert := assert.New(t)

	vm := New()
	// LOAD $3 #-5
	vm.program = []byte{byte(LOAD), 3, 0xFF, 0xFB}

	assert.NoError(vm.Run())
	assert.Equal(int32(-5), vm.registers[3])
}

func TestArithmetic(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name      string
		op        Opcode
		a, b      int32
		result    int32
		remainder uint32
	}){
		{"add", ADD, 10, 10, 20, 0},
		{"sub", SUB, 100, 10, 90, 0},
		{"mul", MUL, 10, 10, 100, 0},
		{"div", DIV, 21, 10, 2, 1},
		{"div_exact", DIV, 20, 10, 2, 0},
		{"add_negative", ADD, -7, 3, -4, 0},
	}

	for _, entry := range table {
		vm := New()
		vm.registers[0] = entry.a
		vm.registers[1] = entry.b
		vm.program = []byte{byte(entry.op), 0, 1, 2}

		assert.NoError(vm.Run(), entry.name)
		assert.Equal(entry.result, vm.registers[2], entry.name)
		assert.Equal(entry.remainder, vm.remainder, entry.name)
		assert.Equal(4, vm.pc, entry.name)
	}
}

func TestJmp(t *testing.T) {
	assert := assert.New(t)

	vm := New()
	vm.registers[0] = 0
	vm.program = []byte{byte(JMP), 0, Pad, Pad}

	// An absolute jump to offset 0 is an infinite loop; one step must
	// leave the program counter back at 0.
	done, err := vm.RunOnce()
	assert.NoError(err)
	assert.False(done)
	assert.Equal(0, vm.pc)
}

func TestJmpf(t *testing.T) {
	assert := assert.New(t)

	vm := New()
	vm.registers[0] = 2
	vm.program = []byte{byte(JMPF), 0, Pad, Pad, byte(HLT), Pad, Pad, Pad}

	done, err := vm.RunOnce()
	assert.NoError(err)
	assert.False(done)
	assert.Equal(4, vm.pc)
}

func TestJmpb(t *testing.T) {
	assert := assert.New(t)

	vm := New()
	vm.registers[1] = 2
	vm.program = []byte{byte(JMPB), 1, Pad, Pad}

	done, err := vm.RunOnce()
	assert.NoError(err)
	assert.False(done)
	assert.Equal(0, vm.pc)
}

func TestJmpNegativeTarget(t *testing.T) {
	assert := assert.New(t)

	vm := New()
	vm.registers[0] = -4
	vm.program = []byte{byte(JMP), 0, Pad, Pad}

	_, err := vm.RunOnce()
	assert.ErrorIs(err, ErrPcRange)
}

func TestComparisons(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		op    Opcode
		a, b  int32
		equal bool
	}){
		{"eq_true", EQ, 99, 99, true},
		{"eq_false", EQ, 99, 10, false},
		{"neq_true", NEQ, 99, 10, true},
		{"neq_false", NEQ, 99, 99, false},
		{"gt_true", GT, 100, 99, true},
		{"gt_false", GT, 99, 99, false},
		{"gte_true", GTE, 99, 99, true},
		{"gte_false", GTE, 9, 99, false},
		{"lt_true", LT, 10, 99, true},
		{"lt_false", LT, 100, 99, false},
		{"lte_true", LTE, 99, 99, true},
		{"lte_false", LTE, 199, 99, false},
	}

	for _, entry := range table {
		vm := New()
		vm.registers[0] = entry.a
		vm.registers[1] = entry.b
		vm.program = []byte{byte(entry.op), 0, 1, Pad}

		done, err := vm.RunOnce()
		assert.NoError(err, entry.name)
		assert.False(done, entry.name)
		assert.Equal(entry.equal, vm.equal, entry.name)

		// The third operand byte is pad, but the program counter still
		// advances a full instruction word.
		assert.Equal(4, vm.pc, entry.name)
	}
}

func TestJeqTaken(t *testing.T) {
	assert := assert.New(t)

	vm := New()
	vm.registers[0] = 7
	vm.registers[1] = 7
	vm.registers[2] = 12
	// EQ $0 $1 ; JEQ $2 ; HLT ; HLT
	vm.program = []byte{
		byte(EQ), 0, 1, Pad,
		byte(JEQ), 2, Pad, Pad,
		byte(HLT), Pad, Pad, Pad,
		byte(HLT), Pad, Pad, Pad,
	}

	_, err := vm.RunOnce()
	assert.NoError(err)
	assert.True(vm.equal)
	assert.Equal(4, vm.pc)

	_, err = vm.RunOnce()
	assert.NoError(err)
	assert.Equal(12, vm.pc)
}

func TestJeqNotTaken(t *testing.T) {
	assert := assert.New(t)

	vm := New()
	vm.registers[2] = 12
	vm.program = []byte{byte(JEQ), 2, Pad, Pad, byte(HLT), Pad, Pad, Pad}

	done, err := vm.RunOnce()
	assert.NoError(err)
	assert.False(done)
	assert.Equal(4, vm.pc)
}

func TestJneq(t *testing.T) {
	assert := assert.New(t)

	vm := New()
	vm.registers[0] = 8
	vm.program = []byte{byte(JNEQ), 0, Pad, Pad}

	_, err := vm.RunOnce()
	assert.NoError(err)
	assert.Equal(8, vm.pc)
}

func TestAloc(t *testing.T) {
	assert := assert.New(t)

	vm := New()
	vm.registers[0] = 1024
	vm.program = []byte{byte(ALOC), 0, Pad, Pad}

	assert.NoError(vm.Run())
	assert.Equal(1024, vm.HeapSize())
	for n, b := range vm.heap {
		if b != 0 {
			t.Fatalf("heap byte %d not zero", n)
		}
	}

	// Negative growth is a fault.
	vm = New()
	vm.registers[0] = -1
	vm.program = []byte{byte(ALOC), 0, Pad, Pad}
	assert.ErrorIs(vm.Run(), ErrHeapGrow)
}

func TestIncDec(t *testing.T) {
	assert := assert.New(t)

	vm := New()
	vm.registers[5] = 10
	vm.program = []byte{
		byte(INC), 5, Pad, Pad,
		byte(INC), 5, Pad, Pad,
		byte(DEC), 5, Pad, Pad,
	}

	assert.NoError(vm.Run())
	assert.Equal(int32(11), vm.registers[5])
	assert.Equal(12, vm.pc)
}

func TestIllegalOpcode(t *testing.T) {
	assert := assert.New(t)

	vm := New()
	vm.program = []byte{200, 0, 0, 0}

	err := vm.Run()
	assert.ErrorIs(err, ErrIllegalOpcode)

	var fault *Fault
	assert.ErrorAs(err, &fault)
	assert.Equal(0, fault.Offset)
}

func TestDivideByZero(t *testing.T) {
	assert := assert.New(t)

	vm := New()
	vm.registers[0] = 21
	vm.program = []byte{
		byte(LOAD), 1, 0, 0,
		byte(DIV), 0, 1, 2,
	}

	err := vm.Run()
	assert.ErrorIs(err, ErrDivideByZero)

	var fault *Fault
	assert.ErrorAs(err, &fault)
	assert.Equal(4, fault.Offset)
}

func TestRegisterOutOfRange(t *testing.T) {
	assert := assert.New(t)

	vm := New()
	vm.program = []byte{byte(ADD), 40, 0, 1}

	err := vm.Run()
	assert.ErrorIs(err, ErrRegisterRange)
}

func TestTruncatedInstruction(t *testing.T) {
	assert := assert.New(t)

	vm := New()
	vm.program = []byte{byte(LOAD), 0, 1}

	err := vm.Run()
	assert.ErrorIs(err, ErrTruncated)

	var fault *Fault
	assert.ErrorAs(err, &fault)
	assert.Equal(0, fault.Offset)
}

func TestRunOnceAtEnd(t *testing.T) {
	assert := assert.New(t)

	vm := New()
	vm.program = []byte{byte(HLT), Pad, Pad, Pad}
	vm.pc = len(vm.program)

	done, err := vm.RunOnce()
	assert.True(done)
	assert.NoError(err)
	assert.Equal(len(vm.program), vm.pc)
}

func TestLoadAndAppend(t *testing.T) {
	assert := assert.New(t)

	vm := New()
	code := []byte{byte(LOAD), 0, 0, 20}

	assert.NoError(vm.Load(WrapProgram(code)))
	assert.Equal(code, vm.program)

	assert.NoError(vm.Append(WrapProgram([]byte{byte(HLT), Pad, Pad, Pad})))
	assert.Equal(8, len(vm.program))

	assert.NoError(vm.Run())
	assert.Equal(int32(20), vm.registers[0])
}

func TestReset(t *testing.T) {
	assert := assert.New(t)

	vm := New()
	vm.registers[0] = 9
	vm.program = []byte{byte(HLT)}
	vm.equal = true
	vm.heap = make([]byte, 8)

	vm.Reset()
	assert.Equal(int32(0), vm.registers[0])
	assert.Empty(vm.program)
	assert.False(vm.equal)
	assert.Equal(0, vm.HeapSize())
}

func TestRegistersIterator(t *testing.T) {
	assert := assert.New(t)

	vm := New()
	for n := range NumRegisters {
		vm.registers[n] = int32(n)
	}

	n := 0
	for value := range vm.Registers() {
		assert.Equal(int32(n), value)
		n++
	}
	assert.Equal(NumRegisters, n)

	// Restartable.
	n = 0
	for range vm.Registers() {
		n++
	}
	assert.Equal(NumRegisters, n)
}

func TestRegisterAccessor(t *testing.T) {
	assert := assert.New(t)

	vm := New()
	vm.registers[31] = 123

	value, err := vm.Register(31)
	assert.NoError(err)
	assert.Equal(int32(123), value)

	_, err = vm.Register(32)
	assert.ErrorIs(err, ErrRegisterRange)

	_, err = vm.Register(-1)
	assert.ErrorIs(err, ErrRegisterRange)
}

func TestDump(t *testing.T) {
	assert := assert.New(t)

	vm := New()
	vm.program = []byte{byte(HLT), Pad, Pad, Pad}
	assert.NoError(vm.Run())

	dump := map[string]string{}
	for key, value := range vm.Dump() {
		dump[key] = value
	}

	assert.Equal("1", dump["pc"])
	assert.Equal("false", dump["equal"])
	assert.Equal("0", dump["remainder"])
	assert.Equal("0", dump["heap"])
	assert.Equal("1", dump["steps"])
	assert.Equal("4", dump["program"])
}

func TestRunEndToEnd(t *testing.T) {
	assert := assert.New(t)

	vm := New()
	vm.program = []byte{
		byte(LOAD), 0, 0, 20,
		byte(LOAD), 1, 0, 30,
		byte(ADD), 0, 1, 2,
		byte(HLT), Pad, Pad, Pad,
	}

	assert.NoError(vm.Run())
	assert.Equal(int32(20), vm.registers[0])
	assert.Equal(int32(30), vm.registers[1])
	assert.Equal(int32(50), vm.registers[2])
}

func TestCountdownLoop(t *testing.T) {
	assert := assert.New(t)

	// $0 counts down from 5; $1 holds the loop target, $2 the zero
	// for comparison.
	vm := New()
	vm.registers[0] = 5
	vm.registers[1] = 0
	vm.registers[2] = 0
	vm.program = []byte{
		byte(DEC), 0, Pad, Pad,
		byte(GT), 0, 2, Pad,
		byte(JEQ), 1, Pad, Pad,
		byte(HLT), Pad, Pad, Pad,
	}

	assert.NoError(vm.Run())
	assert.Equal(int32(0), vm.registers[0])
}

func TestFaultIs(t *testing.T) {
	assert := assert.New(t)

	err := error(&Fault{Offset: 8, Err: ErrDivideByZero})
	assert.True(errors.Is(err, &Fault{}))
	assert.True(errors.Is(err, ErrDivideByZero))
	assert.False(errors.Is(err, ErrRegisterRange))
}
