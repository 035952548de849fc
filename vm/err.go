package vm

import (
	"errors"

	"github.com/azadvm/azad/translate"
)

var f = translate.From

var (
	// Container errors
	ErrContainerTruncated = errors.New(f("truncated container header"))
	ErrContainerVersion   = errors.New(f("unsupported container version"))

	// Execution faults
	ErrIllegalOpcode = errors.New(f("illegal opcode"))
	ErrDivideByZero  = errors.New(f("divide by zero"))
	ErrRegisterRange = errors.New(f("register index out of range"))
	ErrTruncated     = errors.New(f("truncated instruction"))
	ErrPcRange       = errors.New(f("program counter out of range"))
	ErrHeapGrow      = errors.New(f("negative heap growth"))
)

// Fault is an execution fault located at the byte offset of the
// offending instruction's opcode byte.
type Fault struct {
	Offset int
	Err    error
}

func (fault *Fault) Error() string {
	return f("fault at offset %d: %v", fault.Offset, fault.Err)
}

func (fault *Fault) Unwrap() error {
	return fault.Err
}

func (fault *Fault) Is(err error) (ok bool) {
	_, ok = err.(*Fault)
	return
}
