package asm

import (
	"errors"

	"github.com/azadvm/azad/translate"
)

var f = translate.From

var (
	// Parse errors
	ErrEmptySource        = errors.New(f("empty source"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrImmediateRange     = errors.New(f("immediate out of 16-bit range"))
	ErrOperandCount       = errors.New(f("wrong operand count"))
	ErrOperandKind        = errors.New(f("operand not allowed here"))
	ErrLabelInvalid       = errors.New(f("label name invalid"))
	ErrDirectiveUnknown   = errors.New(f("directive unknown"))
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrStringSyntax       = errors.New(f(".asciiz syntax"))
	ErrStringUnterminated = errors.New(f("unterminated string"))

	// Assembly errors
	ErrOpcodeMissing     = errors.New(f("opcode missing"))
	ErrLabelDuplicate    = errors.New(f("label duplicated"))
	ErrStringOutsideData = errors.New(f(".asciiz outside .data section"))
	ErrStringUnlabeled   = errors.New(f(".asciiz without label"))
)

// SyntaxError locates a parse or assembly error on its source line.
type SyntaxError struct {
	LineNo int
	Line   string
	Err    error
}

func (err *SyntaxError) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *SyntaxError) Unwrap() error {
	return err.Err
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseValue string

func (err ErrParseValue) Error() string {
	return f("'%v' is not a value or register", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
