package asm

import (
	"iter"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/azadvm/azad/vm"
)

// Pass indicates which assembly pass last ran, for introspection.
type Pass int

const (
	PASS_NONE   = Pass(0) // none
	PASS_FIRST  = Pass(1) // first
	PASS_SECOND = Pass(2) // second
)

// Assembler turns assembly source into an executable container in two
// passes over the parsed program: symbol collection, then encoding.
// Each Assemble call starts from a fresh symbol table.
type Assembler struct {
	symbols *SymbolTable
	pass    Pass
	data    []byte // Data image collected from .asciiz directives.
}

func New() *Assembler {
	return &Assembler{
		symbols: NewSymbolTable(),
	}
}

// Pass returns the last pass that ran.
func (asm *Assembler) Pass() Pass {
	return asm.pass
}

// Symbols iterates over the symbol table of the last assembly run.
func (asm *Assembler) Symbols() iter.Seq2[string, Symbol] {
	return asm.symbols.All()
}

// Assemble parses and encodes source text, returning container bytes:
// the 64-byte header, the code section, then the data image. Parse and
// assembly errors are returned as SyntaxError values; nothing is emitted
// for a failed run.
func (asm *Assembler) Assemble(source string) (container []byte, err error) {
	prog, err := ParseProgram(source)
	if err != nil {
		return
	}

	asm.symbols = NewSymbolTable()
	asm.data = nil
	asm.pass = PASS_NONE

	err = asm.collect(prog)
	if err != nil {
		return
	}

	code, err := asm.encode(prog)
	if err != nil {
		return
	}

	container = append(vm.WrapProgram(code), asm.data...)

	return
}

// collect is pass one: walk the program in order, recording every label,
// equate, and string against its byte offset. Instructions advance the
// offset by the fixed instruction size; section markers are zero width.
func (asm *Assembler) collect(prog *Program) (err error) {
	asm.pass = PASS_FIRST

	type pending struct {
		name   string
		offset int
	}

	var strings_ []pending
	var offset int
	inData := false

	for _, stmt := range prog.Statements {
		switch stmt.Directive {
		case "code":
			inData = false
			err = asm.defineLabel(stmt, offset)

		case "data":
			inData = true
			err = asm.defineLabel(stmt, offset)

		case "equ":
			err = asm.symbols.Define(stmt.Operands[0].Name, Symbol{
				Kind:  SYMBOL_INTEGER,
				Value: stmt.Operands[1].Value,
			})

		case "asciiz":
			switch {
			case !inData:
				err = ErrStringOutsideData
			case stmt.Label == "":
				err = ErrStringUnlabeled
			default:
				strings_ = append(strings_, pending{stmt.Label, len(asm.data)})
				asm.data = append(asm.data, stmt.Operands[0].Name...)
				asm.data = append(asm.data, 0)
			}

		default:
			err = asm.defineLabel(stmt, offset)
			if stmt.HasOpcode {
				offset += vm.InstructionSize
			}
		}

		if err != nil {
			return stmtErr(stmt, err)
		}
	}

	// String symbols live past the end of the code section; their
	// offsets are only known once the code size is.
	for _, entry := range strings_ {
		err = asm.symbols.Define(entry.name, Symbol{
			Kind:   SYMBOL_STRING,
			Offset: offset + entry.offset,
		})
		if err != nil {
			return
		}
	}

	log.Debugf("asm: pass one: %d code bytes, %d data bytes, %d symbols",
		offset, len(asm.data), asm.symbols.Len())

	return
}

func (asm *Assembler) defineLabel(stmt Statement, offset int) (err error) {
	if stmt.Label == "" {
		return
	}

	return asm.symbols.Define(stmt.Label, Symbol{
		Kind:   SYMBOL_LABEL,
		Offset: offset,
	})
}

// encode is pass two: emit a four-byte word per instruction, resolving
// label references against the pass-one symbol table and padding unused
// operand bytes with the sentinel.
func (asm *Assembler) encode(prog *Program) (code []byte, err error) {
	asm.pass = PASS_SECOND

	for _, stmt := range prog.Statements {
		switch {
		case stmt.HasOpcode:
			var word []byte
			word, err = asm.encodeStatement(stmt)
			if err != nil {
				return nil, stmtErr(stmt, err)
			}
			code = append(code, word...)

		case stmt.Directive != "":
			// Emits no code.

		default:
			return nil, stmtErr(stmt, ErrOpcodeMissing)
		}
	}

	log.Debugf("asm: pass two: %d code bytes", len(code))

	return
}

func (asm *Assembler) encodeStatement(stmt Statement) (word []byte, err error) {
	shape, ok := stmt.Op.Shape()
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	want := shape.Registers
	if shape.Immediate {
		want++
	}
	if len(stmt.Operands) != want {
		err = ErrOperandCount
		return
	}

	word = make([]byte, 0, vm.InstructionSize)
	word = append(word, byte(stmt.Op))

	next := 0
	for range shape.Registers {
		tok := stmt.Operands[next]
		next++
		if tok.Kind != TOKEN_REGISTER {
			err = ErrOperandKind
			return
		}
		word = append(word, tok.Reg)
	}

	if shape.Immediate {
		var value int32
		switch tok := stmt.Operands[next]; tok.Kind {
		case TOKEN_INTEGER:
			value = tok.Value
		case TOKEN_LABEL_USE:
			value, err = asm.symbols.Resolve(tok.Name)
			if err != nil {
				return
			}
		default:
			err = ErrOperandKind
			return
		}
		if value < math.MinInt16 || value > math.MaxInt16 {
			err = ErrImmediateRange
			return
		}
		word = append(word, byte(uint16(value)>>8), byte(uint16(value)))
	}

	for len(word) < vm.InstructionSize {
		word = append(word, vm.Pad)
	}

	return
}

func stmtErr(stmt Statement, err error) error {
	return &SyntaxError{LineNo: stmt.LineNo, Line: stmt.Raw, Err: err}
}
