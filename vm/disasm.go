package vm

import (
	"fmt"
	"iter"
	"strings"
)

// Disassemble iterates over a code section word by word, yielding the
// byte offset and reconstructed source text of each instruction. Words
// that do not decode to a known opcode are rendered as "igl" with the
// raw byte, and a trailing partial word is rendered as raw bytes, so the
// sequence is total over any input.
func Disassemble(code []byte) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		for offset := 0; offset < len(code); offset += InstructionSize {
			if len(code)-offset < InstructionSize {
				if !yield(offset, fmt.Sprintf("; partial word % x", code[offset:])) {
					return
				}
				break
			}

			word := code[offset : offset+InstructionSize]
			if !yield(offset, disasmWord(word)) {
				return
			}
		}
	}
}

func disasmWord(word []byte) string {
	op := DecodeOpcode(word[0])
	shape, ok := op.Shape()
	if !ok {
		return fmt.Sprintf("igl ; 0x%02x", word[0])
	}

	text := strings.ToLower(op.String())
	next := 1
	for range shape.Registers {
		text += fmt.Sprintf(" $%d", word[next])
		next++
	}

	if shape.Immediate {
		value := int16(uint16(word[next])<<8 | uint16(word[next+1]))
		text += fmt.Sprintf(" #%d", value)
	}

	return text
}
