// Package asm implements the parser and two-pass assembler for the azad
// assembly language.
//
// Source is line oriented. A line is an optional "name:" label declaration
// followed by either an instruction (a mnemonic with up to three operands)
// or a directive (".code", ".data", ".equ", ".asciiz"). Registers are
// written "$n", signed 16-bit immediates "#n", label references "@name",
// and string operands are single quoted. A ";" starts a comment, and
// "$(...)" spans are evaluated at parse time as Starlark expressions with
// all equates predeclared.
//
// The assembler walks the parsed program twice: pass one collects the
// symbol table and the data image, pass two encodes every instruction
// into a fixed four-byte word, resolving label references against the
// symbol table. Forward references therefore resolve naturally.
package asm
