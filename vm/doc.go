// Package vm implements the azad register machine and its binary instruction format.
//
// The machine is stack-free: it consists of 32 signed 32-bit registers, a
// program counter, a remainder register written by integer division, an
// equality flag written by the comparison instructions, and a growable heap
// reserved for the allocation instruction. Every instruction occupies
// exactly four bytes: an opcode byte followed by up to three operand bytes,
// with unused trailing bytes carrying the 0xFF pad sentinel.
//
// Executable images may be bare code or a container: a 64-byte header
// (magic "AZAD", format version, zero fill) followed by the code section.
// Load and Append accept either form.
package vm
