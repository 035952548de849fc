package vm

import (
	"bytes"
)

const (
	// HeaderSize is the fixed size of the executable container header.
	HeaderSize = 64

	// Version is the container format version written at header byte 4.
	Version = 1

	// InstructionSize is the fixed width of every encoded instruction.
	InstructionSize = 4

	// Pad is the sentinel filling unused operand bytes. 0 would be
	// indistinguishable from register $0, so it never appears as fill.
	Pad = byte(0xFF)
)

// Magic is the container header magic, "AZAD".
var Magic = [4]byte{0x41, 0x5A, 0x41, 0x44}

// WrapProgram prepends the 64-byte container header to an encoded code
// section: magic, version byte, zero fill.
func WrapProgram(code []byte) (container []byte) {
	container = make([]byte, HeaderSize, HeaderSize+len(code))
	copy(container, Magic[:])
	container[len(Magic)] = Version
	container = append(container, code...)

	return
}

// StripHeader removes the container header from raw program bytes. Bytes
// without the magic prefix are returned unchanged, so hand-written code
// and incremental fragments load directly.
func StripHeader(raw []byte) (code []byte, err error) {
	if len(raw) < len(Magic) || !bytes.Equal(raw[:len(Magic)], Magic[:]) {
		code = raw
		return
	}

	if len(raw) < HeaderSize {
		err = ErrContainerTruncated
		return
	}

	if raw[len(Magic)] != Version {
		err = ErrContainerVersion
		return
	}

	code = raw[HeaderSize:]

	return
}
