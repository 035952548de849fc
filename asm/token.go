package asm

import (
	"fmt"
	"strings"

	"github.com/azadvm/azad/vm"
)

// TokenKind discriminates the semantic units produced by the parser.
type TokenKind int

const (
	TOKEN_OPCODE    = TokenKind(0) // opcode
	TOKEN_REGISTER  = TokenKind(1) // register
	TOKEN_INTEGER   = TokenKind(2) // integer
	TOKEN_LABEL     = TokenKind(3) // label declaration
	TOKEN_LABEL_USE = TokenKind(4) // label usage
	TOKEN_DIRECTIVE = TokenKind(5) // directive
	TOKEN_STRING    = TokenKind(6) // string
)

func (kind TokenKind) String() string {
	switch kind {
	case TOKEN_OPCODE:
		return "opcode"
	case TOKEN_REGISTER:
		return "register"
	case TOKEN_INTEGER:
		return "integer"
	case TOKEN_LABEL:
		return "label declaration"
	case TOKEN_LABEL_USE:
		return "label usage"
	case TOKEN_DIRECTIVE:
		return "directive"
	case TOKEN_STRING:
		return "string"
	}

	return fmt.Sprintf("TokenKind(%d)", int(kind))
}

// Token is one immutable semantic unit of a source line. Only the fields
// relevant to its Kind are meaningful.
type Token struct {
	Kind  TokenKind
	Op    vm.Opcode // TOKEN_OPCODE
	Reg   uint8     // TOKEN_REGISTER
	Value int32     // TOKEN_INTEGER
	Name  string    // TOKEN_LABEL, TOKEN_LABEL_USE, TOKEN_DIRECTIVE, TOKEN_STRING
}

func (tok Token) String() string {
	switch tok.Kind {
	case TOKEN_OPCODE:
		return strings.ToLower(tok.Op.String())
	case TOKEN_REGISTER:
		return fmt.Sprintf("$%d", tok.Reg)
	case TOKEN_INTEGER:
		return fmt.Sprintf("#%d", tok.Value)
	case TOKEN_LABEL:
		return tok.Name + ":"
	case TOKEN_LABEL_USE:
		return "@" + tok.Name
	case TOKEN_DIRECTIVE:
		return "." + tok.Name
	case TOKEN_STRING:
		return "'" + tok.Name + "'"
	}

	return "?"
}

// Statement is one logical source line: an optional label declaration and
// either an instruction or a directive with up to three operand tokens.
type Statement struct {
	LineNo    int
	Raw       string // Trimmed source text, kept for diagnostics.
	Label     string
	HasOpcode bool
	Op        vm.Opcode
	Directive string
	Operands  []Token
}

// Program is the ordered statement sequence of one assembly run. Order
// determines byte offsets and thus jump targets.
type Program struct {
	Statements []Statement
}
