package asm

import (
	"bufio"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/azadvm/azad/vm"
)

var (
	parenRe = regexp.MustCompile(`\$\([^)]*\)`)
	nameRe  = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
)

type parser struct {
	equates map[string]int32
}

// ParseProgram converts assembly source text into an ordered statement
// sequence, independent of symbol resolution. The first malformed line
// aborts the parse with a SyntaxError naming the line and the offending
// construct; on success every line has been consumed.
func ParseProgram(source string) (prog *Program, err error) {
	p := &parser{equates: make(map[string]int32, 8)}
	return p.parse(source)
}

func (p *parser) parse(source string) (prog *Program, err error) {
	prog = &Program{}
	scanner := bufio.NewScanner(strings.NewReader(source))

	var line string
	var lineno int

	defer func() {
		if err != nil {
			prog = nil
			err = &SyntaxError{LineNo: lineno, Line: line, Err: err}
		}
	}()

	for scanner.Scan() {
		lineno++

		line = strings.TrimSpace(stripComment(scanner.Text()))
		if len(line) == 0 {
			continue
		}

		var stmt Statement
		stmt, err = p.parseLine(line, lineno)
		if err != nil {
			return
		}

		prog.Statements = append(prog.Statements, stmt)
	}

	if len(prog.Statements) == 0 {
		err = ErrEmptySource
	}

	return
}

// stripComment cuts the line at the first ";" outside a string literal.
func stripComment(text string) string {
	quoted := false
	for n, r := range text {
		switch r {
		case '\'':
			quoted = !quoted
		case ';':
			if !quoted {
				return text[:n]
			}
		}
	}

	return text
}

// splitWords splits a line on whitespace, keeping single-quoted string
// literals as one word.
func splitWords(line string) (words []string, err error) {
	for len(line) > 0 {
		line = strings.TrimLeft(line, " \t")
		if len(line) == 0 {
			break
		}

		if line[0] == '\'' {
			end := strings.IndexByte(line[1:], '\'')
			if end < 0 {
				err = ErrStringUnterminated
				return
			}
			words = append(words, line[:end+2])
			line = line[end+2:]
			continue
		}

		cut := strings.IndexAny(line, " \t")
		if cut < 0 {
			words = append(words, line)
			break
		}
		words = append(words, line[:cut])
		line = line[cut:]
	}

	return
}

func (p *parser) parseLine(line string, lineno int) (stmt Statement, err error) {
	expanded, err := p.expand(line)
	if err != nil {
		return
	}

	words, err := splitWords(expanded)
	if err != nil {
		return
	}

	stmt = Statement{LineNo: lineno, Raw: line}

	if len(words) > 0 && strings.HasSuffix(words[0], ":") {
		name := strings.TrimSuffix(words[0], ":")
		if !nameRe.MatchString(name) {
			err = ErrLabelInvalid
			return
		}
		stmt.Label = name
		words = words[1:]
	}

	// A label-only line parses; the assembler rejects it if nothing
	// ever gives it an opcode or directive.
	if len(words) == 0 {
		return
	}

	if strings.HasPrefix(words[0], ".") {
		return p.parseDirective(stmt, words)
	}

	op, ok := vm.OpcodeByName(words[0])
	if !ok {
		err = ErrOpcodeInvalid
		return
	}
	stmt.HasOpcode = true
	stmt.Op = op

	if len(words) > 4 {
		err = ErrOperandCount
		return
	}

	for _, word := range words[1:] {
		var tok Token
		tok, err = p.parseOperand(word)
		if err != nil {
			return
		}
		stmt.Operands = append(stmt.Operands, tok)
	}

	return
}

func (p *parser) parseDirective(stmt Statement, words []string) (Statement, error) {
	stmt.Directive = strings.TrimPrefix(words[0], ".")
	args := words[1:]

	switch stmt.Directive {
	case "code", "data":
		if len(args) != 0 {
			return stmt, ErrOperandCount
		}

	case "equ":
		if len(args) != 2 || !nameRe.MatchString(args[0]) {
			return stmt, ErrEquateSyntax
		}
		value, err := strconv.ParseInt(strings.TrimPrefix(args[1], "#"), 0, 32)
		if err != nil {
			return stmt, ErrParseNumber(args[1])
		}
		if _, ok := p.equates[args[0]]; ok {
			return stmt, ErrEquateDuplicate
		}
		p.equates[args[0]] = int32(value)
		stmt.Operands = []Token{
			{Kind: TOKEN_LABEL, Name: args[0]},
			{Kind: TOKEN_INTEGER, Value: int32(value)},
		}

	case "asciiz":
		if len(args) != 1 || len(args[0]) < 2 || args[0][0] != '\'' {
			return stmt, ErrStringSyntax
		}
		stmt.Operands = []Token{
			{Kind: TOKEN_STRING, Name: args[0][1 : len(args[0])-1]},
		}

	default:
		return stmt, ErrDirectiveUnknown
	}

	return stmt, nil
}

func (p *parser) parseOperand(word string) (tok Token, err error) {
	switch {
	case strings.HasPrefix(word, "$"):
		value, perr := strconv.ParseUint(word[1:], 10, 8)
		if perr != nil || value >= vm.NumRegisters {
			err = ErrRegisterInvalid
			return
		}
		tok = Token{Kind: TOKEN_REGISTER, Reg: uint8(value)}

	case strings.HasPrefix(word, "#"):
		value, perr := strconv.ParseInt(word[1:], 10, 32)
		if perr != nil {
			err = ErrParseNumber(word)
			return
		}
		if value < math.MinInt16 || value > math.MaxInt16 {
			err = ErrImmediateRange
			return
		}
		tok = Token{Kind: TOKEN_INTEGER, Value: int32(value)}

	case strings.HasPrefix(word, "@"):
		if !nameRe.MatchString(word[1:]) {
			err = ErrLabelInvalid
			return
		}
		tok = Token{Kind: TOKEN_LABEL_USE, Name: word[1:]}

	case strings.HasPrefix(word, "'"):
		tok = Token{Kind: TOKEN_STRING, Name: word[1 : len(word)-1]}

	default:
		value, ok := p.equates[word]
		if !ok {
			err = ErrParseValue(word)
			return
		}
		tok = Token{Kind: TOKEN_INTEGER, Value: value}
	}

	return
}

// expand does compile-time $(...) evaluations on a line.
func (p *parser) expand(line string) (expanded string, err error) {
	expanded = parenRe.ReplaceAllStringFunc(line, func(span string) string {
		value, everr := p.parenEval(span[2 : len(span)-1])
		if everr != nil {
			err = everr
		}
		return fmt.Sprintf("#%d", value)
	})

	return
}

// parenEval evaluates one $(...) expression as Starlark, with every
// integer equate predeclared.
func (p *parser) parenEval(expr string) (value int32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, equ := range p.equates {
		pred[key] = starlark.MakeInt(int(equ))
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}

	rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	rcInt, ok := rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	rc64, ok := rcInt.Int64()
	if !ok || rc64 < math.MinInt32 || rc64 > math.MaxInt32 {
		err = ErrParseExpression(expr)
		return
	}

	value = int32(rc64)

	return
}
