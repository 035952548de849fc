// Package repl implements the interactive azad session. It consumes only
// the assembler and VM boundary APIs: lines of assembly are assembled,
// appended to the running program, and single-stepped; dot commands
// inspect and control the machine.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/azadvm/azad/asm"
	"github.com/azadvm/azad/vm"
)

const plainPrompt = "azad >> "

// Session is one interactive VM session.
type Session struct {
	In  io.Reader
	Out io.Writer

	vm      *vm.VM
	asm     *asm.Assembler
	history []string
	prompt  string
}

// New creates a session on stdin/stdout. The prompt is colored when
// stdout is a terminal.
func New() *Session {
	session := &Session{
		In:     os.Stdin,
		Out:    os.Stdout,
		prompt: plainPrompt,
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		session.prompt = "\x1b[1;32m" + strings.TrimRight(plainPrompt, " ") + "\x1b[0m "
	}

	return session
}

// Run reads lines until EOF or .quit.
func (session *Session) Run() (err error) {
	if session.vm == nil {
		session.vm = vm.New()
		session.asm = asm.New()
	}

	fmt.Fprintln(session.Out, "Welcome to the azad VM. Type .help for commands, Ctrl-D to exit.")

	scanner := bufio.NewScanner(session.In)
	for {
		fmt.Fprint(session.Out, session.prompt)
		if !scanner.Scan() {
			fmt.Fprintln(session.Out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}
		session.history = append(session.history, line)

		if done := session.dispatch(line); done {
			return
		}
	}
}

func (session *Session) dispatch(line string) (done bool) {
	if !strings.HasPrefix(line, ".") {
		session.evaluate(line)
		return
	}

	words := strings.Fields(line)
	switch words[0] {
	case ".q", ".quit":
		fmt.Fprintln(session.Out, "Goodbye!")
		done = true

	case ".h", ".help":
		session.printHelp()

	case ".reset":
		session.vm.Reset()
		session.asm = asm.New()
		fmt.Fprintln(session.Out, "VM state reset.")

	case ".regs", ".registers":
		n := 0
		for value := range session.vm.Registers() {
			fmt.Fprintf(session.Out, "$%d: %d\n", n, value)
			n++
		}

	case ".vm":
		for key, value := range session.vm.Dump() {
			fmt.Fprintf(session.Out, "%10s: %v\n", key, value)
		}

	case ".symbols":
		for name, symbol := range session.asm.Symbols() {
			if symbol.Kind == asm.SYMBOL_INTEGER {
				fmt.Fprintf(session.Out, "%s = %d (%v)\n", name, symbol.Value, symbol.Kind)
			} else {
				fmt.Fprintf(session.Out, "%s @ %d (%v)\n", name, symbol.Offset, symbol.Kind)
			}
		}

	case ".program":
		fmt.Fprintf(session.Out, "% x\n", session.vm.Program())

	case ".dis":
		for offset, text := range vm.Disassemble(session.vm.Program()) {
			fmt.Fprintf(session.Out, "%04d  %s\n", offset, text)
		}

	case ".hs", ".history":
		for _, entry := range session.history {
			fmt.Fprintln(session.Out, entry)
		}

	case ".load":
		if len(words) != 2 {
			fmt.Fprintln(session.Out, "Usage: .load <path>")
			return
		}
		session.loadFile(words[1])

	case ".n", ".next":
		if _, err := session.vm.RunOnce(); err != nil {
			fmt.Fprintf(session.Out, "error: %v\n", err)
		}

	case ".g", ".go":
		if err := session.vm.Run(); err != nil {
			fmt.Fprintf(session.Out, "error: %v\n", err)
		}

	default:
		fmt.Fprintln(session.Out, "Unrecognized command. Use .help for detailed help.")
	}

	return
}

// evaluate assembles one line of source, appends its code to the running
// program, and executes one step. A bad line leaves the VM untouched.
func (session *Session) evaluate(line string) {
	container, err := session.asm.Assemble(line)
	if err != nil {
		fmt.Fprintf(session.Out, "error: %v\n", err)
		return
	}

	if err = session.vm.Append(container); err != nil {
		fmt.Fprintf(session.Out, "error: %v\n", err)
		return
	}

	if _, err = session.vm.RunOnce(); err != nil {
		fmt.Fprintf(session.Out, "error: %v\n", err)
	}
}

func (session *Session) loadFile(path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(session.Out, "error: %v\n", err)
		return
	}

	container, err := session.asm.Assemble(string(source))
	if err != nil {
		fmt.Fprintf(session.Out, "error: %v\n", err)
		return
	}

	if err = session.vm.Append(container); err != nil {
		fmt.Fprintf(session.Out, "error: %v\n", err)
		return
	}

	fmt.Fprintf(session.Out, "Loaded %s.\n", path)
}

func (session *Session) printHelp() {
	help := [][2]string{
		{".help", "Print this help message."},
		{".quit", "Quit the session. Ctrl-D also works."},
		{".reset", "Reset the VM and assembler state."},
		{".registers", "Dump the register file."},
		{".vm", "Dump VM state excluding registers."},
		{".symbols", "Dump the last assembly run's symbol table."},
		{".program", "Hex dump of the loaded program."},
		{".dis", "Disassemble the loaded program."},
		{".history", "Show the command history."},
		{".load <path>", "Assemble a source file and append it."},
		{".next", "Execute the next instruction."},
		{".go", "Execute to completion."},
	}

	fmt.Fprintln(session.Out, "Command       Description")
	fmt.Fprintln(session.Out, "-------       -----------")
	for _, entry := range help {
		fmt.Fprintf(session.Out, "%-13s %s\n", entry[0], entry[1])
	}
}
