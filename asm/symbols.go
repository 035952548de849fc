package asm

import (
	"fmt"
	"iter"
	"maps"
	"slices"
)

// SymbolKind discriminates symbol table entries.
type SymbolKind int

const (
	SYMBOL_LABEL   = SymbolKind(0) // label
	SYMBOL_INTEGER = SymbolKind(1) // integer
	SYMBOL_STRING  = SymbolKind(2) // string
)

func (kind SymbolKind) String() string {
	switch kind {
	case SYMBOL_LABEL:
		return "label"
	case SYMBOL_INTEGER:
		return "integer"
	case SYMBOL_STRING:
		return "string"
	}

	return fmt.Sprintf("SymbolKind(%d)", int(kind))
}

// Symbol is one symbol table entry.
type Symbol struct {
	Kind   SymbolKind
	Offset int   // Byte offset, for label and string symbols.
	Value  int32 // Equate value, for integer symbols.
}

// SymbolTable maps names to symbols for the duration of one assembly run.
type SymbolTable struct {
	symbols map[string]Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		symbols: make(map[string]Symbol, 16),
	}
}

// Define inserts a symbol. Redefinition is rejected, whatever the kinds
// of the old and new entries.
func (table *SymbolTable) Define(name string, symbol Symbol) (err error) {
	_, ok := table.symbols[name]
	if ok {
		if symbol.Kind == SYMBOL_INTEGER {
			return ErrEquateDuplicate
		}
		return ErrLabelDuplicate
	}

	table.symbols[name] = symbol

	return
}

// Lookup finds a symbol by name.
func (table *SymbolTable) Lookup(name string) (symbol Symbol, ok bool) {
	symbol, ok = table.symbols[name]
	return
}

// Resolve returns the value a symbol stands for in an immediate operand:
// the byte offset of a label or string, or the value of an equate.
func (table *SymbolTable) Resolve(name string) (value int32, err error) {
	symbol, ok := table.symbols[name]
	if !ok {
		err = ErrLabelMissing(name)
		return
	}

	if symbol.Kind == SYMBOL_INTEGER {
		value = symbol.Value
	} else {
		value = int32(symbol.Offset)
	}

	return
}

// Len returns the number of defined symbols.
func (table *SymbolTable) Len() int {
	return len(table.symbols)
}

// All iterates over the symbols in name order.
func (table *SymbolTable) All() iter.Seq2[string, Symbol] {
	return func(yield func(string, Symbol) bool) {
		for _, name := range slices.Sorted(maps.Keys(table.symbols)) {
			if !yield(name, table.symbols[name]) {
				return
			}
		}
	}
}
