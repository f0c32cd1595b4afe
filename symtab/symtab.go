// Package symtab resolves labels across the two assembly phases.
//
// A Table starts open, accepting Insert and MarkForExport. Finalize shifts
// data addresses past the code segment and freezes it; after that only
// Lookup and the export iterators are allowed.
package symtab

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// Type is the segment a symbol lives in.
type Type int

const (
	// Code symbols address instructions.
	Code Type = iota
	// Data symbols address .data and .string contents.
	Data
)

func (t Type) String() string {
	if t == Data {
		return "data"
	}
	return "code"
}

var (
	ErrAlreadyExists   = errors.New("label already defined")
	ErrExportAndExtern = errors.New("label cannot be both entry and extern")
	ErrNotFound        = errors.New("label not found")
	ErrFinalized       = errors.New("symbol table is finalized")
	ErrNotFinalized    = errors.New("symbol table is not finalized")
)

// NotFoundError names an entry symbol that was never defined.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("entry symbol %s is never defined", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Symbol is one table entry.
type Symbol struct {
	Name    string
	Type    Type
	Address int
	Extern  bool
	Export  bool

	placeholder bool
}

// Placeholder reports whether the symbol was only named by .entry so far.
func (s Symbol) Placeholder() bool {
	return s.placeholder
}

// Table maps names to symbols, remembering insertion order.
type Table struct {
	symbols   map[string]*Symbol
	order     []*Symbol
	finalized bool
}

// New creates an open table.
func New() *Table {
	return &Table{symbols: make(map[string]*Symbol)}
}

// Insert defines name. A placeholder left by MarkForExport is completed.
func (t *Table) Insert(name string, typ Type, address int, extern bool) error {
	if t.finalized {
		return ErrFinalized
	}
	sym, ok := t.symbols[name]
	if !ok {
		t.add(&Symbol{Name: name, Type: typ, Address: address, Extern: extern})
		return nil
	}
	if sym.Export && extern {
		return fmt.Errorf("%s: %w", name, ErrExportAndExtern)
	}
	if !sym.placeholder {
		return fmt.Errorf("%s: %w", name, ErrAlreadyExists)
	}
	sym.Type, sym.Address, sym.placeholder = typ, address, false
	return nil
}

// MarkForExport flags name as an entry, creating a placeholder if it is unseen.
func (t *Table) MarkForExport(name string) error {
	if t.finalized {
		return ErrFinalized
	}
	sym, ok := t.symbols[name]
	if !ok {
		t.add(&Symbol{Name: name, Export: true, placeholder: true})
		return nil
	}
	if sym.Extern {
		return fmt.Errorf("%s: %w", name, ErrExportAndExtern)
	}
	sym.Export = true
	return nil
}

func (t *Table) add(sym *Symbol) {
	t.symbols[sym.Name] = sym
	t.order = append(t.order, sym)
}

// Finalize moves local data symbols past the code segment and freezes the
// table. Every entry that was never defined yields a *NotFoundError; they
// are returned joined.
func (t *Table) Finalize(dataOffset int) error {
	if t.finalized {
		return ErrFinalized
	}
	t.finalized = true
	for _, sym := range t.order {
		if sym.Type == Data && !sym.Extern && !sym.placeholder {
			sym.Address += dataOffset
		}
	}
	undefined := lo.FilterMap(t.order, func(s *Symbol, _ int) (error, bool) {
		return &NotFoundError{Name: s.Name}, s.placeholder
	})
	return errors.Join(undefined...)
}

// Finalized reports whether Finalize has been called.
func (t *Table) Finalized() bool {
	return t.finalized
}

// Lookup returns the address of name and whether it is extern.
func (t *Table) Lookup(name string) (int, bool, error) {
	if !t.finalized {
		return 0, false, ErrNotFinalized
	}
	sym, ok := t.symbols[name]
	if !ok || sym.placeholder {
		return 0, false, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return sym.Address, sym.Extern, nil
}

// Exports returns the entry symbols in insertion order.
func (t *Table) Exports() ([]Symbol, error) {
	if !t.finalized {
		return nil, ErrNotFinalized
	}
	exports := lo.Filter(t.order, func(s *Symbol, _ int) bool { return s.Export })
	return lo.Map(exports, func(s *Symbol, _ int) Symbol { return *s }), nil
}

// ForEachExport calls fn for every entry symbol, stopping at the first error.
func (t *Table) ForEachExport(fn func(Symbol) error) error {
	exports, err := t.Exports()
	if err != nil {
		return err
	}
	for _, sym := range exports {
		if err := fn(sym); err != nil {
			return err
		}
	}
	return nil
}

// All returns a copy of every symbol in insertion order.
func (t *Table) All() []Symbol {
	return lo.Map(t.order, func(s *Symbol, _ int) Symbol { return *s })
}

// Len returns the number of symbols.
func (t *Table) Len() int {
	return len(t.order)
}
