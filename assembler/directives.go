package assembler

import (
	"errors"

	"github.com/Urethramancer/asm14/lexer"
	"github.com/Urethramancer/asm14/symtab"
)

// compileData handles .data: a non-empty, comma-separated list of numbers.
func (u *unit) compileData(stmt *Statement) error {
	stmt.Data = true
	return u.list("Number (data) is expected", func(tok lexer.Token) error {
		n, ok := tok.Value.(lexer.Number)
		if !ok {
			return u.errorf(tok, "Number (data) is expected")
		}
		stmt.Words.AppendValue(n.Value)
		stmt.Length++
		return nil
	})
}

// compileString handles .string: one string, stored with a terminating zero.
func (u *unit) compileString(stmt *Statement) error {
	stmt.Data = true
	tok, err := u.next()
	if errors.Is(err, lexer.ErrEndOfLine) {
		return u.errorf(u.here(), "String is expected")
	}
	if err != nil {
		return err
	}
	s, ok := tok.Value.(lexer.String)
	if !ok {
		return u.errorf(tok, "String is expected")
	}
	stmt.Words.AppendString(s.Text)
	stmt.Length = len(s.Text) + 1
	return nil
}

// compileExtern handles .extern: each name becomes an extern code symbol.
func (u *unit) compileExtern() error {
	return u.list("identifier is expected", func(tok lexer.Token) error {
		w, ok := tok.Value.(lexer.Word)
		if !ok {
			return u.errorf(tok, "identifier is expected")
		}
		err := u.symbols.Insert(w.Name, symtab.Code, 0, true)
		switch {
		case errors.Is(err, symtab.ErrExportAndExtern):
			return u.errorf(tok, "label already declared as entry")
		case errors.Is(err, symtab.ErrAlreadyExists):
			return u.errorf(tok, "label already defined")
		}
		return err
	})
}

// compileEntry handles .entry: each name is marked for export.
func (u *unit) compileEntry() error {
	return u.list("identifier is expected", func(tok lexer.Token) error {
		w, ok := tok.Value.(lexer.Word)
		if !ok {
			return u.errorf(tok, "identifier is expected")
		}
		err := u.symbols.MarkForExport(w.Name)
		if errors.Is(err, symtab.ErrExportAndExtern) {
			return u.errorf(tok, "label already defined as extern")
		}
		if err != nil {
			return err
		}
		if _, seen := u.entrySites[w.Name]; !seen {
			u.entrySites[w.Name] = tok
		}
		return nil
	})
}

// list reads "item {, item}" up to the end of the line or a remark.
// missing is reported when an item is absent.
func (u *unit) list(missing string, item func(lexer.Token) error) error {
	for {
		tok, err := u.next()
		if errors.Is(err, lexer.ErrEndOfLine) {
			return u.errorf(u.here(), "%s", missing)
		}
		if err != nil {
			return err
		}
		if err := item(tok); err != nil {
			return err
		}

		tok, err = u.next()
		if errors.Is(err, lexer.ErrEndOfLine) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, ok := tok.Value.(lexer.Remark); ok {
			return nil
		}
		if !tok.IsSpecial(',') {
			return u.errorf(tok, "a comma is expected")
		}
	}
}
