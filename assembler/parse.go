package assembler

import (
	"errors"

	"github.com/Urethramancer/asm14/diag"
	"github.com/Urethramancer/asm14/isa"
	"github.com/Urethramancer/asm14/lexer"
	"github.com/Urethramancer/asm14/symtab"
)

// firstPhase compiles lines until the end of the file. Errors on one line
// are reported and the next line is tried, so one run shows them all.
func (u *unit) firstPhase() error {
	for {
		err := u.compileLine()
		if errors.Is(err, lexer.ErrEndOfFile) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// next reads a token. Scanner parse errors are reported and become errLine.
func (u *unit) next() (lexer.Token, error) {
	tok, err := u.scan.Next()
	var pe *diag.ParseError
	if errors.As(err, &pe) {
		u.hasErrors = true
		u.report(pe.Diagnostic)
		return tok, errLine
	}
	return tok, err
}

func (u *unit) compileLine() error {
	defer u.scan.NextLine()

	tok, err := u.next()
	switch {
	case errors.Is(err, lexer.ErrEndOfLine), errors.Is(err, errLine):
		return nil
	case err != nil:
		return err
	}

	err = u.compileStatement(tok)
	if errors.Is(err, errLine) {
		return nil
	}
	return err
}

func (u *unit) compileStatement(tok lexer.Token) error {
	if _, ok := tok.Value.(lexer.Remark); ok {
		return nil
	}

	stmt := newStatement(tok.Line)
	var err error
	if label, ok := tok.Value.(lexer.Label); ok {
		if tok, err = u.defineLabel(label, tok); err != nil {
			return err
		}
	}

	switch v := tok.Value.(type) {
	case lexer.Opcode:
		err = u.compileInstruction(stmt, v.Op)
	case lexer.Directive:
		switch v.Dir {
		case isa.DATA:
			err = u.compileData(stmt)
		case isa.STRING:
			err = u.compileString(stmt)
		case isa.EXTERN:
			return u.compileExtern()
		case isa.ENTRY:
			return u.compileEntry()
		}
	default:
		return u.errorf(tok, "an opcode or directive is expected")
	}
	if err != nil {
		return err
	}
	if err := u.expectEnd(); err != nil {
		return err
	}

	if stmt.Data {
		stmt.Counter = u.dataCounter
		u.dataCounter += stmt.Length
	} else {
		stmt.Counter = u.codeCounter
		u.codeCounter += stmt.Length
	}
	u.statements = append(u.statements, stmt)
	return nil
}

// defineLabel reads the token after a label definition and enters the
// label into the symbol table. It returns that following token.
func (u *unit) defineLabel(label lexer.Label, at lexer.Token) (lexer.Token, error) {
	tok, err := u.next()
	if errors.Is(err, lexer.ErrEndOfLine) {
		return tok, u.errorf(u.here(), "an opcode or directive is expected")
	}
	if err != nil {
		return tok, err
	}

	var typ symtab.Type
	var addr int
	switch v := tok.Value.(type) {
	case lexer.Opcode:
		typ, addr = symtab.Code, u.codeCounter
	case lexer.Directive:
		if v.Dir == isa.EXTERN || v.Dir == isa.ENTRY {
			u.warnf(at, "Label is defined in .extern or .entry statement")
			return tok, nil
		}
		typ, addr = symtab.Data, u.dataCounter
	default:
		return tok, u.errorf(tok, "an opcode or directive is expected")
	}

	if err := u.symbols.Insert(label.Name, typ, addr, false); err != nil {
		if !errors.Is(err, symtab.ErrAlreadyExists) {
			return tok, err
		}
		// The rest of the line is still checked.
		u.errorf(at, "Duplicate label definition")
	}
	return tok, nil
}

// expectEnd accepts only a remark or the end of the line.
func (u *unit) expectEnd() error {
	tok, err := u.next()
	if errors.Is(err, lexer.ErrEndOfLine) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, ok := tok.Value.(lexer.Remark); ok {
		return nil
	}
	return u.errorf(tok, "unexpected %s after the statement", tok.Kind())
}

func (u *unit) compileInstruction(stmt *Statement, op isa.Opcode) error {
	rule := op.Rule()
	if op.HasSource() {
		m, err := u.operand(stmt, rule.Source, RoleSource)
		if err != nil {
			return err
		}
		stmt.Source = m
		if err := u.expectSpecial(',', "a comma is expected", false); err != nil {
			return err
		}
	}
	if op.HasDestination() {
		m, err := u.operand(stmt, rule.Destination, RoleDestination)
		if err != nil {
			return err
		}
		stmt.Destination = m
	}

	stmt.Words.AppendWord(isa.EncodeFirstWord(stmt.Param1, stmt.Param2, op, stmt.Source, stmt.Destination))
	stmt.Length = stmt.instructionLength()
	return nil
}

// method picks the addressing method for tok among those allowed.
func method(tok lexer.Token, allowed isa.MethodSet) (isa.Method, bool) {
	switch tok.Value.(type) {
	case lexer.Immediate:
		return isa.Immediate, allowed.Has(isa.Immediate)
	case lexer.Word:
		return isa.Direct, allowed.Has(isa.Direct)
	case lexer.Register:
		return isa.Register, allowed.Has(isa.Register)
	}
	return 0, false
}

// operand reads one instruction operand, including an optional parameter
// list directly after a jump label.
func (u *unit) operand(stmt *Statement, allowed isa.MethodSet, role Role) (isa.Method, error) {
	tok, err := u.next()
	if errors.Is(err, lexer.ErrEndOfLine) {
		return 0, u.errorf(u.here(), "an operand is expected")
	}
	if err != nil {
		return 0, err
	}
	m, ok := method(tok, allowed)
	if !ok {
		return 0, u.errorf(tok, "Unsupported operand")
	}
	stmt.Operands = append(stmt.Operands, Operand{Token: tok, Role: role})

	if m != isa.Direct || !allowed.Has(isa.Parameterized) {
		return m, nil
	}
	// A '(' separated by whitespace is not a parameter list; expectEnd rejects it.
	peek, err := u.scan.Peek()
	if err != nil || !peek.IsSpecial('(') || !peek.NoSpaceBefore {
		return m, nil
	}
	u.scan.Next()
	if err := u.parameters(stmt); err != nil {
		return 0, err
	}
	return isa.Parameterized, nil
}

// parameters reads "p1,p2)" after the opening parenthesis.
// No whitespace is allowed anywhere inside.
func (u *unit) parameters(stmt *Statement) error {
	var err error
	if stmt.Param1, err = u.parameter(stmt, RoleParam1); err != nil {
		return err
	}
	if err := u.expectSpecial(',', "a comma is expected", true); err != nil {
		return err
	}
	if stmt.Param2, err = u.parameter(stmt, RoleParam2); err != nil {
		return err
	}
	return u.expectSpecial(')', "a ')' is expected", true)
}

func (u *unit) parameter(stmt *Statement, role Role) (isa.Method, error) {
	tok, err := u.next()
	if errors.Is(err, lexer.ErrEndOfLine) {
		return 0, u.errorf(u.here(), "an operand is expected")
	}
	if err != nil {
		return 0, err
	}
	if !tok.NoSpaceBefore {
		return 0, u.errorf(tok, "no whitespace is allowed in a parameter list")
	}
	m, ok := method(tok, isa.ParamMethods)
	if !ok {
		return 0, u.errorf(tok, "Unsupported operand")
	}
	stmt.Operands = append(stmt.Operands, Operand{Token: tok, Role: role})
	return m, nil
}

// expectSpecial reads the special character c.
func (u *unit) expectSpecial(c byte, msg string, tight bool) error {
	tok, err := u.next()
	if errors.Is(err, lexer.ErrEndOfLine) {
		return u.errorf(u.here(), "%s", msg)
	}
	if err != nil {
		return err
	}
	if !tok.IsSpecial(c) {
		return u.errorf(tok, "%s", msg)
	}
	if tight && !tok.NoSpaceBefore {
		return u.errorf(tok, "no whitespace is allowed in a parameter list")
	}
	return nil
}
