package assembler

import (
	"errors"
	"fmt"

	"github.com/Urethramancer/asm14/isa"
	"github.com/Urethramancer/asm14/lexer"
	"github.com/Urethramancer/asm14/symtab"
)

// resolve appends the operand words of stmt after its opcode word.
// A missing label is reported and encoded as 0 so the remaining
// operands are still checked.
func (u *unit) resolve(stmt *Statement) error {
	ops := stmt.Operands
	for i := 0; i < len(ops); i++ {
		op := ops[i]
		switch v := op.Token.Value.(type) {
		case lexer.Immediate:
			stmt.Words.AppendWord(isa.EncodeValue(v.Value, isa.Absolute))

		case lexer.Word:
			w, err := u.encodeLabel(stmt, op.Token, v.Name)
			if err != nil {
				return err
			}
			stmt.Words.AppendWord(w)

		case lexer.Register:
			// Two registers in a row share one word.
			if i+1 < len(ops) {
				if next, ok := ops[i+1].Token.Value.(lexer.Register); ok {
					stmt.Words.AppendWord(isa.EncodeRegisters(v.Reg, next.Reg))
					i++
					continue
				}
			}
			if op.Role.high() {
				stmt.Words.AppendWord(isa.EncodeSourceRegister(v.Reg))
			} else {
				stmt.Words.AppendWord(isa.EncodeDestinationRegister(v.Reg))
			}

		default:
			return fmt.Errorf("line %d: unexpected operand %v", stmt.Line.Number, op.Token)
		}
	}
	if stmt.Words.Len() != stmt.Length {
		return fmt.Errorf("line %d: emitted %d words, expected %d", stmt.Line.Number, stmt.Words.Len(), stmt.Length)
	}
	return nil
}

// encodeLabel builds the word for a label reference. Extern references are
// recorded at the address the word will occupy.
func (u *unit) encodeLabel(stmt *Statement, tok lexer.Token, name string) (isa.Word, error) {
	addr, extern, err := u.symbols.Lookup(name)
	if errors.Is(err, symtab.ErrNotFound) {
		u.errorf(tok, "Missing label %s", name)
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if addr > isa.MaxAddress {
		u.errorf(tok, "label %s at address %d does not fit in an operand word", name, addr)
		return 0, nil
	}
	if extern {
		u.externals = append(u.externals, Reference{
			Name:    name,
			Address: stmt.Counter + stmt.Words.Len(),
		})
		return isa.EncodeValue(0, isa.External), nil
	}
	return isa.EncodeValue(addr, isa.Relocatable), nil
}
