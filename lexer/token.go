package lexer

import (
	"fmt"
	"strconv"

	"github.com/Urethramancer/asm14/isa"
	"github.com/Urethramancer/asm14/source"
)

// Value is the kind-specific payload of a token.
type Value interface {
	kind() string
}

// Label is an identifier followed by a colon: a label definition.
type Label struct{ Name string }

// Word is an identifier used as an operand: a label reference.
type Word struct{ Name string }

// Number is a signed decimal literal.
type Number struct{ Value int }

// Immediate is a number prefixed with '#'.
type Immediate struct{ Value int }

// Opcode is an instruction mnemonic.
type Opcode struct{ Op isa.Opcode }

// Register is one of r0..r7.
type Register struct{ Reg isa.Reg }

// Directive is a dot-prefixed assembler directive.
type Directive struct{ Dir isa.Directive }

// String is a double-quoted literal without its quotes.
type String struct{ Text string }

// Special is one of ',', '(' or ')'.
type Special struct{ Char byte }

// Remark is a ';' comment running to the end of the line.
type Remark struct{}

func (Label) kind() string     { return "label definition" }
func (Word) kind() string      { return "label" }
func (Number) kind() string    { return "number" }
func (Immediate) kind() string { return "immediate number" }
func (Opcode) kind() string    { return "opcode" }
func (Register) kind() string  { return "register" }
func (Directive) kind() string { return "directive" }
func (String) kind() string    { return "string" }
func (Special) kind() string   { return "special character" }
func (Remark) kind() string    { return "remark" }

func (v Label) String() string     { return v.Name + ":" }
func (v Word) String() string      { return v.Name }
func (v Number) String() string    { return strconv.Itoa(v.Value) }
func (v Immediate) String() string { return "#" + strconv.Itoa(v.Value) }
func (v Opcode) String() string    { return v.Op.String() }
func (v Register) String() string  { return v.Reg.String() }
func (v Directive) String() string { return "." + v.Dir.String() }
func (v String) String() string    { return strconv.Quote(v.Text) }
func (v Special) String() string   { return string(v.Char) }
func (Remark) String() string      { return ";" }

// Token is one lexical unit with its position.
type Token struct {
	Value Value
	// Line is shared by every token scanned from it.
	Line *source.Line
	// Column is zero-based.
	Column int
	// First is set on the first token of a line.
	First bool
	// NoSpaceBefore is set when no whitespace separates this token from the previous one.
	NoSpaceBefore bool
}

// Pos returns the 1-based column.
func (t Token) Pos() int {
	return t.Column + 1
}

// Kind names the token's kind for messages.
func (t Token) Kind() string {
	if t.Value == nil {
		return "nothing"
	}
	return t.Value.kind()
}

// IsSpecial reports whether t is the special character c.
func (t Token) IsSpecial(c byte) bool {
	s, ok := t.Value.(Special)
	return ok && s.Char == c
}

func (t Token) String() string {
	return fmt.Sprintf("%v@%d", t.Value, t.Pos())
}
