package assembler

import (
	"github.com/Urethramancer/asm14/isa"
	"github.com/Urethramancer/asm14/lexer"
	"github.com/Urethramancer/asm14/source"
	"github.com/Urethramancer/asm14/words"
)

// MaxOperands is the most operand tokens one statement keeps:
// a parameterized label and its two parameters.
const MaxOperands = 3

// Role is the position an operand token was read in.
type Role int

const (
	// RoleSource is the first operand of a two-operand instruction.
	RoleSource Role = iota
	// RoleDestination is the last operand of an instruction.
	RoleDestination
	// RoleParam1 is the first parameter of a parameterized jump.
	RoleParam1
	// RoleParam2 is the second parameter of a parameterized jump.
	RoleParam2
)

var roleNames = [...]string{"source", "destination", "param1", "param2"}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "?"
}

// high reports whether a lone register in this role goes in the high sub-field.
func (r Role) high() bool {
	return r == RoleSource || r == RoleParam1
}

// Operand is a retained operand token and where it was read.
type Operand struct {
	Token lexer.Token
	Role  Role
}

// Statement is one assembled source line.
type Statement struct {
	Operands []Operand

	Param1      isa.Method
	Param2      isa.Method
	Source      isa.Method
	Destination isa.Method

	Words *words.Stream
	// Length is the word count fixed in phase 1.
	Length int
	Data   bool
	// Counter is the statement's address in its segment.
	Counter int
	Line    *source.Line
}

func newStatement(line *source.Line) *Statement {
	return &Statement{Words: words.New(), Line: line}
}

// instructionLength counts the opcode word plus one word per operand,
// with a trailing register pair sharing a single word.
func (s *Statement) instructionLength() int {
	n := 1 + len(s.Operands)
	if k := len(s.Operands); k >= 2 && isRegister(s.Operands[k-1].Token) && isRegister(s.Operands[k-2].Token) {
		n--
	}
	return n
}

func isRegister(t lexer.Token) bool {
	_, ok := t.Value.(lexer.Register)
	return ok
}
