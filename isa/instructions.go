package isa

// Opcode is the 4-bit operation field of the first instruction word.
type Opcode uint8

// Opcodes, in encoding order.
const (
	MOV Opcode = iota
	CMP
	ADD
	SUB
	NOT
	CLR
	LEA
	INC
	DEC
	JMP
	BNE
	RED
	PRN
	JSR
	RTS
	STOP

	// NumOpcodes is the number of defined opcodes.
	NumOpcodes = 16
)

var opcodeNames = [NumOpcodes]string{
	"mov", "cmp", "add", "sub", "not", "clr", "lea", "inc",
	"dec", "jmp", "bne", "red", "prn", "jsr", "rts", "stop",
}

func (op Opcode) String() string {
	if int(op) < NumOpcodes {
		return opcodeNames[op]
	}
	return "???"
}

// LookupOpcode returns the opcode for a mnemonic. Mnemonics are case-sensitive.
func LookupOpcode(s string) (Opcode, bool) {
	for i, name := range opcodeNames {
		if name == s {
			return Opcode(i), true
		}
	}
	return 0, false
}

// OperandRule lists the addressing methods allowed in each operand position.
type OperandRule struct {
	Source      MethodSet
	Destination MethodSet
}

const (
	imm   = AllowImmediate
	dir   = AllowDirect
	param = AllowParameterized
	reg   = AllowRegister
)

// Rules is indexed by Opcode.
var Rules = [NumOpcodes]OperandRule{
	MOV:  {Source: imm | dir | reg, Destination: dir | reg},
	CMP:  {Source: imm | dir | reg, Destination: imm | dir | reg},
	ADD:  {Source: imm | dir | reg, Destination: dir | reg},
	SUB:  {Source: imm | dir | reg, Destination: dir | reg},
	NOT:  {Destination: dir | reg},
	CLR:  {Destination: dir | reg},
	LEA:  {Source: dir, Destination: dir | reg},
	INC:  {Destination: dir | reg},
	DEC:  {Destination: dir | reg},
	JMP:  {Destination: dir | param | reg},
	BNE:  {Destination: dir | param | reg},
	RED:  {Destination: dir | reg},
	PRN:  {Destination: imm | dir | reg},
	JSR:  {Destination: dir | param | reg},
	RTS:  {},
	STOP: {},
}

// Rule returns the operand rule for op.
func (op Opcode) Rule() OperandRule {
	return Rules[op]
}

// HasSource reports whether op takes a source operand.
// Only two-operand instructions have one.
func (op Opcode) HasSource() bool {
	return !Rules[op].Source.Empty()
}

// HasDestination reports whether op takes any operand at all.
func (op Opcode) HasDestination() bool {
	return !Rules[op].Destination.Empty()
}

// Operands returns the number of operands op takes: 0, 1 or 2.
func (op Opcode) Operands() int {
	switch {
	case op.HasSource():
		return 2
	case op.HasDestination():
		return 1
	}
	return 0
}

// Directive is an assembler directive introduced by a dot.
type Directive uint8

const (
	DATA Directive = iota
	STRING
	ENTRY
	EXTERN

	// NumDirectives is the number of defined directives.
	NumDirectives = 4
)

var directiveNames = [NumDirectives]string{"data", "string", "entry", "extern"}

func (d Directive) String() string {
	if int(d) < NumDirectives {
		return directiveNames[d]
	}
	return "???"
}

// LookupDirective returns the directive named s (without the leading dot).
func LookupDirective(s string) (Directive, bool) {
	for i, name := range directiveNames {
		if name == s {
			return Directive(i), true
		}
	}
	return 0, false
}
