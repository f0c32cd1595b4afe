package disassembler

import (
	"fmt"

	"github.com/Urethramancer/asm14/isa"
)

// Instruction is one decoded statement at a specific address.
type Instruction struct {
	Address  int
	Words    []isa.Word
	Mnemonic string
	Operands []string
	// Data marks .data and .string entries from the data segment.
	Data bool
}

// operand is one operand slot of an instruction, before its words are read.
type operand struct {
	method isa.Method
	// high selects the source sub-field for a lone register.
	high bool
}

// render formats the operand stored in w.
func (o operand) render(w isa.Word) string {
	switch o.method {
	case isa.Immediate:
		return fmt.Sprintf("#%d", w.Value())
	case isa.Direct:
		return address(w)
	case isa.Register:
		src, dst := isa.DecodeRegisters(w)
		if o.high {
			return src.String()
		}
		return dst.String()
	}
	return "?"
}

// address formats a label reference by its relocation tag.
func address(w isa.Word) string {
	switch w.ARE() {
	case isa.External:
		return "ext"
	case isa.Relocatable:
		return fmt.Sprintf("@%d", w.Value())
	}
	return fmt.Sprintf("%d", w.Value())
}
