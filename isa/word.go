package isa

// Word is one 14-bit machine word.
type Word uint16

const (
	// WordBits is the width of a machine word.
	WordBits = 14
	// WordMask keeps the low 14 bits.
	WordMask Word = 1<<WordBits - 1
	// MaxAddress is the largest address the signed 12-bit payload of an
	// operand word holds.
	MaxAddress = 1<<(WordBits-3) - 1
)

// MakeWord truncates v to 14 bits, two's complement for negative values.
func MakeWord(v int) Word {
	return Word(v) & WordMask
}

// ARE returns the relocation tag of w.
func (w Word) ARE() ARE {
	return ARE(w & 3)
}

// Value returns the 12-bit payload of an operand word, sign-extended.
func (w Word) Value() int {
	v := int(w&WordMask) >> 2
	if v&(1<<11) != 0 {
		v -= 1 << 12
	}
	return v
}

// EncodeValue packs an operand payload with its relocation tag.
func EncodeValue(v int, are ARE) Word {
	return MakeWord(v<<2 | int(are))
}

// EncodeRegisters packs a source and destination register into one word.
func EncodeRegisters(src, dst Reg) Word {
	return MakeWord(int(src)<<8 | int(dst)<<2 | int(Absolute))
}

// EncodeSourceRegister packs a lone source register in the high sub-field.
func EncodeSourceRegister(r Reg) Word {
	return MakeWord(int(r)<<8 | int(Absolute))
}

// EncodeDestinationRegister packs a lone destination register in the low sub-field.
func EncodeDestinationRegister(r Reg) Word {
	return MakeWord(int(r)<<2 | int(Absolute))
}

// DecodeRegisters splits a register word into its source and destination sub-fields.
func DecodeRegisters(w Word) (src, dst Reg) {
	return Reg(w>>8) & 0x3f, Reg(w>>2) & 0x3f
}

// FirstWord is the decoded form of an instruction's opcode word.
type FirstWord struct {
	Param1      Method
	Param2      Method
	Opcode      Opcode
	Source      Method
	Destination Method
	ARE         ARE
}

// EncodeFirstWord builds the opcode word.
// Layout, MSB to LSB: [param1:2][param2:2][opcode:4][source:2][dest:2][ARE:2].
func EncodeFirstWord(p1, p2 Method, op Opcode, src, dst Method) Word {
	return MakeWord(int(p1)<<12 | int(p2)<<10 | int(op)<<6 | int(src)<<4 | int(dst)<<2 | int(Absolute))
}

// DecodeFirstWord is the inverse of EncodeFirstWord.
func DecodeFirstWord(w Word) FirstWord {
	return FirstWord{
		Param1:      Method(w>>12) & 3,
		Param2:      Method(w>>10) & 3,
		Opcode:      Opcode(w>>6) & 0xf,
		Source:      Method(w>>4) & 3,
		Destination: Method(w>>2) & 3,
		ARE:         w.ARE(),
	}
}
