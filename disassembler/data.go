package disassembler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Urethramancer/asm14/isa"
)

// minStringLen is the shortest printable run listed as .string.
const minStringLen = 2

func isPrintable(w isa.Word) bool {
	return w >= 0x20 && w <= 0x7e
}

// dataValue sign-extends a full 14-bit data word.
func dataValue(w isa.Word) int {
	v := int(w & isa.WordMask)
	if v&(1<<(isa.WordBits-1)) != 0 {
		v -= 1 << isa.WordBits
	}
	return v
}

// analyzeData lists the data segment. A printable run followed by a zero word
// becomes .string; every other word is a .data value.
func analyzeData(data []isa.Word, base int) []Instruction {
	var list []Instruction
	for i := 0; i < len(data); {
		end := i
		for end < len(data) && isPrintable(data[end]) {
			end++
		}
		if end-i >= minStringLen && end < len(data) && data[end] == 0 {
			var sb strings.Builder
			for _, w := range data[i:end] {
				sb.WriteByte(byte(w))
			}
			list = append(list, Instruction{
				Address:  base + i,
				Words:    data[i : end+1],
				Mnemonic: ".string",
				Operands: []string{strconv.Quote(sb.String())},
				Data:     true,
			})
			i = end + 1
			continue
		}

		list = append(list, Instruction{
			Address:  base + i,
			Words:    data[i : i+1],
			Mnemonic: ".data",
			Operands: []string{fmt.Sprintf("%d", dataValue(data[i]))},
			Data:     true,
		})
		i++
	}
	return list
}
