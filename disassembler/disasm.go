package disassembler

import (
	"fmt"
	"strings"
)

// Format renders a listing, one line per instruction.
func Format(list []Instruction) string {
	var out strings.Builder
	for _, inst := range list {
		fmt.Fprintf(&out, "%04d  %s\n", inst.Address, inst)
	}
	return out.String()
}
