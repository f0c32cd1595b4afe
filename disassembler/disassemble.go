package disassembler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Urethramancer/asm14/isa"
	"github.com/Urethramancer/asm14/output"
)

var (
	// ErrTruncated is returned when the code segment ends inside an instruction.
	ErrTruncated = errors.New("truncated instruction")
	// ErrBadMethods is returned when an opcode word uses methods its opcode does not allow.
	ErrBadMethods = errors.New("unknown method combination")
)

// Disassemble decodes the code segment of obj instruction by instruction,
// then lists the data segment.
func Disassemble(obj *output.Object) ([]Instruction, error) {
	if obj.CodeWords+obj.DataWords != len(obj.Words) {
		return nil, fmt.Errorf("object holds %d words, header says %d", len(obj.Words), obj.CodeWords+obj.DataWords)
	}

	var list []Instruction
	code := obj.Code()
	for pc := 0; pc < len(code); {
		inst, err := decode(code[pc:], obj.Start+pc)
		if err != nil {
			return list, err
		}
		list = append(list, inst)
		pc += len(inst.Words)
	}

	list = append(list, analyzeData(obj.Data(), obj.Start+obj.CodeWords)...)
	return list, nil
}

// decode reads the instruction at the start of code.
func decode(code []isa.Word, addr int) (Instruction, error) {
	fw := isa.DecodeFirstWord(code[0])
	op := fw.Opcode
	inst := Instruction{Address: addr, Mnemonic: op.String()}
	if fw.ARE != isa.Absolute {
		return inst, fmt.Errorf("%04d: opcode word tagged %s: %w", addr, fw.ARE, ErrBadMethods)
	}

	slots, err := operandSlots(fw)
	if err != nil {
		return inst, fmt.Errorf("%04d: %s: %w", addr, op, err)
	}

	// Two registers in a row share one word.
	var rendered []string
	n := 1
	for i := 0; i < len(slots); i++ {
		if n >= len(code) {
			return inst, fmt.Errorf("%04d: %s: %w", addr, op, ErrTruncated)
		}
		w := code[n]
		n++
		if slots[i].method == isa.Register && i+1 < len(slots) && slots[i+1].method == isa.Register {
			src, dst := isa.DecodeRegisters(w)
			rendered = append(rendered, src.String(), dst.String())
			i++
			continue
		}
		rendered = append(rendered, slots[i].render(w))
	}

	inst.Words = code[:n]
	inst.Operands = rendered
	if fw.Destination == isa.Parameterized {
		// Fold the label and its two parameters into one operand.
		k := len(rendered) - 3
		jump := fmt.Sprintf("%s(%s,%s)", rendered[k], rendered[k+1], rendered[k+2])
		inst.Operands = append(rendered[:k:k], jump)
	}
	return inst, nil
}

// operandSlots lists the operand words an opcode word announces, in order.
func operandSlots(fw isa.FirstWord) ([]operand, error) {
	rule := fw.Opcode.Rule()
	var slots []operand

	if fw.Opcode.HasSource() {
		if !rule.Source.Has(fw.Source) {
			return nil, fmt.Errorf("source %s: %w", fw.Source, ErrBadMethods)
		}
		slots = append(slots, operand{method: fw.Source, high: true})
	} else if fw.Source != 0 {
		return nil, fmt.Errorf("source %s without a source operand: %w", fw.Source, ErrBadMethods)
	}

	if fw.Opcode.HasDestination() {
		if !rule.Destination.Has(fw.Destination) {
			return nil, fmt.Errorf("destination %s: %w", fw.Destination, ErrBadMethods)
		}
		if fw.Destination == isa.Parameterized {
			if !isa.ParamMethods.Has(fw.Param1) || !isa.ParamMethods.Has(fw.Param2) {
				return nil, fmt.Errorf("parameters %s,%s: %w", fw.Param1, fw.Param2, ErrBadMethods)
			}
			return append(slots,
				operand{method: isa.Direct},
				operand{method: fw.Param1, high: true},
				operand{method: fw.Param2},
			), nil
		}
		slots = append(slots, operand{method: fw.Destination})
	} else if fw.Destination != 0 {
		return nil, fmt.Errorf("destination %s without a destination operand: %w", fw.Destination, ErrBadMethods)
	}

	if fw.Param1 != 0 || fw.Param2 != 0 {
		return nil, fmt.Errorf("parameters without a parameterized jump: %w", ErrBadMethods)
	}
	return slots, nil
}

// String renders the instruction as source text.
func (inst Instruction) String() string {
	if len(inst.Operands) == 0 {
		return inst.Mnemonic
	}
	return inst.Mnemonic + " " + strings.Join(inst.Operands, ", ")
}
