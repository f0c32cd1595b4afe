package isa

import "strings"

// Method is the 2-bit addressing method field of an operand.
type Method uint8

const (
	// Immediate is a literal value: #5
	Immediate Method = 0

	// Direct is a label address: LOOP
	Direct Method = 1

	// Parameterized is a jump label with two parameters: LOOP(r1,#3)
	Parameterized Method = 2

	// Register is register direct: r3
	Register Method = 3
)

var methodNames = [...]string{"immediate", "direct", "parameterized", "register"}

func (m Method) String() string {
	if int(m) < len(methodNames) {
		return methodNames[m]
	}
	return "invalid"
}

// MethodSet is a set of allowed addressing methods for one operand position.
type MethodSet uint8

const (
	AllowImmediate MethodSet = 1 << iota
	AllowDirect
	AllowParameterized
	AllowRegister
)

// None is the empty set: the opcode has no operand in this position.
const None MethodSet = 0

// ParamMethods are the methods allowed for each parameter of a parameterized operand.
const ParamMethods = AllowImmediate | AllowDirect | AllowRegister

// Has reports whether m is in the set.
func (s MethodSet) Has(m Method) bool {
	return s&(1<<m) != 0
}

// Empty reports whether no method is allowed.
func (s MethodSet) Empty() bool {
	return s == None
}

func (s MethodSet) String() string {
	if s.Empty() {
		return "none"
	}
	var parts []string
	for m := Immediate; m <= Register; m++ {
		if s.Has(m) {
			parts = append(parts, m.String())
		}
	}
	return strings.Join(parts, "|")
}

// ARE is the 2-bit relocation tag at the bottom of every emitted word.
type ARE uint8

const (
	// Absolute words need no relocation.
	Absolute ARE = 0
	// External words are patched by the linker with a symbol from another unit.
	External ARE = 1
	// Relocatable words hold an address local to this unit.
	Relocatable ARE = 2
)

func (a ARE) String() string {
	switch a {
	case Absolute:
		return "A"
	case External:
		return "E"
	case Relocatable:
		return "R"
	}
	return "?"
}

// Register numbers
type Reg uint8

// NumRegisters is the size of the register file (r0..r7).
const NumRegisters = 8

var registerNames = [NumRegisters]string{"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7"}

func (r Reg) String() string {
	if int(r) < NumRegisters {
		return registerNames[r]
	}
	return "r?"
}

// LookupRegister returns the register named s. Names are case-sensitive.
func LookupRegister(s string) (Reg, bool) {
	for i, name := range registerNames {
		if name == s {
			return Reg(i), true
		}
	}
	return 0, false
}
