package assembler_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/Urethramancer/asm14/assembler"
	"github.com/Urethramancer/asm14/diag"
	"github.com/Urethramancer/asm14/isa"
)

func assemble(t *testing.T, src string) (*assembler.Result, []diag.Diagnostic, error) {
	t.Helper()
	var diags []diag.Diagnostic
	asm := assembler.New(assembler.DefaultCodeStart, nil)
	res, err := asm.AssembleString("test.as", src, func(d diag.Diagnostic) {
		diags = append(diags, d)
	})
	return res, diags, err
}

// Assembles source and checks the full word stream.
func assembleAndMatch(t *testing.T, name, src string, want []isa.Word) *assembler.Result {
	t.Helper()
	res, diags, err := assemble(t, src)
	if err != nil {
		for _, d := range diags {
			t.Log(diag.Format(d))
		}
		t.Fatalf("[%s] failed to assemble:\n%s\nerror: %v", name, src, err)
	}
	if !slices.Equal(res.Words, want) {
		t.Fatalf("[%s] word mismatch\nexpected: %v\ngot:      %v", name, want, res.Words)
	}
	return res
}

func TestEncodings(t *testing.T) {
	tests := []struct {
		name, src string
		want      []isa.Word
	}{
		{"mov_reg_reg", "mov r1,r2", []isa.Word{60, 264}},
		{"mov_imm_reg", "mov #5,r3", []isa.Word{12, 20, 12}},
		{"mov_reg_src_only", "L: mov r7,L", []isa.Word{52, 7 << 8, 100<<2 | 2}},
		{"cmp_imm_imm", "cmp #-1, #2", []isa.Word{1 << 6, 0x3FFC, 8}},
		{"prn_imm", "prn #-5", []isa.Word{12 << 6, isa.MakeWord(-5 << 2)}},
		{"inc_reg", "inc r6", []isa.Word{7<<6 | 3<<2, 6 << 2}},
		{"rts", "rts", []isa.Word{14 << 6}},
		{"stop", "stop", []isa.Word{15 << 6}},
		{"remarks_and_blanks", "; header\n\n  stop ; done\n", []isa.Word{15 << 6}},
		{"tabs", "\tmov\tr1 ,\tr2", []isa.Word{60, 264}},
	}
	for _, tc := range tests {
		assembleAndMatch(t, tc.name, tc.src, tc.want)
	}
}

func TestTwoRegistersShareOneWord(t *testing.T) {
	res := assembleAndMatch(t, "mov r1,r2", "mov r1,r2", []isa.Word{60, 264})
	if res.CodeWords != 2 || len(res.Statements) != 1 || res.Statements[0].Length != 2 {
		t.Errorf("code words = %d", res.CodeWords)
	}
}

func TestDataAndString(t *testing.T) {
	res := assembleAndMatch(t, "data", ".data 1,2,-3", []isa.Word{1, 2, 0x3FFD})
	if res.CodeWords != 0 || res.DataWords != 3 {
		t.Errorf("segments: %d code, %d data", res.CodeWords, res.DataWords)
	}
	for _, src := range []string{".data 1 , 2 ,-3", ".data   1,2,   -3   ", ".data 1 ,2, -3 ; remark"} {
		res, _, err := assemble(t, src)
		if err != nil || res.DataWords != 3 || res.Statements[0].Length != 3 || !res.Statements[0].Data {
			t.Errorf("%q: %v", src, err)
		}
	}

	res = assembleAndMatch(t, "string", `.string "ab"`, []isa.Word{'a', 'b', 0})
	if res.DataWords != 3 {
		t.Errorf("string data words = %d", res.DataWords)
	}
	assembleAndMatch(t, "empty_string", `.string ""`, []isa.Word{0})
}

func TestDataFollowsCode(t *testing.T) {
	src := strings.Join([]string{
		".entry NUM",
		"MAIN: lea STR, r1",
		"STR: .string \"hi\"",
		" stop",
		"NUM: .data 7",
	}, "\n")
	res := assembleAndMatch(t, "segments", src, []isa.Word{412, 418, 4, 960, 'h', 'i', 0, 7})
	if res.CodeWords != 4 || res.DataWords != 4 {
		t.Errorf("segments: %d code, %d data", res.CodeWords, res.DataWords)
	}
	want := []assembler.Reference{{Name: "NUM", Address: 107}}
	if !slices.Equal(res.Entries, want) {
		t.Errorf("entries: %v", res.Entries)
	}
	if len(res.Externals) != 0 {
		t.Errorf("externals: %v", res.Externals)
	}
}

func TestLoopWithExtern(t *testing.T) {
	src := "LOOP: mov #5,r3\n.extern X\n jmp X\n jmp LOOP\n"
	res := assembleAndMatch(t, "loop", src, []isa.Word{12, 20, 12, 580, 1, 580, 402})
	want := []assembler.Reference{{Name: "X", Address: 104}}
	if !slices.Equal(res.Externals, want) {
		t.Errorf("externals: %v", res.Externals)
	}
	for _, s := range res.Symbols {
		if s.Name == "LOOP" && s.Address != assembler.DefaultCodeStart {
			t.Errorf("LOOP = %d", s.Address)
		}
	}
}

func TestForwardReference(t *testing.T) {
	forward := assembleAndMatch(t, "forward", " jmp END\n mov r1, r2\nEND: stop", []isa.Word{580, 418, 60, 264, 960})

	backward, _, err := assemble(t, "END: stop\n jmp END")
	if err != nil {
		t.Fatal(err)
	}
	if got := backward.Words[2]; got != 100<<2|2 {
		t.Errorf("backward reference word = %d", got)
	}
	if forward.Words[1].Value() != 104 || forward.Words[1].ARE() != isa.Relocatable {
		t.Errorf("forward reference word = %d", forward.Words[1])
	}
}

func TestParameterizedJumps(t *testing.T) {
	src := "L: rts\n jsr L(r1,#2)\n jmp L(r4,r5)"
	res := assembleAndMatch(t, "params", src, []isa.Word{896, 13128, 402, 256, 8, 15944, 402, 1044})
	if res.Statements[1].Destination != isa.Parameterized || res.Statements[2].Length != 3 {
		t.Errorf("statements: %+v", res.Statements)
	}

	src = ".extern E\n jmp L(E,r2)\nL: stop"
	res = assembleAndMatch(t, "param_extern", src, []isa.Word{7752, 418, 1, 8, 960})
	want := []assembler.Reference{{Name: "E", Address: 102}}
	if !slices.Equal(res.Externals, want) {
		t.Errorf("externals: %v", res.Externals)
	}
}

func TestLengthsMatchEmittedWords(t *testing.T) {
	src := strings.Join([]string{
		"MAIN: mov r1, r2",
		" cmp #3, LEN",
		" jsr SUB(LEN,r3)",
		" bne MAIN",
		"SUB: add LEN, r0",
		" rts",
		"LEN: .data 4, 5",
		"MSG: .string \"done\"",
		" stop",
	}, "\n")
	res, _, err := assemble(t, src)
	if err != nil {
		t.Fatal(err)
	}
	code, data := 0, 0
	for _, s := range res.Statements {
		if s.Data {
			data += s.Length
		} else {
			code += s.Length
		}
	}
	if code != res.CodeWords || data != res.DataWords || len(res.Words) != code+data {
		t.Errorf("lengths %d/%d, segments %d/%d, words %d", code, data, res.CodeWords, res.DataWords, len(res.Words))
	}
}

func TestWarnings(t *testing.T) {
	res, diags, err := assemble(t, "L: .extern X\nM: .entry N\nN: stop")
	if err != nil {
		t.Fatal(err)
	}
	if len(diags) != 2 || diags[0].Severity != diag.Warning || diags[0].Line != 1 || diags[1].Line != 2 {
		t.Errorf("diagnostics: %+v", diags)
	}
	for _, s := range res.Symbols {
		if s.Name == "L" || s.Name == "M" {
			t.Errorf("label %s should be discarded", s.Name)
		}
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name, src string
		msg       string
		line, col int
	}{
		{"bad_destination", "mov #1, #2", "Unsupported operand", 1, 9},
		{"lea_immediate", "lea #1, r1", "Unsupported operand", 1, 5},
		{"label_alone", "LOOP:", "an opcode or directive is expected", 1, 6},
		{"label_register", "LOOP: r1", "an opcode or directive is expected", 1, 7},
		{"no_opcode", "r1", "an opcode or directive is expected", 1, 1},
		{"duplicate", "A: stop\nA: rts", "Duplicate label definition", 2, 1},
		{"data_double_comma", ".data 1,,2", "Number (data) is expected", 1, 9},
		{"data_trailing_comma", ".data 1,", "Number (data) is expected", 1, 9},
		{"data_empty", ".data", "Number (data) is expected", 1, 6},
		{"data_no_comma", ".data 1 2", "a comma is expected", 1, 9},
		{"string_missing", ".string abc", "String is expected", 1, 9},
		{"missing_comma", "mov r1 r2", "a comma is expected", 1, 8},
		{"missing_operand", "inc", "an operand is expected", 1, 4},
		{"extra_operand", "stop r1", "unexpected register after the statement", 1, 6},
		{"extern_then_entry", ".extern X\n.entry X", "label already defined as extern", 2, 8},
		{"entry_then_extern", ".entry Y\n.extern Y", "label already declared as entry", 2, 9},
		{"extern_not_identifier", ".extern 5", "identifier is expected", 1, 9},
		{"missing_label", "jmp Z", "Missing label Z", 1, 5},
		{"undefined_entry", ".entry GHOST\nstop", "entry symbol GHOST is never defined", 1, 8},
		{"unclosed_params", "jmp L(r1,#2\nL: stop", "a ')' is expected", 1, 12},
		{"space_in_params", "jmp L(r1, #2)\nL: stop", "no whitespace is allowed in a parameter list", 1, 11},
		{"space_before_params", "jmp L (r1,#2)\nL: stop", "unexpected special character after the statement", 1, 7},
		{"param_not_allowed", "mov L(r1,#2), r1\nL: stop", "a comma is expected", 1, 6},
		{"scanner_error", "prn #x", "a number is expected", 1, 6},
	}
	for _, tc := range tests {
		res, diags, err := assemble(t, tc.src)
		if !errors.Is(err, assembler.ErrAssemblyFailed) {
			t.Errorf("[%s] expected ErrAssemblyFailed, got %v", tc.name, err)
			continue
		}
		if res != nil {
			t.Errorf("[%s] failed assembly returned a result", tc.name)
		}
		if len(diags) == 0 {
			t.Errorf("[%s] no diagnostics", tc.name)
			continue
		}
		d := diags[0]
		if d.Message != tc.msg || d.Line != tc.line || d.Column != tc.col || d.Severity != diag.Error {
			t.Errorf("[%s] got %q at %d:%d, want %q at %d:%d", tc.name, d.Message, d.Line, d.Column, tc.msg, tc.line, tc.col)
		}
		if d.File != "test.as" {
			t.Errorf("[%s] file = %q", tc.name, d.File)
		}
	}
}

func TestErrorRecovery(t *testing.T) {
	_, diags, err := assemble(t, "mov #1,#2\ninc\n .data x\nstop")
	if !errors.Is(err, assembler.ErrAssemblyFailed) {
		t.Fatal(err)
	}
	if len(diags) != 3 {
		t.Fatalf("expected one error per bad line, got %d: %+v", len(diags), diags)
	}
	for i, d := range diags {
		if d.Line != i+1 {
			t.Errorf("diagnostic %d is on line %d", i, d.Line)
		}
	}

	// A duplicate label does not stop the rest of its line being checked.
	_, diags, _ = assemble(t, "A: stop\nA: mov #1, #2")
	if len(diags) != 2 || diags[1].Message != "Unsupported operand" {
		t.Errorf("got %+v", diags)
	}
}

func TestMissingLabelsAllReported(t *testing.T) {
	_, diags, err := assemble(t, "mov A, B")
	if !errors.Is(err, assembler.ErrAssemblyFailed) {
		t.Fatal(err)
	}
	if len(diags) != 2 || diags[0].Message != "Missing label A" || diags[1].Message != "Missing label B" {
		t.Errorf("got %+v", diags)
	}
}

func TestUndefinedEntriesAllReported(t *testing.T) {
	_, diags, err := assemble(t, ".entry A\n.entry B\nstop")
	if !errors.Is(err, assembler.ErrAssemblyFailed) {
		t.Fatal(err)
	}
	if len(diags) != 2 {
		t.Fatalf("got %+v", diags)
	}
	for i, name := range []string{"A", "B"} {
		d := diags[i]
		if d.Message != "entry symbol "+name+" is never defined" || d.Line != i+1 || d.Column != 8 {
			t.Errorf("got %q at %d:%d", d.Message, d.Line, d.Column)
		}
	}
}

func TestAddressLimits(t *testing.T) {
	res, err := assembler.New(isa.MaxAddress-1, nil).AssembleString("top.as", "L: jmp L", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Words[1].Value(); got != isa.MaxAddress-1 {
		t.Errorf("label word holds %d", got)
	}

	var diags []diag.Diagnostic
	_, err = assembler.New(5000, nil).AssembleString("high.as", "L: jmp L", func(d diag.Diagnostic) {
		diags = append(diags, d)
	})
	if !errors.Is(err, assembler.ErrAssemblyFailed) {
		t.Fatalf("got %v", err)
	}
	if len(diags) == 0 || diags[0].Message != "label L at address 5000 does not fit in an operand word" ||
		diags[0].Line != 1 || diags[0].Column != 8 {
		t.Errorf("got %+v", diags)
	}

	diags = nil
	_, err = assembler.New(isa.MaxAddress-1, nil).AssembleString("long.as", "stop\n.data 1, 2", func(d diag.Diagnostic) {
		diags = append(diags, d)
	})
	if !errors.Is(err, assembler.ErrAssemblyFailed) {
		t.Fatalf("got %v", err)
	}
	if len(diags) != 1 || diags[0].Message != "program ends at address 2048, past the last address 2047" ||
		diags[0].File != "long.as" || diags[0].Line != 0 {
		t.Errorf("got %+v", diags)
	}
}

func TestCodeStart(t *testing.T) {
	asm := assembler.New(0, nil)
	res, err := asm.AssembleString("zero.as", "L: jmp L", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.CodeStart != 0 || res.Words[1] != 2 {
		t.Errorf("got start %d, words %v", res.CodeStart, res.Words)
	}
}

func TestAssembleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.as")
	if err := os.WriteFile(path, []byte("MAIN: mov r1,r2\n stop\n"), 0644); err != nil {
		t.Fatal(err)
	}
	asm := assembler.New(assembler.DefaultCodeStart, nil)
	res, err := asm.AssembleFile(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(res.Words, []isa.Word{60, 264, 960}) {
		t.Errorf("got %v", res.Words)
	}

	_, err = asm.AssembleFile(filepath.Join(dir, "missing.as"), nil)
	if err == nil || errors.Is(err, assembler.ErrAssemblyFailed) {
		t.Errorf("missing file: %v", err)
	}
}
