package output_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/Urethramancer/asm14/assembler"
	"github.com/Urethramancer/asm14/isa"
	"github.com/Urethramancer/asm14/output"
)

func mustAssemble(t *testing.T, src string) *assembler.Result {
	t.Helper()
	res, err := assembler.New(assembler.DefaultCodeStart, nil).AssembleString("test.as", src, nil)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return res
}

func TestFormatWord(t *testing.T) {
	tests := []struct {
		w    isa.Word
		want string
	}{
		{0, ".............."},
		{1, "............./"},
		{0x2000, "/............."},
		{isa.WordMask, "//////////////"},
		{60, "........////.."},
	}
	for _, tc := range tests {
		got := output.FormatWord(tc.w, output.DefaultGlyphs)
		if got != tc.want {
			t.Errorf("FormatWord(%d) = %q, want %q", tc.w, got, tc.want)
		}
		back, err := output.ParseWord(got, output.DefaultGlyphs)
		if err != nil || back != tc.w {
			t.Errorf("ParseWord(%q) = %d, %v", got, back, err)
		}
	}

	if got := output.FormatWord(5, output.Glyphs{One: '1', Zero: '0'}); got != "00000000000101" {
		t.Errorf("custom glyphs: %q", got)
	}
}

func TestParseWordErrors(t *testing.T) {
	for _, s := range []string{"", "....", "......x......."} {
		if _, err := output.ParseWord(s, output.DefaultGlyphs); err == nil {
			t.Errorf("ParseWord(%q) accepted", s)
		}
	}
}

func TestGlyphsValidate(t *testing.T) {
	if err := output.DefaultGlyphs.Validate(); err != nil {
		t.Fatal(err)
	}
	for _, g := range []output.Glyphs{{One: 'a', Zero: 'a'}, {One: ' ', Zero: '.'}, {One: '/', Zero: '\t'}} {
		if g.Validate() == nil {
			t.Errorf("%+v accepted", g)
		}
	}
}

func TestWriteObject(t *testing.T) {
	res := mustAssemble(t, "mov r1,r2\nX: .data 7\n")
	var sb strings.Builder
	if err := output.WriteObject(&sb, res, output.DefaultGlyphs); err != nil {
		t.Fatal(err)
	}
	want := "2 1\n" +
		"0100\t........////..\n" +
		"0101\t...../..../...\n" +
		"0102\t...........///\n"
	if sb.String() != want {
		t.Errorf("object mismatch\nexpected:\n%s\ngot:\n%s", want, sb.String())
	}
}

func TestWriteReferences(t *testing.T) {
	var sb strings.Builder
	refs := []assembler.Reference{{Name: "X", Address: 104}, {Name: "LOOP", Address: 100}}
	if err := output.WriteReferences(&sb, refs); err != nil {
		t.Fatal(err)
	}
	if want := "X\t104\nLOOP\t100\n"; sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()

	plain := mustAssemble(t, "stop\n")
	paths, err := output.WriteFiles(filepath.Join(dir, "plain"), plain, output.DefaultGlyphs)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{filepath.Join(dir, "plain.ob")}; !slices.Equal(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
	if _, err := os.Stat(filepath.Join(dir, "plain.ext")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("empty externals file written")
	}

	linked := mustAssemble(t, ".extern X\n.entry MAIN\nMAIN: jmp X\n")
	paths, err = output.WriteFiles(filepath.Join(dir, "linked"), linked, output.DefaultGlyphs)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 3 {
		t.Fatalf("paths = %v", paths)
	}
	ent, _ := os.ReadFile(filepath.Join(dir, "linked.ent"))
	if string(ent) != "MAIN\t100\n" {
		t.Errorf("entries = %q", ent)
	}
	ext, _ := os.ReadFile(filepath.Join(dir, "linked.ext"))
	if string(ext) != "X\t101\n" {
		t.Errorf("externals = %q", ext)
	}
}

func TestReadObjectRoundTrip(t *testing.T) {
	res := mustAssemble(t, "LOOP: inc r1\nbne LOOP\nstop\nS: .string \"ab\"\n.data -3, 9\n")
	var sb strings.Builder
	if err := output.WriteObject(&sb, res, output.DefaultGlyphs); err != nil {
		t.Fatal(err)
	}
	obj, err := output.ReadObject(strings.NewReader(sb.String()), output.DefaultGlyphs)
	if err != nil {
		t.Fatal(err)
	}
	if obj.Start != res.CodeStart || obj.CodeWords != res.CodeWords || obj.DataWords != res.DataWords {
		t.Errorf("header = %+v", obj)
	}
	if !slices.Equal(obj.Words, res.Words) {
		t.Errorf("words = %v, want %v", obj.Words, res.Words)
	}
	if len(obj.Code()) != res.CodeWords || len(obj.Data()) != res.DataWords {
		t.Errorf("segments = %d/%d", len(obj.Code()), len(obj.Data()))
	}
}

func TestReadObjectErrors(t *testing.T) {
	tests := []struct {
		name, src string
	}{
		{"empty", ""},
		{"bad_header", "x y\n"},
		{"no_tab", "1 0\n0100 ..............\n"},
		{"gap", "2 0\n0100\t..............\n0102\t..............\n"},
		{"glyph", "1 0\n0100\t.....x........\n"},
		{"count", "2 0\n0100\t..............\n"},
	}
	for _, tc := range tests {
		_, err := output.ReadObject(strings.NewReader(tc.src), output.DefaultGlyphs)
		if !errors.Is(err, output.ErrMalformedObject) {
			t.Errorf("[%s] err = %v", tc.name, err)
		}
	}
}
