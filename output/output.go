// Package output writes assembled units to the object, entries and
// externals files, and reads object files back.
package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Urethramancer/asm14/assembler"
	"github.com/Urethramancer/asm14/isa"
)

// File extensions.
const (
	ObjectExt    = ".ob"
	EntriesExt   = ".ent"
	ExternalsExt = ".ext"
)

// Glyphs are the characters a word's bits are drawn with.
type Glyphs struct {
	One  byte
	Zero byte
}

// DefaultGlyphs draws 1 as '/' and 0 as '.'.
var DefaultGlyphs = Glyphs{One: '/', Zero: '.'}

// Validate checks that the glyphs are printable and distinct.
func (g Glyphs) Validate() error {
	if g.One == g.Zero {
		return fmt.Errorf("glyphs for 1 and 0 must differ, both are %q", g.One)
	}
	for _, c := range []byte{g.One, g.Zero} {
		if c <= ' ' || c > '~' {
			return fmt.Errorf("glyph %q is not a printable character", c)
		}
	}
	return nil
}

// FormatWord draws w as 14 glyphs, most significant bit first.
func FormatWord(w isa.Word, g Glyphs) string {
	var buf [isa.WordBits]byte
	for i := range buf {
		if w&(1<<(isa.WordBits-1-i)) != 0 {
			buf[i] = g.One
		} else {
			buf[i] = g.Zero
		}
	}
	return string(buf[:])
}

// ParseWord is the inverse of FormatWord.
func ParseWord(s string, g Glyphs) (isa.Word, error) {
	if len(s) != isa.WordBits {
		return 0, fmt.Errorf("word %q has %d glyphs, want %d", s, len(s), isa.WordBits)
	}
	var w isa.Word
	for i := 0; i < len(s); i++ {
		w <<= 1
		switch s[i] {
		case g.One:
			w |= 1
		case g.Zero:
		default:
			return 0, fmt.Errorf("unknown glyph %q in word %q", s[i], s)
		}
	}
	return w, nil
}

// WriteObject writes the "<code> <data>" header and one numbered line per word.
func WriteObject(w io.Writer, r *assembler.Result, g Glyphs) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d\n", r.CodeWords, r.DataWords)
	for i, word := range r.Words {
		fmt.Fprintf(bw, "%04d\t%s\n", r.CodeStart+i, FormatWord(word, g))
	}
	return bw.Flush()
}

// WriteReferences writes one "name<TAB>address" line per reference.
func WriteReferences(w io.Writer, refs []assembler.Reference) error {
	bw := bufio.NewWriter(w)
	for _, ref := range refs {
		fmt.Fprintf(bw, "%s\t%d\n", ref.Name, ref.Address)
	}
	return bw.Flush()
}

// WriteFiles writes base.ob, plus base.ent and base.ext when they have
// content. It returns the paths written.
func WriteFiles(base string, r *assembler.Result, g Glyphs) ([]string, error) {
	var written []string
	write := func(ext string, fn func(io.Writer) error) error {
		path := base + ext
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		if err := fn(f); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", path, err)
		}
		written = append(written, path)
		return nil
	}

	err := write(ObjectExt, func(w io.Writer) error { return WriteObject(w, r, g) })
	if err != nil {
		return written, err
	}
	if len(r.Entries) > 0 {
		err = write(EntriesExt, func(w io.Writer) error { return WriteReferences(w, r.Entries) })
		if err != nil {
			return written, err
		}
	}
	if len(r.Externals) > 0 {
		err = write(ExternalsExt, func(w io.Writer) error { return WriteReferences(w, r.Externals) })
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// Object is a parsed object file.
type Object struct {
	CodeWords int
	DataWords int
	// Start is the address of the first word.
	Start int
	Words []isa.Word
}

// Code returns the code segment.
func (o *Object) Code() []isa.Word {
	return o.Words[:o.CodeWords]
}

// Data returns the data segment.
func (o *Object) Data() []isa.Word {
	return o.Words[o.CodeWords:]
}

// ErrMalformedObject wraps every ReadObject format error.
var ErrMalformedObject = errors.New("malformed object file")

// ReadObject parses an object file written with the same glyphs.
func ReadObject(r io.Reader, g Glyphs) (*Object, error) {
	sc := bufio.NewScanner(r)
	lineNo := 0
	bad := func(format string, args ...any) error {
		return fmt.Errorf("line %d: %s: %w", lineNo, fmt.Sprintf(format, args...), ErrMalformedObject)
	}

	obj := &Object{}
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if lineNo == 1 {
			if _, err := fmt.Sscanf(line, "%d %d", &obj.CodeWords, &obj.DataWords); err != nil {
				return nil, bad("header %q", line)
			}
			if obj.CodeWords < 0 || obj.DataWords < 0 {
				return nil, bad("negative segment size")
			}
			continue
		}
		if line == "" {
			continue
		}

		addrText, wordText, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, bad("missing tab")
		}
		var addr int
		if _, err := fmt.Sscanf(addrText, "%d", &addr); err != nil {
			return nil, bad("address %q", addrText)
		}
		if len(obj.Words) == 0 {
			obj.Start = addr
		} else if want := obj.Start + len(obj.Words); addr != want {
			return nil, bad("address %d, want %d", addr, want)
		}
		w, err := ParseWord(wordText, g)
		if err != nil {
			return nil, bad("%v", err)
		}
		obj.Words = append(obj.Words, w)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	if lineNo == 0 {
		return nil, bad("empty file")
	}
	if n := obj.CodeWords + obj.DataWords; n != len(obj.Words) {
		return nil, bad("header announces %d words, found %d", n, len(obj.Words))
	}
	return obj, nil
}
