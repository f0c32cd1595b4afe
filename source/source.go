// Package source reads assembly source files line by line.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// MaxLineLength is the number of visible characters kept per line.
	MaxLineLength = 80
	// Extension is the default source file extension.
	Extension = ".as"
)

// Line is one numbered source line. Tokens share it by pointer.
type Line struct {
	File   string
	Number int
	Text   string
}

func (l *Line) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.Number)
}

// File yields the lines of one source file.
type File struct {
	name   string
	r      *bufio.Reader
	closer io.Closer
	number int
	done   bool
}

// Open opens the source file at path.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	sf := NewFile(path, f)
	sf.closer = f
	return sf, nil
}

// NewFile wraps r as a source file called name.
func NewFile(name string, r io.Reader) *File {
	return &File{name: name, r: bufio.NewReader(r)}
}

// Name returns the file name used in diagnostics.
func (f *File) Name() string {
	return f.name
}

// Next returns the next line, or io.EOF once the file is exhausted.
// Lines are truncated to MaxLineLength characters and lose their line ending.
func (f *File) Next() (*Line, error) {
	if f.done {
		return nil, io.EOF
	}
	var sb strings.Builder
	for {
		chunk, err := f.r.ReadSlice('\n')
		if sb.Len() < MaxLineLength+1 {
			// One extra byte so a trailing \r on a full-length line is still seen.
			room := MaxLineLength + 1 - sb.Len()
			sb.Write(chunk[:min(room, len(chunk))])
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err == io.EOF {
			f.done = true
			if len(chunk) == 0 && sb.Len() == 0 {
				return nil, io.EOF
			}
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.name, err)
		}
		break
	}

	text := strings.TrimSuffix(sb.String(), "\n")
	text = strings.TrimSuffix(text, "\r")
	if len(text) > MaxLineLength {
		text = text[:MaxLineLength]
	}
	f.number++
	return &Line{File: f.name, Number: f.number, Text: text}, nil
}

// Close releases the underlying file, if any.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

// Resolve maps a command-line argument to a source path by adding ext
// unless the argument already carries it.
func Resolve(base, ext string) string {
	if ext == "" {
		ext = Extension
	}
	if strings.HasSuffix(base, ext) {
		return base
	}
	return base + ext
}

// Base strips ext from path, giving the stem output files are named after.
func Base(path, ext string) string {
	if ext == "" {
		ext = Extension
	}
	return strings.TrimSuffix(path, ext)
}
