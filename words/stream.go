// Package words holds the growable stream of machine words an assembled
// statement or segment is built from.
package words

import "github.com/Urethramancer/asm14/isa"

// Stream is an ordered sequence of 14-bit words.
type Stream struct {
	words []isa.Word
}

// New creates an empty stream.
func New() *Stream {
	return &Stream{}
}

// AppendWord adds w to the end of the stream.
func (s *Stream) AppendWord(w isa.Word) {
	s.words = append(s.words, w&isa.WordMask)
}

// AppendValue adds v truncated to 14 bits.
func (s *Stream) AppendValue(v int) {
	s.words = append(s.words, isa.MakeWord(v))
}

// AppendString adds one word per byte of text, then a terminating zero word.
func (s *Stream) AppendString(text string) {
	for i := 0; i < len(text); i++ {
		s.words = append(s.words, isa.Word(text[i]))
	}
	s.words = append(s.words, 0)
}

// Concat appends the contents of other. A nil other is ignored.
func (s *Stream) Concat(other *Stream) {
	if other == nil {
		return
	}
	s.words = append(s.words, other.words...)
}

// Set overwrites the word at index i.
func (s *Stream) Set(i int, w isa.Word) {
	s.words[i] = w & isa.WordMask
}

// At returns the word at index i.
func (s *Stream) At(i int) isa.Word {
	return s.words[i]
}

// Len returns the number of words in the stream.
func (s *Stream) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// Snapshot returns a copy of the words.
func (s *Stream) Snapshot() []isa.Word {
	if s == nil {
		return nil
	}
	out := make([]isa.Word, len(s.words))
	copy(out, s.words)
	return out
}
