// Package lexer turns source lines into typed tokens.
package lexer

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/Urethramancer/asm14/diag"
	"github.com/Urethramancer/asm14/isa"
	"github.com/Urethramancer/asm14/source"
)

// MaxIdentifierLength is the longest allowed label or identifier.
const MaxIdentifierLength = 31

var (
	// ErrEndOfLine is returned until NextLine is called.
	ErrEndOfLine = errors.New("end of line")
	// ErrEndOfFile is returned once the source is exhausted.
	ErrEndOfFile = errors.New("end of file")
)

// Scanner reads tokens from one source file.
type Scanner struct {
	file   *source.File
	line   *source.Line
	column int

	current    *Token
	currentErr error
	peeked     bool
}

// New creates a scanner for file.
func New(file *source.File) *Scanner {
	return &Scanner{file: file}
}

// Line returns the line being scanned, or nil between lines.
func (s *Scanner) Line() *source.Line {
	return s.line
}

// Column returns the zero-based scan position in the current line.
func (s *Scanner) Column() int {
	return s.column
}

// Peek returns the next token without consuming it.
func (s *Scanner) Peek() (Token, error) {
	if !s.peeked {
		tok, err := s.scan()
		s.current, s.currentErr, s.peeked = &tok, err, true
	}
	return *s.current, s.currentErr
}

// Next returns and consumes the next token.
func (s *Scanner) Next() (Token, error) {
	tok, err := s.Peek()
	if !errors.Is(err, ErrEndOfLine) {
		s.peeked = false
	}
	return tok, err
}

// NextLine drops the rest of the current line.
func (s *Scanner) NextLine() {
	s.line = nil
	s.column = 0
	s.peeked = false
}

func (s *Scanner) errorf(column int, format string, args ...any) error {
	return diag.NewParseError(diag.Errorf(s.line, column, format, args...))
}

func (s *Scanner) at(i int) byte {
	if i < len(s.line.Text) {
		return s.line.Text[i]
	}
	return 0
}

// advance loads a line if needed and skips whitespace.
func (s *Scanner) advance() (first, noSpace bool, err error) {
	noSpace = true
	if s.line == nil {
		l, err := s.file.Next()
		if err == io.EOF {
			return false, false, ErrEndOfFile
		}
		if err != nil {
			return false, false, fmt.Errorf("scan: %w", err)
		}
		s.line, s.column = l, 0
		first, noSpace = true, false
	}
	for s.column < len(s.line.Text) {
		c := s.line.Text[s.column]
		if c != ' ' && c != '\t' {
			break
		}
		noSpace = false
		s.column++
	}
	if s.column >= len(s.line.Text) {
		return first, noSpace, ErrEndOfLine
	}
	return first, noSpace, nil
}

func (s *Scanner) scan() (Token, error) {
	first, noSpace, err := s.advance()
	if err != nil {
		return Token{}, err
	}
	tok := Token{
		Line:          s.line,
		Column:        s.column,
		First:         first,
		NoSpaceBefore: noSpace,
	}

	c := s.at(s.column)
	switch {
	case c == ';':
		s.column = len(s.line.Text)
		tok.Value = Remark{}
	case c == ',' || c == '(' || c == ')':
		s.column++
		tok.Value = Special{Char: c}
	case c == '.':
		tok.Value, err = s.directive()
	case c == '#':
		tok.Value, err = s.immediate()
	case c == '-' || c == '+' || isDigit(c):
		var n int
		n, err = s.number(tok.Column)
		tok.Value = Number{Value: n}
	case c == '"':
		tok.Value, err = s.str()
	case isLetter(c):
		tok.Value, err = s.identifier()
	default:
		err = s.errorf(s.column, "unexpected character %q", c)
	}
	if err != nil {
		return Token{}, err
	}
	return tok, nil
}

func (s *Scanner) directive() (Value, error) {
	start := s.column
	s.column++
	for isLetter(s.at(s.column)) {
		s.column++
	}
	d, ok := isa.LookupDirective(s.line.Text[start+1 : s.column])
	if !ok {
		return nil, s.errorf(start, "Unknown directive")
	}
	return Directive{Dir: d}, nil
}

func (s *Scanner) immediate() (Value, error) {
	s.column++
	c := s.at(s.column)
	if c != '-' && c != '+' && !isDigit(c) {
		return nil, s.errorf(s.column, "a number is expected")
	}
	n, err := s.number(s.column)
	if err != nil {
		return nil, err
	}
	return Immediate{Value: n}, nil
}

// number reads an optional sign and at least one digit. start is the
// column errors are reported at.
func (s *Scanner) number(start int) (int, error) {
	from := s.column
	if c := s.at(s.column); c == '-' || c == '+' {
		s.column++
	}
	digits := s.column
	for isDigit(s.at(s.column)) {
		s.column++
	}
	if s.column == digits {
		return 0, s.errorf(start, "A number must include at least one digit")
	}
	n, err := strconv.Atoi(s.line.Text[from:s.column])
	if err != nil {
		return 0, s.errorf(start, "number out of range")
	}
	return n, nil
}

func (s *Scanner) str() (Value, error) {
	start := s.column
	s.column++
	for s.column < len(s.line.Text) && s.line.Text[s.column] != '"' {
		s.column++
	}
	if s.column >= len(s.line.Text) {
		return nil, s.errorf(start, "No closing \" found")
	}
	text := s.line.Text[start+1 : s.column]
	s.column++
	return String{Text: text}, nil
}

func (s *Scanner) identifier() (Value, error) {
	start := s.column
	for isLetter(s.at(s.column)) || isDigit(s.at(s.column)) {
		s.column++
	}
	name := s.line.Text[start:s.column]
	if len(name) > MaxIdentifierLength {
		return nil, s.errorf(start, "Too long label")
	}

	definition := s.at(s.column) == ':'
	op, isOp := isa.LookupOpcode(name)
	reg, isReg := isa.LookupRegister(name)
	_, isDir := isa.LookupDirective(name)
	if isDir || (definition && (isOp || isReg)) {
		return nil, s.errorf(start, "Forbidden label name")
	}

	switch {
	case isOp:
		return Opcode{Op: op}, nil
	case isReg:
		return Register{Reg: reg}, nil
	case definition:
		s.column++
		return Label{Name: name}, nil
	}
	return Word{Name: name}, nil
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
