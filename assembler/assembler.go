package assembler

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/Urethramancer/asm14/diag"
	"github.com/Urethramancer/asm14/isa"
	"github.com/Urethramancer/asm14/lexer"
	"github.com/Urethramancer/asm14/source"
	"github.com/Urethramancer/asm14/symtab"
	"github.com/Urethramancer/asm14/words"
)

// DefaultCodeStart is the address of the first code word.
const DefaultCodeStart = 100

// ErrAssemblyFailed is returned when any error diagnostic was reported.
var ErrAssemblyFailed = errors.New("assembly failed")

// errLine abandons the current line after its diagnostic was reported.
var errLine = errors.New("line abandoned")

// Reference pairs a symbol name with a word address.
type Reference struct {
	Name    string
	Address int
}

// Result is the output of a successful assembly.
type Result struct {
	// Words holds the code segment followed by the data segment.
	Words     []isa.Word
	CodeStart int
	CodeWords int
	DataWords int

	Externals []Reference
	Entries   []Reference

	Symbols    []symtab.Symbol
	Statements []*Statement
}

// Assembler holds the settings shared by every file it assembles.
type Assembler struct {
	codeStart int
	logger    *slog.Logger
}

// New creates an Assembler whose code segment starts at codeStart.
// A nil logger discards log output.
func New(codeStart int, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Assembler{codeStart: codeStart, logger: logger}
}

// CodeStart returns the address of the first code word.
func (asm *Assembler) CodeStart() int {
	return asm.codeStart
}

// AssembleFile assembles the source file at path.
func (asm *Assembler) AssembleFile(path string, report diag.Reporter) (*Result, error) {
	f, err := source.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return asm.Assemble(f, report)
}

// AssembleString assembles src as if read from a file called name.
func (asm *Assembler) AssembleString(name, src string, report diag.Reporter) (*Result, error) {
	return asm.Assemble(source.NewFile(name, strings.NewReader(src)), report)
}

// Assemble runs both phases over file. Diagnostics go to report as they are
// found. Any error diagnostic makes it return ErrAssemblyFailed.
func (asm *Assembler) Assemble(file *source.File, report diag.Reporter) (*Result, error) {
	if report == nil {
		report = diag.Discard
	}
	u := &unit{
		asm:         asm,
		name:        file.Name(),
		scan:        lexer.New(file),
		report:      report,
		symbols:     symtab.New(),
		codeCounter: asm.codeStart,
		entrySites:  make(map[string]lexer.Token),
	}
	log := asm.logger.With("file", u.name)

	// Phase 1: parse every line, emit opcode words and data, collect symbols.
	if err := u.firstPhase(); err != nil {
		return nil, fmt.Errorf("%s: %w", u.name, err)
	}
	log.Debug("phase 1 done",
		"statements", len(u.statements),
		"code", u.codeCounter-asm.codeStart,
		"data", u.dataCounter,
	)
	if u.hasErrors {
		return nil, fmt.Errorf("%s: %w", u.name, ErrAssemblyFailed)
	}

	if err := u.symbols.Finalize(u.codeCounter); err != nil {
		if err := u.reportUndefined(err); err != nil {
			return nil, fmt.Errorf("%s: finalize symbols: %w", u.name, err)
		}
		return nil, fmt.Errorf("%s: %w", u.name, ErrAssemblyFailed)
	}

	// Phase 2: resolve operands into their words.
	for _, stmt := range u.statements {
		if err := u.resolve(stmt); err != nil {
			return nil, fmt.Errorf("%s: %w", u.name, err)
		}
	}
	u.checkSize()
	if u.hasErrors {
		return nil, fmt.Errorf("%s: %w", u.name, ErrAssemblyFailed)
	}

	res, err := u.result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", u.name, err)
	}
	log.Debug("phase 2 done",
		"words", len(res.Words),
		"externals", len(res.Externals),
		"entries", len(res.Entries),
	)
	return res, nil
}

// unit is the state of one file's assembly.
type unit struct {
	asm    *Assembler
	name   string
	scan   *lexer.Scanner
	report diag.Reporter

	symbols    *symtab.Table
	statements []*Statement

	codeCounter int
	dataCounter int

	externals  []Reference
	entrySites map[string]lexer.Token

	hasErrors bool
}

// checkSize reports a program whose last word lies past isa.MaxAddress.
func (u *unit) checkSize() {
	size := u.codeCounter - u.asm.codeStart + u.dataCounter
	if last := u.asm.codeStart + size - 1; size > 0 && last > isa.MaxAddress {
		u.errorf(lexer.Token{}, "program ends at address %d, past the last address %d", last, isa.MaxAddress)
	}
}

// reportUndefined reports every undefined entry of a Finalize error at its
// first .entry token. Any other error is returned.
func (u *unit) reportUndefined(err error) error {
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		var nf *symtab.NotFoundError
		if !errors.As(e, &nf) {
			return e
		}
		u.errorf(u.entrySites[nf.Name], "entry symbol %s is never defined", nf.Name)
	}
	return nil
}

// result concatenates the code statements, then the data statements.
func (u *unit) result() (*Result, error) {
	code := lo.Filter(u.statements, func(s *Statement, _ int) bool { return !s.Data })
	data := lo.Filter(u.statements, func(s *Statement, _ int) bool { return s.Data })

	out := words.New()
	for _, s := range code {
		out.Concat(s.Words)
	}
	codeWords := u.codeCounter - u.asm.codeStart
	if out.Len() != codeWords {
		return nil, fmt.Errorf("code segment has %d words, counted %d", out.Len(), codeWords)
	}
	for _, s := range data {
		out.Concat(s.Words)
	}
	if n := lo.SumBy(data, func(s *Statement) int { return s.Length }); n != u.dataCounter {
		return nil, fmt.Errorf("data segment has %d words, counted %d", n, u.dataCounter)
	}

	exports, err := u.symbols.Exports()
	if err != nil {
		return nil, err
	}
	entries := lo.Map(exports, func(s symtab.Symbol, _ int) Reference {
		return Reference{Name: s.Name, Address: s.Address}
	})

	return &Result{
		Words:      out.Snapshot(),
		CodeStart:  u.asm.codeStart,
		CodeWords:  codeWords,
		DataWords:  u.dataCounter,
		Externals:  u.externals,
		Entries:    entries,
		Symbols:    u.symbols.All(),
		Statements: u.statements,
	}, nil
}

// errorf reports an error at tok and marks the unit failed.
func (u *unit) errorf(tok lexer.Token, format string, args ...any) error {
	u.hasErrors = true
	d := diag.Errorf(tok.Line, tok.Column, format, args...)
	if tok.Line == nil {
		d.File = u.name
		d.Column = 0
	}
	u.report(d)
	return errLine
}

// warnf reports a warning at tok.
func (u *unit) warnf(tok lexer.Token, format string, args ...any) {
	u.report(diag.Warnf(tok.Line, tok.Column, format, args...))
}

// here is a position-only token at the scanner's cursor, for errors with no
// offending token, such as a missing operand at the end of a line.
func (u *unit) here() lexer.Token {
	return lexer.Token{Line: u.scan.Line(), Column: u.scan.Column()}
}
