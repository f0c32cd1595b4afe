// Package diag carries assembly diagnostics from the point of detection to
// whoever prints them.
package diag

import (
	"fmt"
	"strings"

	"github.com/Urethramancer/asm14/source"
)

// Severity of a diagnostic.
type Severity int

const (
	// Error makes the unit fail; no output files are produced.
	Error Severity = iota
	// Warning is informational.
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one message about a source position.
// Line and Column are 1-based; a zero Column means the whole line.
type Diagnostic struct {
	File     string
	Line     int
	Column   int
	Source   string
	Severity Severity
	Message  string
}

// At builds a diagnostic for a zero-based column on line l.
func At(l *source.Line, column int, sev Severity, msg string) Diagnostic {
	d := Diagnostic{Severity: sev, Message: msg, Column: column + 1}
	if l != nil {
		d.File = l.File
		d.Line = l.Number
		d.Source = l.Text
	}
	return d
}

// Errorf is At with Error severity and a formatted message.
func Errorf(l *source.Line, column int, format string, args ...any) Diagnostic {
	return At(l, column, Error, fmt.Sprintf(format, args...))
}

// Warnf is At with Warning severity and a formatted message.
func Warnf(l *source.Line, column int, format string, args ...any) Diagnostic {
	return At(l, column, Warning, fmt.Sprintf(format, args...))
}

func (d Diagnostic) String() string {
	var sb strings.Builder
	sb.WriteString(d.File)
	if d.Line > 0 {
		fmt.Fprintf(&sb, ":%d", d.Line)
		if d.Column > 0 {
			fmt.Fprintf(&sb, ":%d", d.Column)
		}
	}
	fmt.Fprintf(&sb, ": %s: %s", d.Severity, d.Message)
	return sb.String()
}

// Format renders d with its source line and a caret under the column.
// Tabs before the column are kept so the caret lines up in a terminal.
func Format(d Diagnostic) string {
	var sb strings.Builder
	sb.WriteString(d.String())
	sb.WriteByte('\n')
	if d.Source == "" {
		return sb.String()
	}
	sb.WriteString(d.Source)
	sb.WriteByte('\n')
	if d.Column > 0 {
		for i := 0; i < d.Column-1 && i < len(d.Source); i++ {
			if d.Source[i] == '\t' {
				sb.WriteByte('\t')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("^\n")
	}
	return sb.String()
}

// Reporter receives diagnostics synchronously as they are detected.
type Reporter func(Diagnostic)

// Discard ignores every diagnostic.
func Discard(Diagnostic) {}

// Counter counts what passes through it and forwards to an optional Reporter.
type Counter struct {
	Errors   int
	Warnings int
	next     Reporter
}

// NewCounter wraps next, which may be nil.
func NewCounter(next Reporter) *Counter {
	return &Counter{next: next}
}

// Report is a Reporter.
func (c *Counter) Report(d Diagnostic) {
	if d.Severity == Warning {
		c.Warnings++
	} else {
		c.Errors++
	}
	if c.next != nil {
		c.next(d)
	}
}

// Summary returns "N error(s), M warning(s)".
func (c *Counter) Summary() string {
	return fmt.Sprintf("%d error(s), %d warning(s)", c.Errors, c.Warnings)
}

// Reset clears the counts.
func (c *Counter) Reset() {
	c.Errors, c.Warnings = 0, 0
}

// ParseError is an error carrying a diagnostic.
type ParseError struct {
	Diagnostic
}

// NewParseError wraps d as an error.
func NewParseError(d Diagnostic) *ParseError {
	return &ParseError{Diagnostic: d}
}

func (e *ParseError) Error() string {
	return e.Diagnostic.String()
}
