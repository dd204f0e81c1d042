// Package errfmt renders behl's errors with source context: the offending
// source line and a caret pointing at the offending column. No
// surrounding lines are shown. The parser, semantic pass and compiler
// report their diagnostics as one of the five taxonomy kinds in Kind
// through a *Error, so they share one rendering path; the lexer reports
// bad input as ILLEGAL tokens, not as *Error values.
package errfmt

import (
	"fmt"
	"strings"

	"github.com/behl-lang/behl-go/pkg/token"
)

// Kind is the five-member error taxonomy spec.md §10 requires: every
// error behl can raise is exactly one of these.
type Kind int

const (
	SyntaxError Kind = iota
	SemanticError
	TypeError
	RuntimeError
	HostError
)

func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case SemanticError:
		return "SemanticError"
	case TypeError:
		return "TypeError"
	case RuntimeError:
		return "RuntimeError"
	case HostError:
		return "HostError"
	default:
		return "Error"
	}
}

// Error is a single diagnostic with source position and taxonomy kind.
type Error struct {
	Kind    Kind
	Message string
	Source  string // full source text, for rendering context; may be empty
	File    string
	Pos     token.Position
	Trace   StackTrace // populated for RuntimeError, empty otherwise
}

func New(kind Kind, pos token.Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}

func (e *Error) Error() string { return e.Format(false) }

// Format renders the error with a single line of source context and a
// caret under the offending column. With color, ANSI codes highlight the
// caret and message the way a terminal-facing CLI wants; host embedders
// call Format(false) for plain text.
func (e *Error) Format(color bool) string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "%s in %s:%d:%d\n", e.Kind, e.File, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "%s at %d:%d\n", e.Kind, e.Pos.Line, e.Pos.Column)
	}

	if line := e.sourceLine(e.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(prefix)+e.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}

	if len(e.Trace) > 0 {
		sb.WriteString("\n")
		sb.WriteString(e.Trace.String())
	}

	return sb.String()
}

func (e *Error) sourceLine(lineNum int) string {
	if e.Source == "" || lineNum < 1 {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FormatAll renders a batch of errors (e.g. every error the semantic pass
// accumulated before giving up), numbered when there is more than one.
func FormatAll(errs []*Error, color bool) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format(color)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d error(s):\n\n", len(errs))
	for i, e := range errs {
		fmt.Fprintf(&sb, "[%d/%d] ", i+1, len(errs))
		sb.WriteString(e.Format(color))
		if i < len(errs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
