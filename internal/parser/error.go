package parser

import (
	"github.com/behl-lang/behl-go/internal/errfmt"
	"github.com/behl-lang/behl-go/pkg/token"
)

// Error is the parser's diagnostic type. It's an alias for the shared
// errfmt.Error so syntax errors render through the same taxonomy and
// caret-pointing formatter as the semantic pass and compiler
// (spec.md §10); a parse failure is always errfmt.SyntaxError.
type Error = errfmt.Error

// Error code constants identify the parse-error category, for tests and
// tooling that want to match on more than the rendered message text.
const (
	ErrUnexpectedToken   = "E_UNEXPECTED_TOKEN"
	ErrNoPrefixParse     = "E_NO_PREFIX_PARSE"
	ErrInvalidExpression = "E_INVALID_EXPRESSION"
)

func newError(pos token.Position, code, format string, args ...any) *Error {
	e := errfmt.New(errfmt.SyntaxError, pos, format, args...)
	e.Message = "[" + code + "] " + e.Message
	return e
}
