package errfmt

import (
	"fmt"
	"strings"

	"github.com/behl-lang/behl-go/pkg/token"
)

// StackFrame is one call-stack entry captured when a RuntimeError is
// raised, for the traceback pcall/uncaught-error reporting needs.
type StackFrame struct {
	FunctionName string
	Pos          token.Position
	HasPos       bool
}

func (f StackFrame) String() string {
	if !f.HasPos {
		return f.FunctionName
	}
	return fmt.Sprintf("%s [%s]", f.FunctionName, f.Pos)
}

// StackTrace is ordered oldest-call-first; String prints newest first, the
// conventional top-of-stack-first traceback order.
type StackTrace []StackFrame

func (st StackTrace) String() string {
	if len(st) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := len(st) - 1; i >= 0; i-- {
		sb.WriteString("  at ")
		sb.WriteString(st[i].String())
		if i > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
