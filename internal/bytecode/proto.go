package bytecode

import "fmt"

// ConstKind tags a Proto constant pool entry.
type ConstKind uint8

const (
	ConstNil ConstKind = iota
	ConstBool
	ConstInt
	ConstFloat
	ConstString
)

// Const is the compiler's own constant representation — deliberately not
// gc.Value, mirroring the split DESIGN.md's package-cycle-layout note
// draws between compile-time and run-time representations, so that
// internal/bytecode does not import internal/gc. No package in this
// repository converts a Const to a gc.Value.
type Const struct {
	Kind ConstKind
	I    int64
	F    float64
	S    string
}

func (c Const) String() string {
	switch c.Kind {
	case ConstNil:
		return "nil"
	case ConstBool:
		return fmt.Sprintf("%t", c.I != 0)
	case ConstInt:
		return fmt.Sprintf("%d", c.I)
	case ConstFloat:
		return fmt.Sprintf("%g", c.F)
	case ConstString:
		return fmt.Sprintf("%q", c.S)
	default:
		return "?"
	}
}

func (c Const) Equal(other Const) bool {
	if c.Kind != other.Kind {
		return false
	}
	switch c.Kind {
	case ConstNil:
		return true
	case ConstBool, ConstInt:
		return c.I == other.I
	case ConstFloat:
		return c.F == other.F
	case ConstString:
		return c.S == other.S
	default:
		return false
	}
}

// UpvalueDesc mirrors ast.UpvalueDesc (the compiler copies it across
// rather than importing internal/ast into the VM-facing side of this
// package's public surface): either a parent stack slot or a parent
// upvalue index, by name for disassembly.
type UpvalueDesc struct {
	Name            string
	FromParentLocal bool
	Index           int
}

// Proto is the immutable compile-time image of a function: its bytecode,
// constant pool, nested prototypes, and upvalue descriptors (spec.md
// §3). No package in this repository instantiates a closure from it.
type Proto struct {
	Name     string
	Source   string
	Line     int
	NumParams int
	IsVararg bool
	MaxStack int

	Code  []Instruction
	Lines []int // one source line per instruction, parallel to Code

	Consts   []Const
	Protos   []*Proto
	Upvalues []UpvalueDesc
}
