package gc

// Color is a tri-color mark-sweep object's collection state (spec.md
// §4.4). "White" alternates between two colors across full cycles so
// that an object marked-but-not-yet-swept in the previous cycle isn't
// mistaken for reachable garbage in the next one.
type Color uint8

const (
	White0 Color = iota
	White1
	Gray
	Black
)

// ObjKind tags the concrete heap object type behind a heapObject value,
// mirroring Value's Kind but only over the heap-allocated cases.
type ObjKind uint8

const (
	ObjString ObjKind = iota
	ObjTable
	ObjClosure
	ObjUpvalue
	ObjUserdata
	ObjHostFunction
)

// objHeader is embedded as the first field of every heap object: the
// GC's view of an object, independent of its concrete shape (spec.md §3,
// "Heap object header: kind tag, GC color, next-object intrusive link,
// optional metatable pointer").
type objHeader struct {
	kind  ObjKind
	color Color
	next  heapObject // intrusive link in Heap's all-objects list
	meta  *Table
}

// heapObject is implemented by every concrete heap type. A bare
// interface value (rather than a header pointer) is what lets Value
// remain a comparable struct usable as a Go map key (see value.go):
// comparing two heapObject values compares their dynamic pointers, which
// is exactly the identity-equality spec.md §3 wants for heap values.
type heapObject interface {
	objHeader() *objHeader
}

// String is an immutable, interned string with a precomputed hash
// (spec.md §3: "immutable, precomputed hash, interning required for
// identifier-derived keys").
type String struct {
	header objHeader
	Value  string
	Hash   uint64
}

func (s *String) objHeader() *objHeader { return &s.header }

// Upvalue is a variable captured by one or more closures: open while it
// points at a live stack slot, closed once the frame that owned that
// slot returns. Grounded directly on `other_examples` nooga-paserati's
// pkg/value/value.go Upvalue type (Location/Closed split, Close method).
type Upvalue struct {
	header   objHeader
	Location *Value // non-nil while open: points into the value stack
	Closed   Value  // valid once Location is nil
}

func (u *Upvalue) objHeader() *objHeader { return &u.header }

// Get returns the upvalue's current value, open or closed.
func (u *Upvalue) Get() Value {
	if u.Location != nil {
		return *u.Location
	}
	return u.Closed
}

// Set writes through to the stack slot if open, or to Closed once closed.
func (u *Upvalue) Set(v Value) {
	if u.Location != nil {
		*u.Location = v
		return
	}
	u.Closed = v
}

// Close copies the current value out of the stack and detaches Location,
// per spec.md §3's invariant that a closed upvalue never reopens.
func (u *Upvalue) Close() {
	if u.Location == nil {
		return
	}
	u.Closed = *u.Location
	u.Location = nil
}

// Closure pairs a function prototype with the upvalue cells it captured.
// Proto is an interface{} holding a *bytecode.Proto; no package in this
// repository type-asserts it back (see the package doc comment).
type Closure struct {
	header   objHeader
	Proto    interface{}
	Upvalues []*Upvalue
}

func (c *Closure) objHeader() *objHeader { return &c.header }

// HostFunc is a function implemented in Go and exposed to scripts,
// invoked through the host embedding API (spec.md §4.5). It takes the
// state handle so it can push/pop further values itself (e.g. pcall).
type HostFunc func(state interface{}, args []Value) ([]Value, error)

// HostFunctionObj wraps a HostFunc as a heap object so HostFunction
// values stay uniform with every other callable (spec.md describes
// HostFunction as a "bare fn ptr, no env"; wrapping it in a one-field
// heap object costs one allocation but keeps Value's {kind,n,obj} shape
// and map-key comparability instead of special-casing a fourth payload
// kind that can't be compared or GC-traced the same way).
type HostFunctionObj struct {
	header objHeader
	Name   string
	Fn     HostFunc
}

func (h *HostFunctionObj) objHeader() *objHeader { return &h.header }

// Userdata wraps host-owned data with a caller-supplied 32-bit type tag
// (spec.md §4.5). Finalizer is captured from the metatable's __gc entry
// at the moment SetMetatable runs, per spec.md §4.3 ("the metatable it
// carried at the moment it was set") — not looked up lazily at collection
// time, since the metatable could have been swapped out since.
type Userdata struct {
	header    objHeader
	TypeTag   uint32
	Data      interface{}
	Finalizer Value // callable, or Nil if none
}

func (u *Userdata) objHeader() *objHeader { return &u.header }
