package gc

// phase is the collector's current activity, driving what Step does.
type phase uint8

const (
	phaseIdle phase = iota
	phaseMarking
	phaseSweeping
)

// Heap owns every behl heap object and runs the tri-color incremental
// mark-sweep collector over them (spec.md §4.4). It is not the memory
// allocator of last resort — concrete objects are ordinary Go values and
// the Go runtime reclaims their storage once nothing reaches them — what
// Heap actually provides is the collection *algorithm* spec.md specifies
// (color bookkeeping, the write barrier, incremental step budgets,
// pause/resume, and finalization ordering), tracked through an intrusive
// list exactly as spec.md §3 describes ("every live heap object in the
// global object list exactly once"). Objects this collector determines
// are unreachable are simply dropped from that list; from that point Go's
// own GC is free to reclaim them whenever it likes. This keeps the
// implementation in ordinary, unsafe-free Go rather than hand-rolling a
// bump allocator, while still honoring every observable contract spec.md
// §4.4 describes (mark/sweep ordering, write barrier, GCPauseGuard,
// finalize-at-most-once, tolerated-but-not-re-finalized resurrection).
type Heap struct {
	objects      heapObject // head of the intrusive all-objects list
	currentWhite Color

	phase phase
	gray  []heapObject

	sweepList    []heapObject
	sweepIdx     int
	sweepWhite   Color
	sweepSurvive []heapObject

	pauseDepth int

	strings map[string]*String

	finalizeQueue []*Userdata

	bytesAllocated int64
	stepDebt       int64
}

// NewHeap creates an empty heap. White0 is the initial "current white":
// the very first allocations before any collection cycle are trivially
// considered live roots until StartCycle actually runs.
func NewHeap() *Heap {
	return &Heap{currentWhite: White0, strings: make(map[string]*String)}
}

func (h *Heap) otherWhite() Color {
	if h.currentWhite == White0 {
		return White1
	}
	return White0
}

func (h *Heap) link(o heapObject) {
	switch o.(type) {
	case *String:
		o.objHeader().kind = ObjString
	case *Table:
		o.objHeader().kind = ObjTable
	case *Closure:
		o.objHeader().kind = ObjClosure
	case *Upvalue:
		o.objHeader().kind = ObjUpvalue
	case *Userdata:
		o.objHeader().kind = ObjUserdata
	case *HostFunctionObj:
		o.objHeader().kind = ObjHostFunction
	}
	o.objHeader().color = h.currentWhite
	o.objHeader().next = h.objects
	h.objects = o
}

// --- allocation ---

// InternString returns the canonical *String for s, allocating it on
// first use (spec.md §3: "interning required for identifier-derived
// keys"). Every call with the same Go string returns the same object, so
// identity comparison (used by Value.Equal for heap values) is correct
// for interned strings.
func (h *Heap) InternString(s string) *String {
	if existing, ok := h.strings[s]; ok {
		return existing
	}
	str := &String{Value: s, Hash: hashString(s)}
	h.link(str)
	h.strings[s] = str
	return str
}

// NewString returns a Value wrapping s's interned string object.
func (h *Heap) NewString(s string) Value {
	return objValue(KindString, h.InternString(s))
}

func hashString(s string) uint64 {
	// FNV-1a, matching the hash spec.md §3 only requires be "precomputed",
	// not any specific algorithm.
	var hash uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		hash ^= uint64(s[i])
		hash *= 1099511628211
	}
	return hash
}

// NewTable allocates an empty table, with optional capacity hints for its
// array and hash parts (spec.md §4.2's NEWTABLE instruction carries both).
func (h *Heap) NewTable(arrayHint, hashHint int) Value {
	t := newTable(arrayHint, hashHint)
	h.link(t)
	return objValue(KindTable, t)
}

// NewClosure allocates a closure over proto (a *bytecode.Proto, held as
// interface{} — see the package doc comment) with the given upvalue
// cells, already resolved by the VM at CLOSURE execution time.
func (h *Heap) NewClosure(proto interface{}, upvalues []*Upvalue) Value {
	c := &Closure{Proto: proto, Upvalues: upvalues}
	h.link(c)
	return objValue(KindClosure, c)
}

// NewUpvalue allocates an open upvalue pointing at a live stack slot.
func (h *Heap) NewUpvalue(slot *Value) *Upvalue {
	u := &Upvalue{Location: slot}
	h.link(u)
	return u
}

// NewHostFunction wraps a Go function as a callable Value.
func (h *Heap) NewHostFunction(name string, fn HostFunc) Value {
	hf := &HostFunctionObj{Name: name, Fn: fn}
	h.link(hf)
	return objValue(KindHostFunction, hf)
}

// NewUserdata allocates a userdata value carrying a host type tag.
func (h *Heap) NewUserdata(typeTag uint32, data interface{}) Value {
	u := &Userdata{TypeTag: typeTag, Data: data}
	h.link(u)
	return objValue(KindUserdata, u)
}

// --- metatables & write barrier ---

var gcMetaName = "__gc"

// SetMetatable installs mt on obj and, for userdata, captures mt's __gc
// entry as the finalizer *at this moment* (spec.md §4.3: "the metatable
// it carried at the moment it was set"), not re-resolved later.
func (h *Heap) SetMetatable(obj heapObject, mt *Table) {
	obj.objHeader().meta = mt
	if mt != nil {
		h.writeBarrier(obj, mt)
	}
	if ud, ok := obj.(*Userdata); ok {
		ud.Finalizer = Nil
		if mt != nil {
			if fn := mt.Get(h.NewString(gcMetaName)); fn.IsCallable() {
				ud.Finalizer = fn
			}
		}
	}
}

// WriteBarrierValue is the barrier VM opcodes call on every write that
// can create a black-to-white reference: SETTABLE, closure construction
// over captured upvalues, and upvalue closing (spec.md §4.4).
func (h *Heap) WriteBarrierValue(parent heapObject, child Value) {
	if child.obj == nil {
		return
	}
	h.writeBarrier(parent, child.obj)
}

func (h *Heap) writeBarrier(parent, child heapObject) {
	if parent == nil || h.phase != phaseMarking {
		return
	}
	ph := parent.objHeader()
	if ph.color != Black {
		return
	}
	// Forward barrier: advance the new target to gray immediately rather
	// than reverting the source to gray, so an already-processed black
	// object never needs revisiting this cycle.
	h.markObject(child)
}

// --- collection ---

// StartCycle begins a new mark phase, flipping the white color and
// marking every root reachable right now. roots is provided fresh on
// every call since the value stack and frame set change on every VM
// step; nothing here persists a stale root set across cycles.
func (h *Heap) StartCycle(roots []Value) {
	if h.pauseDepth > 0 || h.phase != phaseIdle {
		return
	}
	h.currentWhite = h.otherWhite()
	h.gray = h.gray[:0]
	h.phase = phaseMarking
	for _, v := range roots {
		h.markValue(v)
	}
}

func (h *Heap) markValue(v Value) {
	if v.obj != nil {
		h.markObject(v.obj)
	}
}

func (h *Heap) markObject(o heapObject) {
	hdr := o.objHeader()
	if hdr.color == Gray || hdr.color == Black {
		return
	}
	hdr.color = Gray
	h.gray = append(h.gray, o)
}

// Step performs up to budget units of incremental work (one unit per
// object blackened or swept) and returns true once a full cycle has
// completed (gray queue drained and every object swept). Collect below
// just calls Step in a loop; a host embedder wanting genuinely incremental
// pauses calls Step directly from its instruction-count hook.
func (h *Heap) Step(budget int) bool {
	if h.pauseDepth > 0 {
		return false
	}
	switch h.phase {
	case phaseIdle:
		return true
	case phaseMarking:
		for budget > 0 && len(h.gray) > 0 {
			o := h.gray[len(h.gray)-1]
			h.gray = h.gray[:len(h.gray)-1]
			h.blacken(o)
			budget--
		}
		if len(h.gray) == 0 {
			h.beginSweep()
		}
		return false
	case phaseSweeping:
		for budget > 0 && h.sweepIdx < len(h.sweepList) {
			h.sweepOne(h.sweepList[h.sweepIdx])
			h.sweepIdx++
			budget--
		}
		if h.sweepIdx >= len(h.sweepList) {
			h.finishSweep()
			return true
		}
		return false
	default:
		return true
	}
}

// Collect runs a full cycle to completion synchronously (spec.md §4.4's
// gc_collect, as opposed to gc_step's bounded increments).
func (h *Heap) Collect(roots []Value) {
	if h.pauseDepth > 0 {
		return
	}
	h.StartCycle(roots)
	for !h.Step(1 << 30) {
	}
}

func (h *Heap) beginSweep() {
	h.phase = phaseSweeping
	h.sweepWhite = h.otherWhite()
	h.sweepList = h.sweepList[:0]
	for o := h.objects; o != nil; o = o.objHeader().next {
		h.sweepList = append(h.sweepList, o)
	}
	h.sweepIdx = 0
	h.sweepSurvive = h.sweepSurvive[:0]
}

func (h *Heap) sweepOne(o heapObject) {
	hdr := o.objHeader()
	if hdr.color != h.sweepWhite {
		hdr.color = h.currentWhite
		h.sweepSurvive = append(h.sweepSurvive, o)
		return
	}

	if ud, ok := o.(*Userdata); ok && !ud.Finalizer.IsNil() {
		h.finalizeQueue = append(h.finalizeQueue, ud)
		return
	}

	if str, ok := o.(*String); ok {
		delete(h.strings, str.Value)
	}
	// otherwise: o drops out of h.objects entirely; Go's own GC reclaims
	// it once nothing else references it.
}

func (h *Heap) finishSweep() {
	var head heapObject
	for i := len(h.sweepSurvive) - 1; i >= 0; i-- {
		o := h.sweepSurvive[i]
		o.objHeader().next = head
		head = o
	}
	h.objects = head
	h.phase = phaseIdle
}

func (h *Heap) blacken(o heapObject) {
	hdr := o.objHeader()
	if hdr.meta != nil {
		h.markObject(hdr.meta)
	}
	switch v := o.(type) {
	case *String:
		// no further children
	case *Table:
		for _, elem := range v.array {
			h.markValue(elem)
		}
		for k, val := range v.hash {
			h.markValue(k)
			h.markValue(val)
		}
	case *Closure:
		for _, uv := range v.Upvalues {
			h.markObject(uv)
		}
	case *Upvalue:
		h.markValue(v.Get())
	case *Userdata:
		h.markValue(v.Finalizer)
	case *HostFunctionObj:
		// no further children
	}
	hdr.color = Black
}

// --- pause guard ---

// PauseGuard suspends collection for the lifetime of a region that
// mutates heap-reachable state outside the write barrier's discipline —
// spec.md §4.4 calls out exactly one such region, the code-loading
// pipeline building AST/prototypes/closures before any root references
// them. Release (or a second call to it) is a no-op once already
// released, so `defer guard.Release()` is always safe.
type PauseGuard struct {
	heap     *Heap
	released bool
}

func (h *Heap) PauseGC() *PauseGuard {
	h.pauseDepth++
	return &PauseGuard{heap: h}
}

func (g *PauseGuard) Release() {
	if g.released {
		return
	}
	g.released = true
	g.heap.pauseDepth--
}

// --- finalization ---

// DrainFinalizers returns every userdata moved to the finalization queue
// since the last drain and clears the queue. It does not call any
// Finalizer, and no package in this repository does; this layer only
// guarantees each finalizable userdata is queued at most once
// per collection in which it dies.
func (h *Heap) DrainFinalizers() []*Userdata {
	if len(h.finalizeQueue) == 0 {
		return nil
	}
	out := h.finalizeQueue
	h.finalizeQueue = nil
	return out
}
