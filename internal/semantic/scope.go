package semantic

import "github.com/behl-lang/behl-go/internal/ast"

// localInfo is what a block scope remembers about one declared name: the
// slot it was assigned and whether it was declared `const`.
type localInfo struct {
	slot    int
	isConst bool
}

// blockScope is one `{ ... }` nesting level's name table, chained to its
// enclosing block within the same function. It never crosses a function
// boundary; resolveUpvalue is what walks from one function to its parent.
type blockScope struct {
	parent *blockScope
	names  map[string]localInfo
}

// funcScope tracks the state scope resolution needs for one function body
// (or, for the outermost scope, the top-level chunk, treated as an
// implicit function per the Open Question resolution in DESIGN.md: this
// is why `return` is never rejected at top level — there is no non-
// function context for it to be "outside" of).
type funcScope struct {
	parent    *funcScope
	block     *blockScope
	nextSlot  int
	loopDepth int
	isVararg  bool

	upvalues     []ast.UpvalueDesc
	upvalueIndex map[string]int
	upvalueConst map[string]bool
}

func newFuncScope(parent *funcScope, isVararg bool) *funcScope {
	fs := &funcScope{
		parent:       parent,
		isVararg:     isVararg,
		upvalueIndex: map[string]int{},
		upvalueConst: map[string]bool{},
	}
	fs.pushBlock()
	return fs
}

func (fs *funcScope) pushBlock() {
	fs.block = &blockScope{parent: fs.block, names: map[string]localInfo{}}
}

func (fs *funcScope) popBlock() {
	fs.block = fs.block.parent
}

// declareLocal assigns name the next sticky slot in this function (slots
// are never reused across sibling blocks at this layer; the bytecode
// compiler's register allocator, a separate pass, is free to do its own
// liveness-based reuse on top of these indices).
func (fs *funcScope) declareLocal(name string, isConst bool) int {
	slot := fs.nextSlot
	fs.nextSlot++
	fs.block.names[name] = localInfo{slot: slot, isConst: isConst}
	return slot
}

// lookupLocal searches this function's block chain only, innermost first.
func (fs *funcScope) lookupLocal(name string) (localInfo, bool) {
	for b := fs.block; b != nil; b = b.parent {
		if li, ok := b.names[name]; ok {
			return li, true
		}
	}
	return localInfo{}, false
}

// resolveUpvalue finds name in an enclosing function of fs, creating (and
// chaining) an upvalue descriptor through every intervening function
// scope along the way, per spec.md §4.1: "a descriptor is created or
// reused in every intervening function frame... up to the defining
// function". ok is false when name is not a local in any enclosing
// function, in which case the caller treats it as global.
func resolveUpvalue(fs *funcScope, name string) (index int, isConst bool, ok bool) {
	if fs.parent == nil {
		return 0, false, false
	}
	if idx, already := fs.upvalueIndex[name]; already {
		return idx, fs.upvalueConst[name], true
	}

	if li, found := fs.parent.lookupLocal(name); found {
		idx := len(fs.upvalues)
		fs.upvalues = append(fs.upvalues, ast.UpvalueDesc{Name: name, FromParentLocal: true, Index: li.slot})
		fs.upvalueIndex[name] = idx
		fs.upvalueConst[name] = li.isConst
		return idx, li.isConst, true
	}

	parentIdx, parentConst, found := resolveUpvalue(fs.parent, name)
	if !found {
		return 0, false, false
	}
	idx := len(fs.upvalues)
	fs.upvalues = append(fs.upvalues, ast.UpvalueDesc{Name: name, FromParentLocal: false, Index: parentIdx})
	fs.upvalueIndex[name] = idx
	fs.upvalueConst[name] = parentConst
	return idx, parentConst, true
}
