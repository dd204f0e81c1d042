package gc

import (
	"errors"
	"math"
)

// ErrInvalidKey is returned by Table.Set when the key is nil or NaN,
// neither of which spec.md §3 allows as a table key.
var ErrInvalidKey = errors.New("table key is nil or NaN")

// Table is behl's single aggregate data structure: a dense 0-based array
// part plus a hash part, with key equality following Value.Equal (so an
// int key and an equal-valued float key address the same slot). Hash-part
// iteration order is intentionally not fixed by the map itself — spec.md
// §3 says insertion order is not observable there — but `hashKeys` gives
// Next a stable enumeration sequence across repeated calls, since Go map
// iteration order is not guaranteed stable across separate range
// statements even without mutation, and the stateless `next`/`pairs`
// iterator protocol (spec.md §6 builtins) needs exactly that stability.
type Table struct {
	header   objHeader
	array    []Value
	hash     map[Value]Value
	hashKeys []Value
}

func (t *Table) objHeader() *objHeader { return &t.header }

func newTable(arrayHint, hashHint int) *Table {
	t := &Table{}
	if arrayHint > 0 {
		t.array = make([]Value, 0, arrayHint)
	}
	if hashHint > 0 {
		t.hash = make(map[Value]Value, hashHint)
	}
	return t
}

// normalizeKey canonicalizes a float key with no fractional part into an
// Int key, so `t[1] = v` and `t[1.0]` address the same slot (spec.md
// §3/§8's "numeric key identity" property).
func normalizeKey(key Value) Value {
	if key.kind == KindFloat {
		f := key.AsFloat()
		if !math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f) && f >= -9.2233720368547758e18 && f < 9.2233720368547758e18 {
			return Int(int64(f))
		}
	}
	return key
}

func isValidKey(key Value) bool {
	if key.kind == KindNil {
		return false
	}
	if key.kind == KindFloat && math.IsNaN(key.AsFloat()) {
		return false
	}
	return true
}

// Get reads key, returning Nil if absent. Does not consult a metatable's
// __index; no package in this repository performs that dispatch.
func (t *Table) Get(key Value) Value {
	key = normalizeKey(key)
	if key.kind == KindInt {
		idx := key.AsInt()
		if idx >= 0 && idx < int64(len(t.array)) {
			return t.array[idx]
		}
	}
	if t.hash == nil {
		return Nil
	}
	return t.hash[key]
}

// Set writes key=val, growing the array part when key is exactly its
// current length (append) and falling back to the hash part otherwise.
// Returns ErrInvalidKey for a nil or NaN key.
func (t *Table) Set(key, val Value) error {
	if !isValidKey(key) {
		return ErrInvalidKey
	}
	key = normalizeKey(key)

	if key.kind == KindInt {
		idx := key.AsInt()
		n := int64(len(t.array))
		switch {
		case idx >= 0 && idx < n:
			t.array[idx] = val
			return nil
		case idx == n && val.kind != KindNil:
			t.array = append(t.array, val)
			t.absorbFromHash()
			return nil
		}
	}

	if val.kind == KindNil {
		if t.hash != nil {
			if _, ok := t.hash[key]; ok {
				delete(t.hash, key)
				t.removeHashKey(key)
			}
		}
		return nil
	}

	if t.hash == nil {
		t.hash = make(map[Value]Value, 4)
	}
	if _, exists := t.hash[key]; !exists {
		t.hashKeys = append(t.hashKeys, key)
	}
	t.hash[key] = val
	return nil
}

// absorbFromHash pulls any hash-part entries that have become contiguous
// with the array part's new end (e.g. `t[5]=v` before `t[0..4]` existed,
// then the holes are filled in later) into the array part proper.
func (t *Table) absorbFromHash() {
	if t.hash == nil {
		return
	}
	for {
		next := Int(int64(len(t.array)))
		v, ok := t.hash[next]
		if !ok {
			return
		}
		t.array = append(t.array, v)
		delete(t.hash, next)
		t.removeHashKey(next)
	}
}

func (t *Table) removeHashKey(key Value) {
	for i, k := range t.hashKeys {
		if k == key {
			t.hashKeys = append(t.hashKeys[:i], t.hashKeys[i+1:]...)
			return
		}
	}
}

// Len implements `#t`: the array part's length. Per spec.md §8's
// boundary-behavior note, a hole inside the array part (a Nil written at
// an index below the current length) is a case where any index n with
// t[n]≠nil and t[n+1]==nil is an acceptable answer; this implementation
// picks the simplest of those — the array part's allocated length is
// never shrunk by writing Nil into the middle of it.
func (t *Table) Len() int64 { return int64(len(t.array)) }

// Next implements the stateless iterator protocol `pairs`/`ipairs`/`next`
// build on: given the previous key (Nil to start), returns the next
// key/value pair in Table's fixed enumeration order (array part, in
// index order, then the hash part in insertion order), or ok=false at
// the end.
func (t *Table) Next(key Value) (Value, Value, bool) {
	if key.kind == KindNil {
		if len(t.array) > 0 {
			return Int(0), t.array[0], true
		}
		return t.firstHashEntry()
	}

	key = normalizeKey(key)
	if key.kind == KindInt {
		idx := key.AsInt()
		if idx >= 0 && idx < int64(len(t.array)) {
			if next := idx + 1; next < int64(len(t.array)) {
				return Int(next), t.array[next], true
			}
			return t.firstHashEntry()
		}
	}

	for i, k := range t.hashKeys {
		if k == key {
			return t.hashEntryAt(i + 1)
		}
	}
	return Nil, Nil, false
}

func (t *Table) firstHashEntry() (Value, Value, bool) {
	return t.hashEntryAt(0)
}

func (t *Table) hashEntryAt(start int) (Value, Value, bool) {
	for i := start; i < len(t.hashKeys); i++ {
		k := t.hashKeys[i]
		if v, ok := t.hash[k]; ok {
			return k, v, true
		}
	}
	return Nil, Nil, false
}
