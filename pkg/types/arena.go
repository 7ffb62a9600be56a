package types

import "sync/atomic"

// Arena is the memory_resource every heap-owning Value is allocated
// through. Go's garbage collector means an Arena does not actually
// own raw bytes the way the original memory_resource tree does; it
// exists to (a) preserve the ownership discipline at the API level —
// a Value's heap payload is produced by exactly one Arena and Clone
// must name the arena it copies into — and (b) account allocations
// per subtree, reported by Bytes; no package limits memory on that
// count.
type Arena struct {
	parent *Arena
	name   string
	bytes  int64
}

// NewArena creates a root arena with no parent.
func NewArena(name string) *Arena {
	return &Arena{name: name}
}

// Child creates a sub-arena whose allocations also count against every
// ancestor's Bytes().
func (a *Arena) Child(name string) *Arena {
	return &Arena{parent: a, name: name}
}

// Name returns the arena's label, for diagnostics.
func (a *Arena) Name() string {
	return a.name
}

// account records n bytes as allocated by a, propagating to ancestors.
func (a *Arena) account(n int64) {
	for cur := a; cur != nil; cur = cur.parent {
		atomic.AddInt64(&cur.bytes, n)
	}
}

// Bytes returns the total bytes accounted to this arena and its children.
func (a *Arena) Bytes() int64 {
	return atomic.LoadInt64(&a.bytes)
}

// NewString "allocates" s from the arena: it accounts the string's
// bytes and returns an independent copy, so the caller may safely drop
// any buffer the bytes came from.
func (a *Arena) NewString(s string) string {
	cp := string(append([]byte(nil), s...))
	a.account(int64(len(cp)))
	return cp
}

// NewValues allocates a slice of n Values from the arena.
func (a *Arena) NewValues(n int) []Value {
	a.account(int64(n) * valueInlineSize)
	return make([]Value, n)
}

const valueInlineSize = 32 // approximate inline payload size, for accounting only
