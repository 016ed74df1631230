package seqtag

import "strings"

// SymTab is an append-only interner mapping symbol strings to dense ids.
// Ids are assigned in first-seen order and never reused, so id order is
// stable across a save/load round trip.
type SymTab struct {
	ids  map[string]int
	strs []string
}

// NewSymTab returns an empty symbol table.
func NewSymTab() *SymTab {
	return &SymTab{ids: make(map[string]int)}
}

// Intern returns the id for s, assigning the next free id on first sight.
// The stored symbol is cloned, never a slice of the caller's input.
func (t *SymTab) Intern(s string) int {
	if id, ok := t.ids[s]; ok {
		return id
	}
	s = strings.Clone(s)
	id := len(t.strs)
	t.ids[s] = id
	t.strs = append(t.strs, s)
	return id
}

// Lookup returns the id for s without interning it.
func (t *SymTab) Lookup(s string) (int, bool) {
	id, ok := t.ids[s]
	return id, ok
}

// String resolves an id back to its symbol.
func (t *SymTab) String(id int) (string, bool) {
	if id < 0 || id >= len(t.strs) {
		return "", false
	}
	return t.strs[id], true
}

// Symbols returns a copy of the symbol list in id order.
func (t *SymTab) Symbols() []string {
	out := make([]string, len(t.strs))
	copy(out, t.strs)
	return out
}

// Len returns the number of interned symbols.
func (t *SymTab) Len() int {
	return len(t.strs)
}
