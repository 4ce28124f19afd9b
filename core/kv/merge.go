package kv

import "strings"

// Entry is one replacement block contributed by a source.
// Text is an owned copy, so the manifest it came from can be released.
type Entry struct {
	ID        string
	Text      string
	SourceTag string
	// Origin names the selection that contributed the entry, for reporting.
	Origin string
}

// Overwrite records an id written twice into the same MergeMap.
type Overwrite struct {
	ID       string
	Previous string
	Current  string
}

// MergeMap collects replacement entries by id in first-insertion order.
// A later Put for an existing id replaces the entry in place (last writer
// wins) and is recorded in Overwrites.
type MergeMap struct {
	order      []string
	entries    map[string]Entry
	overwrites []Overwrite
}

// NewMergeMap returns an empty MergeMap.
func NewMergeMap() *MergeMap {
	return &MergeMap{entries: make(map[string]Entry)}
}

// Put inserts or overwrites the entry for e.ID.
func (m *MergeMap) Put(e Entry) {
	if prev, ok := m.entries[e.ID]; ok {
		m.overwrites = append(m.overwrites, Overwrite{ID: e.ID, Previous: prev.SourceTag, Current: e.SourceTag})
	} else {
		m.order = append(m.order, e.ID)
	}
	m.entries[e.ID] = e
}

// Get returns the entry for id.
func (m *MergeMap) Get(id string) (Entry, bool) {
	if m == nil {
		return Entry{}, false
	}
	e, ok := m.entries[id]
	return e, ok
}

// Len returns the number of distinct ids.
func (m *MergeMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// IDs returns the ids in insertion order.
func (m *MergeMap) IDs() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.order...)
}

// Entries returns the entries in insertion order.
func (m *MergeMap) Entries() []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.entries[id])
	}
	return out
}

// Overwrites returns every id that was written more than once.
func (m *MergeMap) Overwrites() []Overwrite {
	if m == nil {
		return nil
	}
	return append([]Overwrite(nil), m.overwrites...)
}

// Collect scans a source manifest once and keeps the blocks whose id is in
// ids. A nil or empty ids keeps every numeric block. Duplicate ids inside one
// manifest resolve to the last occurrence.
func Collect(sourceTag string, ids []string, indexText string) *MergeMap {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	mm := NewMergeMap()
	for _, b := range ExtractAll(indexText) {
		if len(want) > 0 {
			if _, ok := want[b.ID]; !ok {
				continue
			}
		}
		mm.Put(Entry{
			ID:        b.ID,
			Text:      strings.Clone(b.Text(indexText)),
			SourceTag: sourceTag,
		})
	}
	return mm
}

// Merge writes incoming's entries into existing, overwriting shared ids, and
// returns existing. A nil existing starts a new map.
func Merge(existing, incoming *MergeMap) *MergeMap {
	if existing == nil {
		existing = NewMergeMap()
	}
	for _, e := range incoming.Entries() {
		existing.Put(e)
	}
	return existing
}
