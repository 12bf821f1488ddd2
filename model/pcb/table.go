package pcb

// Table is the authoritative record of every worker's scheduling state. Its
// size is fixed at creation and entries are never destroyed during a run.
type Table struct {
	entries []*Entry
}

// NewTable creates a table with one ready entry per handle, indexed 0..N-1.
func NewTable(handles []Handle) *Table {
	entries := make([]*Entry, len(handles))
	for i, handle := range handles {
		entries[i] = NewEntry(i, handle)
	}
	return &Table{entries: entries}
}

// Entry returns the entry for a worker id, or nil when out of range.
func (t *Table) Entry(id int) *Entry {
	if id < 0 || id >= len(t.entries) {
		return nil
	}
	return t.entries[id]
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Snapshot returns a copy of every entry, safe for concurrent inspection.
func (t *Table) Snapshot() []Entry {
	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Snapshot()
	}
	return out
}
