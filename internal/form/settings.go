package form

// AutoSave tracks the per-field save machines of the settings screen. Each
// field change is submitted immediately and independently: two fields may be
// mid-save at once, and a failure on one field never blocks or rolls back
// edits to another. Within a single field the latest issued save wins;
// outcomes of superseded saves are dropped.
type AutoSave struct {
	fields map[string]*fieldState
}

type fieldState struct {
	seq      uint64 // latest issued save for this field
	inflight int    // saves not yet resolved, any sequence
	err      error  // outcome of the latest resolved non-superseded save
}

// NewAutoSave returns an empty tracker.
func NewAutoSave() *AutoSave {
	return &AutoSave{fields: make(map[string]*fieldState)}
}

// Begin registers a new save for field and returns its sequence number.
func (a *AutoSave) Begin(field string) uint64 {
	fs, ok := a.fields[field]
	if !ok {
		fs = &fieldState{}
		a.fields[field] = fs
	}
	fs.seq++
	fs.inflight++
	fs.err = nil
	return fs.seq
}

// Resolve records the outcome of the save identified by seq. The error is
// kept only if this save is still the latest issued for the field; a
// superseded outcome is dropped and Resolve returns false.
func (a *AutoSave) Resolve(field string, seq uint64, err error) bool {
	fs, ok := a.fields[field]
	if !ok {
		return false
	}
	if fs.inflight > 0 {
		fs.inflight--
	}
	if seq != fs.seq {
		return false
	}
	fs.err = err
	return true
}

// Saving reports whether field has any save in flight.
func (a *AutoSave) Saving(field string) bool {
	fs, ok := a.fields[field]
	return ok && fs.inflight > 0
}

// AnySaving reports whether any field has a save in flight.
func (a *AutoSave) AnySaving() bool {
	for _, fs := range a.fields {
		if fs.inflight > 0 {
			return true
		}
	}
	return false
}

// Err returns the last applied error for field, if any.
func (a *AutoSave) Err(field string) error {
	fs, ok := a.fields[field]
	if !ok {
		return nil
	}
	return fs.err
}
