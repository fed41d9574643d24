// Package store owns the canonical, insertion-ordered note collection. All
// other components read and mutate notes through its lock discipline: every
// mutating API operation is a single bounded critical section, and readers
// receive deep clones so they never observe a half-applied edit.
package store

import "sync"

// Memory is the single shared in-memory record store. Most-recent-first is
// the canonical order: Insert prepends.
type Memory struct {
	mu    sync.RWMutex
	notes []*Note
}

func NewMemory() *Memory {
	return &Memory{}
}

// Load replaces the collection with an initial set, preserving the given
// order. Used once at startup to populate from the seed file.
func (s *Memory) Load(notes []Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = make([]*Note, len(notes))
	for i := range notes {
		note := notes[i].Clone()
		s.notes[i] = &note
	}
}

// Insert prepends a note to the collection.
func (s *Memory) Insert(note Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append([]*Note{&note}, s.notes...)
}

// FindByID returns a clone of the note, or false when the id is unknown.
func (s *Memory) FindByID(id string) (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, note := range s.notes {
		if note.ID == id {
			return note.Clone(), true
		}
	}
	return Note{}, false
}

// View runs fn over the live collection under the read lock. fn must not
// mutate the notes or retain references past its return; callers that need
// a point-in-time snapshot clone explicitly.
func (s *Memory) View(fn func(notes []*Note)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.notes)
}

// All returns a cloned snapshot of the full collection in canonical order.
func (s *Memory) All() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Note, len(s.notes))
	for i, note := range s.notes {
		out[i] = note.Clone()
	}
	return out
}

// Update runs fn inside a store-wide exclusive section. Operations that
// scan then write across notes (action resolution, forwarding) use this so
// the scan and the mutation commit atomically. An error from fn aborts
// nothing retroactively; fn must apply its writes only once it cannot fail.
func (s *Memory) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx{store: s})
}

// Reset clears all state. Test and demo tooling only.
func (s *Memory) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = nil
}

// Len reports the number of notes.
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// Tx is the handle passed to Update callbacks. It exposes the live notes
// while the exclusive lock is held.
type Tx struct {
	store *Memory
}

// Notes returns the live collection in canonical order.
func (tx *Tx) Notes() []*Note {
	return tx.store.notes
}

// FindByID returns the live note for in-place mutation.
func (tx *Tx) FindByID(id string) (*Note, bool) {
	for _, note := range tx.store.notes {
		if note.ID == id {
			return note, true
		}
	}
	return nil, false
}

// Insert prepends a note within the current critical section.
func (tx *Tx) Insert(note Note) {
	tx.store.notes = append([]*Note{&note}, tx.store.notes...)
}
