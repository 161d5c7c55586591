package game

import (
	"sync"

	"github.com/hmngo/wordchain/internal/model"
)

// Store is the fixed-capacity table of concurrent sessions. It exclusively
// owns the Session instances; slot indices never escape, sessions are
// addressed by id or participant name.
type Store struct {
	mu    sync.RWMutex
	slots []*model.Session
}

// NewStore creates a store with the given number of session slots.
func NewStore(capacity int) *Store {
	return &Store{
		slots: make([]*model.Session, capacity),
	}
}

// Allocate places a session into a free slot. It enforces, under its own
// lock, that neither participant already occupies an active slot, so the
// one-active-session-per-player invariant is atomic here.
func (st *Store) Allocate(sess *model.Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	free := -1
	for i, slot := range st.slots {
		if slot == nil || !slot.Active {
			if free == -1 {
				free = i
			}
			continue
		}
		if slot.IsParticipant(sess.Player1) || slot.IsParticipant(sess.Player2) {
			return model.ErrAlreadyInSession
		}
	}
	if free == -1 {
		return model.ErrNoSessionSlots
	}

	st.slots[free] = sess
	return nil
}

// Find returns the active session with the given id.
func (st *Store) Find(id model.SessionID) (*model.Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for _, slot := range st.slots {
		if slot != nil && slot.Active && slot.ID == id {
			return slot, true
		}
	}
	return nil, false
}

// FindByPlayers returns the active session for an unordered player pair.
// Used to de-duplicate concurrent accept races.
func (st *Store) FindByPlayers(p1, p2 string) (*model.Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for _, slot := range st.slots {
		if slot == nil || !slot.Active {
			continue
		}
		if (slot.Player1 == p1 && slot.Player2 == p2) ||
			(slot.Player1 == p2 && slot.Player2 == p1) {
			return slot, true
		}
	}
	return nil, false
}

// FindByParticipant returns the active session a player is in, if any.
func (st *Store) FindByParticipant(name string) (*model.Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for _, slot := range st.slots {
		if slot != nil && slot.Active && slot.IsParticipant(name) {
			return slot, true
		}
	}
	return nil, false
}

// Release deactivates and fully resets the slot holding the given
// session id. The Active flag is cleared here, under st.mu, so lookups
// never observe it mid-write.
func (st *Store) Release(id model.SessionID) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for i, slot := range st.slots {
		if slot != nil && slot.ID == id {
			slot.Active = false
			st.slots[i] = nil
			return
		}
	}
}

// ActiveCount returns the number of occupied slots.
func (st *Store) ActiveCount() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	n := 0
	for _, slot := range st.slots {
		if slot != nil && slot.Active {
			n++
		}
	}
	return n
}
