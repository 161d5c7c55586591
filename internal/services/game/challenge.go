package game

import (
	"context"
	"sync"
	"time"

	"github.com/hmngo/wordchain/internal/dependencies/clock"
	"github.com/hmngo/wordchain/internal/model"
)

// Presence reports whether a player currently holds a live connection.
// The connection registry satisfies this.
type Presence interface {
	Online(name string) bool
}

// Challenge is a pending match proposal from Challenger to Opponent.
type Challenge struct {
	Challenger string
	Opponent   string
	IssuedAt   time.Time
}

// Broker tracks pending challenges between the proposal and the
// opponent's answer. Challenges are directional: A challenging B and B
// challenging A are distinct entries.
type Broker struct {
	mu       sync.Mutex
	pending  map[string]*Challenge
	presence Presence
	store    *Store
	clock    clock.Clock
}

// NewBroker creates a challenge broker backed by the given presence
// source and session store.
func NewBroker(presence Presence, store *Store, clock clock.Clock) *Broker {
	return &Broker{
		pending:  make(map[string]*Challenge),
		presence: presence,
		store:    store,
		clock:    clock,
	}
}

func pairKey(challenger, opponent string) string {
	return challenger + "\x00" + opponent
}

// Propose registers a challenge from challenger to opponent. It fails
// when the opponent is offline, either player is already in a session,
// or the same challenge is already pending.
func (b *Broker) Propose(ctx context.Context, challenger, opponent string) (*Challenge, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if challenger == opponent {
		return nil, model.ErrChallengeSelf
	}
	if !b.presence.Online(opponent) {
		return nil, model.ErrPlayerOffline
	}
	if _, busy := b.store.FindByParticipant(challenger); busy {
		return nil, model.ErrAlreadyInSession
	}
	if _, busy := b.store.FindByParticipant(opponent); busy {
		return nil, model.ErrAlreadyInSession
	}

	key := pairKey(challenger, opponent)
	if _, exists := b.pending[key]; exists {
		return nil, model.ErrChallengePending
	}

	ch := &Challenge{
		Challenger: challenger,
		Opponent:   opponent,
		IssuedAt:   b.clock.Now(),
	}
	b.pending[key] = ch
	return ch, nil
}

// Respond consumes the pending challenge from challenger to opponent.
// The entry is removed whether the answer is accept or decline; a second
// response finds nothing.
func (b *Broker) Respond(ctx context.Context, challenger, opponent string) (*Challenge, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := pairKey(challenger, opponent)
	ch, ok := b.pending[key]
	if !ok {
		return nil, model.ErrChallengeNotFound
	}
	delete(b.pending, key)
	return ch, nil
}

// Cancel withdraws a challenge the challenger previously proposed.
func (b *Broker) Cancel(ctx context.Context, challenger, opponent string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := pairKey(challenger, opponent)
	if _, ok := b.pending[key]; !ok {
		return model.ErrChallengeNotFound
	}
	delete(b.pending, key)
	return nil
}

// DropFor discards every pending challenge the named player appears in,
// as challenger or opponent. Called when a player disconnects.
func (b *Broker) DropFor(name string) []*Challenge {
	b.mu.Lock()
	defer b.mu.Unlock()

	var dropped []*Challenge
	for key, ch := range b.pending {
		if ch.Challenger == name || ch.Opponent == name {
			dropped = append(dropped, ch)
			delete(b.pending, key)
		}
	}
	return dropped
}

// PendingCount reports the number of unanswered challenges.
func (b *Broker) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
