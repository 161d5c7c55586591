package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmngo/wordchain/internal/dependencies/mocks"
	"github.com/hmngo/wordchain/internal/model"
)

type fakePresence map[string]bool

func (p fakePresence) Online(name string) bool { return p[name] }

func newTestBroker(presence fakePresence) (*Broker, *Store) {
	store := NewStore(2)
	clk := mocks.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	return NewBroker(presence, store, clk), store
}

func TestBrokerProposeAndAccept(t *testing.T) {
	broker, _ := newTestBroker(fakePresence{"alice": true, "bob": true})
	ctx := context.Background()

	ch, err := broker.Propose(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, "alice", ch.Challenger)
	assert.Equal(t, 1, broker.PendingCount())

	got, err := broker.Respond(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, ch, got)
	assert.Equal(t, 0, broker.PendingCount())

	// The entry is consumed; a second response finds nothing
	_, err = broker.Respond(ctx, "alice", "bob")
	assert.ErrorIs(t, err, model.ErrChallengeNotFound)
}

func TestBrokerRejectsOfflineOpponent(t *testing.T) {
	broker, _ := newTestBroker(fakePresence{"alice": true})

	_, err := broker.Propose(context.Background(), "alice", "bob")
	assert.ErrorIs(t, err, model.ErrPlayerOffline)
}

func TestBrokerRejectsSelfChallenge(t *testing.T) {
	broker, _ := newTestBroker(fakePresence{"alice": true})

	_, err := broker.Propose(context.Background(), "alice", "alice")
	assert.ErrorIs(t, err, model.ErrChallengeSelf)
}

func TestBrokerRejectsBusyPlayers(t *testing.T) {
	broker, store := newTestBroker(fakePresence{"alice": true, "bob": true, "carol": true})
	ctx := context.Background()

	require.NoError(t, store.Allocate(&model.Session{
		ID: "GAME-X", Player1: "alice", Player2: "carol", Active: true,
	}))

	_, err := broker.Propose(ctx, "alice", "bob")
	assert.ErrorIs(t, err, model.ErrAlreadyInSession)

	_, err = broker.Propose(ctx, "bob", "alice")
	assert.ErrorIs(t, err, model.ErrAlreadyInSession)
}

func TestBrokerDuplicatePending(t *testing.T) {
	broker, _ := newTestBroker(fakePresence{"alice": true, "bob": true})
	ctx := context.Background()

	_, err := broker.Propose(ctx, "alice", "bob")
	require.NoError(t, err)

	_, err = broker.Propose(ctx, "alice", "bob")
	assert.ErrorIs(t, err, model.ErrChallengePending)

	// The reverse direction is a distinct challenge
	_, err = broker.Propose(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, broker.PendingCount())
}

func TestBrokerCancel(t *testing.T) {
	broker, _ := newTestBroker(fakePresence{"alice": true, "bob": true})
	ctx := context.Background()

	_, err := broker.Propose(ctx, "alice", "bob")
	require.NoError(t, err)

	require.NoError(t, broker.Cancel(ctx, "alice", "bob"))
	assert.Equal(t, 0, broker.PendingCount())

	assert.ErrorIs(t, broker.Cancel(ctx, "alice", "bob"), model.ErrChallengeNotFound)
}

func TestBrokerDropFor(t *testing.T) {
	broker, _ := newTestBroker(fakePresence{"alice": true, "bob": true, "carol": true})
	ctx := context.Background()

	_, err := broker.Propose(ctx, "alice", "bob")
	require.NoError(t, err)
	_, err = broker.Propose(ctx, "carol", "alice")
	require.NoError(t, err)
	_, err = broker.Propose(ctx, "carol", "bob")
	require.NoError(t, err)

	dropped := broker.DropFor("alice")
	assert.Len(t, dropped, 2)
	assert.Equal(t, 1, broker.PendingCount())
}
