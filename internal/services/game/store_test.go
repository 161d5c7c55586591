package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmngo/wordchain/internal/model"
)

func testSession(id, p1, p2 string) *model.Session {
	return &model.Session{ID: model.SessionID(id), Player1: p1, Player2: p2, Active: true}
}

func TestStoreAllocateAndFind(t *testing.T) {
	store := NewStore(2)

	sess := testSession("GAME-1", "alice", "bob")
	require.NoError(t, store.Allocate(sess))

	found, ok := store.Find("GAME-1")
	require.True(t, ok)
	assert.Equal(t, sess, found)

	_, ok = store.Find("GAME-2")
	assert.False(t, ok)
}

func TestStoreOneSessionPerPlayer(t *testing.T) {
	store := NewStore(4)

	require.NoError(t, store.Allocate(testSession("GAME-1", "alice", "bob")))

	err := store.Allocate(testSession("GAME-2", "alice", "carol"))
	assert.ErrorIs(t, err, model.ErrAlreadyInSession)

	err = store.Allocate(testSession("GAME-3", "dave", "bob"))
	assert.ErrorIs(t, err, model.ErrAlreadyInSession)

	assert.Equal(t, 1, store.ActiveCount())
}

func TestStoreCapacity(t *testing.T) {
	store := NewStore(1)

	require.NoError(t, store.Allocate(testSession("GAME-1", "alice", "bob")))

	err := store.Allocate(testSession("GAME-2", "carol", "dave"))
	assert.ErrorIs(t, err, model.ErrNoSessionSlots)

	store.Release("GAME-1")
	assert.Equal(t, 0, store.ActiveCount())
	require.NoError(t, store.Allocate(testSession("GAME-2", "carol", "dave")))
}

func TestStoreFindByPlayersIsUnordered(t *testing.T) {
	store := NewStore(2)
	sess := testSession("GAME-1", "alice", "bob")
	require.NoError(t, store.Allocate(sess))

	found, ok := store.FindByPlayers("bob", "alice")
	require.True(t, ok)
	assert.Equal(t, sess, found)

	_, ok = store.FindByPlayers("alice", "carol")
	assert.False(t, ok)
}

func TestStoreFindByParticipant(t *testing.T) {
	store := NewStore(2)
	require.NoError(t, store.Allocate(testSession("GAME-1", "alice", "bob")))

	found, ok := store.FindByParticipant("bob")
	require.True(t, ok)
	assert.Equal(t, model.SessionID("GAME-1"), found.ID)

	_, ok = store.FindByParticipant("carol")
	assert.False(t, ok)
}
