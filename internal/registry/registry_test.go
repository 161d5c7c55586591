package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmngo/wordchain/internal/model"
	"github.com/hmngo/wordchain/internal/protocol"
)

type fakeConn struct {
	sent   []*protocol.Message
	closed bool
}

func (c *fakeConn) Send(msg *protocol.Message) error {
	c.sent = append(c.sent, msg)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func TestRegisterAndLookup(t *testing.T) {
	r := New(4)
	conn := &fakeConn{}

	require.NoError(t, r.Register("alice", conn))

	got, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Same(t, conn, got.(*fakeConn))
	assert.Equal(t, 1, r.Count())
}

func TestRegisterDuplicateName(t *testing.T) {
	r := New(4)
	require.NoError(t, r.Register("alice", &fakeConn{}))

	err := r.Register("alice", &fakeConn{})
	assert.ErrorIs(t, err, model.ErrAlreadyConnected)
}

func TestRegisterFull(t *testing.T) {
	r := New(2)
	require.NoError(t, r.Register("alice", &fakeConn{}))
	require.NoError(t, r.Register("bob", &fakeConn{}))

	err := r.Register("carol", &fakeConn{})
	assert.ErrorIs(t, err, model.ErrRegistryFull)

	// A freed slot is reusable
	r.Unregister("alice")
	assert.NoError(t, r.Register("carol", &fakeConn{}))
}

func TestUnregisterUnknownIsNoop(t *testing.T) {
	r := New(2)
	r.Unregister("ghost")
	assert.Equal(t, 0, r.Count())
}

func TestNameForConn(t *testing.T) {
	r := New(4)
	alice := &fakeConn{}
	bob := &fakeConn{}
	require.NoError(t, r.Register("alice", alice))
	require.NoError(t, r.Register("bob", bob))

	name, ok := r.NameForConn(bob)
	require.True(t, ok)
	assert.Equal(t, "bob", name)

	_, ok = r.NameForConn(&fakeConn{})
	assert.False(t, ok)
}
