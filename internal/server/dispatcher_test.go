package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/hmngo/wordchain/internal/dependencies/mocks"
	"github.com/hmngo/wordchain/internal/protocol"
	"github.com/hmngo/wordchain/internal/registry"
	"github.com/hmngo/wordchain/internal/services/account"
	"github.com/hmngo/wordchain/internal/services/dictionary"
	"github.com/hmngo/wordchain/internal/services/game"
	"github.com/hmngo/wordchain/internal/services/history"
	"github.com/hmngo/wordchain/internal/storage/memory"
	"github.com/hmngo/wordchain/internal/testutil"
)

// testPeer is one simulated client: the server-side Client plus a reader
// goroutine draining the client side of the pipe.
type testPeer struct {
	cl     *Client
	frames chan *protocol.Message
}

func newTestPeer(t *testing.T) *testPeer {
	serverSide, clientSide := net.Pipe()
	peer := &testPeer{
		cl:     NewClient(serverSide),
		frames: make(chan *protocol.Message, 32),
	}
	go func() {
		for {
			msg, err := protocol.ReadFrame(clientSide)
			if err != nil {
				close(peer.frames)
				return
			}
			peer.frames <- msg
		}
	}()
	t.Cleanup(func() {
		serverSide.Close()
		clientSide.Close()
	})
	return peer
}

func (p *testPeer) next(t *testing.T) *protocol.Message {
	t.Helper()
	select {
	case msg, ok := <-p.frames:
		if !ok {
			t.Fatal("peer connection closed while waiting for a frame")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a frame")
		return nil
	}
}

type DispatcherSuite struct {
	suite.Suite
	ctx        context.Context
	storage    *memory.Storage
	registry   *registry.Registry
	accounts   *account.Service
	engine     *game.Engine
	broker     *game.Broker
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	dispatcher *Dispatcher
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = memory.New()
	s.registry = registry.New(8)
	s.clock = mocks.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()

	logger := testutil.NopLogger()
	s.accounts = account.New(s.storage, logger)
	archiver := history.New(s.storage, logger)

	dict := dictionary.New(s.storage, s.random)
	s.Require().NoError(dict.LoadWords([]string{"apple", "elephant", "tiger", "banana"}))

	store := game.NewStore(4)
	s.engine = game.NewEngine(store, dict, s.accounts, archiver, s.clock, s.random, logger, game.DefaultRules())
	s.broker = game.NewBroker(s.registry, store, s.clock)
	s.dispatcher = NewDispatcher(s.accounts, s.engine, s.broker, archiver, s.registry, logger)

	s.Require().NoError(s.accounts.Signup(s.ctx, "alice", "pw1"))
	s.Require().NoError(s.accounts.Signup(s.ctx, "bob", "pw2"))
}

func (s *DispatcherSuite) handle(peer *testPeer, t protocol.MessageType, payload string) {
	s.dispatcher.Handle(s.ctx, peer.cl, &protocol.Message{Type: t, Payload: payload})
}

// loggedIn creates a peer and logs it in as the named player.
func (s *DispatcherSuite) loggedIn(name, password string) *testPeer {
	peer := newTestPeer(s.T())
	s.handle(peer, protocol.LoginRequest, name+"|"+password)
	reply := peer.next(s.T())
	s.Require().Equal(protocol.StatusSuccess, reply.Status)
	return peer
}

func (s *DispatcherSuite) TestSignupAndLogin() {
	peer := newTestPeer(s.T())

	s.handle(peer, protocol.SignupRequest, "carol|pw3")
	reply := peer.next(s.T())
	s.Equal(protocol.StatusCreated, reply.Status)
	s.Equal("SIGNUP_SUCCESS", reply.Payload)

	s.handle(peer, protocol.LoginRequest, "carol|pw3")
	reply = peer.next(s.T())
	s.Equal(protocol.StatusSuccess, reply.Status)
	s.Equal("carol", peer.cl.Name())
	s.True(s.registry.Online("carol"))
}

func (s *DispatcherSuite) TestLoginBadPassword() {
	peer := newTestPeer(s.T())

	s.handle(peer, protocol.LoginRequest, "alice|wrong")
	reply := peer.next(s.T())
	s.Equal(protocol.StatusUnauthorized, reply.Status)
	s.Empty(peer.cl.Name())
}

func (s *DispatcherSuite) TestLoginNameCollision() {
	s.loggedIn("alice", "pw1")

	second := newTestPeer(s.T())
	s.handle(second, protocol.LoginRequest, "alice|pw1")
	reply := second.next(s.T())
	s.Equal(protocol.StatusBadRequest, reply.Status)

	// The first connection keeps the name
	s.True(s.registry.Online("alice"))
}

func (s *DispatcherSuite) TestLogoutFromAnotherConnection() {
	first := s.loggedIn("alice", "pw1")

	second := newTestPeer(s.T())
	s.handle(second, protocol.LogoutRequest, "alice|pw1")
	reply := second.next(s.T())
	s.Equal(protocol.StatusSuccess, reply.Status)

	// The original connection loses the name binding and can log in
	// again instead of being stranded.
	s.False(s.registry.Online("alice"))
	s.Empty(first.cl.Name())

	s.handle(first, protocol.LoginRequest, "alice|pw1")
	reply = first.next(s.T())
	s.Equal(protocol.StatusSuccess, reply.Status)
	s.Equal("alice", first.cl.Name())
}

func (s *DispatcherSuite) TestListOnlineUsers() {
	alice := s.loggedIn("alice", "pw1")
	s.loggedIn("bob", "pw2")

	s.handle(alice, protocol.ListUser, "")
	reply := alice.next(s.T())
	s.Equal(protocol.StatusSuccess, reply.Status)
	s.Contains(reply.Payload, "alice,0")
	s.Contains(reply.Payload, "bob,0")
}

func (s *DispatcherSuite) TestScoreLookup() {
	alice := s.loggedIn("alice", "pw1")

	s.handle(alice, protocol.GetScoreByUser, "bob")
	reply := alice.next(s.T())
	s.Equal(protocol.StatusSuccess, reply.Status)
	s.Equal("bob,0", reply.Payload)

	s.handle(alice, protocol.GetScoreByUser, "nobody")
	reply = alice.next(s.T())
	s.Equal(protocol.StatusNotFound, reply.Status)
}

func (s *DispatcherSuite) TestChallengeFlowToSession() {
	alice := s.loggedIn("alice", "pw1")
	bob := s.loggedIn("bob", "pw2")

	s.handle(alice, protocol.ChallengeRequest, "alice|bob")

	forwarded := bob.next(s.T())
	s.Equal(protocol.ChallengeRequest, forwarded.Type)
	s.Equal("alice|bob", forwarded.Payload)

	ack := alice.next(s.T())
	s.Equal(protocol.StatusAccepted, ack.Status)

	s.random.QueueString("CHAL000001")
	s.handle(bob, protocol.ChallengeResponse, "alice|bob|ACCEPT")

	aliceNotice := alice.next(s.T())
	s.Equal(protocol.GameStart, aliceNotice.Type)
	s.Equal(protocol.StatusCreated, aliceNotice.Status)
	s.Equal("GAME-CHAL000001||1", aliceNotice.Payload)

	bobNotice := bob.next(s.T())
	s.Equal(protocol.GameStart, bobNotice.Type)

	// And the responder's own acknowledgment
	bobAck := bob.next(s.T())
	s.Equal(protocol.ChallengeResponse, bobAck.Type)
}

func (s *DispatcherSuite) TestChallengeReject() {
	alice := s.loggedIn("alice", "pw1")
	bob := s.loggedIn("bob", "pw2")

	s.handle(alice, protocol.ChallengeRequest, "alice|bob")
	bob.next(s.T())
	alice.next(s.T())

	s.handle(bob, protocol.ChallengeResponse, "alice|bob|REJECT")

	rejection := alice.next(s.T())
	s.Equal(protocol.ChallengeResponse, rejection.Type)
	s.Equal(protocol.StatusForbidden, rejection.Status)

	ack := bob.next(s.T())
	s.Equal("CHALLENGE_REJECTED", ack.Payload)
	s.Equal(0, s.broker.PendingCount())
}

func (s *DispatcherSuite) TestChallengeCancel() {
	alice := s.loggedIn("alice", "pw1")
	bob := s.loggedIn("bob", "pw2")

	s.handle(alice, protocol.ChallengeRequest, "alice|bob")
	bob.next(s.T())
	alice.next(s.T())

	s.handle(alice, protocol.ChallengeCancel, "alice|bob")

	notice := bob.next(s.T())
	s.Equal(protocol.ChallengeCancel, notice.Type)

	ack := alice.next(s.T())
	s.Equal("CHALLENGE_CANCELLED", ack.Payload)
	s.Equal(0, s.broker.PendingCount())
}

// startMatch logs both players in and starts a session directly.
func (s *DispatcherSuite) startMatch() (alice, bob *testPeer, gameID string) {
	alice = s.loggedIn("alice", "pw1")
	bob = s.loggedIn("bob", "pw2")

	s.random.QueueString("MATCH00001")
	s.handle(alice, protocol.GameStart, "alice|bob")

	aliceNotice := alice.next(s.T())
	s.Require().Equal(protocol.GameStart, aliceNotice.Type)
	bob.next(s.T())

	return alice, bob, "GAME-MATCH00001"
}

func (s *DispatcherSuite) TestGuessBroadcastsUpdate() {
	alice, bob, gameID := s.startMatch()

	s.handle(alice, protocol.GameGuess, gameID+"|alice|apple")

	aliceUpdate := alice.next(s.T())
	s.Equal(protocol.GameUpdate, aliceUpdate.Type)
	s.Equal("OK|apple|2", aliceUpdate.Payload)

	bobUpdate := bob.next(s.T())
	s.Equal("OK|apple|2", bobUpdate.Payload)
}

func (s *DispatcherSuite) TestGuessRejectionGoesToSenderOnly() {
	alice, bob, gameID := s.startMatch()

	s.handle(bob, protocol.GameGuess, gameID+"|bob|apple")
	reply := bob.next(s.T())
	s.Equal(protocol.StatusForbidden, reply.Status)

	s.handle(alice, protocol.GameGuess, gameID+"|alice|zzzz")
	reply = alice.next(s.T())
	s.Equal(protocol.StatusBadRequest, reply.Status)

	select {
	case msg := <-bob.frames:
		s.Failf("unexpected frame", "bob received %s", msg.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func (s *DispatcherSuite) TestExplicitEndBroadcasts() {
	alice, bob, gameID := s.startMatch()

	s.handle(alice, protocol.GameEnd, gameID+"|bob")

	aliceNotice := alice.next(s.T())
	s.Equal(protocol.GameEnd, aliceNotice.Type)
	s.Equal("bob|1", aliceNotice.Payload)

	bobNotice := bob.next(s.T())
	s.Equal("bob|1", bobNotice.Payload)
}

func (s *DispatcherSuite) TestTargetAndTurnLookups() {
	alice, _, gameID := s.startMatch()

	s.handle(alice, protocol.GameGuess, gameID+"|alice|apple")
	alice.next(s.T())

	s.handle(alice, protocol.GameGetTarget, gameID)
	reply := alice.next(s.T())
	s.Equal("apple|2", reply.Payload)

	s.handle(alice, protocol.GameTurn, gameID)
	reply = alice.next(s.T())
	s.Equal("bob|apple", reply.Payload)
}

func (s *DispatcherSuite) TestDisconnectCascade() {
	alice, bob, _ := s.startMatch()

	s.dispatcher.Disconnect(s.ctx, alice.cl)

	notice := bob.next(s.T())
	s.Equal(protocol.GameEnd, notice.Type)
	s.Equal("bob|1", notice.Payload)

	s.False(s.registry.Online("alice"))

	user, err := s.storage.GetUser(s.ctx, "alice")
	s.Require().NoError(err)
	s.False(user.IsOnline)

	score, err := s.accounts.Score(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(1, score)
}

func (s *DispatcherSuite) TestClientInitiatedUpdateRejected() {
	alice := s.loggedIn("alice", "pw1")

	s.handle(alice, protocol.GameUpdate, "anything")
	reply := alice.next(s.T())
	s.Equal(protocol.StatusNotImplemented, reply.Status)
}

func (s *DispatcherSuite) TestUnknownTypeRejected() {
	alice := s.loggedIn("alice", "pw1")

	s.handle(alice, protocol.GameJoin, "whatever")
	reply := alice.next(s.T())
	s.Equal(protocol.StatusBadRequest, reply.Status)
}

func (s *DispatcherSuite) TestHistoryListAndDetail() {
	alice, bob, gameID := s.startMatch()

	s.handle(alice, protocol.GameGuess, gameID+"|alice|apple")
	alice.next(s.T())
	bob.next(s.T())

	s.handle(alice, protocol.GameEnd, gameID)
	alice.next(s.T())
	bob.next(s.T())

	s.handle(alice, protocol.ListGameHistory, "alice")
	reply := alice.next(s.T())
	s.Equal(protocol.StatusSuccess, reply.Status)
	s.Contains(reply.Payload, gameID+",alice,bob,alice,END")

	s.handle(alice, protocol.GameDetailRequest, gameID)
	reply = alice.next(s.T())
	s.Equal(protocol.StatusSuccess, reply.Status)
	s.Contains(reply.Payload, "alice,apple,VALID")
}
