package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/hmngo/wordchain/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	storage, err := New(filepath.Join(s.T().TempDir(), "wordchain.db"))
	s.Require().NoError(err)
	s.storage = storage
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

func (s *StorageSuite) addUser(name string, score int, online bool) {
	s.Require().NoError(s.storage.CreateUser(s.ctx, &model.User{
		Username: name,
		Password: "pw",
		Score:    score,
		IsOnline: online,
	}))
}

func (s *StorageSuite) TestCreateAndGetUser() {
	s.addUser("alice", 4, true)

	user, err := s.storage.GetUser(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("alice", user.Username)
	s.Equal("pw", user.Password)
	s.Equal(4, user.Score)
	s.True(user.IsOnline)
}

func (s *StorageSuite) TestCreateUserDuplicate() {
	s.addUser("alice", 0, false)
	err := s.storage.CreateUser(s.ctx, &model.User{Username: "alice", Password: "other"})
	s.ErrorIs(err, model.ErrUserExists)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestSetUserOnline() {
	s.addUser("alice", 0, false)

	s.Require().NoError(s.storage.SetUserOnline(s.ctx, "alice", true))
	user, err := s.storage.GetUser(s.ctx, "alice")
	s.Require().NoError(err)
	s.True(user.IsOnline)

	s.ErrorIs(s.storage.SetUserOnline(s.ctx, "ghost", true), model.ErrUserNotFound)
}

func (s *StorageSuite) TestUpdateUserScore() {
	s.addUser("alice", 1, false)

	s.Require().NoError(s.storage.UpdateUserScore(s.ctx, "alice", 8))
	user, err := s.storage.GetUser(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(8, user.Score)

	s.ErrorIs(s.storage.UpdateUserScore(s.ctx, "ghost", 1), model.ErrUserNotFound)
}

func (s *StorageSuite) TestListOnlineUsers() {
	s.addUser("bob", 0, true)
	s.addUser("alice", 0, true)
	s.addUser("carol", 0, false)

	online, err := s.storage.ListOnlineUsers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(online, 2)
	s.Equal("alice", online[0].Username)
	s.Equal("bob", online[1].Username)
}

func (s *StorageSuite) TestListUsersByScoreProximity() {
	s.addUser("alice", 10, false)
	s.addUser("bob", 20, false)
	s.addUser("carol", 12, false)
	s.addUser("dave", 7, false)

	users, err := s.storage.ListUsersByScoreProximity(s.ctx, "alice", 2)
	s.Require().NoError(err)
	s.Require().Len(users, 2)
	s.Equal("carol", users[0].Username)
	s.Equal("dave", users[1].Username)
}

func (s *StorageSuite) TestGameHistoryRoundTrip() {
	record := &model.GameHistoryRecord{
		SessionID:    "GAME-1700000000",
		Player1:      "alice",
		Player2:      "bob",
		Player1Score: 2,
		Player2Score: 0,
		Winner:       "alice",
		FinalWord:    "elephant",
		EndReason:    model.EndReasonAttemptsExceeded,
		Moves: []model.Move{
			{PlayerName: "alice", Guess: "apple", Result: model.MoveValid,
				PlayedAt: time.Date(2024, 1, 1, 12, 0, 5, 0, time.UTC)},
			{PlayerName: "bob", Guess: "zebra", Result: model.MoveMismatch,
				PlayedAt: time.Date(2024, 1, 1, 12, 0, 20, 0, time.UTC)},
		},
		StartTime: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 1, 1, 12, 1, 0, 0, time.UTC),
	}
	s.Require().NoError(s.storage.SaveGameHistory(s.ctx, record))

	got, err := s.storage.GetGameHistory(s.ctx, "GAME-1700000000")
	s.Require().NoError(err)
	s.Equal(record.Player1, got.Player1)
	s.Equal(record.Player2, got.Player2)
	s.Equal(record.Player1Score, got.Player1Score)
	s.Equal(record.Player2Score, got.Player2Score)
	s.Equal(record.Winner, got.Winner)
	s.Equal(record.FinalWord, got.FinalWord)
	s.Equal(record.EndReason, got.EndReason)
	s.Equal(record.Moves, got.Moves)
	s.True(record.StartTime.Equal(got.StartTime))
	s.True(record.EndTime.Equal(got.EndTime))
}

func (s *StorageSuite) TestGetGameHistoryNotFound() {
	_, err := s.storage.GetGameHistory(s.ctx, "GAME-404")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestListGameHistoryByPlayer() {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []model.SessionID{"GAME-1", "GAME-2"} {
		s.Require().NoError(s.storage.SaveGameHistory(s.ctx, &model.GameHistoryRecord{
			SessionID: id,
			Player1:   "alice",
			Player2:   "bob",
			Winner:    "alice",
			StartTime: base.Add(time.Duration(i) * time.Hour),
			EndTime:   base.Add(time.Duration(i)*time.Hour + time.Minute),
		}))
	}

	records, err := s.storage.ListGameHistoryByPlayer(s.ctx, "bob")
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(model.SessionID("GAME-1"), records[0].SessionID)
	s.Equal(model.SessionID("GAME-2"), records[1].SessionID)

	records, err = s.storage.ListGameHistoryByPlayer(s.ctx, "carol")
	s.Require().NoError(err)
	s.Empty(records)
}

func (s *StorageSuite) TestDictionaryWords() {
	words := []string{"apple", "elephant", "tiger"}
	s.Require().NoError(s.storage.SaveDictionaryWords(s.ctx, words))

	got, err := s.storage.GetDictionaryWords(s.ctx)
	s.Require().NoError(err)
	s.Equal(words, got)

	// A re-save replaces, not appends
	s.Require().NoError(s.storage.SaveDictionaryWords(s.ctx, []string{"tiger"}))
	got, err = s.storage.GetDictionaryWords(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"tiger"}, got)
}
