// Package account manages persisted player accounts: signup, login state,
// and scores.
//
// Passwords are compared as cleartext. That is the contract the deployed
// clients and databases already rely on; hardening it is out of scope.
package account

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hmngo/wordchain/internal/model"
	"github.com/hmngo/wordchain/internal/storage"
)

// Service handles account lifecycle and score bookkeeping
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new account service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Signup creates a new persisted account with a zero score.
func (s *Service) Signup(ctx context.Context, username, password string) error {
	if !model.ValidUsername(username) {
		return model.ErrInvalidUsername
	}
	if password == "" {
		return model.ErrInvalidCredentials
	}

	err := s.storage.CreateUser(ctx, &model.User{
		Username: username,
		Password: password,
		Score:    0,
		IsOnline: false,
	})
	if err != nil {
		return err
	}

	s.logger.Info("user registered", slog.String("username", username))
	return nil
}

// Authenticate verifies a username/password pair against storage.
func (s *Service) Authenticate(ctx context.Context, username, password string) error {
	user, err := s.storage.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.ErrInvalidCredentials
		}
		return err
	}

	if user.Password != password {
		return model.ErrInvalidCredentials
	}
	return nil
}

// Login authenticates and marks the account online.
func (s *Service) Login(ctx context.Context, username, password string) error {
	if err := s.Authenticate(ctx, username, password); err != nil {
		return err
	}
	if err := s.storage.SetUserOnline(ctx, username, true); err != nil {
		return err
	}

	s.logger.Info("user logged in", slog.String("username", username))
	return nil
}

// Logout authenticates and marks the account offline.
func (s *Service) Logout(ctx context.Context, username, password string) error {
	if err := s.Authenticate(ctx, username, password); err != nil {
		return err
	}
	if err := s.storage.SetUserOnline(ctx, username, false); err != nil {
		return err
	}

	s.logger.Info("user logged out", slog.String("username", username))
	return nil
}

// SetOffline marks an account offline without credentials. Used by the
// disconnect path, where the password is not available.
func (s *Service) SetOffline(ctx context.Context, username string) error {
	return s.storage.SetUserOnline(ctx, username, false)
}

// Score returns a user's persisted score.
func (s *Service) Score(ctx context.Context, username string) (int, error) {
	user, err := s.storage.GetUser(ctx, username)
	if err != nil {
		return 0, err
	}
	return user.Score, nil
}

// AddScore applies a delta to a user's persisted score and returns the new
// total.
func (s *Service) AddScore(ctx context.Context, username string, delta int) (int, error) {
	user, err := s.storage.GetUser(ctx, username)
	if err != nil {
		return 0, err
	}

	score := user.Score + delta
	if err := s.storage.UpdateUserScore(ctx, username, score); err != nil {
		return 0, err
	}
	return score, nil
}

// OnlineUsers lists accounts currently marked online.
func (s *Service) OnlineUsers(ctx context.Context) ([]*model.User, error) {
	return s.storage.ListOnlineUsers(ctx)
}

// ClosestScores lists up to limit users ranked by score proximity to
// username.
func (s *Service) ClosestScores(ctx context.Context, username string, limit int) ([]*model.User, error) {
	return s.storage.ListUsersByScoreProximity(ctx, username, limit)
}
