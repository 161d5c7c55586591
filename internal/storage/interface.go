package storage

import (
	"context"

	"github.com/hmngo/wordchain/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, username string) (*model.User, error)
	UserExists(ctx context.Context, username string) (bool, error)
	SetUserOnline(ctx context.Context, username string, online bool) error
	UpdateUserScore(ctx context.Context, username string, score int) error
	ListOnlineUsers(ctx context.Context) ([]*model.User, error)
	// ListUsersByScoreProximity returns up to limit users ordered by how
	// close their score is to username's score, closest first. The
	// reference user is excluded.
	ListUsersByScoreProximity(ctx context.Context, username string, limit int) ([]*model.User, error)

	// Game history operations
	SaveGameHistory(ctx context.Context, record *model.GameHistoryRecord) error
	GetGameHistory(ctx context.Context, id model.SessionID) (*model.GameHistoryRecord, error)
	ListGameHistoryByPlayer(ctx context.Context, playerName string) ([]*model.GameHistoryRecord, error)

	// Dictionary operations
	SaveDictionaryWords(ctx context.Context, words []string) error
	GetDictionaryWords(ctx context.Context) ([]string, error)
}
