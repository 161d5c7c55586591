package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hmngo/wordchain/internal/model"
	"github.com/hmngo/wordchain/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	// SETNX guards against concurrent signup races on the same name
	set, err := s.client.SetNX(ctx, userKey(user.Username), data, 0).Result()
	if err != nil {
		return err
	}
	if !set {
		return model.ErrUserExists
	}

	return s.client.SAdd(ctx, usersIndexKey(), user.Username).Err()
}

func (s *Storage) GetUser(ctx context.Context, username string) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) UserExists(ctx context.Context, username string) (bool, error) {
	n, err := s.client.Exists(ctx, userKey(username)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Storage) saveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, userKey(user.Username), data, 0).Err()
}

func (s *Storage) SetUserOnline(ctx context.Context, username string, online bool) error {
	user, err := s.GetUser(ctx, username)
	if err != nil {
		return err
	}
	user.IsOnline = online
	if err := s.saveUser(ctx, user); err != nil {
		return err
	}

	if online {
		return s.client.SAdd(ctx, onlineIndexKey(), username).Err()
	}
	return s.client.SRem(ctx, onlineIndexKey(), username).Err()
}

func (s *Storage) UpdateUserScore(ctx context.Context, username string, score int) error {
	user, err := s.GetUser(ctx, username)
	if err != nil {
		return err
	}
	user.Score = score
	return s.saveUser(ctx, user)
}

func (s *Storage) ListOnlineUsers(ctx context.Context) ([]*model.User, error) {
	names, err := s.client.SMembers(ctx, onlineIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	users := make([]*model.User, 0, len(names))
	for _, name := range names {
		user, err := s.GetUser(ctx, name)
		if err != nil {
			// Index entry without a user key; skip it
			if errors.Is(err, model.ErrUserNotFound) {
				continue
			}
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Storage) ListUsersByScoreProximity(ctx context.Context, username string, limit int) ([]*model.User, error) {
	ref, err := s.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}

	names, err := s.client.SMembers(ctx, usersIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	var others []*model.User
	for _, name := range names {
		if name == username {
			continue
		}
		user, err := s.GetUser(ctx, name)
		if err != nil {
			if errors.Is(err, model.ErrUserNotFound) {
				continue
			}
			return nil, err
		}
		others = append(others, user)
	}

	distance := func(u *model.User) int {
		d := u.Score - ref.Score
		if d < 0 {
			d = -d
		}
		return d
	}
	sort.Slice(others, func(i, j int) bool {
		di, dj := distance(others[i]), distance(others[j])
		if di != dj {
			return di < dj
		}
		return others[i].Username < others[j].Username
	})

	if limit > 0 && len(others) > limit {
		others = others[:limit]
	}
	return others, nil
}

// Game history operations

func (s *Storage) SaveGameHistory(ctx context.Context, record *model.GameHistoryRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	// Only index on first write so a re-save cannot duplicate listings
	created, err := s.client.SetNX(ctx, historyKey(record.SessionID), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return s.client.Set(ctx, historyKey(record.SessionID), data, 0).Err()
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, historyForPlayerKey(record.Player1), string(record.SessionID))
	pipe.RPush(ctx, historyForPlayerKey(record.Player2), string(record.SessionID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGameHistory(ctx context.Context, id model.SessionID) (*model.GameHistoryRecord, error) {
	data, err := s.client.Get(ctx, historyKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var record model.GameHistoryRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Storage) ListGameHistoryByPlayer(ctx context.Context, playerName string) ([]*model.GameHistoryRecord, error) {
	ids, err := s.client.LRange(ctx, historyForPlayerKey(playerName), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	var records []*model.GameHistoryRecord
	for _, id := range ids {
		record, err := s.GetGameHistory(ctx, model.SessionID(id))
		if err != nil {
			if errors.Is(err, model.ErrSessionNotFound) {
				continue
			}
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Dictionary operations

func (s *Storage) SaveDictionaryWords(ctx context.Context, words []string) error {
	data, err := json.Marshal(words)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, dictionaryKey(), data, 0).Err()
}

func (s *Storage) GetDictionaryWords(ctx context.Context) ([]string, error) {
	data, err := s.client.Get(ctx, dictionaryKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var words []string
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, err
	}
	return words, nil
}
