package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/hmngo/wordchain/internal/model"
	"github.com/hmngo/wordchain/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users           map[string]*model.User
	histories       map[model.SessionID]*model.GameHistoryRecord
	historyOrder    []model.SessionID // insertion order, for stable listings
	dictionaryWords []string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:     make(map[string]*model.User),
		histories: make(map[model.SessionID]*model.GameHistoryRecord),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return model.ErrUserExists
	}
	u := *user
	s.users[user.Username] = &u
	return nil
}

func (s *Storage) GetUser(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *Storage) UserExists(ctx context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[username]
	return ok, nil
}

func (s *Storage) SetUserOnline(ctx context.Context, username string, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return model.ErrUserNotFound
	}
	user.IsOnline = online
	return nil
}

func (s *Storage) UpdateUserScore(ctx context.Context, username string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return model.ErrUserNotFound
	}
	user.Score = score
	return nil
}

func (s *Storage) ListOnlineUsers(ctx context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var online []*model.User
	for _, user := range s.users {
		if user.IsOnline {
			u := *user
			online = append(online, &u)
		}
	}
	sort.Slice(online, func(i, j int) bool {
		return online[i].Username < online[j].Username
	})
	return online, nil
}

func (s *Storage) ListUsersByScoreProximity(ctx context.Context, username string, limit int) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ref, ok := s.users[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}

	var others []*model.User
	for _, user := range s.users {
		if user.Username == username {
			continue
		}
		u := *user
		others = append(others, &u)
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
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.histories[record.SessionID]; !ok {
		s.historyOrder = append(s.historyOrder, record.SessionID)
	}
	r := *record
	r.Moves = append([]model.Move(nil), record.Moves...)
	s.histories[record.SessionID] = &r
	return nil
}

func (s *Storage) GetGameHistory(ctx context.Context, id model.SessionID) (*model.GameHistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.histories[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	r := *record
	r.Moves = append([]model.Move(nil), record.Moves...)
	return &r, nil
}

func (s *Storage) ListGameHistoryByPlayer(ctx context.Context, playerName string) ([]*model.GameHistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []*model.GameHistoryRecord
	for _, id := range s.historyOrder {
		record := s.histories[id]
		if record.Player1 == playerName || record.Player2 == playerName {
			r := *record
			r.Moves = append([]model.Move(nil), record.Moves...)
			records = append(records, &r)
		}
	}
	return records, nil
}

// Dictionary operations

func (s *Storage) SaveDictionaryWords(ctx context.Context, words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dictionaryWords = append([]string(nil), words...)
	return nil
}

func (s *Storage) GetDictionaryWords(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.dictionaryWords...), nil
}
