package dictionary

import (
	"bufio"
	"context"
	"os"
	"strings"
	"sync"

	"github.com/hmngo/wordchain/internal/dependencies/random"
	"github.com/hmngo/wordchain/internal/model"
	"github.com/hmngo/wordchain/internal/storage"
)

// Service provides dictionary/word validation functionality
type Service struct {
	storage storage.Storage
	random  random.Random

	mu     sync.RWMutex
	words  map[string]struct{}
	list   []string
	loaded bool
}

// New creates a new DictionaryService
func New(storage storage.Storage, random random.Random) *Service {
	return &Service{
		storage: storage,
		random:  random,
		words:   make(map[string]struct{}),
	}
}

// LoadFromStorage loads dictionary words from storage
func (s *Service) LoadFromStorage(ctx context.Context) error {
	words, err := s.storage.GetDictionaryWords(ctx)
	if err != nil {
		return err
	}
	return s.loadWords(words)
}

// LoadFromFile loads dictionary words from a file (one word or phrase per
// line) and saves them to storage for future runs.
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if err := s.storage.SaveDictionaryWords(ctx, words); err != nil {
		return err
	}

	return s.loadWords(words)
}

// LoadWords directly loads a slice of words (useful for testing)
func (s *Service) LoadWords(words []string) error {
	return s.loadWords(words)
}

func (s *Service) loadWords(words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.words = make(map[string]struct{}, len(words))
	s.list = s.list[:0]
	for _, word := range words {
		// Store lowercase for case-insensitive matching
		key := strings.ToLower(word)
		if _, ok := s.words[key]; ok {
			continue
		}
		s.words[key] = struct{}{}
		s.list = append(s.list, word)
	}
	s.loaded = true
	return nil
}

// IsValidWord checks if a word or phrase exists in the dictionary.
// Entries must be at least 2 characters.
func (s *Service) IsValidWord(word string) bool {
	if len(word) < 2 {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return false
	}

	_, ok := s.words[strings.ToLower(word)]
	return ok
}

// RandomWord returns a uniformly chosen dictionary entry.
func (s *Service) RandomWord() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return "", model.ErrDictionaryNotLoaded
	}
	if len(s.list) == 0 {
		return "", model.ErrDictionaryEmpty
	}
	return s.list[s.random.Intn(len(s.list))], nil
}

// IsLoaded returns whether the dictionary has been loaded
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// WordCount returns the number of words in the dictionary
func (s *Service) WordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words)
}

// Interface for dependency injection
type ServiceInterface interface {
	IsValidWord(word string) bool
	RandomWord() (string, error)
	IsLoaded() bool
	WordCount() int
	LoadFromStorage(ctx context.Context) error
	LoadFromFile(ctx context.Context, path string) error
	LoadWords(words []string) error
}

var _ ServiceInterface = (*Service)(nil)
