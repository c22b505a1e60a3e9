// Package memory is an in-process implementation of the repository
// interfaces. It enforces the same uniqueness and foreign key rules as the
// Postgres schema and is used for local runs and tests.
package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
	"github.com/gdugdh24/sparkchat-backend/internal/repository"
	"github.com/google/uuid"
)

type pair struct {
	from, to string
}

type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users         map[string]*domain.User
	likes         map[pair]time.Time
	passes        map[pair]time.Time
	matches       map[string]*domain.Match
	matchByPair   map[pair]string
	conversations map[string]*domain.Conversation
	convByMatch   map[string]string
	messages      map[string][]*domain.Message
}

type Option func(*Store)

// WithClock replaces time.Now for row timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		now:           time.Now,
		users:         make(map[string]*domain.User),
		likes:         make(map[pair]time.Time),
		passes:        make(map[pair]time.Time),
		matches:       make(map[string]*domain.Match),
		matchByPair:   make(map[pair]string),
		conversations: make(map[string]*domain.Conversation),
		convByMatch:   make(map[string]string),
		messages:      make(map[string][]*domain.Message),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

func (s *Store) AddUser(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *u
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.timestamp()
	}
	s.users[cp.ID] = &cp
}

// LoadUsers seeds users from a JSON array file.
func (s *Store) LoadUsers(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}
	var users []*domain.User
	if err := json.Unmarshal(data, &users); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}
	for _, u := range users {
		if _, err := uuid.Parse(u.ID); err != nil {
			return 0, fmt.Errorf("seed user %q: invalid id", u.ID)
		}
		s.AddUser(u)
	}
	return len(users), nil
}

// DeleteMessage removes a message row. The API never deletes messages; this
// exists so cursor handling can be exercised against vanished rows.
func (s *Store) DeleteMessage(conversationID, messageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.messages[conversationID]
	for i, m := range msgs {
		if m.ID == messageID {
			s.messages[conversationID] = append(msgs[:i:i], msgs[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) MatchCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

func (s *Store) ConversationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

func (s *Store) LikeLedger() repository.LikeLedger {
	return &likeLedger{s}
}

func (s *Store) Matches() repository.MatchRepository {
	return &matchRepository{s}
}

func (s *Store) Conversations() repository.ConversationRepository {
	return &conversationRepository{s}
}

func (s *Store) Messages() repository.MessageRepository {
	return &messageRepository{s}
}

func (s *Store) Users() repository.UserRepository {
	return &userRepository{s}
}

func copyMessage(m *domain.Message) *domain.Message {
	cp := *m
	return &cp
}

func copyMatch(m *domain.Match) *domain.Match {
	cp := *m
	cp.Icebreakers = append([]string(nil), m.Icebreakers...)
	return &cp
}

func copyConversation(c *domain.Conversation) *domain.Conversation {
	cp := *c
	return &cp
}
