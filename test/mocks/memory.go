package mocks

import (
	"context"
	"sync"

	"github.com/nlysenko/datahub-gateway/apperr"
	"github.com/nlysenko/datahub-gateway/auth/types"
	"github.com/nlysenko/datahub-gateway/store"
)

// MemoryUserStore is a stateful in-memory replacement for the DynamoDB user
// store, for scenario tests that exercise whole flows instead of single
// expectations.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]types.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: map[string]types.User{}}
}

func (s *MemoryUserStore) GetByLogin(ctx context.Context, login string) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[login]
	if !ok {
		return nil, apperr.ErrUserNotFound
	}
	return &user, nil
}

func (s *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, apperr.ErrUserNotFound
}

func (s *MemoryUserStore) GetByOAuth(ctx context.Context, provider, externalID string) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.OAuth[provider] == externalID {
			return &user, nil
		}
	}
	return nil, apperr.ErrUserNotFound
}

func (s *MemoryUserStore) LoginExists(ctx context.Context, login string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.users[login]
	return ok, nil
}

func (s *MemoryUserStore) Create(ctx context.Context, user types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Login]; ok {
		return apperr.ErrUserAlreadyExists
	}
	s.users[user.Login] = user
	return nil
}

func (s *MemoryUserStore) SetPassword(ctx context.Context, login, hash, salt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[login]
	if !ok {
		return apperr.ErrUserNotFound
	}
	user.Password = hash
	user.Salt = salt
	s.users[login] = user
	return nil
}

func (s *MemoryUserStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *MemoryUserStore) IsReady(ctx context.Context) error { return nil }

func (s *MemoryUserStore) Name() string { return "UserStore[memory]" }

// MemorySettingsStore serves a fixed registration policy; tests flip Policy
// between scenarios.
type MemorySettingsStore struct {
	mu     sync.Mutex
	policy string
}

func NewMemorySettingsStore(policy string) *MemorySettingsStore {
	return &MemorySettingsStore{policy: policy}
}

func (s *MemorySettingsStore) RegistrationPolicy(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy, nil
}

func (s *MemorySettingsStore) SetPolicy(policy string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = policy
}

// MemoryIngestionStore collects ingestion records, rejecting duplicate object
// keys the way the conditional DynamoDB put does.
type MemoryIngestionStore struct {
	mu      sync.Mutex
	records []store.IngestionRecord
	byKey   map[string]bool
}

func NewMemoryIngestionStore() *MemoryIngestionStore {
	return &MemoryIngestionStore{byKey: map[string]bool{}}
}

func (s *MemoryIngestionStore) Record(ctx context.Context, rec store.IngestionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.byKey[rec.ObjectKey] {
		return apperr.ErrObjectConflict
	}
	s.byKey[rec.ObjectKey] = true
	s.records = append(s.records, rec)
	return nil
}

func (s *MemoryIngestionStore) Records() []store.IngestionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.IngestionRecord{}, s.records...)
}

func (s *MemoryIngestionStore) IsReady(ctx context.Context) error { return nil }

func (s *MemoryIngestionStore) Name() string { return "IngestionStore[memory]" }
