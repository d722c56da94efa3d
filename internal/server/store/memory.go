package store

import (
	"context"
	"sort"
	"sync"

	"github.com/jmross14/PelaghiSoftwareWebServer/internal/common"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/models"
)

// MemoryStore implements UserStore in memory for development and testing.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]models.StoredUser
}

var _ UserStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]models.StoredUser)}
}

func (s *MemoryStore) Get(ctx context.Context, userName string) (*models.StoredUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userName]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &user, nil
}

func (s *MemoryStore) GetAll(ctx context.Context) ([]models.StoredUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]models.StoredUser, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserName < users[j].UserName })

	return users, nil
}

func (s *MemoryStore) Insert(ctx context.Context, user *models.StoredUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.UserName]; ok {
		return common.ErrAlreadyExists
	}
	s.users[user.UserName] = *user

	return nil
}

func (s *MemoryStore) Update(ctx context.Context, user *models.StoredUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.UserName]; !ok {
		return common.ErrNotFound
	}
	s.users[user.UserName] = *user

	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, userName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userName]; !ok {
		return common.ErrNotFound
	}
	delete(s.users, userName)

	return nil
}
