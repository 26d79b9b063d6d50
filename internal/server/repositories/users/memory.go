package users

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/mailrelay/internal/common"
	"github.com/dmitrijs2005/mailrelay/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps users in process memory. It is used when no
// database DSN is configured and in tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	byLogin map[string]*models.User
	byEmail map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byLogin: make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byLogin[user.UserName]; ok {
		return nil, fmt.Errorf("username: %w", common.ErrorAlreadyExists)
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return nil, fmt.Errorf("email: %w", common.ErrorAlreadyExists)
	}

	stored := clone(user)
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()

	r.byLogin[stored.UserName] = stored
	r.byEmail[stored.Email] = stored.UserName

	user.ID = stored.ID
	user.CreatedAt = stored.CreatedAt
	return user, nil
}

func (r *MemoryRepository) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byLogin[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

func (r *MemoryRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	login, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(r.byLogin[login]), nil
}

func (r *MemoryRepository) SetProviderToken(ctx context.Context, login string, token *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byLogin[login]
	if !ok {
		return common.ErrorNotFound
	}
	if token == nil {
		u.ProviderToken = nil
		return nil
	}
	t := *token
	u.ProviderToken = &t
	return nil
}

// clone detaches callers from the stored record.
func clone(u *models.User) *models.User {
	c := *u
	if u.ProviderToken != nil {
		t := *u.ProviderToken
		c.ProviderToken = &t
	}
	return &c
}
