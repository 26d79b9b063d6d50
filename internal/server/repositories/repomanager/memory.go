package repomanager

import (
	"context"

	"github.com/dmitrijs2005/mailrelay/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps users in memory; nothing survives a restart.
type InMemoryRepositoryManager struct {
	users *users.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{users: users.NewMemoryRepository()}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

// WithinTx has no rollback: the memory store's writes are individually atomic.
func (m *InMemoryRepositoryManager) WithinTx(ctx context.Context, fn func(ctx context.Context, repo users.Repository) error) error {
	return fn(ctx, m.users)
}

func (m *InMemoryRepositoryManager) Close() error {
	return nil
}
