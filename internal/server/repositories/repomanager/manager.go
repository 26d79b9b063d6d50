package repomanager

import (
	"context"

	"github.com/dmitrijs2005/mailrelay/internal/server/repositories/users"
)

// RepositoryManager vends the user store and owns its lifecycle.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	// WithinTx runs fn against a repository bound to a single transaction
	// where the backend supports one.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo users.Repository) error) error
	Close() error
}
