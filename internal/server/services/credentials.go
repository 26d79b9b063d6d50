package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mailrelay/internal/common"
	"github.com/dmitrijs2005/mailrelay/internal/server/repositories/repomanager"
)

// Resolver yields the delegated provider credential for a local identity.
type Resolver interface {
	Resolve(ctx context.Context, identity string) (string, error)
}

// CredentialResolver reads the credential from the user record on every
// call, so a rotated token is picked up by the next request.
type CredentialResolver struct {
	repomanager repomanager.RepositoryManager
}

func NewCredentialResolver(m repomanager.RepositoryManager) *CredentialResolver {
	return &CredentialResolver{repomanager: m}
}

// Resolve returns common.ErrCredentialMissing when no token is stored and
// common.ErrInvalidCredential when the identity no longer exists.
func (r *CredentialResolver) Resolve(ctx context.Context, identity string) (string, error) {
	user, err := r.repomanager.Users().GetUserByLogin(ctx, identity)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidCredential
		}
		return "", fmt.Errorf("credential lookup: %w", common.ErrorInternal)
	}

	if !user.HasProviderToken() {
		return "", common.ErrCredentialMissing
	}

	return *user.ProviderToken, nil
}
