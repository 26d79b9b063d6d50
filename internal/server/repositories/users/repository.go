package users

import (
	"context"

	"github.com/dmitrijs2005/mailrelay/internal/server/models"
)

// Repository is the user-record store. Lookups of an absent record return
// common.ErrorNotFound; duplicate names or emails wrap common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SetProviderToken(ctx context.Context, login string, token *string) error
}
