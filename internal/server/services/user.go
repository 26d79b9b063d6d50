// Package services contains the relay's server-side logic: local accounts and
// session tokens (UserService), delegated credential lookup
// (CredentialResolver) and provider forwarding (RelayService).
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/mailrelay/internal/common"
	"github.com/dmitrijs2005/mailrelay/internal/cryptox"
	"github.com/dmitrijs2005/mailrelay/internal/server/auth"
	"github.com/dmitrijs2005/mailrelay/internal/server/config"
	"github.com/dmitrijs2005/mailrelay/internal/server/models"
	"github.com/dmitrijs2005/mailrelay/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mailrelay/internal/server/repositories/users"
)

// UserService provides account and session operations:
// - Register: create users with a bcrypt password hash
// - Authenticate: check a password and mint a session token
// - VerifyToken: stateless check of a session token
// - SetProviderToken: store the delegated provider credential
type UserService struct {
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	now                         func() time.Time
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		now:                         time.Now,
	}
}

// Register creates a user. Duplicate emails or names wrap
// common.ErrorAlreadyExists; blank fields wrap common.ErrorValidation.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	switch {
	case username == "":
		return nil, fmt.Errorf("username is required: %w", common.ErrorValidation)
	case email == "" || !strings.Contains(email, "@"):
		return nil, fmt.Errorf("a valid email is required: %w", common.ErrorValidation)
	case password == "":
		return nil, fmt.Errorf("password is required: %w", common.ErrorValidation)
	}

	hash, err := cryptox.HashPassword([]byte(password))
	if err != nil {
		return nil, fmt.Errorf("password hashing: %w", common.ErrorValidation)
	}

	user := &models.User{UserName: username, Email: email, PasswordHash: hash}

	err = s.repomanager.WithinTx(ctx, func(ctx context.Context, repo users.Repository) error {
		_, err := repo.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			return fmt.Errorf("email: %w", common.ErrorAlreadyExists)
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}

		user, err = repo.Create(ctx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Authenticate checks the password and returns a fresh session token.
// An unknown user and a wrong password both yield common.ErrInvalidCredential.
func (s *UserService) Authenticate(ctx context.Context, userName, password string) (string, error) {
	user, err := s.repomanager.Users().GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.BurnCompare([]byte(password))
			return "", common.ErrInvalidCredential
		}
		return "", common.ErrorInternal
	}

	if !cryptox.CheckPassword(user.PasswordHash, []byte(password)) {
		return "", common.ErrInvalidCredential
	}

	return s.IssueToken(user.UserName)
}

// IssueToken signs a session token for userName valid for the configured TTL.
func (s *UserService) IssueToken(userName string) (string, error) {
	token, err := auth.GenerateToken(userName, s.jwtSecret, s.now(), s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// VerifyToken returns the user name a session token was issued for. It never
// touches the store.
func (s *UserService) VerifyToken(token string) (string, error) {
	return auth.GetSubjectFromToken(token, s.jwtSecret, s.now)
}

// Me returns the record of an authenticated user. A token whose user has
// since disappeared is treated like a bad token.
func (s *UserService) Me(ctx context.Context, userName string) (*models.User, error) {
	user, err := s.repomanager.Users().GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredential
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// SetProviderToken stores the delegated provider credential. An empty token
// clears it.
func (s *UserService) SetProviderToken(ctx context.Context, userName, token string) error {
	var value *string
	if token = strings.TrimSpace(token); token != "" {
		value = &token
	}

	err := s.repomanager.Users().SetProviderToken(ctx, userName, value)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidCredential
		}
		return common.ErrorInternal
	}
	return nil
}
