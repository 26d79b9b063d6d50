// Package common defines shared constants and sentinel errors used across
// the relay server and its client. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// ErrInvalidCredential covers a bad login as well as an unverifiable,
	// malformed or expired session token. The two are not told apart.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrCredentialMissing means the user has no delegated provider token.
	ErrCredentialMissing = errors.New("provider credential missing")

	// Provider errors.
	ErrRemoteNotFound   = errors.New("remote resource not found")
	ErrProviderRejected = errors.New("provider rejected request")
	ErrTransport        = errors.New("provider transport error")
)
