package models

import "time"

// User is a local account. ProviderToken is the delegated credential for the
// mail provider; nil means none has been provisioned yet.
type User struct {
	ID            string
	UserName      string
	Email         string
	PasswordHash  string
	ProviderToken *string
	CreatedAt     time.Time
}

// HasProviderToken reports whether a non-empty delegated credential is stored.
func (u *User) HasProviderToken() bool {
	return u.ProviderToken != nil && *u.ProviderToken != ""
}
