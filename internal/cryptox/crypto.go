// Package cryptox wraps password hashing for stored user credentials.
package cryptox

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor for new hashes.
const DefaultCost = bcrypt.DefaultCost

// dummyHash is compared against when the user does not exist, so a missing
// account costs as much as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("mailrelay"), DefaultCost)
	return h
})

// HashPassword returns the bcrypt hash of password.
func HashPassword(password []byte) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(password, DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. A malformed hash is
// a mismatch, not an error.
func CheckPassword(hash string, password []byte) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), password)
	return err == nil
}

// BurnCompare spends roughly one bcrypt comparison and always returns false.
func BurnCompare(password []byte) bool {
	_ = bcrypt.CompareHashAndPassword(dummyHash(), password)
	return false
}
