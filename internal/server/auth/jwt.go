// Package auth mints and verifies the relay's stateless session tokens.
package auth

import (
	"time"

	"github.com/dmitrijs2005/mailrelay/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard registered claims only; the subject is the
// local user name.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for subject, valid from issuedAt for
// validityDuration.
func GenerateToken(subject string, secretKey []byte, issuedAt time.Time, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(validityDuration)),
		},
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetSubjectFromToken verifies signature and expiry and returns the subject.
// Every failure, including a missing subject, is common.ErrInvalidCredential.
// now overrides the clock used for the expiry check; nil means time.Now.
func GetSubjectFromToken(tokenString string, secretKey []byte, now func() time.Time) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if now != nil {
		opts = append(opts, jwt.WithTimeFunc(now))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, opts...)
	if err != nil || !token.Valid {
		return "", common.ErrInvalidCredential
	}

	if claims.Subject == "" {
		return "", common.ErrInvalidCredential
	}

	return claims.Subject, nil
}
