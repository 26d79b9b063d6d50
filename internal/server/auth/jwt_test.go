package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/mailrelay/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken("alice", secret, time.Now(), 30*time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	got, err := GetSubjectFromToken(tok, secret, nil)
	if err != nil {
		t.Fatalf("GetSubjectFromToken error: %v", err)
	}
	if got != "alice" {
		t.Fatalf("subject mismatch: got %q want %q", got, "alice")
	}
}

func TestGetSubjectFromToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tok, err := GenerateToken("u1", secret, issued, 30*time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	// still valid just before expiry
	before := func() time.Time { return issued.Add(29 * time.Minute) }
	if _, err := GetSubjectFromToken(tok, secret, before); err != nil {
		t.Fatalf("expected token valid at +29m, got %v", err)
	}

	after := func() time.Time { return issued.Add(31 * time.Minute) }
	_, err = GetSubjectFromToken(tok, secret, after)
	if !errors.Is(err, common.ErrInvalidCredential) {
		t.Fatalf("expected common.ErrInvalidCredential, got %v", err)
	}
}

func TestGetSubjectFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u2", []byte("right-secret"), time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetSubjectFromToken(tok, []byte("wrong-secret"), nil)
	if !errors.Is(err, common.ErrInvalidCredential) {
		t.Fatalf("expected common.ErrInvalidCredential, got %v", err)
	}
}

func TestGetSubjectFromToken_MalformedString(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "not.a.jwt", "abc"} {
		if _, err := GetSubjectFromToken(s, []byte("k"), nil); !errors.Is(err, common.ErrInvalidCredential) {
			t.Fatalf("%q: expected common.ErrInvalidCredential, got %v", s, err)
		}
	}
}

func TestGetSubjectFromToken_MissingSubject(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := GenerateToken("", secret, time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, err := GetSubjectFromToken(tok, secret, nil); !errors.Is(err, common.ErrInvalidCredential) {
		t.Fatalf("expected common.ErrInvalidCredential, got %v", err)
	}
}

func TestGetSubjectFromToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "mallory",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	tok, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("SignedString error: %v", err)
	}

	if _, err := GetSubjectFromToken(tok, secret, nil); !errors.Is(err, common.ErrInvalidCredential) {
		t.Fatalf("expected common.ErrInvalidCredential, got %v", err)
	}
}

func TestGetSubjectFromToken_RequiresExpiry(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
	})
	tok, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("SignedString error: %v", err)
	}

	if _, err := GetSubjectFromToken(tok, secret, nil); !errors.Is(err, common.ErrInvalidCredential) {
		t.Fatalf("expected common.ErrInvalidCredential, got %v", err)
	}
}
