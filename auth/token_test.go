package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fixitnow/fixitnow/types"
)

const testSecret = "test-secret-test-secret-test-secret!"

func signTestToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return signed
}

func TestTokens_Verify(t *testing.T) {
	tokens := NewTokens(testSecret)

	t.Run("round_trip", func(t *testing.T) {
		signed, err := tokens.Issue("jane@example.com", types.UserRoleProvider)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		claims, err := tokens.Verify(signed)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if claims.Subject != "jane@example.com" {
			t.Errorf("subject = %q, want %q", claims.Subject, "jane@example.com")
		}
		if claims.Role != types.UserRoleProvider {
			t.Errorf("role = %q, want %q", claims.Role, types.UserRoleProvider)
		}
	})

	t.Run("normalizes_subject", func(t *testing.T) {
		signed, err := tokens.Issue("  Jane@Example.COM ", types.UserRoleCustomer)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		claims, err := tokens.Verify(signed)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if claims.Subject != "jane@example.com" {
			t.Errorf("subject = %q, want normalized %q", claims.Subject, "jane@example.com")
		}
	})

	t.Run("expired", func(t *testing.T) {
		now := time.Now().UTC()
		signed := signTestToken(t, jwt.RegisteredClaims{
			Subject:   "jane@example.com",
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		})

		_, err := tokens.Verify(signed)
		if !errors.Is(err, ErrTokenExpired) {
			t.Errorf("err = %v, want ErrTokenExpired", err)
		}
	})

	t.Run("subject_missing", func(t *testing.T) {
		now := time.Now().UTC()
		signed := signTestToken(t, jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		})

		_, err := tokens.Verify(signed)
		if !errors.Is(err, ErrSubjectMissing) {
			t.Errorf("err = %v, want ErrSubjectMissing", err)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := tokens.Verify("not-a-token")
		if !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("err = %v, want ErrTokenMalformed", err)
		}
	})

	t.Run("wrong_key", func(t *testing.T) {
		other := NewTokens("some-other-secret-some-other-secret")
		signed, err := other.Issue("jane@example.com", types.UserRoleCustomer)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		_, err = tokens.Verify(signed)
		if !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("err = %v, want ErrTokenMalformed", err)
		}
	})
}
