package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fixitnow/fixitnow/errs"
	"github.com/fixitnow/fixitnow/types"
)

// TokenLifetime is how long an issued credential stays valid.
const TokenLifetime = time.Hour

var (
	ErrTokenExpired   = errs.NewUnauthenticatedError("token expired")
	ErrTokenMalformed = errs.NewUnauthenticatedError("token malformed")
	ErrSubjectMissing = errs.NewUnauthenticatedError("token subject missing")
)

// Claims is the identity a verified credential asserts. Subject is the
// normalized (trimmed, lower-cased) email; callers use it as a lookup
// key as-is.
type Claims struct {
	Subject string
	Role    types.UserRole
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens verifies and issues the symmetric-key signed credentials
// carried on both the request surface and live-channel frames.
type Tokens struct {
	secret []byte
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret)}
}

// Issue signs a credential for the account layer and tests. Expiry is
// TokenLifetime from now.
func (t *Tokens) Issue(email string, role types.UserRole) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   types.NormalizeEmail(email),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
		},
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

func (t *Tokens) Verify(tokenString string) (Claims, error) {
	var out Claims

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return out, ErrTokenExpired
	}

	if err != nil || !token.Valid {
		return out, ErrTokenMalformed
	}

	if claims.Subject == "" {
		return out, ErrSubjectMissing
	}

	out.Subject = types.NormalizeEmail(claims.Subject)
	out.Role = types.UserRole(claims.Role)
	return out, nil
}
