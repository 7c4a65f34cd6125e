// Package jwt implementa auth.AuthVerifier y auth.TokenIssuer con tokens HS256.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pet-adoption-economy/internal/ports/auth"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenEmpty   = errors.New("token is empty")
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSecret     = errors.New("jwt secret is empty")
)

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwtlib.RegisteredClaims
}

type Tokens struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func New(secret string, ttl time.Duration, issuer string) (*Tokens, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

var (
	_ auth.AuthVerifier = (*Tokens)(nil)
	_ auth.TokenIssuer  = (*Tokens)(nil)
)

// Issue firma un token con el user id como subject.
func (t *Tokens) Issue(ctx context.Context, c auth.Claims) (string, time.Time, error) {
	if c.UserID <= 0 {
		return "", time.Time{}, fmt.Errorf("%w: user id required", ErrInvalidToken)
	}
	now := t.now()
	exp := now.Add(t.ttl)

	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, &tokenClaims{
		Email: c.Email,
		Role:  c.Role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   strconv.FormatInt(c.UserID, 10),
			Issuer:    t.issuer,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (t *Tokens) Verify(ctx context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(t.now),
		jwtlib.WithExpirationRequired(),
	}
	if t.issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(t.issuer))
	}

	var tc tokenClaims
	parsed, err := jwtlib.ParseWithClaims(token, &tc, func(*jwtlib.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return auth.Claims{}, ErrInvalidToken
	}

	uid, err := strconv.ParseInt(tc.Subject, 10, 64)
	if err != nil || uid <= 0 {
		return auth.Claims{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return auth.Claims{UserID: uid, Email: tc.Email, Role: tc.Role}, nil
}
