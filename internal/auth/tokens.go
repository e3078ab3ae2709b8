// Package auth issues and verifies the session credentials of the API:
// short-lived access tokens and single-use refresh tokens, both HS256 JWTs.
// Refresh rotation is enforced against the token stored on the user record,
// so a replayed refresh token fails even while its signature is still valid.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clipstream/backend/internal/models"
)

const issuer = "clipstream"

// TokenKind distinguishes the two credentials in a session pair.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

var (
	// ErrTokenExpired indicates the presented token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid indicates the token failed signature or claim checks.
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenService signs and verifies session tokens.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	// NowFunc overrides the clock in tests.
	NowFunc func() time.Time
}

// NewTokenService constructs a TokenService. The secret length is validated
// by config.Load before it reaches here.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

type sessionClaims struct {
	Kind TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// Issue creates a fresh access/refresh pair for the user.
func (s *TokenService) Issue(userID string) (models.SessionTokens, error) {
	if userID == "" {
		return models.SessionTokens{}, errors.New("auth: user id must be provided")
	}

	now := s.now()

	access, err := s.sign(userID, KindAccess, now, s.accessTTL)
	if err != nil {
		return models.SessionTokens{}, err
	}
	refresh, err := s.sign(userID, KindRefresh, now, s.refreshTTL)
	if err != nil {
		return models.SessionTokens{}, err
	}

	return models.SessionTokens{
		AccessToken:      access,
		AccessExpiresAt:  now.Add(s.accessTTL),
		RefreshToken:     refresh,
		RefreshExpiresAt: now.Add(s.refreshTTL),
	}, nil
}

// Verify checks signature, expiry, issuer, and kind, returning the subject
// user id.
func (s *TokenService) Verify(tokenStr string, kind TokenKind) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.Subject == "" || claims.Kind != kind {
		return "", ErrTokenInvalid
	}

	return claims.Subject, nil
}

func (s *TokenService) sign(userID string, kind TokenKind, now time.Time, ttl time.Duration) (string, error) {
	claims := sessionClaims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign %s token: %w", kind, err)
	}
	return signed, nil
}

func (s *TokenService) now() time.Time {
	if s.NowFunc != nil {
		return s.NowFunc()
	}
	return time.Now().UTC()
}
