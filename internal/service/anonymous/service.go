package anonymous

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Service issues and validates anonymous shopper sessions. Each session maps
// a bearer token to the anonymous id that owns a local cart.
type Service struct {
	tokens     *tokenManager
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New() *Service {
	return &Service{
		tokens:     newTokenManager(),
		accessTTL:  3 * time.Hour,
		refreshTTL: 30 * 24 * time.Hour,
	}
}

// Issue mints a fresh anonymous id with an access and a refresh token.
func (s *Service) Issue(ctx context.Context) (accessToken, refreshToken, anonymousID string, err error) {
	anonymousID = uuid.NewString()
	accessToken, err = s.tokens.Issue(anonymousID, s.accessTTL)
	if err != nil {
		return "", "", "", err
	}
	refreshToken, err = s.tokens.Issue(anonymousID, s.refreshTTL)
	if err != nil {
		return "", "", "", err
	}
	return accessToken, refreshToken, anonymousID, nil
}

// Refresh issues a new access token for the session behind a refresh token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	meta, ok := s.tokens.Validate(refreshToken)
	if !ok {
		return "", "", ErrInvalidToken
	}
	access, err := s.tokens.Issue(meta.AnonymousID, s.accessTTL)
	if err != nil {
		return "", "", err
	}
	return access, meta.AnonymousID, nil
}

// LookupByToken resolves a token back to its anonymous id.
func (s *Service) LookupByToken(ctx context.Context, token string) (string, error) {
	meta, ok := s.tokens.Validate(token)
	if !ok {
		return "", ErrInvalidToken
	}
	return meta.AnonymousID, nil
}

// Revoke drops every token for an anonymous id, used after a login merge.
func (s *Service) Revoke(ctx context.Context, anonymousID string) {
	s.tokens.RevokeByID(anonymousID)
}

func (s *Service) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}
