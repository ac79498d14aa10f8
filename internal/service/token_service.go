package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/minwonhaeso/esc-server/internal/observability"
	"github.com/minwonhaeso/esc-server/internal/repository"
	"github.com/minwonhaeso/esc-server/internal/security"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type TokenIssuer interface {
	SignAccessToken(email string, ttl time.Duration) (string, error)
	SignRefreshToken(email string, ttl time.Duration) (string, error)
	ParseAccessToken(token string) (*security.Claims, error)
	ParseRefreshToken(token string) (*security.Claims, error)
	RemainingAccessTTL(token string) (time.Duration, error)
	RemainingRefreshTTL(token string) (time.Duration, error)
}

type TokenService struct {
	issuer           TokenIssuer
	refreshTokens    repository.RefreshTokenStore
	denylist         repository.LogoutAccessTokenStore
	accessTTL        time.Duration
	refreshTTL       time.Duration
	reissueThreshold time.Duration
}

func NewTokenService(
	issuer TokenIssuer,
	refreshTokens repository.RefreshTokenStore,
	denylist repository.LogoutAccessTokenStore,
	accessTTL, refreshTTL, reissueThreshold time.Duration,
) *TokenService {
	return &TokenService{
		issuer:           issuer,
		refreshTokens:    refreshTokens,
		denylist:         denylist,
		accessTTL:        accessTTL,
		refreshTTL:       refreshTTL,
		reissueThreshold: reissueThreshold,
	}
}

// Issue mints a fresh pair and replaces whatever refresh token the member held.
func (s *TokenService) Issue(ctx context.Context, email string) (TokenPair, error) {
	access, err := s.issuer.SignAccessToken(email, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.issuer.SignRefreshToken(email, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.refreshTokens.Save(ctx, email, refresh, s.refreshTTL); err != nil {
		return TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Rotate hands out a new access token. The refresh token is replaced only
// once its remaining lifetime drops below the reissue threshold.
func (s *TokenService) Rotate(ctx context.Context, email, refreshToken string) (TokenPair, error) {
	stored, err := s.refreshTokens.Find(ctx, email)
	if errors.Is(err, repository.ErrSessionEntryNotFound) {
		return TokenPair{}, ErrSessionExpired
	}
	if err != nil {
		return TokenPair{}, fmt.Errorf("load refresh token: %w", err)
	}
	if stored != refreshToken {
		return TokenPair{}, ErrTokenMismatch
	}

	remaining, err := s.issuer.RemainingRefreshTTL(stored)
	if err != nil {
		return TokenPair{}, ErrSessionExpired
	}
	access, err := s.issuer.SignAccessToken(email, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	if remaining >= s.reissueThreshold {
		return TokenPair{AccessToken: access, RefreshToken: stored}, nil
	}

	refresh, err := s.issuer.SignRefreshToken(email, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.refreshTokens.Save(ctx, email, refresh, s.refreshTTL); err != nil {
		return TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Revoke drops the refresh token and denylists the access token for the rest
// of its own lifetime.
func (s *TokenService) Revoke(ctx context.Context, email, accessToken string) error {
	remaining, err := s.issuer.RemainingAccessTTL(accessToken)
	if err != nil {
		return ErrNotAuthenticated
	}
	if err := s.refreshTokens.Delete(ctx, email); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	if remaining <= 0 {
		return nil
	}
	if err := s.denylist.Save(ctx, accessToken, email, remaining); err != nil {
		return fmt.Errorf("denylist access token: %w", err)
	}
	return nil
}

func (s *TokenService) RevokeRefresh(ctx context.Context, email string) error {
	return s.refreshTokens.Delete(ctx, email)
}

// ValidateAccess parses an access token and rejects denylisted ones.
func (s *TokenService) ValidateAccess(ctx context.Context, accessToken string) (*security.Claims, error) {
	claims, err := s.issuer.ParseAccessToken(accessToken)
	if err != nil {
		observability.RecordAccessTokenValidation(ctx, "invalid", "header")
		return nil, ErrNotAuthenticated
	}
	revoked, err := s.denylist.Exists(ctx, accessToken)
	if err != nil {
		observability.RecordAccessTokenValidation(ctx, "store_error", "header")
		return nil, fmt.Errorf("check access token denylist: %w", err)
	}
	if revoked {
		observability.RecordAccessTokenValidation(ctx, "revoked", "header")
		return nil, ErrNotAuthenticated
	}
	observability.RecordAccessTokenValidation(ctx, "ok", "header")
	return claims, nil
}

// RefreshSubject returns the member email carried by a valid refresh token.
func (s *TokenService) RefreshSubject(refreshToken string) (string, error) {
	claims, err := s.issuer.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", ErrSessionExpired
	}
	return claims.Subject, nil
}
