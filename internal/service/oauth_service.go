package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/minwonhaeso/esc-server/internal/config"
	"github.com/minwonhaeso/esc-server/internal/domain"
	"github.com/minwonhaeso/esc-server/internal/observability"
	"github.com/minwonhaeso/esc-server/internal/repository"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type OAuthUserInfo struct {
	ProviderUserID string
	Email          string
	Name           string
	Picture        string
	EmailVerified  bool
}

//go:generate mockgen -source=oauth_service.go -destination=mock_oauth_provider_test.go -package=service OAuthProvider
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchUserInfo(ctx context.Context, token *oauth2.Token) (*OAuthUserInfo, error)
}

type GoogleOAuthProvider struct {
	cfg *oauth2.Config
}

func NewGoogleOAuthProvider(cfg *config.Config) *GoogleOAuthProvider {
	return &GoogleOAuthProvider{cfg: &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}}
}

func (p *GoogleOAuthProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

func (p *GoogleOAuthProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.cfg.Exchange(ctx, code)
}

func (p *GoogleOAuthProvider) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*OAuthUserInfo, error) {
	client := p.cfg.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://openidconnect.googleapis.com/v1/userinfo", nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status: %d", resp.StatusCode)
	}
	var body struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Sub == "" || body.Email == "" {
		return nil, fmt.Errorf("missing required userinfo fields")
	}
	return &OAuthUserInfo{ProviderUserID: body.Sub, Email: strings.ToLower(body.Email), Name: body.Name, Picture: body.Picture, EmailVerified: body.EmailVerified}, nil
}

type OAuthService struct {
	provider  OAuthProvider
	members   repository.MemberRepository
	oauthRepo repository.OAuthRepository
	tokens    *TokenService
}

func NewOAuthService(provider OAuthProvider, members repository.MemberRepository, oauthRepo repository.OAuthRepository, tokens *TokenService) *OAuthService {
	return &OAuthService{provider: provider, members: members, oauthRepo: oauthRepo, tokens: tokens}
}

func (s *OAuthService) LoginURL(state string) string {
	if s.provider == nil {
		return ""
	}
	return s.provider.AuthCodeURL(state)
}

// HandleGoogleCallback exchanges the code, links or creates the member and
// issues tokens the same way a password login does.
func (s *OAuthService) HandleGoogleCallback(ctx context.Context, code string) (*LoginResult, error) {
	if s.provider == nil {
		return nil, ErrGoogleAuthDisabled
	}
	exchangeStart := time.Now()
	token, err := s.provider.Exchange(ctx, code)
	observability.RecordGoogleOAuthRequestDuration(ctx, "exchange", oauthStatus(err), time.Since(exchangeStart))
	if err != nil {
		observability.RecordGoogleOAuthError(ctx, classifyOAuthError(err))
		return nil, err
	}
	userInfoStart := time.Now()
	info, err := s.provider.FetchUserInfo(ctx, token)
	observability.RecordGoogleOAuthRequestDuration(ctx, "userinfo", oauthStatus(err), time.Since(userInfoStart))
	if err != nil {
		observability.RecordGoogleOAuthError(ctx, classifyOAuthError(err))
		return nil, err
	}
	if info == nil {
		observability.RecordGoogleOAuthError(ctx, "invalid_userinfo")
		return nil, fmt.Errorf("missing required userinfo fields")
	}
	if !info.EmailVerified {
		observability.RecordGoogleOAuthError(ctx, "email_not_verified")
		return nil, fmt.Errorf("google email not verified")
	}

	member, err := s.resolveMember(ctx, info)
	if err != nil {
		return nil, err
	}
	pair, err := s.tokens.Issue(ctx, member.Email)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Email:        member.Email,
		ImgURL:       member.ImgURL,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// resolveMember matches existing members by the same lowercased email that
// local sign-up stores.
func (s *OAuthService) resolveMember(ctx context.Context, info *OAuthUserInfo) (*domain.Member, error) {
	email := normalizeEmail(info.Email)
	acct, err := s.oauthRepo.FindByProvider(ctx, domain.ProviderGoogle, info.ProviderUserID)
	switch {
	case err == nil:
		member, err := s.members.FindByID(ctx, acct.MemberID)
		if err != nil {
			return nil, err
		}
		return member, nil
	case !errors.Is(err, repository.ErrOAuthAccountNotFound):
		return nil, err
	}

	member, err := s.members.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrMemberNotFound):
		member = &domain.Member{
			Email:    email,
			Name:     info.Name,
			Nickname: info.Name,
			ImgURL:   info.Picture,
			Provider: domain.ProviderGoogle,
			Role:     domain.RoleUser,
		}
		if member.Name == "" {
			member.Name = email
		}
		if err := s.members.Create(ctx, member); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	if err := s.oauthRepo.Create(ctx, &domain.OAuthAccount{
		MemberID:       member.ID,
		Provider:       domain.ProviderGoogle,
		ProviderUserID: info.ProviderUserID,
	}); err != nil {
		return nil, err
	}
	return member, nil
}

func oauthStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func classifyOAuthError(err error) string {
	if err == nil {
		return "none"
	}
	if errors.Is(err, context.Canceled) {
		return "context_canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "userinfo status:"):
		return "userinfo_status"
	case strings.Contains(msg, "missing required userinfo fields"):
		return "invalid_userinfo"
	case strings.Contains(msg, "oauth2"):
		return "oauth2_exchange"
	default:
		return "other"
	}
}
