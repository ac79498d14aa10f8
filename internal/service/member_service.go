package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minwonhaeso/esc-server/internal/domain"
	"github.com/minwonhaeso/esc-server/internal/observability"
	"github.com/minwonhaeso/esc-server/internal/repository"
	"github.com/minwonhaeso/esc-server/internal/security"
)

const (
	signUpMailSubject         = "[ESC] 이메일 인증 안내"
	passwordChangeMailSubject = "[ESC] 비밀번호 변경 안내"
)

type SignUpInput struct {
	Key      string
	Email    string
	Password string
	Name     string
	Nickname string
	ImgURL   string
}

type SignUpResult struct {
	Name   string `json:"name"`
	ImgURL string `json:"image"`
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Email        string `json:"email"`
	ImgURL       string `json:"imgUrl"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordInput struct {
	Email           string
	PrePassword     string
	NewPassword     string
	ConfirmPassword string
}

type PatchProfileInput struct {
	Nickname *string
	ImgURL   *string
}

type MemberInfo struct {
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	ImgURL   string `json:"imgUrl"`
}

// AvatarStorage stores avatar objects and returns the URL to record on the member.
type AvatarStorage interface {
	UploadAvatar(ctx context.Context, memberID uint, file io.Reader, size int64, contentType string) (string, error)
}

// MemberService coordinates the member and session lifecycle. Every
// authenticated operation receives the caller's email explicitly.
type MemberService struct {
	members         repository.MemberRepository
	verifications   repository.EmailVerificationRepository
	tx              repository.Transactor
	hasher          security.PasswordHasher
	tokens          *TokenService
	mailer          Mailer
	avatars         AvatarStorage
	verificationTTL time.Duration
	now             func() time.Time
	newCode         func() string
}

func NewMemberService(
	members repository.MemberRepository,
	verifications repository.EmailVerificationRepository,
	tx repository.Transactor,
	hasher security.PasswordHasher,
	tokens *TokenService,
	mailer Mailer,
	avatars AvatarStorage,
	verificationTTL time.Duration,
) *MemberService {
	return &MemberService{
		members:         members,
		verifications:   verifications,
		tx:              tx,
		hasher:          hasher,
		tokens:          tokens,
		mailer:          mailer,
		avatars:         avatars,
		verificationTTL: verificationTTL,
		now:             time.Now,
		newCode:         uuid.NewString,
	}
}

func (s *MemberService) SignUp(ctx context.Context, in SignUpInput) (res *SignUpResult, err error) {
	start := time.Now()
	defer func() { recordMemberOperation(ctx, "sign_up", err, start) }()

	// An unknown or expired key fails before any field is looked at.
	if _, err := s.liveVerification(ctx, in.Key, domain.VerificationPurposeSignUp); err != nil {
		if errors.Is(err, ErrVerificationExpired) {
			return nil, ErrVerificationMissing
		}
		return nil, err
	}

	email := normalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	member := &domain.Member{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Nickname:     strings.TrimSpace(in.Nickname),
		ImgURL:       strings.TrimSpace(in.ImgURL),
		Provider:     domain.ProviderLocal,
		Role:         domain.RoleUser,
	}

	err = s.tx.WithinTransaction(ctx, func(tx repository.TxRepositories) error {
		if err := tx.Verifications.ConsumeActive(ctx, in.Key, email, domain.VerificationPurposeSignUp, s.now()); err != nil {
			if errors.Is(err, repository.ErrVerificationNotFound) {
				return ErrVerificationMissing
			}
			return err
		}
		if err := tx.Members.Create(ctx, member); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return ErrEmailAlreadyRegistered
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, classifySignUpError(err)
	}
	return &SignUpResult{Name: member.Name, ImgURL: member.ImgURL}, nil
}

// classifySignUpError maps store aborts raised at commit time. A serialization
// failure means a concurrent sign-up consumed the same key first.
func classifySignUpError(err error) error {
	switch {
	case errors.Is(err, ErrVerificationMissing), errors.Is(err, ErrEmailAlreadyRegistered):
		return err
	case repository.IsSerializationFailure(err):
		return ErrVerificationMissing
	case repository.IsUniqueViolation(err):
		return ErrEmailAlreadyRegistered
	default:
		return fmt.Errorf("sign up: %w", err)
	}
}

func (s *MemberService) CheckEmailTaken(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	exists, err := s.members.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailAlreadyRegistered
	}
	return nil
}

func (s *MemberService) SendVerificationEmail(ctx context.Context, email string) (key string, err error) {
	start := time.Now()
	defer func() { recordMemberOperation(ctx, "send_verification", err, start) }()

	return s.issueCode(ctx, email, domain.VerificationPurposeSignUp, signUpMailSubject, "<p>이메일 인증 코드 : %s</p>")
}

func (s *MemberService) ConfirmVerification(ctx context.Context, key string) error {
	v, err := s.liveVerification(ctx, key, domain.VerificationPurposeSignUp)
	if err != nil {
		return err
	}
	if v.Key != key {
		return ErrKeyMismatch
	}
	return nil
}

func (s *MemberService) Login(ctx context.Context, in LoginInput) (res *LoginResult, err error) {
	start := time.Now()
	defer func() { recordMemberOperation(ctx, "login", err, start) }()

	email := normalizeEmail(in.Email)
	member, err := s.members.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	if err := s.checkPassword(member, in.Password); err != nil {
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

// Logout expects the raw Authorization header value for the access token.
func (s *MemberService) Logout(ctx context.Context, email, accessBearer string) (err error) {
	start := time.Now()
	defer func() { recordMemberOperation(ctx, "logout", err, start) }()

	if email == "" {
		return ErrNotAuthenticated
	}
	accessToken, err := security.ResolveBearer(accessBearer)
	if err != nil {
		return ErrNotAuthenticated
	}
	return s.tokens.Revoke(ctx, email, accessToken)
}

func (s *MemberService) Reissue(ctx context.Context, email, refreshBearer string) (pair TokenPair, err error) {
	start := time.Now()
	defer func() { recordMemberOperation(ctx, "reissue", err, start) }()

	if email == "" {
		return TokenPair{}, ErrNotAuthenticated
	}
	refreshToken, err := security.ResolveBearer(refreshBearer)
	if err != nil {
		return TokenPair{}, ErrNotAuthenticated
	}
	return s.tokens.Rotate(ctx, email, refreshToken)
}

func (s *MemberService) ChangePasswordRequest(ctx context.Context, email string) (code string, err error) {
	start := time.Now()
	defer func() { recordMemberOperation(ctx, "change_password_request", err, start) }()

	return s.issueCode(ctx, email, domain.VerificationPurposePasswordChange, passwordChangeMailSubject, "<p>비밀번호 변경 코드: %s</p>")
}

// ChangePasswordConfirm consumes the code whether or not the key check passes.
func (s *MemberService) ChangePasswordConfirm(ctx context.Context, key string) error {
	v, err := s.liveVerification(ctx, key, domain.VerificationPurposePasswordChange)
	if err != nil {
		return err
	}
	if err := s.verifications.DeleteByKey(ctx, v.Key); err != nil {
		if errors.Is(err, repository.ErrVerificationNotFound) {
			return ErrVerificationExpired
		}
		return err
	}
	if v.Key != key {
		return ErrKeyMismatch
	}
	return nil
}

func (s *MemberService) ChangePassword(ctx context.Context, in ChangePasswordInput) (err error) {
	start := time.Now()
	defer func() { recordMemberOperation(ctx, "change_password", err, start) }()

	member, err := s.members.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return ErrMemberNotFound
		}
		return err
	}
	if err := s.checkPassword(member, in.PrePassword); err != nil {
		return err
	}
	if in.NewPassword == "" || in.NewPassword != in.ConfirmPassword {
		return ErrPasswordMismatch
	}
	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.updateMember(ctx, member.Email, map[string]any{"password_hash": hash})
}

func (s *MemberService) Info(ctx context.Context, email string) (*MemberInfo, error) {
	if email == "" {
		return nil, ErrNotAuthenticated
	}
	member, err := s.members.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	return toMemberInfo(member), nil
}

func (s *MemberService) PatchProfile(ctx context.Context, email string, in PatchProfileInput) (*MemberInfo, error) {
	if email == "" {
		return nil, ErrNotAuthenticated
	}
	updates := map[string]any{}
	if in.Nickname != nil {
		updates["nickname"] = strings.TrimSpace(*in.Nickname)
	}
	if in.ImgURL != nil {
		updates["img_url"] = strings.TrimSpace(*in.ImgURL)
	}
	if len(updates) > 0 {
		if err := s.updateMember(ctx, email, updates); err != nil {
			if errors.Is(err, ErrMemberNotFound) {
				return nil, ErrNotAuthenticated
			}
			return nil, err
		}
	}
	return s.Info(ctx, email)
}

func (s *MemberService) UploadAvatar(ctx context.Context, email string, file io.Reader, size int64, contentType string) (*MemberInfo, error) {
	if email == "" {
		return nil, ErrNotAuthenticated
	}
	if s.avatars == nil {
		return nil, ErrStorageDisabled
	}
	member, err := s.members.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	url, err := s.avatars.UploadAvatar(ctx, member.ID, file, size, contentType)
	if err != nil {
		return nil, err
	}
	if err := s.updateMember(ctx, email, map[string]any{"img_url": url}); err != nil {
		return nil, err
	}
	return s.Info(ctx, email)
}

// DeleteAccount removes the member with its likes and OAuth links, then
// revokes the stored refresh token.
func (s *MemberService) DeleteAccount(ctx context.Context, email string) (err error) {
	start := time.Now()
	defer func() { recordMemberOperation(ctx, "delete_account", err, start) }()

	if email == "" {
		return ErrNotAuthenticated
	}
	err = s.tx.WithinTransaction(ctx, func(tx repository.TxRepositories) error {
		member, err := tx.Members.FindByEmail(ctx, email)
		if err != nil {
			return err
		}
		if err := tx.Likes.DeleteByMemberID(ctx, member.ID); err != nil {
			return err
		}
		if err := tx.OAuth.DeleteByMemberID(ctx, member.ID); err != nil {
			return err
		}
		return tx.Members.DeleteByEmail(ctx, email)
	})
	if errors.Is(err, repository.ErrMemberNotFound) {
		return ErrNotAuthenticated
	}
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if err := s.tokens.RevokeRefresh(ctx, email); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (s *MemberService) issueCode(ctx context.Context, email, purpose, subject, bodyFormat string) (string, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return "", err
	}
	now := s.now().UTC()
	code := s.newCode()
	v := &domain.EmailVerification{
		Key:       code,
		Email:     email,
		Purpose:   purpose,
		CreatedAt: now,
		ExpiresAt: now.Add(s.verificationTTL),
	}
	if err := s.verifications.Create(ctx, v); err != nil {
		return "", fmt.Errorf("store verification: %w", err)
	}
	err := s.mailer.Send(ctx, Mail{
		To:       email,
		Subject:  subject,
		HTMLBody: fmt.Sprintf(bodyFormat, code),
		Purpose:  purpose,
	})
	if err != nil {
		_ = s.verifications.DeleteByKey(ctx, code)
		return "", fmt.Errorf("deliver %s mail: %w", purpose, err)
	}
	return code, nil
}

func (s *MemberService) liveVerification(ctx context.Context, key, purpose string) (*domain.EmailVerification, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrVerificationExpired
	}
	v, err := s.verifications.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrVerificationNotFound) {
			return nil, ErrVerificationExpired
		}
		return nil, err
	}
	if v.Purpose != purpose || v.Expired(s.now()) {
		return nil, ErrVerificationExpired
	}
	return v, nil
}

func (s *MemberService) checkPassword(member *domain.Member, password string) error {
	if member.PasswordHash == "" || password == "" {
		return ErrPasswordMismatch
	}
	ok, err := s.hasher.Verify(member.PasswordHash, password)
	if err != nil || !ok {
		return ErrPasswordMismatch
	}
	return nil
}

func (s *MemberService) updateMember(ctx context.Context, email string, updates map[string]any) error {
	if err := s.members.UpdateFields(ctx, email, updates); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return ErrMemberNotFound
		}
		return err
	}
	return nil
}

func toMemberInfo(m *domain.Member) *MemberInfo {
	return &MemberInfo{Name: m.Name, Nickname: m.Nickname, Email: m.Email, ImgURL: m.ImgURL}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return nil
}

func recordMemberOperation(ctx context.Context, op string, err error, start time.Time) {
	observability.RecordMemberOperation(ctx, op, memberOutcome(err), time.Since(start))
}

func memberOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrVerificationMissing):
		return "verification_missing"
	case errors.Is(err, ErrEmailAlreadyRegistered):
		return "email_taken"
	case errors.Is(err, ErrMemberNotFound):
		return "member_not_found"
	case errors.Is(err, ErrPasswordMismatch):
		return "password_mismatch"
	case errors.Is(err, ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, ErrTokenMismatch):
		return "token_mismatch"
	case errors.Is(err, ErrNotAuthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}
