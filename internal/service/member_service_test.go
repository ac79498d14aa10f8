package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/minwonhaeso/esc-server/internal/domain"
	"github.com/minwonhaeso/esc-server/internal/repository"
	"github.com/minwonhaeso/esc-server/internal/security"
)

type memberServiceFixture struct {
	svc           *MemberService
	tokens        *TokenService
	members       *memberRepoState
	verifications *verificationState
	likes         *likeRepoState
	oauth         *oauthRepoState
	mailer        *mailerState
	sideStore     *repository.MemorySideStore
}

func newMemberServiceFixture(refreshTTL, reissueThreshold time.Duration) *memberServiceFixture {
	fx := &memberServiceFixture{
		members:       newMemberRepoState(),
		verifications: newVerificationState(),
		likes:         newLikeRepoState(),
		oauth:         &oauthRepoState{},
		mailer:        &mailerState{},
		sideStore:     repository.NewMemorySideStore(),
	}
	jwtMgr := security.NewJWTManager("esc-server", "esc-clients", "access-secret-0123456789abcdef0123", "refresh-secret-0123456789abcdef012")
	fx.tokens = NewTokenService(
		jwtMgr,
		repository.NewRefreshTokenStore(fx.sideStore),
		repository.NewLogoutAccessTokenStore(fx.sideStore),
		30*time.Minute, refreshTTL, reissueThreshold,
	)
	tx := &serialTransactor{members: fx.members, verifications: fx.verifications, likes: fx.likes, oauth: fx.oauth}
	fx.svc = NewMemberService(fx.members, fx.verifications, tx, plainHasher{}, fx.tokens, fx.mailer, nil, 2*time.Hour)
	return fx
}

func newDefaultMemberFixture() *memberServiceFixture {
	return newMemberServiceFixture(7*24*time.Hour, 3*24*time.Hour)
}

func (fx *memberServiceFixture) seedMember(t *testing.T, email, password string) *domain.Member {
	t.Helper()
	m := &domain.Member{Email: email, Name: "Member", PasswordHash: "plain$" + password, Provider: domain.ProviderLocal}
	if err := fx.members.Create(context.Background(), m); err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return m
}

func (fx *memberServiceFixture) login(t *testing.T, email, password string) *LoginResult {
	t.Helper()
	res, err := fx.svc.Login(context.Background(), LoginInput{Email: email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return res
}

func TestMemberServiceSignUpMatrix(t *testing.T) {
	ctx := context.Background()

	t.Run("valid key signs up exactly once", func(t *testing.T) {
		fx := newDefaultMemberFixture()
		fx.verifications.seed("code-1", "kim@esc.dev", domain.VerificationPurposeSignUp, time.Now().Add(time.Hour))
		in := SignUpInput{Key: "code-1", Email: "kim@esc.dev", Password: "pw-1234", Name: "Kim", ImgURL: "https://img/kim.png"}

		res, err := fx.svc.SignUp(ctx, in)
		if err != nil {
			t.Fatalf("sign up: %v", err)
		}
		if res.Name != "Kim" || res.ImgURL != "https://img/kim.png" {
			t.Fatalf("unexpected result: %+v", res)
		}
		if fx.verifications.has("code-1") {
			t.Fatal("verification record must be consumed")
		}
		stored, _ := fx.members.FindByEmail(ctx, "kim@esc.dev")
		if stored.PasswordHash == "pw-1234" || stored.PasswordHash == "" {
			t.Fatalf("password must be stored hashed, got %q", stored.PasswordHash)
		}

		if _, err := fx.svc.SignUp(ctx, in); !errors.Is(err, ErrVerificationMissing) {
			t.Fatalf("expected ErrVerificationMissing on reuse, got %v", err)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		fx := newDefaultMemberFixture()
		_, err := fx.svc.SignUp(ctx, SignUpInput{Key: "nope", Email: "kim@esc.dev", Password: "pw", Name: "Kim"})
		if !errors.Is(err, ErrVerificationMissing) {
			t.Fatalf("expected ErrVerificationMissing, got %v", err)
		}
	})

	t.Run("expired key", func(t *testing.T) {
		fx := newDefaultMemberFixture()
		fx.verifications.seed("old", "kim@esc.dev", domain.VerificationPurposeSignUp, time.Now().Add(-time.Second))
		_, err := fx.svc.SignUp(ctx, SignUpInput{Key: "old", Email: "kim@esc.dev", Password: "pw", Name: "Kim"})
		if !errors.Is(err, ErrVerificationMissing) {
			t.Fatalf("expected ErrVerificationMissing, got %v", err)
		}
	})

	t.Run("password change code cannot sign up", func(t *testing.T) {
		fx := newDefaultMemberFixture()
		fx.verifications.seed("pc", "kim@esc.dev", domain.VerificationPurposePasswordChange, time.Now().Add(time.Hour))
		_, err := fx.svc.SignUp(ctx, SignUpInput{Key: "pc", Email: "kim@esc.dev", Password: "pw", Name: "Kim"})
		if !errors.Is(err, ErrVerificationMissing) {
			t.Fatalf("expected ErrVerificationMissing, got %v", err)
		}
	})

	t.Run("duplicate email keeps the key", func(t *testing.T) {
		fx := newDefaultMemberFixture()
		fx.seedMember(t, "kim@esc.dev", "pw")
		fx.verifications.seed("code-2", "kim@esc.dev", domain.VerificationPurposeSignUp, time.Now().Add(time.Hour))
		_, err := fx.svc.SignUp(ctx, SignUpInput{Key: "code-2", Email: "kim@esc.dev", Password: "pw", Name: "Kim"})
		if !errors.Is(err, ErrEmailAlreadyRegistered) {
			t.Fatalf("expected ErrEmailAlreadyRegistered, got %v", err)
		}
		if !fx.verifications.has("code-2") {
			t.Fatal("failed sign-up must roll back key consumption")
		}
	})

	t.Run("invalid email with a live key", func(t *testing.T) {
		fx := newDefaultMemberFixture()
		fx.verifications.seed("k", "not-an-email", domain.VerificationPurposeSignUp, time.Now().Add(time.Hour))
		_, err := fx.svc.SignUp(ctx, SignUpInput{Key: "k", Email: "not-an-email", Password: "pw", Name: "Kim"})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("unknown key wins over invalid fields", func(t *testing.T) {
		fx := newDefaultMemberFixture()
		fx.verifications.seed("expired", "kim@esc.dev", domain.VerificationPurposeSignUp, time.Now().Add(-time.Minute))
		cases := []SignUpInput{
			{Key: "no-such-key", Email: "not-an-email", Password: "pw", Name: "Kim"},
			{Key: "", Email: "", Password: "", Name: ""},
			{Key: "no-such-key", Email: "kim@esc.dev", Password: "pw", Name: ""},
			{Key: "expired", Email: "kim@esc.dev", Password: "", Name: "Kim"},
		}
		for _, in := range cases {
			if _, err := fx.svc.SignUp(ctx, in); !errors.Is(err, ErrVerificationMissing) {
				t.Fatalf("SignUp(%+v): expected ErrVerificationMissing, got %v", in, err)
			}
		}
	})
}

func TestMemberServiceConcurrentSignUpConsumesKeyOnce(t *testing.T) {
	fx := newDefaultMemberFixture()
	fx.verifications.seed("race", "race@esc.dev", domain.VerificationPurposeSignUp, time.Now().Add(time.Hour))

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		missing   int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := fx.svc.SignUp(context.Background(), SignUpInput{
				Key: "race", Email: "race@esc.dev", Password: "pw", Name: fmt.Sprintf("racer-%d", i),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrVerificationMissing):
				missing++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if successes != 1 || missing != workers-1 {
		t.Fatalf("expected 1 success and %d VerificationMissing, got %d/%d", workers-1, successes, missing)
	}
}

func TestMemberServiceCheckEmailTaken(t *testing.T) {
	fx := newDefaultMemberFixture()
	fx.seedMember(t, "kim@esc.dev", "pw")

	if err := fx.svc.CheckEmailTaken(context.Background(), "KIM@esc.dev"); !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Fatalf("expected ErrEmailAlreadyRegistered, got %v", err)
	}
	if err := fx.svc.CheckEmailTaken(context.Background(), "lee@esc.dev"); err != nil {
		t.Fatalf("expected free email, got %v", err)
	}
}

func TestMemberServiceVerificationMail(t *testing.T) {
	ctx := context.Background()
	fx := newDefaultMemberFixture()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fx.svc.now = func() time.Time { return fixed }
	fx.svc.newCode = func() string { return "code-xyz" }

	key, err := fx.svc.SendVerificationEmail(ctx, "kim@esc.dev")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if key != "code-xyz" {
		t.Fatalf("expected the code to be the key, got %q", key)
	}
	mail := fx.mailer.last()
	if mail.Subject != "[ESC] 이메일 인증 안내" || mail.HTMLBody != "<p>이메일 인증 코드 : code-xyz</p>" {
		t.Fatalf("unexpected mail: %+v", mail)
	}
	v, err := fx.verifications.FindByKey(ctx, key)
	if err != nil {
		t.Fatalf("find record: %v", err)
	}
	if !v.ExpiresAt.Equal(fixed.Add(2 * time.Hour)) {
		t.Fatalf("expected 2h expiry, got %s", v.ExpiresAt)
	}

	if err := fx.svc.ConfirmVerification(ctx, key); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !fx.verifications.has(key) {
		t.Fatal("confirm must leave the record for sign-up")
	}
	if err := fx.svc.ConfirmVerification(ctx, "unknown"); !errors.Is(err, ErrVerificationExpired) {
		t.Fatalf("expected ErrVerificationExpired for absent key, got %v", err)
	}

	fx.svc.now = func() time.Time { return fixed.Add(2 * time.Hour) }
	if err := fx.svc.ConfirmVerification(ctx, key); !errors.Is(err, ErrVerificationExpired) {
		t.Fatalf("expected ErrVerificationExpired at expiry, got %v", err)
	}
}

func TestMemberServiceVerificationMailFailurePropagates(t *testing.T) {
	fx := newDefaultMemberFixture()
	fx.mailer.failErr = errors.New("smtp down")
	fx.svc.newCode = func() string { return "lost" }

	_, err := fx.svc.SendVerificationEmail(context.Background(), "kim@esc.dev")
	if err == nil || !strings.Contains(err.Error(), "smtp down") {
		t.Fatalf("expected mail error, got %v", err)
	}
	if fx.verifications.has("lost") {
		t.Fatal("undelivered code must not stay usable")
	}
}

func TestMemberServiceLoginMatrix(t *testing.T) {
	ctx := context.Background()
	fx := newDefaultMemberFixture()
	fx.seedMember(t, "kim@esc.dev", "pw-good")

	if _, err := fx.svc.Login(ctx, LoginInput{Email: "ghost@esc.dev", Password: "x"}); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
	if _, err := fx.svc.Login(ctx, LoginInput{Email: "kim@esc.dev", Password: "pw-bad"}); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}

	first := fx.login(t, "kim@esc.dev", "pw-good")
	if first.AccessToken == "" || first.RefreshToken == "" || first.Email != "kim@esc.dev" {
		t.Fatalf("unexpected login result: %+v", first)
	}
	second := fx.login(t, "kim@esc.dev", "pw-good")
	if first.RefreshToken == second.RefreshToken {
		t.Fatal("expected a new refresh token on second login")
	}

	if _, err := fx.svc.Reissue(ctx, "kim@esc.dev", "Bearer "+first.RefreshToken); !errors.Is(err, ErrTokenMismatch) {
		t.Fatalf("expected superseded refresh token to mismatch, got %v", err)
	}
	if _, err := fx.svc.Reissue(ctx, "kim@esc.dev", "Bearer "+second.RefreshToken); err != nil {
		t.Fatalf("current refresh token should reissue: %v", err)
	}
}

func TestMemberServiceLogoutDenylistsAccessToken(t *testing.T) {
	ctx := context.Background()
	fx := newDefaultMemberFixture()
	fx.seedMember(t, "kim@esc.dev", "pw")
	session := fx.login(t, "kim@esc.dev", "pw")

	if _, err := fx.tokens.ValidateAccess(ctx, session.AccessToken); err != nil {
		t.Fatalf("access token should be valid before logout: %v", err)
	}
	if err := fx.svc.Logout(ctx, "kim@esc.dev", "Bearer "+session.AccessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := fx.tokens.ValidateAccess(ctx, session.AccessToken); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected denylisted token rejection, got %v", err)
	}
	if _, err := fx.svc.Reissue(ctx, "kim@esc.dev", "Bearer "+session.RefreshToken); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired after logout, got %v", err)
	}

	if err := fx.svc.Logout(ctx, "kim@esc.dev", session.AccessToken); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected malformed bearer rejection, got %v", err)
	}
	if err := fx.svc.Logout(ctx, "", "Bearer "+session.AccessToken); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected missing identity rejection, got %v", err)
	}
}

func TestMemberServiceReissueThreshold(t *testing.T) {
	ctx := context.Background()

	t.Run("below threshold rotates the refresh token", func(t *testing.T) {
		fx := newMemberServiceFixture(time.Hour, 2*time.Hour)
		fx.seedMember(t, "kim@esc.dev", "pw")
		session := fx.login(t, "kim@esc.dev", "pw")

		pair, err := fx.svc.Reissue(ctx, "kim@esc.dev", "Bearer "+session.RefreshToken)
		if err != nil {
			t.Fatalf("reissue: %v", err)
		}
		if pair.RefreshToken == session.RefreshToken {
			t.Fatal("expected a rotated refresh token")
		}
		stored, _ := repository.NewRefreshTokenStore(fx.sideStore).Find(ctx, "kim@esc.dev")
		if stored != pair.RefreshToken {
			t.Fatal("side-store must hold the rotated token")
		}
	})

	t.Run("above threshold keeps the refresh token", func(t *testing.T) {
		fx := newMemberServiceFixture(7*24*time.Hour, 3*24*time.Hour)
		fx.seedMember(t, "kim@esc.dev", "pw")
		session := fx.login(t, "kim@esc.dev", "pw")

		pair, err := fx.svc.Reissue(ctx, "kim@esc.dev", "Bearer "+session.RefreshToken)
		if err != nil {
			t.Fatalf("reissue: %v", err)
		}
		if pair.RefreshToken != session.RefreshToken {
			t.Fatal("expected the same refresh token above the threshold")
		}
		if pair.AccessToken == "" {
			t.Fatal("expected a new access token")
		}
	})

	t.Run("nothing stored", func(t *testing.T) {
		fx := newDefaultMemberFixture()
		if _, err := fx.svc.Reissue(ctx, "kim@esc.dev", "Bearer whatever"); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})
}

func TestMemberServicePasswordChangeFlow(t *testing.T) {
	ctx := context.Background()
	fx := newDefaultMemberFixture()
	fx.seedMember(t, "kim@esc.dev", "old-pw")
	fx.svc.newCode = func() string { return "pc-code" }

	code, err := fx.svc.ChangePasswordRequest(ctx, "kim@esc.dev")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if mail := fx.mailer.last(); mail.Subject != "[ESC] 비밀번호 변경 안내" || mail.HTMLBody != "<p>비밀번호 변경 코드: pc-code</p>" {
		t.Fatalf("unexpected mail: %+v", mail)
	}
	if err := fx.svc.ConfirmVerification(ctx, code); !errors.Is(err, ErrVerificationExpired) {
		t.Fatalf("password code must not confirm a sign-up, got %v", err)
	}
	if err := fx.svc.ChangePasswordConfirm(ctx, code); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := fx.svc.ChangePasswordConfirm(ctx, code); !errors.Is(err, ErrVerificationExpired) {
		t.Fatalf("expected single use, got %v", err)
	}

	err = fx.svc.ChangePassword(ctx, ChangePasswordInput{Email: "kim@esc.dev", PrePassword: "old-pw", NewPassword: "new-pw", ConfirmPassword: "new-pw-typo"})
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch for confirmation mismatch, got %v", err)
	}
	err = fx.svc.ChangePassword(ctx, ChangePasswordInput{Email: "kim@esc.dev", PrePassword: "wrong", NewPassword: "new-pw", ConfirmPassword: "new-pw"})
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch for wrong previous password, got %v", err)
	}
	err = fx.svc.ChangePassword(ctx, ChangePasswordInput{Email: "ghost@esc.dev", PrePassword: "x", NewPassword: "y", ConfirmPassword: "y"})
	if !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}

	if err := fx.svc.ChangePassword(ctx, ChangePasswordInput{Email: "kim@esc.dev", PrePassword: "old-pw", NewPassword: "new-pw", ConfirmPassword: "new-pw"}); err != nil {
		t.Fatalf("change password: %v", err)
	}
	fx.login(t, "kim@esc.dev", "new-pw")
}

func TestMemberServiceProfile(t *testing.T) {
	ctx := context.Background()
	fx := newDefaultMemberFixture()
	fx.seedMember(t, "kim@esc.dev", "pw")

	nick, img := "kimmy", "https://img/new.png"
	info, err := fx.svc.PatchProfile(ctx, "kim@esc.dev", PatchProfileInput{Nickname: &nick, ImgURL: &img})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if info.Nickname != nick || info.ImgURL != img {
		t.Fatalf("expected both fields applied, got %+v", info)
	}

	if _, err := fx.svc.Info(ctx, ""); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := fx.svc.Info(ctx, "ghost@esc.dev"); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated for unknown member, got %v", err)
	}
	if _, err := fx.svc.UploadAvatar(ctx, "kim@esc.dev", strings.NewReader("x"), 1, "image/png"); !errors.Is(err, ErrStorageDisabled) {
		t.Fatalf("expected ErrStorageDisabled, got %v", err)
	}
}

func TestMemberServiceDeleteAccount(t *testing.T) {
	ctx := context.Background()
	fx := newDefaultMemberFixture()
	m := fx.seedMember(t, "kim@esc.dev", "pw")
	_ = fx.likes.Like(ctx, m.ID, 10)
	_ = fx.oauth.Create(ctx, &domain.OAuthAccount{MemberID: m.ID, Provider: domain.ProviderGoogle, ProviderUserID: "g-1"})
	session := fx.login(t, "kim@esc.dev", "pw")

	if err := fx.svc.DeleteAccount(ctx, "kim@esc.dev"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok, _ := fx.members.ExistsByEmail(ctx, "kim@esc.dev"); ok {
		t.Fatal("member must be gone")
	}
	if ok, _ := fx.likes.Exists(ctx, m.ID, 10); ok {
		t.Fatal("likes must be removed with the member")
	}
	if _, err := fx.oauth.FindByProvider(ctx, domain.ProviderGoogle, "g-1"); !errors.Is(err, repository.ErrOAuthAccountNotFound) {
		t.Fatalf("oauth link must be removed, got %v", err)
	}
	if _, err := fx.svc.Reissue(ctx, "kim@esc.dev", "Bearer "+session.RefreshToken); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected refresh token revoked, got %v", err)
	}
	if err := fx.svc.DeleteAccount(ctx, "kim@esc.dev"); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated on second delete, got %v", err)
	}
}
