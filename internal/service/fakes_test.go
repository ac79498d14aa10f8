package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/minwonhaeso/esc-server/internal/domain"
	"github.com/minwonhaeso/esc-server/internal/repository"
)

type memberRepoState struct {
	mu      sync.Mutex
	nextID  uint
	byEmail map[string]*domain.Member
}

func newMemberRepoState() *memberRepoState {
	return &memberRepoState{nextID: 1, byEmail: map[string]*domain.Member{}}
}

func (r *memberRepoState) FindByEmail(_ context.Context, email string) (*domain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrMemberNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *memberRepoState) FindByID(_ context.Context, id uint) (*domain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.byEmail {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repository.ErrMemberNotFound
}

func (r *memberRepoState) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *memberRepoState) Create(_ context.Context, member *domain.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[member.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	member.ID = r.nextID
	r.nextID++
	cp := *member
	r.byEmail[member.Email] = &cp
	return nil
}

func (r *memberRepoState) UpdateFields(_ context.Context, email string, updates map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byEmail[email]
	if !ok {
		return repository.ErrMemberNotFound
	}
	for k, v := range updates {
		switch k {
		case "nickname":
			m.Nickname = v.(string)
		case "img_url":
			m.ImgURL = v.(string)
		case "password_hash":
			m.PasswordHash = v.(string)
		}
	}
	return nil
}

func (r *memberRepoState) DeleteByEmail(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[email]; !ok {
		return repository.ErrMemberNotFound
	}
	delete(r.byEmail, email)
	return nil
}

type verificationState struct {
	mu    sync.Mutex
	byKey map[string]domain.EmailVerification
}

func newVerificationState() *verificationState {
	return &verificationState{byKey: map[string]domain.EmailVerification{}}
}

func (r *verificationState) seed(key, email, purpose string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKey[key] = domain.EmailVerification{Key: key, Email: email, Purpose: purpose, ExpiresAt: expiresAt}
}

func (r *verificationState) has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byKey[key]
	return ok
}

func (r *verificationState) snapshot() map[string]domain.EmailVerification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]domain.EmailVerification, len(r.byKey))
	for k, v := range r.byKey {
		out[k] = v
	}
	return out
}

func (r *verificationState) restore(snap map[string]domain.EmailVerification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKey = snap
}

func (r *verificationState) Create(_ context.Context, v *domain.EmailVerification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKey[v.Key] = *v
	return nil
}

func (r *verificationState) FindByKey(_ context.Context, key string) (*domain.EmailVerification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.byKey[key]
	if !ok {
		return nil, repository.ErrVerificationNotFound
	}
	return &v, nil
}

func (r *verificationState) ConsumeActive(_ context.Context, key, email, purpose string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.byKey[key]
	if !ok || v.Email != email || v.Purpose != purpose || !now.Before(v.ExpiresAt) {
		return repository.ErrVerificationNotFound
	}
	delete(r.byKey, key)
	return nil
}

func (r *verificationState) DeleteByKey(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byKey[key]; !ok {
		return repository.ErrVerificationNotFound
	}
	delete(r.byKey, key)
	return nil
}

func (r *verificationState) CleanupExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, v := range r.byKey {
		if !now.Before(v.ExpiresAt) {
			delete(r.byKey, k)
			n++
		}
	}
	return n, nil
}

type likeRepoState struct {
	mu      sync.Mutex
	likes   map[[2]uint]struct{}
	deleted []uint
}

func newLikeRepoState() *likeRepoState {
	return &likeRepoState{likes: map[[2]uint]struct{}{}}
}

func (r *likeRepoState) Like(_ context.Context, memberID, stadiumID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.likes[[2]uint{memberID, stadiumID}] = struct{}{}
	return nil
}

func (r *likeRepoState) Unlike(_ context.Context, memberID, stadiumID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.likes, [2]uint{memberID, stadiumID})
	return nil
}

func (r *likeRepoState) Exists(_ context.Context, memberID, stadiumID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.likes[[2]uint{memberID, stadiumID}]
	return ok, nil
}

func (r *likeRepoState) ListByMember(_ context.Context, memberID uint, req repository.PageRequest) (repository.PageResult[repository.LikedStadium], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := repository.PageResult[repository.LikedStadium]{Page: req.Page, PageSize: req.PageSize}
	for k := range r.likes {
		if k[0] == memberID {
			out.Items = append(out.Items, repository.LikedStadium{StadiumID: k[1]})
		}
	}
	out.Total = int64(len(out.Items))
	return out, nil
}

func (r *likeRepoState) DeleteByMemberID(_ context.Context, memberID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.likes {
		if k[0] == memberID {
			delete(r.likes, k)
		}
	}
	r.deleted = append(r.deleted, memberID)
	return nil
}

type oauthRepoState struct {
	mu       sync.Mutex
	accounts []domain.OAuthAccount
}

func (r *oauthRepoState) FindByProvider(_ context.Context, provider, providerUserID string) (*domain.OAuthAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Provider == provider && a.ProviderUserID == providerUserID {
			cp := a
			return &cp, nil
		}
	}
	return nil, repository.ErrOAuthAccountNotFound
}

func (r *oauthRepoState) Create(_ context.Context, account *domain.OAuthAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account.ID = uint(len(r.accounts) + 1)
	r.accounts = append(r.accounts, *account)
	return nil
}

func (r *oauthRepoState) DeleteByMemberID(_ context.Context, memberID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.accounts[:0]
	for _, a := range r.accounts {
		if a.MemberID != memberID {
			kept = append(kept, a)
		}
	}
	r.accounts = kept
	return nil
}

// serialTransactor runs transactions one at a time and rolls the
// verification ledger back when fn fails.
type serialTransactor struct {
	mu            sync.Mutex
	members       *memberRepoState
	verifications *verificationState
	likes         *likeRepoState
	oauth         *oauthRepoState
}

func (t *serialTransactor) WithinTransaction(_ context.Context, fn func(tx repository.TxRepositories) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := t.verifications.snapshot()
	err := fn(repository.TxRepositories{
		Members:       t.members,
		Verifications: t.verifications,
		Likes:         t.likes,
		OAuth:         t.oauth,
	})
	if err != nil {
		t.verifications.restore(snap)
	}
	return err
}

type mailerState struct {
	mu      sync.Mutex
	sent    []Mail
	failErr error
}

func (m *mailerState) Send(_ context.Context, mail Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.sent = append(m.sent, mail)
	return nil
}

func (m *mailerState) last() Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

// plainHasher keeps tests fast; the real hasher has its own tests.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain$" + password, nil }

func (plainHasher) Verify(encoded, password string) (bool, error) {
	if !strings.HasPrefix(encoded, "plain$") {
		return false, errors.New("unknown hash format")
	}
	return encoded == "plain$"+password, nil
}
