package service

import (
	"context"
	"io"

	"github.com/minwonhaeso/esc-server/internal/domain"
	"github.com/minwonhaeso/esc-server/internal/repository"
)

type MemberServiceInterface interface {
	SignUp(ctx context.Context, in SignUpInput) (*SignUpResult, error)
	CheckEmailTaken(ctx context.Context, email string) error
	SendVerificationEmail(ctx context.Context, email string) (string, error)
	ConfirmVerification(ctx context.Context, key string) error
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Logout(ctx context.Context, email, accessBearer string) error
	Reissue(ctx context.Context, email, refreshBearer string) (TokenPair, error)
	ChangePasswordRequest(ctx context.Context, email string) (string, error)
	ChangePasswordConfirm(ctx context.Context, key string) error
	ChangePassword(ctx context.Context, in ChangePasswordInput) error
	Info(ctx context.Context, email string) (*MemberInfo, error)
	PatchProfile(ctx context.Context, email string, in PatchProfileInput) (*MemberInfo, error)
	UploadAvatar(ctx context.Context, email string, file io.Reader, size int64, contentType string) (*MemberInfo, error)
	DeleteAccount(ctx context.Context, email string) error
}

type OAuthServiceInterface interface {
	LoginURL(state string) string
	HandleGoogleCallback(ctx context.Context, code string) (*LoginResult, error)
}

type StadiumLikeServiceInterface interface {
	Likes(ctx context.Context, email string, stadiumID uint, likeType string) (*LikeResult, error)
	LikeList(ctx context.Context, email string, req repository.PageRequest) (repository.PageResult[StadiumLikeView], error)
}

type StadiumSearchServiceInterface interface {
	Search(ctx context.Context, searchValue string, req repository.PageRequest) (repository.PageResult[StadiumSearchView], error)
	IndexStadium(ctx context.Context, stadium domain.Stadium) error
}

var (
	_ MemberServiceInterface        = (*MemberService)(nil)
	_ OAuthServiceInterface         = (*OAuthService)(nil)
	_ StadiumLikeServiceInterface   = (*StadiumLikeService)(nil)
	_ StadiumSearchServiceInterface = (*StadiumSearchService)(nil)
)
