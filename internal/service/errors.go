package service

import "errors"

// Session lifecycle errors. None of them are retried.
var (
	ErrVerificationMissing    = errors.New("verification missing")
	ErrVerificationExpired    = errors.New("verification expired")
	ErrKeyMismatch            = errors.New("verification key mismatch")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrMemberNotFound         = errors.New("member not found")
	ErrPasswordMismatch       = errors.New("password mismatch")
	ErrSessionExpired         = errors.New("session expired")
	ErrTokenMismatch          = errors.New("refresh token mismatch")
	ErrNotAuthenticated       = errors.New("not authenticated")
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidLikeType    = errors.New("like type must be ON or OFF")
	ErrStadiumNotFound    = errors.New("stadium not found")
	ErrGoogleAuthDisabled = errors.New("google auth is disabled")
	ErrStorageDisabled    = errors.New("avatar storage is disabled")
)
