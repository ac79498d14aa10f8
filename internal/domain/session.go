package domain

import "time"

// RefreshToken is the single live refresh token held for a member.
type RefreshToken struct {
	Email     string
	Token     string
	ExpiresAt time.Time
}

// LogoutAccessToken denylists an access token until it would have expired anyway.
type LogoutAccessToken struct {
	Token string
	Email string
	TTL   time.Duration
}
