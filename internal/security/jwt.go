package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// JWTManager signs and parses HS256 tokens. Access and refresh tokens use
// separate secrets so one can never be replayed as the other.
type JWTManager struct {
	issuer        string
	audience      string
	accessSecret  []byte
	refreshSecret []byte
	now           func() time.Time
}

func NewJWTManager(issuer, audience, accessSecret, refreshSecret string) *JWTManager {
	return &JWTManager{
		issuer:        issuer,
		audience:      audience,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		now:           time.Now,
	}
}

func (m *JWTManager) SignAccessToken(email string, ttl time.Duration) (string, error) {
	return m.sign(email, TokenTypeAccess, ttl, m.accessSecret)
}

func (m *JWTManager) SignRefreshToken(email string, ttl time.Duration) (string, error) {
	return m.sign(email, TokenTypeRefresh, ttl, m.refreshSecret)
}

func (m *JWTManager) ParseAccessToken(token string) (*Claims, error) {
	return m.parse(token, TokenTypeAccess, m.accessSecret, true)
}

func (m *JWTManager) ParseRefreshToken(token string) (*Claims, error) {
	return m.parse(token, TokenTypeRefresh, m.refreshSecret, true)
}

// RemainingAccessTTL reads the remaining lifetime from the token's own exp
// claim. The signature is still checked; an expired token yields zero.
func (m *JWTManager) RemainingAccessTTL(token string) (time.Duration, error) {
	claims, err := m.parse(token, TokenTypeAccess, m.accessSecret, false)
	if err != nil {
		return 0, err
	}
	return m.remaining(claims), nil
}

func (m *JWTManager) RemainingRefreshTTL(token string) (time.Duration, error) {
	claims, err := m.parse(token, TokenTypeRefresh, m.refreshSecret, false)
	if err != nil {
		return 0, err
	}
	return m.remaining(claims), nil
}

func (m *JWTManager) sign(email, typ string, ttl time.Duration, secret []byte) (string, error) {
	now := m.now().UTC()
	claims := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			Issuer:    m.issuer,
			Subject:   email,
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

func (m *JWTManager) parse(token, typ string, secret []byte, validateClaims bool) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if !validateClaims {
		opts = []jwt.ParserOption{
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		}
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Type != typ || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func (m *JWTManager) remaining(claims *Claims) time.Duration {
	left := claims.ExpiresAt.Time.Sub(m.now())
	if left < 0 {
		return 0
	}
	return left
}
