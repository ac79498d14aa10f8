package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidState = errors.New("invalid oauth state")

// SignState returns "<nonce>.<expiry-unix>.<mac>" for the OAuth state parameter.
func SignState(secret string, ttl time.Duration, now time.Time) string {
	nonce := uuid.NewString()
	exp := strconv.FormatInt(now.Add(ttl).Unix(), 10)
	payload := nonce + "." + exp
	return payload + "." + stateMAC(secret, payload)
}

func VerifySignedState(secret, state string, now time.Time) error {
	parts := strings.Split(state, ".")
	if len(parts) != 3 {
		return ErrInvalidState
	}
	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(stateMAC(secret, payload))) {
		return ErrInvalidState
	}
	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: expiry", ErrInvalidState)
	}
	if now.Unix() > exp {
		return fmt.Errorf("%w: expired", ErrInvalidState)
	}
	return nil
}

func stateMAC(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
