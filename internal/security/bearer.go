package security

import (
	"errors"
	"strings"
)

const bearerPrefix = "Bearer "

var ErrMalformedBearer = errors.New("malformed bearer token")

// ResolveBearer strips the 7-character "Bearer " prefix. Anything that does
// not carry exactly that prefix, or carries nothing after it, is rejected.
func ResolveBearer(header string) (string, error) {
	if len(header) <= len(bearerPrefix) || !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrMalformedBearer
	}
	token := header[len(bearerPrefix):]
	if strings.TrimSpace(token) != token || token == "" {
		return "", ErrMalformedBearer
	}
	return token, nil
}
