package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 2
	argonKeyLen  uint32 = 32
	argonSaltLen        = 16
)

var ErrInvalidPasswordHash = errors.New("invalid password hash format")

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(encoded, password string) (bool, error)
}

// Argon2Hasher writes argon2id hashes and still verifies bcrypt hashes carried
// over from accounts created before the switch.
type Argon2Hasher struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
}

func NewArgon2Hasher() *Argon2Hasher {
	return &Argon2Hasher{Time: argonTime, Memory: argonMemory, Threads: argonThreads, KeyLen: argonKeyLen}
}

func (h *Argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password), salt, h.Time, h.Memory, h.Threads, h.KeyLen)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		h.Memory, h.Time, h.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

func (h *Argon2Hasher) Verify(encoded, password string) (bool, error) {
	if isBcryptHash(encoded) {
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrInvalidPasswordHash, err)
		}
		return true, nil
	}

	memory, timeCost, threads, salt, expected, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	expectedLen := len(expected)
	if uint64(expectedLen) > uint64(math.MaxUint32) {
		return false, fmt.Errorf("invalid hash length")
	}
	// #nosec G115 -- bounded by explicit MaxUint32 check above.
	keyLen := uint32(expectedLen)
	actual := argon2.IDKey([]byte(password), salt, timeCost, memory, threads, keyLen)
	return subtle.ConstantTimeCompare(actual, expected) == 1, nil
}

var defaultHasher = NewArgon2Hasher()

func HashPassword(password string) (string, error) {
	return defaultHasher.Hash(password)
}

func VerifyPassword(encoded, password string) (bool, error) {
	return defaultHasher.Verify(encoded, password)
}

func isBcryptHash(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") || strings.HasPrefix(encoded, "$2b$") || strings.HasPrefix(encoded, "$2y$")
}

func decodeHash(encoded string) (memory uint32, timeCost uint32, threads uint8, salt, hash []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != "v=19" {
		return 0, 0, 0, nil, nil, ErrInvalidPasswordHash
	}
	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &timeCost, &threads); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("%w: params", ErrInvalidPasswordHash)
	}
	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("%w: salt", ErrInvalidPasswordHash)
	}
	hash, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("%w: payload", ErrInvalidPasswordHash)
	}
	return memory, timeCost, threads, salt, hash, nil
}
