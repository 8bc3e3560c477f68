// Package password derives and verifies one-way password hashes.
//
// New hashes use the configured algorithm; Verify accepts any supported
// encoding, so switching algorithms keeps existing accounts working.
package password

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// bcryptMaxBytes is the longest input bcrypt accepts.
const bcryptMaxBytes = 72

var (
	ErrUnsupportedAlgorithm = errors.New("unsupported password hash algorithm")
	ErrPasswordTooLong      = errors.New("password is too long")
)

// Hasher hashes and verifies passwords. Verify never returns an error for
// user-controlled input; a malformed stored hash is simply a mismatch.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) bool
}

type hasher struct {
	algorithm  string
	bcryptCost int
	argon      Argon2idParams
}

// NewHasher returns a Hasher producing hashes with algorithm.
// bcryptCost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewHasher(algorithm string, bcryptCost int) (Hasher, error) {
	switch algorithm {
	case AlgorithmBcrypt, AlgorithmArgon2id:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &hasher{
		algorithm:  algorithm,
		bcryptCost: bcryptCost,
		argon:      DefaultArgon2idParams(),
	}, nil
}

func (h *hasher) Hash(password string) (string, error) {
	if h.algorithm == AlgorithmArgon2id {
		return hashArgon2id(password, h.argon)
	}

	if len(password) > bcryptMaxBytes {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (h *hasher) Verify(password, encodedHash string) bool {
	switch {
	case strings.HasPrefix(encodedHash, "$argon2id$"):
		return verifyArgon2id(password, encodedHash, h.argon)
	case strings.HasPrefix(encodedHash, "$2"):
		return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
	default:
		return false
	}
}
