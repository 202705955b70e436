package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

const (
	HashAlgorithmBcrypt   = "bcrypt"
	HashAlgorithmArgon2id = "argon2id"

	// bcryptMaxPasswordLength is the number of bytes bcrypt looks at.
	bcryptMaxPasswordLength = 72
)

var ErrPasswordTooLong = errors.New("password is too long")

type PasswordHasher interface {
	// Hash returns a salted hash of the password using the configured
	// algorithm, or ErrPasswordTooLong.
	Hash(password string) (string, error)

	// Compare reports whether password matches hash. Both bcrypt and
	// argon2id hashes are accepted regardless of the configured
	// algorithm.
	Compare(password, hash string) (bool, error)

	// CompareDummy runs a comparison against a throwaway hash so that
	// a lookup miss costs as much time as a real mismatch.
	CompareDummy(password string)
}

type passwordHasherImpl struct {
	algorithm  string
	bcryptCost int
	dummyHash  string
}

func NewPasswordHasher(algorithm string, bcryptCost int) (PasswordHasher, error) {
	switch algorithm {
	case HashAlgorithmBcrypt:
		if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]",
				bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
		}
	case HashAlgorithmArgon2id:
	default:
		return nil, fmt.Errorf("unknown password hash algorithm: %s", algorithm)
	}

	h := &passwordHasherImpl{
		algorithm:  algorithm,
		bcryptCost: bcryptCost,
	}

	dummyHash, err := h.Hash("dummy password")
	if err != nil {
		return nil, fmt.Errorf("failed to create dummy hash: %w", err)
	}
	h.dummyHash = dummyHash
	return h, nil
}

func (h *passwordHasherImpl) Hash(password string) (string, error) {
	if h.algorithm == HashAlgorithmArgon2id {
		return argon2id.CreateHash(password, argon2id.DefaultParams)
	}

	if len(password) > bcryptMaxPasswordLength {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *passwordHasherImpl) Compare(password, hash string) (bool, error) {
	if strings.HasPrefix(hash, "$argon2id$") {
		return argon2id.ComparePasswordAndHash(password, hash)
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (h *passwordHasherImpl) CompareDummy(password string) {
	_, _ = h.Compare(password, h.dummyHash)
}
