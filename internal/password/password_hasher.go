package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const defaultCost = 10

// Hasher defines the password hashing contract.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// BcryptHasher implements Hasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a bcrypt-backed password hasher.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = defaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash converts a plain password into a salted hash.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password: empty password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare reports whether the password matches the stored hash.
// Any internal failure (malformed hash included) counts as a mismatch.
func (h *BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
