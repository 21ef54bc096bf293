package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidKey    = errors.New("invalid key")
	ErrLoginDisabled = errors.New("login disabled")
)

// HashKey returns the bcrypt hash to put in CONTRACTVIEW_EDITOR_KEY_HASH or
// CONTRACTVIEW_ADMIN_KEY_HASH.
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash key: %w", err)
	}
	return string(hash), nil
}

// CheckKey compares key with a bcrypt hash. An empty hash means no key can log in.
func CheckKey(hash, key string) error {
	if hash == "" {
		return ErrLoginDisabled
	}
	if key == "" {
		return ErrInvalidKey
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
		return ErrInvalidKey
	}
	return nil
}
