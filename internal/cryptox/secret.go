package cryptox

import (
	"golang.org/x/crypto/bcrypt"
)

// HashSecret returns the bcrypt hash of secret at the default cost.
func HashSecret(secret []byte) (string, error) {
	h, err := bcrypt.GenerateFromPassword(secret, bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CompareSecret reports whether candidate matches a bcrypt hash.
func CompareSecret(hash string, candidate []byte) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), candidate) == nil
}
