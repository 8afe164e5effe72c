// Package password wraps bcrypt hashing behind a small, testable surface.
package password

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"

	dErrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

// Hash derives a bcrypt hash from a plaintext password.
func Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "hash password")
	}
	return string(hash), nil
}

// Verify compares a plaintext password against a stored bcrypt hash.
// Returns false on any mismatch; the caller is responsible for keeping the
// outward error message generic.
func Verify(hash, plaintext string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

const tempPasswordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateTemporary produces a random temporary password for the
// forgot-password flow. 16 characters from a 62-symbol alphabet.
func GenerateTemporary() (string, error) {
	buf := make([]byte, 16)
	max := big.NewInt(int64(len(tempPasswordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "generate temporary password")
		}
		buf[i] = tempPasswordAlphabet[n.Int64()]
	}
	return string(buf), nil
}
