package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const passwordCost = 12

// dummyHash is compared against when no user exists so failed logins cost the same.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("mindwell-dummy-password"), bcrypt.MinCost)

// HashPassword returns a salted bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
// An empty hash still runs a comparison and always fails.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
