// Package password hashes and checks account passwords with bcrypt.
package password

import "golang.org/x/crypto/bcrypt"

const (
	DefaultCost = 12
	MinLength   = 8
)

func Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), DefaultCost)
	return string(hashed), err
}

// Verify reports whether plain matches the stored hash
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// ValidatePassword enforces the minimum length
func ValidatePassword(plain string) bool {
	return len(plain) >= MinLength
}
