package password

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Verify checks plain against a stored hash. argon2id PHC strings and bcrypt
// hashes are accepted; anything else never verifies.
func Verify(plain, stored string) bool {
	if plain == "" || stored == "" {
		return false
	}
	switch {
	case strings.HasPrefix(stored, argon2idPrefix):
		return verifyArgon2id(plain, stored)
	case isBcrypt(stored):
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
	default:
		return false
	}
}

func isBcrypt(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
