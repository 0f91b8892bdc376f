package auth

import (
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is lowered by tests only.
var BcryptCost = 12

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// dummyHash is compared against when no account matches, so a missing
// account costs the same as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("gallery-dummy-password"), bcrypt.MinCost)

func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword compares in constant time. A nil or empty hash never matches.
func CheckPassword(hash *string, password string) bool {
	if hash == nil || *hash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*hash), []byte(password)) == nil
}

// BurnCompare spends a hash comparison when the account lookup failed.
func BurnCompare(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// IsPasswordStrong requires 8+ characters with at least one letter and one digit.
func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter := false
	hasDigit := false
	for _, c := range password {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
			hasLetter = true
		case '0' <= c && c <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

func IsEmailValid(email string) bool {
	return emailPattern.MatchString(email)
}
