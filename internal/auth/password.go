package auth

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
	passwordSpecials  = `!@#$%^&*(),.?":{}|<>`
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// CheckPasswordPolicy returns the unmet requirements, or nil when the password is
// acceptable.
func CheckPasswordPolicy(password string) []string {
	var problems []string
	if len(password) < MinPasswordLength {
		problems = append(problems, "must be at least 8 characters long")
	}
	if len(password) > MaxPasswordBytes {
		problems = append(problems, "must be at most 72 bytes long")
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	if !upper {
		problems = append(problems, "must contain an uppercase letter")
	}
	if !lower {
		problems = append(problems, "must contain a lowercase letter")
	}
	if !digit {
		problems = append(problems, "must contain a digit")
	}
	if !special {
		problems = append(problems, "must contain a special character")
	}
	return problems
}
