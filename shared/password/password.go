// Package password hashes staff credentials and enforces the account password policy.
package password

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	Cost = bcrypt.DefaultCost

	MinLength = 8
	// MaxLength is bcrypt's input limit in bytes.
	MaxLength = 72
)

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrEmptyPassword   = errors.New("password cannot be empty")
	ErrTooShort        = fmt.Errorf("password must be at least %d characters", MinLength)
	ErrTooLong         = fmt.Errorf("password must be at most %d bytes", MaxLength)
	ErrTooSimple       = errors.New("password must contain a letter and a digit")
)

// CheckStrength reports the first policy rule the candidate breaks.
func CheckStrength(candidate string) error {
	switch {
	case candidate == "":
		return ErrEmptyPassword
	case len([]rune(candidate)) < MinLength:
		return ErrTooShort
	case len(candidate) > MaxLength:
		return ErrTooLong
	}

	var letter, digit bool

	for _, r := range candidate {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	if !letter || !digit {
		return ErrTooSimple
	}

	return nil
}

func Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashed), nil
}

// Verify returns ErrInvalidPassword on mismatch; malformed hashes surface as wrapped bcrypt errors.
func Verify(plain, hash string) error {
	if plain == "" || hash == "" {
		return ErrInvalidPassword
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidPassword
	}

	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}

	return nil
}
