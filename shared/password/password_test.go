package password_test

import (
	"strings"
	"testing"

	"lodge/shared/password"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestCheckStrength(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		want      error
	}{
		{name: "ok", candidate: "frontdesk42"},
		{name: "unicode letters count", candidate: "пароль2024"},
		{name: "empty", candidate: "", want: password.ErrEmptyPassword},
		{name: "short", candidate: "ab12", want: password.ErrTooShort},
		{name: "over bcrypt limit", candidate: strings.Repeat("a1", 40), want: password.ErrTooLong},
		{name: "letters only", candidate: "onlyletters", want: password.ErrTooSimple},
		{name: "digits only", candidate: "1234567890", want: password.ErrTooSimple},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := password.CheckStrength(tt.candidate)
			if tt.want == nil {
				assert.NoError(t, err)

				return
			}

			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHash(t *testing.T) {
	hash, err := password.Hash("frontdesk42")

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))

	cost, err := bcrypt.Cost([]byte(hash))
	assert.NoError(t, err)
	assert.Equal(t, password.Cost, cost)

	_, err = password.Hash("")
	assert.ErrorIs(t, err, password.ErrEmptyPassword)

	_, err = password.Hash(strings.Repeat("a", 100))
	assert.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
}

func TestHashIsSalted(t *testing.T) {
	first, err := password.Hash("frontdesk42")
	assert.NoError(t, err)

	second, err := password.Hash("frontdesk42")
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NoError(t, password.Verify("frontdesk42", first))
	assert.NoError(t, password.Verify("frontdesk42", second))
}

func TestVerify(t *testing.T) {
	hash, err := password.Hash("frontdesk42")
	assert.NoError(t, err)

	tests := []struct {
		name      string
		plain     string
		hash      string
		wantError error
		malformed bool
	}{
		{name: "match", plain: "frontdesk42", hash: hash},
		{name: "mismatch", plain: "frontdesk43", hash: hash, wantError: password.ErrInvalidPassword},
		{name: "empty plain", plain: "", hash: hash, wantError: password.ErrInvalidPassword},
		{name: "empty hash", plain: "frontdesk42", hash: "", wantError: password.ErrInvalidPassword},
		{name: "malformed hash", plain: "frontdesk42", hash: "not-a-hash", malformed: true},
		{name: "truncated hash", plain: "frontdesk42", hash: hash[:10], malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := password.Verify(tt.plain, tt.hash)

			switch {
			case tt.malformed:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, password.ErrInvalidPassword)
			case tt.wantError != nil:
				assert.ErrorIs(t, err, tt.wantError)
			default:
				assert.NoError(t, err)
			}
		})
	}
}
