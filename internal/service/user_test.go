package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tandemhq/tandem/internal/domain"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"too short", "seven77", true},
		{"minimum length", "eight888", false},
		{"typical", "correct horse battery staple", false},
		{"over bcrypt limit", strings.Repeat("x", 73), true},
		{"at bcrypt limit", strings.Repeat("x", 72), false},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePassword("user.register", tt.password)
			if tt.wantErr {
				var ve *domain.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Contains(t, ve.Fields, "password")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewSessionToken(t *testing.T) {
	token, tokenHash, err := newSessionToken()
	require.NoError(t, err)

	// Raw token and stored hash must differ; the hash is what the
	// database sees, so a leaked row can't be replayed as a cookie.
	assert.NotEqual(t, token, tokenHash)
	assert.Len(t, token, SessionTokenBytes*2)
	assert.Len(t, tokenHash, 64)
	assert.Equal(t, tokenHash, hashToken(token))

	token2, _, err := newSessionToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, token2)
}
