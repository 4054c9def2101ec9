package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordService_Validate(t *testing.T) {
	svc := NewPasswordService()

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"too short", "abc", ErrWeakPassword},
		{"short with letter and digit", "a1b", ErrWeakPassword},
		{"no digit", "password", ErrWeakPassword},
		{"no letter", "123456789", ErrWeakPassword},
		{"minimum valid", "abc123", nil},
		{"strong", "Str0ngP@ss!", nil},
		{"valid with unicode letter", "pässw0rd", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Validate(tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPasswordService_HashAndVerify(t *testing.T) {
	svc := NewPasswordService()

	hash, err := svc.Hash("SecurePass123")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "SecurePass123", hash)

	assert.True(t, svc.Verify("SecurePass123", hash))
	assert.False(t, svc.Verify("WrongPassword123", hash))
	assert.False(t, svc.Verify("", hash))
}

func TestPasswordService_Hash_FreshSaltPerCall(t *testing.T) {
	svc := NewPasswordService()

	first, err := svc.Hash("SecurePass123")
	require.NoError(t, err)
	second, err := svc.Hash("SecurePass123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "each hash call must use a fresh salt")
	assert.True(t, svc.Verify("SecurePass123", first))
	assert.True(t, svc.Verify("SecurePass123", second))
}

func TestPasswordService_Verify_MalformedHash(t *testing.T) {
	svc := NewPasswordService()

	// Verify must return false, never panic or error, on garbage input.
	assert.False(t, svc.Verify("SecurePass123", "not-a-bcrypt-hash"))
	assert.False(t, svc.Verify("SecurePass123", ""))
}
