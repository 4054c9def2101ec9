package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVerificationCode_IsExpired(t *testing.T) {
	now := time.Now()

	code := &VerificationCode{ExpiresAt: now.Add(10 * time.Minute)}
	assert.False(t, code.IsExpired(now))
	assert.False(t, code.IsExpired(code.ExpiresAt), "boundary instant is still valid")
	assert.True(t, code.IsExpired(now.Add(11*time.Minute)))
}

func TestVerificationCode_IsConsumed(t *testing.T) {
	code := &VerificationCode{}
	assert.False(t, code.IsConsumed())

	consumedAt := time.Now()
	code.ConsumedAt = &consumedAt
	assert.True(t, code.IsConsumed())
}
