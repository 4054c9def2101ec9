package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/sudar-ai/classroom-api/internal/domain/entity"
	apperrors "github.com/sudar-ai/classroom-api/internal/pkg/errors"
)

// MockVerificationCodeRepository implements repository.VerificationCodeRepository.
type MockVerificationCodeRepository struct {
	mock.Mock
}

func (m *MockVerificationCodeRepository) Upsert(code *entity.VerificationCode) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockVerificationCodeRepository) GetActiveByEmail(email string) (*entity.VerificationCode, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.VerificationCode), args.Error(1)
}

func (m *MockVerificationCodeRepository) IncrementAttempts(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockVerificationCodeRepository) Consume(id uint) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockVerificationCodeRepository) DeleteByEmail(email string) error {
	args := m.Called(email)
	return args.Error(0)
}

func newTestVerificationService(t *testing.T, repo *MockVerificationCodeRepository) *VerificationService {
	t.Helper()
	svc, err := NewVerificationService(repo, 10*time.Minute, 60*time.Second, 5, "test-pepper")
	require.NoError(t, err)
	return svc
}

// issueCapturing runs Issue and returns both the plaintext code and the
// record the service stored, so tests can redeem against the real hash.
func issueCapturing(t *testing.T, svc *VerificationService, repo *MockVerificationCodeRepository, email string, purpose entity.CodePurpose) (string, *entity.VerificationCode) {
	t.Helper()

	var stored *entity.VerificationCode
	repo.On("GetActiveByEmail", email).Return(nil, apperrors.ErrNotFound).Once()
	repo.On("Upsert", mock.AnythingOfType("*entity.VerificationCode")).Run(func(args mock.Arguments) {
		stored = args.Get(0).(*entity.VerificationCode)
		stored.ID = 1
	}).Return(nil).Once()

	code, err := svc.Issue(context.Background(), email, purpose)
	require.NoError(t, err)
	require.NotNil(t, stored)
	return code, stored
}

func TestVerificationService_Issue_StoresHashedCode(t *testing.T) {
	repo := new(MockVerificationCodeRepository)
	svc := newTestVerificationService(t, repo)

	code, stored := issueCapturing(t, svc, repo, "alice@example.com", entity.PurposeSignup)

	assert.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9', "code must be numeric")
	}

	assert.Equal(t, "alice@example.com", stored.Email)
	assert.Equal(t, entity.PurposeSignup, stored.Purpose)
	assert.NotEqual(t, code, stored.CodeHash, "plaintext code must never be persisted")
	assert.NotEmpty(t, stored.CodeSalt)
	assert.Equal(t, 5, stored.MaxAttempts)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), stored.ExpiresAt, 5*time.Second)
	repo.AssertExpectations(t)
}

func TestVerificationService_Issue_CooldownBlocksResend(t *testing.T) {
	repo := new(MockVerificationCodeRepository)
	svc := newTestVerificationService(t, repo)

	existing := &entity.VerificationCode{
		ID:         1,
		Email:      "alice@example.com",
		ExpiresAt:  time.Now().Add(9 * time.Minute),
		LastSentAt: time.Now().Add(-10 * time.Second),
	}
	repo.On("GetActiveByEmail", "alice@example.com").Return(existing, nil).Once()

	_, err := svc.Issue(context.Background(), "alice@example.com", entity.PurposeSignup)

	assert.ErrorIs(t, err, ErrResendCooldown)
	repo.AssertNotCalled(t, "Upsert", mock.Anything)
}

func TestVerificationService_Issue_ReplacesAfterCooldown(t *testing.T) {
	repo := new(MockVerificationCodeRepository)
	svc := newTestVerificationService(t, repo)

	existing := &entity.VerificationCode{
		ID:         1,
		Email:      "alice@example.com",
		ExpiresAt:  time.Now().Add(5 * time.Minute),
		LastSentAt: time.Now().Add(-2 * time.Minute),
	}
	repo.On("GetActiveByEmail", "alice@example.com").Return(existing, nil).Once()
	repo.On("Upsert", mock.AnythingOfType("*entity.VerificationCode")).Return(nil).Once()

	code, err := svc.Issue(context.Background(), "alice@example.com", entity.PurposeSignup)

	require.NoError(t, err)
	assert.Len(t, code, 6)
	repo.AssertExpectations(t)
}

func TestVerificationService_Redeem_Success(t *testing.T) {
	repo := new(MockVerificationCodeRepository)
	svc := newTestVerificationService(t, repo)

	code, stored := issueCapturing(t, svc, repo, "alice@example.com", entity.PurposeSignup)

	repo.On("GetActiveByEmail", "alice@example.com").Return(stored, nil).Once()
	repo.On("Consume", stored.ID).Return(true, nil).Once()

	err := svc.Redeem(context.Background(), "alice@example.com", code, entity.PurposeSignup)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestVerificationService_Redeem_NoActiveCode(t *testing.T) {
	repo := new(MockVerificationCodeRepository)
	svc := newTestVerificationService(t, repo)

	repo.On("GetActiveByEmail", "nobody@example.com").Return(nil, apperrors.ErrNotFound).Once()

	err := svc.Redeem(context.Background(), "nobody@example.com", "123456", entity.PurposeSignup)

	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestVerificationService_Redeem_WrongPurpose(t *testing.T) {
	repo := new(MockVerificationCodeRepository)
	svc := newTestVerificationService(t, repo)

	code, stored := issueCapturing(t, svc, repo, "alice@example.com", entity.PurposeSignup)

	repo.On("GetActiveByEmail", "alice@example.com").Return(stored, nil).Once()

	// A signup code must not redeem a password reset.
	err := svc.Redeem(context.Background(), "alice@example.com", code, entity.PurposePasswordReset)

	assert.ErrorIs(t, err, ErrCodeNotFound)
	repo.AssertNotCalled(t, "Consume", mock.Anything)
}

func TestVerificationService_Redeem_Expired_ConsumesRecord(t *testing.T) {
	repo := new(MockVerificationCodeRepository)
	svc := newTestVerificationService(t, repo)

	code, stored := issueCapturing(t, svc, repo, "alice@example.com", entity.PurposeSignup)
	stored.ExpiresAt = time.Now().Add(-time.Minute)

	repo.On("GetActiveByEmail", "alice@example.com").Return(stored, nil).Once()
	repo.On("Consume", stored.ID).Return(true, nil).Once()

	err := svc.Redeem(context.Background(), "alice@example.com", code, entity.PurposeSignup)

	assert.ErrorIs(t, err, ErrCodeExpired)
	// The record is burned even though redemption failed.
	repo.AssertCalled(t, "Consume", stored.ID)
}

func TestVerificationService_Redeem_Mismatch(t *testing.T) {
	repo := new(MockVerificationCodeRepository)
	svc := newTestVerificationService(t, repo)

	code, stored := issueCapturing(t, svc, repo, "alice@example.com", entity.PurposeSignup)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	repo.On("GetActiveByEmail", "alice@example.com").Return(stored, nil).Once()
	repo.On("IncrementAttempts", stored.ID).Return(nil).Once()

	err := svc.Redeem(context.Background(), "alice@example.com", wrong, entity.PurposeSignup)

	assert.ErrorIs(t, err, ErrCodeMismatch)
	repo.AssertNotCalled(t, "Consume", mock.Anything)
}

func TestVerificationService_Redeem_AttemptsExceeded(t *testing.T) {
	repo := new(MockVerificationCodeRepository)
	svc := newTestVerificationService(t, repo)

	_, stored := issueCapturing(t, svc, repo, "alice@example.com", entity.PurposeSignup)
	stored.AttemptCount = stored.MaxAttempts

	repo.On("GetActiveByEmail", "alice@example.com").Return(stored, nil).Once()
	repo.On("Consume", stored.ID).Return(true, nil).Once()

	err := svc.Redeem(context.Background(), "alice@example.com", "123456", entity.PurposeSignup)

	assert.ErrorIs(t, err, ErrCodeAttemptsExceeded)
	// An exhausted code is burned, not left for more guessing.
	repo.AssertCalled(t, "Consume", stored.ID)
}

func TestVerificationService_Redeem_LastWrongGuessConsumesCode(t *testing.T) {
	repo := new(MockVerificationCodeRepository)
	svc := newTestVerificationService(t, repo)

	code, stored := issueCapturing(t, svc, repo, "alice@example.com", entity.PurposeSignup)
	stored.AttemptCount = stored.MaxAttempts - 1

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	repo.On("GetActiveByEmail", "alice@example.com").Return(stored, nil).Once()
	repo.On("IncrementAttempts", stored.ID).Return(nil).Once()
	repo.On("Consume", stored.ID).Return(true, nil).Once()

	err := svc.Redeem(context.Background(), "alice@example.com", wrong, entity.PurposeSignup)

	assert.ErrorIs(t, err, ErrCodeAttemptsExceeded)
	repo.AssertExpectations(t)
}

func TestVerificationService_Redeem_LostConsumeRace(t *testing.T) {
	repo := new(MockVerificationCodeRepository)
	svc := newTestVerificationService(t, repo)

	code, stored := issueCapturing(t, svc, repo, "alice@example.com", entity.PurposeSignup)

	// A concurrent redemption consumed the row between read and update.
	repo.On("GetActiveByEmail", "alice@example.com").Return(stored, nil).Once()
	repo.On("Consume", stored.ID).Return(false, nil).Once()

	err := svc.Redeem(context.Background(), "alice@example.com", code, entity.PurposeSignup)

	assert.ErrorIs(t, err, ErrCodeNotFound)
}
