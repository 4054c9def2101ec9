package postgres

import (
	"errors"
	"fmt"

	"github.com/sudar-ai/classroom-api/internal/domain/entity"
	apperrors "github.com/sudar-ai/classroom-api/internal/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VerificationCodeRepo struct {
	db *gorm.DB
}

func NewVerificationCodeRepo(db *gorm.DB) *VerificationCodeRepo {
	return &VerificationCodeRepo{db: db}
}

// Upsert writes the code row for the email, replacing a previous one in
// place. The unique index on email makes "replace, not stack" a database
// guarantee rather than an application promise.
func (r *VerificationCodeRepo) Upsert(code *entity.VerificationCode) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"purpose", "code_hash", "code_salt", "expires_at",
			"attempt_count", "max_attempts", "last_sent_at", "consumed_at",
		}),
	}).Create(code).Error
	if err != nil {
		return fmt.Errorf("failed to upsert verification code: %w", err)
	}
	return nil
}

func (r *VerificationCodeRepo) GetActiveByEmail(email string) (*entity.VerificationCode, error) {
	var code entity.VerificationCode
	err := r.db.
		Where("email = ? AND consumed_at IS NULL", email).
		First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get active verification code: %w", err)
	}
	return &code, nil
}

func (r *VerificationCodeRepo) IncrementAttempts(id uint) error {
	return r.db.Model(&entity.VerificationCode{}).
		Where("id = ?", id).
		Update("attempt_count", gorm.Expr("attempt_count + 1")).Error
}

// Consume is the check-and-set guarding single redemption: the WHERE
// clause only matches an unconsumed row, so of two concurrent callers
// exactly one sees RowsAffected == 1.
func (r *VerificationCodeRepo) Consume(id uint) (bool, error) {
	result := r.db.Model(&entity.VerificationCode{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Update("consumed_at", gorm.Expr("CURRENT_TIMESTAMP"))
	if result.Error != nil {
		return false, fmt.Errorf("failed to consume verification code: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *VerificationCodeRepo) DeleteByEmail(email string) error {
	return r.db.Where("email = ?", email).Delete(&entity.VerificationCode{}).Error
}
