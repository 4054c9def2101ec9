package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sudar-ai/classroom-api/internal/domain/entity"
	apperrors "github.com/sudar-ai/classroom-api/internal/pkg/errors"
	"gorm.io/gorm"
)

type TeacherRepo struct {
	db *gorm.DB
}

func NewTeacherRepo(db *gorm.DB) *TeacherRepo {
	return &TeacherRepo{db: db}
}

func (r *TeacherRepo) Create(teacher *entity.Teacher) error {
	if teacher.ID == uuid.Nil {
		teacher.ID = uuid.New()
	}
	if err := r.db.Create(teacher).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: email already registered", apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to create teacher: %w", err)
	}
	return nil
}

func (r *TeacherRepo) GetByID(id uuid.UUID) (*entity.Teacher, error) {
	var teacher entity.Teacher
	err := r.db.Where("id = ?", id).First(&teacher).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get teacher by id: %w", err)
	}
	return &teacher, nil
}

func (r *TeacherRepo) GetByEmail(email string) (*entity.Teacher, error) {
	var teacher entity.Teacher
	err := r.db.Where("email = ?", email).First(&teacher).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get teacher by email: %w", err)
	}
	return &teacher, nil
}

func (r *TeacherRepo) UpdatePasswordHash(id uuid.UUID, passwordHash string) error {
	result := r.db.Model(&entity.Teacher{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return fmt.Errorf("failed to update password hash: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
