package repository

import (
	"github.com/google/uuid"
	"github.com/sudar-ai/classroom-api/internal/domain/entity"
)

// TeacherRepository defines persistence for teacher accounts.
type TeacherRepository interface {
	Create(teacher *entity.Teacher) error
	GetByID(id uuid.UUID) (*entity.Teacher, error)
	GetByEmail(email string) (*entity.Teacher, error)
	// UpdatePasswordHash replaces the stored hash directly; the caller is
	// responsible for producing it through the password service.
	UpdatePasswordHash(id uuid.UUID, passwordHash string) error
}
