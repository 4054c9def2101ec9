package entity

import (
	"time"

	"github.com/google/uuid"
)

// Teacher is an account holder. The password hash is written exclusively
// by the password service; there is no ORM hook that hashes on save, so a
// Teacher row never holds a plaintext password.
type Teacher struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"teacher_id"`
	TeacherName  string    `gorm:"size:100;not null" json:"teacher_name"`
	Email        string    `gorm:"size:100;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for GORM.
func (Teacher) TableName() string {
	return "teachers"
}
