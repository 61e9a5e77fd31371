package user

import (
	"time"

	"github.com/google/uuid"
)

// User owns exactly one cart. Registration mechanics live outside this service;
// the row exists so carts and listings have an owner.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username string    `gorm:"not null;uniqueIndex;column:username" json:"username"`
	Email    string    `gorm:"not null;uniqueIndex;column:email" json:"email"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "app_user" }
