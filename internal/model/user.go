package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles understood by the auth middleware.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// User is an operator of the POS.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"type:varchar(20);not null"`
	Active       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
