package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Username       string
	Email          string
	HashedPassword string

	// Optional profile fields, nil when never set
	FullName *string
	Bio      *string
	Image    *string
}

// Profile fields to update. Nil fields stay untouched
type ProfileUpdate struct {
	FullName *string
	Bio      *string
	Image    *string
}
