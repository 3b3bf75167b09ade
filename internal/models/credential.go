package models

import (
	"time"

	"github.com/google/uuid"
)

// Credential is the upstream session we hold for one upstream account
// Token is stored already prefixed with the auth scheme, so it goes to Authorization header as is
type Credential struct {
	ID        uuid.UUID
	Email     string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the credential is not valid at the moment
// Credential expiring exactly at now is expired
func (c Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// Session is upstream login or refresh response
type Session struct {
	PlatformType   string    `json:"platformType"`
	Ticket         string    `json:"ticket"`
	ProfileID      string    `json:"profileId"`
	UserID         string    `json:"userId"`
	NameOnPlatform string    `json:"nameOnPlatform"`
	Expiration     time.Time `json:"expiration"`
}
