package models

import (
	"time"
)

// Access token issued to the end user after register or login
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}
