package model

import "time"

// EmailVerification holds the active one-time code for an email address.
// It's keyed by email instead of user ID so a code can exist before the
// user row does. A nil Code means the code was burned and can never match
// again.
type EmailVerification struct {
	Email     string     `gorm:"primaryKey"`
	Code      *string    `gorm:"size:6"`
	IssuedAt  *time.Time // expiry is IssuedAt + TTL
	TriesLeft int        `gorm:"default:3"`
}
