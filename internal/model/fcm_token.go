package model

import "time"

// FcmToken is the push token bookkeeping for a user session. A token that
// goes unused for 90 days is swept by the cleanup job.
type FcmToken struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	UserID    string `gorm:"uniqueIndex:idx_user_session;not null"`
	SessionID string `gorm:"uniqueIndex:idx_user_session;not null"`
	Token     string `gorm:"not null"`
	LastUsed  time.Time
	CreatedAt time.Time
}
