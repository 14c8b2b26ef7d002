package model

import "time"

// UserToken tracks the single server-side session of a user. Each login or
// refresh overwrites the row, logout deletes it.
type UserToken struct {
	UserID    string `gorm:"primaryKey"`
	Access    string `gorm:"not null"`
	Refresh   string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
