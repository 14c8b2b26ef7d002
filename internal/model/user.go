// Package model defines database models
package model

import "time"

type User struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"unique;not null" json:"email"`
	Name         string `json:"name"`
	PasswordHash string `gorm:"not null" json:"-"`

	// IsActive tracks account activation, IsVerified the email confirmation.
	// Deleted accounts keep their row so permission history stays intact.
	IsActive   bool `gorm:"default:true" json:"is_active"`
	IsVerified bool `gorm:"default:false" json:"is_verified"`
	IsDeleted  bool `gorm:"default:false" json:"-"`

	PasswordResetPending bool `gorm:"default:false" json:"-"`

	// Analytics counters, not used for any gating decisions
	Rating      float64 `gorm:"default:0" json:"rating"`
	NumOfUsages int     `gorm:"default:0" json:"num_of_usages"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
