package model

import "time"

type EventStatus string

const (
	EventStatusActive   EventStatus = "Active"
	EventStatusInactive EventStatus = "Inactive"
)

func (s EventStatus) Valid() bool {
	return s == EventStatusActive || s == EventStatusInactive
}

type EventSystem struct {
	ID     string      `gorm:"primaryKey" json:"id"`
	Name   string      `gorm:"not null" json:"name"`
	Status EventStatus `gorm:"size:8;default:Active" json:"status"`

	Files []FileReference `gorm:"foreignKey:EventSystemID" json:"files,omitempty"`

	CreatedAt     time.Time `json:"created_at"`
	LastUpdatedAt time.Time `gorm:"autoUpdateTime" json:"last_updated_at"`
}
