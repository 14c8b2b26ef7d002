package model

import "time"

type StorageProvider string

const (
	StorageProviderS3    StorageProvider = "S3"
	StorageProviderLocal StorageProvider = "LocalStorage"
)

type UploadStatus string

const (
	UploadStatusPending    UploadStatus = "Pending"
	UploadStatusProcessing UploadStatus = "Processing"
	UploadStatusComplete   UploadStatus = "Complete"
	UploadStatusFailed     UploadStatus = "Failed"
)

type FileType string

const (
	FileTypeEvent      FileType = "EventFile"
	FileTypePrediction FileType = "PredictionFile"
)

// FileReference stores metadata about an uploaded file. Each file belongs to
// exactly one event system and its name is unique within it.
type FileReference struct {
	ID            string `gorm:"primaryKey" json:"id"`
	EventSystemID string `gorm:"index;not null" json:"-"`

	FileName        string          `gorm:"not null" json:"file_name"`
	URL             string          `gorm:"size:500" json:"url"`
	StorageProvider StorageProvider `gorm:"size:20;default:LocalStorage" json:"storage_provider"`
	Size            int64           `json:"size"`
	UploadStatus    UploadStatus    `gorm:"size:20;default:Pending" json:"upload_status"`
	FileType        FileType        `gorm:"size:20;default:EventFile" json:"file_type"`
	IsSelected      bool            `gorm:"default:false" json:"is_selected"`

	UploadDate time.Time `gorm:"autoCreateTime" json:"upload_date"`
}
