package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UploadedFile is the persisted record of one uploaded audio/video file,
// spec.md §3. Immutable after upload; its on-disk path outlives every job
// that references it until retention expires.
type UploadedFile struct {
	ID               string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OriginalFilename string    `json:"original_filename" gorm:"type:text;not null"`
	StoragePath      string    `json:"storage_path" gorm:"type:text;not null"`
	FileSize         int64     `json:"file_size" gorm:"not null"`
	DurationSeconds  *float64  `json:"duration_seconds,omitempty"`
	MimeType         string    `json:"mime_type" gorm:"type:varchar(100)"`
	UploadedAt       time.Time `json:"uploaded_at" gorm:"autoCreateTime"`

	Jobs []Job `json:"-" gorm:"many2many:job_files;"`
}

// BeforeCreate assigns an opaque id if the caller did not set one.
func (f *UploadedFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}
