package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Result is created once per (Job, File) in the processing state and never
// mutated afterward, spec.md §3.
type Result struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	JobID          string    `json:"job_id" gorm:"type:varchar(36);not null;index"`
	FileID         string    `json:"file_id" gorm:"type:varchar(36);not null;index"`
	SegmentCount   int       `json:"segment_count"`
	HasDiarization bool      `json:"has_diarization"`
	SpeakerCount   *int      `json:"speaker_count,omitempty"`
	Paths          StringMap `json:"paths" gorm:"type:text"` // format -> on-disk path
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate assigns an opaque id if the caller did not set one.
func (r *Result) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
