package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobStatus is the state of a Job's §4.6 state machine.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusCancelled  JobStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// StringMap is a gorm-friendly JSON column type for free-form string maps
// (recognition parameters, output-format-to-path maps).
type StringMap map[string]string

func (m StringMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

func (m *StringMap) Scan(value interface{}) error {
	if value == nil {
		*m = StringMap{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok2 := value.(string); ok2 {
			bytes = []byte(s)
		} else {
			return errors.New("models: StringMap.Scan: unsupported type")
		}
	}
	if len(bytes) == 0 {
		*m = StringMap{}
		return nil
	}
	return json.Unmarshal(bytes, m)
}

// StringList is a gorm-friendly JSON column type for ordered string lists
// (requested output formats).
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok2 := value.(string); ok2 {
			bytes = []byte(s)
		} else {
			return errors.New("models: StringList.Scan: unsupported type")
		}
	}
	if len(bytes) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// DiarizationConfig is the job-level diarization request, spec.md §3/§4.4.
type DiarizationConfig struct {
	Enabled     bool `json:"enabled"`
	MinSpeakers int  `json:"min_speakers"`
	MaxSpeakers int  `json:"max_speakers"`
}

func (d DiarizationConfig) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *DiarizationConfig) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok2 := value.(string); ok2 {
			bytes = []byte(s)
		} else {
			return errors.New("models: DiarizationConfig.Scan: unsupported type")
		}
	}
	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, d)
}

// PostprocessOptions records the requested pnc/vad postprocessing flags
// (original_source/backend/app/core/processors/pnc.py and vad.py). They are
// persisted with the job; the pipeline does not read them.
type PostprocessOptions struct {
	PNC bool `json:"pnc"`
	VAD bool `json:"vad"`
}

func (p PostprocessOptions) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *PostprocessOptions) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok2 := value.(string); ok2 {
			bytes = []byte(s)
		} else {
			return errors.New("models: PostprocessOptions.Scan: unsupported type")
		}
	}
	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, p)
}

// Job is the persisted record backing the Job Lifecycle Manager (C6).
type Job struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ModelType string    `json:"model_type" gorm:"type:varchar(40);not null;index"`
	ModelSize string    `json:"model_size" gorm:"type:varchar(40);not null"`
	Language  string    `json:"language" gorm:"type:varchar(10);not null;default:'auto'"`
	Device    string    `json:"device" gorm:"type:varchar(10);not null;default:'cpu'"`
	Status    JobStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`

	Parameters        StringMap           `json:"parameters" gorm:"type:text"`
	Diarization       DiarizationConfig   `json:"diarization" gorm:"type:text"`
	OutputFormats     StringList          `json:"output_formats" gorm:"type:text"`
	ForceAlignment    bool                `json:"force_alignment" gorm:"default:false"`
	AlignmentProvider string              `json:"alignment_provider,omitempty" gorm:"type:varchar(40)"`
	Postprocess       PostprocessOptions  `json:"postprocess" gorm:"type:text"`

	Progress    int     `json:"progress" gorm:"default:0"`
	CurrentFile *string `json:"current_file,omitempty" gorm:"type:text"`
	TotalFiles  int     `json:"total_files" gorm:"not null"`

	ErrorMessage *string `json:"error_message,omitempty" gorm:"type:text"`

	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Files   []UploadedFile `json:"-" gorm:"many2many:job_files;"`
	Results []Result       `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns an opaque id, mirroring the teacher's UUID-on-create
// convention (internal/models/transcription.go in the teacher tree).
func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	return nil
}
