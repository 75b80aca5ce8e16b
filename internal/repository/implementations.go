package repository

import (
	"context"
	"time"

	"github.com/indra622/world-of-asr/internal/models"

	"gorm.io/gorm"
)

// JobRepository handles Job persistence for the Job Lifecycle Manager (C6).
type JobRepository interface {
	Repository[models.Job]
	FindWithAssociations(ctx context.Context, id string) (*models.Job, error)
	List(ctx context.Context, offset, limit int) ([]models.Job, int64, error)
	AttachFiles(ctx context.Context, jobID string, fileIDs []string) error
	UpdateStatus(ctx context.Context, jobID string, status models.JobStatus) error
	UpdateProgress(ctx context.Context, jobID string, progress int, currentFile string) error
	MarkStarted(ctx context.Context, jobID string) error
	MarkTerminal(ctx context.Context, jobID string, status models.JobStatus, errMsg *string) error
}

type jobRepository struct {
	*BaseRepository[models.Job]
}

// NewJobRepository constructs the Job repository over db.
func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{BaseRepository: NewBaseRepository[models.Job](db)}
}

func (r *jobRepository) FindWithAssociations(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).
		Preload("Files").
		Preload("Results").
		Where("id = ?", id).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) List(ctx context.Context, offset, limit int) ([]models.Job, int64, error) {
	var jobs []models.Job
	var count int64

	db := r.db.WithContext(ctx).Model(&models.Job{})
	if err := db.Count(&count).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&jobs).Error
	return jobs, count, err
}

func (r *jobRepository) AttachFiles(ctx context.Context, jobID string, fileIDs []string) error {
	var job models.Job
	if err := r.db.WithContext(ctx).First(&job, "id = ?", jobID).Error; err != nil {
		return err
	}
	var files []models.UploadedFile
	if err := r.db.WithContext(ctx).Where("id IN ?", fileIDs).Find(&files).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&job).Association("Files").Append(files)
}

func (r *jobRepository) UpdateStatus(ctx context.Context, jobID string, status models.JobStatus) error {
	return r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", jobID).
		Update("status", status).Error
}

func (r *jobRepository) UpdateProgress(ctx context.Context, jobID string, progress int, currentFile string) error {
	return r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"progress":     progress,
			"current_file": currentFile,
		}).Error
}

func (r *jobRepository) MarkStarted(ctx context.Context, jobID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     models.StatusProcessing,
			"started_at": &now,
		}).Error
}

func (r *jobRepository) MarkTerminal(ctx context.Context, jobID string, status models.JobStatus, errMsg *string) error {
	updates := map[string]interface{}{
		"status":        status,
		"error_message": errMsg,
	}
	// completed_at is set iff status=completed, per spec.md §8; failed and
	// cancelled jobs are terminal but never populate it.
	if status == models.StatusCompleted {
		now := time.Now()
		updates["completed_at"] = &now
		updates["progress"] = 100
	}
	return r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", jobID).
		Updates(updates).Error
}

// UploadedFileRepository handles UploadedFile persistence.
type UploadedFileRepository interface {
	Repository[models.UploadedFile]
	ExistAll(ctx context.Context, ids []string) (bool, error)
}

type uploadedFileRepository struct {
	*BaseRepository[models.UploadedFile]
}

// NewUploadedFileRepository constructs the UploadedFile repository over db.
func NewUploadedFileRepository(db *gorm.DB) UploadedFileRepository {
	return &uploadedFileRepository{BaseRepository: NewBaseRepository[models.UploadedFile](db)}
}

func (r *uploadedFileRepository) ExistAll(ctx context.Context, ids []string) (bool, error) {
	if len(ids) == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UploadedFile{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return false, err
	}
	return int(count) == len(ids), nil
}

// ResultRepository handles Result persistence.
type ResultRepository interface {
	Repository[models.Result]
	ListByJob(ctx context.Context, jobID string) ([]models.Result, error)
}

type resultRepository struct {
	*BaseRepository[models.Result]
}

// NewResultRepository constructs the Result repository over db.
func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{BaseRepository: NewBaseRepository[models.Result](db)}
}

func (r *resultRepository) ListByJob(ctx context.Context, jobID string) ([]models.Result, error) {
	var results []models.Result
	err := r.db.WithContext(ctx).Where("job_id = ?", jobID).Order("created_at asc").Find(&results).Error
	return results, err
}
