// Package jobmanager implements the Job Lifecycle Manager (C6) of spec.md
// §4.6: create_job, run_job (dispatch), get_job, get_result_path, and
// cancel, sitting between the HTTP surface (C7) and the bounded worker
// pool (queue.TaskQueue).
package jobmanager

import (
	"context"
	"time"

	"github.com/indra622/world-of-asr/internal/models"
	"github.com/indra622/world-of-asr/internal/queue"
	"github.com/indra622/world-of-asr/internal/repository"
	"github.com/indra622/world-of-asr/pkg/apierr"
)

// CreateJobRequest mirrors the POST /transcribe body of spec.md §6.
type CreateJobRequest struct {
	FileIDs           []string
	ModelType         string
	ModelSize         string
	Language          string
	Device            string
	Parameters        models.StringMap
	Diarization       models.DiarizationConfig
	OutputFormats     []string
	ForceAlignment    bool
	AlignmentProvider string
	Postprocess       models.PostprocessOptions
}

// JobView is the read-only projection returned by GetJob, per spec.md
// §4.6's get_job(job_id).
type JobView struct {
	JobID       string     `json:"job_id"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	CurrentFile string     `json:"current_file,omitempty"`
	TotalFiles  int        `json:"total_files"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Manager is the C6 Job Lifecycle Manager.
type Manager struct {
	Jobs    repository.JobRepository
	Files   repository.UploadedFileRepository
	Results repository.ResultRepository
	Queue   *queue.TaskQueue
}

// New builds a Manager over its collaborators.
func New(jobs repository.JobRepository, files repository.UploadedFileRepository, results repository.ResultRepository, q *queue.TaskQueue) *Manager {
	return &Manager{Jobs: jobs, Files: files, Results: results, Queue: q}
}

// CreateJob implements create_job: validates the referenced files exist,
// persists the job in `pending`, links its files, and enqueues the
// background task, per spec.md §4.6 / §6's POST /transcribe.
func (m *Manager) CreateJob(ctx context.Context, req CreateJobRequest) (*models.Job, error) {
	if len(req.FileIDs) == 0 {
		return nil, apierr.New(apierr.EmptyRequest, "file_ids must be non-empty")
	}

	ok, err := m.Files.ExistAll(ctx, req.FileIDs)
	if err != nil {
		return nil, apierr.Wrap(apierr.StorageError, "check file existence", err)
	}
	if !ok {
		return nil, apierr.New(apierr.UnknownFile, "one or more file_ids do not exist")
	}

	language := req.Language
	if language == "" {
		language = "auto"
	}
	device := req.Device
	if device == "" {
		device = "cpu"
	}

	job := &models.Job{
		ModelType:         req.ModelType,
		ModelSize:         req.ModelSize,
		Language:          language,
		Device:            device,
		Status:            models.StatusPending,
		Parameters:        req.Parameters,
		Diarization:       req.Diarization,
		OutputFormats:     req.OutputFormats,
		ForceAlignment:    req.ForceAlignment,
		AlignmentProvider: req.AlignmentProvider,
		Postprocess:       req.Postprocess,
		TotalFiles:        len(req.FileIDs),
	}
	if err := m.Jobs.Create(ctx, job); err != nil {
		return nil, apierr.Wrap(apierr.StorageError, "persist job", err)
	}
	if err := m.Jobs.AttachFiles(ctx, job.ID, req.FileIDs); err != nil {
		return nil, apierr.Wrap(apierr.StorageError, "attach files", err)
	}

	if err := m.Queue.EnqueueJob(job.ID); err != nil {
		// The job stays pending; the queue's own scanner will pick it up on
		// its next sweep, per spec.md §6's job-count backpressure note
		// ("new jobs queue in pending").
		_ = err
	}

	return job, nil
}

// GetJob implements get_job(job_id), per spec.md §4.6.
func (m *Manager) GetJob(ctx context.Context, jobID string) (*JobView, error) {
	job, err := m.Jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, apierr.Wrap(apierr.UnknownJob, "job not found", err)
	}

	view := &JobView{
		JobID:       job.ID,
		Status:      string(job.Status),
		Progress:    job.Progress,
		TotalFiles:  job.TotalFiles,
		CreatedAt:   job.CreatedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
	}
	if job.CurrentFile != nil {
		view.CurrentFile = *job.CurrentFile
	}
	if job.ErrorMessage != nil {
		view.Error = *job.ErrorMessage
	}
	return view, nil
}

// GetResultPath implements get_result_path(job_id, format), per spec.md
// §4.6: nil if the job is not completed or the format was not requested.
// "The first file's" result is used when a job has more than one,
// matching spec.md §8 scenario 5.
func (m *Manager) GetResultPath(ctx context.Context, jobID, format string) (string, error) {
	job, err := m.Jobs.FindByID(ctx, jobID)
	if err != nil {
		return "", apierr.Wrap(apierr.UnknownJob, "job not found", err)
	}
	if job.Status != models.StatusCompleted {
		return "", apierr.New(apierr.ValidationError, "job is not completed")
	}

	results, err := m.Results.ListByJob(ctx, jobID)
	if err != nil {
		return "", apierr.Wrap(apierr.StorageError, "list results", err)
	}
	if len(results) == 0 {
		return "", apierr.New(apierr.UnknownResult, "job has no results")
	}

	path, ok := results[0].Paths[format]
	if !ok {
		return "", apierr.New(apierr.UnknownResult, "format not produced: "+format)
	}
	return path, nil
}

// FileResultView is one file's entry within a ResultsSummary.
type FileResultView struct {
	FileID         string   `json:"file_id"`
	SegmentCount   int      `json:"segment_count"`
	HasDiarization bool     `json:"has_diarization"`
	SpeakerCount   *int     `json:"speaker_count,omitempty"`
	Formats        []string `json:"formats"`
}

// ResultsSummary is the projection returned by GET /results/{job_id}, per
// spec.md §6: "summary over all per-file results and their available
// formats".
type ResultsSummary struct {
	JobID string           `json:"job_id"`
	Files []FileResultView `json:"files"`
}

// GetResultsSummary implements GET /results/{job_id}, per spec.md §6: 400 if
// the job is not completed, 404 if unknown.
func (m *Manager) GetResultsSummary(ctx context.Context, jobID string) (*ResultsSummary, error) {
	job, err := m.Jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, apierr.Wrap(apierr.UnknownJob, "job not found", err)
	}
	if job.Status != models.StatusCompleted {
		return nil, apierr.New(apierr.ValidationError, "job is not completed")
	}

	results, err := m.Results.ListByJob(ctx, jobID)
	if err != nil {
		return nil, apierr.Wrap(apierr.StorageError, "list results", err)
	}

	summary := &ResultsSummary{JobID: jobID, Files: make([]FileResultView, 0, len(results))}
	for _, r := range results {
		formats := make([]string, 0, len(r.Paths))
		for format := range r.Paths {
			formats = append(formats, format)
		}
		summary.Files = append(summary.Files, FileResultView{
			FileID:         r.FileID,
			SegmentCount:   r.SegmentCount,
			HasDiarization: r.HasDiarization,
			SpeakerCount:   r.SpeakerCount,
			Formats:        formats,
		})
	}
	return summary, nil
}

// Cancel implements cancel(job_id), per spec.md §4.6: only effective from
// pending or processing; pending jobs are cancelled immediately (they
// haven't reached a worker yet), processing jobs are cancelled at the
// next pipeline checkpoint via the queue's cooperative cancellation.
func (m *Manager) Cancel(ctx context.Context, jobID string) error {
	job, err := m.Jobs.FindByID(ctx, jobID)
	if err != nil {
		return apierr.Wrap(apierr.UnknownJob, "job not found", err)
	}

	switch job.Status {
	case models.StatusPending:
		msg := "job was cancelled before it started"
		return m.Jobs.MarkTerminal(ctx, jobID, models.StatusCancelled, &msg)
	case models.StatusProcessing:
		return m.Queue.KillJob(jobID)
	default:
		return apierr.New(apierr.ValidationError, "job is already terminal")
	}
}
