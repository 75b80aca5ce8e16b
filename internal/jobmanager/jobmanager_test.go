package jobmanager

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indra622/world-of-asr/internal/models"
	"github.com/indra622/world-of-asr/internal/queue"
	"github.com/indra622/world-of-asr/pkg/apierr"
)

// fakeJobRepository is a minimal in-memory stand-in for
// repository.JobRepository, enough to exercise Manager without a database.
type fakeJobRepository struct {
	mu   sync.Mutex
	jobs map[string]*models.Job
}

func newFakeJobRepository() *fakeJobRepository {
	return &fakeJobRepository{jobs: make(map[string]*models.Job)}
}

func (r *fakeJobRepository) Create(_ context.Context, job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *fakeJobRepository) FindByID(_ context.Context, id interface{}) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id.(string)]
	if !ok {
		return nil, apierr.New(apierr.UnknownJob, "not found")
	}
	cp := *job
	return &cp, nil
}

func (r *fakeJobRepository) Update(_ context.Context, job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *fakeJobRepository) Delete(_ context.Context, id interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id.(string))
	return nil
}

func (r *fakeJobRepository) List(_ context.Context, _, _ int) ([]models.Job, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, *j)
	}
	return out, int64(len(out)), nil
}

func (r *fakeJobRepository) FindWithAssociations(ctx context.Context, id string) (*models.Job, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeJobRepository) AttachFiles(_ context.Context, jobID string, fileIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return apierr.New(apierr.UnknownJob, "not found")
	}
	for _, id := range fileIDs {
		job.Files = append(job.Files, models.UploadedFile{ID: id})
	}
	return nil
}

func (r *fakeJobRepository) UpdateStatus(_ context.Context, jobID string, status models.JobStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return apierr.New(apierr.UnknownJob, "not found")
	}
	job.Status = status
	return nil
}

func (r *fakeJobRepository) UpdateProgress(_ context.Context, jobID string, progress int, currentFile string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return apierr.New(apierr.UnknownJob, "not found")
	}
	job.Progress = progress
	job.CurrentFile = &currentFile
	return nil
}

func (r *fakeJobRepository) MarkStarted(_ context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return apierr.New(apierr.UnknownJob, "not found")
	}
	job.Status = models.StatusProcessing
	return nil
}

func (r *fakeJobRepository) MarkTerminal(_ context.Context, jobID string, status models.JobStatus, errMsg *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return apierr.New(apierr.UnknownJob, "not found")
	}
	job.Status = status
	job.ErrorMessage = errMsg
	if status == models.StatusCompleted {
		job.Progress = 100
	}
	return nil
}

func (r *fakeJobRepository) setStatus(jobID string, status models.JobStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[jobID].Status = status
}

type fakeFileRepository struct {
	known map[string]bool
}

func (r *fakeFileRepository) Create(context.Context, *models.UploadedFile) error { return nil }
func (r *fakeFileRepository) FindByID(_ context.Context, id interface{}) (*models.UploadedFile, error) {
	return &models.UploadedFile{ID: id.(string)}, nil
}
func (r *fakeFileRepository) Update(context.Context, *models.UploadedFile) error { return nil }
func (r *fakeFileRepository) Delete(context.Context, interface{}) error         { return nil }
func (r *fakeFileRepository) List(context.Context, int, int) ([]models.UploadedFile, int64, error) {
	return nil, 0, nil
}
func (r *fakeFileRepository) ExistAll(_ context.Context, ids []string) (bool, error) {
	for _, id := range ids {
		if !r.known[id] {
			return false, nil
		}
	}
	return true, nil
}

type fakeResultRepository struct {
	byJob map[string][]models.Result
}

func (r *fakeResultRepository) Create(context.Context, *models.Result) error { return nil }
func (r *fakeResultRepository) FindByID(context.Context, interface{}) (*models.Result, error) {
	return nil, apierr.New(apierr.UnknownFile, "not found")
}
func (r *fakeResultRepository) Update(context.Context, *models.Result) error { return nil }
func (r *fakeResultRepository) Delete(context.Context, interface{}) error    { return nil }
func (r *fakeResultRepository) List(context.Context, int, int) ([]models.Result, int64, error) {
	return nil, 0, nil
}
func (r *fakeResultRepository) ListByJob(_ context.Context, jobID string) ([]models.Result, error) {
	return r.byJob[jobID], nil
}

func newTestManager(t *testing.T) (*Manager, *fakeJobRepository, *fakeFileRepository, *fakeResultRepository) {
	t.Helper()
	jobs := newFakeJobRepository()
	files := &fakeFileRepository{known: map[string]bool{"file-1": true, "file-2": true}}
	results := &fakeResultRepository{byJob: make(map[string][]models.Result)}
	q := queue.NewTaskQueue(1, false, nil, jobs)
	return New(jobs, files, results, q), jobs, files, results
}

func TestCreateJob_RejectsEmptyFileIDs(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	_, err := m.CreateJob(context.Background(), CreateJobRequest{})
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.EmptyRequest))
}

func TestCreateJob_RejectsUnknownFile(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	_, err := m.CreateJob(context.Background(), CreateJobRequest{FileIDs: []string{"does-not-exist"}})
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.UnknownFile))
}

func TestCreateJob_DefaultsLanguageAndDevice(t *testing.T) {
	m, jobs, _, _ := newTestManager(t)
	job, err := m.CreateJob(context.Background(), CreateJobRequest{FileIDs: []string{"file-1"}})
	require.NoError(t, err)
	assert.Equal(t, "auto", job.Language)
	assert.Equal(t, "cpu", job.Device)
	assert.Equal(t, models.StatusPending, job.Status)

	stored, err := jobs.FindByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TotalFiles)
}

func TestGetJob_ProjectsViewFields(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	job, err := m.CreateJob(context.Background(), CreateJobRequest{FileIDs: []string{"file-1", "file-2"}})
	require.NoError(t, err)

	view, err := m.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, view.JobID)
	assert.Equal(t, "pending", view.Status)
	assert.Equal(t, 2, view.TotalFiles)
}

func TestGetJob_UnknownJob(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	_, err := m.GetJob(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.UnknownJob))
}

func TestGetResultPath_NotCompletedIsValidationError(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	job, err := m.CreateJob(context.Background(), CreateJobRequest{FileIDs: []string{"file-1"}})
	require.NoError(t, err)

	_, err = m.GetResultPath(context.Background(), job.ID, "vtt")
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.ValidationError))
}

func TestGetResultPath_UnknownFormatAfterCompletion(t *testing.T) {
	m, jobs, _, results := newTestManager(t)
	job, err := m.CreateJob(context.Background(), CreateJobRequest{FileIDs: []string{"file-1"}})
	require.NoError(t, err)

	jobs.setStatus(job.ID, models.StatusCompleted)
	results.byJob[job.ID] = []models.Result{{FileID: "file-1", Paths: models.StringMap{"vtt": "/out/a.vtt"}}}

	path, err := m.GetResultPath(context.Background(), job.ID, "vtt")
	require.NoError(t, err)
	assert.Equal(t, "/out/a.vtt", path)

	_, err = m.GetResultPath(context.Background(), job.ID, "srt")
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.UnknownResult))
}

func TestGetResultsSummary_ListsFormatsPerFile(t *testing.T) {
	m, jobs, _, results := newTestManager(t)
	job, err := m.CreateJob(context.Background(), CreateJobRequest{FileIDs: []string{"file-1"}})
	require.NoError(t, err)

	jobs.setStatus(job.ID, models.StatusCompleted)
	speakerCount := 2
	results.byJob[job.ID] = []models.Result{{
		FileID:         "file-1",
		SegmentCount:   3,
		HasDiarization: true,
		SpeakerCount:   &speakerCount,
		Paths:          models.StringMap{"vtt": "/out/a.vtt", "srt": "/out/a.srt"},
	}}

	summary, err := m.GetResultsSummary(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, summary.Files, 1)
	assert.Equal(t, "file-1", summary.Files[0].FileID)
	assert.Equal(t, 3, summary.Files[0].SegmentCount)
	assert.True(t, summary.Files[0].HasDiarization)
	assert.ElementsMatch(t, []string{"vtt", "srt"}, summary.Files[0].Formats)
}

func TestGetResultsSummary_NotCompleted(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	job, err := m.CreateJob(context.Background(), CreateJobRequest{FileIDs: []string{"file-1"}})
	require.NoError(t, err)

	_, err = m.GetResultsSummary(context.Background(), job.ID)
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.ValidationError))
}

func TestCancel_PendingJobTerminatesImmediately(t *testing.T) {
	m, jobs, _, _ := newTestManager(t)
	job, err := m.CreateJob(context.Background(), CreateJobRequest{FileIDs: []string{"file-1"}})
	require.NoError(t, err)

	require.NoError(t, m.Cancel(context.Background(), job.ID))

	stored, err := jobs.FindByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)
}

func TestCancel_TerminalJobIsValidationError(t *testing.T) {
	m, jobs, _, _ := newTestManager(t)
	job, err := m.CreateJob(context.Background(), CreateJobRequest{FileIDs: []string{"file-1"}})
	require.NoError(t, err)
	jobs.setStatus(job.ID, models.StatusCompleted)

	err = m.Cancel(context.Background(), job.ID)
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.ValidationError))
}

func TestCancel_ProcessingJobDelegatesToQueue(t *testing.T) {
	m, jobs, _, _ := newTestManager(t)
	job, err := m.CreateJob(context.Background(), CreateJobRequest{FileIDs: []string{"file-1"}})
	require.NoError(t, err)
	jobs.setStatus(job.ID, models.StatusProcessing)

	// No worker actually picked up this job id, so the queue has no
	// RunningJob entry for it; KillJob surfaces that as an error rather
	// than Cancel silently no-oping, proving the processing branch really
	// delegates to queue.KillJob instead of handling it locally.
	err = m.Cancel(context.Background(), job.ID)
	require.Error(t, err)
}

func TestCancel_UnknownJob(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	err := m.Cancel(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.UnknownJob))
}
