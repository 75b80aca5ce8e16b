package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/indra622/world-of-asr/internal/config"
	"github.com/indra622/world-of-asr/internal/jobmanager"
	"github.com/indra622/world-of-asr/internal/models"
	"github.com/indra622/world-of-asr/internal/repository"
	"github.com/indra622/world-of-asr/pkg/apierr"
	"github.com/indra622/world-of-asr/pkg/logger"
)

// Handler contains every HTTP handler of C7, wired over the Job Lifecycle
// Manager and the repositories it needs for upload admission.
type Handler struct {
	cfg     *config.Config
	db      *gorm.DB
	manager *jobmanager.Manager
	files   repository.UploadedFileRepository
}

// NewHandler builds a Handler over its collaborators.
func NewHandler(cfg *config.Config, db *gorm.DB, manager *jobmanager.Manager, files repository.UploadedFileRepository) *Handler {
	return &Handler{cfg: cfg, db: db, manager: manager, files: files}
}

// resultMimeTypes maps a subtitle format to the download Content-Type of
// spec.md §6's GET /results/{job_id}/{format}.
var resultMimeTypes = map[string]string{
	"vtt":  "text/vtt",
	"srt":  "application/x-subrip",
	"json": "application/json",
	"txt":  "text/plain",
	"tsv":  "text/tab-separated-values",
}

// Health implements GET /health, per spec.md §6.
func (h *Handler) Health(c *gin.Context) {
	dbStatus := "ok"
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "unreachable"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"database":  dbStatus,
		"providers": providerEnabledMap(h.cfg),
	})
}

// Upload implements POST /upload, per spec.md §6: admits up to
// cfg.MaxFiles files, each within cfg.MaxFileSize and an allowed
// extension/MIME prefix, writing them under cfg.UploadDir and rolling back
// any partial writes on failure.
func (h *Handler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	uploads := form.File["files"]
	if len(uploads) == 0 {
		respondErr(c, apierr.New(apierr.EmptyRequest, "no files provided"))
		return
	}
	if len(uploads) > h.cfg.MaxFiles {
		respondErr(c, apierr.New(apierr.ValidationError, fmt.Sprintf("too many files: max %d", h.cfg.MaxFiles)))
		return
	}

	for _, fh := range uploads {
		if fh.Size > h.cfg.MaxFileSize {
			respondErr(c, apierr.New(apierr.ValidationError, fmt.Sprintf("%s exceeds max file size", fh.Filename)))
			return
		}
		if !allowedExtension(fh.Filename, h.cfg.AllowedUploadExts) {
			respondErr(c, apierr.New(apierr.ValidationError, fmt.Sprintf("%s has an unsupported extension", fh.Filename)))
			return
		}
		if ct := fh.Header.Get("Content-Type"); ct != "" && !allowedMimePrefix(ct, h.cfg.AllowedMimePrefix) {
			respondErr(c, apierr.New(apierr.ValidationError, fmt.Sprintf("%s has an unsupported content type %q", fh.Filename, ct)))
			return
		}
	}

	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		respondErr(c, apierr.Wrap(apierr.StorageError, "create upload directory", err))
		return
	}

	var saved []string
	var savedIDs []string
	rollback := func() {
		for _, path := range saved {
			_ = os.Remove(path)
		}
		for _, id := range savedIDs {
			_ = h.files.Delete(c.Request.Context(), id)
		}
	}

	fileIDs := make([]string, 0, len(uploads))
	for _, fh := range uploads {
		id := uuid.New().String()
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		storagePath := filepath.Join(h.cfg.UploadDir, id+ext)

		saved = append(saved, storagePath)
		if err := c.SaveUploadedFile(fh, storagePath); err != nil {
			rollback()
			respondErr(c, apierr.Wrap(apierr.StorageError, "write uploaded file", err))
			return
		}

		record := &models.UploadedFile{
			ID:               id,
			OriginalFilename: fh.Filename,
			StoragePath:      storagePath,
			FileSize:         fh.Size,
			MimeType:         fh.Header.Get("Content-Type"),
		}
		if err := h.files.Create(c.Request.Context(), record); err != nil {
			rollback()
			respondErr(c, apierr.Wrap(apierr.StorageError, "persist uploaded file", err))
			return
		}
		savedIDs = append(savedIDs, id)
		fileIDs = append(fileIDs, id)
	}

	c.JSON(http.StatusCreated, gin.H{
		"file_ids":    fileIDs,
		"uploaded_at": time.Now().UTC(),
	})
}

// CreateJob implements POST /transcribe, per spec.md §6.
func (h *Handler) CreateJob(c *gin.Context) {
	var body struct {
		FileIDs           []string                   `json:"file_ids"`
		ModelType         string                     `json:"model_type"`
		ModelSize         string                     `json:"model_size"`
		Language          string                     `json:"language"`
		Device            string                     `json:"device"`
		Parameters        models.StringMap           `json:"parameters"`
		Diarization       models.DiarizationConfig   `json:"diarization"`
		OutputFormats     []string                   `json:"output_formats"`
		ForceAlignment    bool                       `json:"force_alignment"`
		AlignmentProvider string                     `json:"alignment_provider"`
		Postprocess       models.PostprocessOptions  `json:"postprocess"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondErr(c, apierr.New(apierr.ValidationError, "invalid request body: "+err.Error()))
		return
	}

	job, err := h.manager.CreateJob(c.Request.Context(), jobmanager.CreateJobRequest{
		FileIDs:           body.FileIDs,
		ModelType:         body.ModelType,
		ModelSize:         body.ModelSize,
		Language:          body.Language,
		Device:            body.Device,
		Parameters:        body.Parameters,
		Diarization:       body.Diarization,
		OutputFormats:     body.OutputFormats,
		ForceAlignment:    body.ForceAlignment,
		AlignmentProvider: body.AlignmentProvider,
		Postprocess:       body.Postprocess,
	})
	if err != nil {
		respondErr(c, err)
		return
	}

	logger.JobEnqueued(job.ID, job.TotalFiles)
	c.JSON(http.StatusAccepted, gin.H{
		"job_id":      job.ID,
		"status":      string(job.Status),
		"message":     "job queued",
		"files_count": job.TotalFiles,
	})
}

// GetJob implements GET /transcribe/jobs/{job_id}, per spec.md §6.
func (h *Handler) GetJob(c *gin.Context) {
	view, err := h.manager.GetJob(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CancelJob implements cancel(job_id) of spec.md §4.6 over
// DELETE /transcribe/jobs/{job_id}: effective only from pending/processing.
func (h *Handler) CancelJob(c *gin.Context) {
	if err := h.manager.Cancel(c.Request.Context(), c.Param("job_id")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// Providers implements GET /transcribe/providers, per spec.md §6: enabled
// backends plus their supported models and languages.
func (h *Handler) Providers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"providers": providerCatalog(h.cfg)})
}

// GetResultsSummary implements GET /results/{job_id}, per spec.md §6.
func (h *Handler) GetResultsSummary(c *gin.Context) {
	summary, err := h.manager.GetResultsSummary(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// DownloadResult implements GET /results/{job_id}/{format}, per spec.md §6.
func (h *Handler) DownloadResult(c *gin.Context) {
	format := c.Param("format")
	path, err := h.manager.GetResultPath(c.Request.Context(), c.Param("job_id"), format)
	if err != nil {
		respondErr(c, err)
		return
	}

	mime, ok := resultMimeTypes[format]
	if !ok {
		mime = "application/octet-stream"
	}
	c.Header("Content-Type", mime)
	c.File(path)
}

// respondErr maps an apierr.Kind-carrying error to its HTTP status, per
// spec.md §7's policy table. Unclassified errors surface as 500.
func respondErr(c *gin.Context, err error) {
	status := apierr.KindOf(err).HTTPStatus()
	c.JSON(status, gin.H{"error": err.Error()})
}

func allowedExtension(filename string, allowed []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if strings.EqualFold(ext, a) {
			return true
		}
	}
	return false
}

func allowedMimePrefix(contentType string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(contentType, p) {
			return true
		}
	}
	return false
}
