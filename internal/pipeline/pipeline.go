// Package pipeline implements the Transcription Pipeline (C5) of spec.md
// §4.3: per-job orchestration of recognizer resolution, sequential
// per-file transcription with retry, optional diarization, and
// multi-format output writing with per-format failure isolation.
package pipeline

import (
	"context"
	"os/exec"
	"path/filepath"

	"github.com/indra622/world-of-asr/internal/config"
	"github.com/indra622/world-of-asr/internal/diarization"
	"github.com/indra622/world-of-asr/internal/models"
	"github.com/indra622/world-of-asr/internal/recognizer"
	"github.com/indra622/world-of-asr/internal/recognizer/registry"
	"github.com/indra622/world-of-asr/internal/repository"
	"github.com/indra622/world-of-asr/internal/subtitles"
	"github.com/indra622/world-of-asr/pkg/apierr"
	"github.com/indra622/world-of-asr/pkg/logger"
)

// processRegisterable is implemented by recognizer adapters that run as an
// external subprocess (currently only FastConformerAdapter), letting the
// pipeline hand the live *exec.Cmd back to the worker pool for forceful
// cancellation, per spec.md §5's cancellation model.
type processRegisterable interface {
	RegisterProcess(ctx context.Context, audioPath, languageHint string, params recognizer.Params, register func(*exec.Cmd)) (*models.Transcript, error)
}

// Processor drives spec.md §4.3 for one job at a time; it implements
// queue.JobProcessor.
type Processor struct {
	Jobs       repository.JobRepository
	Results    repository.ResultRepository
	Registry   *registry.Registry
	Diarizer   *diarization.Engine
	Cfg        *config.Config
}

// New builds a Processor over its collaborators.
func New(jobs repository.JobRepository, results repository.ResultRepository, reg *registry.Registry, diarizer *diarization.Engine, cfg *config.Config) *Processor {
	return &Processor{Jobs: jobs, Results: results, Registry: reg, Diarizer: diarizer, Cfg: cfg}
}

// ProcessJob runs a job with no subprocess-registration hook, for callers
// that don't need forceful-kill support.
func (p *Processor) ProcessJob(ctx context.Context, jobID string) error {
	return p.ProcessJobWithProcess(ctx, jobID, func(*exec.Cmd) {})
}

// ProcessJobWithProcess implements queue.JobProcessor, per spec.md §4.3.
func (p *Processor) ProcessJobWithProcess(ctx context.Context, jobID string, registerProcess func(*exec.Cmd)) error {
	job, err := p.Jobs.FindWithAssociations(ctx, jobID)
	if err != nil {
		return apierr.Wrap(apierr.UnknownJob, "load job "+jobID, err)
	}

	key := models.RecognizerKey{
		Kind:   job.ModelType,
		Size:   job.ModelSize,
		Device: job.Device,
	}
	if recognizer.Kind(job.ModelType) == recognizer.FasterWhisper {
		key.ComputeType = job.Parameters["compute_type"]
	}
	adapter, err := p.Registry.Acquire(ctx, key)
	if err != nil {
		return err
	}
	defer p.Registry.Release(key)

	params := recognizer.NormalizeParams(rawParamsFromStringMap(job.Parameters))

	n := len(job.Files)
	formats := resolveFormats(job.OutputFormats)

	for i, file := range job.Files {
		if err := ctx.Err(); err != nil {
			return err
		}

		progress := (i * 100) / maxInt(n, 1)
		currentFile := file.OriginalFilename
		if err := p.Jobs.UpdateProgress(ctx, jobID, progress, currentFile); err != nil {
			logger.Error("Failed to update job progress", "job_id", jobID, "error", err)
		}

		transcript, err := p.transcribeFile(ctx, adapter, file, job, params, registerProcess)
		if err != nil {
			return err
		}

		if job.Diarization.Enabled {
			if err := p.Diarizer.Label(ctx, file.StoragePath, transcript, job.Diarization.MinSpeakers, job.Diarization.MaxSpeakers); err != nil {
				return err
			}
		}

		if job.ForceAlignment {
			alignForced(transcript)
		}

		outDir := filepath.Join(p.Cfg.ResultsDir, jobID)
		baseName := deriveBaseName(file.OriginalFilename, job.ModelType)
		paths := writeOutputs(outDir, baseName, transcript, formats)

		result := &models.Result{
			JobID:          jobID,
			FileID:         file.ID,
			SegmentCount:   len(transcript.Segments),
			HasDiarization: job.Diarization.Enabled,
			Paths:          paths,
		}
		if job.Diarization.Enabled {
			count := distinctSpeakerCount(transcript)
			result.SpeakerCount = &count
		}
		if err := p.Results.Create(ctx, result); err != nil {
			return apierr.Wrap(apierr.StorageError, "persist result", err)
		}
	}

	return nil
}

func (p *Processor) transcribeFile(ctx context.Context, adapter recognizer.Adapter, file models.UploadedFile, job *models.Job, params recognizer.Params, registerProcess func(*exec.Cmd)) (*models.Transcript, error) {
	var transcript *models.Transcript
	err := withRetry(ctx, p.Cfg.RetryMaxAttempts, func(ctx context.Context) error {
		var err error
		if reg, ok := adapter.(processRegisterable); ok {
			transcript, err = reg.RegisterProcess(ctx, file.StoragePath, job.Language, params, registerProcess)
		} else {
			transcript, err = adapter.Transcribe(ctx, file.StoragePath, job.Language, params)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return transcript, nil
}

// alignForced is the forced-alignment collaborator of spec.md §4.3: "if
// forced alignment is requested and the recognizer has no word timings
// (and an aligner is configured), invokes the aligner collaborator
// (stubbable; no-op if unavailable)". No aligner is configured in this
// build, so it is a documented no-op rather than an error.
func alignForced(t *models.Transcript) {
	_ = t
}

func resolveFormats(requested []string) []string {
	for _, f := range requested {
		if f == "all" {
			return []string{"vtt", "srt", "tsv", "txt", "json"}
		}
	}
	return requested
}

func writeOutputs(outDir, baseName string, t *models.Transcript, formats []string) models.StringMap {
	paths := make(models.StringMap)
	for _, format := range formats {
		path, err := subtitles.WriteFormat(outDir, baseName, format, t, subtitles.Options{})
		if err != nil {
			logger.PipelineStage("", "format_write_failed", "format", format, "error", err.Error())
			continue
		}
		paths[format] = path
	}
	return paths
}

func distinctSpeakerCount(t *models.Transcript) int {
	seen := make(map[string]struct{})
	for _, seg := range t.Segments {
		if seg.Speaker != "" {
			seen[seg.Speaker] = struct{}{}
		}
	}
	return len(seen)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
