package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/indra622/world-of-asr/internal/models"
	"github.com/indra622/world-of-asr/internal/recognizer"
	"github.com/indra622/world-of-asr/pkg/apierr"
	"github.com/indra622/world-of-asr/pkg/logger"
)

// fastConformerOutput is the JSON document the container subprocess must
// print to stdout, per spec.md §6: "the child must emit JSON on stdout...
// parsing any non-JSON output (e.g. the legacy Python-literal eval) must be
// rejected."
type fastConformerOutput struct {
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// FastConformerAdapter backs recognizer.FastConformer: "delegated to an
// external container subprocess" per spec.md §4.1. Grounded on
// internal/diarengine/manager.go's exec.Command argv idiom, but with a
// plain one-shot JSON-over-stdout contract (spec.md §9) instead of gRPC —
// this repository doesn't carry a generated gRPC client for this backend.
type FastConformerAdapter struct {
	*stub
	command string

	mu sync.Mutex
}

// NewFastConformerFactory constructs the adapter. command is the container
// entrypoint (argv[0]); BackendUnavailable if unconfigured, matching the
// other credential-gated backends.
func NewFastConformerFactory(command string) recognizer.Factory {
	return func(key models.RecognizerKey) (recognizer.Adapter, error) {
		if err := requireCredential(recognizer.FastConformer, "fast_conformer_cmd", command); err != nil {
			return nil, err
		}
		return &FastConformerAdapter{stub: newStub(recognizer.FastConformer, key), command: command}, nil
	}
}

func (a *FastConformerAdapter) Transcribe(ctx context.Context, audioPath, languageHint string, params recognizer.Params) (*models.Transcript, error) {
	if !a.ready() {
		return nil, apierr.New(apierr.ModelLoadError, "fast_conformer: adapter not loaded")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	argv := []string{audioPath, "--language", languageHint}
	cmd := exec.CommandContext(ctx, a.command, argv...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.PipelineStage("", "fast_conformer_exec", "command", a.command, "args", strings.Join(argv, " "))

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, apierr.Wrap(apierr.BackendTransient, "fast_conformer: subprocess cancelled", err)
		}
		return nil, apierr.Wrap(apierr.BackendTransient, fmt.Sprintf("fast_conformer: subprocess failed: %s", stderr.String()), err)
	}

	var out fastConformerOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, apierr.Wrap(apierr.BackendPermanent, "fast_conformer: subprocess did not emit valid JSON", err)
	}

	segments := make([]models.Segment, 0, len(out.Segments))
	for _, s := range out.Segments {
		segments = append(segments, models.Segment{Start: s.Start, End: s.End, Text: s.Text})
	}
	return &models.Transcript{Segments: segments}, nil
}

// RegisterProcess lets the caller (the bounded worker pool, spec.md §5)
// observe the subprocess for forceful termination, matching
// queue.RunningJob's registerProcess callback contract.
func (a *FastConformerAdapter) RegisterProcess(ctx context.Context, audioPath, languageHint string, params recognizer.Params, register func(*exec.Cmd)) (*models.Transcript, error) {
	if !a.ready() {
		return nil, apierr.New(apierr.ModelLoadError, "fast_conformer: adapter not loaded")
	}

	argv := []string{audioPath, "--language", languageHint}
	cmd := exec.CommandContext(ctx, a.command, argv...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, apierr.Wrap(apierr.BackendUnavailable, "fast_conformer: failed to start subprocess", err)
	}
	register(cmd)

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, apierr.Wrap(apierr.BackendTransient, "fast_conformer: subprocess cancelled", err)
		}
		return nil, apierr.Wrap(apierr.BackendTransient, fmt.Sprintf("fast_conformer: subprocess failed: %s", stderr.String()), err)
	}

	var out fastConformerOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, apierr.Wrap(apierr.BackendPermanent, "fast_conformer: subprocess did not emit valid JSON", err)
	}

	segments := make([]models.Segment, 0, len(out.Segments))
	for _, s := range out.Segments {
		segments = append(segments, models.Segment{Start: s.Start, End: s.End, Text: s.Text})
	}
	return &models.Transcript{Segments: segments}, nil
}
