package recognizer

import (
	"context"

	"github.com/indra622/world-of-asr/internal/models"
)

// Kind enumerates the recognizer variants of spec.md §4.1.
type Kind string

const (
	OriginWhisper     Kind = "origin_whisper"
	FasterWhisper     Kind = "faster_whisper"
	FastConformer     Kind = "fast_conformer"
	GoogleSTT         Kind = "google_stt"
	QwenASR           Kind = "qwen_asr"
	NemoCTCOffline    Kind = "nemo_ctc_offline"
	NemoRNNTStreaming Kind = "nemo_rnnt_streaming"
	TritonCTC         Kind = "triton_ctc"
	TritonRNNT        Kind = "triton_rnnt"
	NvidiaRiva        Kind = "nvidia_riva"
	HFAutoASR         Kind = "hf_auto_asr"
)

// Adapter is the capability contract of spec.md §4.1, uniform over every
// backend. Load and Unload are idempotent; Transcribe must not be called
// concurrently on the same instance (spec.md §5's non-reentrancy rule).
type Adapter interface {
	// Load transitions the adapter to ready. Idempotent.
	Load(ctx context.Context) error

	// Transcribe runs recognition over the file at audioPath. languageHint
	// is "auto" or an ISO language code.
	Transcribe(ctx context.Context, audioPath, languageHint string, params Params) (*models.Transcript, error)

	// Unload releases native resources. Idempotent; a subsequent
	// Transcribe call must Load again first.
	Unload(ctx context.Context) error
}

// Factory constructs an Adapter for key, failing with apierr.BackendDisabled
// or apierr.BackendUnavailable if the backend cannot be constructed.
type Factory func(key models.RecognizerKey) (Adapter, error)
