package adapters

import (
	"context"

	"github.com/indra622/world-of-asr/internal/models"
	"github.com/indra622/world-of-asr/internal/recognizer"
)

// OriginWhisperAdapter backs recognizer.OriginWhisper: the reference OpenAI
// Whisper implementation. Always constructible — it has no external
// credential or container dependency, unlike the provider-gated backends
// below.
type OriginWhisperAdapter struct{ *stub }

func NewOriginWhisperAdapter(key models.RecognizerKey) (recognizer.Adapter, error) {
	return &OriginWhisperAdapter{stub: newStub(recognizer.OriginWhisper, key)}, nil
}

func (a *OriginWhisperAdapter) Transcribe(ctx context.Context, audioPath, languageHint string, params recognizer.Params) (*models.Transcript, error) {
	return a.transcribeStub(audioPath)
}

// FasterWhisperAdapter backs recognizer.FasterWhisper: the CTranslate2-based
// reimplementation, the only kind that accepts compute_type (int8/float32/
// float16), per spec.md §4.1's parameter table.
type FasterWhisperAdapter struct{ *stub }

func NewFasterWhisperAdapter(key models.RecognizerKey) (recognizer.Adapter, error) {
	return &FasterWhisperAdapter{stub: newStub(recognizer.FasterWhisper, key)}, nil
}

func (a *FasterWhisperAdapter) Transcribe(ctx context.Context, audioPath, languageHint string, params recognizer.Params) (*models.Transcript, error) {
	return a.transcribeStub(audioPath)
}

// HFAutoASRAdapter backs recognizer.HFAutoASR: a HuggingFace
// auto-pipeline-selected model, gated by Config.EnableHFAuto (default true
// per app/config.py) and Config.HFAutoDefaultModel.
type HFAutoASRAdapter struct {
	*stub
	model string
}

func NewHFAutoASRAdapter(enabled bool, defaultModel string) recognizer.Factory {
	return func(key models.RecognizerKey) (recognizer.Adapter, error) {
		if err := requireEnabled(recognizer.HFAutoASR, enabled); err != nil {
			return nil, err
		}
		return &HFAutoASRAdapter{stub: newStub(recognizer.HFAutoASR, key), model: defaultModel}, nil
	}
}

func (a *HFAutoASRAdapter) Transcribe(ctx context.Context, audioPath, languageHint string, params recognizer.Params) (*models.Transcript, error) {
	return a.transcribeStub(audioPath)
}
