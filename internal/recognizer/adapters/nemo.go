package adapters

import (
	"context"

	"github.com/indra622/world-of-asr/internal/models"
	"github.com/indra622/world-of-asr/internal/recognizer"
)

// NemoCTCOfflineAdapter and NemoRNNTStreamingAdapter back
// recognizer.NemoCTCOffline / recognizer.NemoRNNTStreaming: two decoding
// modes of the containerized NeMo worker, gated by Config.EnableNemo. The
// container itself is invoked as a subprocess by FastConformerAdapter's
// model family; these two kinds represent NeMo decode configurations that
// share the same enablement flag but are distinct RecognizerKeys.
type NemoCTCOfflineAdapter struct{ *stub }

func NewNemoCTCOfflineFactory(enabled bool) recognizer.Factory {
	return func(key models.RecognizerKey) (recognizer.Adapter, error) {
		if err := requireEnabled(recognizer.NemoCTCOffline, enabled); err != nil {
			return nil, err
		}
		return &NemoCTCOfflineAdapter{stub: newStub(recognizer.NemoCTCOffline, key)}, nil
	}
}

func (a *NemoCTCOfflineAdapter) Transcribe(ctx context.Context, audioPath, languageHint string, params recognizer.Params) (*models.Transcript, error) {
	return a.transcribeStub(audioPath)
}

type NemoRNNTStreamingAdapter struct{ *stub }

func NewNemoRNNTStreamingFactory(enabled bool) recognizer.Factory {
	return func(key models.RecognizerKey) (recognizer.Adapter, error) {
		if err := requireEnabled(recognizer.NemoRNNTStreaming, enabled); err != nil {
			return nil, err
		}
		return &NemoRNNTStreamingAdapter{stub: newStub(recognizer.NemoRNNTStreaming, key)}, nil
	}
}

func (a *NemoRNNTStreamingAdapter) Transcribe(ctx context.Context, audioPath, languageHint string, params recognizer.Params) (*models.Transcript, error) {
	return a.transcribeStub(audioPath)
}
