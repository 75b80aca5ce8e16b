package adapters

import (
	"context"

	"github.com/indra622/world-of-asr/internal/models"
	"github.com/indra622/world-of-asr/internal/recognizer"
)

// TritonCTCAdapter and TritonRNNTAdapter back recognizer.TritonCTC /
// recognizer.TritonRNNT: two decoding modes of the same NVIDIA Triton
// inference server deployment, gated by Config.EnableTriton and a
// configured Config.TritonURL.
type TritonCTCAdapter struct {
	*stub
	url string
}

func NewTritonCTCFactory(enabled bool, url string) recognizer.Factory {
	return func(key models.RecognizerKey) (recognizer.Adapter, error) {
		if err := requireEnabled(recognizer.TritonCTC, enabled); err != nil {
			return nil, err
		}
		if err := requireCredential(recognizer.TritonCTC, "triton_url", url); err != nil {
			return nil, err
		}
		return &TritonCTCAdapter{stub: newStub(recognizer.TritonCTC, key), url: url}, nil
	}
}

func (a *TritonCTCAdapter) Transcribe(ctx context.Context, audioPath, languageHint string, params recognizer.Params) (*models.Transcript, error) {
	return a.transcribeStub(audioPath)
}

type TritonRNNTAdapter struct {
	*stub
	url string
}

func NewTritonRNNTFactory(enabled bool, url string) recognizer.Factory {
	return func(key models.RecognizerKey) (recognizer.Adapter, error) {
		if err := requireEnabled(recognizer.TritonRNNT, enabled); err != nil {
			return nil, err
		}
		if err := requireCredential(recognizer.TritonRNNT, "triton_url", url); err != nil {
			return nil, err
		}
		return &TritonRNNTAdapter{stub: newStub(recognizer.TritonRNNT, key), url: url}, nil
	}
}

func (a *TritonRNNTAdapter) Transcribe(ctx context.Context, audioPath, languageHint string, params recognizer.Params) (*models.Transcript, error) {
	return a.transcribeStub(audioPath)
}
