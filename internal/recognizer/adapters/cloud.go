package adapters

import (
	"context"

	"github.com/indra622/world-of-asr/internal/models"
	"github.com/indra622/world-of-asr/internal/recognizer"
)

// GoogleSTTAdapter backs recognizer.GoogleSTT, gated by Config.EnableGoogle
// and a configured Config.GoogleProjectID.
type GoogleSTTAdapter struct {
	*stub
	projectID string
}

func NewGoogleSTTFactory(enabled bool, projectID string) recognizer.Factory {
	return func(key models.RecognizerKey) (recognizer.Adapter, error) {
		if err := requireEnabled(recognizer.GoogleSTT, enabled); err != nil {
			return nil, err
		}
		if err := requireCredential(recognizer.GoogleSTT, "google_project_id", projectID); err != nil {
			return nil, err
		}
		return &GoogleSTTAdapter{stub: newStub(recognizer.GoogleSTT, key), projectID: projectID}, nil
	}
}

func (a *GoogleSTTAdapter) Transcribe(ctx context.Context, audioPath, languageHint string, params recognizer.Params) (*models.Transcript, error) {
	return a.transcribeStub(audioPath)
}

// QwenASRAdapter backs recognizer.QwenASR, gated by Config.EnableQwen and a
// configured API key + endpoint.
type QwenASRAdapter struct {
	*stub
	endpoint string
	apiKey   string
}

func NewQwenASRFactory(enabled bool, apiKey, endpoint string) recognizer.Factory {
	return func(key models.RecognizerKey) (recognizer.Adapter, error) {
		if err := requireEnabled(recognizer.QwenASR, enabled); err != nil {
			return nil, err
		}
		if err := requireCredential(recognizer.QwenASR, "qwen_api_key", apiKey); err != nil {
			return nil, err
		}
		if err := requireCredential(recognizer.QwenASR, "qwen_endpoint", endpoint); err != nil {
			return nil, err
		}
		return &QwenASRAdapter{stub: newStub(recognizer.QwenASR, key), endpoint: endpoint, apiKey: apiKey}, nil
	}
}

func (a *QwenASRAdapter) Transcribe(ctx context.Context, audioPath, languageHint string, params recognizer.Params) (*models.Transcript, error) {
	return a.transcribeStub(audioPath)
}

// NvidiaRivaAdapter backs recognizer.NvidiaRiva, gated by Config.EnableRiva
// and a configured Config.RivaURL.
type NvidiaRivaAdapter struct {
	*stub
	url string
}

func NewNvidiaRivaFactory(enabled bool, url string) recognizer.Factory {
	return func(key models.RecognizerKey) (recognizer.Adapter, error) {
		if err := requireEnabled(recognizer.NvidiaRiva, enabled); err != nil {
			return nil, err
		}
		if err := requireCredential(recognizer.NvidiaRiva, "riva_url", url); err != nil {
			return nil, err
		}
		return &NvidiaRivaAdapter{stub: newStub(recognizer.NvidiaRiva, key), url: url}, nil
	}
}

func (a *NvidiaRivaAdapter) Transcribe(ctx context.Context, audioPath, languageHint string, params recognizer.Params) (*models.Transcript, error) {
	return a.transcribeStub(audioPath)
}
