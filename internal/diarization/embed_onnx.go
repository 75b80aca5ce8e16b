//go:build onnx

package diarization

import (
	"context"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/indra622/world-of-asr/pkg/apierr"
)

// onnxInitOnce/onnxInitErr mirror the shared-environment-once idiom of
// nupi-ai-plugin-vad-local-silero/internal/engine/silero.go's ortInitOnce:
// onnxruntime's environment must be initialized exactly once per process.
var (
	onnxInitOnce sync.Once
	onnxInitErr  error
)

// onnxEmbedder runs a real speaker-embedding model (e.g. a WeSpeaker
// ResNet34 export) via ONNX Runtime. Built only with -tags onnx; the
// default build uses stubEmbedder instead, since the model weights are an
// external collaborator this module does not vendor.
type onnxEmbedder struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// NewONNXEmbedder loads modelPath as a speaker-embedding ONNX graph
// expecting a single "input" tensor of shape [1, N] (mono float32 PCM) and
// a single "embedding" output tensor of shape [1, embeddingDim].
func NewONNXEmbedder(modelPath string, maxSamples int) (Embedder, error) {
	onnxInitOnce.Do(func() {
		onnxInitErr = ort.InitializeEnvironment()
	})
	if onnxInitErr != nil {
		return nil, apierr.Wrap(apierr.ModelLoadError, "onnxruntime: initialize environment", onnxInitErr)
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(maxSamples)))
	if err != nil {
		return nil, apierr.Wrap(apierr.ModelLoadError, "create input tensor", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, embeddingDim))
	if err != nil {
		input.Destroy()
		return nil, apierr.Wrap(apierr.ModelLoadError, "create output tensor", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input"},
		[]string{"embedding"},
		[]ort.Value{input},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, apierr.Wrap(apierr.ModelLoadError, "create onnx session", err)
	}

	return &onnxEmbedder{session: session, input: input, output: output}, nil
}

func (e *onnxEmbedder) Embed(ctx context.Context, pcm []float32) ([]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	data := e.input.GetData()
	n := copy(data, pcm)
	for i := n; i < len(data); i++ {
		data[i] = 0
	}

	if err := e.session.Run(); err != nil {
		return nil, apierr.Wrap(apierr.ModelLoadError, "onnxruntime: inference", err)
	}

	out := e.output.GetData()
	vec := make([]float64, len(out))
	for i, v := range out {
		vec[i] = float64(v)
	}
	return vec, nil
}

func (e *onnxEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	if e.input != nil {
		e.input.Destroy()
		e.input = nil
	}
	if e.output != nil {
		e.output.Destroy()
		e.output = nil
	}
	return nil
}
