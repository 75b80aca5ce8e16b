package diarization

import (
	"context"
	"fmt"

	"github.com/indra622/world-of-asr/internal/models"
	"github.com/indra622/world-of-asr/pkg/apierr"
)

// LabelPrefix matches the speaker label format produced by the original
// diarization_process output construction (woa/diarize.py), required
// verbatim by spec.md.
const LabelPrefix = "발언자_"

// Engine assigns speaker labels to an existing segmentation, per spec.md
// §4.4. It owns no state beyond its Embedder; the server builds one Engine
// at startup with New and hands it to the pipeline, outside the recognizer
// registry.
type Engine struct {
	Embedder Embedder
}

// New builds an Engine. A nil embedder defaults to the stub embedder.
func New(embedder Embedder) *Engine {
	if embedder == nil {
		embedder = NewStubEmbedder()
	}
	return &Engine{Embedder: embedder}
}

// Label runs the full pipeline of spec.md §4.4 over transcript's segments:
// load audio, embed each segment window, cluster, and write a speaker
// label onto every segment in place. minSpeakers/maxSpeakers must each be
// in [1, 20].
func (e *Engine) Label(ctx context.Context, audioPath string, transcript *models.Transcript, minSpeakers, maxSpeakers int) error {
	n := len(transcript.Segments)
	if n == 0 {
		return nil
	}

	samples, err := LoadPCM(audioPath)
	if err != nil {
		return err
	}

	embeddings := make([][]float64, n)
	for i, seg := range transcript.Segments {
		window := Slice(samples, seg.Start, seg.End)
		emb, err := e.Embedder.Embed(ctx, window)
		if err != nil {
			return apierr.Wrap(apierr.DiarizationMismatch, fmt.Sprintf("embed segment %d", i), err)
		}
		embeddings[i] = emb
	}

	labels := clusterEmbeddings(embeddings, minSpeakers, maxSpeakers)
	if len(labels) != n {
		return apierr.New(apierr.DiarizationMismatch, fmt.Sprintf("produced %d labels for %d segments", len(labels), n))
	}

	for i := range transcript.Segments {
		transcript.Segments[i].Speaker = fmt.Sprintf("%s%d", LabelPrefix, labels[i])
	}
	return nil
}
