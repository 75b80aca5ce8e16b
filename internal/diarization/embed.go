package diarization

import (
	"context"
	"hash/fnv"
	"math"
)

// embeddingDim is the output dimension of the WeSpeaker ResNet34 speaker
// embedding model referenced by spec.md §4.4 step 2. The real model's
// checkpoint is an external collaborator (like the ASR backends themselves);
// only its interface is modeled here.
const embeddingDim = 256

// Embedder produces a fixed-length speaker embedding from a PCM window.
type Embedder interface {
	Embed(ctx context.Context, pcm []float32) ([]float64, error)
}

// stubEmbedder is a deterministic placeholder embedder: it derives a
// fixed-length vector from simple signal statistics (energy, zero-crossing
// rate, a content hash) rather than running a real speaker model. It is a
// clearly-marked scaffold per spec.md §9 ("stub kinds that return empty
// transcripts are acceptable scaffolds but must be clearly marked and
// testable") — same spirit, applied to embeddings instead of transcripts.
// It is deterministic and content-sensitive so cluster.go's algorithm is
// exercisable and testable end-to-end without a real model runtime.
type stubEmbedder struct{}

// NewStubEmbedder returns the default Embedder used when no real speaker
// embedding backend is configured.
func NewStubEmbedder() Embedder { return stubEmbedder{} }

func (stubEmbedder) Embed(ctx context.Context, pcm []float32) ([]float64, error) {
	vec := make([]float64, embeddingDim)
	if len(pcm) == 0 {
		return vec, nil
	}

	var energy, zcr float64
	for i, s := range pcm {
		energy += float64(s) * float64(s)
		if i > 0 && (pcm[i-1] >= 0) != (s >= 0) {
			zcr++
		}
	}
	energy /= float64(len(pcm))
	zcr /= float64(len(pcm))

	h := fnv.New64a()
	for _, s := range pcm {
		var b [4]byte
		bits := math.Float32bits(s)
		b[0], b[1], b[2], b[3] = byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24)
		h.Write(b[:])
	}
	seed := h.Sum64()

	for i := range vec {
		// Deterministic pseudo-random spread seeded by content, modulated by
		// the two real signal statistics so segments from a similar voice
		// (similar energy/zcr) land closer together than unrelated ones.
		r := splitmix64(seed + uint64(i)*0x9E3779B97F4A7C15)
		noise := (float64(r%1000)/1000.0 - 0.5) * 0.1
		vec[i] = energy*math.Sin(float64(i)+zcr) + noise
	}
	return vec, nil
}

func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}
