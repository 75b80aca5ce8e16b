package diarization

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indra622/world-of-asr/internal/models"
	"github.com/indra622/world-of-asr/pkg/apierr"
)

// writeMonoWAV writes a minimal 16-bit PCM mono WAV at SampleRate
// containing the given samples, for exercising Engine.Label end-to-end
// without a real audio fixture.
func writeMonoWAV(t *testing.T, samples []int16) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.wav")

	dataSize := len(samples) * 2
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	write := func(b []byte) { _, err := f.Write(b); require.NoError(t, err) }
	u32 := func(v uint32) []byte { b := make([]byte, 4); binary.LittleEndian.PutUint32(b, v); return b }
	u16 := func(v uint16) []byte { b := make([]byte, 2); binary.LittleEndian.PutUint16(b, v); return b }

	write([]byte("RIFF"))
	write(u32(uint32(36 + dataSize)))
	write([]byte("WAVE"))

	write([]byte("fmt "))
	write(u32(16))
	write(u16(1))             // PCM
	write(u16(1))             // mono
	write(u32(SampleRate))    // sample rate
	write(u32(SampleRate * 2)) // byte rate
	write(u16(2))             // block align
	write(u16(16))            // bits per sample

	write([]byte("data"))
	write(u32(uint32(dataSize)))
	for _, s := range samples {
		write(u16(uint16(s)))
	}

	return path
}

type fakeEmbedder struct {
	vectors map[int][]float64
	seq     []float32
	err     error
}

func (f *fakeEmbedder) Embed(ctx context.Context, pcm []float32) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.vectors != nil {
		return f.vectors[len(f.seq)], nil
	}
	return []float64{float64(len(pcm))}, nil
}

func TestEngine_Label_AudioUnreadable(t *testing.T) {
	engine := New(NewStubEmbedder())
	transcript := &models.Transcript{Segments: []models.Segment{{Start: 0, End: 1, Text: "hi"}}}

	err := engine.Label(context.Background(), filepath.Join(t.TempDir(), "missing.wav"), transcript, 1, 5)
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.AudioUnreadable))
}

func TestEngine_Label_EmbedderError(t *testing.T) {
	path := writeMonoWAV(t, make([]int16, SampleRate*2))
	engine := New(&fakeEmbedder{err: errors.New("embedder unavailable")})
	transcript := &models.Transcript{Segments: []models.Segment{{Start: 0, End: 1, Text: "hi"}}}

	err := engine.Label(context.Background(), path, transcript, 1, 5)
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.DiarizationMismatch))
}

func TestEngine_Label_NoSegmentsIsNoop(t *testing.T) {
	engine := New(NewStubEmbedder())
	transcript := &models.Transcript{}
	require.NoError(t, engine.Label(context.Background(), filepath.Join(t.TempDir(), "missing.wav"), transcript, 1, 5))
}

func TestEngine_Label_HappyPathAssignsSpeakerLabels(t *testing.T) {
	// Three seconds of silence is plenty for three one-second windows.
	path := writeMonoWAV(t, make([]int16, SampleRate*3))
	engine := New(NewStubEmbedder())

	transcript := &models.Transcript{Segments: []models.Segment{
		{Start: 0, End: 1, Text: "A"},
		{Start: 1, End: 2, Text: "B"},
		{Start: 2, End: 3, Text: "C"},
	}}

	require.NoError(t, engine.Label(context.Background(), path, transcript, 1, 5))

	for _, seg := range transcript.Segments {
		assert.Contains(t, seg.Speaker, LabelPrefix)
	}
}

func TestEngine_Label_DiarizationInvariant_LabelCountWithinBounds(t *testing.T) {
	path := writeMonoWAV(t, make([]int16, SampleRate*6))
	engine := New(NewStubEmbedder())

	segments := make([]models.Segment, 6)
	for i := range segments {
		segments[i] = models.Segment{Start: float64(i), End: float64(i + 1), Text: "seg"}
	}
	transcript := &models.Transcript{Segments: segments}

	minSpeakers, maxSpeakers := 1, 4
	require.NoError(t, engine.Label(context.Background(), path, transcript, minSpeakers, maxSpeakers))
	require.Len(t, transcript.Segments, len(segments))

	distinct := make(map[string]bool)
	for _, seg := range transcript.Segments {
		assert.NotEmpty(t, seg.Speaker)
		distinct[seg.Speaker] = true
	}
	assert.GreaterOrEqual(t, len(distinct), minSpeakers)
	assert.LessOrEqual(t, len(distinct), maxSpeakers)
}

func TestSlice_ClampsToAvailableRange(t *testing.T) {
	samples := make([]float32, SampleRate) // 1 second
	assert.Len(t, Slice(samples, 0, 2), SampleRate)
	assert.Nil(t, Slice(samples, 2, 3))
	assert.Len(t, Slice(samples, 0.5, 1), SampleRate/2)
}
