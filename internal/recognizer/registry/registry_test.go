package registry

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indra622/world-of-asr/internal/models"
	"github.com/indra622/world-of-asr/internal/recognizer"
	"github.com/indra622/world-of-asr/pkg/apierr"
)

type countingAdapter struct {
	loadCount   int32
	unloadCount int32
}

func (a *countingAdapter) Load(ctx context.Context) error {
	atomic.AddInt32(&a.loadCount, 1)
	return nil
}

func (a *countingAdapter) Transcribe(ctx context.Context, audioPath, languageHint string, params recognizer.Params) (*models.Transcript, error) {
	return &models.Transcript{}, nil
}

func (a *countingAdapter) Unload(ctx context.Context) error {
	atomic.AddInt32(&a.unloadCount, 1)
	return nil
}

func TestAcquireConcurrentSameKeySingleLoad(t *testing.T) {
	shared := &countingAdapter{}
	factories := map[recognizer.Kind]recognizer.Factory{
		"faster_whisper": func(key models.RecognizerKey) (recognizer.Adapter, error) {
			return shared, nil
		},
	}
	r := New(factories)
	key := models.RecognizerKey{Kind: "faster_whisper", Size: "large-v3", Device: "cuda", ComputeType: "float16"}

	const n = 20
	var wg sync.WaitGroup
	results := make([]recognizer.Adapter, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			a, err := r.Acquire(context.Background(), key)
			require.NoError(t, err)
			results[idx] = a
		}(i)
	}
	wg.Wait()

	for _, a := range results {
		assert.Same(t, shared, a)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&shared.loadCount))
}

func TestEvictUnloadsExactlyOnce(t *testing.T) {
	shared := &countingAdapter{}
	factories := map[recognizer.Kind]recognizer.Factory{
		"faster_whisper": func(key models.RecognizerKey) (recognizer.Adapter, error) {
			return shared, nil
		},
	}
	r := New(factories)
	key := models.RecognizerKey{Kind: "faster_whisper", Size: "base", Device: "cpu"}

	_, err := r.Acquire(context.Background(), key)
	require.NoError(t, err)
	r.Release(key)

	errs := r.Evict(context.Background(), "faster_whisper")
	assert.Empty(t, errs)
	assert.Equal(t, int32(1), atomic.LoadInt32(&shared.unloadCount))

	stats := r.Stats()
	assert.Equal(t, 0, stats["faster_whisper"])
}

func TestEvictSkipsInUseEntries(t *testing.T) {
	shared := &countingAdapter{}
	factories := map[recognizer.Kind]recognizer.Factory{
		"faster_whisper": func(key models.RecognizerKey) (recognizer.Adapter, error) {
			return shared, nil
		},
	}
	r := New(factories)
	key := models.RecognizerKey{Kind: "faster_whisper", Size: "base", Device: "cpu"}

	_, err := r.Acquire(context.Background(), key)
	require.NoError(t, err)

	r.Evict(context.Background(), "faster_whisper")
	assert.Equal(t, int32(0), atomic.LoadInt32(&shared.unloadCount))
}

func TestAcquireUnknownKindIsBackendUnavailable(t *testing.T) {
	r := New(map[recognizer.Kind]recognizer.Factory{})
	_, err := r.Acquire(context.Background(), models.RecognizerKey{Kind: "nonexistent"})
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.BackendUnavailable))
}
