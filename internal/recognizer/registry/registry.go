// Package registry implements the Recognizer Registry / Cache (C4) of
// spec.md §4.2: a process-wide singleton mapping a RecognizerKey to a
// loaded Adapter, with at-most-one load per key and explicit release.
//
// The per-key load serialization is grounded on
// rishikanthc-Scriberr/internal/transcription/adapters/base_adapter.go's
// CheckEnvironmentReady, which uses golang.org/x/sync/singleflight to
// collapse concurrent cache-miss callers into one construction; here that
// idea is generalized from a boolean readiness cache to the registry's own
// adapter cache.
package registry

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/indra622/world-of-asr/internal/models"
	"github.com/indra622/world-of-asr/internal/recognizer"
	"github.com/indra622/world-of-asr/pkg/apierr"
)

type entry struct {
	adapter  recognizer.Adapter
	refCount int
}

// Registry is the process-wide RecognizerKey -> Adapter cache of C4.
type Registry struct {
	mu        sync.Mutex
	entries   map[models.RecognizerKey]*entry
	factories map[recognizer.Kind]recognizer.Factory
	loadGroup singleflight.Group
}

// New builds a Registry over factories, one per recognizer.Kind.
func New(factories map[recognizer.Kind]recognizer.Factory) *Registry {
	return &Registry{
		entries:   make(map[models.RecognizerKey]*entry),
		factories: factories,
	}
}

// Acquire returns an adapter that has completed Load for key, constructing
// and loading it on first use. Concurrent Acquire calls for the same key
// are collapsed into a single construction+load via singleflight; distinct
// keys load independently. The caller must call Release(key) exactly once
// per successful Acquire when done using the adapter.
func (r *Registry) Acquire(ctx context.Context, key models.RecognizerKey) (recognizer.Adapter, error) {
	r.mu.Lock()
	if e, ok := r.entries[key]; ok {
		e.refCount++
		r.mu.Unlock()
		return e.adapter, nil
	}
	r.mu.Unlock()

	result, err, _ := r.loadGroup.Do(key.String(), func() (interface{}, error) {
		r.mu.Lock()
		if e, ok := r.entries[key]; ok {
			r.mu.Unlock()
			return e, nil
		}
		r.mu.Unlock()

		factory, ok := r.factories[recognizer.Kind(key.Kind)]
		if !ok {
			return nil, apierr.New(apierr.BackendUnavailable, fmt.Sprintf("no factory registered for kind %s", key.Kind))
		}

		adapter, err := factory(key)
		if err != nil {
			return nil, err
		}
		if err := adapter.Load(ctx); err != nil {
			return nil, err
		}

		e := &entry{adapter: adapter, refCount: 0}
		r.mu.Lock()
		r.entries[key] = e
		r.mu.Unlock()
		return e, nil
	})
	if err != nil {
		return nil, err
	}

	e := result.(*entry)
	r.mu.Lock()
	e.refCount++
	r.mu.Unlock()
	return e.adapter, nil
}

// Release drops one reference acquired via Acquire(key). It never unloads
// the adapter itself — only Evict/EvictAll do that, per spec.md §4.2's rule
// that release(kind) "must not be called while any caller is mid-transcribe"
// and the pipeline coordinates via these logical references.
func (r *Registry) Release(key models.RecognizerKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[key]; ok && e.refCount > 0 {
		e.refCount--
	}
}

// Evict unloads and removes every cached adapter whose Kind matches kind
// (or all kinds, if kind is empty), per spec.md §4.2's release(kind?).
// Entries with outstanding references (refCount > 0) are skipped; the
// caller should retry once in-flight transcribes complete.
func (r *Registry) Evict(ctx context.Context, kind recognizer.Kind) []error {
	r.mu.Lock()
	var toEvict []models.RecognizerKey
	for k, e := range r.entries {
		if (kind == "" || recognizer.Kind(k.Kind) == kind) && e.refCount == 0 {
			toEvict = append(toEvict, k)
		}
	}
	r.mu.Unlock()

	var errs []error
	for _, k := range toEvict {
		r.mu.Lock()
		e := r.entries[k]
		delete(r.entries, k)
		r.mu.Unlock()

		if e != nil {
			if err := e.adapter.Unload(ctx); err != nil {
				errs = append(errs, fmt.Errorf("unload %s: %w", k.String(), err))
			}
		}
	}
	return errs
}

// Stats reports per-kind cached-instance counts, per spec.md §4.2's
// stats().
func (r *Registry) Stats() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := make(map[string]int)
	for k := range r.entries {
		stats[k.Kind]++
	}
	return stats
}
