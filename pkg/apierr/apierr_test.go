package apierr

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus_KnownKinds(t *testing.T) {
	cases := map[Kind]int{
		ValidationError:     http.StatusBadRequest,
		UnknownFile:         http.StatusBadRequest,
		EmptyRequest:        http.StatusBadRequest,
		UnknownJob:          http.StatusNotFound,
		UnknownResult:       http.StatusNotFound,
		BackendUnavailable:  http.StatusServiceUnavailable,
		TimeoutExceeded:     http.StatusRequestTimeout,
		StorageError:        http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.HTTPStatus(), "kind=%s", kind)
	}
}

func TestRetryable_OnlyBackendTransient(t *testing.T) {
	assert.True(t, BackendTransient.Retryable())
	assert.False(t, BackendPermanent.Retryable())
	assert.False(t, UnknownResult.Retryable())
}

func TestIs_MatchesWrappedKind(t *testing.T) {
	err := Wrap(UnknownResult, "format not produced", nil)
	assert.True(t, Is(err, UnknownResult))
	assert.False(t, Is(err, UnknownFile))
}

func TestKindOf_DefaultsToStorageErrorForUnclassifiedErrors(t *testing.T) {
	assert.Equal(t, StorageError, KindOf(assertErr{}))
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
