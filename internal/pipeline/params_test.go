package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/indra622/world-of-asr/internal/models"
)

func TestRawParamsFromStringMap_ParsesNumericAndBooleanValues(t *testing.T) {
	raw := rawParamsFromStringMap(models.StringMap{
		"beam_size":   "5",
		"temperature": "0.2",
		"condition_on_previous_text": "true",
		"initial_prompt":             "hello there",
	})

	assert.Equal(t, float64(5), raw["beam_size"])
	assert.Equal(t, 0.2, raw["temperature"])
	assert.Equal(t, true, raw["condition_on_previous_text"])
	assert.Equal(t, "hello there", raw["initial_prompt"])
}

func TestRawParamsFromStringMap_EmptyMap(t *testing.T) {
	raw := rawParamsFromStringMap(models.StringMap{})
	assert.Empty(t, raw)
}
