// Package recognizer defines the adapter contract of spec.md §4.1: a uniform
// interface over the ~10 heterogeneous ASR backends, plus parameter
// normalization shared by every adapter.
package recognizer

// Params is the normalized parameter record passed to Adapter.Transcribe,
// spec.md §4.1. Every sentinel value (numeric 0, empty string) has already
// been resolved to "absent" by NormalizeParams before an adapter ever sees
// this struct — adapters never re-implement the sentinel rule themselves.
type Params struct {
	BeamSize                  *int
	Patience                  *float64
	LengthPenalty             *float64
	Temperature               float64
	CompressionRatioThreshold float64
	LogProbThreshold          float64
	NoSpeechThreshold         float64
	ConditionOnPreviousText   bool
	InitialPrompt             *string
	VADOnset                  *float64
	VADOffset                 *float64
	RemovePunctuationFromWords bool
	RemoveEmptyWords          bool
	ComputeType               string
}

// Default values applied when the caller did not override them, per
// spec.md §4.1's parameter table.
const (
	defaultCompressionRatioThreshold = 2.4
	defaultLogProbThreshold          = -1.0
	defaultNoSpeechThreshold         = 0.6
)

// RawParams is the loosely-typed parameter map as received over HTTP
// (models.StringMap / map[string]any), before normalization.
type RawParams map[string]any

// NormalizeParams applies the sentinel-to-absent rule resolved in
// SPEC_FULL.md §9 (Open Question: backend default parameters): a numeric `0`,
// an empty string `""`, and an absent map key all mean "engine default".
// Adapters receive a Params value with engine defaults already filled in for
// anything the caller left absent or sentinel, and with optional knobs
// (beam_size, patience, length_penalty, initial_prompt, vad thresholds) left
// nil when absent so an adapter can tell "not set" from "set to zero" where
// that distinction still matters downstream (e.g. forwarding only set flags
// to a subprocess argv).
func NormalizeParams(raw RawParams) Params {
	p := Params{
		CompressionRatioThreshold: defaultCompressionRatioThreshold,
		LogProbThreshold:          defaultLogProbThreshold,
		NoSpeechThreshold:         defaultNoSpeechThreshold,
	}

	if v, ok := asInt(raw["beam_size"]); ok && v != 0 {
		p.BeamSize = &v
	}
	if v, ok := asFloat(raw["patience"]); ok && v != 0 {
		p.Patience = &v
	}
	if v, ok := asFloat(raw["length_penalty"]); ok && v != 0 {
		p.LengthPenalty = &v
	}
	if v, ok := asFloat(raw["temperature"]); ok {
		p.Temperature = v
	}
	if v, ok := asFloat(raw["compression_ratio_threshold"]); ok && v != 0 {
		p.CompressionRatioThreshold = v
	}
	if v, ok := asFloat(raw["logprob_threshold"]); ok && v != 0 {
		p.LogProbThreshold = v
	}
	if v, ok := asFloat(raw["no_speech_threshold"]); ok && v != 0 {
		p.NoSpeechThreshold = v
	}
	if v, ok := raw["condition_on_previous_text"].(bool); ok {
		p.ConditionOnPreviousText = v
	}
	if v, ok := raw["initial_prompt"].(string); ok && v != "" {
		p.InitialPrompt = &v
	}
	if v, ok := asFloat(raw["vad_onset"]); ok && v != 0 {
		p.VADOnset = &v
	}
	if v, ok := asFloat(raw["vad_offset"]); ok && v != 0 {
		p.VADOffset = &v
	}
	if v, ok := raw["remove_punctuation_from_words"].(bool); ok {
		p.RemovePunctuationFromWords = v
	}
	if v, ok := raw["remove_empty_words"].(bool); ok {
		p.RemoveEmptyWords = v
	}
	if v, ok := raw["compute_type"].(string); ok {
		p.ComputeType = v
	}

	return p
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
