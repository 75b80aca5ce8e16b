package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveBaseName_StripsPunctuationAndExtension(t *testing.T) {
	assert.Equal(t, "meeting notes 2024_whisper", deriveBaseName("meeting notes 2024!.wav", "faster_whisper"))
}

func TestDeriveBaseName_KnownBackendTags(t *testing.T) {
	cases := map[string]string{
		"origin_whisper":      "_original_whisper",
		"faster_whisper":      "_whisper",
		"fast_conformer":      "_fastconformer",
		"google_stt":          "_google",
		"qwen_asr":            "_qwen",
		"nemo_ctc_offline":    "_nemo_ctc",
		"nemo_rnnt_streaming": "_nemo_rnnt",
		"triton_ctc":          "_triton_ctc",
		"triton_rnnt":         "_triton_rnnt",
		"nvidia_riva":         "_riva",
		"hf_auto_asr":         "_hf_auto",
	}
	for modelType, tag := range cases {
		assert.Equal(t, "clip"+tag, deriveBaseName("clip.mp3", modelType))
	}
}

func TestDeriveBaseName_UnknownBackendFallsBackToUnderscorePrefix(t *testing.T) {
	assert.Equal(t, "clip_mystery_backend", deriveBaseName("clip.mp3", "mystery_backend"))
}

func TestDeriveBaseName_EmptyAfterCleaningFallsBackToTranscript(t *testing.T) {
	assert.Equal(t, "transcript_whisper", deriveBaseName("!!!.wav", "faster_whisper"))
}

func TestDeriveBaseName_TrimsSurroundingSpaces(t *testing.T) {
	assert.Equal(t, "hello world_whisper", deriveBaseName("  hello world  .wav", "faster_whisper"))
}
