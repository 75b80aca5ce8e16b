package pipeline

import (
	"path/filepath"
	"strings"
)

// backendTags maps a job's model_type to the filename suffix spec.md §6
// names ("_whisper", "_original_whisper", "_fastconformer", ...).
var backendTags = map[string]string{
	"origin_whisper":       "_original_whisper",
	"faster_whisper":       "_whisper",
	"fast_conformer":       "_fastconformer",
	"google_stt":           "_google",
	"qwen_asr":             "_qwen",
	"nemo_ctc_offline":     "_nemo_ctc",
	"nemo_rnnt_streaming":  "_nemo_rnnt",
	"triton_ctc":           "_triton_ctc",
	"triton_rnnt":          "_triton_rnnt",
	"nvidia_riva":          "_riva",
	"hf_auto_asr":          "_hf_auto",
}

// deriveBaseName builds the job-scoped output basename from the original
// upload filename per spec.md §6: "alphanumerics and spaces from the
// original filename, suffixed with a backend tag".
func deriveBaseName(originalFilename, modelType string) string {
	name := strings.TrimSuffix(originalFilename, filepath.Ext(originalFilename))

	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimSpace(b.String())
	if cleaned == "" {
		cleaned = "transcript"
	}

	tag, ok := backendTags[modelType]
	if !ok {
		tag = "_" + modelType
	}
	return cleaned + tag
}
