package subtitles

import (
	"encoding/json"
	"io"

	"github.com/indra622/world-of-asr/internal/models"
)

type jsonWriter struct{}

func (jsonWriter) Extension() string { return "json" }

func (jsonWriter) Write(w io.Writer, t *models.Transcript, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}
