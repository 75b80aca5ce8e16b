package subtitles

import (
	"io"

	"github.com/indra622/world-of-asr/internal/models"
	"github.com/indra622/world-of-asr/pkg/apierr"
)

// Writer renders a transcript to w in one output format.
type Writer interface {
	Extension() string
	Write(w io.Writer, t *models.Transcript, opts Options) error
}

// Writers is the Extension -> Writer table spec.md §4.5 names: vtt, srt,
// tsv, txt, json.
var Writers = map[string]Writer{
	"vtt":  vttWriter{},
	"srt":  srtWriter{},
	"tsv":  tsvWriter{},
	"txt":  txtWriter{},
	"json": jsonWriter{},
}

// Get resolves a format name ("all" is handled by the caller, not here).
func Get(format string) (Writer, error) {
	w, ok := Writers[format]
	if !ok {
		return nil, apierr.New(apierr.FormatWriteError, "unknown output format: "+format)
	}
	return w, nil
}
