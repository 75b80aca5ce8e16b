package subtitles

import (
	"fmt"
	"io"

	"github.com/indra622/world-of-asr/internal/models"
)

type srtWriter struct{}

func (srtWriter) Extension() string { return "srt" }

func (srtWriter) Write(w io.Writer, t *models.Transcript, opts Options) error {
	for i, cue := range BuildCues(t, opts) {
		start, err := FormatTimestamp(cue.Start, true, ",")
		if err != nil {
			return err
		}
		end, err := FormatTimestamp(cue.End, true, ",")
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n", i+1, start, end, cue.Text); err != nil {
			return err
		}
	}
	return nil
}
