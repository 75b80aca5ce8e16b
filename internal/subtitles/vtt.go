package subtitles

import (
	"fmt"
	"io"

	"github.com/indra622/world-of-asr/internal/models"
)

type vttWriter struct{}

func (vttWriter) Extension() string { return "vtt" }

func (vttWriter) Write(w io.Writer, t *models.Transcript, opts Options) error {
	if _, err := fmt.Fprint(w, "WEBVTT\n\n"); err != nil {
		return err
	}
	for _, cue := range BuildCues(t, opts) {
		start, err := FormatTimestamp(cue.Start, false, ".")
		if err != nil {
			return err
		}
		end, err := FormatTimestamp(cue.End, false, ".")
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s --> %s\n%s\n\n", start, end, cue.Text); err != nil {
			return err
		}
	}
	return nil
}
