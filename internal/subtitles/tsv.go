package subtitles

import (
	"fmt"
	"io"
	"strings"

	"github.com/indra622/world-of-asr/internal/models"
)

type tsvWriter struct{}

func (tsvWriter) Extension() string { return "tsv" }

func (tsvWriter) Write(w io.Writer, t *models.Transcript, opts Options) error {
	if _, err := fmt.Fprint(w, "start\tend\ttext\n"); err != nil {
		return err
	}
	for _, seg := range t.Segments {
		startMs := int64(seg.Start*1000.0 + 0.5)
		endMs := int64(seg.End*1000.0 + 0.5)
		text := strings.ReplaceAll(strings.TrimSpace(seg.Text), "\t", " ")
		if _, err := fmt.Fprintf(w, "%d\t%d\t%s\n", startMs, endMs, text); err != nil {
			return err
		}
	}
	return nil
}
