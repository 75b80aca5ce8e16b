package subtitles

import (
	"fmt"
	"io"
	"strings"

	"github.com/indra622/world-of-asr/internal/models"
)

type txtWriter struct{}

func (txtWriter) Extension() string { return "txt" }

func (txtWriter) Write(w io.Writer, t *models.Transcript, opts Options) error {
	for _, seg := range t.Segments {
		text := strings.TrimSpace(seg.Text)
		if seg.Speaker != "" {
			text = "[" + seg.Speaker + "]: " + text
		}
		if _, err := fmt.Fprintln(w, text); err != nil {
			return err
		}
	}
	return nil
}
