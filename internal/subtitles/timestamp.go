// Package subtitles implements the Subtitle Formatter (C1) of spec.md
// §4.5: a canonical transcript in, one or more rendered files out, one
// writer per output format. Grounded on
// rishikanthc-Scriberr/scriberr-backend/internal/handlers/handlers.go's
// generateSrtTranscript/formatSrtTime pair, generalized to every format
// named by spec.md (vtt, srt, tsv, txt, json) plus word-level rendering.
package subtitles

import (
	"fmt"

	"github.com/indra622/world-of-asr/pkg/apierr"
)

// FormatTimestamp renders seconds as HH:MM:SS<marker>mmm, omitting the
// hours component when alwaysIncludeHours is false and hours == 0, per
// spec.md §4.5. Negative times are rejected; zero is accepted.
func FormatTimestamp(seconds float64, alwaysIncludeHours bool, decimalMarker string) (string, error) {
	if seconds < 0 {
		return "", apierr.New(apierr.FormatWriteError, "negative timestamp")
	}

	milliseconds := int64(seconds*1000.0 + 0.5)

	hours := milliseconds / 3_600_000
	milliseconds -= hours * 3_600_000

	minutes := milliseconds / 60_000
	milliseconds -= minutes * 60_000

	secs := milliseconds / 1_000
	milliseconds -= secs * 1_000

	if alwaysIncludeHours || hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d%s%03d", hours, minutes, secs, decimalMarker, milliseconds), nil
	}
	return fmt.Sprintf("%02d:%02d%s%03d", minutes, secs, decimalMarker, milliseconds), nil
}
