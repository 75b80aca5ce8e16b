package subtitles

import (
	"os"
	"path/filepath"

	"github.com/indra622/world-of-asr/internal/models"
	"github.com/indra622/world-of-asr/pkg/apierr"
	"github.com/indra622/world-of-asr/pkg/logger"
)

// allFormats is the fixed fan-out set for format="all", matching
// formatters.py's get_writer("all") writer table.
var allFormats = []string{"vtt", "srt", "tsv", "txt", "json"}

// WriteFormat renders t in format to outputDir/baseName.<format>, per
// spec.md §4.5 ("output directory is job-scoped").
func WriteFormat(outputDir, baseName, format string, t *models.Transcript, opts Options) (string, error) {
	writer, err := Get(format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", apierr.Wrap(apierr.StorageError, "create output dir "+outputDir, err)
	}

	path := filepath.Join(outputDir, baseName+"."+writer.Extension())
	f, err := os.Create(path)
	if err != nil {
		return "", apierr.Wrap(apierr.FormatWriteError, "create "+path, err)
	}
	defer f.Close()

	if err := writer.Write(f, t, opts); err != nil {
		return "", apierr.Wrap(apierr.FormatWriteError, "write "+format, err)
	}
	return path, nil
}

// WriteAll renders every format in allFormats, isolating failures per
// format: a failing format is logged and skipped rather than aborting the
// remaining formats, per spec.md §4.5's "all" fan-out requirement.
func WriteAll(outputDir, baseName string, t *models.Transcript, opts Options) []string {
	var paths []string
	for _, format := range allFormats {
		path, err := WriteFormat(outputDir, baseName, format, t, opts)
		if err != nil {
			logger.PipelineStage("", "format_write_failed", "format", format, "error", err.Error())
			continue
		}
		paths = append(paths, path)
	}
	return paths
}
