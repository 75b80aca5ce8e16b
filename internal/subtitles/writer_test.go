package subtitles

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indra622/world-of-asr/internal/models"
)

func TestVTTWriter_TwoSegments(t *testing.T) {
	transcript := &models.Transcript{Segments: []models.Segment{
		{Start: 0.0, End: 2.5, Text: " Hello"},
		{Start: 2.5, End: 5.0, Text: " World"},
	}}

	var buf bytes.Buffer
	require.NoError(t, (vttWriter{}).Write(&buf, transcript, Options{}))

	expected := "WEBVTT\n\n00:00.000 --> 00:02.500\nHello\n\n00:02.500 --> 00:05.000\nWorld\n\n"
	assert.Equal(t, expected, buf.String())
}

func TestSRTWriter_WithHours(t *testing.T) {
	transcript := &models.Transcript{Segments: []models.Segment{
		{Start: 3600.0, End: 3601.5, Text: " One"},
	}}

	var buf bytes.Buffer
	require.NoError(t, (srtWriter{}).Write(&buf, transcript, Options{}))

	expected := "1\n01:00:00,000 --> 01:00:01,500\nOne\n\n"
	assert.Equal(t, expected, buf.String())
}

func TestVTTWriter_DiarizedSpeakerPrefix(t *testing.T) {
	transcript := &models.Transcript{Segments: []models.Segment{
		{Start: 0, End: 2, Text: "A", Speaker: "발언자_0"},
		{Start: 2, End: 4, Text: "B", Speaker: "발언자_1"},
		{Start: 4, End: 6, Text: "C", Speaker: "발언자_0"},
	}}

	var buf bytes.Buffer
	require.NoError(t, (vttWriter{}).Write(&buf, transcript, Options{}))

	out := buf.String()
	assert.Contains(t, out, "[발언자_0]: A")
	assert.Contains(t, out, "[발언자_1]: B")
	assert.Contains(t, out, "[발언자_0]: C")
}

func TestTSVWriter_Rows(t *testing.T) {
	transcript := &models.Transcript{Segments: []models.Segment{
		{Start: 1.5, End: 3.7, Text: " Hello world"},
		{Start: 3.7, End: 6.2, Text: " How are you?"},
	}}

	var buf bytes.Buffer
	require.NoError(t, (tsvWriter{}).Write(&buf, transcript, Options{}))

	expected := "start\tend\ttext\n1500\t3700\tHello world\n3700\t6200\tHow are you?\n"
	assert.Equal(t, expected, buf.String())
}

func TestTXTWriter_SpeakerPrefix(t *testing.T) {
	transcript := &models.Transcript{Segments: []models.Segment{
		{Start: 0, End: 1, Text: " hi", Speaker: "발언자_0"},
		{Start: 1, End: 2, Text: " there"},
	}}

	var buf bytes.Buffer
	require.NoError(t, (txtWriter{}).Write(&buf, transcript, Options{}))

	lines := bytes.Split(bytes.TrimRight(buf.Bytes(), "\n"), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Equal(t, "[발언자_0]: hi", string(lines[0]))
	assert.Equal(t, "there", string(lines[1]))
}

func TestJSONWriter_RoundTrips(t *testing.T) {
	transcript := &models.Transcript{Segments: []models.Segment{
		{Start: 0, End: 1, Text: "hi", Speaker: "발언자_0"},
	}}

	var buf bytes.Buffer
	require.NoError(t, (jsonWriter{}).Write(&buf, transcript, Options{}))

	var decoded models.Transcript
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, transcript, &decoded)
}

func TestWriteAll_ProducesOneFilePerFormat(t *testing.T) {
	dir := t.TempDir()
	transcript := &models.Transcript{Segments: []models.Segment{
		{Start: 0, End: 1, Text: "hi"},
	}}

	paths := WriteAll(dir, "transcript", transcript, Options{})
	require.Len(t, paths, 5)

	exts := make(map[string]bool)
	for _, p := range paths {
		exts[filepath.Ext(p)] = true
		_, err := os.Stat(p)
		require.NoError(t, err)
	}
	for _, ext := range []string{".vtt", ".srt", ".tsv", ".txt", ".json"} {
		assert.True(t, exts[ext], "missing format %s", ext)
	}

	jsonPath := filepath.Join(dir, "transcript.json")
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var decoded models.Transcript
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, transcript, &decoded)
}

func TestWriteFormat_CreatesMissingJobOutputDir(t *testing.T) {
	// Job-scoped output directories (storage/results/<job_id>/) don't exist
	// until a format is first written into them; WriteFormat must create
	// the whole path rather than assume a parent already created it.
	outDir := filepath.Join(t.TempDir(), "job-123")
	_, err := os.Stat(outDir)
	require.True(t, os.IsNotExist(err))

	transcript := &models.Transcript{Segments: []models.Segment{{Start: 0, End: 1, Text: "hi"}}}
	path, err := WriteFormat(outDir, "transcript", "vtt", transcript, Options{})
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestGet_UnknownFormat(t *testing.T) {
	_, err := Get("doc")
	require.Error(t, err)
}
