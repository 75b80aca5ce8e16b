package subtitles

import (
	"strings"

	"github.com/indra622/world-of-asr/internal/models"
)

// Options controls word-level rendering, per spec.md §4.5's word-level
// rendering rules. A nil MaxLineWidth defaults to 1000 (effectively
// unlimited); a nil MaxLineCount leaves line counting unbounded.
type Options struct {
	MaxLineWidth   *int
	MaxLineCount   *int
	HighlightWords bool
}

// Cue is one rendered subtitle entry: a time span and its text, already
// including any speaker prefix.
type Cue struct {
	Start float64
	End   float64
	Text  string
}

const longPauseSeconds = 3.0

// wordLine is one accumulated line of words pending emission as a cue.
type wordLine struct {
	words []models.Word
	// speaker observed for the owning segment of the first word on the line.
	speaker string
}

// BuildCues turns a transcript into the ordered cue sequence every
// subtitle/TXT writer renders, per spec.md §4.5's word-level rendering
// rules when every segment carries words, or the plain per-segment rule
// otherwise.
func BuildCues(t *models.Transcript, opts Options) []Cue {
	if len(t.Segments) == 0 {
		return nil
	}
	if !everySegmentHasWords(t.Segments) {
		return plainCues(t.Segments)
	}
	return wordCues(t.Segments, opts)
}

func everySegmentHasWords(segments []models.Segment) bool {
	for _, s := range segments {
		if len(s.Words) == 0 {
			return false
		}
	}
	return true
}

func plainCues(segments []models.Segment) []Cue {
	cues := make([]Cue, 0, len(segments))
	for _, s := range segments {
		text := strings.ReplaceAll(strings.TrimSpace(s.Text), "-->", "->")
		cues = append(cues, Cue{Start: s.Start, End: s.End, Text: withSpeakerPrefix(s.Speaker, text)})
	}
	return cues
}

func withSpeakerPrefix(speaker, text string) string {
	if speaker == "" {
		return text
	}
	return "[" + speaker + "]: " + text
}

// wordCues implements spec.md §4.5's word-level break rules: accumulate
// words onto a line, breaking (a) on width overflow, (b) on max-line-count
// or a long pause when segments aren't being preserved, or (c) on a forced
// segment boundary when segments are preserved. Each accumulated line is
// emitted as one cue (or, with HighlightWords, one cue per word).
func wordCues(segments []models.Segment, opts Options) []Cue {
	maxLineWidth := 1000
	if opts.MaxLineWidth != nil {
		maxLineWidth = *opts.MaxLineWidth
	}
	preserveSegments := opts.MaxLineCount == nil || opts.MaxLineWidth == nil

	var lines []wordLine
	var current []struct {
		w       models.Word
		speaker string
	}
	lineLen := 0
	lineCount := 1
	last := segments[0].Start
	haveLast := false

	flush := func() {
		if len(current) == 0 {
			return
		}
		line := wordLine{speaker: current[0].speaker}
		for _, cw := range current {
			line.words = append(line.words, cw.w)
		}
		lines = append(lines, line)
		current = nil
		lineCount = 1
	}

	for _, seg := range segments {
		for i, w := range seg.Words {
			longPause := !preserveSegments && haveLast && (w.Start-last > longPauseSeconds)
			hasRoom := lineLen+len(w.Word) <= maxLineWidth
			segBreak := i == 0 && len(current) > 0 && preserveSegments

			if lineLen > 0 && hasRoom && !longPause && !segBreak {
				lineLen += len(w.Word)
			} else {
				trimmed := strings.TrimSpace(w.Word)
				w.Word = trimmed
				if len(current) > 0 && opts.MaxLineCount != nil && (longPause || lineCount >= *opts.MaxLineCount) || segBreak {
					flush()
				} else if lineLen > 0 {
					lineCount++
				}
				lineLen = len(trimmed)
			}

			current = append(current, struct {
				w       models.Word
				speaker string
			}{w: w, speaker: seg.Speaker})
			last = w.Start
			haveLast = true
		}
	}
	flush()

	var cues []Cue
	for _, line := range lines {
		if len(line.words) == 0 {
			continue
		}
		start := line.words[0].Start
		end := line.words[len(line.words)-1].End
		prefix := ""
		if line.speaker != "" {
			prefix = "[" + line.speaker + "]: "
		}

		if opts.HighlightWords {
			cues = append(cues, highlightedWordCues(line.words, prefix)...)
			continue
		}

		text := make([]string, len(line.words))
		for i, w := range line.words {
			text[i] = w.Word
		}
		cues = append(cues, Cue{Start: start, End: end, Text: prefix + strings.Join(text, " ")})
	}
	return cues
}

// highlightedWordCues emits one cue per word, wrapping the active word in
// <u>...</u> and filling any inter-word gap with a plain-text filler cue,
// per spec.md §4.5's highlight_words rule.
func highlightedWordCues(words []models.Word, prefix string) []Cue {
	all := make([]string, len(words))
	for i, w := range words {
		all[i] = w.Word
	}
	full := prefix + strings.Join(all, " ")

	var cues []Cue
	lastEnd := words[0].Start
	for i, w := range words {
		if w.Start > lastEnd {
			cues = append(cues, Cue{Start: lastEnd, End: w.Start, Text: full})
		}
		rendered := make([]string, len(all))
		copy(rendered, all)
		rendered[i] = "<u>" + rendered[i] + "</u>"
		cues = append(cues, Cue{Start: w.Start, End: w.End, Text: prefix + strings.Join(rendered, " ")})
		lastEnd = w.End
	}
	return cues
}
