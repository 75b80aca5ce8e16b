// Package diarization implements the Diarization Engine (C2) of spec.md
// §4.4: assign speaker labels to an existing segmentation by embedding each
// segment, clustering the embeddings with bounded cluster counts, and
// relabeling segments to 발언자_{k}.
package diarization

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/indra622/world-of-asr/pkg/apierr"
)

// SampleRate is the fixed input rate required by step 1 of spec.md §4.4
// ("load audio at 16 kHz, mono"). No resampler is wired: the example
// corpus carries no audio codec or resampling library (none of the
// examples' go.mod files import one), so this package accepts only audio
// already at this rate and rejects anything else with AudioUnreadable
// rather than silently mixing down or resampling.
const SampleRate = 16000

// LoadPCM reads a 16-bit PCM mono WAV file at SampleRate into normalized
// float32 samples in [-1, 1]. This is a minimal RIFF/WAVE reader, not a
// general audio codec: compressed formats, multi-channel files, and other
// sample rates are rejected as AudioUnreadable. A full decoder (mp3, flac,
// resampling across rates) is an out-of-scope external collaborator here,
// mirroring spec.md's own exclusion of the underlying ASR model code.
func LoadPCM(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apierr.Wrap(apierr.AudioUnreadable, fmt.Sprintf("open audio %s", path), err)
	}
	defer f.Close()

	var riffHeader [12]byte
	if _, err := io.ReadFull(f, riffHeader[:]); err != nil {
		return nil, apierr.Wrap(apierr.AudioUnreadable, "read RIFF header", err)
	}
	if string(riffHeader[0:4]) != "RIFF" || string(riffHeader[8:12]) != "WAVE" {
		return nil, apierr.New(apierr.AudioUnreadable, "not a RIFF/WAVE file")
	}

	var (
		numChannels   uint16
		sampleRate    uint32
		bitsPerSample uint16
		audioFormat   uint16
		haveFmt       bool
		samples       []float32
	)

	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(f, chunkHeader[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, apierr.Wrap(apierr.AudioUnreadable, "read chunk header", err)
		}
		chunkID := string(chunkHeader[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		switch chunkID {
		case "fmt ":
			body := make([]byte, chunkSize)
			if _, err := io.ReadFull(f, body); err != nil {
				return nil, apierr.Wrap(apierr.AudioUnreadable, "read fmt chunk", err)
			}
			audioFormat = binary.LittleEndian.Uint16(body[0:2])
			numChannels = binary.LittleEndian.Uint16(body[2:4])
			sampleRate = binary.LittleEndian.Uint32(body[4:8])
			bitsPerSample = binary.LittleEndian.Uint16(body[14:16])
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, apierr.New(apierr.AudioUnreadable, "data chunk before fmt chunk")
			}
			if audioFormat != 1 || bitsPerSample != 16 {
				return nil, apierr.New(apierr.AudioUnreadable, "only 16-bit PCM WAV is supported")
			}
			if numChannels != 1 {
				return nil, apierr.New(apierr.AudioUnreadable, "only mono WAV is supported")
			}
			if sampleRate != SampleRate {
				return nil, apierr.New(apierr.AudioUnreadable, fmt.Sprintf("expected %d Hz, got %d Hz", SampleRate, sampleRate))
			}

			body := make([]byte, chunkSize)
			if _, err := io.ReadFull(f, body); err != nil {
				return nil, apierr.Wrap(apierr.AudioUnreadable, "read data chunk", err)
			}
			samples = pcm16ToFloat32(body)

		default:
			if _, err := f.Seek(int64(chunkSize), io.SeekCurrent); err != nil {
				return nil, apierr.Wrap(apierr.AudioUnreadable, "skip chunk "+chunkID, err)
			}
		}

		if chunkSize%2 == 1 {
			if _, err := f.Seek(1, io.SeekCurrent); err != nil {
				break
			}
		}
	}

	if samples == nil {
		return nil, apierr.New(apierr.AudioUnreadable, "no data chunk found")
	}
	return samples, nil
}

// Slice extracts the PCM window [floor(start*sr), floor(end*sr)) from
// samples, clamping to the available range, per spec.md §4.4 step 2.
func Slice(samples []float32, start, end float64) []float32 {
	lo := int(start * SampleRate)
	hi := int(end * SampleRate)
	if lo < 0 {
		lo = 0
	}
	if hi > len(samples) {
		hi = len(samples)
	}
	if lo >= hi || lo >= len(samples) {
		return nil
	}
	return samples[lo:hi]
}

func pcm16ToFloat32(buf []byte) []float32 {
	n := len(buf) / 2
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		u := uint16(buf[2*i]) | uint16(buf[2*i+1])<<8
		samples[i] = float32(int16(u)) / 32768.0
	}
	return samples
}
