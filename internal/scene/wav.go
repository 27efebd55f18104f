package scene

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// loadWAVSignal decodes the WAV file at path and stereo-averages it
// into a mono float64 series of exactly nt samples (zero-padded or
// truncated), adapted from the teacher's loadLoopSamples/
// decodeStereoI16ToFloat (audio_loop.go): a scene source can reference
// a recorded excitation instead of spelling out in_sigs inline.
func loadWAVSignal(path string, sampleRate int, nt int64) ([]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: "read wav", Err: err}
	}
	stream, err := wav.DecodeWithSampleRate(sampleRate, bytes.NewReader(raw))
	if err != nil {
		return nil, &LoadError{Path: path, Reason: "decode wav", Err: err}
	}
	decoded, err := io.ReadAll(stream)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: "read decoded wav", Err: err}
	}
	if len(decoded) == 0 {
		return nil, &LoadError{Path: path, Reason: "wav has no audio data"}
	}

	samples := decodeStereoI16ToFloat64(decoded)
	out := make([]float64, nt)
	copy(out, samples)
	return out, nil
}

// decodeStereoI16ToFloat64 walks pcm four bytes at a time (one
// little-endian int16 per channel) and averages L/R in the integer
// domain before a single scale to float64, so the per-frame work is
// one addition and one multiply rather than two float conversions.
func decodeStereoI16ToFloat64(pcm []byte) []float64 {
	const bytesPerFrame = 4
	samples := make([]float64, 0, len(pcm)/bytesPerFrame)
	for len(pcm) >= bytesPerFrame {
		left := int32(int16(binary.LittleEndian.Uint16(pcm[0:2])))
		right := int32(int16(binary.LittleEndian.Uint16(pcm[2:4])))
		samples = append(samples, float64(left+right)/(2*32768.0))
		pcm = pcm[bytesPerFrame:]
	}
	return samples
}

// resolveSourceSignal returns the signal for one source: the WAV file
// named by wavPath if there is one, else the inline slice from the
// document if present, else a silent (all-zero) series.
func resolveSourceSignal(inline []float64, wavPath string, sampleRate int, nt int64) ([]float64, error) {
	if wavPath != "" {
		signal, err := loadWAVSignal(wavPath, sampleRate, nt)
		if err != nil {
			return nil, fmt.Errorf("source signal: %w", err)
		}
		return signal, nil
	}
	if len(inline) > 0 {
		return inline, nil
	}
	return make([]float64, nt), nil
}
