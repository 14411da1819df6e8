// Package audiofile decodes WAV, AIFF, MP3 and Ogg Vorbis files into planar
// float64 channels and writes integer PCM WAV files.
package audiofile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var (
	// ErrUnsupportedFormat is returned for unknown file extensions.
	ErrUnsupportedFormat = errors.New("audiofile: unsupported format")
	// ErrInvalidFile is returned when a file does not parse as its format.
	ErrInvalidFile = errors.New("audiofile: invalid file")
	// ErrNoChannels is returned for streams without audio channels.
	ErrNoChannels = errors.New("audiofile: no audio channels")
)

// Audio is a decoded file held in memory.
type Audio struct {
	SampleRate int
	// BitDepth is the source PCM depth, or 0 for lossy formats.
	BitDepth int
	Format   string
	Channels [][]float64
}

// Frames returns the number of sample frames.
func (a *Audio) Frames() int {
	if len(a.Channels) == 0 {
		return 0
	}

	return len(a.Channels[0])
}

// Duration returns the playing time.
func (a *Audio) Duration() time.Duration {
	if a.SampleRate <= 0 {
		return 0
	}

	return time.Duration(float64(a.Frames()) / float64(a.SampleRate) * float64(time.Second))
}

type decodeFunc func(r io.ReadSeeker) (*Audio, error)

type format struct {
	name   string
	decode decodeFunc
}

var formats = map[string]format{
	".wav":  {"wav", decodeWAV},
	".wave": {"wav", decodeWAV},
	".aif":  {"aiff", decodeAIFF},
	".aiff": {"aiff", decodeAIFF},
	".mp3":  {"mp3", decodeMP3},
	".ogg":  {"ogg", decodeOgg},
	".oga":  {"ogg", decodeOgg},
}

// Extensions lists the readable file extensions in sorted order.
func Extensions() []string {
	out := make([]string, 0, len(formats))
	for ext := range formats {
		out = append(out, ext)
	}

	sort.Strings(out)

	return out
}

// Decode reads a whole stream, choosing the decoder from ext (".wav" etc.).
func Decode(r io.ReadSeeker, ext string) (*Audio, error) {
	f, ok := formats[strings.ToLower(ext)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	a, err := f.decode(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.name, err)
	}

	if len(a.Channels) == 0 {
		return nil, fmt.Errorf("%s: %w", f.name, ErrNoChannels)
	}

	a.Format = f.name

	return a, nil
}

// ReadFile decodes the file at path.
func ReadFile(path string) (*Audio, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	a, err := Decode(file, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return a, nil
}

// planar splits interleaved samples into channels, scaling each by gain.
func planar[T int | float32](data []T, channels int, gain float64) [][]float64 {
	frames := len(data) / channels

	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}

	for i := 0; i < frames; i++ {
		for ch := range out {
			out[ch][i] = float64(data[i*channels+ch]) * gain
		}
	}

	return out
}

// intScale returns the gain that maps full-scale bitDepth integers to [-1, 1).
func intScale(bitDepth int) float64 {
	if bitDepth <= 0 {
		bitDepth = 16
	}

	return 1 / float64(int64(1)<<(bitDepth-1))
}
