package audiofile

import (
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/pulusound/grit/dsp/core"
)

const (
	wavFormatPCM = 1

	// 8-bit WAV samples are unsigned with silence at 0x80.
	wavUnsigned8Offset = 128
)

func decodeWAV(r io.ReadSeeker) (*Audio, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrInvalidFile
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	if dec.BitDepth == 8 {
		for i := range buf.Data {
			buf.Data[i] -= wavUnsigned8Offset
		}
	}

	return fromIntBuffer(buf, int(dec.BitDepth))
}

func decodeAIFF(r io.ReadSeeker) (*Audio, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrInvalidFile
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	return fromIntBuffer(buf, int(dec.BitDepth))
}

func fromIntBuffer(buf *audio.IntBuffer, bitDepth int) (*Audio, error) {
	if buf == nil || buf.Format == nil {
		return nil, ErrInvalidFile
	}

	if buf.Format.NumChannels < 1 {
		return nil, ErrNoChannels
	}

	if buf.SourceBitDepth > 0 {
		bitDepth = buf.SourceBitDepth
	}

	return &Audio{
		SampleRate: buf.Format.SampleRate,
		BitDepth:   bitDepth,
		Channels:   planar(buf.Data, buf.Format.NumChannels, intScale(bitDepth)),
	}, nil
}

// Quantizer converts normalized samples to integers of its bit depth.
type Quantizer interface {
	BitDepth() int
	QuantizeInto(dst []int, src []float64) int
}

// EncodeWAV writes a as integer PCM WAV using q for the float-to-int step.
func EncodeWAV(w io.WriteSeeker, a *Audio, q Quantizer) error {
	channels := len(a.Channels)
	if channels == 0 {
		return ErrNoChannels
	}

	if a.SampleRate <= 0 {
		return fmt.Errorf("audiofile: sample rate must be > 0: %d", a.SampleRate)
	}

	interleaved := make([]float64, a.Frames()*channels)
	frames := core.Interleave(interleaved, a.Channels)
	interleaved = interleaved[:frames*channels]

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: a.SampleRate},
		Data:           make([]int, len(interleaved)),
		SourceBitDepth: q.BitDepth(),
	}
	q.QuantizeInto(buf.Data, interleaved)

	if q.BitDepth() == 8 {
		for i := range buf.Data {
			buf.Data[i] += wavUnsigned8Offset
		}
	}

	enc := wav.NewEncoder(w, a.SampleRate, q.BitDepth(), channels, wavFormatPCM)

	err := enc.Write(buf)
	if err != nil {
		return fmt.Errorf("audiofile: write wav: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("audiofile: close wav: %w", err)
	}

	return nil
}
