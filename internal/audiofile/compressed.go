package audiofile

import (
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// go-mp3 always produces 16-bit little-endian stereo.
const (
	mp3Channels = 2
	mp3Bytes    = 2
)

func decodeMP3(r io.ReadSeeker) (*Audio, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	samples := make([]int, len(raw)/mp3Bytes)
	for i := range samples {
		samples[i] = int(int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8))
	}

	return &Audio{
		SampleRate: dec.SampleRate(),
		Channels:   planar(samples, mp3Channels, intScale(16)),
	}, nil
}

func decodeOgg(r io.ReadSeeker) (*Audio, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	if format.Channels < 1 {
		return nil, ErrNoChannels
	}

	return &Audio{
		SampleRate: format.SampleRate,
		Channels:   planar(data, format.Channels, 1),
	}, nil
}
