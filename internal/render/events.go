package render

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pulusound/grit/dsp/param"
)

// ErrBadEvent is returned for malformed automation events.
var ErrBadEvent = errors.New("render: bad event")

// Event changes one parameter target at a frame. Continuous parameters ramp
// to the new value with their definition's smoothing.
type Event struct {
	Frame int
	ID    param.ID
	Value float64
}

// ParseEvent parses "<at>:<id>=<value>". The position is a duration such as
// "1.5s" or "250ms", or a plain frame count. The value is parsed with the
// parameter's own parser, so "bsm_knee=-12 dB" and "algorithm=Clip" work.
func ParseEvent(text string, sampleRate int) (Event, error) {
	at, assign, ok := strings.Cut(text, ":")
	if !ok {
		return Event{}, fmt.Errorf("%w: %q: want <at>:<param>=<value>", ErrBadEvent, text)
	}

	key, value, ok := strings.Cut(assign, "=")
	if !ok {
		return Event{}, fmt.Errorf("%w: %q: missing '='", ErrBadEvent, text)
	}

	frame, err := parsePosition(strings.TrimSpace(at), sampleRate)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %q: %w", ErrBadEvent, text, err)
	}

	d, err := param.Lookup(param.ID(strings.TrimSpace(key)))
	if err != nil {
		return Event{}, fmt.Errorf("%w: %q: %w", ErrBadEvent, text, err)
	}

	v, err := d.Parse(strings.TrimSpace(value))
	if err != nil {
		return Event{}, fmt.Errorf("%w: %q: %w", ErrBadEvent, text, err)
	}

	return Event{Frame: frame, ID: d.ID, Value: v}, nil
}

func parsePosition(at string, sampleRate int) (int, error) {
	if n, err := strconv.Atoi(at); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative frame %d", n)
		}

		return n, nil
	}

	d, err := time.ParseDuration(at)
	if err != nil {
		return 0, err
	}

	if d < 0 {
		return 0, fmt.Errorf("negative time %s", d)
	}

	if sampleRate <= 0 {
		return 0, fmt.Errorf("sample rate must be > 0: %d", sampleRate)
	}

	return int(math.Round(d.Seconds() * float64(sampleRate))), nil
}

// sortEvents returns the events ordered by frame, dropping those at or past
// the end. Events on the same frame keep their order.
func sortEvents(events []Event, frames int) ([]Event, error) {
	out := make([]Event, 0, len(events))

	for i, ev := range events {
		if ev.Frame < 0 {
			return nil, fmt.Errorf("%w: event %d at negative frame %d", ErrBadEvent, i, ev.Frame)
		}

		if _, err := param.Lookup(ev.ID); err != nil {
			return nil, fmt.Errorf("%w: event %d: %w", ErrBadEvent, i, err)
		}

		if ev.Frame < frames {
			out = append(out, ev)
		}
	}

	slices.SortStableFunc(out, func(a, b Event) int { return a.Frame - b.Frame })

	return out, nil
}
