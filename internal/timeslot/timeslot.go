// Package timeslot parses the "HH:MM-HH:MM" slot strings attached to
// class sessions and derives their duration in hours.
package timeslot

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultHours is credited when a slot's computed duration is zero or
// negative (malformed or overnight slots).
const DefaultHours = 1.0

var errFormat = errors.New("timeslot: want \"HH:MM-HH:MM\"")

// Range is a validated wall-clock time range within a single day.
type Range struct {
	Start time.Time
	End   time.Time
	raw   string
}

// Parse validates a slot string. Both halves must be valid HH:MM
// wall-clock times; ordering is not enforced here so callers can decide
// how to treat inverted slots.
func Parse(slot string) (Range, error) {
	parts := strings.SplitN(slot, "-", 2)
	if len(parts) != 2 {
		return Range{}, errFormat
	}
	start, err := time.Parse("15:04", strings.TrimSpace(parts[0]))
	if err != nil {
		return Range{}, fmt.Errorf("timeslot: bad start %q: %w", parts[0], err)
	}
	end, err := time.Parse("15:04", strings.TrimSpace(parts[1]))
	if err != nil {
		return Range{}, fmt.Errorf("timeslot: bad end %q: %w", parts[1], err)
	}
	return Range{Start: start, End: end, raw: slot}, nil
}

// Hours returns (end - start) in hours. May be zero or negative for
// inverted slots; see ClampedHours.
func (r Range) Hours() float64 {
	return r.End.Sub(r.Start).Minutes() / 60
}

// ClampedHours returns the slot duration, substituting DefaultHours
// when the raw duration is not positive.
func (r Range) ClampedHours() float64 {
	h := r.Hours()
	if h <= 0 {
		return DefaultHours
	}
	return h
}

// String returns the original slot text.
func (r Range) String() string { return r.raw }

// Hours parses slot and returns its clamped duration. Unparseable
// slots also credit DefaultHours, matching how session creation treats
// malformed input.
func Hours(slot string) float64 {
	r, err := Parse(slot)
	if err != nil {
		return DefaultHours
	}
	return r.ClampedHours()
}
