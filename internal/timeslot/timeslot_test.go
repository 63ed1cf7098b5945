package timeslot

import (
	"math"
	"testing"
)

func TestParseValid(t *testing.T) {
	cases := []struct {
		slot  string
		hours float64
	}{
		{"09:00-11:00", 2},
		{"09:00-10:00", 1},
		{"14:15-15:45", 1.5},
		{"08:00-08:50", 50.0 / 60},
		{"00:00-23:59", 23 + 59.0/60},
	}
	for _, tc := range cases {
		r, err := Parse(tc.slot)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.slot, err)
		}
		if got := r.Hours(); math.Abs(got-tc.hours) > 1e-9 {
			t.Errorf("Parse(%q).Hours() = %v, want %v", tc.slot, got, tc.hours)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, slot := range []string{"", "09:00", "9am-11am", "09:00/11:00", "25:00-26:00"} {
		if _, err := Parse(slot); err == nil {
			t.Errorf("Parse(%q): want error", slot)
		}
	}
}

func TestClampedHours(t *testing.T) {
	cases := []struct {
		slot string
		want float64
	}{
		{"09:00-11:00", 2},
		{"11:00-09:00", DefaultHours}, // inverted
		{"10:00-10:00", DefaultHours}, // zero length
	}
	for _, tc := range cases {
		r, err := Parse(tc.slot)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.slot, err)
		}
		if got := r.ClampedHours(); got != tc.want {
			t.Errorf("ClampedHours(%q) = %v, want %v", tc.slot, got, tc.want)
		}
	}
}

func TestHoursMalformedFallsBack(t *testing.T) {
	if got := Hours("not-a-slot"); got != DefaultHours {
		t.Errorf("Hours(malformed) = %v, want %v", got, DefaultHours)
	}
	if got := Hours("09:00-12:00"); got != 3 {
		t.Errorf("Hours(09:00-12:00) = %v, want 3", got)
	}
}
