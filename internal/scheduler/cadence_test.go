package scheduler

import (
	"testing"
	"time"
)

func at(hour int) time.Time {
	return time.Date(2026, 3, 14, hour, 15, 0, 0, time.UTC)
}

func TestCadenceModeBands(t *testing.T) {
	c := Cadence{Location: time.UTC}

	tests := []struct {
		hour int
		want Mode
	}{
		{0, ModeOff},
		{6, ModeOff},
		{11, ModeOff},
		{12, ModeExtended},
		{15, ModeExtended},
		{18, ModeExtended},
		{19, ModePrime},
		{21, ModePrime},
		{23, ModePrime},
	}
	for _, tt := range tests {
		if got := c.Mode(at(tt.hour)); got != tt.want {
			t.Errorf("Mode(hour=%d) = %v, want %v", tt.hour, got, tt.want)
		}
	}
}

func TestCadenceModeUsesLocation(t *testing.T) {
	// 23:00 UTC is 18:00 in New York during March (EST/EDT either way it
	// is before 19:00), so the band must come from the local hour.
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	c := Cadence{Location: ny}
	now := time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC)
	if got := c.Mode(now); got != ModeExtended {
		t.Errorf("Mode(23:00 UTC in NY) = %v, want extended", got)
	}
}

func TestCadenceInterval(t *testing.T) {
	c := Cadence{Location: time.UTC, ExtendedInterval: 45 * time.Second}

	if d, active := c.Interval(ModePrime); !active || d != 30*time.Second {
		t.Errorf("prime interval = %v active=%v", d, active)
	}
	if d, active := c.Interval(ModeExtended); !active || d != 45*time.Second {
		t.Errorf("extended interval = %v active=%v", d, active)
	}
	if _, active := c.Interval(ModeOff); active {
		t.Error("off mode must not be active")
	}
}

func TestCadenceIntervalDefaultsExtended(t *testing.T) {
	c := Cadence{Location: time.UTC}
	if d, _ := c.Interval(ModeExtended); d != DefaultExtendedInterval {
		t.Errorf("unset extended interval = %v, want %v", d, DefaultExtendedInterval)
	}
}

func TestModeString(t *testing.T) {
	if ModePrime.String() != "prime" || ModeExtended.String() != "extended" || ModeOff.String() != "off" {
		t.Error("mode strings wrong")
	}
}
