package clock

import (
	"testing"
	"time"
)

func TestLoadLocation_Lagos(t *testing.T) {
	loc, err := LoadLocation("Africa/Lagos")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ts := time.Date(2025, 7, 1, 12, 0, 0, 0, loc)
	if _, offset := ts.Zone(); offset != 3600 {
		t.Errorf("expected UTC+1 in July, got offset %d", offset)
	}
	ts = time.Date(2025, 1, 1, 12, 0, 0, 0, loc)
	if _, offset := ts.Zone(); offset != 3600 {
		t.Errorf("expected UTC+1 in January, got offset %d", offset)
	}
}

func TestLoadLocation_Unknown(t *testing.T) {
	if _, err := LoadLocation("Nowhere/Atlantis"); err == nil {
		t.Error("expected error for unknown zone")
	}
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2025, 1, 3, 11, 0, 0, 0, time.UTC)
	c := Fixed(at, WAT)

	now := c.Now()
	if !now.Equal(at) {
		t.Errorf("Now() = %v, want %v", now, at)
	}
	if now.Location() != WAT {
		t.Errorf("expected WAT location, got %v", now.Location())
	}
	if now.Hour() != 12 {
		t.Errorf("expected 12:00 local, got %d", now.Hour())
	}

	later := at.Add(48 * time.Hour)
	c.Set(later)
	if !c.Now().Equal(later) {
		t.Errorf("Set did not move the clock")
	}
}

func TestNew_DefaultsToWAT(t *testing.T) {
	c := New(nil)
	if c.Location() != WAT {
		t.Errorf("expected WAT, got %v", c.Location())
	}
	if c.Now().Location() != WAT {
		t.Errorf("Now() not reported in WAT")
	}
}
