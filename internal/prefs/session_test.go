package prefs

import (
	"testing"

	"github.com/sidplayer/sidplayer/internal/driver"
	"github.com/sidplayer/sidplayer/internal/sid"
)

func TestSession_VictypeChangeRewritesLoopClock(t *testing.T) {
	loop := driver.New(sid.Model6581, false, driver.PAL, 44100)
	sess := NewSession(loop)

	sess.Set("victype", "NTSC")
	if sess.String("victype") != "NTSC" {
		t.Fatalf("victype not stored: %q", sess.String("victype"))
	}
	// Indirect check: advancing after the clock change should not panic
	// and should still produce frames.
	loop.Advance(10)
	if loop.StereoAvailable() != 10 {
		t.Fatalf("loop stopped producing frames after a victype change")
	}
}

func TestSession_VolumeChangeAppliesGains(t *testing.T) {
	loop := driver.New(sid.Model6581, false, driver.PAL, 44100)
	sess := NewSession(loop)

	sess.Set("v1volume", 128)
	if sess.voiceVolume[0] != 128 {
		t.Fatalf("voiceVolume[0] = %d, want 128", sess.voiceVolume[0])
	}
}

func TestSession_FiltersToggleReachesChip(t *testing.T) {
	loop := driver.New(sid.Model6581, false, driver.PAL, 44100)
	sess := NewSession(loop)

	sess.Set("filters", false)
	sess.Set("filters", true)
	// No direct getter on sid.Chip for enableFilters; this exercises the
	// callback path without panicking, the behavioral effect is covered
	// by internal/sid's own filter tests.
}

func TestSession_DualSIDGainsMirrorToSecondChip(t *testing.T) {
	loop := driver.New(sid.Model6581, true, driver.PAL, 44100)
	sess := NewSession(loop)
	if loop.SID2() == nil {
		t.Fatalf("expected a second SID chip in dual mode")
	}
	sess.Set("dualsep", 20)
	if sess.panOffset != 20 {
		t.Fatalf("panOffset = %d, want 20", sess.panOffset)
	}
}
