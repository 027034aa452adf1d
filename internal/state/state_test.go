package state

import (
	"path/filepath"
	"testing"

	"github.com/sidplayer/sidplayer/internal/driver"
	"github.com/sidplayer/sidplayer/internal/sid"
)

func TestSaveLoadFile_RoundTripsLoopSnapshot(t *testing.T) {
	l := driver.New(sid.Model6581, false, driver.PAL, 44100)
	l.Bus().LoadImage(0x1000, []byte{0x60})
	l.SetPlayAddress(0x1000)
	l.Advance(20)

	dir := t.TempDir()
	path := filepath.Join(dir, "tune.sid.slot0.savestate")
	if err := SaveToFile(l, path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	l2 := driver.New(sid.Model6581, false, driver.PAL, 44100)
	if err := LoadFromFile(l2, path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if l2.Bus().Read(0x1000) != 0x60 {
		t.Fatalf("restored loop is missing the loaded program byte")
	}
}

func TestSlotPath_MatchesNamingConvention(t *testing.T) {
	got := SlotPath("/music/Monty_on_the_Run.sid", 2)
	want := filepath.Join("/music", "Monty_on_the_Run.sid.slot2.savestate")
	if got != want {
		t.Fatalf("SlotPath = %q, want %q", got, want)
	}
}
