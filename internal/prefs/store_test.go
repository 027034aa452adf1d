package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_SetFiresCallbackOnlyOnChange(t *testing.T) {
	s := NewStore()
	calls := 0
	s.Register("volume", 255, func(old, new any) { calls++ })

	s.Set("volume", 255) // same as default: no callback
	if calls != 0 {
		t.Fatalf("callback fired %d times on no-op Set, want 0", calls)
	}

	s.Set("volume", 200)
	if calls != 1 {
		t.Fatalf("callback fired %d times on changed Set, want 1", calls)
	}

	s.Set("volume", 200) // unchanged again
	if calls != 1 {
		t.Fatalf("callback fired %d times on repeated no-op Set, want 1", calls)
	}
}

func TestStore_TypedAccessors(t *testing.T) {
	s := NewStore()
	s.Register("sidtype", "6581", nil)
	s.Register("filters", true, nil)
	s.Register("volume", 255, nil)
	s.Register("revfeedback", 0.5, nil)

	if s.String("sidtype") != "6581" {
		t.Fatalf("String(sidtype) = %q", s.String("sidtype"))
	}
	if !s.Bool("filters") {
		t.Fatalf("Bool(filters) = false, want true")
	}
	if s.Int("volume") != 255 {
		t.Fatalf("Int(volume) = %d, want 255", s.Int("volume"))
	}
	if s.Float("revfeedback") != 0.5 {
		t.Fatalf("Float(revfeedback) = %v, want 0.5", s.Float("revfeedback"))
	}
}

func TestStore_SaveLoadRoundTripsAndCoercesTypes(t *testing.T) {
	s := NewStore()
	s.Register("volume", 255, nil)
	s.Register("speed", 100, nil)
	s.Set("volume", 128)
	s.Set("speed", 50)

	dir := t.TempDir()
	path := filepath.Join(dir, "prefs.json")
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Save did not create file: %v", err)
	}

	s2 := NewStore()
	s2.Register("volume", 255, nil)
	s2.Register("speed", 100, nil)
	if err := s2.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s2.Int("volume") != 128 {
		t.Fatalf("loaded volume = %d, want 128 (int, not float64)", s2.Int("volume"))
	}
	if s2.Int("speed") != 50 {
		t.Fatalf("loaded speed = %d, want 50", s2.Int("speed"))
	}
}

func TestStore_MultipleCallbacksOnSameKey(t *testing.T) {
	s := NewStore()
	var a, b int
	s.Register("speed", 100, func(_, _ any) { a++ })
	s.Register("speed", 100, func(_, _ any) { b++ })
	s.Set("speed", 200)
	if a != 1 || b != 1 {
		t.Fatalf("both callbacks should fire once: a=%d b=%d", a, b)
	}
}
