package psid

import (
	"testing"

	"github.com/sidplayer/sidplayer/internal/driver"
	"github.com/sidplayer/sidplayer/internal/sid"
)

func TestPlace_LoadsImageAndRunsInit(t *testing.T) {
	header := buildHeader(2, 1, 0, 0, 0x1000, 0x1000, 0x1010)
	program := []byte{
		0x8D, 0x00, 0x20, // STA $2000 -- store accumulator (the subsong index) to RAM
		0x60, // RTS
	}
	file := append(append([]byte{}, header...), program...)

	h, err := ParseHeader(file)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	song, err := Load(h, file)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	l := driver.New(sid.Model6581, false, driver.PAL, 44100)
	Place(l, song, 0)

	if got := l.Bus().Read(0x1000); got != 0x8D {
		t.Fatalf("program not loaded at 0x1000: first byte = %#02x", got)
	}
	if got := l.Bus().Read(0x2000); got != 0 {
		t.Fatalf("init routine stored wrong accumulator: got %#02x, want 0", got)
	}
}
