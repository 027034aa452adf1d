package mem

import "testing"

type fakeSID struct {
	lastAddr uint16
	lastVal  byte
}

func (f *fakeSID) Read(addr uint16) byte { return byte(addr) }
func (f *fakeSID) Write(addr uint16, v byte) {
	f.lastAddr = addr
	f.lastVal = v
}

type fakeCIA struct {
	lo, hi byte
}

func (f *fakeCIA) WriteTimerLo(v byte) { f.lo = v }
func (f *fakeCIA) WriteTimerHi(v byte) { f.hi = v }

func TestBus_PlainRAM(t *testing.T) {
	b := New()
	b.Write(0xC000, 0x99)
	if got := b.Read(0xC000); got != 0x99 {
		t.Fatalf("RAM read got %02x, want 99", got)
	}
}

func TestBus_SIDRouting(t *testing.T) {
	b := New()
	sid := &fakeSID{}
	b.AttachSID(sid, nil)

	b.Write(0xD400, 0x2A)
	if sid.lastAddr != 0x00 || sid.lastVal != 0x2A {
		t.Fatalf("expected SID write at reg 0, got addr=%02x val=%02x", sid.lastAddr, sid.lastVal)
	}
	b.Write(0xD400+29, 0x01)
	if sid.lastAddr != 29 {
		t.Fatalf("expected SID register masked to 29, got %d", sid.lastAddr)
	}
	b.Write(0xD400+0x3D, 0x02) // voice-4 scratch register, outside the 25 real registers
	if sid.lastAddr != 0x3D {
		t.Fatalf("expected shadow register 0x3D reachable, got %#02x", sid.lastAddr)
	}
}

func TestBus_DualSIDSplit(t *testing.T) {
	b := New()
	sid1 := &fakeSID{}
	sid2 := &fakeSID{}
	b.AttachSID(sid1, sid2)

	b.Write(0xD400, 0x10) // first chip's page
	if sid1.lastVal != 0x10 {
		t.Fatalf("sid1 did not receive write: %+v", sid1)
	}
	b.Write(0xD500, 0x20) // second chip's page
	if sid2.lastVal != 0x20 {
		t.Fatalf("sid2 did not receive write: %+v", sid2)
	}
}

func TestBus_CIATimerLatch(t *testing.T) {
	b := New()
	cia := &fakeCIA{}
	b.AttachCIA(cia)

	b.Write(0xDC04, 0x11)
	b.Write(0xDC05, 0x22)
	if cia.lo != 0x11 || cia.hi != 0x22 {
		t.Fatalf("CIA latch not wired: lo=%02x hi=%02x", cia.lo, cia.hi)
	}

	// Every other CIA-page address still behaves as RAM.
	b.Write(0xDC10, 0x55)
	if got := b.Read(0xDC10); got != 0x55 {
		t.Fatalf("CIA page fallthrough to RAM failed: got %02x", got)
	}
}

func TestBus_LoadImageAndReset(t *testing.T) {
	b := New()
	b.LoadImage(0x1000, []byte{1, 2, 3})
	if b.Read(0x1000) != 1 || b.Read(0x1002) != 3 {
		t.Fatalf("LoadImage did not place bytes correctly")
	}
	b.Reset()
	if b.Read(0x1000) != 0 {
		t.Fatalf("Reset did not clear RAM")
	}
}
