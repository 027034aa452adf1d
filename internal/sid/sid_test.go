package sid

import "testing"

func TestChip_FrequencyWriteSetsOscillatorAdd(t *testing.T) {
	c := New(0, Model6581)
	c.SetClock(985248.4, 44100)
	c.Write(0, 0x34) // voice 1 freq lo
	c.Write(1, 0x12) // voice 1 freq hi
	if c.voices[0].freq != 0x1234 {
		t.Fatalf("freq = %#04x, want 0x1234", c.voices[0].freq)
	}
	if c.voices[0].add == 0 {
		t.Fatalf("oscillator add not recomputed after frequency write")
	}
}

func TestChip_GateOnStartsAttack(t *testing.T) {
	c := New(0, Model6581)
	c.SetClock(985248.4, 44100)
	c.Write(4, 0x11) // triangle wave, gate on
	if c.voices[0].egState != egAttack {
		t.Fatalf("eg state = %d, want attack", c.voices[0].egState)
	}
	if c.voices[0].wave != 1 {
		t.Fatalf("wave = %d, want 1 (triangle)", c.voices[0].wave)
	}
}

func TestChip_GateOffEntersRelease(t *testing.T) {
	c := New(0, Model6581)
	c.SetClock(985248.4, 44100)
	c.Write(4, 0x11)
	c.Write(4, 0x10) // gate off
	if c.voices[0].egState != egRelease {
		t.Fatalf("eg state = %d, want release", c.voices[0].egState)
	}
}

func TestChip_EnvelopeAttackAdvancesTowardMax(t *testing.T) {
	c := New(0, Model6581)
	c.SetClock(985248.4, 44100)
	c.Write(5, 0xf0)  // slowest attack (rate 15), so it is still rising after 2000 samples
	c.Write(24, 0x0f) // full master volume, filter off
	c.Write(4, 0x11)  // triangle, gate on
	c.SetGains(256, [4]int32{255, 0, 0, 0}, [4]int32{0, 0, 0, 0}, 0)

	for i := 0; i < 2000; i++ {
		c.Sample()
	}
	if c.voices[0].egLevel == 0 {
		t.Fatalf("envelope level never advanced from zero")
	}
}

func TestChip_EnablingFilterChangesOutput(t *testing.T) {
	newChip := func() *Chip {
		c := New(0, Model8580)
		c.SetClock(985248.4, 44100)
		c.Write(22, 0x80) // filter cutoff
		c.Write(23, 0x71) // voice 1 routed through filter, resonance 7
		c.Write(24, 0x1f) // LP filter selected, full volume
		c.Write(5, 0x00)  // fast attack so the envelope is non-zero quickly
		c.Write(4, 0x11)  // triangle, gate on
		c.SetGains(256, [4]int32{255, 0, 0, 0}, [4]int32{0, 0, 0, 0}, 0)
		return c
	}

	unfiltered := newChip()
	var lastUnfiltered int32
	for i := 0; i < 50; i++ {
		lastUnfiltered, _ = unfiltered.Sample()
	}

	filtered := newChip()
	filtered.SetEnableFilters(true)
	var lastFiltered int32
	for i := 0; i < 50; i++ {
		lastFiltered, _ = filtered.Sample()
	}

	if lastFiltered == lastUnfiltered {
		t.Fatalf("enabling the filter produced identical output to bypassing it")
	}
}

func TestChip_SaveLoadStateRoundTrips(t *testing.T) {
	c := New(0, Model6581)
	c.SetClock(985248.4, 44100)
	c.Write(0, 0x34)
	c.Write(1, 0x12)
	c.Write(4, 0x11)
	c.Write(24, 0x0f)
	snap := c.SaveState()

	c2 := New(0, Model6581)
	c2.SetClock(985248.4, 44100)
	if err := c2.LoadState(snap); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if c2.voices[0].freq != 0x1234 {
		t.Fatalf("restored freq = %#04x, want 0x1234", c2.voices[0].freq)
	}
	if c2.voices[0].egState != egAttack {
		t.Fatalf("restored eg state = %d, want attack", c2.voices[0].egState)
	}
}

func TestChip_ReadReturnsLastWrittenByte(t *testing.T) {
	c := New(0, Model6581)
	c.Write(0, 0x77)
	if got := c.Read(0); got != 0x77 {
		t.Fatalf("Read(0) = %#02x, want 0x77", got)
	}
	// Readback is one-shot: the latch clears after being read.
	if got := c.Read(0); got != 0 {
		t.Fatalf("second Read(0) = %#02x, want 0 (latch cleared)", got)
	}
}

func TestChip_GalwayNoiseTriggerEntersV4State(t *testing.T) {
	var ram [0x10000]byte
	c := New(0, Model6581)
	c.SetClock(985248.4, 44100)
	c.AttachRAM(&ram)
	ram[0x2000] = 10 // one tone-length divisor byte at gn_adr
	c.Write(0x1e, 0x00)
	c.Write(0x1f, 0x20) // gn_adr = 0x2000
	c.Write(0x3d, 5)     // tone length
	c.Write(0x3e, 0)     // volume add
	c.Write(0x3f, 1)     // loop cycles
	c.Write(0x5d, 0)     // base cycles
	c.Write(29, 1)       // trigger Galway noise (tone counter 1)
	if c.v4State != v4GalwayNoise {
		t.Fatalf("v4State = %d, want galway-noise", c.v4State)
	}
}

func TestChip_SampleOffResetsV4State(t *testing.T) {
	c := New(0, Model6581)
	c.SetClock(985248.4, 44100)
	c.v4State = v4Sample
	c.Write(29, 0xfd)
	if c.v4State != v4Off {
		t.Fatalf("v4State = %d, want off after 0xfd", c.v4State)
	}
}
