package cpu

import (
	"testing"

	"github.com/sidplayer/sidplayer/internal/mem"
)

func newCPUWithImage(addr uint16, code []byte) (*CPU, *mem.Bus) {
	b := mem.New()
	b.LoadImage(addr, code)
	return New(b), b
}

func TestCPU_LDAImmAndNZFlags(t *testing.T) {
	c, _ := newCPUWithImage(0xC000, []byte{0xA9, 0x00, 0xA9, 0x80})
	cycles, reason := c.Execute(0xC000, 0, 0, 0, 4)
	if reason != StopReasonMaxCycles {
		t.Fatalf("reason = %v, want max-cycles", reason)
	}
	if cycles != 4 {
		t.Fatalf("cycles = %d, want 4", cycles)
	}
	if c.A != 0x80 {
		t.Fatalf("A = %#02x, want 0x80", c.A)
	}
	if !c.nFlagSet() {
		t.Fatalf("N flag not set for A=0x80")
	}
}

func TestCPU_PageCrossExtraCycleOnRead(t *testing.T) {
	// LDA $20FF,X with X=1 crosses into $2100: costs 5 cycles, not 4.
	c, _ := newCPUWithImage(0xC000, []byte{0xA2, 0x01, 0xBD, 0xFF, 0x20})
	cycles, _ := c.Execute(0xC000, 0, 0, 0, 7)
	// LDX #imm = 2 cycles, LDA abs,X with page cross = 5 cycles.
	if cycles != 7 {
		t.Fatalf("cycles = %d, want 7 (2 + 5 with page-cross penalty)", cycles)
	}
}

func TestCPU_AbsXWriteAlwaysPaysFixedCost(t *testing.T) {
	// STA $2000,X with X=0: no page crossing, which would spare a read
	// its extra cycle, but STA abs,X is always 5 cycles regardless.
	c, _ := newCPUWithImage(0xC000, []byte{0xA2, 0x00, 0x9D, 0x00, 0x20})
	cycles, _ := c.Execute(0xC000, 0, 0, 0, 7)
	if cycles != 7 {
		t.Fatalf("cycles = %d, want 7 (2 + 5 fixed STA abs,X cost)", cycles)
	}
}

func TestCPU_BCD_ADC(t *testing.T) {
	// SED; LDA #$58; ADC #$46 -> decimal 58+46=104 -> 0x04 with carry set.
	c, _ := newCPUWithImage(0xC000, []byte{0xF8, 0xA9, 0x58, 0x69, 0x46})
	c.Execute(0xC000, 0, 0, 0, 100)
	if c.A != 0x04 {
		t.Fatalf("BCD ADC result = %#02x, want 0x04", c.A)
	}
	if c.P&flagC == 0 {
		t.Fatalf("carry flag not set after BCD overflow")
	}
}

func TestCPU_BCD_SBC(t *testing.T) {
	// SED; SEC; LDA #$42; SBC #$13 -> decimal 42-13=29 -> 0x29.
	c, _ := newCPUWithImage(0xC000, []byte{0xF8, 0x38, 0xA9, 0x42, 0xE9, 0x13})
	c.Execute(0xC000, 0, 0, 0, 100)
	if c.A != 0x29 {
		t.Fatalf("BCD SBC result = %#02x, want 0x29", c.A)
	}
}

func TestCPU_StackUnderflowQuits(t *testing.T) {
	// SP starts at 0xFF; 256 PHAs will push SP through 0 and trip underflow.
	code := make([]byte, 0, 260)
	for i := 0; i < 256; i++ {
		code = append(code, 0x48) // PHA
	}
	c, _ := newCPUWithImage(0xC000, code)
	_, reason := c.Execute(0xC000, 0, 0, 0, 100000)
	if reason != StopReasonStackUnderflow {
		t.Fatalf("reason = %v, want stack-underflow", reason)
	}
}

func TestCPU_StackOverflowOnPopWithEmptyStack(t *testing.T) {
	c, _ := newCPUWithImage(0xC000, []byte{0x68}) // PLA with SP=0xFF
	_, reason := c.Execute(0xC000, 0, 0, 0, 100)
	if reason != StopReasonStackOverflow {
		t.Fatalf("reason = %v, want stack-overflow", reason)
	}
}

func TestCPU_RTIStopsAsReturnInReplayMode(t *testing.T) {
	c, _ := newCPUWithImage(0xC000, []byte{0x40})
	_, reason := c.Execute(0xC000, 0, 0, 0, 100)
	if reason != StopReasonReturn {
		t.Fatalf("reason = %v, want return", reason)
	}
}

func TestCPU_JAMOpcodeHalts(t *testing.T) {
	c, _ := newCPUWithImage(0xC000, []byte{0x02})
	_, reason := c.Execute(0xC000, 0, 0, 0, 100)
	if reason != StopReasonIllegalOpcode {
		t.Fatalf("reason = %v, want illegal-opcode", reason)
	}
}

func TestCPU_JSRThenRTSRoundTrips(t *testing.T) {
	// JSR $C005; BRK(filler); BRK; LDA #$7B; RTS
	c, b := newCPUWithImage(0xC000, []byte{0x20, 0x05, 0xC0})
	b.LoadImage(0xC005, []byte{0xA9, 0x7B, 0x60})
	c.Execute(0xC000, 0, 0, 0, 100)
	if c.A != 0x7B {
		t.Fatalf("A after JSR/RTS = %#02x, want 0x7B", c.A)
	}
}

func TestCPU_UndocumentedSLO(t *testing.T) {
	// LDA #$01; SLO $10 (mem[$10]=0x80 preset) -> mem becomes 0x00, C set, A |= 0x00
	c, b := newCPUWithImage(0xC000, []byte{0xA9, 0x01, 0x07, 0x10})
	b.WriteZP(0x10, 0x80)
	c.Execute(0xC000, 0, 0, 0, 100)
	if c.A != 0x01 {
		t.Fatalf("A after SLO = %#02x, want 0x01", c.A)
	}
	if c.P&flagC == 0 {
		t.Fatalf("carry not set after SLO shifting out bit 7")
	}
}

func TestCPU_UndocumentedLAX(t *testing.T) {
	// LAX $10 (mem[$10]=0x85) -> A=X=0x85, N set.
	c, b := newCPUWithImage(0xC000, []byte{0xA7, 0x10})
	b.WriteZP(0x10, 0x85)
	_, reason := c.Execute(0xC000, 0, 0, 0, 100)
	if reason != StopReasonMaxCycles {
		t.Fatalf("LAX fell through to illegal-opcode handling: reason = %v", reason)
	}
	if c.A != 0x85 || c.X != 0x85 {
		t.Fatalf("A=%#02x X=%#02x after LAX, want both 0x85", c.A, c.X)
	}
	if !c.nFlagSet() {
		t.Fatalf("N flag not set after LAX loaded 0x85")
	}
}

func TestCPU_UndocumentedSAX(t *testing.T) {
	// LDA #$0F; LDX #$F0; SAX $10 -> mem[$10] = A & X = 0x00.
	c, b := newCPUWithImage(0xC000, []byte{0xA9, 0x0F, 0xA2, 0xF0, 0x87, 0x10})
	_, reason := c.Execute(0xC000, 0, 0, 0, 100)
	if reason != StopReasonMaxCycles {
		t.Fatalf("SAX fell through to illegal-opcode handling: reason = %v", reason)
	}
	if got := b.ReadZP(0x10); got != 0x00 {
		t.Fatalf("mem[$10] after SAX = %#02x, want 0x00", got)
	}
}

func TestCPU_SHYPageCrossUsesUnindexedBaseHighByte(t *testing.T) {
	// LDY #$FF; LDX #$01; SHY $20FF,X -> effective addr $2100, but the
	// stored value masks against the unindexed base's high byte ($20+1),
	// not the post-index page ($21+1).
	c, b := newCPUWithImage(0xC000, []byte{0xA0, 0xFF, 0xA2, 0x01, 0x9C, 0xFF, 0x20})
	c.Execute(0xC000, 0, 0, 0, 100)
	if got := b.Read(0x2100); got != 0xFF&0x21 {
		t.Fatalf("mem[$2100] after SHY = %#02x, want %#02x", got, byte(0xFF&0x21))
	}
}
