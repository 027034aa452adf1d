// Package mem implements the C64 64 KiB address space as seen by the
// replay engine: flat RAM with per-page read/write dispatch so that
// the SID and CIA timer-A latch can be memory-mapped without every
// access paying a range check.
package mem

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// Page-granular read/write functions, one entry per address page
// (addr>>8), mirroring the original's mem_read_table/mem_write_table
// function-pointer arrays.
type readFunc func(addr uint16) byte
type writeFunc func(addr uint16, v byte)

const (
	sidPage1Lo = 0xD4
	sidPage1Hi = 0xD7
	sidPage2Lo = 0xD5 // dual-SID convention: second chip also answers within $D500-$D7FF
	ciaPageLo  = 0xDC
	ciaPageHi  = 0xDC
)

// SIDBus is the subset of sid.Chip that the memory map needs to route
// register accesses to, kept as an interface so mem does not import sid.
type SIDBus interface {
	Read(addr uint16) byte
	Write(addr uint16, v byte)
}

// CIATimer receives the two CIA timer-A latch writes that set the
// replay rate.
type CIATimer interface {
	WriteTimerLo(v byte)
	WriteTimerHi(v byte)
}

// Bus is the 64 KiB C64 address space plus page dispatch tables.
type Bus struct {
	ram [0x10000]byte

	readPage  [256]readFunc
	writePage [256]writeFunc

	sid1    SIDBus
	sid2    SIDBus
	dualSID bool
	cia     CIATimer
}

// New creates a Bus with every page defaulting to plain RAM access.
func New() *Bus {
	b := &Bus{}
	for page := 0; page < 256; page++ {
		b.readPage[page] = b.ramRead
		b.writePage[page] = b.ramWrite
	}
	return b
}

func (b *Bus) ramRead(addr uint16) byte     { return b.ram[addr] }
func (b *Bus) ramWrite(addr uint16, v byte) { b.ram[addr] = v }

// AttachSID wires $D400-$D7FF to the given SID chip. When dual is
// non-nil, accesses to $D500-$D7FF go to the second chip instead, per
// the dualsid stereo-separation convention (DESIGN.md open question 3).
func (b *Bus) AttachSID(primary SIDBus, dual SIDBus) {
	b.sid1 = primary
	b.sid2 = dual
	b.dualSID = dual != nil
	for page := sidPage1Lo; page <= sidPage1Hi; page++ {
		b.readPage[page] = b.sidRead
		b.writePage[page] = b.sidWrite
	}
}

// Register masking uses 0x7F, not the real chip's 5-bit (0x1F, mirrored
// every 32 bytes) decode: replay mode keeps a full 128-byte shadow register
// file per SID so that PSID voice-4 digi/Galway-noise routines can stash
// extra parameter bytes past the 25 real registers (DESIGN.md C/D/E).
func (b *Bus) sidRead(addr uint16) byte {
	if b.dualSID && (addr>>8) >= sidPage2Lo {
		return b.sid2.Read(addr & 0x7F)
	}
	return b.sid1.Read(addr & 0x7F)
}

func (b *Bus) sidWrite(addr uint16, v byte) {
	if b.dualSID && (addr>>8) >= sidPage2Lo {
		b.sid2.Write(addr&0x7F, v)
		return
	}
	b.sid1.Write(addr&0x7F, v)
}

// AttachCIA wires the timer-A latch writes at $DC04/$DC05; all other
// CIA-page accesses, including reads, fall through to plain RAM.
func (b *Bus) AttachCIA(cia CIATimer) {
	b.cia = cia
	for page := ciaPageLo; page <= ciaPageHi; page++ {
		b.writePage[page] = b.ciaWrite
	}
}

func (b *Bus) ciaWrite(addr uint16, v byte) {
	switch addr {
	case 0xDC04:
		if b.cia != nil {
			b.cia.WriteTimerLo(v)
		}
	case 0xDC05:
		if b.cia != nil {
			b.cia.WriteTimerHi(v)
		}
	default:
		b.ram[addr] = v
	}
}

// Read returns the byte at addr via the page dispatch table.
func (b *Bus) Read(addr uint16) byte {
	return b.readPage[addr>>8](addr)
}

// Write stores v at addr via the page dispatch table.
func (b *Bus) Write(addr uint16, v byte) {
	b.writePage[addr>>8](addr, v)
}

// ReadZP is the fast zero-page accessor used by the CPU for addressing
// modes that never cross into I/O space.
func (b *Bus) ReadZP(addr byte) byte { return b.ram[addr] }

// WriteZP is the fast zero-page accessor paired with ReadZP.
func (b *Bus) WriteZP(addr byte, v byte) { b.ram[addr] = v }

// LoadImage copies data into RAM starting at addr, used by the PSID
// loader to place the program image.
func (b *Bus) LoadImage(addr uint16, data []byte) {
	for i, v := range data {
		pos := int(addr) + i
		if pos > 0xFFFF {
			break
		}
		b.ram[pos] = v
	}
}

// RAM exposes the raw backing array; voice-4 sample replay streams
// bytes directly out of C64 memory rather than through the dispatch
// tables, matching the original's direct ram[] access in calc_sid.
func (b *Bus) RAM() *[0x10000]byte { return &b.ram }

// Reset zeroes all of RAM. Called once per song load, matching the
// original's per-song state reset.
func (b *Bus) Reset() {
	for i := range b.ram {
		b.ram[i] = 0
	}
}

// SaveState gob-encodes the RAM image. The dispatch tables and attached
// SID/CIA peripherals are reconstructed by the caller, not snapshotted
// here, since they are wired once at construction and never change.
func (b *Bus) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(b.ram)
	return buf.Bytes()
}

// LoadState restores RAM from a blob produced by SaveState.
func (b *Bus) LoadState(data []byte) error {
	var ram [0x10000]byte
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&ram); err != nil {
		return fmt.Errorf("mem: decoding RAM snapshot: %w", err)
	}
	b.ram = ram
	return nil
}
