// Package sid emulates the MOS 6581/8580 sound chip used by the C64,
// including the PSID voice-4 extension (Galway noise and 4-bit sample
// replay) that replay routines drive through the chip's otherwise
// write-only register space.
package sid

import (
	"bytes"
	"encoding/gob"
)

// Model selects which chip's combined-waveform and filter-cutoff tables
// to use.
type Model int

const (
	Model6581 Model = iota
	Model8580
)

// Voice oscillator/envelope states.
const (
	egIdle = iota
	egAttack
	egDecay
	egRelease
)

// Voice4 state (PSID extension only).
const (
	v4Off = iota
	v4GalwayNoise
	v4Sample
)

type voice struct {
	wave    byte
	egState int
	modBy   *voice
	modTo   *voice

	count uint32
	add   uint32

	freq uint16
	pw   uint16

	aAdd, dSub, sLevel, rSub, egLevel uint32

	noise uint32

	leftGain, rightGain uint16

	gate, ring, test, filter, sync, mute bool
}

// Chip is one MOS 6581/8580: three voices, the shared IIR filter and, in
// replay mode, the PSID voice-4 digi-sample/Galway-noise extension.
type Chip struct {
	num int

	voices [3]voice
	regs   [128]byte

	lastWrittenByte byte
	volume          byte // register 24 low nibble

	filter filterState

	model           Model
	triSaw          *[0x100]uint16
	triRect         *[0x100]uint16
	sawRect         *[0x100]uint16
	triSawRect      *[0x100]uint16
	cyclesPerSample uint32
	sampleRate      int
	egTable         [16]uint32
	enableFilters   bool

	v4LeftGain, v4RightGain uint16

	v4State        int
	v4Count, v4Add uint32

	gnAdr         uint16
	gnToneLength  uint16
	gnVolumeAdd   uint32
	gnToneCounter int
	gnBaseCycles  uint16
	gnLoopCycles  uint16
	gnLastCount   uint32

	smAdr, smEndAdr, smRepAdr uint32
	smVolume                  byte
	smRepCount                byte
	smBigEndian               bool

	noiseSeed uint32
	ram       *[0x10000]byte
}

// New creates a Chip for the given model, wired for voice-to-voice ring
// modulation/sync the way the reference player links them: each voice is
// modulated by its predecessor, cyclically.
func New(num int, model Model) *Chip {
	c := &Chip{num: num, model: model, noiseSeed: 1}
	c.triSaw, c.triRect, c.sawRect, c.triSawRect = waveformTables(model)
	c.voices[0].modBy = &c.voices[2]
	c.voices[1].modBy = &c.voices[0]
	c.voices[2].modBy = &c.voices[1]
	c.voices[0].modTo = &c.voices[1]
	c.voices[1].modTo = &c.voices[2]
	c.voices[2].modTo = &c.voices[0]
	c.Reset()
	return c
}

// AttachRAM gives the chip direct read access to C64 memory for voice-4
// sample replay, which streams PCM nibbles straight out of RAM the same
// way the reference player does in calc_sid rather than through the bus.
func (c *Chip) AttachRAM(ram *[0x10000]byte) { c.ram = ram }

// SetModel switches the combined-waveform/filter-cutoff tables, used when
// the "sidtype" preference changes between 6581 and 8580.
func (c *Chip) SetModel(model Model) {
	c.model = model
	c.triSaw, c.triRect, c.sawRect, c.triSawRect = waveformTables(model)
}

// SetEnableFilters toggles the IIR filter stage on or off.
func (c *Chip) SetEnableFilters(on bool) {
	c.enableFilters = on
	if on {
		c.filter.recalc(c.sampleRateHint())
	}
}

func (c *Chip) sampleRateHint() int {
	if c.sampleRate == 0 {
		return 44100
	}
	return c.sampleRate
}

// SetClock recomputes the per-sample oscillator increment and envelope
// rate table for a new (clock, sample rate) pair, then replays the
// frequency register writes so voice.add reflects the new rate — the
// same sequence SIDClockFreqChanged runs after a video-standard or
// sample-rate preference change.
func (c *Chip) SetClock(cyclesPerSecond float64, sampleRate int) {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	c.sampleRate = sampleRate
	c.cyclesPerSample = uint32(cyclesPerSecond / float64(sampleRate))
	for i, div := range egDivisors {
		c.egTable[i] = (c.cyclesPerSample << 16) / div
	}
	if c.enableFilters {
		c.filter.recalc(sampleRate)
	}
	c.Write(0, c.regs[0])
	c.Write(7, c.regs[7])
	c.Write(14, c.regs[14])
}

// Reset clears all registers and voice state, matching osid_reset.
func (c *Chip) Reset() {
	c.regs = [128]byte{}
	c.lastWrittenByte = 0
	c.volume = 15
	c.regs[24] = 0x0f

	for i := range c.voices {
		v := &c.voices[i]
		v.wave = 0
		v.egState = egIdle
		v.count, v.add = 0, 0
		v.freq, v.pw = 0, 0
		v.egLevel, v.sLevel = 0, 0
		v.aAdd, v.dSub, v.rSub = c.egTable[0], c.egTable[0], c.egTable[0]
		v.gate, v.ring, v.test = false, false, false
		v.filter, v.sync, v.mute = false, false, false
	}

	c.filter.reset()

	c.v4State = v4Off
	c.v4Count, c.v4Add = 0, 0
	c.gnAdr, c.gnToneLength = 0, 0
	c.gnVolumeAdd = 0
	c.gnToneCounter = 0
	c.gnBaseCycles, c.gnLoopCycles = 0, 0
	c.gnLastCount = 0
	c.smAdr, c.smEndAdr, c.smRepAdr = 0, 0, 0
	c.smVolume, c.smRepCount = 0, 0
	c.smBigEndian = false
}

// SetGains recomputes per-voice stereo pan/volume gains from the shared
// mixer preferences (master volume plus per-voice volume/pan), following
// osid_calc_gain_voice. panOffset is nonzero only for the stereo dual-SID
// configuration, where it biases one chip's voices left and the other's
// right (DESIGN.md open question 3).
func (c *Chip) SetGains(masterVolume int32, voiceVolume, voicePanning [4]int32, panOffset int32) {
	gain := func(volume, panning int32) (uint16, uint16) {
		if panning < -0x100 {
			panning = -0x100
		}
		if panning > 0x100 {
			panning = 0x100
		}
		left := (volume * (-panning + 0x100) * masterVolume) >> 20
		left = clampGain(left)
		right := (volume * (panning + 0x100) * masterVolume) >> 20
		right = clampGain(right)
		return uint16(left), uint16(right)
	}
	for i := 0; i < 3; i++ {
		c.voices[i].leftGain, c.voices[i].rightGain = gain(voiceVolume[i], voicePanning[i]+panOffset)
	}
	c.v4LeftGain, c.v4RightGain = gain(voiceVolume[3], voicePanning[3]+panOffset)
}

func clampGain(g int32) int32 {
	if g > 0x200 {
		return 0x200
	}
	if g < 0 {
		return 0
	}
	return g
}

// Read services a CPU read of a SID register. Only four registers
// (0x19-0x1c) are readable on real hardware; everything else returns the
// last byte written anywhere in the chip's register space (write-only
// register readback quirk).
func (c *Chip) Read(adr uint16) byte {
	switch adr {
	case 0x19, 0x1a: // A/D converters: unconnected on a replay-only setup
		c.lastWrittenByte = 0
		return 0xff
	case 0x1b, 0x1c: // voice 3 oscillator/envelope readout
		c.lastWrittenByte = 0
		return c.randByte()
	default:
		ret := c.lastWrittenByte
		c.lastWrittenByte = 0
		return ret
	}
}

func (c *Chip) randByte() byte {
	c.noiseSeed = c.noiseSeed*1103515245 + 12345
	return byte(c.noiseSeed >> 16)
}

// Write services a CPU write to a SID register. adr is already masked to
// the chip's 128-byte shadow register file by the memory map; registers
// below 0x1D additionally mirror every 0x20 bytes the way real silicon
// does, while the extended 0x1D-0x7F range is left unmirrored so replay
// routines can use it as scratch storage for voice-4 parameters.
func (c *Chip) Write(adr uint16, value byte) {
	if (adr & 0x1f) < 0x1d {
		adr &= 0x1f
	}

	c.lastWrittenByte = value
	c.regs[adr] = value
	v := int(adr) / 7

	switch adr {
	case 0, 7, 14:
		voiceIdx := v
		c.voices[voiceIdx].freq = (c.voices[voiceIdx].freq & 0xff00) | uint16(value)
		c.voices[voiceIdx].add = uint32(c.voices[voiceIdx].freq) * c.cyclesPerSample

	case 1, 8, 15:
		voiceIdx := v
		c.voices[voiceIdx].freq = (c.voices[voiceIdx].freq & 0xff) | (uint16(value) << 8)
		c.voices[voiceIdx].add = uint32(c.voices[voiceIdx].freq) * c.cyclesPerSample

	case 2, 9, 16:
		c.voices[v].pw = (c.voices[v].pw & 0x0f00) | uint16(value)

	case 3, 10, 17:
		c.voices[v].pw = (c.voices[v].pw & 0xff) | (uint16(value&0xf) << 8)

	case 4, 11, 18:
		voice := &c.voices[v]
		voice.wave = (value >> 4) & 0xf
		gateBit := value&1 != 0
		if gateBit != voice.gate {
			if gateBit {
				voice.egState = egAttack
			} else if voice.egState != egIdle {
				voice.egState = egRelease
			}
		}
		voice.gate = gateBit
		voice.modBy.sync = value&2 != 0
		voice.ring = value&4 != 0
		voice.test = value&8 != 0
		if voice.test {
			voice.count = 0
		}

	case 5, 12, 19:
		c.voices[v].aAdd = c.egTable[value>>4]
		c.voices[v].dSub = c.egTable[value&0xf]

	case 6, 13, 20:
		c.voices[v].sLevel = uint32(value>>4) * 0x111111
		c.voices[v].rSub = c.egTable[value&0xf]

	case 22:
		if value != c.filter.fFreq {
			c.filter.fFreq = value
			if c.enableFilters {
				c.filter.recalc(c.sampleRateHint())
			}
		}

	case 23:
		c.voices[0].filter = value&1 != 0
		c.voices[1].filter = value&2 != 0
		c.voices[2].filter = value&4 != 0
		if (value >> 4) != c.filter.fRes {
			c.filter.fRes = value >> 4
			if c.enableFilters {
				c.filter.recalc(c.sampleRateHint())
			}
		}

	case 24:
		c.volume = value & 0xf
		c.voices[2].mute = value&0x80 != 0
		newType := FilterType((value >> 4) & 7)
		if newType != c.filter.fType {
			c.filter.fType = newType
			c.filter.xn1L, c.filter.xn2L, c.filter.yn1L, c.filter.yn2L = 0, 0, 0, 0
			c.filter.xn1R, c.filter.xn2R, c.filter.yn1R, c.filter.yn2R = 0, 0, 0, 0
			if c.enableFilters {
				c.filter.recalc(c.sampleRateHint())
			}
		}

	case 29:
		c.writeVoice4(value)
	}
}

// writeVoice4 decodes a write to the PSID voice-4 trigger register
// (shadow register 29), dispatching into Galway-noise or digi-sample
// playback using the extended parameter bytes already stashed at
// registers 0x1e/0x1f/0x3d/0x3e/0x3f/0x5d/0x5e/0x5f/0x7d/0x7e/0x7f.
func (c *Chip) writeVoice4(value byte) {
	if value == 0 {
		return
	}
	switch {
	case value < 0xfc: // Galway noise
		c.gnAdr = (uint16(c.regs[0x1f]) << 8) | uint16(c.regs[0x1e])
		c.gnToneLength = uint16(c.regs[0x3d])
		c.gnVolumeAdd = uint32(c.regs[0x3e]) & 15
		c.gnToneCounter = int(value)
		c.gnBaseCycles = uint16(c.regs[0x5d])
		c.gnLoopCycles = uint16(c.regs[0x3f])
		c.gnLastCount = 0
		c.v4Count = 0
		div := c.galwayDiv()
		if div == 0 {
			c.v4Add = 0
		} else {
			c.v4Add = (c.cyclesPerSample * 0x10000) / div
		}
		c.v4State = v4GalwayNoise

	case value == 0xfd: // sample off
		c.v4State = v4Off

	default: // sample on
		c.smAdr = (uint32(c.regs[0x1f])<<8 | uint32(c.regs[0x1e])) << 1
		c.smEndAdr = (uint32(c.regs[0x3e])<<8 | uint32(c.regs[0x3d])) << 1
		c.smRepAdr = (uint32(c.regs[0x7f])<<8 | uint32(c.regs[0x7e])) << 1
		c.smRepCount = c.regs[0x3f]
		c.smBigEndian = c.regs[0x7d] != 0
		switch value {
		case 0xfc:
			c.smVolume = 2
		case 0xfe:
			c.smVolume = 1
		case 0xff:
			c.smVolume = 0
		}
		div := uint32(c.regs[0x5e])<<8 | uint32(c.regs[0x5d])
		if c.regs[0x5f] != 0 {
			div >>= c.regs[0x5f]
		}
		if div == 0 {
			c.v4State = v4Off
		} else {
			c.v4Count = 0
			c.v4Add = (c.cyclesPerSample * 0x10000) / div
			c.v4State = v4Sample
		}
	}
}

func (c *Chip) galwayDiv() uint32 {
	if c.ram == nil || int(c.gnAdr)+c.gnToneCounter >= len(c.ram) {
		return 0
	}
	return uint32(c.ram[c.gnAdr+uint16(c.gnToneCounter)])*uint32(c.gnLoopCycles) + uint32(c.gnBaseCycles)
}

// Sample advances every voice's envelope and oscillator by one output
// frame and mixes the unfiltered and filtered voice outputs into a
// stereo pair, matching calc_sid. masterVolume is the per-chip volume
// register (0-15), not the overall output-stage gain applied by the
// caller.
func (c *Chip) Sample() (left, right int32) {
	masterVolume := int32(c.volume)

	var sumFilterL, sumFilterR int32
	for j := range c.voices {
		v := &c.voices[j]

		switch v.egState {
		case egAttack:
			v.egLevel += v.aAdd
			if v.egLevel > 0xffffff {
				v.egLevel = 0xffffff
				v.egState = egDecay
			}
		case egDecay:
			if v.egLevel <= v.sLevel || v.egLevel > 0xffffff {
				v.egLevel = v.sLevel
			} else {
				v.egLevel -= v.dSub >> egDRShift[v.egLevel>>16]
				if v.egLevel <= v.sLevel || v.egLevel > 0xffffff {
					v.egLevel = v.sLevel
				}
			}
		case egRelease:
			v.egLevel -= v.rSub >> egDRShift[v.egLevel>>16]
			if v.egLevel > 0xffffff {
				v.egLevel = 0
				v.egState = egIdle
			}
		case egIdle:
			v.egLevel = 0
		}
		envelope := int32((v.egLevel * uint32(masterVolume)) >> 20)

		if !v.test {
			v.count += v.add
		}
		if v.sync && v.count >= 0x1000000 {
			v.modTo.count = 0
		}
		v.count &= 0xffffff

		var output uint16
		switch v.wave {
		case 1: // triangle
			if v.ring {
				output = triTable[(v.count^(v.modBy.count&0x800000))>>11]
			} else {
				output = triTable[v.count>>11]
			}
		case 2: // sawtooth
			output = uint16(v.count >> 8)
		case 4: // rectangle/pulse
			if v.count > uint32(v.pw)<<12 {
				output = 0xffff
			}
		case 3: // triangle+sawtooth
			output = c.triSaw[v.count>>16]
		case 5: // triangle+rectangle
			if v.count > uint32(v.pw)<<12 {
				output = c.triRect[v.count>>16]
			}
		case 6: // sawtooth+rectangle
			if v.count > uint32(v.pw)<<12 {
				output = c.sawRect[v.count>>16]
			}
		case 7: // triangle+sawtooth+rectangle
			if v.count > uint32(v.pw)<<12 {
				output = c.triSawRect[v.count>>16]
			}
		case 8: // noise
			if v.count >= 0x100000 {
				output = uint16(c.randByte()) << 8
				v.noise = uint32(output)
				v.count &= 0xfffff
			} else {
				output = uint16(v.noise)
			}
		default:
			output = 0x8000
		}

		x := int32(int16(output^0x8000)) * envelope
		if v.filter {
			sumFilterL += (x * int32(v.leftGain)) >> 4
			sumFilterR += (x * int32(v.rightGain)) >> 4
		} else if !v.mute {
			left += (x * int32(v.leftGain)) >> 4
			right += (x * int32(v.rightGain)) >> 4
		}
	}

	v4Out := c.sampleVoice4()
	left += (v4Out * int32(c.v4LeftGain)) >> 4
	right += (v4Out * int32(c.v4RightGain)) >> 4

	if c.enableFilters {
		fl, fr := c.filter.apply(float64(sumFilterL), float64(sumFilterR))
		sumFilterL, sumFilterR = int32(fl), int32(fr)
	}
	left += sumFilterL
	right += sumFilterR

	return left, right
}

// sampleVoice4 advances the Galway-noise/digi-sample replay state by one
// frame and returns its contribution, 0 when voice 4 is idle.
func (c *Chip) sampleVoice4() int32 {
	switch c.v4State {
	case v4GalwayNoise:
		idx := (c.gnVolumeAdd << 6) + (((c.gnLastCount + c.v4Count) >> 16) & 0x3f)
		out := int32(galwayTab[idx]) << 8
		c.v4Count += c.v4Add
		if (c.v4Count >> 16) >= uint32(c.gnToneLength) {
			if c.gnToneCounter > 0 {
				c.gnToneCounter--
				c.gnLastCount = c.v4Count & 0xffff0000
				c.v4Count &= 0xffff
				div := c.galwayDiv()
				if div == 0 {
					c.v4Add = 0
				} else {
					c.v4Add = (c.cyclesPerSample * 0x10000) / div
				}
			} else {
				c.v4State = v4Off
			}
		}
		return out

	case v4Sample:
		if c.ram == nil {
			c.v4State = v4Off
			return 0
		}
		sample := c.ram[(c.smAdr>>1)&0xffff]
		if c.smBigEndian {
			if c.smAdr&1 != 0 {
				sample &= 0xf
			} else {
				sample >>= 4
			}
		} else {
			if c.smAdr&1 != 0 {
				sample >>= 4
			} else {
				sample &= 0xf
			}
		}
		out := int32(sampleTab[int(c.smVolume)*16+int(sample)]) << 8
		c.v4Count += c.v4Add
		c.smAdr += c.v4Count >> 16
		c.v4Count &= 0xffff
		if c.smAdr >= c.smEndAdr {
			if c.smRepCount != 0 {
				if c.smRepCount != 0xff {
					c.smRepCount--
				}
				c.smAdr = c.smRepAdr
			} else {
				c.v4State = v4Off
			}
		}
		return out

	default:
		return 0
	}
}

// galwayTab is built once at package initialisation from sample_tab,
// following the reference player's galway_tab init loop.
var galwayTab [16 * 64]int16

func init() {
	for i := 0; i < 16; i++ {
		for j := 0; j < 64; j++ {
			galwayTab[i*64+j] = sampleTab[(i*j)&0x0f]
		}
	}
}

// --- Save/Load state ---

type voiceState struct {
	Wave    byte
	EGState int
	Count   uint32
	Add     uint32
	Freq    uint16
	PW      uint16
	AAdd    uint32
	DSub    uint32
	SLevel  uint32
	RSub    uint32
	EGLevel uint32
	Noise   uint32
	Gate    bool
	Ring    bool
	Test    bool
	Filter  bool
	Sync    bool
	Mute    bool
}

type chipState struct {
	Regs            [128]byte
	LastWritten     byte
	Volume          byte
	Voices          [3]voiceState
	FType           FilterType
	FFreq           byte
	FRes            byte
	FilterXn1L      float64
	FilterXn2L      float64
	FilterYn1L      float64
	FilterYn2L      float64
	FilterXn1R      float64
	FilterXn2R      float64
	FilterYn1R      float64
	FilterYn2R      float64
	V4State         int
	V4Count, V4Add  uint32
	SMAdr, SMEndAdr uint32
	SMRepAdr        uint32
	SMVolume        byte
	SMRepCount      byte
	SMBigEndian     bool
}

// SaveState serializes the chip's register file, voice and filter state,
// and the voice-4 digi-sample state. The IIR coefficients are not saved
// (LoadState recomputes them when filters are enabled), and neither are
// the Galway-noise parameters, the stereo gains, the model, the filter
// enable flag or the clock-derived tables, which keep the values already
// set on the receiving chip.
func (c *Chip) SaveState() []byte {
	s := chipState{
		Regs:        c.regs,
		LastWritten: c.lastWrittenByte,
		Volume:      c.volume,
		FType:       c.filter.fType,
		FFreq:       c.filter.fFreq,
		FRes:        c.filter.fRes,
		FilterXn1L:  c.filter.xn1L, FilterXn2L: c.filter.xn2L,
		FilterYn1L: c.filter.yn1L, FilterYn2L: c.filter.yn2L,
		FilterXn1R: c.filter.xn1R, FilterXn2R: c.filter.xn2R,
		FilterYn1R: c.filter.yn1R, FilterYn2R: c.filter.yn2R,
		V4State: c.v4State, V4Count: c.v4Count, V4Add: c.v4Add,
		SMAdr: c.smAdr, SMEndAdr: c.smEndAdr, SMRepAdr: c.smRepAdr,
		SMVolume: c.smVolume, SMRepCount: c.smRepCount, SMBigEndian: c.smBigEndian,
	}
	for i := range c.voices {
		v := &c.voices[i]
		s.Voices[i] = voiceState{
			Wave: v.wave, EGState: v.egState, Count: v.count, Add: v.add,
			Freq: v.freq, PW: v.pw, AAdd: v.aAdd, DSub: v.dSub, SLevel: v.sLevel,
			RSub: v.rSub, EGLevel: v.egLevel, Noise: v.noise,
			Gate: v.gate, Ring: v.ring, Test: v.test, Filter: v.filter, Sync: v.sync, Mute: v.mute,
		}
	}
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(s)
	return buf.Bytes()
}

// LoadState restores a snapshot written by SaveState.
func (c *Chip) LoadState(data []byte) error {
	var s chipState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return err
	}
	c.regs = s.Regs
	c.lastWrittenByte = s.LastWritten
	c.volume = s.Volume
	c.filter.fType, c.filter.fFreq, c.filter.fRes = s.FType, s.FFreq, s.FRes
	c.filter.xn1L, c.filter.xn2L, c.filter.yn1L, c.filter.yn2L = s.FilterXn1L, s.FilterXn2L, s.FilterYn1L, s.FilterYn2L
	c.filter.xn1R, c.filter.xn2R, c.filter.yn1R, c.filter.yn2R = s.FilterXn1R, s.FilterXn2R, s.FilterYn1R, s.FilterYn2R
	c.v4State, c.v4Count, c.v4Add = s.V4State, s.V4Count, s.V4Add
	c.smAdr, c.smEndAdr, c.smRepAdr = s.SMAdr, s.SMEndAdr, s.SMRepAdr
	c.smVolume, c.smRepCount, c.smBigEndian = s.SMVolume, s.SMRepCount, s.SMBigEndian
	for i := range c.voices {
		v := &c.voices[i]
		vs := s.Voices[i]
		v.wave, v.egState, v.count, v.add = vs.Wave, vs.EGState, vs.Count, vs.Add
		v.freq, v.pw = vs.Freq, vs.PW
		v.aAdd, v.dSub, v.sLevel, v.rSub, v.egLevel = vs.AAdd, vs.DSub, vs.SLevel, vs.RSub, vs.EGLevel
		v.noise = vs.Noise
		v.gate, v.ring, v.test, v.filter, v.sync, v.mute = vs.Gate, vs.Ring, vs.Test, vs.Filter, vs.Sync, vs.Mute
	}
	if c.enableFilters {
		c.filter.recalc(c.sampleRateHint())
	}
	return nil
}
