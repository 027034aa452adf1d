// Package driver runs the per-sample replay loop that interleaves 6510
// play-routine execution with SID clocking, the way calc_buffer does in
// the reference player: the CPU is only run when the CIA timer-A latch
// says a replay interrupt is due, and every other frame just advances
// the SID oscillators and mixes their output.
package driver

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/sidplayer/sidplayer/internal/cpu"
	"github.com/sidplayer/sidplayer/internal/mem"
	"github.com/sidplayer/sidplayer/internal/sid"
)

// VideoStandard selects the C64 system clock the replay routine is timed
// against, set from the "victype" preference (CLI flag --victype).
type VideoStandard int

const (
	PAL VideoStandard = iota
	NTSC
	NTSCOld
)

// Clock returns the CPU clock frequency in Hz for the video standard,
// matching set_cycles_per_second's three cases (6569/PAL, the early
// 6567R5 NTSC board, and the common 6567R8 NTSC board).
func (v VideoStandard) Clock() float64 {
	switch v {
	case NTSC:
		return 1022727.143
	case NTSCOld:
		return 1000000.0
	default:
		return 985248.444
	}
}

// AudioEffect selects the post-processing stage applied after mixing,
// both built from the same single-tap feedback delay line as the
// original but wired to add (reverb) or subtract (spatial) on the right
// channel.
type AudioEffect int

const (
	EffectNone AudioEffect = iota
	EffectReverb
	EffectSpatial
)

const workBufferSize = 0x10000

// Loop owns one replay session: CPU, one or two SID chips, the C64
// memory image, and the audio-effect work buffer. Advance pulls the
// whole chain forward by a requested number of stereo output frames.
type Loop struct {
	bus  *mem.Bus
	cpu  *cpu.CPU
	sid1 *sid.Chip
	sid2 *sid.Chip

	dualSID      bool
	playAddr     uint16
	playFromIRQ  bool

	video           VideoStandard
	sampleRate      int
	speedAdjust     int32 // percent, 100 = normal speed
	ciaTimerLatch   uint16
	replayCount     int
	maxCPUCycles    uint32

	effect       AudioEffect
	revFeedback  int32
	workBuffer   []int16
	wbRead       int
	wbWrite      int

	outL, outR []int16
	outHead    int
	outTail    int
}

// New builds a Loop over a fresh bus/CPU and one or two SID chips (dual
// is false for a mono-SID setup). sampleRate and video pick the replay
// timing; the percent-speed override starts at 100.
func New(model sid.Model, dual bool, video VideoStandard, sampleRate int) *Loop {
	bus := mem.New()
	sid1 := sid.New(0, model)
	var sid2 *sid.Chip
	if dual {
		sid2 = sid.New(1, model)
	}

	l := &Loop{
		bus:          bus,
		cpu:          cpu.New(bus),
		sid1:         sid1,
		sid2:         sid2,
		dualSID:      dual,
		video:        video,
		sampleRate:   sampleRate,
		speedAdjust:  100,
		maxCPUCycles: 1000000,
		workBuffer:   make([]int16, workBufferSize),
		outL:         make([]int16, 65536),
		outR:         make([]int16, 65536),
	}
	bus.AttachCIA(l)
	sid1.AttachRAM(bus.RAM())
	if sid2 != nil {
		sid2.AttachRAM(bus.RAM())
	}
	if dual {
		bus.AttachSID(sid1, sid2)
	} else {
		bus.AttachSID(sid1, nil)
	}
	l.applyClock()
	return l
}

// Bus exposes the memory map so the PSID loader can place the program
// image and the CPU can be started at the init address.
func (l *Loop) Bus() *mem.Bus { return l.bus }

// CPU exposes the 6510 core so callers can run the PSID init routine
// directly (outside the per-sample replay loop, which only calls the
// play routine).
func (l *Loop) CPU() *cpu.CPU { return l.cpu }

// SID1/SID2 expose the chips for direct register-level testing and for
// wiring preference-driven gain/filter/model changes.
func (l *Loop) SID1() *sid.Chip { return l.sid1 }
func (l *Loop) SID2() *sid.Chip { return l.sid2 }

// SetPlayAddress records where the replay loop should call into the
// 6510 program each time the CIA timer-A latch says a frame is due.
func (l *Loop) SetPlayAddress(addr uint16) { l.playAddr = addr }

// SetPlayFromIRQVector marks the play address as unknown until runtime,
// set for PSID headers whose main-routine field is zero: such tunes
// install their own IRQ handler, so the replay loop must re-read the
// play address from the KERNAL IRQ vector (or its RAM-banked copy)
// before every call, matching UpdatePlayAdr.
func (l *Loop) SetPlayFromIRQVector(on bool) { l.playFromIRQ = on }

func (l *Loop) updatePlayAddrFromIRQVector() {
	if !l.playFromIRQ {
		return
	}
	ram := l.bus.RAM()
	if ram[1]&2 != 0 {
		l.playAddr = uint16(ram[0x0315])<<8 | uint16(ram[0x0314])
	} else {
		l.playAddr = uint16(ram[0xffff])<<8 | uint16(ram[0xfffe])
	}
}

// SetSpeedAdjust overrides the replay rate by a percentage, matching
// SIDAdjustSpeed; 100 is unmodified.
func (l *Loop) SetSpeedAdjust(percent int32) {
	if percent <= 0 {
		percent = 100
	}
	l.speedAdjust = percent
}

// SetVideoStandard switches the system clock the replay rate and SID
// oscillators are timed against, recomputing everything that depends on
// it the way SIDClockFreqChanged does after a victype preference change.
func (l *Loop) SetVideoStandard(v VideoStandard) {
	l.video = v
	l.applyClock()
}

// SetSampleRate changes the output sample rate, again recomputing the
// SID clock-to-sample ratio and envelope table.
func (l *Loop) SetSampleRate(rate int) {
	if rate <= 0 {
		rate = 44100
	}
	l.sampleRate = rate
	l.applyClock()
}

func (l *Loop) applyClock() {
	clock := l.video.Clock()
	l.sid1.SetClock(clock, l.sampleRate)
	if l.sid2 != nil {
		l.sid2.SetClock(clock, l.sampleRate)
	}
}

// SetAudioEffect selects the post-mix reverb/spatial stage and its
// feedback amount (0-255), matching prefs_audioeffect_changed /
// prefs_revfeedback_changed.
func (l *Loop) SetAudioEffect(effect AudioEffect, feedback int32) {
	l.effect = effect
	l.revFeedback = feedback
}

// SetReverbDelayMs sets the feedback tap's delay distance in
// milliseconds, matching set_rev_delay's conversion to a frame count.
func (l *Loop) SetReverbDelayMs(ms int32) {
	delay := int(ms) * l.sampleRate / 1000
	delay &^= 1
	if delay == 0 {
		delay = 2
	}
	l.wbRead = (l.wbWrite - delay) & (workBufferSize - 1)
}

// SetReplayFrequencyHz sets the CIA timer-A latch directly from a
// target replay rate, matching SIDSetReplayFreq. The PSID loader calls
// this once per song select from the header's speed flags (50 or 60
// Hz) rather than waiting for the 6510 program to program the timer
// itself, since most PSIDs never touch the CIA at all.
func (l *Loop) SetReplayFrequencyHz(freq int) {
	if freq <= 0 {
		freq = 50
	}
	clock := uint32(l.video.Clock())
	l.ciaTimerLatch = uint16(clock/uint32(freq) - 1)
}

// WriteTimerLo/WriteTimerHi implement mem.CIATimer: the replay routine
// programs the CIA timer-A latch to set its own interrupt frequency.
func (l *Loop) WriteTimerLo(v byte) { l.ciaTimerLatch = (l.ciaTimerLatch & 0xff00) | uint16(v) }
func (l *Loop) WriteTimerHi(v byte) {
	l.ciaTimerLatch = (l.ciaTimerLatch & 0x00ff) | (uint16(v) << 8)
}

// replayLimit is the number of output samples between play-routine
// calls, derived from the CIA timer-A latch and the speed-percent
// override, following calc_buffer's replay_limit expression.
func (l *Loop) replayLimit() uint32 {
	clock := uint32(l.video.Clock())
	rateDiv := clock / (uint32(l.ciaTimerLatch) + 1)
	denom := rateDiv * uint32(l.speedAdjust)
	if denom == 0 {
		return uint32(l.sampleRate)
	}
	limit := (uint32(l.sampleRate) * 100) / denom
	if limit == 0 {
		limit = 1
	}
	return limit
}

// Advance runs the replay loop forward by n stereo output frames,
// executing the 6510 play routine whenever the CIA replay interval has
// elapsed and otherwise just clocking both SIDs, mirroring calc_buffer's
// per-sample loop.
func (l *Loop) Advance(n int) {
	limit := l.replayLimit()
	for i := 0; i < n; i++ {
		l.replayCount++
		if uint32(l.replayCount) >= limit {
			l.replayCount = 0
			l.updatePlayAddrFromIRQVector()
			if l.playAddr != 0 {
				l.cpu.Execute(l.playAddr, 0, 0, 0, l.maxCPUCycles)
			}
			limit = l.replayLimit()
		}

		left, right := l.sid1.Sample()
		if l.dualSID && l.sid2 != nil {
			dl, dr := l.sid2.Sample()
			left += dl
			right += dr
		}

		left, right = l.postFX(left, right)
		l.pushStereo(clipInt16(left), clipInt16(right))
	}
}

func (l *Loop) postFX(left, right int32) (int32, int32) {
	if l.effect == EffectNone {
		return left >> 10, right >> 10
	}
	left >>= 11
	right >>= 11
	switch l.effect {
	case EffectReverb:
		left += (l.revFeedback * int32(l.workBuffer[l.wbRead])) >> 8
		l.workBuffer[l.wbWrite] = int16(left)
		right += (l.revFeedback * int32(l.workBuffer[(l.wbRead+1)&(workBufferSize-1)])) >> 8
		l.workBuffer[(l.wbWrite+1)&(workBufferSize-1)] = int16(right)
	case EffectSpatial:
		left += (l.revFeedback * int32(l.workBuffer[l.wbRead])) >> 8
		l.workBuffer[l.wbWrite] = int16(left)
		right -= (l.revFeedback * int32(l.workBuffer[(l.wbRead+1)&(workBufferSize-1)])) >> 8
		l.workBuffer[(l.wbWrite+1)&(workBufferSize-1)] = int16(right)
	}
	l.wbRead = (l.wbRead + 2) & (workBufferSize - 1)
	l.wbWrite = (l.wbWrite + 2) & (workBufferSize - 1)
	return left, right
}

func clipInt16(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

func (l *Loop) pushStereo(left, right int16) {
	next := (l.outHead + 1) & (len(l.outL) - 1)
	if next == l.outTail {
		return // ring buffer full: drop rather than block the replay loop
	}
	l.outL[l.outHead] = left
	l.outR[l.outHead] = right
	l.outHead = next
}

// PullStereo drains up to max interleaved stereo frames ([L0,R0,L1,R1,...])
// from the output ring buffer.
func (l *Loop) PullStereo(max int) []int16 {
	if max <= 0 || l.outHead == l.outTail {
		return nil
	}
	count := 0
	for i := l.outTail; i != l.outHead && count < max; i = (i + 1) & (len(l.outL) - 1) {
		count++
	}
	out := make([]int16, 0, count*2)
	for i := 0; i < count; i++ {
		out = append(out, l.outL[l.outTail], l.outR[l.outTail])
		l.outTail = (l.outTail + 1) & (len(l.outL) - 1)
	}
	return out
}

// StereoAvailable reports how many buffered stereo frames are ready.
func (l *Loop) StereoAvailable() int {
	if l.outHead == l.outTail {
		return 0
	}
	if l.outHead >= l.outTail {
		return l.outHead - l.outTail
	}
	return (len(l.outL) - l.outTail) + l.outHead
}

// loopState is the gob mirror of everything Advance needs to resume
// mid-song: CPU registers are deliberately excluded, since Execute
// reinitializes them on every call and they carry no state between
// replay ticks.
type loopState struct {
	PlayAddr      uint16
	PlayFromIRQ   bool
	Video         VideoStandard
	SampleRate    int
	SpeedAdjust   int32
	CIATimerLatch uint16
	ReplayCount   int
	Effect        AudioEffect
	RevFeedback   int32
	WorkBuffer    []int16
	WBRead        int
	WBWrite       int
}

// SaveState gob-encodes the bus RAM, both SID chips, and the loop's own
// replay-timing fields as a sequence of length-prefixed blobs, mirroring
// the teacher's bus.go composition of its own state plus its PPU/cart
// sub-blobs.
func (l *Loop) SaveState() []byte {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	_ = enc.Encode(l.bus.SaveState())
	_ = enc.Encode(l.sid1.SaveState())
	if l.sid2 != nil {
		_ = enc.Encode(l.sid2.SaveState())
	} else {
		_ = enc.Encode([]byte(nil))
	}
	_ = enc.Encode(loopState{
		PlayAddr: l.playAddr, PlayFromIRQ: l.playFromIRQ,
		Video: l.video, SampleRate: l.sampleRate, SpeedAdjust: l.speedAdjust,
		CIATimerLatch: l.ciaTimerLatch, ReplayCount: l.replayCount,
		Effect: l.effect, RevFeedback: l.revFeedback,
		WorkBuffer: l.workBuffer, WBRead: l.wbRead, WBWrite: l.wbWrite,
	})
	return buf.Bytes()
}

// LoadState restores a blob produced by SaveState. The output ring
// buffer is left empty rather than restored, since buffered-but-not-yet
// played audio has no meaning once the producing state has moved.
func (l *Loop) LoadState(data []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(data))

	var ramBlob, sid1Blob, sid2Blob []byte
	if err := dec.Decode(&ramBlob); err != nil {
		return fmt.Errorf("driver: decoding RAM blob: %w", err)
	}
	if err := dec.Decode(&sid1Blob); err != nil {
		return fmt.Errorf("driver: decoding SID1 blob: %w", err)
	}
	if err := dec.Decode(&sid2Blob); err != nil {
		return fmt.Errorf("driver: decoding SID2 blob: %w", err)
	}
	var ls loopState
	if err := dec.Decode(&ls); err != nil {
		return fmt.Errorf("driver: decoding loop state: %w", err)
	}

	if err := l.bus.LoadState(ramBlob); err != nil {
		return err
	}
	if err := l.sid1.LoadState(sid1Blob); err != nil {
		return err
	}
	if l.sid2 != nil && len(sid2Blob) > 0 {
		if err := l.sid2.LoadState(sid2Blob); err != nil {
			return err
		}
	}

	l.playAddr, l.playFromIRQ = ls.PlayAddr, ls.PlayFromIRQ
	l.video, l.sampleRate, l.speedAdjust = ls.Video, ls.SampleRate, ls.SpeedAdjust
	l.ciaTimerLatch, l.replayCount = ls.CIATimerLatch, ls.ReplayCount
	l.effect, l.revFeedback = ls.Effect, ls.RevFeedback
	l.workBuffer, l.wbRead, l.wbWrite = ls.WorkBuffer, ls.WBRead, ls.WBWrite
	l.outHead, l.outTail = 0, 0
	return nil
}

// Reset clears RAM, both SIDs, and the replay-timing state for a fresh
// song load.
func (l *Loop) Reset() {
	l.bus.Reset()
	l.sid1.Reset()
	if l.sid2 != nil {
		l.sid2.Reset()
	}
	l.replayCount = 0
	l.ciaTimerLatch = 0
	l.outHead, l.outTail = 0, 0
	for i := range l.workBuffer {
		l.workBuffer[i] = 0
	}
}
