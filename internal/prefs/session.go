package prefs

import (
	"github.com/sidplayer/sidplayer/internal/driver"
	"github.com/sidplayer/sidplayer/internal/sid"
)

// Session owns a Store wired to a driver.Loop: every key in the
// playback preference table (SPEC_FULL.md §4.H) is registered, and all
// but audio16bit, stereo and dualsid have a callback that re-derives
// whatever cached state depends on it, the way
// SIDClockFreqChanged recomputes the SID clock tables after a
// "victype" change.
type Session struct {
	*Store
	loop *driver.Loop

	voiceVolume   [4]int32
	voicePanning  [4]int32
	panOffset     int32
}

// NewSession builds a Store with every §4.H key registered against the
// given loop and returns it wired and ready.
func NewSession(loop *driver.Loop) *Session {
	sess := &Session{
		Store: NewStore(),
		loop:  loop,
		voiceVolume: [4]int32{255, 255, 255, 255},
	}

	sess.Register("sidtype", "6581", func(_, new any) {
		loop.SID1().SetModel(modelOf(new.(string)))
		if loop.SID2() != nil {
			loop.SID2().SetModel(modelOf(new.(string)))
		}
	})
	sess.Register("samplerate", 44100, func(_, new any) {
		loop.SetSampleRate(new.(int))
	})
	sess.Register("audio16bit", true, nil) // the replay loop only ever emits 16-bit PCM
	sess.Register("stereo", true, nil)     // consumed by internal/ui's mono-fold, not the loop
	sess.Register("filters", true, func(_, new any) {
		loop.SID1().SetEnableFilters(new.(bool))
		if loop.SID2() != nil {
			loop.SID2().SetEnableFilters(new.(bool))
		}
	})
	sess.Register("dualsid", false, nil) // fixed at driver.New construction time
	sess.Register("audioeffect", "none", func(_, _ any) { sess.applyEffect() })
	sess.Register("revdelay", 750, func(_, new any) {
		loop.SetReverbDelayMs(int32(new.(int)))
	})
	sess.Register("revfeedback", 0.5, func(_, _ any) { sess.applyEffect() })
	sess.Register("volume", 255, func(_, new any) { sess.applyGains() })
	sess.Register("v1volume", 255, func(_, new any) { sess.voiceVolume[0] = int32(new.(int)); sess.applyGains() })
	sess.Register("v2volume", 255, func(_, new any) { sess.voiceVolume[1] = int32(new.(int)); sess.applyGains() })
	sess.Register("v3volume", 255, func(_, new any) { sess.voiceVolume[2] = int32(new.(int)); sess.applyGains() })
	sess.Register("v4volume", 255, func(_, new any) { sess.voiceVolume[3] = int32(new.(int)); sess.applyGains() })
	sess.Register("v1pan", 0, func(_, new any) { sess.voicePanning[0] = int32(new.(int)); sess.applyGains() })
	sess.Register("v2pan", 0, func(_, new any) { sess.voicePanning[1] = int32(new.(int)); sess.applyGains() })
	sess.Register("v3pan", 0, func(_, new any) { sess.voicePanning[2] = int32(new.(int)); sess.applyGains() })
	sess.Register("v4pan", 0, func(_, new any) { sess.voicePanning[3] = int32(new.(int)); sess.applyGains() })
	sess.Register("dualsep", 0, func(_, new any) { sess.panOffset = int32(new.(int)); sess.applyGains() })
	sess.Register("victype", "PAL", func(_, new any) {
		loop.SetVideoStandard(videoStandardOf(new.(string)))
	})
	sess.Register("speed", 100, func(_, new any) {
		loop.SetSpeedAdjust(int32(new.(int)))
	})

	sess.applyGains()
	loop.SID1().SetEnableFilters(sess.Bool("filters"))
	if loop.SID2() != nil {
		loop.SID2().SetEnableFilters(sess.Bool("filters"))
	}
	return sess
}

func modelOf(s string) sid.Model {
	if s == "8580" {
		return sid.Model8580
	}
	return sid.Model6581
}

func videoStandardOf(s string) driver.VideoStandard {
	switch s {
	case "NTSC":
		return driver.NTSC
	case "NTSC_OLD":
		return driver.NTSCOld
	default:
		return driver.PAL
	}
}

func audioEffectOf(s string) driver.AudioEffect {
	switch s {
	case "reverb":
		return driver.EffectReverb
	case "spatial":
		return driver.EffectSpatial
	default:
		return driver.EffectNone
	}
}

func (s *Session) applyEffect() {
	effect := audioEffectOf(s.String("audioeffect"))
	feedback := int32(s.Float("revfeedback") * 255)
	s.loop.SetAudioEffect(effect, feedback)
}

func (s *Session) applyGains() {
	master := int32(s.Int("volume"))
	s.loop.SID1().SetGains(master, s.voiceVolume, s.voicePanning, s.panOffset)
	if s.loop.SID2() != nil {
		s.loop.SID2().SetGains(master, s.voiceVolume, s.voicePanning, -s.panOffset)
	}
}
