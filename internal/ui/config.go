package ui

// Config holds the small set of knobs the ebiten audio backend itself
// needs — sample rate, channel layout, and buffering — as distinct from
// the domain playback preferences (SID model, filters, gains, ...)
// that live in internal/prefs.
type Config struct {
	SampleRate      int  // output sample rate in Hz
	Stereo          bool // false folds both channels to mono
	BufferMs        int  // ebiten audio.Player internal buffer target
	LowLatency      bool // shrink BufferMs for tighter seeking/scrubbing
}

// Defaults fills unset fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.SampleRate <= 0 {
		c.SampleRate = 44100
	}
	if c.BufferMs <= 0 {
		c.BufferMs = 60
	}
}
