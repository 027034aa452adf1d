package psid

import "github.com/sidplayer/sidplayer/internal/driver"

// Place copies the song's program image into the loop's memory and
// configures the replay address/rate, mirroring LoadPSIDFile's RAM
// placement plus SelectSong's SIDReset/SIDSetReplayFreq/CPUExecute
// sequence for the given 0-based subsong.
func Place(l *driver.Loop, s *Song, subsong int) {
	l.Reset()
	l.Bus().LoadImage(s.LoadAddress, s.Data)

	l.SetReplayFrequencyHz(s.SpeedHz(subsong))
	l.SetSpeedAdjust(100)

	if s.PlayFromIRQ {
		l.SetPlayFromIRQVector(true)
	} else {
		l.SetPlayFromIRQVector(false)
		l.SetPlayAddress(s.PlayAddress)
	}

	l.CPU().Execute(s.InitAddress, byte(subsong), 0, 0, 1000000)
}
