package ui

import (
	"encoding/binary"

	"github.com/sidplayer/sidplayer/internal/driver"
)

// loopStream implements io.Reader by advancing a driver.Loop by exactly
// as many frames as the audio backend asked for and converting them to
// 16-bit little-endian frames, folding to mono when the player is
// configured for it. Unlike the teacher's apuStream, there is no
// separate emulation goroutine to race against: advancing the loop IS
// generating the requested audio. Read always reports len(p) bytes:
// a buffer shorter than one frame, and any frames the loop did not
// deliver, are filled with silence.
type loopStream struct {
	loop *driver.Loop
	mono bool
}

func (s *loopStream) Read(p []byte) (int, error) {
	if len(p) < 4 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	frames := len(p) / 4
	s.loop.Advance(frames)
	samples := s.loop.PullStereo(frames)

	i := 0
	for j := 0; j+1 < len(samples) && i+3 < len(p); j += 2 {
		l := samples[j]
		r := samples[j+1]
		if s.mono {
			m := int16((int32(l) + int32(r)) / 2)
			binary.LittleEndian.PutUint16(p[i:], uint16(m))
			binary.LittleEndian.PutUint16(p[i+2:], uint16(m))
		} else {
			binary.LittleEndian.PutUint16(p[i:], uint16(l))
			binary.LittleEndian.PutUint16(p[i+2:], uint16(r))
		}
		i += 4
	}
	for ; i+3 < len(p); i += 4 {
		binary.LittleEndian.PutUint16(p[i:], 0)
		binary.LittleEndian.PutUint16(p[i+2:], 0)
	}
	return len(p), nil
}
