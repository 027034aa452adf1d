package ui

import (
	"encoding/binary"
	"testing"

	"github.com/sidplayer/sidplayer/internal/driver"
	"github.com/sidplayer/sidplayer/internal/sid"
)

func newTestLoop(t *testing.T) *driver.Loop {
	t.Helper()
	l := driver.New(sid.Model6581, false, driver.PAL, 44100)
	l.Bus().Write(0xD400, 0x34)
	l.Bus().Write(0xD401, 0x12)
	l.Bus().Write(0xD404, 0x11)
	l.Bus().Write(0xD418, 0x0F)
	return l
}

func TestLoopStream_ReadFillsRequestedBytes(t *testing.T) {
	s := &loopStream{loop: newTestLoop(t)}
	buf := make([]byte, 4*100) // 100 stereo frames
	n, err := s.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("Read returned %d bytes, want %d", n, len(buf))
	}
}

func TestLoopStream_MonoFoldsChannels(t *testing.T) {
	s := &loopStream{loop: newTestLoop(t), mono: true}
	buf := make([]byte, 4*10)
	if _, err := s.Read(buf); err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i := 0; i < len(buf); i += 4 {
		l := binary.LittleEndian.Uint16(buf[i:])
		r := binary.LittleEndian.Uint16(buf[i+2:])
		if l != r {
			t.Fatalf("mono frame %d has mismatched channels: %d != %d", i/4, l, r)
		}
	}
}

func TestLoopStream_ShortBufferReturnsSilence(t *testing.T) {
	s := &loopStream{loop: newTestLoop(t)}
	buf := make([]byte, 2)
	n, err := s.Read(buf)
	if err != nil || n != 2 {
		t.Fatalf("Read(2 bytes) = %d, %v", n, err)
	}
	if buf[0] != 0 || buf[1] != 0 {
		t.Fatalf("short read did not return silence")
	}
}
