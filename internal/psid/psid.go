// Package psid parses PSID music files and wires a parsed song into a
// driver.Loop, the way main.cpp's LoadPSIDFile/SelectSong pair does in
// the reference player.
package psid

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	minHeaderLength = 118 // version 1
	maxHeaderLength = 124 // version 2

	offsetID        = 0
	offsetVersion   = 4
	offsetLength    = 6
	offsetStart     = 8
	offsetInit      = 10
	offsetMain      = 12
	offsetNumber    = 14
	offsetDefSong   = 16
	offsetSpeed     = 18
	offsetName      = 22
	offsetAuthor    = 54
	offsetCopyright = 86
	offsetFlags     = 118

	magic = 0x50534944 // "PSID"
)

// Header holds the decoded fields of a PSID file header, field offsets
// and widths taken directly from psid.h.
type Header struct {
	Version      uint16
	DataOffset   uint16
	LoadAddress  uint16
	InitAddress  uint16
	PlayAddress  uint16
	SongCount    uint16
	DefaultSong  uint16
	SpeedFlags   uint32
	Name         string
	Author       string
	Copyright    string
	Flags        uint16
}

// ErrNotPSID is returned by ParseHeader when the file lacks the 'PSID'
// magic or carries an unsupported version.
var ErrNotPSID = fmt.Errorf("psid: not a PSID file")

// ParseHeader decodes a PSID header from the start of data, matching
// IsPSIDHeader's signature/version check and LoadPSIDFile's field
// extraction.
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < minHeaderLength {
		return nil, ErrNotPSID
	}
	id := binary.BigEndian.Uint32(data[offsetID:])
	version := binary.BigEndian.Uint16(data[offsetVersion:])
	if id != magic || (version != 1 && version != 2) {
		return nil, ErrNotPSID
	}

	h := &Header{
		Version:     version,
		DataOffset:  binary.BigEndian.Uint16(data[offsetLength:]),
		LoadAddress: binary.BigEndian.Uint16(data[offsetStart:]),
		InitAddress: binary.BigEndian.Uint16(data[offsetInit:]),
		PlayAddress: binary.BigEndian.Uint16(data[offsetMain:]),
		SongCount:   binary.BigEndian.Uint16(data[offsetNumber:]),
		DefaultSong: binary.BigEndian.Uint16(data[offsetDefSong:]),
		SpeedFlags:  binary.BigEndian.Uint32(data[offsetSpeed:]),
		Name:        cString(data[offsetName : offsetName+32]),
		Author:      cString(data[offsetAuthor : offsetAuthor+32]),
		Copyright:   cString(data[offsetCopyright : offsetCopyright+32]),
	}
	if h.SongCount == 0 {
		h.SongCount = 1
	}
	if version == 2 && len(data) >= maxHeaderLength {
		h.Flags = binary.BigEndian.Uint16(data[offsetFlags:])
	}
	return h, nil
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// Song is a fully resolved PSID tune: the C64 program image and every
// address/flag the replay loop needs to run it.
type Song struct {
	Header *Header

	LoadAddress uint16
	InitAddress uint16
	PlayAddress uint16
	PlayFromIRQ bool

	Data []byte // program image, to be placed at LoadAddress
}

// Load resolves a parsed Header plus the full file bytes into a Song,
// following LoadPSIDFile's "load address at start of data when the
// header's own field is zero" and "init address defaults to load
// address" rules (DESIGN.md open question 2).
func Load(h *Header, data []byte) (*Song, error) {
	offset := int(h.DataOffset)
	if offset == 0 {
		offset = minHeaderLength
	}
	if offset > len(data) {
		return nil, fmt.Errorf("psid: data offset %d beyond file length %d", offset, len(data))
	}
	body := data[offset:]

	loadAddr := h.LoadAddress
	if loadAddr == 0 {
		if len(body) < 2 {
			return nil, fmt.Errorf("psid: no load address and no leading address bytes")
		}
		loadAddr = uint16(body[0]) | uint16(body[1])<<8
		body = body[2:]
	}

	initAddr := h.InitAddress
	if initAddr == 0 {
		initAddr = loadAddr
	}

	return &Song{
		Header:      h,
		LoadAddress: loadAddr,
		InitAddress: initAddr,
		PlayAddress: h.PlayAddress,
		PlayFromIRQ: h.PlayAddress == 0,
		Data:        body,
	}, nil
}

// SpeedHz reports the replay rate for subsong n (0-based), following
// SelectSong's "bit set means 60 Hz, otherwise 50 Hz, only for the
// first 32 subsongs" rule.
func (s *Song) SpeedHz(subsong int) int {
	if subsong >= 32 {
		return 50
	}
	if s.Header.SpeedFlags&(1<<uint(subsong)) != 0 {
		return 60
	}
	return 50
}

// DefaultSubsong returns the 0-based default subsong index, clamped
// into range, matching SelectSong's current_song-- / bounds check.
func (s *Song) DefaultSubsong() int {
	n := int(s.Header.DefaultSong)
	if n > 0 {
		n--
	}
	if n < 0 || n >= int(s.Header.SongCount) {
		n = 0
	}
	return n
}
