package psid

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func buildHeader(version uint16, songs, defSong uint16, speedFlags uint32, loadAddr, initAddr, playAddr uint16) []byte {
	h := make([]byte, minHeaderLength)
	binary.BigEndian.PutUint32(h[offsetID:], magic)
	binary.BigEndian.PutUint16(h[offsetVersion:], version)
	binary.BigEndian.PutUint16(h[offsetLength:], minHeaderLength)
	binary.BigEndian.PutUint16(h[offsetStart:], loadAddr)
	binary.BigEndian.PutUint16(h[offsetInit:], initAddr)
	binary.BigEndian.PutUint16(h[offsetMain:], playAddr)
	binary.BigEndian.PutUint16(h[offsetNumber:], songs)
	binary.BigEndian.PutUint16(h[offsetDefSong:], defSong)
	binary.BigEndian.PutUint32(h[offsetSpeed:], speedFlags)
	copy(h[offsetName:], "Test Tune\x00")
	copy(h[offsetAuthor:], "Tester\x00")
	copy(h[offsetCopyright:], "1996 Tester\x00")
	return h
}

func TestParseHeader_RejectsNonPSID(t *testing.T) {
	data := bytes.Repeat([]byte{0}, minHeaderLength)
	if _, err := ParseHeader(data); err != ErrNotPSID {
		t.Fatalf("expected ErrNotPSID, got %v", err)
	}
}

func TestParseHeader_DecodesFields(t *testing.T) {
	data := buildHeader(2, 3, 2, 0x00000001, 0x1000, 0x1000, 0x1003)
	h, err := ParseHeader(data)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.SongCount != 3 || h.DefaultSong != 2 {
		t.Fatalf("song count/default = %d/%d, want 3/2", h.SongCount, h.DefaultSong)
	}
	if h.Name != "Test Tune" || h.Author != "Tester" {
		t.Fatalf("name/author = %q/%q", h.Name, h.Author)
	}
	if h.LoadAddress != 0x1000 || h.InitAddress != 0x1000 || h.PlayAddress != 0x1003 {
		t.Fatalf("addresses = %#04x/%#04x/%#04x", h.LoadAddress, h.InitAddress, h.PlayAddress)
	}
}

func TestLoad_ZeroLoadAddressUsesLeadingBytes(t *testing.T) {
	header := buildHeader(2, 1, 0, 0, 0, 0x1234, 0x1237)
	body := []byte{0x00, 0x20, 0xA9, 0x00, 0x60} // leading addr = 0x2000, then program
	file := append(append([]byte{}, header...), body...)

	h, err := ParseHeader(file)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	song, err := Load(h, file)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if song.LoadAddress != 0x2000 {
		t.Fatalf("load address = %#04x, want 0x2000", song.LoadAddress)
	}
	if len(song.Data) != 3 {
		t.Fatalf("song data length = %d, want 3 (leading address stripped)", len(song.Data))
	}
	if song.InitAddress != 0x1234 {
		t.Fatalf("init address = %#04x, want 0x1234", song.InitAddress)
	}
}

func TestLoad_ZeroInitAddressDefaultsToLoadAddress(t *testing.T) {
	header := buildHeader(2, 1, 0, 0, 0x4000, 0, 0x4003)
	file := append(append([]byte{}, header...), 0xA9, 0x00, 0x60)

	h, _ := ParseHeader(file)
	song, err := Load(h, file)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if song.InitAddress != 0x4000 {
		t.Fatalf("init address = %#04x, want load address 0x4000", song.InitAddress)
	}
}

func TestLoad_ZeroPlayAddressMarksIRQVector(t *testing.T) {
	header := buildHeader(2, 1, 0, 0, 0x4000, 0x4000, 0)
	file := append(append([]byte{}, header...), 0xA9, 0x00, 0x60)

	h, _ := ParseHeader(file)
	song, err := Load(h, file)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !song.PlayFromIRQ {
		t.Fatalf("expected PlayFromIRQ when header play address is zero")
	}
}

func TestSong_SpeedHzFollowsBitmask(t *testing.T) {
	header := buildHeader(2, 4, 0, 0b0101, 0x1000, 0x1000, 0x1003)
	file := append(append([]byte{}, header...), 0, 0)

	h, _ := ParseHeader(file)
	song, err := Load(h, file)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if song.SpeedHz(0) != 60 {
		t.Fatalf("subsong 0 speed = %d, want 60", song.SpeedHz(0))
	}
	if song.SpeedHz(1) != 50 {
		t.Fatalf("subsong 1 speed = %d, want 50", song.SpeedHz(1))
	}
	if song.SpeedHz(2) != 60 {
		t.Fatalf("subsong 2 speed = %d, want 60", song.SpeedHz(2))
	}
}

func TestSong_DefaultSubsongClampsAndZeroIndexes(t *testing.T) {
	header := buildHeader(2, 3, 2, 0, 0x1000, 0x1000, 0x1003)
	file := append(append([]byte{}, header...), 0, 0)
	h, _ := ParseHeader(file)
	song, _ := Load(h, file)
	if got := song.DefaultSubsong(); got != 1 {
		t.Fatalf("default subsong = %d, want 1 (0-based from header value 2)", got)
	}

	header2 := buildHeader(2, 2, 9, 0, 0x1000, 0x1000, 0x1003)
	file2 := append(append([]byte{}, header2...), 0, 0)
	h2, _ := ParseHeader(file2)
	song2, _ := Load(h2, file2)
	if got := song2.DefaultSubsong(); got != 0 {
		t.Fatalf("out-of-range default subsong = %d, want clamped to 0", got)
	}
}
