// Package wavdump writes the rendered PCM stream to a standard RIFF/WAVE
// file, for the --wav CLI flag and for the headless checksum self-check
// the original implicitly got for free by redirecting raw PCM to a file.
// There is no stdlib WAV encoder, so the header is built directly with
// encoding/binary, the same way the teacher hand-rolls its PNG framebuffer
// dump in cmd/gbemu/main.go.
package wavdump

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
)

const (
	bitsPerSample = 16
	fmtPCM        = 1
)

// WriteFile writes interleaved 16-bit PCM samples (stereo: L,R,L,R,...;
// mono: one sample per frame) to path as a canonical RIFF/WAVE file.
func WriteFile(path string, sampleRate int, stereo bool, samples []int16) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wavdump: creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := Write(w, sampleRate, stereo, samples); err != nil {
		return err
	}
	return w.Flush()
}

// Write encodes samples as a RIFF/WAVE stream onto w.
func Write(w *bufio.Writer, sampleRate int, stereo bool, samples []int16) error {
	channels := 1
	if stereo {
		channels = 2
	}
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign
	dataSize := len(samples) * 2
	riffSize := 4 + (8 + 16) + (8 + dataSize)

	hdr := make([]byte, 0, 44)
	hdr = append(hdr, "RIFF"...)
	hdr = appendU32(hdr, uint32(riffSize))
	hdr = append(hdr, "WAVE"...)

	hdr = append(hdr, "fmt "...)
	hdr = appendU32(hdr, 16)
	hdr = appendU16(hdr, fmtPCM)
	hdr = appendU16(hdr, uint16(channels))
	hdr = appendU32(hdr, uint32(sampleRate))
	hdr = appendU32(hdr, uint32(byteRate))
	hdr = appendU16(hdr, uint16(blockAlign))
	hdr = appendU16(hdr, bitsPerSample)

	hdr = append(hdr, "data"...)
	hdr = appendU32(hdr, uint32(dataSize))

	if _, err := w.Write(hdr); err != nil {
		return fmt.Errorf("wavdump: writing header: %w", err)
	}

	var sampleBuf [2]byte
	for _, s := range samples {
		binary.LittleEndian.PutUint16(sampleBuf[:], uint16(s))
		if _, err := w.Write(sampleBuf[:]); err != nil {
			return fmt.Errorf("wavdump: writing samples: %w", err)
		}
	}
	return nil
}

func appendU32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendU16(b []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(b, tmp[:]...)
}

// Checksum returns the IEEE CRC32 of samples' little-endian byte
// representation, mirroring the teacher's crc32.ChecksumIEEE(fb)
// headless-test idiom but applied to rendered audio instead of a
// framebuffer.
func Checksum(samples []int16) uint32 {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return crc32.ChecksumIEEE(buf)
}
