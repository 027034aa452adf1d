package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/sidplayer/sidplayer/internal/driver"
	"github.com/sidplayer/sidplayer/internal/prefs"
	"github.com/sidplayer/sidplayer/internal/psid"
	"github.com/sidplayer/sidplayer/internal/sid"
	"github.com/sidplayer/sidplayer/internal/state"
	"github.com/sidplayer/sidplayer/internal/ui"
	"github.com/sidplayer/sidplayer/internal/wavdump"
)

type cliFlags struct {
	SIDPath string
	Song    int
	List    bool

	Frames   int
	WavOut   string
	Headless bool
	Expect   string

	LoadSlot int
	SaveSlot int

	SIDType     string
	SampleRate  int
	Audio16Bit  bool
	Stereo      bool
	Filters     bool
	DualSID     bool
	AudioEffect string
	RevDelay    int
	RevFeedback float64
	Volume      int
	V1Volume    int
	V2Volume    int
	V3Volume    int
	V4Volume    int
	V1Pan       int
	V2Pan       int
	V3Pan       int
	V4Pan       int
	DualSep     int
	VicType     string
	Speed       int
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.SIDPath, "sid", "", "path to a PSID music file")
	flag.IntVar(&f.Song, "song", 0, "1-based subsong to play (0 = file's default)")
	flag.BoolVar(&f.List, "list", false, "print the file's header and subsong count, then exit")

	flag.IntVar(&f.Frames, "frames", 0, "stereo frames to render (0 = use the default duration)")
	flag.StringVar(&f.WavOut, "wav", "", "write rendered PCM to path as a RIFF/WAVE file")
	flag.BoolVar(&f.Headless, "headless", false, "render --frames offline instead of opening an audio device")
	flag.StringVar(&f.Expect, "expect", "", "assert the rendered PCM's CRC32 (hex, headless only)")

	flag.IntVar(&f.LoadSlot, "loadstate", -1, "resume from savestate slot N instead of running init")
	flag.IntVar(&f.SaveSlot, "savestate", -1, "write a savestate to slot N on exit")

	flag.StringVar(&f.SIDType, "sidtype", "6581", "SID model: 6581 or 8580")
	flag.IntVar(&f.SampleRate, "samplerate", 44100, "output sample rate in Hz")
	flag.BoolVar(&f.Audio16Bit, "audio16bit", true, "16-bit PCM (always true; flag kept for parity with the preference table)")
	flag.BoolVar(&f.Stereo, "stereo", true, "stereo output (false folds to mono)")
	flag.BoolVar(&f.Filters, "filters", true, "enable the SID analog filter emulation")
	flag.BoolVar(&f.DualSID, "dualsid", false, "emulate a second SID chip at $D500")
	flag.StringVar(&f.AudioEffect, "audioeffect", "none", "post-mix effect: none, reverb, or spatial")
	flag.IntVar(&f.RevDelay, "revdelay", 750, "effect feedback delay in milliseconds")
	flag.Float64Var(&f.RevFeedback, "revfeedback", 0.5, "effect feedback gain, 0-1")
	flag.IntVar(&f.Volume, "volume", 255, "master volume, 0-255")
	flag.IntVar(&f.V1Volume, "v1volume", 255, "voice 1 volume, 0-255")
	flag.IntVar(&f.V2Volume, "v2volume", 255, "voice 2 volume, 0-255")
	flag.IntVar(&f.V3Volume, "v3volume", 255, "voice 3 volume, 0-255")
	flag.IntVar(&f.V4Volume, "v4volume", 255, "voice 4 (digi/sample) volume, 0-255")
	flag.IntVar(&f.V1Pan, "v1pan", 0, "voice 1 pan, -255..255")
	flag.IntVar(&f.V2Pan, "v2pan", 0, "voice 2 pan, -255..255")
	flag.IntVar(&f.V3Pan, "v3pan", 0, "voice 3 pan, -255..255")
	flag.IntVar(&f.V4Pan, "v4pan", 0, "voice 4 pan, -255..255")
	flag.IntVar(&f.DualSep, "dualsep", 0, "stereo separation offset applied between the two SID chips")
	flag.StringVar(&f.VicType, "victype", "PAL", "video standard: PAL, NTSC, or NTSC_OLD")
	flag.IntVar(&f.Speed, "speed", 100, "playback speed percentage")

	flag.Parse()
	if f.SIDPath == "" && flag.NArg() > 0 {
		f.SIDPath = flag.Arg(0)
	}
	return f
}

func mustRead(path string) []byte {
	b, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	return b
}

func applyFlags(sess *prefs.Session, f cliFlags) {
	sess.Set("sidtype", f.SIDType)
	sess.Set("samplerate", f.SampleRate)
	sess.Set("audio16bit", f.Audio16Bit)
	sess.Set("stereo", f.Stereo)
	sess.Set("filters", f.Filters)
	sess.Set("dualsid", f.DualSID)
	sess.Set("audioeffect", f.AudioEffect)
	sess.Set("revdelay", f.RevDelay)
	sess.Set("revfeedback", f.RevFeedback)
	sess.Set("volume", f.Volume)
	sess.Set("v1volume", f.V1Volume)
	sess.Set("v2volume", f.V2Volume)
	sess.Set("v3volume", f.V3Volume)
	sess.Set("v4volume", f.V4Volume)
	sess.Set("v1pan", f.V1Pan)
	sess.Set("v2pan", f.V2Pan)
	sess.Set("v3pan", f.V3Pan)
	sess.Set("v4pan", f.V4Pan)
	sess.Set("dualsep", f.DualSep)
	sess.Set("victype", f.VicType)
	sess.Set("speed", f.Speed)
}

func sidModel(s string) sid.Model {
	if s == "8580" {
		return sid.Model8580
	}
	return sid.Model6581
}

func videoStandard(s string) driver.VideoStandard {
	switch strings.ToUpper(s) {
	case "NTSC":
		return driver.NTSC
	case "NTSC_OLD":
		return driver.NTSCOld
	default:
		return driver.PAL
	}
}

func runHeadless(loop *driver.Loop, sampleRate, frames int, wavOut, expectCRC string) error {
	if frames <= 0 {
		frames = 44100 * 3
	}

	start := time.Now()
	samples := make([]int16, 0, frames*2)
	for left := frames; left > 0; {
		n := left
		if n > 4096 {
			n = 4096 // stay well below the loop's output ring capacity
		}
		loop.Advance(n)
		samples = append(samples, loop.PullStereo(n)...)
		left -= n
	}
	dur := time.Since(start)

	crc := wavdump.Checksum(samples)
	log.Printf("headless: frames=%d elapsed=%s pcm_crc32=%08x", frames, dur.Truncate(time.Millisecond), crc)

	if wavOut != "" {
		if err := wavdump.WriteFile(wavOut, sampleRate, true, samples); err != nil {
			return fmt.Errorf("write wav: %w", err)
		}
		log.Printf("wrote %s", wavOut)
	}

	if expectCRC != "" {
		want := strings.TrimPrefix(strings.ToLower(expectCRC), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func main() {
	f := parseFlags()
	if f.SIDPath == "" {
		log.Fatal("missing <file.sid> (positional or -sid)")
	}

	raw := mustRead(f.SIDPath)
	header, err := psid.ParseHeader(raw)
	if err != nil {
		log.Fatalf("parse %s: %v", f.SIDPath, err)
	}

	if f.List {
		fmt.Printf("%q by %q (%s)\n", header.Name, header.Author, header.Copyright)
		fmt.Printf("songs: %d, default: %d\n", header.SongCount, header.DefaultSong)
		return
	}

	song, err := psid.Load(header, raw)
	if err != nil {
		log.Fatalf("load %s: %v", f.SIDPath, err)
	}

	subsong := song.DefaultSubsong()
	if f.Song > 0 {
		subsong = f.Song - 1
	}

	loop := driver.New(sidModel(f.SIDType), f.DualSID, videoStandard(f.VicType), f.SampleRate)
	sess := prefs.NewSession(loop)
	applyFlags(sess, f)

	if f.LoadSlot >= 0 {
		path := state.SlotPath(f.SIDPath, f.LoadSlot)
		if err := state.LoadFromFile(loop, path); err != nil {
			log.Fatalf("load savestate: %v", err)
		}
		log.Printf("resumed from %s", path)
	} else {
		psid.Place(loop, song, subsong)
		log.Printf("playing %q subsong %d/%d at %d Hz", header.Name, subsong+1, header.SongCount, song.SpeedHz(subsong))
	}

	if f.Headless {
		if err := runHeadless(loop, f.SampleRate, f.Frames, f.WavOut, f.Expect); err != nil {
			log.Fatal(err)
		}
	} else {
		player, err := ui.NewPlayer(ui.Config{SampleRate: f.SampleRate, Stereo: f.Stereo}, loop)
		if err != nil {
			log.Fatalf("open audio: %v", err)
		}
		player.Play()

		frames := f.Frames
		if frames <= 0 {
			frames = f.SampleRate * 180 // default: render up to 3 minutes
		}
		runDuration := time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
		time.Sleep(runDuration)
		player.Close()
	}

	if f.SaveSlot >= 0 {
		path := state.SlotPath(f.SIDPath, f.SaveSlot)
		if err := state.SaveToFile(loop, path); err != nil {
			log.Fatalf("save savestate: %v", err)
		}
		log.Printf("wrote %s", path)
	}
}
