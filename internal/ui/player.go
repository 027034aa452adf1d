// Package ui wires a driver.Loop into ebiten's audio backend so a
// headless player can push PCM to the system's audio device without
// owning a window or game loop.
package ui

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/sidplayer/sidplayer/internal/driver"
)

// Player drives one ebiten audio.Player fed by a loopStream wrapped
// around a driver.Loop.
type Player struct {
	cfg    Config
	ctx    *audio.Context
	player *audio.Player
	stream *loopStream
}

// NewPlayer builds an ebiten audio context sized to cfg.SampleRate and
// creates a player pulling PCM from loop; playback begins with Play.
func NewPlayer(cfg Config, loop *driver.Loop) (*Player, error) {
	cfg.Defaults()

	ctx := audio.NewContext(cfg.SampleRate)
	stream := &loopStream{loop: loop, mono: !cfg.Stereo}
	p, err := ctx.NewPlayer(stream)
	if err != nil {
		return nil, fmt.Errorf("ui: creating audio player: %w", err)
	}

	player := &Player{cfg: cfg, ctx: ctx, player: p, stream: stream}
	player.applyBufferSize()
	return player, nil
}

// applyBufferSize sets the audio player's internal buffer size,
// shrinking it when low-latency mode is requested.
func (pl *Player) applyBufferSize() {
	bufMs := pl.cfg.BufferMs
	if pl.cfg.LowLatency {
		bufMs = 20
	}
	pl.player.SetBufferSize(time.Duration(bufMs) * time.Millisecond)
}

// Play starts audible playback.
func (pl *Player) Play() { pl.player.Play() }

// IsPlaying reports whether the underlying ebiten player is running.
func (pl *Player) IsPlaying() bool { return pl.player.IsPlaying() }

// Pause stops pulling samples without releasing the device.
func (pl *Player) Pause() { pl.player.Pause() }

// Close releases the audio player; the audio context is left open.
func (pl *Player) Close() error {
	return pl.player.Close()
}
