// Package state persists a driver.Loop's gob snapshot to disk, mirroring
// the teacher's per-ROM, per-slot savestate file convention
// (<name>.slot<N>.savestate) without depending on the driver package
// itself, so the save format stays decoupled from the replay engine.
package state

import (
	"fmt"
	"os"
	"path/filepath"
)

// Snapshotter is anything that can gob-encode/decode its own state, the
// shape both driver.Loop and sid.Chip already implement.
type Snapshotter interface {
	SaveState() []byte
	LoadState(data []byte) error
}

// SaveToFile writes s's snapshot to path.
func SaveToFile(s Snapshotter, path string) error {
	if err := os.WriteFile(path, s.SaveState(), 0o644); err != nil {
		return fmt.Errorf("state: writing %s: %w", path, err)
	}
	return nil
}

// LoadFromFile restores s's snapshot from path.
func LoadFromFile(s Snapshotter, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("state: reading %s: %w", path, err)
	}
	if err := s.LoadState(data); err != nil {
		return fmt.Errorf("state: restoring from %s: %w", path, err)
	}
	return nil
}

// SlotPath builds the savestate path for songPath's slot-numbered
// snapshot, matching the teacher's "<ROMName>.slot<N>.savestate"
// same-directory convention.
func SlotPath(songPath string, slot int) string {
	dir := filepath.Dir(songPath)
	name := filepath.Base(songPath)
	return filepath.Join(dir, fmt.Sprintf("%s.slot%d.savestate", name, slot))
}
