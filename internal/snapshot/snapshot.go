// Package snapshot persists the room map as a JSON file keyed by room
// name, restores it at startup, and rewrites it periodically and on
// shutdown.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/tractorhub/shengji/internal/game"
	"github.com/tractorhub/shengji/internal/session"
)

// Load reads the snapshot file. A missing file is an empty snapshot, not
// an error.
func Load(path string) (map[string]*game.GameState, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]*game.GameState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %v", path, err)
	}
	var rooms map[string]*game.GameState
	if err := json.Unmarshal(data, &rooms); err != nil {
		return nil, fmt.Errorf("snapshot: parse %s: %v", path, err)
	}
	return rooms, nil
}

// Restore loads the snapshot at path and upserts every room into the
// store at version 1. It returns the number of rooms restored.
func Restore(st *session.RoomStore, path string) (int, error) {
	rooms, err := Load(path)
	if err != nil {
		return 0, err
	}
	for key, g := range rooms {
		room := session.NewRoomState(key)
		room.Game = g
		room.Ver = 1
		st.Put(room)
	}
	return len(rooms), nil
}

// Dump writes a fresh snapshot of every non-empty room, atomically via a
// temp file rename. Rooms with no seated players and no observers are
// pruned from the written set.
func Dump(st *session.RoomStore, path string) (int, error) {
	rooms := map[string]*game.GameState{}
	for _, key := range st.GetAllKeys() {
		r := st.Get(key)
		if r.Game == nil || len(r.Game.Roster.Names)+len(r.Game.Roster.Observers) == 0 {
			continue
		}
		rooms[key] = r.Game
	}
	data, err := json.Marshal(rooms)
	if err != nil {
		return 0, fmt.Errorf("snapshot: marshal: %v", err)
	}
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("snapshot: mkdir: %v", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return 0, fmt.Errorf("snapshot: write %s: %v", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return 0, fmt.Errorf("snapshot: rename: %v", err)
	}
	return len(rooms), nil
}

// Run rewrites the snapshot on every tick (pruning the store first) until
// ctx is cancelled, then writes one final snapshot on the way out.
func Run(ctx context.Context, st *session.RoomStore, path string, interval time.Duration) {
	log.Printf("[Snapshot] persisting to %s every %s", path, interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if n, err := Dump(st, path); err != nil {
				log.Printf("[Snapshot] final dump failed: %v", err)
			} else {
				log.Printf("[Snapshot] final dump wrote %d rooms", n)
			}
			return
		case <-ticker.C:
			if evicted := st.Prune(); evicted > 0 {
				log.Printf("[Snapshot] pruned %d stale rooms", evicted)
			}
			if _, err := Dump(st, path); err != nil {
				log.Printf("[Snapshot] dump failed: %v", err)
			}
		}
	}
}
