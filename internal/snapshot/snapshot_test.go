package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/tractorhub/shengji/internal/session"
)

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "snapshot.json")

	st := session.NewRoomStore()

	// Seat two players so the room survives the empty-room prune.
	room := session.NewRoomState("0123456789abcdef")
	if _, _, err := room.Game.Register("alice"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := room.Game.Register("bob"); err != nil {
		t.Fatalf("register: %v", err)
	}
	room.Ver = 3
	st.Put(room)

	empty := session.NewRoomState("emptyroom1234567")
	empty.Ver = 1
	st.Put(empty)

	n, err := Dump(st, path)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected only the occupied room dumped, got %d", n)
	}

	restored := session.NewRoomStore()
	m, err := Restore(restored, path)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if m != 1 {
		t.Fatalf("expected 1 room restored, got %d", m)
	}
	got := restored.Get("0123456789abcdef")
	if got.Ver != 1 {
		t.Fatalf("restored rooms must sit at version 1, got %d", got.Ver)
	}
	if _, seated := got.Game.PlayerIDOf("alice"); !seated {
		t.Fatalf("roster lost through the snapshot")
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	rooms, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if len(rooms) != 0 {
		t.Fatalf("missing file must load empty, got %d rooms", len(rooms))
	}
}
