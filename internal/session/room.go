// Package session implements the per-connection lifecycle: join,
// subscribe, register, message dispatch, per-recipient filtering, and
// disconnect cleanup, all over the versioned room store.
package session

import (
	"github.com/tractorhub/shengji/internal/game"
	"github.com/tractorhub/shengji/internal/store"
	"github.com/tractorhub/shengji/pkg/models"
)

// RoomState is the versioned value the store holds per room: the game,
// the session ids attached to each seat, and the monotonic version that
// every committed change increments.
type RoomState struct {
	RoomKey          string                     `json:"room_key"`
	Game             *game.GameState            `json:"game"`
	PerPlayerSockets map[game.PlayerID][]string `json:"per_player_sockets"`
	Ver              uint64                     `json:"version"`
}

// NewRoomState returns the default-initialized state for an absent key.
func NewRoomState(key string) *RoomState {
	return &RoomState{
		RoomKey:          key,
		Game:             game.New(),
		PerPlayerSockets: map[game.PlayerID][]string{},
	}
}

func (r *RoomState) Key() string     { return r.RoomKey }
func (r *RoomState) Version() uint64 { return r.Ver }

// next returns a copy of r with the game replaced and the version
// bumped; the store's CAS discipline sees exactly version+1 per commit.
func (r *RoomState) next(g *game.GameState) *RoomState {
	out := &RoomState{
		RoomKey:          r.RoomKey,
		Game:             g,
		PerPlayerSockets: make(map[game.PlayerID][]string, len(r.PerPlayerSockets)),
		Ver:              r.Ver + 1,
	}
	for id, socks := range r.PerPlayerSockets {
		out.PerPlayerSockets[id] = append([]string(nil), socks...)
	}
	return out
}

// RoomStore is the concrete store instantiation every room shares.
type RoomStore = store.MemoryStore[*RoomState, models.Outbound]

// NewRoomStore builds the store with RoomState defaults.
func NewRoomStore() *RoomStore {
	return store.NewMemoryStore[*RoomState, models.Outbound](NewRoomState)
}
