// Package models holds the wire-level message envelopes shared between
// the session handler, the RPC surface, and the snapshot reader/writer.
// Each direction of the client connection carries one tagged JSON value.
package models

import (
	"encoding/json"
	"fmt"

	"github.com/tractorhub/shengji/internal/game"
)

// Inbound message types.
const (
	InJoinRoom   = "join_room"
	InMessage    = "message"
	InAction     = "action"
	InKick       = "kick"
	InBeep       = "beep"
	InReadyCheck = "ready_check"
	InReady      = "ready"
)

// Inbound is one client-to-server frame. Type selects which of the
// optional fields are meaningful.
type Inbound struct {
	Type string `json:"type"`

	RoomName string       `json:"room_name,omitempty"` // join_room
	Name     string       `json:"name,omitempty"`      // join_room
	Text     string       `json:"text,omitempty"`      // message
	Action   *game.Action `json:"action,omitempty"`    // action
	PlayerID int          `json:"player_id,omitempty"` // kick
}

// DecodeInbound parses and minimally validates one inbound frame.
func DecodeInbound(data []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return Inbound{}, fmt.Errorf("models: malformed inbound frame: %v", err)
	}
	if in.Type == "" {
		return Inbound{}, fmt.Errorf("models: inbound frame missing type")
	}
	return in, nil
}

// Outbound message types.
const (
	OutState      = "state"
	OutMessage    = "message"
	OutBroadcast  = "broadcast"
	OutError      = "error"
	OutHeader     = "header"
	OutBeep       = "beep"
	OutKicked     = "kicked"
	OutReadyCheck = "ready_check"
)

// Outbound is one server-to-client frame. State frames carry the
// per-recipient redacted game view; Broadcast frames carry a domain
// event alongside its human rendering.
type Outbound struct {
	Type string `json:"type"`

	State    *game.GameState `json:"state,omitempty"`    // state
	From     string          `json:"from,omitempty"`     // message, ready_check
	Message  string          `json:"message,omitempty"`  // message, broadcast
	Data     map[string]any  `json:"data,omitempty"`     // broadcast
	Error    string          `json:"error,omitempty"`    // error
	Messages []string        `json:"messages,omitempty"` // header
	Target   string          `json:"target,omitempty"`   // beep, kicked
}

// StateMsg wraps a redacted game view for delivery.
func StateMsg(s *game.GameState) Outbound { return Outbound{Type: OutState, State: s} }

// ChatMsg wraps a player chat line.
func ChatMsg(from, text string) Outbound {
	return Outbound{Type: OutMessage, From: from, Message: text}
}

// BroadcastMsg wraps a domain event and its human rendering.
func BroadcastMsg(e game.Event) Outbound {
	data := make(map[string]any, len(e.Data)+1)
	for k, v := range e.Data {
		data[k] = v
	}
	data["kind"] = e.Kind
	return Outbound{Type: OutBroadcast, Data: data, Message: e.Message}
}

// ErrorMsg wraps a validation failure for the originating session.
func ErrorMsg(text string) Outbound { return Outbound{Type: OutError, Error: text} }

// HeaderMsg carries the operator-configured banner messages.
func HeaderMsg(messages []string) Outbound {
	return Outbound{Type: OutHeader, Messages: messages}
}

// BeepMsg targets one named player with an attention chime.
func BeepMsg(target string) Outbound { return Outbound{Type: OutBeep, Target: target} }

// KickedMsg tells the named player's sessions to disconnect.
func KickedMsg(target string) Outbound { return Outbound{Type: OutKicked, Target: target} }

// ReadyCheckMsg asks everyone except from to confirm readiness.
func ReadyCheckMsg(from string) Outbound { return Outbound{Type: OutReadyCheck, From: from} }
