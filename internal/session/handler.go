package session

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/tractorhub/shengji/internal/game"
	"github.com/tractorhub/shengji/internal/settings"
	"github.com/tractorhub/shengji/internal/store"
	"github.com/tractorhub/shengji/pkg/models"
)

// Conn is the transport surface a session needs: framed reads and
// writes. The websocket adapter in cmd/server satisfies it; tests use an
// in-memory pipe.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
}

// Encoder serializes outbound frames. It is split from Conn so the
// handler stays independent of the framing choice at the edge.
type Encoder func(models.Outbound) ([]byte, error)

// Handler owns the shared state every connection runs against.
type Handler struct {
	Store          *RoomStore
	HeaderMessages []string
	Encode         Encoder
}

// Run drives one connection to completion: join, subscribe, register,
// dispatch until the socket drops, then clean up. It blocks until the
// connection is finished and is safe to run on its own goroutine.
func (h *Handler) Run(conn Conn) {
	defer conn.Close()

	if len(h.HeaderMessages) > 0 {
		h.writeDirect(conn, models.HeaderMsg(h.HeaderMessages))
	}

	room, name, ok := h.joinLoop(conn)
	if !ok {
		return
	}

	// Subscribe before registering so this session sees its own join
	// announcement fan out.
	sessionID := uuid.NewString()
	ch := h.Store.Subscribe(room, sessionID)
	defer h.Store.Unsubscribe(room, sessionID)

	if err := h.register(room, name, sessionID); err != nil {
		h.writeDirect(conn, models.ErrorMsg(errText(err)))
		return
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writeLoop(conn, ch, name)
	}()

	h.readLoop(conn, room, name, sessionID)

	h.deregister(room, sessionID)
	h.Store.Unsubscribe(room, sessionID)
	<-writerDone
}

// joinLoop reads frames until a well-formed join_room arrives: the room
// key must be exactly 16 bytes and the display name under 32.
func (h *Handler) joinLoop(conn Conn) (room, name string, ok bool) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			return "", "", false
		}
		in, err := models.DecodeInbound(data)
		if err != nil || in.Type != models.InJoinRoom {
			h.writeDirect(conn, models.ErrorMsg("expected a join_room message first"))
			continue
		}
		if len(in.RoomName) != 16 {
			h.writeDirect(conn, models.ErrorMsg("room_name must be exactly 16 characters"))
			continue
		}
		if in.Name == "" || len(in.Name) >= 32 {
			h.writeDirect(conn, models.ErrorMsg("name must be 1-31 characters"))
			continue
		}
		return in.RoomName, in.Name, true
	}
}

// register seats (or re-attaches) name in the room and records this
// session against the assigned seat. Under SingleSessionOnly, existing
// sessions for the same seat are told to disconnect.
func (h *Handler) register(room, name, sessionID string) error {
	var shadowed []string
	_, err := h.Store.ExecuteOperation(room, func(r *RoomState) (*RoomState, []models.Outbound, error) {
		g := r.Game.Clone()
		_, events, err := g.Register(name)
		if err != nil {
			return r, nil, err
		}
		next := r.next(g)
		if id, seated := g.PlayerIDOf(name); seated {
			prior := next.PerPlayerSockets[id]
			if g.Propagated.GameShadowingPolicy == settings.ShadowingSingleSessionOnly && len(prior) > 0 {
				shadowed = append([]string(nil), prior...)
				prior = nil
			}
			next.PerPlayerSockets[id] = append(prior, sessionID)
		}
		return next, outboundFor(g, events), nil
	})
	if err != nil {
		return err
	}
	for _, old := range shadowed {
		if perr := h.Store.PublishToSingleSubscriber(room, old, models.KickedMsg(name)); perr != nil && !errors.Is(perr, store.ErrNotSubscribed) {
			log.Printf("[Session] shadow-kick for %s failed: %v", name, perr)
		}
	}
	return nil
}

// deregister detaches this session id from whatever seat holds it.
func (h *Handler) deregister(room, sessionID string) {
	_, err := h.Store.ExecuteOperation(room, func(r *RoomState) (*RoomState, []models.Outbound, error) {
		next := r.next(r.Game)
		changed := false
		for id, socks := range next.PerPlayerSockets {
			kept := socks[:0]
			for _, s := range socks {
				if s != sessionID {
					kept = append(kept, s)
				} else {
					changed = true
				}
			}
			if len(kept) == 0 {
				delete(next.PerPlayerSockets, id)
			} else {
				next.PerPlayerSockets[id] = kept
			}
		}
		if !changed {
			return r, nil, nil
		}
		return next, nil, nil
	})
	if err != nil {
		log.Printf("[Session] deregister failed: %v", err)
	}
}

// readLoop dispatches inbound frames until the socket drops.
func (h *Handler) readLoop(conn Conn, room, name, sessionID string) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		in, err := models.DecodeInbound(data)
		if err != nil {
			h.sendError(room, sessionID, "malformed message")
			continue
		}
		switch in.Type {
		case models.InMessage:
			h.Store.Publish(room, models.ChatMsg(name, in.Text))
		case models.InAction:
			if in.Action == nil {
				h.sendError(room, sessionID, "action message missing its action")
				continue
			}
			h.runAction(room, name, sessionID, *in.Action)
		case models.InKick:
			h.runKick(room, name, sessionID, game.PlayerID(in.PlayerID))
		case models.InBeep:
			h.runBeep(room, name)
		case models.InReadyCheck:
			h.Store.Publish(room, models.ReadyCheckMsg(name))
		case models.InReady:
			h.Store.Publish(room, models.ChatMsg(name, "is ready"))
		default:
			h.sendError(room, sessionID, fmt.Sprintf("unknown message type %q", in.Type))
		}
	}
}

// runAction executes one game action under the room's critical section.
func (h *Handler) runAction(room, name, sessionID string, action game.Action) {
	_, err := h.Store.ExecuteOperation(room, func(r *RoomState) (*RoomState, []models.Outbound, error) {
		g := r.Game.Clone()
		caller, seated := g.PlayerIDOf(name)
		if !seated {
			return r, nil, &game.GameError{Kind: game.KindValidation, Message: "observers cannot act"}
		}
		events, err := g.Interact(action, caller)
		if err != nil {
			return r, nil, err
		}
		return r.next(g), outboundFor(g, events), nil
	})
	if err != nil {
		h.sendError(room, sessionID, errText(err))
	}
}

// runKick removes target from the roster and tells its sessions to
// disconnect.
func (h *Handler) runKick(room, name, sessionID string, target game.PlayerID) {
	var targetName string
	_, err := h.Store.ExecuteOperation(room, func(r *RoomState) (*RoomState, []models.Outbound, error) {
		g := r.Game.Clone()
		caller, seated := g.PlayerIDOf(name)
		if !seated {
			return r, nil, &game.GameError{Kind: game.KindValidation, Message: "observers cannot kick"}
		}
		targetName = g.NameOf(target)
		events, err := g.Kick(caller, target)
		if err != nil {
			return r, nil, err
		}
		next := r.next(g)
		// Seats past the kicked one shift down by one id; re-key the
		// session map to match the post-removal seat order.
		rekeyed := make(map[game.PlayerID][]string, len(next.PerPlayerSockets))
		for id, socks := range next.PerPlayerSockets {
			switch {
			case id == target:
			case id > target:
				rekeyed[id-1] = socks
			default:
				rekeyed[id] = socks
			}
		}
		next.PerPlayerSockets = rekeyed
		msgs := outboundFor(g, events)
		msgs = append(msgs, models.KickedMsg(targetName))
		return next, msgs, nil
	})
	if err != nil {
		h.sendError(room, sessionID, errText(err))
	}
}

// runBeep is an immutable read: work out whose turn it is and chime them.
func (h *Handler) runBeep(room, name string) {
	r := h.Store.Get(room)
	nextSeat, ok := r.Game.NextPlayer()
	if !ok {
		return
	}
	targetName := r.Game.NameOf(nextSeat)
	if targetName == "" {
		return
	}
	h.Store.Publish(room, models.ChatMsg(name, fmt.Sprintf("beeped %s", targetName)))
	h.Store.Publish(room, models.BeepMsg(targetName))
}

// writeLoop applies per-recipient filtering and redaction, then writes
// each frame to the socket. It exits when the subscription closes or the
// socket dies; a Kicked frame naming this connection closes it.
func (h *Handler) writeLoop(conn Conn, ch <-chan models.Outbound, name string) {
	for msg := range ch {
		switch msg.Type {
		case models.OutState:
			msg = models.StateMsg(msg.State.ForPlayer(name))
		case models.OutBeep:
			if msg.Target != name {
				continue
			}
		case models.OutKicked:
			if msg.Target != name {
				continue
			}
		case models.OutReadyCheck:
			if msg.From == name {
				continue
			}
		}
		if !h.writeDirect(conn, msg) {
			return
		}
		if msg.Type == models.OutKicked {
			conn.Close()
			return
		}
	}
}

func (h *Handler) writeDirect(conn Conn, msg models.Outbound) bool {
	data, err := h.Encode(msg)
	if err != nil {
		log.Printf("[Session] encode failed: %v", err)
		return false
	}
	return conn.WriteMessage(data) == nil
}

// sendError routes a validation failure back to only the originating
// session, through the store so writes stay serialized on the writer.
func (h *Handler) sendError(room, sessionID, text string) {
	if err := h.Store.PublishToSingleSubscriber(room, sessionID, models.ErrorMsg(text)); err != nil {
		log.Printf("[Session] error delivery failed: %v", err)
	}
}

// outboundFor renders a mutating operation's events followed by the
// post-state, matching the order subscribers must observe.
func outboundFor(g *game.GameState, events []game.Event) []models.Outbound {
	msgs := make([]models.Outbound, 0, len(events)+1)
	for _, e := range events {
		msgs = append(msgs, models.BroadcastMsg(e))
	}
	msgs = append(msgs, models.StateMsg(g))
	return msgs
}

// errText renders an error for the originating session: validation
// failures pass through verbatim, invariant breaches are logged and
// replaced with a generic message.
func errText(err error) string {
	var gerr *game.GameError
	if errors.As(err, &gerr) && gerr.Kind == game.KindInvariantBreach {
		log.Printf("[Session] invariant breach: %v", err)
		return "internal error"
	}
	return err.Error()
}
