package main

import (
	"encoding/json"
	"time"
)

const (
	arenaWidth     = 800.0
	arenaHeight    = 600.0
	arenaMinPlayer = 2
)

type arenaStatus string

const (
	arenaWaiting arenaStatus = "waiting"
	arenaActive  arenaStatus = "active"
)

// ArenaPlayer is one participant's state inside an arena. Position is only
// ever written by that player's own connection.
type ArenaPlayer struct {
	X     float64         `json:"x"`
	Y     float64         `json:"y"`
	Score int             `json:"score"`
	Meta  json.RawMessage `json:"meta,omitempty"`
}

// Arena is a free-for-all collision game: no maximum size, starts once two
// players are present, deleted as soon as it empties.
type Arena struct {
	id        string
	players   map[string]*ArenaPlayer
	status    arenaStatus
	createdAt time.Time
}

func (a *Arena) playerIDs() []string {
	ids := make([]string, 0, len(a.players))
	for id := range a.players {
		ids = append(ids, id)
	}
	return ids
}

func (h *Hub) handleArenaCreate(c *Client, msg ClientMessage) {
	if msg.RoomID == "" {
		return
	}
	if _, exists := h.arenas[msg.RoomID]; exists {
		h.sendTo(c, NoticeMessage{
			Type:    "arena:invalid",
			Message: "An arena with that id already exists.",
		})
		return
	}

	h.arenas[msg.RoomID] = &Arena{
		id:        msg.RoomID,
		players:   make(map[string]*ArenaPlayer),
		status:    arenaWaiting,
		createdAt: time.Now(),
	}

	h.sendTo(c, RoomCreatedMessage{
		Type:   "arena:created",
		RoomID: msg.RoomID,
	})

	logf(h.cfg, "ROOMS: Arena %s created by %s", msg.RoomID, c.id)
}

func (h *Hub) handleArenaJoin(c *Client, msg ClientMessage) {
	arena, ok := h.arenas[msg.RoomID]
	if !ok {
		h.sendTo(c, NoticeMessage{
			Type:    "arena:invalid",
			Message: "No such arena.",
		})
		return
	}
	if _, already := arena.players[c.id]; already {
		return
	}

	player := &ArenaPlayer{
		X:    h.rng.Float64() * arenaWidth,
		Y:    h.rng.Float64() * arenaHeight,
		Meta: msg.Meta,
	}
	arena.players[c.id] = player

	h.sendToIDs(arena.playerIDs(), ArenaPlayerJoinedMessage{
		Type:     "arena:player_joined",
		PlayerID: c.id,
		Player:   *player,
	})

	if len(arena.players) >= arenaMinPlayer && arena.status == arenaWaiting {
		arena.status = arenaActive
		h.sendToIDs(arena.playerIDs(), ArenaStartedMessage{
			Type:    "arena:started",
			ArenaID: arena.id,
		})
	}
}

// handleArenaMove overwrites the sender's own position and relays it to
// everyone else. No server-side physics; movement is taken at face value.
func (h *Hub) handleArenaMove(c *Client, msg ClientMessage) {
	arena, ok := h.arenas[msg.RoomID]
	if !ok {
		return
	}
	player, ok := arena.players[c.id]
	if !ok {
		return
	}

	player.X = msg.X
	player.Y = msg.Y

	moved := PlayerMovedMessage{
		Type:     "arena:player_moved",
		PlayerID: c.id,
		X:        msg.X,
		Y:        msg.Y,
	}
	for id := range arena.players {
		if id == c.id {
			continue
		}
		h.sendToID(id, moved)
	}
}

// handleArenaEat honors a collision claim: both parties must be in the arena,
// nothing else is verified. The predator scores, the victim is told it died.
func (h *Hub) handleArenaEat(c *Client, msg ClientMessage) {
	arena, ok := h.arenas[msg.RoomID]
	if !ok {
		return
	}
	predator, ok := arena.players[c.id]
	if !ok {
		return
	}
	if _, ok := arena.players[msg.Victim]; !ok {
		return
	}

	predator.Score++

	h.sendToIDs(arena.playerIDs(), DevouredMessage{
		Type:     "arena:devoured",
		Predator: c.id,
		Victim:   msg.Victim,
	})
	h.sendToID(msg.Victim, NoticeMessage{
		Type: "arena:you_died",
	})
}

// evictFromArenas removes a disconnected player; an emptied arena is deleted
// outright, otherwise the remaining players are told who left.
func (h *Hub) evictFromArenas(id string) {
	for arenaID, arena := range h.arenas {
		if _, ok := arena.players[id]; !ok {
			continue
		}
		delete(arena.players, id)

		if len(arena.players) == 0 {
			delete(h.arenas, arenaID)
			continue
		}

		h.sendToIDs(arena.playerIDs(), PlayerLeftMessage{
			Type:     "arena:player_left",
			PlayerID: id,
		})
	}
}
