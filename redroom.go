package main

import (
	"encoding/json"
	"time"
)

// RedRoom is a broadcast room: one broadcaster, any number of viewers, and an
// append-only donation log. The broadcaster role is never reassigned; when
// they leave, the room dies with them.
type RedRoom struct {
	id              string
	broadcaster     string
	broadcasterMeta json.RawMessage
	viewers         map[string]json.RawMessage
	donations       []Donation
	createdAt       time.Time
}

// memberIDs lists everyone in the room, broadcaster first.
func (r *RedRoom) memberIDs() []string {
	ids := make([]string, 0, len(r.viewers)+1)
	ids = append(ids, r.broadcaster)
	for id := range r.viewers {
		ids = append(ids, id)
	}
	return ids
}

// topDonor sums the donation log by origin and returns the leading connection
// id. Ties go to whichever donor appeared first in the log.
func (r *RedRoom) topDonor() string {
	totals := make(map[string]int, len(r.donations))
	order := make([]string, 0, len(r.donations))

	for _, d := range r.donations {
		if _, seen := totals[d.From]; !seen {
			order = append(order, d.From)
		}
		totals[d.From] += d.Amount
	}

	top := ""
	best := 0
	for _, id := range order {
		if totals[id] > best {
			top = id
			best = totals[id]
		}
	}
	return top
}

func (h *Hub) handleRedRoomCreate(c *Client, msg ClientMessage) {
	if msg.RoomID == "" {
		return
	}
	if _, exists := h.redRooms[msg.RoomID]; exists {
		h.sendTo(c, NoticeMessage{
			Type:    "redroom:invalid",
			Message: "A room with that id already exists.",
		})
		return
	}

	h.redRooms[msg.RoomID] = &RedRoom{
		id:              msg.RoomID,
		broadcaster:     c.id,
		broadcasterMeta: msg.Meta,
		viewers:         make(map[string]json.RawMessage),
		createdAt:       time.Now(),
	}

	h.sendTo(c, RoomCreatedMessage{
		Type:   "redroom:created",
		RoomID: msg.RoomID,
	})

	logf(h.cfg, "ROOMS: Red room %s created by %s", msg.RoomID, c.id)
}

func (h *Hub) handleRedRoomJoin(c *Client, msg ClientMessage) {
	room, ok := h.redRooms[msg.RoomID]
	if !ok {
		h.sendTo(c, NoticeMessage{
			Type:    "redroom:invalid",
			Message: "No such room.",
		})
		return
	}
	if c.id == room.broadcaster {
		return
	}
	if _, already := room.viewers[c.id]; already {
		h.sendTo(c, NoticeMessage{
			Type:    "redroom:invalid",
			Message: "Already watching this room.",
		})
		return
	}

	room.viewers[c.id] = msg.Meta

	h.sendToID(room.broadcaster, ViewerJoinedMessage{
		Type:   "redroom:viewer_joined",
		Viewer: msg.Meta,
	})
	h.sendTo(c, RoomJoinedMessage{
		Type:        "redroom:joined",
		RoomID:      room.id,
		Broadcaster: room.broadcasterMeta,
	})
}

func (h *Hub) handleRedRoomLeave(c *Client, msg ClientMessage) {
	room, ok := h.redRooms[msg.RoomID]
	if !ok {
		return
	}

	if c.id == room.broadcaster {
		h.closeRedRoom(room)
		return
	}

	delete(room.viewers, c.id)
}

// closeRedRoom tears the room down and tells every remaining viewer.
func (h *Hub) closeRedRoom(room *RedRoom) {
	delete(h.redRooms, room.id)

	closed := RoomClosedMessage{
		Type:   "redroom:closed",
		RoomID: room.id,
	}
	for id := range room.viewers {
		h.sendToID(id, closed)
	}

	logf(h.cfg, "ROOMS: Red room %s closed", room.id)
}

func (h *Hub) handleDonate(c *Client, msg ClientMessage) {
	room, ok := h.redRooms[msg.RoomID]
	if !ok {
		return
	}

	// The amount is trusted as-is; the client is assumed to have already
	// debited itself before sending.
	donation := Donation{
		From:      c.id,
		Amount:    msg.Amount,
		Effect:    msg.Effect,
		Timestamp: time.Now(),
	}
	room.donations = append(room.donations, donation)

	h.sendToIDs(room.memberIDs(), DonationMessage{
		Type:     "redroom:donation",
		Donation: donation,
	})

	h.sendToID(room.broadcaster, EffectMessage{
		Type:   "redroom:effect",
		Effect: msg.Effect,
	})

	if top := room.topDonor(); top != "" {
		h.sendToIDs(room.memberIDs(), TopDonorMessage{
			Type:         "redroom:top_donor",
			ConnectionID: top,
		})
	}
}

// handleSignal relays an opaque payload to one connection. Media negotiation
// passthrough; the hub never inspects it.
func (h *Hub) handleSignal(c *Client, msg ClientMessage) {
	if msg.To == "" {
		return
	}
	h.sendToID(msg.To, SignalMessage{
		Type:   "redroom:signal",
		From:   c.id,
		Signal: msg.Signal,
	})
}

// evictFromRedRooms handles a disconnect: broadcaster rooms are torn down,
// viewer memberships are dropped.
func (h *Hub) evictFromRedRooms(id string) {
	for _, room := range h.redRooms {
		if room.broadcaster == id {
			h.closeRedRoom(room)
			continue
		}
		delete(room.viewers, id)
	}
}
