package main

import (
	"time"

	"github.com/samber/lo"
)

const (
	ritualCapacity = 13
	ritualLineGoal = 5
)

type ritualStatus string

const (
	ritualWaiting  ritualStatus = "waiting"
	ritualStarting ritualStatus = "starting"
	ritualActive   ritualStatus = "active"
	ritualComplete ritualStatus = "complete"
)

// RitualRoom holds exactly up to thirteen participants who jointly draw a
// five-line sigil. The room is created implicitly by the first join.
type RitualRoom struct {
	id           string
	participants []string
	lines        []Line
	status       ritualStatus
	createdAt    time.Time
}

func (r *RitualRoom) hasParticipant(id string) bool {
	return lo.Contains(r.participants, id)
}

func (h *Hub) handleRitualJoin(c *Client, msg ClientMessage) {
	if msg.RoomID == "" {
		return
	}

	room, ok := h.rituals[msg.RoomID]
	if !ok {
		room = &RitualRoom{
			id:        msg.RoomID,
			status:    ritualWaiting,
			createdAt: time.Now(),
		}
		h.rituals[msg.RoomID] = room
		logf(h.cfg, "ROOMS: Ritual room %s created", msg.RoomID)
	}

	if room.status != ritualWaiting || len(room.participants) >= ritualCapacity || room.hasParticipant(c.id) {
		h.sendTo(c, NoticeMessage{
			Type:    "ritual:room_full",
			Message: "The circle is already complete.",
		})
		return
	}

	room.participants = append(room.participants, c.id)

	h.sendToIDs(room.participants, RitualParticipantsMessage{
		Type:         "ritual:participant_joined",
		Count:        len(room.participants),
		Participants: room.participants,
	})

	if len(room.participants) == ritualCapacity {
		room.status = ritualStarting
		roomID := room.id

		h.after(h.cfg.ritualStartDelay, func() {
			room, ok := h.rituals[roomID]
			if !ok || room.status != ritualStarting {
				return
			}
			room.status = ritualActive
			h.sendToIDs(room.participants, RitualStartedMessage{
				Type:   "ritual:started",
				RoomID: roomID,
			})
		})
	}
}

func (h *Hub) handleDrawLine(c *Client, msg ClientMessage) {
	room, ok := h.rituals[msg.RoomID]
	if !ok || room.status != ritualActive || msg.Line == nil {
		return
	}
	if !room.hasParticipant(c.id) {
		return
	}

	room.lines = append(room.lines, *msg.Line)

	h.sendToIDs(room.participants, LineDrawnMessage{
		Type: "ritual:line_drawn",
		Line: *msg.Line,
	})

	if len(room.lines) >= ritualLineGoal {
		h.completeRitual(room)
	}
}

// completeRitual runs the whole terminal transition as one unit: status flip,
// room-scoped completion, site-wide notice, per-participant reward through the
// registry, delayed deletion.
func (h *Hub) completeRitual(room *RitualRoom) {
	room.status = ritualComplete

	h.sendToIDs(room.participants, RitualCompleteMessage{
		Type:   "ritual:complete",
		RoomID: room.id,
	})

	h.broadcastAll(SoulClaimedMessage{
		Type:   "global:soul_claimed",
		RoomID: room.id,
	})

	award := AwardMessage{
		Type:   "cult:award_points",
		Points: soulReward,
	}
	for _, id := range room.participants {
		h.ensureMember(id).SoulPoints += soulReward
		h.sendToID(id, award)
	}
	h.refreshLeaderboard()

	roomID := room.id
	h.after(h.cfg.ritualLinger, func() {
		room, ok := h.rituals[roomID]
		if !ok || room.status != ritualComplete {
			return
		}
		delete(h.rituals, roomID)
	})

	logf(h.cfg, "ROOMS: Ritual room %s completed", room.id)
}

// evictFromRituals drops a disconnected participant from every ritual room,
// whatever its state; participant sets never hold unregistered ids.
func (h *Hub) evictFromRituals(id string) {
	for _, room := range h.rituals {
		if !room.hasParticipant(id) {
			continue
		}

		room.participants = lo.Without(room.participants, id)

		h.sendToIDs(room.participants, RitualParticipantsMessage{
			Type:         "ritual:participant_left",
			Count:        len(room.participants),
			Participants: room.participants,
		})
	}
}
