package main

import (
	"time"
)

// reapRooms deletes rooms whose age exceeds their kind's TTL, measured from
// creation and never renewed by activity. Members are told before deletion.
// Arenas have no TTL; they are deleted the moment they empty.
func (h *Hub) reapRooms(now time.Time) {
	reaped := 0

	for _, room := range h.redRooms {
		if now.Sub(room.createdAt) > h.cfg.redRoomTTL {
			h.closeRedRoom(room)
			reaped++
		}
	}

	for id, room := range h.rituals {
		if now.Sub(room.createdAt) > h.cfg.ritualTTL {
			delete(h.rituals, id)
			h.sendToIDs(room.participants, RoomClosedMessage{
				Type:   "ritual:expired",
				RoomID: id,
			})
			reaped++
		}
	}

	if reaped > 0 {
		logf(h.cfg, "REAPER: Removed %d expired rooms", reaped)
	}
}
