package main

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fillRitual(t *testing.T, h *Hub, roomID string) []*Client {
	t.Helper()

	participants := make([]*Client, 0, ritualCapacity)
	for i := 0; i < ritualCapacity; i++ {
		c := connect(t, h, fmt.Sprintf("p%02d", i))
		emit(h, c, ClientMessage{Type: "ritual:join", RoomID: roomID})
		participants = append(participants, c)
	}
	h.sync()

	return participants
}

func awaitRitualActive(t *testing.T, h *Hub, roomID string) {
	t.Helper()

	require.Eventually(t, func() bool {
		active := false
		h.call(func() {
			room, ok := h.rituals[roomID]
			active = ok && room.status == ritualActive
		})
		return active
	}, 2*time.Second, 5*time.Millisecond)
}

func drawLine(h *Hub, c *Client, roomID string, n float64) {
	emit(h, c, ClientMessage{
		Type:   "ritual:draw_line",
		RoomID: roomID,
		Line:   &Line{X1: n, Y1: n, X2: n + 1, Y2: n + 1},
	})
}

func TestThirteenthJoinStartsRitual(t *testing.T) {
	h := newTestHub(t)
	participants := fillRitual(t, h, "M1")

	h.call(func() {
		room := h.rituals["M1"]
		require.Len(t, room.participants, ritualCapacity)
		require.Equal(t, ritualStarting, room.status)
	})

	// A 14th join is rejected with a room-full notice.
	late := connect(t, h, "late")
	emit(h, late, ClientMessage{Type: "ritual:join", RoomID: "M1"})
	notice := nextMessage[NoticeMessage](t, late)
	require.Equal(t, "ritual:room_full", notice.Type)

	// The starting -> active transition fires exactly once, on the timer.
	started := nextMessage[RitualStartedMessage](t, participants[0])
	require.Equal(t, "M1", started.RoomID)

	h.sync()
	for _, m := range drainMessages(participants[0]) {
		_, again := m.(RitualStartedMessage)
		require.False(t, again)
	}
}

func TestDuplicateRitualJoinRejected(t *testing.T) {
	h := newTestHub(t)
	c := connect(t, h, "p1")

	emit(h, c, ClientMessage{Type: "ritual:join", RoomID: "M1"})
	emit(h, c, ClientMessage{Type: "ritual:join", RoomID: "M1"})
	h.sync()

	h.call(func() {
		require.Len(t, h.rituals["M1"].participants, 1)
	})
}

func TestDrawRejectedOutsideActive(t *testing.T) {
	h := newTestHub(t)
	c := connect(t, h, "p1")

	// waiting
	emit(h, c, ClientMessage{Type: "ritual:join", RoomID: "M1"})
	drawLine(h, c, "M1", 0)
	h.sync()
	h.call(func() {
		require.Empty(t, h.rituals["M1"].lines)
	})

	// starting
	participants := fillRitual(t, h, "M2")
	drawLine(h, participants[0], "M2", 0)
	h.sync()
	h.call(func() {
		require.Equal(t, ritualStarting, h.rituals["M2"].status)
		require.Empty(t, h.rituals["M2"].lines)
	})
}

func TestDrawRejectedFromNonParticipant(t *testing.T) {
	h := newTestHub(t)
	fillRitual(t, h, "M1")
	awaitRitualActive(t, h, "M1")

	outsider := connect(t, h, "outsider")
	drawLine(h, outsider, "M1", 0)
	h.sync()

	h.call(func() {
		require.Empty(t, h.rituals["M1"].lines)
	})
}

func TestFiveLinesCompleteRitual(t *testing.T) {
	h := newTestHub(t)
	outsider := connect(t, h, "outsider")
	participants := fillRitual(t, h, "M1")
	awaitRitualActive(t, h, "M1")

	for i := 0; i < ritualLineGoal; i++ {
		drawLine(h, participants[i], "M1", float64(i))
	}

	complete := nextMessage[RitualCompleteMessage](t, participants[0])
	require.Equal(t, "M1", complete.RoomID)

	// The completion notice is site-wide, not just room-scoped.
	claimed := nextMessage[SoulClaimedMessage](t, outsider)
	require.Equal(t, "M1", claimed.RoomID)

	// Every participant is credited exactly once.
	for _, p := range participants {
		award := nextMessage[AwardMessage](t, p)
		require.Equal(t, soulReward, award.Points)
	}
	h.call(func() {
		for _, p := range participants {
			require.Equal(t, soulReward, h.members[p.id].SoulPoints)
		}
	})

	// A sixth line is ignored.
	drawLine(h, participants[0], "M1", 99)
	h.sync()
	h.call(func() {
		if room, ok := h.rituals["M1"]; ok {
			require.Len(t, room.lines, ritualLineGoal)
		}
	})

	// The room lingers briefly for trailing animations, then goes away.
	require.Eventually(t, func() bool {
		gone := false
		h.call(func() {
			_, ok := h.rituals["M1"]
			gone = !ok
		})
		return gone
	}, 2*time.Second, 5*time.Millisecond)

	// No second completion fired along the way.
	h.sync()
	for _, m := range drainMessages(participants[0]) {
		_, again := m.(RitualCompleteMessage)
		require.False(t, again)
	}
}

func TestRitualTimerToleratesReapedRoom(t *testing.T) {
	h := newTestHub(t)
	participants := fillRitual(t, h, "M1")

	// Reap the room while the auto-start timer is still pending.
	h.call(func() {
		h.reapRooms(time.Now().Add(time.Hour))
	})

	expired := nextMessage[RoomClosedMessage](t, participants[0])
	require.Equal(t, "ritual:expired", expired.Type)

	// Wait out the timer; the callback must be a no-op.
	time.Sleep(3 * h.cfg.ritualStartDelay)
	h.sync()

	h.call(func() {
		require.NotContains(t, h.rituals, "M1")
	})
	for _, m := range drainMessages(participants[0]) {
		_, started := m.(RitualStartedMessage)
		require.False(t, started)
	}
}

func TestWaitingParticipantDisconnectShrinksRoom(t *testing.T) {
	h := newTestHub(t)
	c1 := connect(t, h, "p1")
	c2 := connect(t, h, "p2")

	emit(h, c1, ClientMessage{Type: "ritual:join", RoomID: "M1"})
	emit(h, c2, ClientMessage{Type: "ritual:join", RoomID: "M1"})
	h.sync()
	drainMessages(c2)

	h.unregister <- c1
	left := nextMessage[RitualParticipantsMessage](t, c2)
	require.Equal(t, "ritual:participant_left", left.Type)
	require.Equal(t, 1, left.Count)

	h.call(func() {
		require.Equal(t, []string{"p2"}, h.rituals["M1"].participants)
	})
}
