package main

import (
	"sort"

	"github.com/samber/lo"
)

const (
	leaderboardSize = 100
	soulReward      = 666
)

// Member is the registry's record of an announced connection. Everything in
// it beyond seq is client-asserted.
type Member struct {
	ConnectionID string
	Name         string
	Rank         int
	SoulPoints   int

	// seq orders members by first announcement and breaks leaderboard ties.
	seq uint64
}

func (h *Hub) nextSeq() uint64 {
	h.seq++
	return h.seq
}

// ensureMember returns the snapshot for a connection, creating an empty one
// if it has never announced. Used by the ritual reward path so that points
// land even for participants who skipped cult:join.
func (h *Hub) ensureMember(id string) *Member {
	m, ok := h.members[id]
	if !ok {
		m = &Member{ConnectionID: id, seq: h.nextSeq()}
		h.members[id] = m
	}
	return m
}

// handleAnnounce stores or overwrites a connection's member snapshot, then
// refreshes the derived state: one leaderboard recompute, one member-count
// broadcast.
func (h *Hub) handleAnnounce(c *Client, msg ClientMessage) {
	if msg.Member == nil {
		return
	}

	m := h.ensureMember(c.id)
	m.Name = msg.Member.Name
	m.Rank = msg.Member.Rank
	m.SoulPoints = msg.Member.SoulPoints

	h.refreshLeaderboard()
	h.broadcastMemberCount()

	logf(h.cfg, "CULT: %s announced as %q (rank %d, %d points)", c.id, m.Name, m.Rank, m.SoulPoints)
}

func (h *Hub) broadcastMemberCount() {
	h.broadcastAll(MemberCountMessage{
		Type:  "cult:member_count",
		Count: len(h.members),
	})
}

// computeLeaderboard rebuilds the top-N projection from scratch. Descending
// by points; ties go to the earlier-announced member, which keeps the output
// deterministic across recomputes.
func (h *Hub) computeLeaderboard() []LeaderboardEntry {
	members := lo.Values(h.members)

	sort.Slice(members, func(i, j int) bool {
		if members[i].SoulPoints != members[j].SoulPoints {
			return members[i].SoulPoints > members[j].SoulPoints
		}
		return members[i].seq < members[j].seq
	})

	if len(members) > leaderboardSize {
		members = members[:leaderboardSize]
	}

	return lo.Map(members, func(m *Member, _ int) LeaderboardEntry {
		return LeaderboardEntry{
			ConnectionID: m.ConnectionID,
			Name:         m.Name,
			Rank:         m.Rank,
			SoulPoints:   m.SoulPoints,
		}
	})
}

func (h *Hub) refreshLeaderboard() {
	h.broadcastAll(LeaderboardMessage{
		Type:    "leaderboard:update",
		Entries: h.computeLeaderboard(),
	})
}
