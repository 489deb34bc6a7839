package main

import (
	"encoding/json"
	"time"
)

// MemberSnapshot is a connection's self-reported identity. The server trusts
// it for rank-gated actions and leaderboard display; nothing here is verified.
type MemberSnapshot struct {
	Name       string `json:"name"`
	Rank       int    `json:"rank"`
	SoulPoints int    `json:"soul_points"`
}

// Line is one drawn segment of the ritual sigil.
type Line struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// ClientMessage is the single inbound envelope. Fields beyond Type are
// populated per event; unused ones stay zero.
type ClientMessage struct {
	Type string `json:"type"`

	Member *MemberSnapshot `json:"member,omitempty"` // cult:join

	RoomID string          `json:"room_id,omitempty"` // all room-scoped events
	Meta   json.RawMessage `json:"meta,omitempty"`    // broadcaster/viewer/player metadata, relayed opaquely

	Amount int    `json:"amount,omitempty"` // redroom:donate
	Effect string `json:"effect,omitempty"` // redroom:donate

	To     string          `json:"to,omitempty"`     // redroom:signal
	Signal json.RawMessage `json:"signal,omitempty"` // redroom:signal

	Line *Line `json:"line,omitempty"` // ritual:draw_line

	X float64 `json:"x,omitempty"` // arena:move
	Y float64 `json:"y,omitempty"` // arena:move

	Victim string `json:"victim,omitempty"` // arena:eat

	Initiator string `json:"initiator,omitempty"` // bloodmoon:trigger

	Hex     json.RawMessage `json:"hex,omitempty"`     // hex:cast
	Targets int             `json:"targets,omitempty"` // hex:cast

	Payload json.RawMessage `json:"payload,omitempty"` // notification:send
}

// WelcomeMessage tells a freshly-upgraded client its server-assigned id.
type WelcomeMessage struct {
	Type         string `json:"type"` // "cult:welcome"
	ConnectionID string `json:"connection_id"`
}

type MemberCountMessage struct {
	Type  string `json:"type"` // "cult:member_count"
	Count int    `json:"count"`
}

type AwardMessage struct {
	Type   string `json:"type"` // "cult:award_points"
	Points int    `json:"points"`
}

type LeaderboardEntry struct {
	ConnectionID string `json:"connection_id"`
	Name         string `json:"name"`
	Rank         int    `json:"rank"`
	SoulPoints   int    `json:"soul_points"`
}

type LeaderboardMessage struct {
	Type    string             `json:"type"` // "leaderboard:update"
	Entries []LeaderboardEntry `json:"entries"`
}

// NoticeMessage covers the narrow per-sender denials: invalid room, room full,
// duplicate ids. Never broadcast.
type NoticeMessage struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

type RoomCreatedMessage struct {
	Type   string `json:"type"` // "redroom:created" / "arena:created"
	RoomID string `json:"room_id"`
}

type RoomJoinedMessage struct {
	Type        string          `json:"type"` // "redroom:joined"
	RoomID      string          `json:"room_id"`
	Broadcaster json.RawMessage `json:"broadcaster,omitempty"`
}

type ViewerJoinedMessage struct {
	Type   string          `json:"type"` // "redroom:viewer_joined"
	Viewer json.RawMessage `json:"viewer,omitempty"`
}

type DonationMessage struct {
	Type     string   `json:"type"` // "redroom:donation"
	Donation Donation `json:"donation"`
}

type EffectMessage struct {
	Type   string `json:"type"` // "redroom:effect"
	Effect string `json:"effect"`
}

type TopDonorMessage struct {
	Type         string `json:"type"` // "redroom:top_donor"
	ConnectionID string `json:"connection_id"`
}

type SignalMessage struct {
	Type   string          `json:"type"` // "redroom:signal"
	From   string          `json:"from"`
	Signal json.RawMessage `json:"signal,omitempty"`
}

// RoomClosedMessage announces teardown of a room, whether by the broadcaster
// leaving, ritual completion cleanup, or the reaper.
type RoomClosedMessage struct {
	Type   string `json:"type"` // "redroom:closed" / "ritual:expired"
	RoomID string `json:"room_id"`
}

type RitualParticipantsMessage struct {
	Type         string   `json:"type"` // "ritual:participant_joined" / "ritual:participant_left"
	Count        int      `json:"count"`
	Participants []string `json:"participants"`
}

type RitualStartedMessage struct {
	Type   string `json:"type"` // "ritual:started"
	RoomID string `json:"room_id"`
}

type LineDrawnMessage struct {
	Type string `json:"type"` // "ritual:line_drawn"
	Line Line   `json:"line"`
}

type RitualCompleteMessage struct {
	Type   string `json:"type"` // "ritual:complete"
	RoomID string `json:"room_id"`
}

type SoulClaimedMessage struct {
	Type   string `json:"type"` // "global:soul_claimed"
	RoomID string `json:"room_id"`
}

type ArenaPlayerJoinedMessage struct {
	Type     string      `json:"type"` // "arena:player_joined"
	PlayerID string      `json:"player_id"`
	Player   ArenaPlayer `json:"player"`
}

type ArenaStartedMessage struct {
	Type    string `json:"type"` // "arena:started"
	ArenaID string `json:"arena_id"`
}

type PlayerMovedMessage struct {
	Type     string  `json:"type"` // "arena:player_moved"
	PlayerID string  `json:"player_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type DevouredMessage struct {
	Type     string `json:"type"` // "arena:devoured"
	Predator string `json:"predator"`
	Victim   string `json:"victim"`
}

type PlayerLeftMessage struct {
	Type     string `json:"type"` // "arena:player_left"
	PlayerID string `json:"player_id"`
}

type BloodMoonMessage struct {
	Type      string `json:"type"` // "bloodmoon:activate" / "bloodmoon:deactivate"
	Initiator string `json:"initiator,omitempty"`
}

type HexMessage struct {
	Type string          `json:"type"` // "hex:received"
	Hex  json.RawMessage `json:"hex,omitempty"`
}

type NotificationMessage struct {
	Type    string          `json:"type"` // "notification:receive"
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Donation is one append-only entry in a red room's donation log.
type Donation struct {
	From      string    `json:"from"`
	Amount    int       `json:"amount"`
	Effect    string    `json:"effect"`
	Timestamp time.Time `json:"timestamp"`
}
