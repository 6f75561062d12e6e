package models

import "time"

type RoomStatus string

const (
	// RoomStatusForming means the room exists but not all roles are bound yet.
	RoomStatusForming RoomStatus = "forming"
	// RoomStatusActive means both the detective and the character controller are bound.
	RoomStatusActive RoomStatus = "active"
	// RoomStatusClosed means the room has been retired and no longer accepts participants.
	RoomStatusClosed RoomStatus = "closed"
)

// Role is a participant's function in a room.
type Role string

const (
	RoleDetective           Role = "detective"
	RoleCharacterController Role = "characterController"
)

// Valid reports whether the role is one of the two playable roles.
func (r Role) Valid() bool {
	return r == RoleDetective || r == RoleCharacterController
}

// Room is an isolated game session identified by a short code. The code is
// the natural key and is compared case-insensitively.
type Room struct {
	Code        string     `json:"code"`
	DisplayName string     `json:"displayName,omitempty"`
	Status      RoomStatus `json:"status"`
	CaseRef     string     `json:"caseRef"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Participant is the ephemeral per-connection state. Identity is the opaque
// subject from the external identity provider, empty for anonymous players.
type Participant struct {
	ConnectionID string
	Identity     string
	RoomCode     string
}
