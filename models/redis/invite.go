package redis

import "time"

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
	InviteExpired  InviteStatus = "expired"
)

// Invite is a time-bounded offer for a user to join a specific room. It is
// written in two places: the room's invites map and a per-recipient index
// record, so the recipient can discover it without scanning all rooms.
// Only one invite per (room, recipient) pair exists at a time; a new one
// overwrites the prior one. Accepted, declined and expired are terminal.
type Invite struct {
	RoomId       string       `json:"room_id"`
	FromUsername string       `json:"from_username"`
	ToUsername   string       `json:"to_username"`
	Status       InviteStatus `json:"status"`
	IssuedAt     time.Time    `json:"issued_at"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

func (i *Invite) IsTerminal() bool {
	return i.Status == InviteAccepted || i.Status == InviteDeclined || i.Status == InviteExpired
}
