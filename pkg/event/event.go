package event

import (
	"fmt"
	"time"
)

// Actor is the user an event is about, as reported by the gateway.
type Actor struct {
	ID        uint64
	Username  string
	AvatarURL string
}

// Mention renders the platform mention string for the actor.
func (a Actor) Mention() string {
	return fmt.Sprintf("<@%d>", a.ID)
}

// Message is a message snapshot. The gateway may not have cached the
// pre-edit or pre-delete state, in which case the snapshot is absent.
type Message struct {
	Content string
}

// Profile is a member profile snapshot used for profile-update diffing.
// AvatarRef is the platform's opaque avatar identifier; AvatarURL is the
// resolved image URL, which may be empty or malformed.
type Profile struct {
	Username  string
	Nickname  string
	AvatarRef string
	AvatarURL string
}

// Event is a single observed lifecycle event. Which fields are populated
// depends on Kind; the dispatch handlers validate per-kind completeness.
type Event struct {
	Kind      Kind
	GuildID   uint64
	ChannelID uint64 // channel the event occurred in; 0 for non-channel events or DMs
	Actor     Actor

	// Moderation context: who performed the action, and why.
	Moderator *Actor
	Reason    string

	// Message events.
	Before *Message
	After  *Message

	// Profile updates.
	ProfileBefore *Profile
	ProfileAfter  *Profile

	// Join events.
	JoinedAt  time.Time
	CreatedAt time.Time
}
