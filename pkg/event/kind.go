// Package event defines the closed set of guild lifecycle events the
// logging pipeline observes, and the payload each kind carries.
package event

import "fmt"

// Kind identifies one category of observed lifecycle event.
type Kind int

const (
	MessageEdited Kind = iota
	MessageDeleted
	MessageDeletedByBot
	UserBanned
	UserBannedByBot
	UserUnbanned
	UserJoined
	UserLeft
	MemberProfileUpdated
	UserKicked
	UserMuted
	UserUnmuted

	kindCount
)

var kindNames = [kindCount]string{
	MessageEdited:        "message_edited",
	MessageDeleted:       "message_deleted",
	MessageDeletedByBot:  "message_deleted_by_bot",
	UserBanned:           "user_banned",
	UserBannedByBot:      "user_banned_by_bot",
	UserUnbanned:         "user_unbanned",
	UserJoined:           "user_joined",
	UserLeft:             "user_left",
	MemberProfileUpdated: "member_profile_updated",
	UserKicked:           "user_kicked",
	UserMuted:            "user_muted",
	UserUnmuted:          "user_unmuted",
}

// Kinds returns all event kinds in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Valid reports whether k is a member of the closed kind set.
func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind converts a wire name back to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

// Slot identifies one of the ten configurable destination-channel slots.
// Several kinds deliberately share a slot: a bot-initiated delete routes to
// the same channel as a user delete, and a bot ban to the same channel as a
// gateway ban. One configured channel can receive multiple related kinds.
type Slot int

const (
	SlotMessageUpdated Slot = iota
	SlotMessageDeleted
	SlotUserBanned
	SlotUserUnbanned
	SlotUserJoined
	SlotUserLeft
	SlotMemberUpdates
	SlotUserKicked
	SlotUserMuted
	SlotUserUnmuted

	slotCount
)

var slotColumns = [slotCount]string{
	SlotMessageUpdated: "message_updated_channel",
	SlotMessageDeleted: "message_deleted_channel",
	SlotUserBanned:     "user_banned_channel",
	SlotUserUnbanned:   "user_unbanned_channel",
	SlotUserJoined:     "user_joined_channel",
	SlotUserLeft:       "user_left_channel",
	SlotMemberUpdates:  "member_updates_channel",
	SlotUserKicked:     "user_kicked_channel",
	SlotUserMuted:      "user_muted_channel",
	SlotUserUnmuted:    "user_unmuted_channel",
}

var kindSlots = [kindCount]Slot{
	MessageEdited:        SlotMessageUpdated,
	MessageDeleted:       SlotMessageDeleted,
	MessageDeletedByBot:  SlotMessageDeleted,
	UserBanned:           SlotUserBanned,
	UserBannedByBot:      SlotUserBanned,
	UserUnbanned:         SlotUserUnbanned,
	UserJoined:           SlotUserJoined,
	UserLeft:             SlotUserLeft,
	MemberProfileUpdated: SlotMemberUpdates,
	UserKicked:           SlotUserKicked,
	UserMuted:            SlotUserMuted,
	UserUnmuted:          SlotUserUnmuted,
}

// Slots returns all channel slots in declaration order.
func Slots() []Slot {
	out := make([]Slot, 0, slotCount)
	for s := Slot(0); s < slotCount; s++ {
		out = append(out, s)
	}
	return out
}

// Valid reports whether s is a member of the closed slot set.
func (s Slot) Valid() bool {
	return s >= 0 && s < slotCount
}

// Column returns the database column holding the channel id for this slot.
func (s Slot) Column() string {
	return slotColumns[s]
}

// Slot returns the channel slot this kind routes through.
func (k Kind) Slot() Slot {
	return kindSlots[k]
}
