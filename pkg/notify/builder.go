package notify

import (
	"fmt"
	"time"

	"github.com/mkallio/guildlog/pkg/event"
)

const timeLayout = "2006-01-02 15:04:05 MST"

// Render builds the notification content for an event. It is pure apart
// from the footer timestamp. The second return is false when there is
// nothing to render: a profile update with no visible change, or a kind
// with no rendering rule (an internal invariant violation the dispatcher
// logs and suppresses).
func Render(e event.Event) (*Content, bool) {
	switch e.Kind {
	case event.MessageEdited:
		return messageEdited(e), true
	case event.MessageDeleted:
		return messageDeleted(e, false), true
	case event.MessageDeletedByBot:
		return messageDeleted(e, true), true
	case event.UserBanned:
		return userBanned(e, false), true
	case event.UserBannedByBot:
		return userBanned(e, true), true
	case event.UserUnbanned:
		return userAction(e, "♻️ User Unbanned", ColorWarning, nil), true
	case event.UserJoined:
		return userJoined(e), true
	case event.UserLeft:
		return userAction(e, "❌ User Left", ColorDanger, nil), true
	case event.MemberProfileUpdated:
		return memberProfileUpdated(e)
	case event.UserKicked:
		return moderatorAction(e, "\U0001F462 User Kicked", ColorDanger, "Kicked By"), true
	case event.UserMuted:
		return moderatorAction(e, "\U0001F507 User Muted", ColorNeutral, "Muted By"), true
	case event.UserUnmuted:
		return moderatorAction(e, "\U0001F50A User Unmuted", ColorNeutral, "Unmuted By"), true
	default:
		return nil, false
	}
}

// base fills the fields every notification shares.
func base(e event.Event, title string, color Color) *Content {
	c := &Content{
		Title:      fmt.Sprintf("%s | %s", title, e.Actor.Username),
		Color:      color,
		FooterTime: time.Now(),
	}
	if wellFormedAbsoluteURL(e.Actor.AvatarURL) {
		c.ThumbnailURL = e.Actor.AvatarURL
	}
	return c
}

func messageEdited(e event.Event) *Content {
	c := base(e, "⚠️ Message Edited", ColorNeutral)
	c.Description = fmt.Sprintf("%s (%d) has edited their message in <#%d>!", e.Actor.Mention(), e.Actor.ID, e.ChannelID)
	c.Fields = []Field{
		{Label: "Before", Value: e.Before.Content},
		{Label: "After", Value: e.After.Content},
	}
	return c
}

func messageDeleted(e event.Event, byBot bool) *Content {
	title := "⚠️ Message Deleted"
	if byBot {
		title = "⚠️ Message Deleted By Bot"
	}
	c := base(e, title, ColorWarning)
	c.Description = fmt.Sprintf("%s (%d) has had their message deleted in <#%d>!", e.Actor.Mention(), e.Actor.ID, e.ChannelID)
	c.Fields = []Field{{Label: "Content", Value: e.Before.Content}}
	if byBot {
		c.Fields = append(c.Fields, Field{Label: "Reason", Value: reasonOrDefault(e.Reason)})
	}
	return c
}

func userBanned(e event.Event, byBot bool) *Content {
	c := base(e, "\U0001F528 User Banned", ColorDanger)
	c.Description = fmt.Sprintf("%s | `%d`", e.Actor.Mention(), e.Actor.ID)
	if byBot {
		c.Fields = []Field{{Label: "Reason", Value: reasonOrDefault(e.Reason)}}
	}
	return c
}

// userAction renders the common mention-and-id body with optional fields.
func userAction(e event.Event, title string, color Color, fields []Field) *Content {
	c := base(e, title, color)
	c.Description = fmt.Sprintf("%s | `%d`", e.Actor.Mention(), e.Actor.ID)
	c.Fields = fields
	return c
}

func userJoined(e event.Event) *Content {
	return userAction(e, "✅ User Joined", ColorPositive, []Field{
		{Label: "Joined Guild", Value: e.JoinedAt.Format(timeLayout)},
		{Label: "Account Created", Value: e.CreatedAt.Format(timeLayout)},
	})
}

func moderatorAction(e event.Event, title string, color Color, label string) *Content {
	moderator := "unknown"
	if e.Moderator != nil {
		moderator = e.Moderator.Mention()
	}
	return userAction(e, title, color, []Field{{Label: label, Value: moderator}})
}

// memberProfileUpdated diffs the before/after profile and renders only the
// first field that differs, in priority order: username, nickname, avatar.
// No difference means nothing to render.
func memberProfileUpdated(e event.Event) (*Content, bool) {
	before, after := e.ProfileBefore, e.ProfileAfter
	if before == nil || after == nil {
		return nil, false
	}

	switch {
	case before.Username != after.Username:
		c := base(e, "\U0001F465 Username Changed", ColorAccent)
		c.Description = fmt.Sprintf("%s | `%d`", e.Actor.Mention(), e.Actor.ID)
		c.Fields = []Field{
			{Label: "Old Username", Value: before.Username},
			{Label: "New Username", Value: after.Username},
		}
		return c, true

	case before.Nickname != after.Nickname:
		c := base(e, "\U0001F465 Nickname Changed", ColorAccent)
		c.Description = fmt.Sprintf("%s | `%d`", e.Actor.Mention(), e.Actor.ID)
		c.Fields = []Field{
			{Label: "Old Nickname", Value: before.Nickname},
			{Label: "New Nickname", Value: after.Nickname},
		}
		return c, true

	case before.AvatarRef != after.AvatarRef:
		c := &Content{
			Title:       fmt.Sprintf("\U0001F5BC️ Avatar Changed | %s", e.Actor.Username),
			Color:       ColorAccent,
			Description: fmt.Sprintf("%s | `%d`", e.Actor.Mention(), e.Actor.ID),
			FooterTime:  time.Now(),
		}
		// Thumbnail shows the old avatar, image the new one; each URL is
		// independently subject to the well-formedness rule.
		if wellFormedAbsoluteURL(before.AvatarURL) {
			c.ThumbnailURL = before.AvatarURL
		}
		if wellFormedAbsoluteURL(after.AvatarURL) {
			c.ImageURL = after.AvatarURL
		}
		return c, true

	default:
		return nil, false
	}
}

func reasonOrDefault(reason string) string {
	if reason == "" {
		return "N/A"
	}
	return reason
}
