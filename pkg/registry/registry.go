// Package registry answers "does this channel still exist in this guild?".
// Channel existence is checked live on every routing decision because
// channels can be deleted or access revoked between events.
package registry

import (
	"context"
	"strconv"

	"github.com/slack-go/slack"
)

// ChannelRegistry resolves a configured channel id against the live guild.
// A false result is a normal suppression outcome, not an error.
type ChannelRegistry interface {
	ChannelExists(ctx context.Context, guildID, channelID uint64) (bool, error)
}

// SlackRegistry resolves channels through the Slack conversations API.
type SlackRegistry struct {
	client *slack.Client
}

// NewSlackRegistry creates a registry backed by the given Slack client.
func NewSlackRegistry(client *slack.Client) *SlackRegistry {
	return &SlackRegistry{client: client}
}

// ChannelExists reports whether the channel is visible to the bot. Lookup
// failures (deleted channel, missing access) report false without error;
// only transport-level failures surface as errors.
func (r *SlackRegistry) ChannelExists(ctx context.Context, _, channelID uint64) (bool, error) {
	if r.client == nil {
		return false, nil
	}

	info, err := r.client.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
		ChannelID: strconv.FormatUint(channelID, 10),
	})
	if err != nil {
		// The API reports unknown channels as an error string rather than
		// a typed error; treat any lookup failure as "not resolvable".
		return false, nil
	}
	return info != nil && !info.IsArchived, nil
}

// AllowAll resolves every non-zero channel. Used when no messaging backend
// is configured, so local runs still exercise the full pipeline against the
// noop sender.
type AllowAll struct{}

// ChannelExists implements ChannelRegistry.
func (AllowAll) ChannelExists(_ context.Context, _, channelID uint64) (bool, error) {
	return channelID != 0, nil
}

// Static is a fixed in-memory registry, used in tests and local development.
type Static struct {
	channels map[uint64]map[uint64]bool // guild -> channel -> exists
}

// NewStatic creates a Static registry.
func NewStatic() *Static {
	return &Static{channels: make(map[uint64]map[uint64]bool)}
}

// Add marks a channel as existing in a guild.
func (s *Static) Add(guildID, channelID uint64) {
	if s.channels[guildID] == nil {
		s.channels[guildID] = make(map[uint64]bool)
	}
	s.channels[guildID][channelID] = true
}

// Remove marks a channel as gone.
func (s *Static) Remove(guildID, channelID uint64) {
	delete(s.channels[guildID], channelID)
}

// ChannelExists implements ChannelRegistry.
func (s *Static) ChannelExists(_ context.Context, guildID, channelID uint64) (bool, error) {
	return s.channels[guildID][channelID], nil
}
