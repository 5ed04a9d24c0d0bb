// Package logconfig stores the per-guild logging configuration: a master
// enabled switch and one destination channel per event slot.
package logconfig

import (
	"context"
	"errors"

	"github.com/mkallio/guildlog/pkg/event"
)

// ErrNotFound is returned by Get when a guild has never been configured.
var ErrNotFound = errors.New("guild log config not found")

// GuildConfig is the durable configuration record for one guild.
// A channel id of 0 means the slot is unset.
type GuildConfig struct {
	GuildID  uint64
	Enabled  bool
	Channels [10]uint64 // indexed by event.Slot
}

// ChannelFor returns the configured channel for a slot, 0 if unset.
func (c *GuildConfig) ChannelFor(slot event.Slot) uint64 {
	if !slot.Valid() {
		return 0
	}
	return c.Channels[slot]
}

// Reader is the read path the router depends on. Both the Store and the
// Cache satisfy it.
type Reader interface {
	// Get returns the guild's config, or ErrNotFound if never configured.
	Get(ctx context.Context, guildID uint64) (*GuildConfig, error)
}
