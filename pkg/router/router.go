// Package router decides, per guild and event kind, whether a notification
// should be delivered and to which channel.
package router

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mkallio/guildlog/pkg/event"
	"github.com/mkallio/guildlog/pkg/logconfig"
	"github.com/mkallio/guildlog/pkg/registry"
)

// Reason explains why a routing decision suppressed delivery.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonUnconfigured
	ReasonDisabled
	ReasonNoChannel
	ReasonChannelUnavailable
	ReasonConfigUnavailable
)

var reasonNames = map[Reason]string{
	ReasonNone:               "none",
	ReasonUnconfigured:       "unconfigured",
	ReasonDisabled:           "disabled",
	ReasonNoChannel:          "no_channel",
	ReasonChannelUnavailable: "channel_unavailable",
	ReasonConfigUnavailable:  "config_unavailable",
}

// String returns the reason's label.
func (r Reason) String() string {
	if s, ok := reasonNames[r]; ok {
		return s
	}
	return "unknown"
}

// Decision is the outcome of resolving a guild + kind. Suppression is a
// value, not an error: every field combination is a normal result.
type Decision struct {
	Deliver   bool
	ChannelID uint64
	Reason    Reason // set when Deliver is false
}

func suppressed(reason Reason) Decision {
	return Decision{Reason: reason}
}

// Router resolves routing decisions against the config read path and the
// live channel registry. It holds no per-decision state; every event
// re-resolves because configuration and channel existence change between
// events.
type Router struct {
	configs  logconfig.Reader
	registry registry.ChannelRegistry
	logger   *slog.Logger
}

// New creates a Router.
func New(configs logconfig.Reader, reg registry.ChannelRegistry, logger *slog.Logger) *Router {
	return &Router{configs: configs, registry: reg, logger: logger}
}

// Resolve decides whether an event of the given kind in the given guild
// should produce a notification, and to which channel. A config store
// failure fails safe to suppression; the dispatch path never crashes on a
// bad read.
func (r *Router) Resolve(ctx context.Context, guildID uint64, kind event.Kind) Decision {
	cfg, err := r.configs.Get(ctx, guildID)
	if err != nil {
		if errors.Is(err, logconfig.ErrNotFound) {
			return suppressed(ReasonUnconfigured)
		}
		r.logger.Error("loading guild config, suppressing event",
			"error", err, "guild_id", guildID, "kind", kind.String())
		return suppressed(ReasonConfigUnavailable)
	}

	if !cfg.Enabled {
		return suppressed(ReasonDisabled)
	}

	channelID := cfg.ChannelFor(kind.Slot())
	if channelID == 0 {
		return suppressed(ReasonNoChannel)
	}

	exists, err := r.registry.ChannelExists(ctx, guildID, channelID)
	if err != nil {
		r.logger.Debug("channel lookup failed, suppressing event",
			"error", err, "guild_id", guildID, "channel_id", channelID)
		return suppressed(ReasonChannelUnavailable)
	}
	if !exists {
		return suppressed(ReasonChannelUnavailable)
	}

	return Decision{Deliver: true, ChannelID: channelID}
}
