// Package dispatch runs the per-event pipeline: validate the payload for
// its kind, resolve the routing decision, render, and deliver. Every event
// is an independent unit of work; a fault in one guild's handling never
// reaches another's.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mkallio/guildlog/pkg/event"
	"github.com/mkallio/guildlog/pkg/notify"
	"github.com/mkallio/guildlog/pkg/router"
)

// deliveryTimeout bounds a single send. A timed-out delivery is treated
// identically to a failed one: logged and swallowed.
const deliveryTimeout = 10 * time.Second

// Resolver is the routing decision engine. Satisfied by router.Router.
type Resolver interface {
	Resolve(ctx context.Context, guildID uint64, kind event.Kind) router.Decision
}

// Metrics holds the counters the dispatcher increments. Any field may be
// nil (in tests).
type Metrics struct {
	Received         *prometheus.CounterVec // labels: kind
	Outcomes         *prometheus.CounterVec // labels: kind, status
	DeliveryDuration prometheus.Histogram
}

// Dispatcher routes observed events to notification delivery.
type Dispatcher struct {
	router  Resolver
	sender  notify.Sender
	logger  *slog.Logger
	metrics Metrics
}

// New creates a Dispatcher.
func New(r Resolver, sender notify.Sender, logger *slog.Logger, metrics Metrics) *Dispatcher {
	return &Dispatcher{router: r, sender: sender, logger: logger, metrics: metrics}
}

// Go processes the event in its own goroutine. The caller's context is
// detached so an already-answered inbound request does not cancel delivery.
func (d *Dispatcher) Go(ctx context.Context, e event.Event) {
	go d.Dispatch(context.WithoutCancel(ctx), e)
}

// Dispatch processes one event to a terminal outcome. It never panics and
// never returns an error: the process-wide failure mode is a missed
// notification, not a crash.
func (d *Dispatcher) Dispatch(ctx context.Context, e event.Event) (out Outcome) {
	kindLabel := e.Kind.String()
	d.count(d.metrics.Received, kindLabel)

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("panic in event handler",
				"panic", r, "guild_id", e.GuildID, "kind", kindLabel)
			out = Outcome{Status: StatusFailed, Detail: "handler panic"}
		}
		d.count(d.metrics.Outcomes, kindLabel, out.Status.String())
	}()

	out = d.handle(ctx, e)
	return out
}

func (d *Dispatcher) handle(ctx context.Context, e event.Event) Outcome {
	if !e.Kind.Valid() {
		d.logger.Error("event with unknown kind, suppressing",
			"kind", int(e.Kind), "guild_id", e.GuildID)
		return suppressed("unknown_kind")
	}
	if e.GuildID == 0 {
		// Not attributable to a guild (e.g. a direct message context).
		return suppressed("no_guild_context")
	}
	if reason, ok := validate(e); !ok {
		return suppressed(reason)
	}

	decision := d.router.Resolve(ctx, e.GuildID, e.Kind)
	if !decision.Deliver {
		return suppressed(decision.Reason.String())
	}

	content, ok := notify.Render(e)
	if !ok {
		if e.Kind == event.MemberProfileUpdated {
			return suppressed("no_change")
		}
		d.logger.Error("no rendering rule for event kind, suppressing",
			"kind", e.Kind.String(), "guild_id", e.GuildID)
		return suppressed("no_render_rule")
	}

	sendCtx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	start := time.Now()
	err := d.sender.Send(sendCtx, decision.ChannelID, content)
	if d.metrics.DeliveryDuration != nil {
		d.metrics.DeliveryDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		// Swallowed: one guild's delivery failure must never affect
		// another event. No retry.
		d.logger.Warn("notification delivery failed",
			"error", err, "guild_id", e.GuildID, "kind", e.Kind.String(),
			"channel_id", decision.ChannelID)
		return Outcome{Status: StatusFailed, Detail: "delivery failed", ChannelID: decision.ChannelID}
	}

	return Outcome{Status: StatusDelivered, ChannelID: decision.ChannelID}
}

// validate applies the per-kind completeness rules. A false result is a
// suppression, never an error: the gateway legitimately omits the "before"
// state of messages it never cached.
func validate(e event.Event) (string, bool) {
	switch e.Kind {
	case event.MessageEdited:
		if e.Before == nil || e.After == nil {
			return "missing_before_state", false
		}
		if e.ChannelID == 0 {
			return "not_guild_channel", false
		}
		if e.Before.Content == e.After.Content {
			// Embed-only update or similar: no visible text change.
			return "no_change", false
		}
	case event.MessageDeleted, event.MessageDeletedByBot:
		if e.Before == nil {
			return "missing_before_state", false
		}
		if e.ChannelID == 0 {
			return "not_guild_channel", false
		}
	case event.MemberProfileUpdated:
		if e.ProfileBefore == nil || e.ProfileAfter == nil {
			return "missing_profile_snapshot", false
		}
	}
	return "", true
}

func (d *Dispatcher) count(vec *prometheus.CounterVec, labels ...string) {
	if vec != nil {
		vec.WithLabelValues(labels...).Inc()
	}
}
