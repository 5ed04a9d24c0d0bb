// Package webhook receives lifecycle events from the gateway collaborator
// and hands them to the dispatcher. Delivery is best-effort, at most once:
// the endpoint acknowledges immediately and processes asynchronously.
package webhook

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mkallio/guildlog/internal/httpserver"
	"github.com/mkallio/guildlog/pkg/event"
)

// EventSink consumes validated events. Satisfied by dispatch.Dispatcher.
type EventSink interface {
	Go(ctx context.Context, e event.Event)
}

// Handler exposes the gateway event intake.
type Handler struct {
	sink   EventSink
	logger *slog.Logger
}

// NewHandler creates a webhook Handler.
func NewHandler(sink EventSink, logger *slog.Logger) *Handler {
	return &Handler{sink: sink, logger: logger}
}

// Routes returns the chi router for event intake.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/events", h.handleEvent)
	return r
}

// ActorPayload identifies the user an event is about.
type ActorPayload struct {
	ID        uint64 `json:"id" validate:"required"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// MessagePayload is a message snapshot; absent snapshots are null.
type MessagePayload struct {
	Content string `json:"content"`
}

// ProfilePayload is a member profile snapshot for profile-update events.
type ProfilePayload struct {
	Username  string `json:"username"`
	Nickname  string `json:"nickname"`
	AvatarRef string `json:"avatar_ref"`
	AvatarURL string `json:"avatar_url"`
}

// Envelope is the wire shape of one gateway event. Which optional fields
// are present depends on kind; per-kind completeness is the dispatcher's
// concern, not the wire format's.
type Envelope struct {
	Kind      string        `json:"kind" validate:"required"`
	GuildID   uint64        `json:"guild_id"`
	ChannelID uint64        `json:"channel_id"`
	Actor     ActorPayload  `json:"actor" validate:"required"`
	Moderator *ActorPayload `json:"moderator"`
	Reason    string        `json:"reason"`

	Before *MessagePayload `json:"before"`
	After  *MessagePayload `json:"after"`

	ProfileBefore *ProfilePayload `json:"profile_before"`
	ProfileAfter  *ProfilePayload `json:"profile_after"`

	JoinedAt  time.Time `json:"joined_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Event converts the envelope to the typed internal event.
func (env *Envelope) Event(kind event.Kind) event.Event {
	e := event.Event{
		Kind:      kind,
		GuildID:   env.GuildID,
		ChannelID: env.ChannelID,
		Actor: event.Actor{
			ID:        env.Actor.ID,
			Username:  env.Actor.Username,
			AvatarURL: env.Actor.AvatarURL,
		},
		Reason:    env.Reason,
		JoinedAt:  env.JoinedAt,
		CreatedAt: env.CreatedAt,
	}

	if env.Moderator != nil {
		e.Moderator = &event.Actor{
			ID:        env.Moderator.ID,
			Username:  env.Moderator.Username,
			AvatarURL: env.Moderator.AvatarURL,
		}
	}
	if env.Before != nil {
		e.Before = &event.Message{Content: env.Before.Content}
	}
	if env.After != nil {
		e.After = &event.Message{Content: env.After.Content}
	}
	if env.ProfileBefore != nil {
		e.ProfileBefore = profile(env.ProfileBefore)
	}
	if env.ProfileAfter != nil {
		e.ProfileAfter = profile(env.ProfileAfter)
	}
	return e
}

func profile(p *ProfilePayload) *event.Profile {
	return &event.Profile{
		Username:  p.Username,
		Nickname:  p.Nickname,
		AvatarRef: p.AvatarRef,
		AvatarURL: p.AvatarURL,
	}
}

func (h *Handler) handleEvent(w http.ResponseWriter, r *http.Request) {
	var env Envelope
	if !httpserver.DecodeAndValidate(w, r, &env) {
		return
	}

	kind, err := event.ParseKind(env.Kind)
	if err != nil {
		httpserver.RespondError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	h.sink.Go(r.Context(), env.Event(kind))

	httpserver.Respond(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
