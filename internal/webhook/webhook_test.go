package webhook

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/mkallio/guildlog/pkg/event"
)

// captureSink records events handed to the dispatcher.
type captureSink struct {
	mu     sync.Mutex
	events []event.Event
}

func (c *captureSink) Go(_ context.Context, e event.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureSink) all() []event.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]event.Event(nil), c.events...)
}

func post(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest("POST", "/events", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, r)
	return w
}

func newHandler(sink *captureSink) *Handler {
	return NewHandler(sink, slog.New(slog.DiscardHandler))
}

func TestHandleEventAccepted(t *testing.T) {
	sink := &captureSink{}
	h := newHandler(sink)

	w := post(t, h, `{
		"kind": "user_banned",
		"guild_id": 1,
		"actor": {"id": 2, "username": "floof", "avatar_url": "https://cdn.example.com/a.png"}
	}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	events := sink.all()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	e := events[0]
	if e.Kind != event.UserBanned || e.GuildID != 1 || e.Actor.ID != 2 {
		t.Errorf("event = %+v", e)
	}
}

func TestHandleEventUnknownKind(t *testing.T) {
	sink := &captureSink{}
	h := newHandler(sink)

	w := post(t, h, `{"kind": "message_exploded", "guild_id": 1, "actor": {"id": 2}}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if len(sink.all()) != 0 {
		t.Error("invalid kind must not reach the dispatcher")
	}
}

func TestHandleEventMissingKind(t *testing.T) {
	sink := &captureSink{}
	h := newHandler(sink)

	w := post(t, h, `{"guild_id": 1, "actor": {"id": 2}}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
}

func TestEnvelopeMapsOptionalFields(t *testing.T) {
	env := Envelope{
		Kind:      "message_edited",
		GuildID:   1,
		ChannelID: 5,
		Actor:     ActorPayload{ID: 2, Username: "u"},
		Before:    &MessagePayload{Content: "old"},
		After:     &MessagePayload{Content: "new"},
		Moderator: &ActorPayload{ID: 3, Username: "mod"},
	}
	e := env.Event(event.MessageEdited)

	if e.Before == nil || e.Before.Content != "old" {
		t.Errorf("before = %+v", e.Before)
	}
	if e.After == nil || e.After.Content != "new" {
		t.Errorf("after = %+v", e.After)
	}
	if e.Moderator == nil || e.Moderator.ID != 3 {
		t.Errorf("moderator = %+v", e.Moderator)
	}
}

func TestEnvelopeAbsentSnapshotsStayNil(t *testing.T) {
	env := Envelope{Kind: "message_deleted", GuildID: 1, Actor: ActorPayload{ID: 2}}
	e := env.Event(event.MessageDeleted)
	if e.Before != nil || e.After != nil || e.ProfileBefore != nil || e.Moderator != nil {
		t.Errorf("absent payload fields must map to nil, got %+v", e)
	}
}
