package logconfig

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mkallio/guildlog/internal/audit"
	"github.com/mkallio/guildlog/pkg/event"
)

// fakeConfigurator is an in-memory Configurator.
type fakeConfigurator struct {
	configs map[uint64]*GuildConfig
	err     error
}

func (f *fakeConfigurator) Get(_ context.Context, guildID uint64) (*GuildConfig, error) {
	if f.err != nil {
		return nil, f.err
	}
	cfg, ok := f.configs[guildID]
	if !ok {
		return nil, ErrNotFound
	}
	return cfg, nil
}

func (f *fakeConfigurator) SetChannel(_ context.Context, guildID uint64, slot event.Slot, channelID uint64) error {
	if f.err != nil {
		return f.err
	}
	cfg, ok := f.configs[guildID]
	if !ok {
		cfg = &GuildConfig{GuildID: guildID}
		f.configs[guildID] = cfg
	}
	cfg.Channels[slot] = channelID
	return nil
}

func (f *fakeConfigurator) Toggle(_ context.Context, guildID uint64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	cfg, ok := f.configs[guildID]
	if !ok {
		cfg = &GuildConfig{GuildID: guildID}
		f.configs[guildID] = cfg
	}
	cfg.Enabled = !cfg.Enabled
	return cfg.Enabled, nil
}

func newTestHandler(f *fakeConfigurator) *Handler {
	logger := slog.New(slog.DiscardHandler)
	return NewHandler(f, logger, audit.NewWriter(nil, logger))
}

func do(t *testing.T, h *Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, r)
	return w
}

func TestSetChannel(t *testing.T) {
	f := &fakeConfigurator{configs: map[uint64]*GuildConfig{}}
	h := newTestHandler(f)

	w := do(t, h, "PUT", "/1/logging/channel", `{"kind":"user_banned","channel_id":42}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if got := f.configs[1].Channels[event.SlotUserBanned]; got != 42 {
		t.Errorf("stored channel = %d, want 42", got)
	}
	if !strings.Contains(w.Body.String(), "Channel updated!") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestSetChannelUnknownKind(t *testing.T) {
	f := &fakeConfigurator{configs: map[uint64]*GuildConfig{}}
	h := newTestHandler(f)

	w := do(t, h, "PUT", "/1/logging/channel", `{"kind":"message_exploded","channel_id":42}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSetChannelInvalidGuildID(t *testing.T) {
	f := &fakeConfigurator{configs: map[uint64]*GuildConfig{}}
	h := newTestHandler(f)

	for _, path := range []string{"/abc/logging/channel", "/0/logging/channel"} {
		w := do(t, h, "PUT", path, `{"kind":"user_banned","channel_id":42}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, w.Code)
		}
	}
}

func TestToggleFlipsAndReports(t *testing.T) {
	f := &fakeConfigurator{configs: map[uint64]*GuildConfig{}}
	h := newTestHandler(f)

	w := do(t, h, "POST", "/1/logging/toggle", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"enabled":true`) || !strings.Contains(w.Body.String(), "Logger Enabled!") {
		t.Errorf("body = %s", w.Body.String())
	}

	w = do(t, h, "POST", "/1/logging/toggle", "")
	if !strings.Contains(w.Body.String(), `"enabled":false`) || !strings.Contains(w.Body.String(), "Logger Disabled!") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestGetUnconfigured(t *testing.T) {
	f := &fakeConfigurator{configs: map[uint64]*GuildConfig{}}
	h := newTestHandler(f)

	w := do(t, h, "GET", "/1/logging", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetReturnsAllKinds(t *testing.T) {
	cfg := &GuildConfig{GuildID: 1, Enabled: true}
	cfg.Channels[event.SlotUserBanned] = 42
	f := &fakeConfigurator{configs: map[uint64]*GuildConfig{1: cfg}}
	h := newTestHandler(f)

	w := do(t, h, "GET", "/1/logging", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	body := w.Body.String()
	for _, k := range event.Kinds() {
		if !strings.Contains(body, fmt.Sprintf("%q", k.String())) {
			t.Errorf("response missing kind %s: %s", k, body)
		}
	}
	// Shared slot: both ban kinds report channel 42.
	if !strings.Contains(body, `"user_banned":"42"`) || !strings.Contains(body, `"user_banned_by_bot":"42"`) {
		t.Errorf("shared slot not reflected: %s", body)
	}
}
