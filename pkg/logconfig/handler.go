package logconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mkallio/guildlog/internal/audit"
	"github.com/mkallio/guildlog/internal/httpserver"
	"github.com/mkallio/guildlog/pkg/event"
)

// Configurator is the mutation surface the admin API operates through.
// Satisfied by Cache (write-through with invalidation).
type Configurator interface {
	Get(ctx context.Context, guildID uint64) (*GuildConfig, error)
	SetChannel(ctx context.Context, guildID uint64, slot event.Slot, channelID uint64) error
	Toggle(ctx context.Context, guildID uint64) (bool, error)
}

// Handler exposes the administrator command surface over HTTP.
type Handler struct {
	cfg    Configurator
	logger *slog.Logger
	audit  *audit.Writer
}

// NewHandler creates a logconfig Handler.
func NewHandler(cfg Configurator, logger *slog.Logger, auditWriter *audit.Writer) *Handler {
	return &Handler{cfg: cfg, logger: logger, audit: auditWriter}
}

// Routes returns the chi router for guild logging configuration.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{guildID}/logging", h.handleGet)
	r.Put("/{guildID}/logging/channel", h.handleSetChannel)
	r.Post("/{guildID}/logging/toggle", h.handleToggle)
	return r
}

// SetChannelRequest is the payload for PUT /{guildID}/logging/channel.
// A channel_id of 0 clears the slot for that kind.
type SetChannelRequest struct {
	Kind      string `json:"kind" validate:"required"`
	ChannelID uint64 `json:"channel_id"`
}

// ConfigResponse is the JSON shape of a guild's logging configuration.
type ConfigResponse struct {
	GuildID  string            `json:"guild_id"`
	Enabled  bool              `json:"enabled"`
	Channels map[string]string `json:"channels"` // kind name -> channel id ("0" = unset)
}

func configResponse(cfg *GuildConfig) ConfigResponse {
	channels := make(map[string]string, len(event.Kinds()))
	for _, k := range event.Kinds() {
		channels[k.String()] = strconv.FormatUint(cfg.ChannelFor(k.Slot()), 10)
	}
	return ConfigResponse{
		GuildID:  strconv.FormatUint(cfg.GuildID, 10),
		Enabled:  cfg.Enabled,
		Channels: channels,
	}
}

func guildIDParam(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "guildID")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid guild id %q", raw)
	}
	return id, nil
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	guildID, err := guildIDParam(r)
	if err != nil {
		httpserver.RespondError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	cfg, err := h.cfg.Get(r.Context(), guildID)
	if err != nil {
		if err == ErrNotFound {
			httpserver.RespondError(w, http.StatusNotFound, "not_found", "guild has no logging configuration")
			return
		}
		h.logger.Error("fetching guild config", "error", err, "guild_id", guildID)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to load configuration")
		return
	}

	httpserver.Respond(w, http.StatusOK, configResponse(cfg))
}

func (h *Handler) handleSetChannel(w http.ResponseWriter, r *http.Request) {
	guildID, err := guildIDParam(r)
	if err != nil {
		httpserver.RespondError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	var req SetChannelRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	kind, err := event.ParseKind(req.Kind)
	if err != nil {
		httpserver.RespondError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	if err := h.cfg.SetChannel(r.Context(), guildID, kind.Slot(), req.ChannelID); err != nil {
		h.logger.Error("setting log channel", "error", err, "guild_id", guildID, "kind", kind)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to update channel")
		return
	}

	detail, _ := json.Marshal(map[string]any{
		"kind":       kind.String(),
		"slot":       kind.Slot().Column(),
		"channel_id": strconv.FormatUint(req.ChannelID, 10),
	})
	h.audit.Log(audit.Entry{GuildID: guildID, Action: "logging.set_channel", Detail: detail})

	httpserver.Respond(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Channel updated! Set %s to <#%d>", kind.Slot().Column(), req.ChannelID),
	})
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	guildID, err := guildIDParam(r)
	if err != nil {
		httpserver.RespondError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	enabled, err := h.cfg.Toggle(r.Context(), guildID)
	if err != nil {
		h.logger.Error("toggling logger", "error", err, "guild_id", guildID)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to toggle logger")
		return
	}

	detail, _ := json.Marshal(map[string]bool{"enabled": enabled})
	h.audit.Log(audit.Entry{GuildID: guildID, Action: "logging.toggle", Detail: detail})

	msg := "Logger Disabled!"
	if enabled {
		msg = "Logger Enabled!"
	}
	httpserver.Respond(w, http.StatusOK, map[string]any{
		"enabled": enabled,
		"message": msg,
	})
}
