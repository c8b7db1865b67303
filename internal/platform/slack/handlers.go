package slack

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/commlink/rollbot/internal/bot"
)

// Handler serves Slack's slash-command and interactive-message callbacks.
type Handler struct {
	dispatcher    *bot.Dispatcher
	signingSecret string
	logger        *zap.Logger
}

// NewHandler creates a Handler.
//
// Precondition: dispatcher and logger must be non-nil.
func NewHandler(dispatcher *bot.Dispatcher, signingSecret string, logger *zap.Logger) *Handler {
	return &Handler{
		dispatcher:    dispatcher,
		signingSecret: signingSecret,
		logger:        logger,
	}
}

// Register mounts the Slack endpoints on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /slack/roll", h.handleSlashCommand)
	mux.HandleFunc("POST /slack/interact", h.handleInteraction)
}

// handleSlashCommand serves the /roll slash command.
func (h *Handler) handleSlashCommand(w http.ResponseWriter, r *http.Request) {
	body, ok := h.verify(w, r)
	if !ok {
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		h.logger.Warn("malformed slash command", zap.Error(err))
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	res := h.dispatcher.Dispatch(r.Context(), bot.Event{
		TeamID:    cmd.TeamID,
		ChannelID: cmd.ChannelID,
		UserID:    cmd.UserID,
		Text:      cmd.Text,
	})
	h.respond(w, Render(res))
}

// handleInteraction serves button clicks and menu selections from previously
// posted interactive messages. The clicked action's value is replayed through
// the dispatcher as if the user had typed it.
func (h *Handler) handleInteraction(w http.ResponseWriter, r *http.Request) {
	body, ok := h.verify(w, r)
	if !ok {
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	var payload slack.InteractionCallback
	if err := json.Unmarshal([]byte(r.PostFormValue("payload")), &payload); err != nil {
		h.logger.Warn("malformed interaction payload", zap.Error(err))
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	text, ok := actionValue(payload)
	if !ok {
		h.logger.Warn("interaction carried no action",
			zap.String("callbackId", payload.CallbackID))
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	res := h.dispatcher.Dispatch(r.Context(), bot.Event{
		TeamID:    payload.Team.ID,
		ChannelID: payload.Channel.ID,
		UserID:    payload.User.ID,
		Text:      text,
	})
	h.respond(w, Render(res))
}

// verify checks the Slack request signature and returns the raw body.
func (h *Handler) verify(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return nil, false
	}
	sv, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return nil, false
	}
	if _, err := sv.Write(body); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return nil, false
	}
	if err := sv.Ensure(); err != nil {
		h.logger.Warn("request signature rejected", zap.Error(err))
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	return body, true
}

func (h *Handler) respond(w http.ResponseWriter, msg slack.Msg) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		h.logger.Error("writing response failed", zap.Error(err))
	}
}

// actionValue extracts the value of the clicked button or selected option.
func actionValue(payload slack.InteractionCallback) (string, bool) {
	for _, a := range payload.ActionCallback.AttachmentActions {
		if a == nil {
			continue
		}
		if len(a.SelectedOptions) > 0 {
			return a.SelectedOptions[0].Value, true
		}
		if a.Value != "" {
			return a.Value, true
		}
	}
	return "", false
}
