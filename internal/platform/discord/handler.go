package discord

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/commlink/rollbot/internal/bot"
	"github.com/commlink/rollbot/internal/config"
)

// dispatchTimeout bounds the work done for a single gateway message.
const dispatchTimeout = 10 * time.Second

// Handler listens for prefixed roll commands on the Discord gateway and
// replies in the originating channel. Interactive prompts (spell pickers,
// edge buttons) are a Slack-only affordance; Discord users type the full
// command instead.
type Handler struct {
	dispatcher *bot.Dispatcher
	session    *discordgo.Session
	prefix     string
	logger     *zap.Logger
	done       chan struct{}
}

// NewHandler creates a Handler over a fresh gateway session. The connection
// is opened by Listen.
//
// Precondition: dispatcher and logger must be non-nil; cfg.Token must be set.
func NewHandler(cfg config.DiscordConfig, dispatcher *bot.Dispatcher, logger *zap.Logger) (*Handler, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, err
	}
	h := &Handler{
		dispatcher: dispatcher,
		session:    session,
		prefix:     cfg.CommandPrefix,
		logger:     logger,
		done:       make(chan struct{}),
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages
	session.AddHandler(h.onMessage)
	return h, nil
}

// Listen opens the gateway connection and blocks until Shutdown.
func (h *Handler) Listen() error {
	if err := h.session.Open(); err != nil {
		return err
	}
	<-h.done
	return nil
}

// Shutdown closes the gateway connection and unblocks Listen.
func (h *Handler) Shutdown(context.Context) error {
	err := h.session.Close()
	close(h.done)
	return err
}

// onMessage handles one guild message, ignoring everything that is not a
// prefixed command from a human in a guild channel.
func (h *Handler) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if m.GuildID == "" {
		// DMs have no guild, so no campaign can be bound.
		return
	}
	text, ok := strings.CutPrefix(m.Content, h.prefix)
	if !ok {
		return
	}
	text = strings.TrimSpace(text)

	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	res := h.dispatcher.Dispatch(ctx, bot.Event{
		TeamID:    m.GuildID,
		ChannelID: m.ChannelID,
		UserID:    m.Author.ID,
		Text:      text,
	})
	if _, err := s.ChannelMessageSend(m.ChannelID, Render(res)); err != nil {
		h.logger.Error("sending reply failed",
			zap.String("channelId", m.ChannelID),
			zap.Error(err),
		)
	}
}
