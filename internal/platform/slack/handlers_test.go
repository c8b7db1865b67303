package slack

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/commlink/rollbot/internal/bot"
	"github.com/commlink/rollbot/internal/cache"
	"github.com/commlink/rollbot/internal/commlink"
	"github.com/commlink/rollbot/internal/game/campaign"
	"github.com/commlink/rollbot/internal/game/character"
	"github.com/commlink/rollbot/internal/game/combat"
	"github.com/commlink/rollbot/internal/game/dice"
	"github.com/commlink/rollbot/internal/game/roll"
)

const testSecret = "8f742231b10e8888abcd99yyyzzz85a5"

type scriptSource struct {
	faces []int
	i     int
}

func (s *scriptSource) Intn(int) int {
	v := s.faces[s.i%len(s.faces)]
	s.i++
	return v - 1
}

type stubCampaigns struct{ camp *campaign.Campaign }

func (s *stubCampaigns) GetCampaign(context.Context, string) (*campaign.Campaign, error) {
	return s.camp, nil
}

func (s *stubCampaigns) FindByChannel(_ context.Context, teamID, channelID string) (*campaign.Campaign, error) {
	if teamID == s.camp.Team && channelID == s.camp.Channel {
		return s.camp, nil
	}
	return nil, campaign.ErrNotFound
}

func (s *stubCampaigns) ListHandles(context.Context, string) ([]string, error) { return nil, nil }

type stubCharacters struct{ ch *character.Character }

func (s *stubCharacters) FindByUser(_ context.Context, _, userID string) (*character.Character, error) {
	if userID == "U1" {
		return s.ch, nil
	}
	return nil, commlink.ErrNotFound
}

func (s *stubCharacters) SpendEdge(context.Context, string) error { return nil }

func newTestHandler(faces ...int) *Handler {
	logger := zap.NewNop()
	mem := cache.NewMemory()
	env := roll.Env{
		Roller: dice.NewLoggedRoller(&scriptSource{faces: faces}, logger),
		Cache:  mem,
		Combat: combat.NewCoordinator(mem, logger),
		Logger: logger,
		Now:    time.Now,
	}
	campaigns := &stubCampaigns{camp: &campaign.Campaign{
		ID: "camp-1", Name: "Neon Shadows", Team: "T123", Channel: "C456",
	}}
	characters := &stubCharacters{ch: &character.Character{
		ID: "char-1", Handle: "Slamm-0", CampaignID: "camp-1", Edge: 5, EdgeCurrent: 3,
	}}
	dispatcher := bot.NewDispatcher(campaigns, characters, roll.NewRegistry(env, nil), logger)
	return NewHandler(dispatcher, testSecret, logger)
}

// signedRequest builds a form POST carrying a valid Slack signature.
func signedRequest(t *testing.T, path, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	ts := fmt.Sprintf("%d", time.Now().Unix())
	mac := hmac.New(sha256.New, []byte(testSecret))
	fmt.Fprintf(mac, "v0:%s:%s", ts, body)
	req.Header.Set("X-Slack-Request-Timestamp", ts)
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
	return req
}

func decodeMsg(t *testing.T, rec *httptest.ResponseRecorder) slack.Msg {
	t.Helper()
	var msg slack.Msg
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	return msg
}

func TestSlashCommand(t *testing.T) {
	h := newTestHandler(6, 5, 2, 1)
	form := url.Values{
		"team_id":    {"T123"},
		"channel_id": {"C456"},
		"user_id":    {"U1"},
		"command":    {"/roll"},
		"text":       {"4"},
	}

	rec := httptest.NewRecorder()
	h.handleSlashCommand(rec, signedRequest(t, "/slack/roll", form.Encode()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	msg := decodeMsg(t, rec)
	assert.Equal(t, slack.ResponseTypeInChannel, msg.ResponseType)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "Slamm-0 rolled 2 successes", msg.Attachments[0].Title)
}

func TestSlashCommandRejectsBadSignature(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/slack/roll", strings.NewReader("text=4"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Slack-Request-Timestamp", fmt.Sprintf("%d", time.Now().Unix()))
	req.Header.Set("X-Slack-Signature", "v0=deadbeef")

	rec := httptest.NewRecorder()
	h.handleSlashCommand(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSlashCommandUnregisteredChannel(t *testing.T) {
	h := newTestHandler()
	form := url.Values{
		"team_id":    {"T123"},
		"channel_id": {"Cnope"},
		"user_id":    {"U1"},
		"text":       {"4"},
	}

	rec := httptest.NewRecorder()
	h.handleSlashCommand(rec, signedRequest(t, "/slack/roll", form.Encode()))

	msg := decodeMsg(t, rec)
	assert.Equal(t, slack.ResponseTypeEphemeral, msg.ResponseType)
	assert.Equal(t, "Channel Not Registered", msg.Attachments[0].Title)
}

func TestInteractionReplaysButtonValue(t *testing.T) {
	// "second" replays Second Chance; with no banked roll that is a danger card.
	h := newTestHandler()
	payload := `{
		"type": "interactive_message",
		"callback_id": "Slamm-0",
		"team": {"id": "T123"},
		"channel": {"id": "C456"},
		"user": {"id": "U1"},
		"actions": [{"name": "edge", "type": "button", "value": "second"}]
	}`
	form := url.Values{"payload": {payload}}

	rec := httptest.NewRecorder()
	h.handleInteraction(rec, signedRequest(t, "/slack/interact", form.Encode()))

	require.Equal(t, http.StatusOK, rec.Code)
	msg := decodeMsg(t, rec)
	assert.Equal(t, "No Last Roll", msg.Attachments[0].Title)
}

func TestInteractionWithoutActions(t *testing.T) {
	h := newTestHandler()
	form := url.Values{"payload": {`{"type": "interactive_message", "callback_id": "x"}`}}

	rec := httptest.NewRecorder()
	h.handleInteraction(rec, signedRequest(t, "/slack/interact", form.Encode()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActionValuePrefersSelectedOption(t *testing.T) {
	payload := slack.InteractionCallback{}
	payload.ActionCallback.AttachmentActions = []*slack.AttachmentAction{{
		Name:            "spell",
		SelectedOptions: []slack.AttachmentActionOption{{Value: "cast fireball"}},
	}}
	v, ok := actionValue(payload)
	require.True(t, ok)
	assert.Equal(t, "cast fireball", v)
}
