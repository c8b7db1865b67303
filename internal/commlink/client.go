// Package commlink is the client for the remote character service. Every
// request carries a short-lived HS256 token so a leaked log line never yields
// a replayable credential.
package commlink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/commlink/rollbot/internal/config"
	"github.com/commlink/rollbot/internal/game/character"
)

// tokenTTL is the lifetime of a per-request token.
const tokenTTL = 60 * time.Second

var (
	// ErrNotFound is returned when the service has no matching character.
	ErrNotFound = errors.New("commlink: character not found")
	// ErrUnauthorized is returned when the service rejects the request token.
	ErrUnauthorized = errors.New("commlink: unauthorized")
)

// Client talks to the character service.
type Client struct {
	base   string
	issuer string
	secret []byte
	http   *http.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewClient creates a Client from configuration.
//
// Precondition: cfg must have passed config validation; logger must be non-nil.
func NewClient(cfg config.CommlinkConfig, logger *zap.Logger) *Client {
	return &Client{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		issuer: cfg.Issuer,
		secret: []byte(cfg.Secret),
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		now:    time.Now,
	}
}

// GetCharacter fetches a character snapshot by ID.
//
// Postcondition: ErrNotFound / ErrUnauthorized on the matching HTTP statuses.
func (c *Client) GetCharacter(ctx context.Context, id string) (*character.Character, error) {
	var ch character.Character
	path := fmt.Sprintf("/characters/%s", url.PathEscape(id))
	if err := c.do(ctx, http.MethodGet, path, nil, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// FindByUser resolves the character a chat user plays in a campaign.
//
// Postcondition: ErrNotFound when the user has no character there; callers
// fall back to the GM sentinel.
func (c *Client) FindByUser(ctx context.Context, campaignID, userID string) (*character.Character, error) {
	var ch character.Character
	path := fmt.Sprintf("/campaigns/%s/characters?user=%s",
		url.PathEscape(campaignID), url.QueryEscape(userID))
	if err := c.do(ctx, http.MethodGet, path, nil, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// SpendEdge persists the decrement-by-one edge intent a roll emitted.
//
// Postcondition: the service owns the authoritative edge value; this client
// never computes it locally beyond the single decrement.
func (c *Client) SpendEdge(ctx context.Context, id string) error {
	path := fmt.Sprintf("/characters/%s/edge", url.PathEscape(id))
	body := strings.NewReader(`{"spend":1}`)
	return c.do(ctx, http.MethodPatch, path, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	token, err := c.token()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("character service request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		c.logger.Warn("character service rejected token", zap.Int("status", resp.StatusCode))
		return ErrUnauthorized
	case resp.StatusCode >= 300:
		return fmt.Errorf("character service returned %d", resp.StatusCode)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding character service response: %w", err)
	}
	return nil
}

// token mints the per-request credential: issuer and audience pin it to this
// deployment, the sixty-second expiry keeps it useless shortly after.
func (c *Client) token() (string, error) {
	now := c.now()
	claims := jwt.MapClaims{
		"iss":   c.issuer,
		"aud":   c.base,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
		"email": c.issuer,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}
