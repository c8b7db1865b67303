// Package webhook posts JSON payloads to incoming-webhook URLs. Used to
// publish roll results to the channel when the triggering message was
// ephemeral.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// defaultTimeout bounds a webhook delivery.
const defaultTimeout = 10 * time.Second

// Poster delivers JSON bodies over HTTP.
type Poster struct {
	http   *http.Client
	logger *zap.Logger
}

// NewPoster creates a Poster. A zero timeout uses the default.
func NewPoster(timeout time.Duration, logger *zap.Logger) *Poster {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Poster{
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Post marshals body and delivers it to url.
//
// Postcondition: non-2xx responses are errors; the body is drained so the
// connection can be reused.
func (p *Poster) Post(ctx context.Context, url string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding webhook body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.logger.Warn("webhook delivery failed",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
