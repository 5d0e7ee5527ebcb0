package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/slack-go/slack"
)

// defaultResponseTimeout bounds one delivery to a response_url.
const defaultResponseTimeout = 10 * time.Second

// Responder delivers messages to slash-command response URLs.
type Responder struct {
	httpClient *http.Client
}

// NewResponder creates a Responder with a sensible default HTTP client.
func NewResponder() *Responder {
	return &Responder{
		httpClient: &http.Client{Timeout: defaultResponseTimeout},
	}
}

// NewResponderWithClient creates a Responder with a caller-supplied HTTP
// client. Used by tests.
func NewResponderWithClient(client *http.Client) *Responder {
	return &Responder{httpClient: client}
}

// Respond posts the message as JSON to the given response_url.
func (r *Responder) Respond(ctx context.Context, responseURL string, msg slack.Msg) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode response message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, responseURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build response request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post to response_url: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("response_url returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
