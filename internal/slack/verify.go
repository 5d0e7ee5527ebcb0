package slack

import (
	"fmt"
	"net/http"

	"github.com/slack-go/slack"
)

// VerifyRequest checks the Slack signature headers (X-Slack-Signature,
// X-Slack-Request-Timestamp) against the raw request body. Requests with a
// timestamp more than five minutes old are rejected to block replays; a
// signature mismatch returns an error and the request must be answered
// with 401.
func VerifyRequest(header http.Header, body []byte, signingSecret string) error {
	verifier, err := slack.NewSecretsVerifier(header, signingSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize signature verifier: %w", err)
	}
	if _, err := verifier.Write(body); err != nil {
		return fmt.Errorf("failed to hash request body: %w", err)
	}
	if err := verifier.Ensure(); err != nil {
		return fmt.Errorf("signature mismatch: %w", err)
	}
	return nil
}
