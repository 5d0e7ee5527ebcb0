package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testSigningSecret = "8f742231b10e8888abcd99yyyzzz85a5"

func signedHeader(t *testing.T, secret, body string, ts time.Time) http.Header {
	t.Helper()

	timestamp := strconv.FormatInt(ts.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)

	header := http.Header{}
	header.Set("X-Slack-Request-Timestamp", timestamp)
	header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
	return header
}

func TestVerifyRequest(t *testing.T) {
	body := "command=%2Fcal&text=&user_id=U12345"
	header := signedHeader(t, testSigningSecret, body, time.Now())

	assert.NoError(t, VerifyRequest(header, []byte(body), testSigningSecret))
}

func TestVerifyRequest_WrongSecret(t *testing.T) {
	body := "command=%2Fcal&text="
	header := signedHeader(t, "other-secret", body, time.Now())

	assert.Error(t, VerifyRequest(header, []byte(body), testSigningSecret))
}

func TestVerifyRequest_TamperedBody(t *testing.T) {
	body := "command=%2Fcal&text="
	header := signedHeader(t, testSigningSecret, body, time.Now())

	assert.Error(t, VerifyRequest(header, []byte(body+"&user_id=U999"), testSigningSecret))
}

func TestVerifyRequest_StaleTimestamp(t *testing.T) {
	// Replay protection: correctly signed requests older than five minutes
	// are rejected.
	body := "command=%2Fcal&text="
	header := signedHeader(t, testSigningSecret, body, time.Now().Add(-6*time.Minute))

	assert.Error(t, VerifyRequest(header, []byte(body), testSigningSecret))
}

func TestVerifyRequest_MissingHeaders(t *testing.T) {
	assert.Error(t, VerifyRequest(http.Header{}, []byte("body"), testSigningSecret))
}
