package server

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/freeweek/internal/availability"
)

const testSigningSecret = "8f742231b10e8888abcd99yyyzzz85a5"

type fakeSource struct {
	busy []availability.BusyInterval
	err  error

	mu     sync.Mutex
	gotNow time.Time
}

func (f *fakeSource) FetchBusyIntervals(_ context.Context, now time.Time, _ int) ([]availability.BusyInterval, error) {
	f.mu.Lock()
	f.gotNow = now
	f.mu.Unlock()
	return f.busy, f.err
}

// blockingSource parks the fetch until released and surfaces any context
// cancellation that happened in the meantime as the fetch error.
type blockingSource struct {
	entered chan struct{}
	release chan struct{}
}

func newBlockingSource() *blockingSource {
	return &blockingSource{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (b *blockingSource) FetchBusyIntervals(ctx context.Context, _ time.Time, _ int) ([]availability.BusyInterval, error) {
	close(b.entered)
	select {
	case <-b.release:
		return nil, ctx.Err()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type fakeResponder struct {
	mu   sync.Mutex
	msgs []slackapi.Msg
	urls []string
	err  error
	sent chan struct{}
}

func newFakeResponder() *fakeResponder {
	return &fakeResponder{sent: make(chan struct{}, 8)}
}

func (f *fakeResponder) Respond(_ context.Context, responseURL string, msg slackapi.Msg) error {
	f.mu.Lock()
	f.msgs = append(f.msgs, msg)
	f.urls = append(f.urls, responseURL)
	f.mu.Unlock()
	f.sent <- struct{}{}
	return f.err
}

func (f *fakeResponder) wait(t *testing.T) slackapi.Msg {
	t.Helper()
	select {
	case <-f.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for response delivery")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.msgs[len(f.msgs)-1]
}

func testServer(t *testing.T, source BusySource, responder Responder) *Server {
	t.Helper()

	computer := availability.NewComputerAt(time.UTC, func() time.Time {
		return time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)
	})
	sc := NewServerContext(t.Context())
	return New(sc, Config{
		Addr:          ":0",
		SigningSecret: testSigningSecret,
		Days:          7,
	}, computer, source, responder)
}

func slashRequest(t *testing.T, text, responseURL string) *http.Request {
	t.Helper()

	form := fmt.Sprintf("command=%%2Fcal&text=%s&response_url=%s&user_id=U12345", text, responseURL)
	req := httptest.NewRequest(http.MethodPost, "/slack/command", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(testSigningSecret))
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, form)
	req.Header.Set("X-Slack-Request-Timestamp", timestamp)
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
	return req
}

func TestHandleSlashCommand_AcksImmediately(t *testing.T) {
	responder := newFakeResponder()
	srv := testServer(t, &fakeSource{}, responder)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, slashRequest(t, "", "https://hooks.example.com/r1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var ack slackapi.Msg
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.Equal(t, slackapi.ResponseTypeEphemeral, ack.ResponseType)
	assert.Equal(t, "空き時間を検索中...", ack.Text)

	responder.wait(t)
}

func TestHandleSlashCommand_SharesFreeSlots(t *testing.T) {
	busy := []availability.BusyInterval{
		{Date: "2026-01-05", StartMinutes: 600, EndMinutes: 1140},
		{Date: "2026-01-06", StartMinutes: 600, EndMinutes: 1140},
		{Date: "2026-01-07", StartMinutes: 600, EndMinutes: 1140},
		{Date: "2026-01-08", StartMinutes: 600, EndMinutes: 1140},
	}
	responder := newFakeResponder()
	srv := testServer(t, &fakeSource{busy: busy}, responder)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, slashRequest(t, "", "https://hooks.example.com/r1"))
	require.Equal(t, http.StatusOK, rec.Code)

	msg := responder.wait(t)
	assert.Equal(t, slackapi.ResponseTypeInChannel, msg.ResponseType)
	require.NotEmpty(t, msg.Blocks.BlockSet)

	responder.mu.Lock()
	defer responder.mu.Unlock()
	assert.Equal(t, []string{"https://hooks.example.com/r1"}, responder.urls)
}

func TestHandleSlashCommand_Help(t *testing.T) {
	responder := newFakeResponder()
	srv := testServer(t, &fakeSource{err: errors.New("must not be called")}, responder)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, slashRequest(t, "help", "https://hooks.example.com/r1"))
	require.Equal(t, http.StatusOK, rec.Code)

	msg := responder.wait(t)
	assert.Equal(t, slackapi.ResponseTypeEphemeral, msg.ResponseType)
	assert.NotEmpty(t, msg.Blocks.BlockSet)
}

func TestHandleSlashCommand_FetchFailure(t *testing.T) {
	responder := newFakeResponder()
	srv := testServer(t, &fakeSource{err: errors.New("calendar unavailable")}, responder)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, slashRequest(t, "", "https://hooks.example.com/r1"))
	require.Equal(t, http.StatusOK, rec.Code)

	msg := responder.wait(t)
	assert.Equal(t, slackapi.ResponseTypeEphemeral, msg.ResponseType)
	assert.Equal(t, "エラーが発生しました。もう一度お試しください。", msg.Text)
}

func TestHandleSlashCommand_InvalidSignature(t *testing.T) {
	responder := newFakeResponder()
	srv := testServer(t, &fakeSource{}, responder)

	req := slashRequest(t, "", "https://hooks.example.com/r1")
	req.Header.Set("X-Slack-Signature", "v0=deadbeef")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, responder.msgs)
}

func TestHandleSlashCommand_MethodNotAllowed(t *testing.T) {
	srv := testServer(t, &fakeSource{}, newFakeResponder())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slack/command", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRootBanner(t *testing.T) {
	srv := testServer(t, &fakeSource{}, newFakeResponder())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "freeweek")

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	srv := testServer(t, &fakeSource{}, newFakeResponder())
	handler := srv.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	srv.health.SetReady(false)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleSlashCommand_FetchSharesComputeAnchor(t *testing.T) {
	source := &fakeSource{}
	responder := newFakeResponder()
	srv := testServer(t, source, responder)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, slashRequest(t, "", "https://hooks.example.com/r1"))
	require.Equal(t, http.StatusOK, rec.Code)
	responder.wait(t)

	// The source must see the computer's clock, not its own time.Now read,
	// so fetch window and computation cannot anchor on different days.
	source.mu.Lock()
	defer source.mu.Unlock()
	assert.Equal(t, time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC), source.gotNow)
}

func TestShutdown_WaitsForInFlightCommand(t *testing.T) {
	source := newBlockingSource()
	responder := newFakeResponder()
	srv := testServer(t, source, responder)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, slashRequest(t, "", "https://hooks.example.com/r1"))
	require.Equal(t, http.StatusOK, rec.Code)

	<-source.entered

	shutdownDone := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdownDone <- srv.Shutdown(ctx)
	}()

	// Shutdown must block on the in-flight command without cancelling it.
	select {
	case err := <-shutdownDone:
		t.Fatalf("shutdown returned before processing finished: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	close(source.release)
	require.NoError(t, <-shutdownDone)

	// The fetch ran to completion with a live context, so the user gets the
	// result, not the error message.
	msg := responder.wait(t)
	assert.Equal(t, slackapi.ResponseTypeInChannel, msg.ResponseType)
}

func TestShutdown_DrainsProcessing(t *testing.T) {
	responder := newFakeResponder()
	srv := testServer(t, &fakeSource{}, responder)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, slashRequest(t, "", "https://hooks.example.com/r1"))
	require.Equal(t, http.StatusOK, rec.Code)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	responder.mu.Lock()
	defer responder.mu.Unlock()
	assert.Len(t, responder.msgs, 1)
}

func TestServerContext_SurvivesParentCancel(t *testing.T) {
	// The shutdown signal cancels the parent; background processors keep
	// running until ServerContext.Shutdown is called explicitly.
	parent, cancel := context.WithCancel(context.Background())
	sc := NewServerContext(parent)

	cancel()
	assert.NoError(t, sc.Context().Err())
	assert.False(t, sc.IsShutdown())

	sc.Shutdown()
	assert.Error(t, sc.Context().Err())
}

func TestServerContext_ShutdownIsIdempotent(t *testing.T) {
	sc := NewServerContext(context.Background())
	require.False(t, sc.IsShutdown())

	sc.Shutdown()
	sc.Shutdown()
	assert.True(t, sc.IsShutdown())
	assert.Error(t, sc.Context().Err())
}
