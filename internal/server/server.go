package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	slackapi "github.com/slack-go/slack"

	"github.com/teemow/freeweek/internal/availability"
	"github.com/teemow/freeweek/internal/instrumentation"
	"github.com/teemow/freeweek/internal/logging"
	slackbot "github.com/teemow/freeweek/internal/slack"
)

const (
	// maxBodyBytes caps the slash-command request body. Slack payloads are
	// small; anything larger is not Slack.
	maxBodyBytes = 1 << 20

	defaultReadHeaderTimeout = 10 * time.Second
	defaultWriteTimeout      = 15 * time.Second
	defaultIdleTimeout       = 60 * time.Second
)

// BusySource supplies busy intervals for a horizon of days anchored at the
// given instant.
type BusySource interface {
	FetchBusyIntervals(ctx context.Context, now time.Time, days int) ([]availability.BusyInterval, error)
}

// Responder delivers messages to slash-command response URLs.
type Responder interface {
	Respond(ctx context.Context, responseURL string, msg slackapi.Msg) error
}

// Config holds the main server settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// SigningSecret is the Slack app signing secret used to verify
	// inbound requests.
	SigningSecret string

	// Days is the availability horizon shared with Slack users.
	Days int
}

// Server is the bot's public HTTP server.
type Server struct {
	cfg       Config
	sc        *ServerContext
	computer  *availability.Computer
	source    BusySource
	responder Responder
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
	health    *HealthChecker

	httpServer *http.Server

	// processing tracks in-flight background command handlers so shutdown
	// can drain them.
	processing sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics enables request instrumentation.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(s *Server) {
		s.metrics = metrics
	}
}

// New creates the bot server.
func New(sc *ServerContext, cfg Config, computer *availability.Computer, source BusySource, responder Responder, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		sc:        sc,
		computer:  computer,
		source:    source,
		responder: responder,
		logger:    slog.Default(),
		health:    NewHealthChecker(sc),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the server's route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/slack/command", s.handleSlashCommand)
	s.health.RegisterHealthEndpoints(mux)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintln(w, "freeweek - Slack free-time finder")
	})
	return mux
}

// Start runs the server until it is shut down. It blocks; call it in a
// goroutine when combined with other servers.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
	}

	s.logger.Info("starting server", slog.String("addr", s.cfg.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting requests, drains in-flight command processing,
// and closes the listener. The processing context is cancelled only after
// the drain completes or ctx's deadline expires, so commands already
// acknowledged still deliver their response_url result.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	done := make(chan struct{})
	go func() {
		s.processing.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.sc.Shutdown()
	case <-ctx.Done():
		s.sc.Shutdown()
		return ctx.Err()
	}
	return err
}

// handleSlashCommand verifies, parses, and acknowledges a slash command,
// then hands it to a background processor. Slack only waits three seconds
// for the webhook response; the calendar fetch happens after the ack.
func (s *Server) handleSlashCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if err := slackbot.VerifyRequest(r.Header, body, s.cfg.SigningSecret); err != nil {
		s.logger.Warn("rejected slash command", logging.Operation("verify_signature"), logging.Err(err))
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	command, err := slackapi.SlashCommandParse(r)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(slackbot.SearchingMessage()); err != nil {
		s.logger.Error("failed to write ack", logging.Err(err))
	}

	s.processing.Add(1)
	go func() {
		defer s.processing.Done()
		s.process(s.sc.Context(), command)
	}()
}

func (s *Server) process(ctx context.Context, command slackapi.SlashCommand) {
	start := time.Now()
	kind := slackbot.ParseCommandText(command.Text)
	logger := s.logger.With(logging.Command(kind.String()))

	var err error
	switch kind {
	case slackbot.KindHelp:
		err = s.responder.Respond(ctx, command.ResponseURL, slackbot.HelpMessage())
	default:
		err = s.shareFreeSlots(ctx, command.ResponseURL)
	}

	s.metrics.RecordSlashCommand(ctx, kind.String(), time.Since(start), err)

	if err != nil {
		logger.Error("slash command failed", logging.Err(err))
		if respondErr := s.responder.Respond(ctx, command.ResponseURL, slackbot.ErrorMessage()); respondErr != nil {
			logger.Error("failed to deliver error message", logging.Err(respondErr))
		}
		return
	}
	logger.Info("slash command processed",
		logging.Status(logging.StatusSuccess),
		slog.Duration(logging.KeyDuration, time.Since(start)))
}

func (s *Server) shareFreeSlots(ctx context.Context, responseURL string) error {
	// One clock read anchors both the fetch window and the computation.
	now := s.computer.Now()

	busy, err := s.source.FetchBusyIntervals(ctx, now, s.cfg.Days)
	if err != nil {
		return fmt.Errorf("failed to fetch busy intervals: %w", err)
	}

	slots, err := s.computer.ComputeFreeSlotsFrom(now.Format(availability.DateLayout), busy, s.cfg.Days)
	if err != nil {
		return fmt.Errorf("failed to compute free slots: %w", err)
	}
	s.metrics.RecordFreeSlotsComputed(ctx, len(slots))

	return s.responder.Respond(ctx, responseURL, slackbot.FreeSlotsMessage(slots))
}
