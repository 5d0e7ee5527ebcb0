package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/freeweek/internal/availability"
	"github.com/teemow/freeweek/internal/calendar"
	"github.com/teemow/freeweek/internal/google"
	"github.com/teemow/freeweek/internal/instrumentation"
	"github.com/teemow/freeweek/internal/logging"
	"github.com/teemow/freeweek/internal/server"
	slackbot "github.com/teemow/freeweek/internal/slack"
)

const defaultTimezone = "Asia/Tokyo"

// CalendarConfig holds the settings shared by the serve and slots commands.
type CalendarConfig struct {
	// Timezone is the IANA name of the business timezone.
	Timezone string

	// Days is the availability horizon in calendar days.
	Days int

	// ServiceAccountEmail and ServiceAccountKey are the Google service
	// account credentials used for calendar access.
	ServiceAccountEmail string
	ServiceAccountKey   string

	// CalendarIDs are the team calendars to aggregate.
	CalendarIDs []string
}

// MetricsConfig holds configuration for the metrics server.
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode     bool
		httpAddr      string
		signingSecret string
		calConfig     CalendarConfig
		calendarIDs   string
		// Metrics server configuration
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Slack slash-command server",
		Long: `Start the HTTP server that answers Slack slash commands with the team's
shared free time.

Slack Configuration:
  The signing secret of your Slack app is required to verify inbound
  requests:
    --slack-signing-secret flag OR SLACK_SIGNING_SECRET env var

Google Configuration:
  A service account with read access to the team calendars:
    --google-service-account-email / --google-service-account-key flags
    OR GOOGLE_SERVICE_ACCOUNT_EMAIL / GOOGLE_SERVICE_ACCOUNT_PRIVATE_KEY
    env vars
  The calendars to aggregate:
    --calendar-ids flag OR GOOGLE_CALENDAR_IDS env var (comma-separated)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			loadCalendarEnvVars(cmd, &calConfig, calendarIDs)
			if !cmd.Flags().Changed("slack-signing-secret") || signingSecret == "" {
				if secret := os.Getenv("SLACK_SIGNING_SECRET"); secret != "" {
					signingSecret = secret
				}
			}

			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}

			return runServe(debugMode, httpAddr, signingSecret, calConfig, metricsConfig)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address")
	cmd.Flags().StringVar(&signingSecret, "slack-signing-secret", "", "Slack app signing secret for request verification. Can also use SLACK_SIGNING_SECRET env var.")
	registerCalendarFlags(cmd, &calConfig, &calendarIDs)

	// Metrics server flags
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// registerCalendarFlags registers the Google Calendar flags shared by the
// serve and slots commands.
func registerCalendarFlags(cmd *cobra.Command, config *CalendarConfig, calendarIDs *string) {
	cmd.Flags().StringVar(&config.Timezone, "timezone", defaultTimezone, "Business timezone for the availability window. Can also use BUSINESS_TIMEZONE env var.")
	cmd.Flags().IntVar(&config.Days, "days", 7, "Availability horizon in calendar days")
	cmd.Flags().StringVar(&config.ServiceAccountEmail, "google-service-account-email", "", "Google service account email. Can also use GOOGLE_SERVICE_ACCOUNT_EMAIL env var.")
	cmd.Flags().StringVar(&config.ServiceAccountKey, "google-service-account-key", "", "Google service account private key (PEM). Can also use GOOGLE_SERVICE_ACCOUNT_PRIVATE_KEY env var.")
	cmd.Flags().StringVar(calendarIDs, "calendar-ids", "", "Comma-separated calendar IDs to aggregate. Can also use GOOGLE_CALENDAR_IDS env var.")
}

// loadCalendarEnvVars fills calendar settings from environment variables.
// Environment variables only apply when the flag was not explicitly set.
func loadCalendarEnvVars(cmd *cobra.Command, config *CalendarConfig, calendarIDs string) {
	if !cmd.Flags().Changed("timezone") {
		if tz := os.Getenv("BUSINESS_TIMEZONE"); tz != "" {
			config.Timezone = tz
		}
	}
	if !cmd.Flags().Changed("google-service-account-email") {
		if email := os.Getenv("GOOGLE_SERVICE_ACCOUNT_EMAIL"); email != "" {
			config.ServiceAccountEmail = email
		}
	}
	if !cmd.Flags().Changed("google-service-account-key") {
		if key := os.Getenv("GOOGLE_SERVICE_ACCOUNT_PRIVATE_KEY"); key != "" {
			config.ServiceAccountKey = key
		}
	}
	if !cmd.Flags().Changed("calendar-ids") {
		if ids := os.Getenv("GOOGLE_CALENDAR_IDS"); ids != "" {
			calendarIDs = ids
		}
	}
	config.CalendarIDs = parseCommaSeparatedList(calendarIDs)
}

// instrumentationConfig resolves the provider settings. Disabling the
// metrics server also disables the provider: instruments registered with no
// endpoint to scrape them would just accumulate.
func instrumentationConfig(metricsEnabled bool) instrumentation.Config {
	config := instrumentation.DefaultConfig()
	config.Enabled = config.Enabled && metricsEnabled
	config.ServiceVersion = version
	return config
}

// newCalendarSource builds the token cache and calendar source from the
// resolved configuration.
func newCalendarSource(ctx context.Context, config CalendarConfig, logger *slog.Logger, metrics *instrumentation.Metrics) (*calendar.Source, error) {
	creds := google.Credentials{
		Email:      config.ServiceAccountEmail,
		PrivateKey: google.NormalizePrivateKey(config.ServiceAccountKey),
	}
	if !creds.Configured() {
		return nil, fmt.Errorf("google service account credentials are required (see --google-service-account-email and --google-service-account-key)")
	}
	if len(config.CalendarIDs) == 0 {
		return nil, fmt.Errorf("at least one calendar ID is required (see --calendar-ids)")
	}

	tokens, err := google.NewTokenCache(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("failed to create token cache: %w", err)
	}
	tokens.SetMetrics(metrics)

	return calendar.NewSource(ctx, tokens, config.CalendarIDs,
		calendar.WithLogger(logger),
		calendar.WithMetrics(metrics))
}

func runServe(debugMode bool, httpAddr, signingSecret string, calConfig CalendarConfig, metricsConfig MetricsConfig) error {
	logger := logging.Setup(debugMode)

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if signingSecret == "" {
		return fmt.Errorf("slack signing secret is required (see --slack-signing-secret)")
	}
	if calConfig.Days <= 0 {
		return fmt.Errorf("days must be positive (got %d)", calConfig.Days)
	}

	loc, err := time.LoadLocation(calConfig.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", calConfig.Timezone, err)
	}

	// Load metrics config from environment if not set via flags
	if !metricsConfig.Enabled {
		if os.Getenv("METRICS_ENABLED") == "true" {
			metricsConfig.Enabled = true
		}
	}
	if metricsConfig.Addr == "" || metricsConfig.Addr == ":9090" {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			metricsConfig.Addr = addr
		}
	}

	// Initialize instrumentation provider
	provider, err := instrumentation.NewProvider(shutdownCtx, instrumentationConfig(metricsConfig.Enabled))
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(stopCtx); err != nil {
			logger.Error("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	// Start metrics server if enabled
	var metricsServer *server.MetricsServer
	if metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		// Wait for metrics server to be ready or fail
		select {
		case <-metricsReady:
			logger.Info("metrics server started", "addr", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}
	defer func() {
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown failed", logging.Err(err))
			}
		}
	}()

	source, err := newCalendarSource(shutdownCtx, calConfig, logger, provider.Metrics())
	if err != nil {
		return err
	}

	serverContext := server.NewServerContext(shutdownCtx)
	srv := server.New(serverContext, server.Config{
		Addr:          httpAddr,
		SigningSecret: signingSecret,
		Days:          calConfig.Days,
	}, availability.NewComputer(loc), source, slackbot.NewResponder(),
		server.WithLogger(logger),
		server.WithMetrics(provider.Metrics()))

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received, stopping server")
		stopCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(stopCtx); err != nil {
			return fmt.Errorf("error shutting down server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
	}

	logger.Info("server gracefully stopped")
	return nil
}

// parseCommaSeparatedList parses a comma-separated string into a slice,
// trimming whitespace from each element and filtering out empty strings.
// Returns nil if the input is empty or contains only whitespace/commas.
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
