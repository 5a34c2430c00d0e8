package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sistemica/header-inspector/config"
	"github.com/sistemica/header-inspector/inspect"
)

const shutdownTimeout = 10 * time.Second

func initLogger(logLevel string) (*zap.Logger, error) {
	var level zapcore.Level

	switch strings.ToLower(logLevel) {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel // Default level
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	logger.Debug("Logger initialized", zap.String("level", level.String()))

	return logger, nil
}

func newRootCmd(envLoaded bool) *cobra.Command {
	cfg, envErr := config.FromEnv()

	cmd := &cobra.Command{
		Use:   "header-inspector",
		Short: "Show request headers and cookies, and log echoed calls to the console",
		Long: `Serves a page at / that displays the request's headers and cookies.
The page can call the API endpoint, which prints the received headers,
cookies and JSON body to stdout and echoes them back.

Every flag defaults to its environment variable; a .env file in the
working directory is loaded first.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil && !cmd.Flags().Changed("port") {
				return envErr
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger, err := initLogger(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Sync()

			if !envLoaded {
				logger.Info("No .env file found, using environment variables")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, logger, inspect.NewTranscript(os.Stdout))
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&cfg.Port, "port", cfg.Port, "Port to listen on. ($PORT)")
	flags.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "Echo endpoint called by the page; a path or absolute URL. ($APIURL)")
	flags.StringVar(&cfg.PublicDir, "public-dir", cfg.PublicDir, "Directory served for unmatched paths. ($PUBLIC_DIR)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error. ($LOG_LEVEL)")
	flags.StringVar(&cfg.Traefik.Host, "traefik-host", cfg.Traefik.Host, "Publish a Traefik route for this host at /traefik/config. ($TRAEFIK_HOST)")
	flags.StringVar(&cfg.Traefik.PathPrefix, "traefik-prefix", cfg.Traefik.PathPrefix, "Path prefix of the Traefik route, stripped before forwarding. ($TRAEFIK_PREFIX)")
	flags.StringSliceVar(&cfg.Traefik.EntryPoints, "traefik-entrypoints", cfg.Traefik.EntryPoints, "Traefik entrypoints of the route. ($TRAEFIK_ENTRYPOINTS)")
	flags.StringVar(&cfg.Traefik.ServiceHost, "traefik-service-host", cfg.Traefik.ServiceHost, "Host Traefik uses to reach this server. ($TRAEFIK_SERVICE_HOST)")
	flags.StringSliceVar(&cfg.Traefik.QueryParams, "traefik-query-headers", cfg.Traefik.QueryParams, "Query parameters Traefik copies into X-<name> headers. ($TRAEFIK_QUERY_HEADERS)")

	return cmd
}

// run serves the inspector until ctx is done, then shuts down gracefully.
func run(ctx context.Context, cfg config.Config, logger, transcript *zap.Logger) error {
	handler, err := inspect.NewRouter(cfg, logger, transcript)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	logger.Info(fmt.Sprintf("Server running on port %d", cfg.Port),
		zap.String("api_url", cfg.APIURL),
		zap.String("public_dir", cfg.PublicDir),
		zap.Bool("traefik", cfg.Traefik.Enabled()))
	logger.Info(fmt.Sprintf("Open http://localhost:%d in your browser", cfg.Port))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func main() {
	envLoaded := godotenv.Load() == nil

	if err := newRootCmd(envLoaded).Execute(); err != nil {
		os.Exit(1)
	}
}
