package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"reset-recovery-backend/internal/apperr"
	"reset-recovery-backend/internal/auth"
	"reset-recovery-backend/internal/config"
	"reset-recovery-backend/internal/db"
	"reset-recovery-backend/internal/logging"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "reset-api",
	Short: "ReSet recovery-support API",
	Long: `HTTP API behind the ReSet app: assessments, daily AI tasks, streaks,
mood check-ins and profiles.

Run without arguments to start the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		var err error
		logger, err = logging.New(cfg.LogLevel)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

var (
	tokenUserID string
	tokenEmail  string
	tokenName   string
	tokenTTL    time.Duration
)

// tokenCmd mints a token signed with AUTH_JWT_SECRET for local testing.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development access token",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user", "", "user id (default: random uuid)")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email claim")
	tokenCmd.Flags().StringVar(&tokenName, "name", "", "user_metadata.display_name claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")

	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		logger.Error("refusing to start", zap.Error(err))
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	var handler http.Handler = app.Handler()
	if cfg.HTTPH2C {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// generation waits on the AI provider
		WriteTimeout: cfg.AITimeout + 15*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server is running", zap.String("addr", cfg.HTTPAddr), zap.Bool("h2c", cfg.HTTPH2C))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateDB(); err != nil {
		return err
	}
	database, err := db.Connect(cmd.Context(), cfg.ConnString())
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(cmd.Context(), database); err != nil {
		return err
	}
	logger.Info("schema is up to date")
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	if cfg.AuthJWTSecret == "" {
		return apperr.Configuration([]string{"AUTH_JWT_SECRET is required"})
	}
	uid := tokenUserID
	if uid == "" {
		uid = uuid.NewString()
	}
	tok, err := auth.GenerateToken([]byte(cfg.AuthJWTSecret), uid, tokenEmail, tokenName, cfg.AuthAudience, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok)
	return nil
}
