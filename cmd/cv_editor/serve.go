package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/cv-editor/internal/config"
	"github.com/jonathan/cv-editor/internal/llm"
	"github.com/jonathan/cv-editor/internal/server"
	"github.com/jonathan/cv-editor/internal/server/ratelimit"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the AI proxy server",
	Long:  "Start an HTTP server exposing one POST endpoint per editor action (write, rewrite, proofread, categorize-skills, summarize-job, generate-from-job, country-spec, render), backed by Gemini.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default "+config.DefaultAddr+")")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("%s environment variable is required", config.EnvAPIKey)
	}
	cfg.Addr = firstNonEmpty(serveAddr, cfg.Addr)

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}
	if jwtConfig == nil {
		log.Warn("CV_JWT_SECRET not set, proxy runs without authentication")
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := llm.NewClient(ctx, llmConfig(cfg), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer func() { _ = client.Close() }()

	srv := server.New(client, server.Options{
		Addr:        cfg.ListenAddr(),
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   ratelimit.LoadConfig(),
		JWT:         jwtConfig,
		Log:         log,
	})
	return srv.Start(ctx)
}

// contextOrBackground returns the command context, which is nil when a command runs
// outside Execute (tests call run functions directly)
func contextOrBackground(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
