// Package main provides the cv_editor CLI: the AI proxy server plus offline tools for
// linting, rendering, exporting and tailoring CV documents.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonathan/cv-editor/internal/config"
	"github.com/jonathan/cv-editor/internal/logging"
	"github.com/spf13/cobra"
)

var (
	configFile string
	logMode    string
)

var rootCmd = &cobra.Command{
	Use:           "cv_editor",
	Short:         "ATS-friendly CV editor tools and AI proxy",
	Long:          "cv_editor lints, renders and exports CV documents against country rule packs, tailors them to job postings, and serves the AI proxy used by the editor.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a JSON config file")
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "", "Log mode: dev (console) or prod (JSON)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig merges the config file over the environment and validates the result.
func loadConfig() (*config.Config, error) {
	env := config.FromEnv()
	cfg := env
	if configFile != "" {
		fileCfg, err := config.LoadConfig(configFile)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg.MergeWithDefaults(env)
	}
	if logMode != "" {
		cfg.LogMode = logMode
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// newLogger builds the process logger. Offline commands log to stderr only.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	return logging.New(cfg.LogMode)
}

// firstNonEmpty returns the first non-empty value, used to let flags win over config
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
