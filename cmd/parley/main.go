// Command parley is a CLI front end for the conversation engine. It
// drives multi-step tool-calling turns against an OpenAI-compatible or
// LM Studio backend, with MCP servers providing the tools.
//
// Configuration is layered: built-in defaults, then an optional YAML
// file (via --config, PARLEY_CONFIG, ./parley.yaml, or
// /etc/parley/config.yaml), then PARLEY_* environment overrides.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/parley-ai/parley/pkg/backend"
	"github.com/parley-ai/parley/pkg/backend/lmstudio"
	"github.com/parley-ai/parley/pkg/backend/openaicompat"
	"github.com/parley-ai/parley/pkg/config"
)

var version = "dev"

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "parley",
	Short:         "Drive tool-calling conversations against a local LLM",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		setupLogging(cfg.Logging)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file")
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(modelsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging installs the process-wide slog handler from the logging
// configuration. Validation already constrained level and format.
func setupLogging(lc config.LoggingConfig) {
	var level slog.Level
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if lc.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// newBackend builds the configured inference backend.
func newBackend(bc config.BackendConfig) (backend.Backend, error) {
	switch bc.Type {
	case "lmstudio":
		return lmstudio.New(lmstudio.Config{
			BaseURL: bc.BaseURL,
			APIKey:  bc.APIKey,
		})
	default:
		return openaicompat.New(openaicompat.Config{
			BaseURL: bc.BaseURL,
			APIKey:  bc.APIKey,
		})
	}
}
