// Command camp-signup serves the camp landing page and its registration
// API, and can submit a registration to a running instance.
//
//	camp-signup serve --config=config/local.yaml
//	camp-signup submit --endpoint=http://localhost:8082/api/signups --email=...
//
// CONFIG_PATH is honoured when --config is not given. The Airtable token is
// always taken from AIRTABLE_TOKEN.
package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "camp-signup",
		Short:        "Camp landing page and registration service",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Run the site
  AIRTABLE_TOKEN=... camp-signup serve --config=config/local.yaml

  # Register from the command line
  camp-signup submit --parent-first-name=Ana --parent-last-name=Lee \
    --student-first-name=Kai --student-last-name=Lee --email=ana@example.com \
    --experience=beginner --week="Week 1 (July 8-12)" --grade=5
`),
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSubmitCmd())
	return cmd
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// dev: text at DEBUG. staging: JSON at DEBUG. prod: JSON at INFO.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "staging":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
