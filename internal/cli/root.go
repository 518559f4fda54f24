// Package cli implements the thoughtctl commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-thoughts/internal/app"
	"github.com/johnquangdev/meeting-thoughts/pkg/config"
)

var (
	envFile string
	verbose bool

	// appOptions is applied to every app built by a command
	appOptions []app.Option
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:           "thoughtctl",
	Short:         "Operate the meeting thoughts pipeline",
	Long:          "Run migrations, seed the tag vocabulary and drive processing runs from the shell.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load before reading configuration")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline activity to stderr")
}

// loadConfig reads configuration from the environment. validate is false for
// commands that only need the database section.
func loadConfig(validate bool) (*config.Config, error) {
	if envFile != "" {
		// A missing file is fine; the environment may already be set
		_ = godotenv.Load(envFile)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig(true)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, newLogger(), appOptions...)
}

func printJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
