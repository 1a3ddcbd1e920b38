package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hperssn/coachbook/internal/config"
)

var (
	cfg     *config.Config
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "coachbook",
	Short: "Booking assistant for a personal trainer",
	Long: `coachbook keeps a trainer's clients and sessions, refuses overlapping or
out-of-hours bookings, deducts prepaid module credits once a session starts
and sends a reminder before each session.

Run without a subcommand to start the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}

		loaded, err := config.Load(files...)
		if err != nil {
			return err
		}
		if err := loaded.ApplyFlags(cmd.Flags()); err != nil {
			return err
		}
		cfg = loaded

		return setupLogger(cfg)
	},
	RunE: runServe,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&envFile, "env-file", "", "Path to a .env file (default .env)")
	flags.String("store", "", "Storage backend: memory, bolt, sqlite or postgres")
	flags.String("dsn", "", "Database file or connection string")
	flags.String("open", "", "Opening time, e.g. 10:00")
	flags.String("close", "", "Closing time, e.g. 20:00")
	flags.Bool("confirm-delivery", false, "Keep reminders pending until a delivery succeeds")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: text or json")
}

func setupLogger(cfg *config.Config) error {
	level, err := cfg.Level()
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.LogFormat {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}
