package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/NguyenHuy1812/telegram-digest/internal/client"
	"github.com/NguyenHuy1812/telegram-digest/internal/config"
	"github.com/NguyenHuy1812/telegram-digest/internal/model"
)

var (
	configPath string
	days       int
	hours      int
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	root := &cobra.Command{
		Use:           "digest",
		Short:         "Collect recent Telegram messages into Markdown digests",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	root.PersistentFlags().IntVar(&days, "days", 0, "fetch window in days (takes precedence over --hours)")
	root.PersistentFlags().IntVar(&hours, "hours", 0, "fetch window in hours (default 24)")

	root.AddCommand(
		modeCommand("channels", "Fetch configured broadcast channels", model.SourceChannel),
		modeCommand("groups", "Fetch configured groups", model.SourceGroup),
	)

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() == context.Canceled {
			fmt.Println("\rClosed")
			os.Exit(0)
		}
		_, _ = fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}

func modeCommand(use, short string, kind model.SourceKind) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if days > 0 {
				cfg.Window.Days = days
			}
			if hours > 0 {
				cfg.Window.Hours = hours
			}

			log, err := newLogger(cfg.Log.Level)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			return client.Run(cmd.Context(), cfg, kind, log)
		},
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "parse log level")
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
