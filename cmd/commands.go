package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"MediaVault/config"

	"github.com/inconshreveable/log15/v3"
	"github.com/spf13/cobra"
)

var logger = log15.New("module", "main")

func newRootCmd() *cobra.Command {
	var configFile string
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "mediavault",
		Short:         "Archive watched Discord media and post weekly digests",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				os.Setenv("CONFIG_FILE", configFile)
			}
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			if err := setupLogging(loaded.LogLevel); err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSignals(func(ctx context.Context) error { return runServe(ctx, cfg) })
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (overrides CONFIG_FILE)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the bot, the weekly schedule and the dashboard API",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWithSignals(func(ctx context.Context) error { return runServe(ctx, cfg) })
			},
		},
		&cobra.Command{
			Use:   "digest",
			Short: "Connect, publish one digest now and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWithSignals(func(ctx context.Context) error { return runDigest(ctx, cfg, cmd.OutOrStdout()) })
			},
		},
	)
	return root
}

func setupLogging(level string) error {
	lvl, err := log15.LvlFromString(level)
	if err != nil {
		return fmt.Errorf("setupLogging: invalid LOG_LEVEL %q: %w", level, err)
	}
	log15.Root().SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(os.Stdout, log15.LogfmtFormat())))
	return nil
}

func runWithSignals(fn func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx)
}
