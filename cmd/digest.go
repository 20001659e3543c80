package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"MediaVault/archive"
	"MediaVault/config"
	"MediaVault/db"
	"MediaVault/discord"
)

const readyTimeout = 30 * time.Second

// runDigest publishes one digest outside the schedule and prints the result.
func runDigest(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if err := cfg.Validate(config.ModeDigest); err != nil {
		return err
	}

	store, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	bot, err := discord.New(cfg.DiscordToken, nil)
	if err != nil {
		return err
	}
	if err := bot.Open(ctx); err != nil {
		return err
	}
	defer bot.Close()

	readyCtx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	if err := bot.WaitReady(readyCtx); err != nil {
		return err
	}

	res := archive.NewPublisher(store, bot, cfg.DigestPostDelay).Run(ctx)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}
	if !res.Success {
		return errors.New(res.Error)
	}
	return nil
}
