package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"MediaVault/api"
	"MediaVault/archive"
	"MediaVault/config"
	"MediaVault/db"
	"MediaVault/discord"
	"MediaVault/scheduler"
	"MediaVault/utils"

	"golang.ngrok.com/ngrok"
	ngrokconfig "golang.ngrok.com/ngrok/config"
)

const shutdownTimeout = 10 * time.Second

func runServe(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(config.ModeServe); err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	store, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, closeSessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	feed := api.NewFeed(cfg.AllowedOrigins)
	go feed.Run(ctx)

	pipeline := archive.NewPipeline(store)
	pipeline.OnCapture(feed.Publish)

	bot, err := discord.New(cfg.DiscordToken, pipeline)
	if err != nil {
		return err
	}
	publisher := archive.NewPublisher(store, bot, cfg.DigestPostDelay)
	sched, err := scheduler.New(cfg.DigestSchedule, loc, publisher)
	if err != nil {
		return err
	}
	sched.Start()

	server := api.NewServer(api.Options{
		Store:        store,
		Digest:       publisher,
		Bot:          bot,
		Schedule:     sched,
		Sessions:     sessions,
		SitePassword: cfg.SitePassword,
		Feed:         feed,
	})

	listener, err := listen(ctx, cfg)
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Handler:           SetupRouter(server, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.Serve(listener) }()

	// Login retries run behind a live API; status reports disconnected
	// until Ready arrives.
	botCtx, cancelBot := context.WithCancel(ctx)
	botDone := openInBackground(botCtx, bot)
	defer func() {
		cancelBot()
		<-botDone
		bot.Close()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("runServe: server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "err", err)
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		logger.Error("Scheduler did not stop in time", "err", err)
	}
	return nil
}

// listen opens an ngrok tunnel when NGROK_AUTHTOKEN is set and a local TCP
// listener otherwise.
func listen(ctx context.Context, cfg *config.Config) (net.Listener, error) {
	if cfg.NgrokAuthtoken != "" {
		tun, err := ngrok.Listen(ctx, ngrokconfig.HTTPEndpoint(), ngrok.WithAuthtoken(cfg.NgrokAuthtoken))
		if err != nil {
			return nil, fmt.Errorf("listen: failed to open ngrok tunnel: %w", err)
		}
		logger.Info("Server running through ngrok", "url", tun.URL())
		return tun, nil
	}

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}
	logger.Info("Server running", "port", cfg.Port)
	return ln, nil
}

func newSessionStore(ctx context.Context, cfg *config.Config) (api.SessionStore, func(), error) {
	if cfg.RedisURL != "" {
		client, err := utils.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using redis session store")
		return api.NewRedisSessions(client), func() { client.Close() }, nil
	}

	sessions, err := api.NewCookieSessions(cfg.SessionSecret)
	if err != nil {
		return nil, nil, err
	}
	return sessions, func() {}, nil
}

type gatewayOpener interface {
	Open(ctx context.Context) error
}

// openInBackground logs in without blocking the caller. The returned
// channel closes once the login attempt has finished either way.
func openInBackground(ctx context.Context, g gatewayOpener) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := g.Open(ctx); err != nil {
			logger.Error("Failed to connect Discord bot", "err", err)
		}
	}()
	return done
}
