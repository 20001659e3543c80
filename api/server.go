// Package api serves the password-gated JSON API and live capture feed
// used by the MediaVault dashboard.
package api

import (
	"context"
	"net/http"
	"time"

	"MediaVault/archive"
	"MediaVault/db"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/inconshreveable/log15/v3"
)

var logger = log15.New("module", "api")

type Store interface {
	GetAllMessages(ctx context.Context) ([]db.CapturedMessage, error)
	GetMessage(ctx context.Context, id string) (*db.CapturedMessage, error)
	DeleteMessage(ctx context.Context, id string) error
	GetAllWatchConfigs(ctx context.Context) ([]db.WatchConfig, error)
	CreateWatchConfig(ctx context.Context, config *db.WatchConfig) error
	UpdateWatchConfig(ctx context.Context, id string, updates map[string]any) (*db.WatchConfig, error)
	DeleteWatchConfig(ctx context.Context, id string) error
	GetAllBackups(ctx context.Context) ([]db.BackupRecord, error)
}

type DigestRunner interface {
	Run(ctx context.Context) archive.DigestResult
}

type BotStatus interface {
	Status() archive.ConnectionStatus
}

type NextRunner interface {
	NextRun() time.Time
}

type Options struct {
	Store        Store
	Digest       DigestRunner
	Bot          BotStatus
	Schedule     NextRunner // optional
	Sessions     SessionStore
	SitePassword string
	Feed         *Feed
}

type Server struct {
	store    Store
	digest   DigestRunner
	bot      BotStatus
	schedule NextRunner
	sessions SessionStore
	password string
	feed     *Feed
}

func NewServer(opts Options) *Server {
	return &Server{
		store:    opts.Store,
		digest:   opts.Digest,
		bot:      opts.Bot,
		schedule: opts.Schedule,
		sessions: opts.Sessions,
		password: opts.SitePassword,
		feed:     opts.Feed,
	}
}

// Routes builds the chi router for every endpoint.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", HandleHealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Get("/check", s.handleAuthCheck)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/messages", s.handleListMessages)
			r.Get("/messages/{id}", s.handleGetMessage)
			r.Delete("/messages/{id}", s.handleDeleteMessage)

			r.Get("/config", s.handleListConfigs)
			r.Post("/config", s.handleCreateConfig)
			r.Patch("/config/{id}", s.handleUpdateConfig)
			r.Delete("/config/{id}", s.handleDeleteConfig)

			r.Get("/backups", s.handleListBackups)
			r.Post("/backups/trigger", s.handleTriggerBackup)

			r.Get("/bot/status", s.handleBotStatus)

			if s.feed != nil {
				r.Get("/ws", s.feed.HandleWebSocket)
			}
		})
	})
	return r
}

func HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("MediaVault is alive"))
}
