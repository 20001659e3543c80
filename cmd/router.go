package main

import (
	"net/http"

	"MediaVault/api"

	"github.com/rs/cors"
)

func SetupRouter(server *api.Server, allowedOrigins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		MaxAge:           300,
		AllowCredentials: true,
	})
	return c.Handler(server.Routes())
}
