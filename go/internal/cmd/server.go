package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/gameday/go/internal/inspect"
)

func setupServer(port string, state *inspect.StateHandler, services *Services) *http.Server {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	// View state, live stats, health and metrics
	state.RegisterRoutes(mux, services.Registry)

	// Wrap with CORS
	handler := c.Handler(mux)

	return &http.Server{
		Addr:        fmt.Sprintf(":%s", port),
		Handler:     h2c.NewHandler(handler, &http2.Server{}),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}
}
