package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const requestTimeout = 15 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	// The websocket outlives any request timeout.
	r.Get("/play", s.handlePlay)

	r.Group(func(r chi.Router) {
		r.Use(timeoutMiddleware(requestTimeout))

		r.Get("/players", s.handlePlayers)
		r.Route("/players/{name}", func(r chi.Router) {
			r.Get("/", s.handlePlayer)
			r.Get("/stats", s.handlePlayerStats)
			r.Get("/stats/weakest", s.handleWeakestFacts)
			r.Get("/results", s.handlePlayerResults)
			r.Post("/reset", s.handleResetStatistics)
		})
	})
	return r
}
