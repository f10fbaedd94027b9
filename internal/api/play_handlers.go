package api

import (
	"net/http"

	"github.com/tvandenbrink/tafel-racer/internal/errors"
	"github.com/tvandenbrink/tafel-racer/internal/logger"
	"github.com/tvandenbrink/tafel-racer/internal/ws"
)

// handlePlay opens a session for ?player= and upgrades to a websocket.
// Roster and capacity errors are plain JSON responses before the upgrade.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	player := r.URL.Query().Get("player")
	log := logger.FromContext(r.Context()).WithField("player", player)
	if player == "" {
		handleError(w, r, errors.NewValidationError("player", "cannot be empty"))
		return
	}

	client := ws.NewClient(log)
	runner, err := s.SessionService.Open(r.Context(), player, client.Push)
	if err != nil {
		handleError(w, r, err)
		return
	}

	conn, err := ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		log.Warn("websocket upgrade failed: %v", err)
		runner.Close()
		return
	}
	log.Info("player connected")
	client.Attach(conn, runner)
}
