package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tvandenbrink/tafel-racer/internal/logger"
	"github.com/tvandenbrink/tafel-racer/internal/models"
)

const (
	defaultPerPage = 25
	maxPerPage     = 100
	defaultWeakest = 10
)

type resultsPage struct {
	Results    []models.GameResult `json:"results"`
	Page       int                 `json:"page"`
	PerPage    int                 `json:"per_page"`
	TotalCount int                 `json:"total_count"`
	TotalPages int                 `json:"total_pages"`
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	log.Debug("listing players")

	players, err := s.PlayerService.ListPlayers(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"players": players})
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	logger.FromContext(r.Context()).Debug("getting player: name=%s", name)

	overview, err := s.PlayerService.GetPlayer(r.Context(), name)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, overview)
}

func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	grid, err := s.StatsService.GetGrid(r.Context(), name)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, grid)
}

func (s *Server) handleWeakestFacts(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	n, err := queryInt(r, "n", defaultWeakest)
	if err != nil {
		handleError(w, r, err)
		return
	}

	facts, err := s.StatsService.WeakestFacts(r.Context(), name, n)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if facts == nil {
		facts = []models.FactStat{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"facts": facts})
}

func (s *Server) handlePlayerResults(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	page, err := queryInt(r, "page", 1)
	if err != nil {
		handleError(w, r, err)
		return
	}
	perPage, err := queryInt(r, "per_page", defaultPerPage)
	if err != nil {
		handleError(w, r, err)
		return
	}
	perPage = min(perPage, maxPerPage)

	log := logger.FromContext(r.Context()).WithFields(map[string]any{
		"player":   name,
		"page":     page,
		"per_page": perPage,
	})
	log.Debug("fetching results")

	results, total, err := s.PlayerService.ListResults(r.Context(), name, perPage, (page-1)*perPage)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if results == nil {
		results = []models.GameResult{}
	}
	writeJSON(w, r, http.StatusOK, resultsPage{
		Results:    results,
		Page:       page,
		PerPage:    perPage,
		TotalCount: total,
		TotalPages: (total + perPage - 1) / perPage,
	})
}

func (s *Server) handleResetStatistics(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	logger.FromContext(r.Context()).Info("reset statistics requested: name=%s", name)

	if err := s.PlayerService.ResetStatistics(r.Context(), name); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
