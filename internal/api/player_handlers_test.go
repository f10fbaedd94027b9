package api_test

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tvandenbrink/tafel-racer/internal/api"
	"github.com/tvandenbrink/tafel-racer/internal/errors"
	"github.com/tvandenbrink/tafel-racer/internal/models"
	"github.com/tvandenbrink/tafel-racer/internal/testutil/mocks"
)

type fakeDB struct{ err error }

func (f fakeDB) PingContext(context.Context) error { return f.err }

type apiFixture struct {
	players *mocks.MockPlayerService
	stats   *mocks.MockStatsService
	handler http.Handler
}

func newFixture(db api.Pinger) *apiFixture {
	f := &apiFixture{
		players: new(mocks.MockPlayerService),
		stats:   new(mocks.MockStatsService),
	}
	srv := &api.Server{
		PlayerService:  f.players,
		StatsService:   f.stats,
		SessionService: new(mocks.MockSessionService),
		DB:             db,
	}
	f.handler = srv.Routes()
	return f
}

func (f *apiFixture) do(method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	f := newFixture(fakeDB{})
	rec := f.do(http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/readyz").Code)

	down := newFixture(fakeDB{err: stderrors.New("disk gone")})
	assert.Equal(t, http.StatusServiceUnavailable, down.do(http.MethodGet, "/readyz").Code)
}

func TestListPlayers(t *testing.T) {
	f := newFixture(fakeDB{})
	f.players.On("ListPlayers", mock.Anything).Return([]models.Player{{Name: "Tim", HighScore: 7}}, nil)

	rec := f.do(http.MethodGet, "/players")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Players []models.Player `json:"players"`
	}
	decode(t, rec, &body)
	assert.Equal(t, []models.Player{{Name: "Tim", HighScore: 7}}, body.Players)
}

func TestGetPlayer_NotFound(t *testing.T) {
	f := newFixture(fakeDB{})
	f.players.On("GetPlayer", mock.Anything, "Mallory").Return(nil, errors.NewNotFoundError("player", "Mallory"))

	rec := f.do(http.MethodGet, "/players/Mallory")
	require.Equal(t, http.StatusNotFound, rec.Code)
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decode(t, rec, &body)
	assert.Equal(t, errors.ErrCodeNotFound, body.Error.Code)
	assert.Contains(t, body.Error.Message, "Mallory")
}

func TestGetPlayer_UnknownErrorIsInternal(t *testing.T) {
	f := newFixture(fakeDB{})
	f.players.On("GetPlayer", mock.Anything, "Tim").Return(nil, stderrors.New("boom"))

	rec := f.do(http.MethodGet, "/players/Tim")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestPlayerStats(t *testing.T) {
	f := newFixture(fakeDB{})
	grid := &models.StatsGrid{Player: "Tim", TotalAttempts: 3, OverallSuccessRate: 66.7}
	f.stats.On("GetGrid", mock.Anything, "Tim").Return(grid, nil)
	f.stats.On("WeakestFacts", mock.Anything, "Tim", 3).Return([]models.FactStat{{Question: "7 × 8"}}, nil)

	rec := f.do(http.MethodGet, "/players/Tim/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.StatsGrid
	decode(t, rec, &got)
	assert.Equal(t, *grid, got)

	rec = f.do(http.MethodGet, "/players/Tim/stats/weakest?n=3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "7 × 8")

	rec = f.do(http.MethodGet, "/players/Tim/stats/weakest?n=zero")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlayerResults_Paging(t *testing.T) {
	f := newFixture(fakeDB{})
	f.players.On("ListResults", mock.Anything, "Tim", 10, 20).
		Return([]models.GameResult{{ID: 9, Player: "Tim", Score: 4}}, 21, nil)

	rec := f.do(http.MethodGet, "/players/Tim/results?page=3&per_page=10")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Results    []models.GameResult `json:"results"`
		Page       int                 `json:"page"`
		PerPage    int                 `json:"per_page"`
		TotalCount int                 `json:"total_count"`
		TotalPages int                 `json:"total_pages"`
	}
	decode(t, rec, &body)
	assert.Len(t, body.Results, 1)
	assert.Equal(t, 3, body.Page)
	assert.Equal(t, 21, body.TotalCount)
	assert.Equal(t, 3, body.TotalPages)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/players/Tim/results?page=-1").Code)
}

func TestPlayerResults_EmptyIsArray(t *testing.T) {
	f := newFixture(fakeDB{})
	f.players.On("ListResults", mock.Anything, "Tim", 25, 0).Return(nil, 0, nil)

	rec := f.do(http.MethodGet, "/players/Tim/results")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"results":[]`))
}

func TestResetStatistics(t *testing.T) {
	f := newFixture(fakeDB{})
	f.players.On("ResetStatistics", mock.Anything, "Esmee").Return(nil).Once()

	assert.Equal(t, http.StatusMethodNotAllowed, f.do(http.MethodGet, "/players/Esmee/reset").Code)
	assert.Equal(t, http.StatusNoContent, f.do(http.MethodPost, "/players/Esmee/reset").Code)
	f.players.AssertExpectations(t)
}
