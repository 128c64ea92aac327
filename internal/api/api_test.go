package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diamonddraft/diamond-draft/internal/compare"
	"github.com/diamonddraft/diamond-draft/internal/fetch"
	"github.com/diamonddraft/diamond-draft/internal/model"
	"github.com/diamonddraft/diamond-draft/internal/points"
	"github.com/diamonddraft/diamond-draft/internal/source"
)

var (
	k2024  = model.SeasonKey{Season: "2024", Variant: "actual"}
	k2025p = model.SeasonKey{Season: "2025", Variant: "projected"}
)

const weightQuery = "w.era=1&w.wins=1&w.hr=2&w.saves=2"

func testRoster() *model.Roster {
	return &model.Roster{
		LastUpdated: "2025-03-01T12:00:00Z",
		Players: []model.Player{
			{ID: 1, Name: "Ace", Team: "NYY", Position: "SP", IsPitcher: true, StatsBySeasonVariant: map[model.SeasonKey]model.StatBundle{
				k2024:  {ERA: 3.0, Wins: 10},
				k2025p: {ERA: 4.0, Wins: 14},
			}},
			{ID: 2, Name: "Slugger", Team: "BOS", Position: "1B", StatsBySeasonVariant: map[model.SeasonKey]model.StatBundle{
				k2024: {HR: 5},
			}},
			{ID: 3, Name: "Closer", Team: "NYY", Position: "RP", IsPitcher: true, StatsBySeasonVariant: map[model.SeasonKey]model.StatBundle{
				k2024: {Saves: 3, ERA: 4.5},
			}},
		},
	}
}

func testWeights() points.Weights {
	return points.ParseWeights(map[string]any{"era": 1, "wins": 1, "hr": 2, "saves": 2})
}

// mockSource serves a fixed roster until err is set.
type mockSource struct {
	mu     sync.Mutex
	roster *model.Roster
	err    error
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) Load(context.Context) (*model.Roster, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.roster, nil
}

func (m *mockSource) fail(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

var _ source.Source = (*mockSource)(nil)

func newTestServer(t *testing.T, load bool) (*httptest.Server, *mockSource, *Service) {
	t.Helper()
	src := &mockSource{roster: testRoster()}
	engine, err := points.NewEngine("")
	require.NoError(t, err)
	svc := NewService(src, points.NewLocal(engine, nil), testWeights(), zerolog.Nop())
	if load {
		require.NoError(t, svc.Load(context.Background()))
	}
	srv := httptest.NewServer(NewRouter(NewHandler(svc, zerolog.Nop()), []string{"*"}, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv, src, svc
}

type tableBody struct {
	Rows []struct {
		Player struct {
			ID     int     `json:"id"`
			Name   string  `json:"name"`
			Points float64 `json:"points"`
		} `json:"player"`
		Dimmed string `json:"dimmed"`
	} `json:"rows"`
	Total       int    `json:"total"`
	LastUpdated string `json:"last_updated"`
	Visibility  struct {
		Batting  bool `json:"batting"`
		Pitching bool `json:"pitching"`
	} `json:"visibility"`
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url string, body any, out any) int {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func rowIDs(b tableBody) []int {
	ids := make([]int, 0, len(b.Rows))
	for _, r := range b.Rows {
		ids = append(ids, r.Player.ID)
	}
	return ids
}

// ---------------------------------------------------------------------------
// Roster endpoints
// ---------------------------------------------------------------------------

func TestHealthCheck(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	var body map[string]any
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/health", &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(3), body["players"])
}

func TestGetPlayers(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	var players []model.Player
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/players", &players))
	require.Len(t, players, 3)
	assert.Equal(t, "Ace", players[0].Name)
	assert.Equal(t, 3.0, players[0].StatsBySeasonVariant[k2024].ERA)
}

func TestGetLastUpdated(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	var body map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/last-updated", &body))
	assert.Equal(t, "2025-03-01T12:00:00Z", body["timestamp"])
}

func TestNotLoaded(t *testing.T) {
	srv, _, _ := newTestServer(t, false)

	var body ErrorResponse
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, srv.URL+"/api/table", &body))
	assert.Equal(t, http.StatusServiceUnavailable, body.Code)
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

func TestTableDefaultSortsByPointsDescending(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	var body tableBody
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/table?"+weightQuery, &body))
	assert.Equal(t, []int{1, 2, 3}, rowIDs(body))
	assert.Equal(t, 12.0, body.Rows[0].Player.Points)
	assert.Equal(t, 10.0, body.Rows[1].Player.Points)
	assert.Equal(t, 6.5, body.Rows[2].Player.Points)
	assert.Equal(t, 3, body.Total)
	assert.Equal(t, "2025-03-01T12:00:00Z", body.LastUpdated)
	// both groups visible: the batter's pitching cells are dimmed
	assert.Equal(t, "pitching", body.Rows[1].Dimmed)
}

func TestTableSeasonVariant(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	for _, q := range []string{"season=2025&variant=projected", "season=2025_projected"} {
		var body tableBody
		require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/table?"+q+"&"+weightQuery, &body), q)
		assert.Equal(t, []int{1, 3, 2}, rowIDs(body), q)
		assert.Equal(t, 15.0, body.Rows[0].Player.Points, q)
		assert.Equal(t, 5.0, body.Rows[1].Player.Points, q)
		assert.Equal(t, 0.0, body.Rows[2].Player.Points, q)
	}
}

func TestTableRoleSearchAndSort(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	var body tableBody
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/table?role=pitcher&sort=name&dir=asc", &body))
	assert.Equal(t, []int{1, 3}, rowIDs(body))
	assert.False(t, body.Visibility.Batting)
	assert.True(t, body.Visibility.Pitching)
	assert.Equal(t, 3, body.Total)

	body = tableBody{}
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/table?q=nyy&sort=name&dir=desc", &body))
	assert.Equal(t, []int{3, 1}, rowIDs(body))
}

func TestTableLimit(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	var body tableBody
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/table?limit=1&"+weightQuery, &body))
	assert.Equal(t, []int{1}, rowIDs(body))
	assert.Equal(t, 3, body.Total)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/table?limit=x", nil))
}

func TestTableUnknownSortKey(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	var body ErrorResponse
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/table?sort=bogus", &body))
	assert.Contains(t, body.Message, "unknown sort key")
}

func TestTableWithoutWeightsUsesDefaults(t *testing.T) {
	srv, _, svc := newTestServer(t, true)

	var body tableBody
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/table", &body))
	assert.Equal(t, testWeights(), svc.DefaultWeights())
	assert.Equal(t, 12.0, body.Rows[0].Player.Points)
}

// ---------------------------------------------------------------------------
// Calculate / Compare
// ---------------------------------------------------------------------------

func TestCalculate(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	req := map[string]any{"era": 1, "wins": 1, "hr": "2", "saves": 2, "year": "2024"}
	var scored []points.ScoredPlayer
	require.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/api/calculate", req, &scored))
	require.Len(t, scored, 3)
	assert.Equal(t, 12.0, scored[0].Points)
	assert.Equal(t, 10.0, scored[1].Points)
	assert.Equal(t, 6.5, scored[2].Points)
}

func TestCalculateWithoutYear(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	// no year reads the 2025 projections
	req := map[string]any{"era": 1, "wins": 1, "hr": 2, "saves": 2}
	var scored []points.ScoredPlayer
	require.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/api/calculate", req, &scored))
	require.Len(t, scored, 3)
	assert.Equal(t, 15.0, scored[0].Points)
	assert.Equal(t, 0.0, scored[1].Points)
	assert.Equal(t, 5.0, scored[2].Points)
}

func TestRecalculatorAgainstServer(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	rc := fetch.NewRecalculator(srv.URL, nil)
	scored, err := rc.ScoreRoster(context.Background(), testRoster().Players, k2025p, testWeights())
	require.NoError(t, err)
	require.Len(t, scored, 3)
	assert.Equal(t, 15.0, scored[0].Points)
	assert.Equal(t, 14.0, scored[0].Stats.Wins)
}

func TestCompare(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	req := CompareRequest{IDs: []int{1, 3}, Season: "2024", Weights: map[string]any{"era": 1, "wins": 1, "hr": 2, "saves": 2}}
	var rep compare.Report
	require.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/api/compare", req, &rep))
	assert.Equal(t, 1, rep.A.Player.ID)
	assert.Equal(t, 3, rep.B.Player.ID)

	era, ok := rep.Line(model.StatERA)
	require.True(t, ok)
	assert.Equal(t, compare.Better, era.A.Class)
	assert.Equal(t, "+1.50", era.A.Delta)

	pts, ok := rep.Line(model.StatPoints)
	require.True(t, ok)
	assert.Equal(t, compare.Better, pts.A.Class)
	assert.Equal(t, "12", pts.A.Display)
	assert.Equal(t, "7", pts.B.Display)
}

func TestCompareErrors(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	tests := []struct {
		name string
		ids  []int
		want int
	}{
		{"one id", []int{1}, http.StatusBadRequest},
		{"same id twice", []int{1, 1}, http.StatusBadRequest},
		{"three ids", []int{1, 2, 3}, http.StatusBadRequest},
		{"unknown id", []int{1, 99}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, postJSON(t, srv.URL+"/api/compare", CompareRequest{IDs: tt.ids}, nil))
		})
	}
}

func TestBadBody(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	resp, err := http.Post(srv.URL+"/api/compare", "application/json", bytes.NewReader([]byte("{")))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ---------------------------------------------------------------------------
// Refresh
// ---------------------------------------------------------------------------

func TestRefreshKeepsRosterOnFailure(t *testing.T) {
	srv, src, _ := newTestServer(t, true)

	src.fail(errors.New("upstream down"))
	var body map[string]any
	assert.Equal(t, http.StatusBadGateway, postJSON(t, srv.URL+"/api/refresh", nil, &body))
	assert.Equal(t, false, body["success"])

	var players []model.Player
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/players", &players))
	assert.Len(t, players, 3)
}

func TestRefreshSwapsRoster(t *testing.T) {
	srv, src, svc := newTestServer(t, true)

	next := testRoster()
	next.Players = next.Players[:1]
	next.LastUpdated = "2025-04-01T00:00:00Z"
	src.mu.Lock()
	src.roster = next
	src.mu.Unlock()

	var body map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/refresh-data", &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 1, svc.Status().Players)
	assert.Equal(t, "2025-04-01T00:00:00Z", svc.Status().LastUpdated)

	changes, ok := body["changes"].(map[string]any)
	require.True(t, ok, "changes missing: %v", body)
	assert.Equal(t, []any{float64(2), float64(3)}, changes["removed"])
	assert.Empty(t, changes["added"])
}

func TestDataRoutesFeedHTTPSource(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	src := &source.HTTP{Client: fetch.NewClient(nil, srv.URL+"/data/")}
	r, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, r.Players, 3)
	assert.Equal(t, "2025-03-01T12:00:00Z", r.LastUpdated)
	assert.Equal(t, 4.5, r.Players[2].StatsBySeasonVariant[k2024].ERA)
}
