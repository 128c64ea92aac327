package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/diamonddraft/diamond-draft/internal/board"
	"github.com/diamonddraft/diamond-draft/internal/compare"
	"github.com/diamonddraft/diamond-draft/internal/fetch"
	"github.com/diamonddraft/diamond-draft/internal/model"
	"github.com/diamonddraft/diamond-draft/internal/pipeline"
	"github.com/diamonddraft/diamond-draft/internal/points"
	"github.com/diamonddraft/diamond-draft/internal/store"
)

// weightParamPrefix marks table query parameters carrying a weight, e.g.
// w.hr=4.
const weightParamPrefix = "w."

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Handler serves the HTTP API over a Service.
type Handler struct {
	svc *Service
	log zerolog.Logger
}

func NewHandler(svc *Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	st := h.svc.Status()
	status := "ok"
	if st.Players == 0 {
		status = "loading"
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"source":  st.Source,
		"players": st.Players,
	})
}

// GetPlayers returns the raw roster as players.json lays it out.
func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	roster, err := h.svc.Roster()
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, roster.Players)
}

func (h *Handler) GetLastUpdated(w http.ResponseWriter, r *http.Request) {
	roster, err := h.svc.Roster()
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, store.LastUpdated{Timestamp: roster.LastUpdated})
}

// Calculate scores the roster. The body is the weight map with "year" and
// "variant" alongside; the response is the scored player list.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req fetch.CalculateRequest
	if err := decodeBody(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	scored, err := h.svc.Calculate(r.Context(), req.Season, req.Weights)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, scored)
}

// GetTable runs the table pipeline. Query parameters: season, variant, role,
// q, sort, dir, limit and w.<stat>.
func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	q, err := parseTableQuery(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid query", err)
		return
	}
	view, err := h.svc.Table(r.Context(), q)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// CompareRequest is the body of POST /api/compare.
type CompareRequest struct {
	IDs     []int          `json:"ids"`
	Season  string         `json:"season"`
	Variant string         `json:"variant"`
	Weights map[string]any `json:"weights"`
}

func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := decodeBody(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	var weights points.Weights
	if req.Weights != nil {
		weights = points.ParseWeights(req.Weights)
	}
	rep, err := h.svc.Compare(r.Context(), req.IDs, SeasonKey(req.Season, req.Variant), weights)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, rep)
}

// Refresh reloads the roster. The previous roster is kept on failure.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Refresh(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("refresh")
		h.respondJSON(w, http.StatusBadGateway, map[string]any{"success": false, "message": err.Error()})
		return
	}
	st := h.svc.Status()
	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"players":      st.Players,
		"last_updated": st.LastUpdated,
		"changes":      rep,
	})
}

func parseTableQuery(r *http.Request) (TableQuery, error) {
	v := r.URL.Query()
	q := TableQuery{State: pipeline.State{
		Season:  SeasonKey(v.Get("season"), v.Get("variant")),
		Role:    board.ParseRoleFilter(v.Get("role")),
		Search:  v.Get("q"),
		SortKey: v.Get("sort"),
		SortDir: board.ParseDirection(v.Get("dir")),
	}}
	if q.State.SortKey == "" {
		q.State.SortKey = model.StatPoints
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return TableQuery{}, errors.New("limit must be a non-negative integer")
		}
		q.Limit = n
	}

	raw := make(map[string]string)
	for k := range v {
		if stat, ok := strings.CutPrefix(k, weightParamPrefix); ok {
			raw[stat] = v.Get(k)
		}
	}
	if len(raw) > 0 {
		q.Weights = points.ParseWeightStrings(raw)
	}
	return q, nil
}

// SeasonKey reads "2025" + "projected" as well as a combined "2025_projected".
func SeasonKey(season, variant string) model.SeasonKey {
	if variant == "" {
		return model.ParseSeasonKey(season)
	}
	return model.SeasonKey{Season: season, Variant: variant}.Normalize()
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	return dec.Decode(v)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotLoaded):
		h.respondError(w, http.StatusServiceUnavailable, "roster not loaded", err)
	case errors.Is(err, pipeline.ErrUnknownSortKey), errors.Is(err, ErrBadIDs):
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, compare.ErrNotFound):
		h.respondError(w, http.StatusNotFound, err.Error(), nil)
	default:
		h.respondError(w, http.StatusInternalServerError, "scoring failed", err)
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("encoding response")
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		h.log.Warn().Err(err).Int("status", status).Msg(message)
	}
	h.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
