package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/diamonddraft/diamond-draft/internal/model"
	"github.com/diamonddraft/diamond-draft/internal/points"
	"github.com/diamonddraft/diamond-draft/internal/resolve"
)

// CalculatePath is the server route that re-scores the roster.
const CalculatePath = "/api/calculate"

// CalculateRequest is the body of a recalculation call: the weight map with
// the season selector alongside.
type CalculateRequest struct {
	Weights points.Weights
	Season  model.SeasonKey
}

func (r CalculateRequest) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Weights)+2)
	for k, v := range r.Weights {
		out[k] = v
	}
	key := r.Season.Normalize()
	out["year"] = key.Season
	out["variant"] = key.Variant
	return json.Marshal(out)
}

func (r *CalculateRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Season = calculateSeason(stringField(raw["year"]), stringField(raw["variant"]))
	r.Weights = points.ParseWeights(raw)
	return nil
}

// calculateSeason resolves the year and variant of a calculate body. A
// missing year means 2025, and a bare "2025" reads the stats_2025 object,
// which holds projections.
func calculateSeason(year, variant string) model.SeasonKey {
	year = strings.TrimSpace(year)
	if year == "" {
		year = model.Season2025
	}
	if variant != "" {
		return model.SeasonKey{Season: year, Variant: variant}.Normalize()
	}
	key := model.ParseSeasonKey(year)
	if key.Season == model.Season2025 && !strings.Contains(year, "_") {
		key.Variant = model.VariantProjected
	}
	return key
}

// stringField accepts "2025" as well as 2025.
func stringField(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}

// Recalculator scores the roster on a remote server. The server scores its
// own copy of the roster; players is only checked against the response size.
type Recalculator struct {
	HTTP     *http.Client
	BaseURL  string
	Resolver *resolve.Resolver
}

func NewRecalculator(baseURL string, resolver *resolve.Resolver) *Recalculator {
	return &Recalculator{
		HTTP:     &http.Client{Timeout: 30 * time.Second},
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Resolver: resolver,
	}
}

func (r *Recalculator) ScoreRoster(ctx context.Context, players []model.Player, key model.SeasonKey, w points.Weights) ([]points.ScoredPlayer, error) {
	key = key.Normalize()
	body, err := json.Marshal(CalculateRequest{Weights: w, Season: key})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+CalculatePath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("POST %s failed: %d body=%s", CalculatePath, resp.StatusCode, string(raw))
	}

	var scored []points.ScoredPlayer
	if err := json.Unmarshal(raw, &scored); err != nil {
		return nil, fmt.Errorf("decode calculate response: %w", err)
	}
	if players != nil && len(scored) != len(players) {
		return nil, fmt.Errorf("calculate returned %d players, roster has %d", len(scored), len(players))
	}
	for i := range scored {
		if scored[i].Stats == (model.StatBundle{}) {
			scored[i].Stats = r.Resolver.Resolve(scored[i].Player, key)
		}
	}
	return scored, nil
}
