package points

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diamonddraft/diamond-draft/internal/model"
	"github.com/diamonddraft/diamond-draft/internal/resolve"
)

const (
	// BaselineERA is subtracted from for era-like stats: lower is better.
	BaselineERA = 5.0
	// WalksBaseline normalises walk counts into the range of the other terms.
	WalksBaseline = 100.0
)

var ErrUnknownAvgField = errors.New("avg field must be avg or hits")

// Engine computes fantasy points for one player and one bundle.
type Engine struct {
	// AvgField is the batting-average-like stat that carries the avg weight
	// ("avg" or "hits").
	AvgField string
}

// NewEngine validates avgField; empty means "avg".
func NewEngine(avgField string) (*Engine, error) {
	switch avgField {
	case "":
		avgField = model.StatAvg
	case model.StatAvg, model.StatHits:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAvgField, avgField)
	}
	return &Engine{AvgField: avgField}, nil
}

// Score returns the weighted score rounded half away from zero to 2 places.
func (e *Engine) Score(p model.Player, b model.StatBundle, w Weights) float64 {
	var total decimal.Decimal
	if p.IsPitcher {
		total = e.pitcher(b, w)
	} else {
		total = e.batter(b, w)
	}
	return total.Round(2).InexactFloat64()
}

func (e *Engine) batter(b model.StatBundle, w Weights) decimal.Decimal {
	avgField := e.AvgField
	if avgField == "" {
		avgField = model.StatAvg
	}
	return term(b.Get(avgField), w.Get(avgField)).
		Add(term(b.Runs, w.Get(model.StatRuns))).
		Add(term(b.RBI, w.Get(model.StatRBI))).
		Add(term(b.Steals, w.Get(model.StatSteals))).
		Add(term(b.HR, w.Get(model.StatHR))).
		Add(term(b.BABIP, w.Get(model.StatBABIP)))
}

func (e *Engine) pitcher(b model.StatBundle, w Weights) decimal.Decimal {
	return term(b.Wins, w.Get(model.StatWins)).
		Add(inverted(b.ERA, w.Get(model.StatERA))).
		Add(term(b.Strikeouts, w.Get(model.StatStrikeouts))).
		Add(invertedWalks(b.Walks, w.Get(model.StatWalks))).
		Add(term(b.Saves, w.Get(model.StatSaves))).
		Add(inverted(b.FIP, w.Get(model.StatFIP))).
		Add(term(b.RunsScored, w.Get(model.StatRunsScored)))
}

func term(v, weight float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Mul(decimal.NewFromFloat(weight))
}

// inverted rewards an era-like stat below the baseline. An unweighted stat
// contributes nothing.
func inverted(v, weight float64) decimal.Decimal {
	if weight == 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(BaselineERA).Sub(decimal.NewFromFloat(v)).Mul(decimal.NewFromFloat(weight))
}

func invertedWalks(walks, weight float64) decimal.Decimal {
	if weight == 0 {
		return decimal.Zero
	}
	base := decimal.NewFromFloat(WalksBaseline)
	return base.Sub(decimal.NewFromFloat(walks)).Mul(decimal.NewFromFloat(weight)).Div(base)
}

// Round2 rounds x half away from zero at two decimals, on its shortest
// decimal representation (12.345 -> 12.35).
func Round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// Scorer produces a scored copy of every roster player for one selector.
// Implementations never mutate the input roster.
type Scorer interface {
	ScoreRoster(ctx context.Context, players []model.Player, key model.SeasonKey, w Weights) ([]ScoredPlayer, error)
}

// Local scores in process.
type Local struct {
	Engine   *Engine
	Resolver *resolve.Resolver
}

// NewLocal returns an in-process scorer.
func NewLocal(engine *Engine, resolver *resolve.Resolver) *Local {
	return &Local{Engine: engine, Resolver: resolver}
}

func (l *Local) ScoreRoster(_ context.Context, players []model.Player, key model.SeasonKey, w Weights) ([]ScoredPlayer, error) {
	engine := l.Engine
	if engine == nil {
		engine = &Engine{AvgField: model.StatAvg}
	}
	key = key.Normalize()
	out := make([]ScoredPlayer, 0, len(players))
	for _, p := range players {
		b := l.Resolver.Resolve(p, key)
		out = append(out, ScoredPlayer{
			Player: p,
			Stats:  b,
			Points: engine.Score(p, b, w),
		})
	}
	return out, nil
}

// Result is a scored roster written to disk.
type Result struct {
	Season         model.SeasonKey `json:"season"`
	GeneratedAtUTC string          `json:"generated_at_utc"`
	Weights        Weights         `json:"weights"`
	Players        []ScoredPlayer  `json:"players"`
	TotalPoints    float64         `json:"total_points"`
}

func BuildResult(key model.SeasonKey, w Weights, scored []ScoredPlayer) *Result {
	total := decimal.Zero
	for _, sp := range scored {
		total = total.Add(decimal.NewFromFloat(sp.Points))
	}
	return &Result{
		Season:         key.Normalize(),
		GeneratedAtUTC: time.Now().UTC().Format(time.RFC3339),
		Weights:        w,
		Players:        scored,
		TotalPoints:    total.Round(2).InexactFloat64(),
	}
}

func WriteResult(path string, result *Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}
