// Package pipeline owns the table selection state and re-runs
// score -> filter/search -> sort on every change, handing the result to a
// Renderer.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/diamonddraft/diamond-draft/internal/board"
	"github.com/diamonddraft/diamond-draft/internal/compare"
	"github.com/diamonddraft/diamond-draft/internal/model"
	"github.com/diamonddraft/diamond-draft/internal/points"
)

var ErrUnknownSortKey = errors.New("unknown sort key")

// State is the user's current table selection.
type State struct {
	Season  model.SeasonKey  `json:"season"`
	Role    board.RoleFilter `json:"role"`
	Search  string           `json:"search"`
	SortKey string           `json:"sort_key"`
	SortDir board.Direction  `json:"sort_dir"`
}

// DefaultState is 2024 actual, every role, no search, points descending.
func DefaultState() State {
	return State{
		Season:  model.DefaultSeasonKey,
		Role:    board.FilterAll,
		SortKey: model.StatPoints,
		SortDir: board.Desc,
	}
}

type SortDescriptor struct {
	Key       string          `json:"key"`
	Direction board.Direction `json:"direction"`
}

// Row is one table row. Dimmed names the stat group that does not apply to
// the player while both groups are shown.
type Row struct {
	Scored points.ScoredPlayer `json:"player"`
	Dimmed model.StatGroup     `json:"dimmed,omitempty"`
}

// View is what a Renderer receives after each run. Rows must be treated as
// read-only.
type View struct {
	Rows        []Row            `json:"rows"`
	Columns     []model.Stat     `json:"columns"`
	Visibility  board.Visibility `json:"visibility"`
	Sort        SortDescriptor   `json:"sort"`
	Season      model.SeasonKey  `json:"season"`
	Role        board.RoleFilter `json:"role"`
	Search      string           `json:"search"`
	Weights     points.Weights   `json:"weights"`
	LastUpdated string           `json:"last_updated"`
	// Total is the roster size before filtering.
	Total int `json:"total"`
}

type Renderer interface {
	Render(ctx context.Context, v View) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, v View) error

func (f RendererFunc) Render(ctx context.Context, v View) error { return f(ctx, v) }

type Option func(*Orchestrator)

func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithState replaces the default starting selection.
func WithState(s State) Option {
	return func(o *Orchestrator) { o.state = s }
}

// WithWeights replaces the default starting weights.
func WithWeights(w points.Weights) Option {
	return func(o *Orchestrator) { o.weights = w.Clone() }
}

// Orchestrator holds one user's selection over an immutable roster. It is
// not safe for concurrent use.
type Orchestrator struct {
	roster   *model.Roster
	scorer   points.Scorer
	renderer Renderer
	log      zerolog.Logger

	state     State
	weights   points.Weights
	scored    []points.ScoredPlayer
	view      View
	selection compare.Selection
}

// New returns an orchestrator over roster. renderer may be nil.
func New(roster *model.Roster, scorer points.Scorer, renderer Renderer, opts ...Option) *Orchestrator {
	if roster == nil {
		roster = &model.Roster{}
	}
	o := &Orchestrator{
		roster:   roster,
		scorer:   scorer,
		renderer: renderer,
		log:      zerolog.Nop(),
		state:    DefaultState(),
		weights:  points.DefaultWeights(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.state.Season = o.state.Season.Normalize()
	return o
}

// Run recomputes the view from the current state and publishes it.
func (o *Orchestrator) Run(ctx context.Context) error {
	return o.apply(ctx, o.state, o.weights)
}

func (o *Orchestrator) SetWeights(ctx context.Context, w points.Weights) error {
	return o.apply(ctx, o.state, w.Clone())
}

func (o *Orchestrator) SetRoleFilter(ctx context.Context, f board.RoleFilter) error {
	next := o.state
	next.Role = f
	return o.apply(ctx, next, o.weights)
}

func (o *Orchestrator) SetSearchTerm(ctx context.Context, term string) error {
	next := o.state
	next.Search = term
	return o.apply(ctx, next, o.weights)
}

// SetSort flips the direction when key is already the sort key, otherwise
// sorts by key descending.
func (o *Orchestrator) SetSort(ctx context.Context, key string) error {
	if !board.IsSortKey(key) {
		return fmt.Errorf("%w: %q", ErrUnknownSortKey, key)
	}
	next := o.state
	if next.SortKey == key {
		next.SortDir = next.SortDir.Toggle()
	} else {
		next.SortKey = key
		next.SortDir = board.Desc
	}
	return o.apply(ctx, next, o.weights)
}

// SetSortDirection sets key and direction explicitly.
func (o *Orchestrator) SetSortDirection(ctx context.Context, key string, dir board.Direction) error {
	if !board.IsSortKey(key) {
		return fmt.Errorf("%w: %q", ErrUnknownSortKey, key)
	}
	next := o.state
	next.SortKey, next.SortDir = key, dir
	return o.apply(ctx, next, o.weights)
}

func (o *Orchestrator) SetSeasonVariant(ctx context.Context, key model.SeasonKey) error {
	next := o.state
	next.Season = key.Normalize()
	return o.apply(ctx, next, o.weights)
}

// apply runs the whole pipeline for a candidate state and commits it only
// when scoring and rendering succeed.
func (o *Orchestrator) apply(ctx context.Context, next State, w points.Weights) error {
	if o.scorer == nil {
		return errors.New("pipeline: no scorer")
	}
	scored, err := o.scorer.ScoreRoster(ctx, o.roster.Players, next.Season, w)
	if err != nil {
		return fmt.Errorf("score roster: %w", err)
	}
	view := buildView(scored, next, w)
	view.LastUpdated = o.roster.LastUpdated

	if o.renderer != nil {
		if err := o.renderer.Render(ctx, view); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}
	o.state, o.weights, o.scored, o.view = next, w, scored, view

	o.log.Debug().
		Str("season", next.Season.String()).
		Str("role", string(next.Role)).
		Str("search", next.Search).
		Str("sort", next.SortKey+" "+string(next.SortDir)).
		Int("rows", len(view.Rows)).
		Int("total", view.Total).
		Msg("pipeline run")
	return nil
}

func buildView(scored []points.ScoredPlayer, s State, w points.Weights) View {
	vis := board.VisibilityFor(s.Role)
	rows := board.Sort(board.Filter(scored, s.Role, s.Search), s.SortKey, s.SortDir)
	out := make([]Row, 0, len(rows))
	for _, sp := range rows {
		out = append(out, Row{Scored: sp, Dimmed: board.DimmedGroup(sp.Player, vis)})
	}
	return View{
		Rows:       out,
		Columns:    vis.Columns(),
		Visibility: vis,
		Sort:       SortDescriptor{Key: s.SortKey, Direction: s.SortDir},
		Season:     s.Season,
		Role:       s.Role,
		Search:     s.Search,
		Weights:    w,
		Total:      len(scored),
	}
}

func (o *Orchestrator) State() State { return o.state }

// View returns the last published view.
func (o *Orchestrator) View() View { return o.view }

func (o *Orchestrator) Weights() points.Weights { return o.weights.Clone() }

// Scored returns the full scored roster of the last run, unfiltered.
func (o *Orchestrator) Scored() []points.ScoredPlayer { return slices.Clone(o.scored) }

// Select adds id to the comparison selection. Once two players are selected
// the report is returned with ok=true.
func (o *Orchestrator) Select(id int) (compare.Report, bool, error) {
	if _, err := compare.Lookup(o.scored, id); err != nil {
		return compare.Report{}, false, err
	}
	o.selection.Add(id)
	return o.selection.Resolve(o.scored)
}

// Deselect removes id from the comparison selection.
func (o *Orchestrator) Deselect(id int) { o.selection.Remove(id) }

// Selected returns the comparison selection, oldest first.
func (o *Orchestrator) Selected() []int { return o.selection.IDs() }

// Comparison compares the selected players using the latest scores.
func (o *Orchestrator) Comparison() (compare.Report, bool, error) {
	return o.selection.Resolve(o.scored)
}
