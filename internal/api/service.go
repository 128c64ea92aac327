// Package api serves the roster, the scored table and player comparisons
// over HTTP. Service is shared with the MCP tools.
package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/diamonddraft/diamond-draft/internal/board"
	"github.com/diamonddraft/diamond-draft/internal/compare"
	"github.com/diamonddraft/diamond-draft/internal/model"
	"github.com/diamonddraft/diamond-draft/internal/pipeline"
	"github.com/diamonddraft/diamond-draft/internal/points"
	"github.com/diamonddraft/diamond-draft/internal/reconcile"
	"github.com/diamonddraft/diamond-draft/internal/source"
)

var (
	ErrNotLoaded = errors.New("roster not loaded")
	ErrBadIDs    = errors.New("exactly two distinct player ids are required")
)

// TableQuery is one table request. Nil Weights means the service defaults.
type TableQuery struct {
	State   pipeline.State
	Weights points.Weights
	// Limit caps the returned rows when positive. Total is unaffected.
	Limit int
}

// Status summarises the loaded roster.
type Status struct {
	Source      string    `json:"source"`
	Players     int       `json:"players"`
	LastUpdated string    `json:"last_updated"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// Service holds the current roster snapshot. Every request scores the
// snapshot it started with; Refresh swaps the snapshot atomically.
type Service struct {
	src      source.Source
	scorer   points.Scorer
	defaults points.Weights
	log      zerolog.Logger

	mu       sync.RWMutex
	roster   *model.Roster
	loadedAt time.Time
}

// NewService wires a roster source and a scorer. defaults may be nil.
func NewService(src source.Source, scorer points.Scorer, defaults points.Weights, log zerolog.Logger) *Service {
	if defaults == nil {
		defaults = points.DefaultWeights()
	}
	return &Service{
		src:      src,
		scorer:   scorer,
		defaults: defaults.Clone(),
		log:      log.With().Str("component", "api").Logger(),
	}
}

// Load reads the roster from the source.
func (s *Service) Load(ctx context.Context) error {
	r, err := s.src.Load(ctx)
	if err != nil {
		return err
	}
	s.swap(r)
	return nil
}

// Refresh reloads the roster, bypassing caches when the source supports it,
// and reports what changed. On failure the previous roster stays in place.
func (s *Service) Refresh(ctx context.Context) (*reconcile.Report, error) {
	var (
		r   *model.Roster
		err error
	)
	if rf, ok := s.src.(source.Refresher); ok {
		r, err = rf.Refresh(ctx)
	} else {
		r, err = s.src.Load(ctx)
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("refresh failed, keeping previous roster")
		return nil, err
	}

	s.mu.RLock()
	prev := s.roster
	s.mu.RUnlock()
	rep := reconcile.BuildReport(prev, r)
	s.swap(r)

	s.log.Info().
		Int("added", len(rep.Added)).
		Int("removed", len(rep.Removed)).
		Int("changed", len(rep.Changed)).
		Msg("roster refreshed")
	return rep, nil
}

func (s *Service) swap(r *model.Roster) {
	s.mu.Lock()
	s.roster = r
	s.loadedAt = time.Now().UTC()
	s.mu.Unlock()
	s.log.Info().Int("players", len(r.Players)).Str("last_updated", r.LastUpdated).Msg("roster loaded")
}

// Roster returns the current snapshot. Callers must not modify it.
func (s *Service) Roster() (*model.Roster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.roster == nil {
		return nil, ErrNotLoaded
	}
	return s.roster, nil
}

func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Status{Source: s.src.Name(), LoadedAt: s.loadedAt}
	if s.roster != nil {
		st.Players = len(s.roster.Players)
		st.LastUpdated = s.roster.LastUpdated
	}
	return st
}

// DefaultWeights returns a copy of the configured preset.
func (s *Service) DefaultWeights() points.Weights { return s.defaults.Clone() }

func (s *Service) weightsOrDefault(w points.Weights) points.Weights {
	if w == nil {
		return s.defaults.Clone()
	}
	return w
}

// Player finds one roster player by id.
func (s *Service) Player(id int) (model.Player, error) {
	r, err := s.Roster()
	if err != nil {
		return model.Player{}, err
	}
	for _, p := range r.Players {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Player{}, fmt.Errorf("%w: %d", compare.ErrNotFound, id)
}

// Calculate scores the whole roster for one season selector.
func (s *Service) Calculate(ctx context.Context, key model.SeasonKey, w points.Weights) ([]points.ScoredPlayer, error) {
	r, err := s.Roster()
	if err != nil {
		return nil, err
	}
	return s.scorer.ScoreRoster(ctx, r.Players, key.Normalize(), s.weightsOrDefault(w))
}

// Table runs the full pipeline for q and returns the published view.
func (s *Service) Table(ctx context.Context, q TableQuery) (pipeline.View, error) {
	o, err := s.orchestrator(q.State, q.Weights)
	if err != nil {
		return pipeline.View{}, err
	}
	if err := o.SetSortDirection(ctx, q.State.SortKey, q.State.SortDir); err != nil {
		return pipeline.View{}, err
	}
	v := o.View()
	if q.Limit > 0 && len(v.Rows) > q.Limit {
		v.Rows = v.Rows[:q.Limit]
	}
	return v, nil
}

// Compare scores the roster and compares two players selected in order.
func (s *Service) Compare(ctx context.Context, ids []int, key model.SeasonKey, w points.Weights) (compare.Report, error) {
	if len(ids) != compare.MaxSelected || ids[0] == ids[1] {
		return compare.Report{}, ErrBadIDs
	}
	state := pipeline.DefaultState()
	state.Season = key
	o, err := s.orchestrator(state, w)
	if err != nil {
		return compare.Report{}, err
	}
	if err := o.Run(ctx); err != nil {
		return compare.Report{}, err
	}
	var (
		rep compare.Report
		ok  bool
	)
	for _, id := range ids {
		if rep, ok, err = o.Select(id); err != nil {
			return compare.Report{}, err
		}
	}
	if !ok {
		return compare.Report{}, ErrBadIDs
	}
	return rep, nil
}

func (s *Service) orchestrator(state pipeline.State, w points.Weights) (*pipeline.Orchestrator, error) {
	r, err := s.Roster()
	if err != nil {
		return nil, err
	}
	if state.SortKey == "" {
		state.SortKey = model.StatPoints
	}
	if state.SortDir == "" {
		state.SortDir = board.Desc
	}
	if state.Role == "" {
		state.Role = board.FilterAll
	}
	return pipeline.New(r, s.scorer, nil,
		pipeline.WithLogger(s.log),
		pipeline.WithState(state),
		pipeline.WithWeights(s.weightsOrDefault(w)),
	), nil
}
