// Package source loads the roster from the configured data source.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/diamonddraft/diamond-draft/internal/config"
	"github.com/diamonddraft/diamond-draft/internal/fetch"
	"github.com/diamonddraft/diamond-draft/internal/model"
	"github.com/diamonddraft/diamond-draft/internal/rosterdb"
	"github.com/diamonddraft/diamond-draft/internal/store"
)

// ErrLoad wraps every failure to produce a usable roster.
var ErrLoad = errors.New("roster load failed")

// Source delivers a complete roster or an error, never a partial one.
type Source interface {
	Name() string
	Load(ctx context.Context) (*model.Roster, error)
}

// Refresher is implemented by sources that can bypass their cache.
type Refresher interface {
	Refresh(ctx context.Context) (*model.Roster, error)
}

// File reads players.json and last_updated.json from a directory.
type File struct {
	Store *store.JSONStore
}

func (f *File) Name() string { return config.SourceFile }

func (f *File) Load(_ context.Context) (*model.Roster, error) {
	r, err := f.Store.ReadRoster()
	if err != nil {
		return nil, loadError(f, err)
	}
	return checked(f, r)
}

// HTTP downloads the roster documents, caching them on disk.
type HTTP struct {
	Client *fetch.Client
}

func (h *HTTP) Name() string { return config.SourceHTTP }

func (h *HTTP) Load(ctx context.Context) (*model.Roster, error) {
	return h.load(ctx, false)
}

// Refresh ignores the disk cache.
func (h *HTTP) Refresh(ctx context.Context) (*model.Roster, error) {
	return h.load(ctx, true)
}

func (h *HTTP) load(ctx context.Context, force bool) (*model.Roster, error) {
	r, err := h.Client.Roster(ctx, force)
	if err != nil {
		return nil, loadError(h, err)
	}
	return checked(h, r)
}

// SQLite reads the roster tables.
type SQLite struct {
	DB *rosterdb.DB
}

func (s *SQLite) Name() string { return config.SourceSQLite }

func (s *SQLite) Load(ctx context.Context) (*model.Roster, error) {
	r, err := s.DB.LoadRoster(ctx)
	if err != nil {
		return nil, loadError(s, err)
	}
	return checked(s, r)
}

func loadError(src Source, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrLoad, src.Name(), err)
}

// checked rejects rosters the pipeline cannot work with.
func checked(src Source, r *model.Roster) (*model.Roster, error) {
	if len(r.Players) == 0 {
		return nil, loadError(src, errors.New("roster is empty"))
	}
	seen := make(map[int]struct{}, len(r.Players))
	for _, p := range r.Players {
		if _, dup := seen[p.ID]; dup {
			return nil, loadError(src, fmt.Errorf("duplicate player id %d", p.ID))
		}
		seen[p.ID] = struct{}{}
	}
	return r, nil
}

// New builds the source named by cfg.Source. The returned close function
// releases any database handle.
func New(cfg config.DataConfig, log zerolog.Logger) (Source, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Source {
	case config.SourceFile, "":
		return &File{Store: store.NewJSONStore(cfg.Root)}, noop, nil
	case config.SourceHTTP:
		return &HTTP{Client: fetch.NewClient(store.NewJSONStore(cfg.Root), cfg.BaseURL)}, noop, nil
	case config.SourceSQLite:
		db, err := rosterdb.Open(cfg.SQLitePath, log)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return &SQLite{DB: db}, db.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown data source %q", cfg.Source)
}
