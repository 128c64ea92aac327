package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"

	"github.com/diamonddraft/diamond-draft/internal/board"
	"github.com/diamonddraft/diamond-draft/internal/config"
	"github.com/diamonddraft/diamond-draft/internal/export"
	"github.com/diamonddraft/diamond-draft/internal/fetch"
	"github.com/diamonddraft/diamond-draft/internal/logging"
	"github.com/diamonddraft/diamond-draft/internal/model"
	"github.com/diamonddraft/diamond-draft/internal/pipeline"
	"github.com/diamonddraft/diamond-draft/internal/points"
	"github.com/diamonddraft/diamond-draft/internal/resolve"
	"github.com/diamonddraft/diamond-draft/internal/rosterdb"
	"github.com/diamonddraft/diamond-draft/internal/source"
	"github.com/diamonddraft/diamond-draft/internal/store"
)

// options are the table selection and outputs of one dev run.
type options struct {
	State   pipeline.State
	Weights points.Weights
	JSONOut string
	XLSXOut string
}

// runFlags are the command-line choices of one dev run.
type runFlags struct {
	Sync         bool
	Live         bool
	ImportSQLite string
	Season       string
	Variant      string
	Role         string
	Search       string
	SortKey      string
	Dir          string
	Preset       string
	JSONOut      string
	XLSXOut      string
}

func main() {
	var f runFlags
	configPath := flag.String("config", "", "config file (json or yaml); DIAMOND_* env vars override")
	flag.BoolVar(&f.Sync, "sync", false, "download players.json and last_updated.json into data.root")
	flag.BoolVar(&f.Live, "live", false, "with -sync: ignore the cache and skip disk writes")
	flag.StringVar(&f.ImportSQLite, "import-sqlite", "", "write the file roster into this sqlite database")
	flag.StringVar(&f.Season, "season", "2024", "season: 2024, 2025 or 2025_projected")
	flag.StringVar(&f.Variant, "variant", "", "actual|projected (2025 only)")
	flag.StringVar(&f.Role, "role", "all", "all|batter|pitcher")
	flag.StringVar(&f.Search, "q", "", "search name, team or position")
	flag.StringVar(&f.SortKey, "sort", model.StatPoints, "sort column")
	flag.StringVar(&f.Dir, "dir", "desc", "asc|desc")
	flag.StringVar(&f.Preset, "preset", "", "weight preset name (overrides scoring.preset)")
	flag.StringVar(&f.JSONOut, "out-json", "", "write the scored table as JSON")
	flag.StringVar(&f.XLSXOut, "out-xlsx", "", "write the scored table as an xlsx workbook")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log.Level, os.Stderr, true)

	if err := run(context.Background(), cfg, f, log); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Error().Err(err).Msg("missing roster data; run with -sync first")
		} else {
			log.Error().Err(err).Send()
		}
		os.Exit(1)
	}
}

// run performs the steps selected by f. Every resource it opens is released
// before it returns.
func run(ctx context.Context, cfg *config.Config, f runFlags, log zerolog.Logger) error {
	if f.Sync {
		if err := syncRoster(ctx, cfg.Data, f.Live, log); err != nil {
			return err
		}
	}
	if f.ImportSQLite != "" {
		if err := importRoster(ctx, store.NewJSONStore(cfg.Data.Root), f.ImportSQLite, log); err != nil {
			return err
		}
	}
	if f.JSONOut == "" && f.XLSXOut == "" {
		return nil
	}

	if f.Preset != "" {
		cfg.Scoring.Preset = f.Preset
	}
	weights, err := points.LoadPreset(cfg.Scoring.PresetsFile, cfg.Scoring.Preset, cfg.Scoring.AvgField)
	if err != nil {
		return err
	}
	engine, err := points.NewEngine(cfg.Scoring.AvgField)
	if err != nil {
		return err
	}

	src, closeSrc, err := source.New(cfg.Data, log)
	if err != nil {
		return err
	}
	defer closeSrc()
	roster, err := src.Load(ctx)
	if err != nil {
		return err
	}

	missing := 0
	scorer := points.NewLocal(engine, resolve.New(func(resolve.Missing) { missing++ }))

	key := model.ParseSeasonKey(f.Season)
	if f.Variant != "" {
		key = model.SeasonKey{Season: key.Season, Variant: f.Variant}.Normalize()
	}
	opts := options{
		State: pipeline.State{
			Season:  key,
			Role:    board.ParseRoleFilter(f.Role),
			Search:  f.Search,
			SortKey: f.SortKey,
			SortDir: board.ParseDirection(f.Dir),
		},
		Weights: weights,
		JSONOut: f.JSONOut,
		XLSXOut: f.XLSXOut,
	}
	view, err := render(ctx, roster, scorer, opts, log)
	if err != nil {
		return err
	}

	log.Info().
		Str("season", view.Season.String()).
		Int("rows", len(view.Rows)).
		Int("total", view.Total).
		Int("missing_bundles", missing).
		Msg("table written")
	return nil
}

// syncRoster downloads the roster documents from the data host into the
// data directory.
func syncRoster(ctx context.Context, cfg config.DataConfig, live bool, log zerolog.Logger) error {
	client := fetch.NewClient(store.NewJSONStore(cfg.Root), cfg.BaseURL)
	client.UseCache = !live
	client.DisableWrite = live

	r, err := client.Roster(ctx, true)
	if err != nil {
		return err
	}
	log.Info().Int("players", len(r.Players)).Str("last_updated", r.LastUpdated).Str("root", cfg.Root).Msg("roster synced")
	return nil
}

// importRoster copies the JSON roster in st into the sqlite database at path,
// replacing whatever it held.
func importRoster(ctx context.Context, st *store.JSONStore, path string, log zerolog.Logger) error {
	r, err := st.ReadRoster()
	if err != nil {
		return err
	}
	db, err := rosterdb.Open(path, log)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return err
	}
	if err := db.ReplaceRoster(ctx, r); err != nil {
		return err
	}
	n, err := db.PlayerCount(ctx)
	if err != nil {
		return err
	}
	log.Info().Int64("players", n).Str("db", path).Msg("roster imported")
	return nil
}

// render runs the table pipeline once and writes the requested outputs.
func render(ctx context.Context, roster *model.Roster, scorer points.Scorer, opts options, log zerolog.Logger) (pipeline.View, error) {
	var renderer pipeline.Renderer
	if opts.XLSXOut != "" {
		renderer = &export.XLSX{Path: opts.XLSXOut}
	}
	o := pipeline.New(roster, scorer, renderer,
		pipeline.WithLogger(log),
		pipeline.WithState(opts.State),
		pipeline.WithWeights(opts.Weights),
	)
	if err := o.SetSortDirection(ctx, opts.State.SortKey, opts.State.SortDir); err != nil {
		return pipeline.View{}, err
	}
	view := o.View()

	if opts.JSONOut != "" {
		rows := make([]points.ScoredPlayer, 0, len(view.Rows))
		for _, row := range view.Rows {
			rows = append(rows, row.Scored)
		}
		result := points.BuildResult(view.Season, view.Weights, rows)
		if err := points.WriteResult(opts.JSONOut, result); err != nil {
			return pipeline.View{}, err
		}
	}
	return view, nil
}
