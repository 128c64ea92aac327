package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/diamonddraft/diamond-draft/internal/api"
	"github.com/diamonddraft/diamond-draft/internal/config"
	"github.com/diamonddraft/diamond-draft/internal/fetch"
	"github.com/diamonddraft/diamond-draft/internal/logging"
	"github.com/diamonddraft/diamond-draft/internal/points"
	"github.com/diamonddraft/diamond-draft/internal/resolve"
	"github.com/diamonddraft/diamond-draft/internal/source"
)

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func main() {
	var (
		configPath = flag.String("config", "", "config file (json or yaml); DIAMOND_* env vars override")
		addr       = flag.String("addr", "", "HTTP listen address (overrides server.addr)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	log := logging.New(cfg.Log.Level, os.Stderr, cfg.Log.Console)

	src, closeSrc, err := source.New(cfg.Data, log)
	if err != nil {
		log.Fatal().Err(err).Msg("data source")
	}
	defer closeSrc()

	scorer, err := newScorer(cfg.Scoring, log)
	if err != nil {
		log.Fatal().Err(err).Msg("scorer")
	}
	weights, err := points.LoadPreset(cfg.Scoring.PresetsFile, cfg.Scoring.Preset, cfg.Scoring.AvgField)
	if err != nil {
		log.Fatal().Err(err).Msg("weights")
	}

	svc := api.NewService(src, scorer, weights, log)
	if err := svc.Load(context.Background()); err != nil {
		// keep serving; /api/refresh can recover once the data is there
		log.Error().Err(err).Str("source", src.Name()).Msg("initial roster load failed")
	}

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "diamond-draft-mcp",
			Version: "0.1.0",
		},
		nil,
	)
	registry := registerTools(server, svc)

	apiKey := strings.TrimSpace(os.Getenv(cfg.Server.APIKeyEnv))
	if cfg.Server.RequireAuth && apiKey == "" {
		log.Fatal().Msgf("%s is required (set env var or set server.requireAuth=false)", cfg.Server.APIKeyEnv)
	}
	auth := withAuth(apiKey, cfg.Server.AuthHeader)

	mcpHandler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})

	r := api.NewRouter(api.NewHandler(svc, log), cfg.CORS.Origins, log)
	r.Handle("/tools", auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		b, _ := json.MarshalIndent(map[string]any{"tools": registry}, "", "  ")
		w.Write(b)
	})))
	r.Handle(cfg.Server.MCPPath, auth(mcpHandler))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("mcp", cfg.Server.MCPPath).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

// newScorer scores in process, or on the recalculation server when
// RemoteURL is set.
func newScorer(cfg config.ScoringConfig, log zerolog.Logger) (points.Scorer, error) {
	resolver := resolve.New(func(m resolve.Missing) {
		log.Debug().
			Int("player_id", m.PlayerID).
			Str("player", m.Name).
			Str("season", m.Key.Season).
			Str("variant", m.Key.Variant).
			Msg("no stats for season, using zeros")
	})
	if cfg.RemoteURL != "" {
		return fetch.NewRecalculator(cfg.RemoteURL, resolver), nil
	}
	engine, err := points.NewEngine(cfg.AvgField)
	if err != nil {
		return nil, err
	}
	return points.NewLocal(engine, resolver), nil
}

// withAuth checks the API key header, falling back to a bearer token. An
// empty apiKey disables the check.
func withAuth(apiKey, header string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			key := strings.TrimSpace(r.Header.Get(header))
			if key == "" {
				if authz := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
					key = strings.TrimSpace(authz[7:])
				}
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func addTool[T any](server *mcp.Server, registry *[]toolInfo, tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, T) (*mcp.CallToolResult, any, error)) {
	*registry = append(*registry, toolInfo{Name: tool.Name, Description: tool.Description})
	mcp.AddTool(server, tool, handler)
}

func toolJSON(res []byte, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolJSONBytes(res), nil, nil
}

func toolJSONBytes(res []byte) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(res)},
		},
	}
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
