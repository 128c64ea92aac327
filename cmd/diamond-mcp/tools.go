package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/diamonddraft/diamond-draft/internal/api"
	"github.com/diamonddraft/diamond-draft/internal/board"
	"github.com/diamonddraft/diamond-draft/internal/compare"
	"github.com/diamonddraft/diamond-draft/internal/model"
	"github.com/diamonddraft/diamond-draft/internal/pipeline"
	"github.com/diamonddraft/diamond-draft/internal/points"
)

const defaultTableLimit = 25

type PlayerTableArgs struct {
	Season    string             `json:"season,omitempty" jsonschema:"Season: 2024 or 2025 (default 2024)"`
	Variant   string             `json:"variant,omitempty" jsonschema:"actual|projected, 2025 only (default actual)"`
	Role      string             `json:"role,omitempty" jsonschema:"all|batter|pitcher (default all)"`
	Search    string             `json:"search,omitempty" jsonschema:"Case-insensitive text matched against name, team and position"`
	Sort      string             `json:"sort,omitempty" jsonschema:"Sort column: points, name, team, position or a stat key (default points)"`
	Direction string             `json:"direction,omitempty" jsonschema:"asc|desc (default desc)"`
	Weights   map[string]float64 `json:"weights,omitempty" jsonschema:"Scoring weights by stat key; omitted means the server preset"`
	Limit     int                `json:"limit,omitempty" jsonschema:"Max rows (default 25)"`
}

type ComparePlayersArgs struct {
	IDs     []int              `json:"ids" jsonschema:"Exactly two player ids (required)"`
	Season  string             `json:"season,omitempty" jsonschema:"Season: 2024 or 2025 (default 2024)"`
	Variant string             `json:"variant,omitempty" jsonschema:"actual|projected, 2025 only (default actual)"`
	Weights map[string]float64 `json:"weights,omitempty" jsonschema:"Scoring weights by stat key; omitted means the server preset"`
}

type PlayerLookupArgs struct {
	ID int `json:"id" jsonschema:"Player id (required)"`
}

type EmptyArgs struct{}

func registerTools(server *mcp.Server, svc *api.Service) []toolInfo {
	registry := make([]toolInfo, 0, 8)

	addTool(server, &registry, &mcp.Tool{
		Name:        "player_table",
		Description: "Scored, filtered and sorted player table for a season",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args PlayerTableArgs) (*mcp.CallToolResult, any, error) {
		return toolJSON(buildPlayerTable(ctx, svc, args))
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "compare_players",
		Description: "Side-by-side stat comparison of two players with better/worse per stat",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ComparePlayersArgs) (*mcp.CallToolResult, any, error) {
		return toolJSON(buildComparison(ctx, svc, args))
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "player_lookup",
		Description: "Player identity and every stored season stat bundle",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args PlayerLookupArgs) (*mcp.CallToolResult, any, error) {
		if args.ID == 0 {
			return toolError(fmt.Errorf("id is required")), nil, nil
		}
		return toolJSON(lookupPlayer(svc, args.ID))
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "stat_catalog",
		Description: "Stat keys, labels, column groups and the default scoring weights",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args EmptyArgs) (*mcp.CallToolResult, any, error) {
		return toolJSON(statCatalog(svc))
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "data_status",
		Description: "Roster source, player count and last updated timestamp",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args EmptyArgs) (*mcp.CallToolResult, any, error) {
		return toolJSON(json.MarshalIndent(svc.Status(), "", "  "))
	})

	return registry
}

type tableRow struct {
	Rank     int                `json:"rank"`
	ID       int                `json:"id"`
	Name     string             `json:"name"`
	Team     string             `json:"team"`
	Position string             `json:"position"`
	Role     model.Role         `json:"role"`
	Points   float64            `json:"points"`
	Stats    map[string]float64 `json:"stats"`
}

type tableOut struct {
	Season      string           `json:"season"`
	Role        board.RoleFilter `json:"role"`
	Search      string           `json:"search,omitempty"`
	Sort        string           `json:"sort"`
	Total       int              `json:"total"`
	Shown       int              `json:"shown"`
	LastUpdated string           `json:"last_updated"`
	Rows        []tableRow       `json:"rows"`
}

func buildPlayerTable(ctx context.Context, svc *api.Service, args PlayerTableArgs) ([]byte, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = defaultTableLimit
	}
	sortKey := args.Sort
	if sortKey == "" {
		sortKey = model.StatPoints
	}
	view, err := svc.Table(ctx, api.TableQuery{
		State: pipeline.State{
			Season:  api.SeasonKey(args.Season, args.Variant),
			Role:    board.ParseRoleFilter(args.Role),
			Search:  args.Search,
			SortKey: sortKey,
			SortDir: board.ParseDirection(args.Direction),
		},
		Weights: toolWeights(args.Weights),
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}

	out := tableOut{
		Season:      view.Season.String(),
		Role:        view.Role,
		Search:      view.Search,
		Sort:        view.Sort.Key + " " + string(view.Sort.Direction),
		Total:       view.Total,
		Shown:       len(view.Rows),
		LastUpdated: view.LastUpdated,
		Rows:        make([]tableRow, 0, len(view.Rows)),
	}
	for i, row := range view.Rows {
		sp := row.Scored
		stats := make(map[string]float64)
		for _, col := range view.Columns {
			// the points column is reported once, outside stats
			if col.Key == model.StatPoints || col.Group == row.Dimmed {
				continue
			}
			stats[col.Key] = sp.Value(col.Key)
		}
		out.Rows = append(out.Rows, tableRow{
			Rank:     i + 1,
			ID:       sp.Player.ID,
			Name:     sp.Player.Name,
			Team:     sp.Player.Team,
			Position: sp.Player.Position,
			Role:     sp.Player.Role(),
			Points:   sp.Points,
			Stats:    stats,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}

type compareOut struct {
	Season string        `json:"season"`
	A      comparePlayer `json:"a"`
	B      comparePlayer `json:"b"`
	Lines  []compareLine `json:"lines"`
}

type comparePlayer struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Team   string  `json:"team"`
	Points float64 `json:"points"`
	Wins   int     `json:"stats_won"`
}

type compareLine struct {
	Stat   string `json:"stat"`
	A      string `json:"a"`
	B      string `json:"b"`
	Better string `json:"better,omitempty"`
	Delta  string `json:"delta,omitempty"`
}

func buildComparison(ctx context.Context, svc *api.Service, args ComparePlayersArgs) ([]byte, error) {
	key := api.SeasonKey(args.Season, args.Variant)
	rep, err := svc.Compare(ctx, args.IDs, key, toolWeights(args.Weights))
	if err != nil {
		return nil, err
	}
	winsA, winsB := rep.Wins()
	out := compareOut{
		Season: key.String(),
		A:      comparePlayer{ID: rep.A.Player.ID, Name: rep.A.Player.Name, Team: rep.A.Player.Team, Points: rep.A.Points, Wins: winsA},
		B:      comparePlayer{ID: rep.B.Player.ID, Name: rep.B.Player.Name, Team: rep.B.Player.Team, Points: rep.B.Points, Wins: winsB},
		Lines:  make([]compareLine, 0, len(rep.Lines)),
	}
	for _, l := range rep.Lines {
		line := compareLine{Stat: l.Label, A: l.A.Display, B: l.B.Display}
		switch {
		case l.A.Class == compare.Better:
			line.Better, line.Delta = rep.A.Player.Name, l.A.Delta
		case l.B.Class == compare.Better:
			line.Better, line.Delta = rep.B.Player.Name, l.B.Delta
		}
		out.Lines = append(out.Lines, line)
	}
	return json.MarshalIndent(out, "", "  ")
}

func lookupPlayer(svc *api.Service, id int) ([]byte, error) {
	p, err := svc.Player(id)
	if err != nil {
		return nil, err
	}
	out := p.Fields()
	out["role"] = p.Role()
	return json.MarshalIndent(out, "", "  ")
}

func statCatalog(svc *api.Service) ([]byte, error) {
	return json.MarshalIndent(map[string]any{
		"stats":           model.Catalog,
		"default_weights": svc.DefaultWeights(),
	}, "", "  ")
}

// toolWeights turns tool input into a full weight set. Nil keeps the
// server preset.
func toolWeights(in map[string]float64) points.Weights {
	if in == nil {
		return nil
	}
	raw := make(map[string]any, len(in))
	for k, v := range in {
		raw[k] = v
	}
	return points.ParseWeights(raw)
}
