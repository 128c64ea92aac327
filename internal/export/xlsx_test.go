package export

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/diamonddraft/diamond-draft/internal/board"
	"github.com/diamonddraft/diamond-draft/internal/model"
	"github.com/diamonddraft/diamond-draft/internal/pipeline"
	"github.com/diamonddraft/diamond-draft/internal/points"
	"github.com/diamonddraft/diamond-draft/internal/resolve"
)

func renderView(t *testing.T, role board.RoleFilter, sortKey string) pipeline.View {
	t.Helper()
	roster := &model.Roster{
		LastUpdated: "2025-03-01T12:00:00Z",
		Players: []model.Player{
			{ID: 1, Name: "Ace", Team: "NYY", Position: "SP", IsPitcher: true, StatsBySeasonVariant: map[model.SeasonKey]model.StatBundle{
				model.DefaultSeasonKey: {ERA: 3.0, Wins: 10},
			}},
			{ID: 2, Name: "Jones", Team: "ATL", Position: "CF", StatsBySeasonVariant: map[model.SeasonKey]model.StatBundle{
				model.DefaultSeasonKey: {Avg: 0.281, HR: 30},
			}},
		},
	}
	engine, _ := points.NewEngine("")
	var got pipeline.View
	o := pipeline.New(roster, points.NewLocal(engine, resolve.New(nil)),
		pipeline.RendererFunc(func(_ context.Context, v pipeline.View) error { got = v; return nil }),
		pipeline.WithWeights(points.Weights{"era": 1, "wins": 1, "hr": 1, "avg": 100}),
		pipeline.WithState(pipeline.State{Season: model.DefaultSeasonKey, Role: role, SortKey: sortKey, SortDir: board.Desc}),
	)
	if err := o.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return got
}

func raw(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetCellValue(%s): %v", cell, err)
	}
	return v
}

func TestXLSXRender_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "table.xlsx")
	v := renderView(t, board.FilterAll, model.StatPoints)
	if err := (&XLSX{Path: path}).Render(context.Background(), v); err != nil {
		t.Fatalf("Render: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	if got := raw(t, f, PlayersSheet, "A1"); got != "Name" {
		t.Errorf("A1 = %q", got)
	}
	// points: Jones 28.1 + 30 = 58.1, Ace 2 + 10 = 12
	if got := raw(t, f, PlayersSheet, "A2"); got != "Jones" {
		t.Errorf("A2 = %q, want Jones first", got)
	}
	rows, err := f.GetRows(PlayersSheet)
	if err != nil {
		t.Fatal(err)
	}
	header := rows[0]
	if len(header) != 3+len(model.Catalog) {
		t.Fatalf("header cols = %d, want %d", len(header), 3+len(model.Catalog))
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 2)
	if got := raw(t, f, PlayersSheet, last); got != "58.1" {
		t.Errorf("points cell = %q, want 58.1", got)
	}

	lastHeader, _ := excelize.CoordinatesToCellName(len(header), 1)
	assertBold(t, f, lastHeader, true)
	assertBold(t, f, "A1", false)

	if got := raw(t, f, InfoSheet, "B1"); got != "2024_actual" {
		t.Errorf("season info = %q", got)
	}
}

func TestXLSXRender_HidesColumnsForRole(t *testing.T) {
	var buf bytes.Buffer
	v := renderView(t, board.FilterPitcher, model.StatERA)
	if err := (&XLSX{W: &buf}).Render(context.Background(), v); err != nil {
		t.Fatalf("Render: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, _ := f.GetRows(PlayersSheet)
	want := 3 + len(model.GroupStats(model.GroupPitching)) + 1
	if len(rows[0]) != want {
		t.Errorf("header cols = %d, want %d", len(rows[0]), want)
	}
	for _, h := range rows[0] {
		if h == "AVG" || h == "Home Runs" {
			t.Errorf("batting column %q exported for pitchers", h)
		}
	}
	if len(rows) != 2 || rows[1][0] != "Ace" {
		t.Errorf("rows = %v", rows)
	}
}

func TestXLSXRender_DimmedCells(t *testing.T) {
	v := renderView(t, board.FilterAll, model.StatPoints)
	f, err := Build(v)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer f.Close()

	// row 3 is Ace (pitcher); column D is Hits, a batting stat
	id, err := f.GetCellStyle(PlayersSheet, "D3")
	if err != nil {
		t.Fatal(err)
	}
	style, err := f.GetStyle(id)
	if err != nil {
		t.Fatal(err)
	}
	if style.Font == nil || !strings.HasSuffix(strings.ToUpper(style.Font.Color), "999999") {
		t.Errorf("pitcher batting cell font = %+v, want grey", style.Font)
	}
}

func TestXLSXRender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (&XLSX{W: &bytes.Buffer{}}).Render(ctx, pipeline.View{}); err == nil {
		t.Fatal("expected context error")
	}
}

func assertBold(t *testing.T, f *excelize.File, cell string, want bool) {
	t.Helper()
	id, err := f.GetCellStyle(PlayersSheet, cell)
	if err != nil {
		t.Fatal(err)
	}
	style, err := f.GetStyle(id)
	if err != nil {
		t.Fatal(err)
	}
	bold := style.Font != nil && style.Font.Bold
	if bold != want {
		t.Errorf("%s bold = %v, want %v", cell, bold, want)
	}
}
