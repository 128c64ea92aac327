// Package export writes pipeline views to spreadsheet files.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/diamonddraft/diamond-draft/internal/model"
	"github.com/diamonddraft/diamond-draft/internal/pipeline"
)

const (
	PlayersSheet = "Players"
	InfoSheet    = "Selection"
)

// XLSX renders each view it receives to a workbook. With W set the workbook
// is written there, otherwise it is saved to Path.
type XLSX struct {
	Path string
	W    io.Writer
}

func (x *XLSX) Render(ctx context.Context, v pipeline.View) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := Build(v)
	if err != nil {
		return err
	}
	defer f.Close()

	if x.W != nil {
		_, err := f.WriteTo(x.W)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(x.Path), 0o755); err != nil {
		return err
	}
	return f.SaveAs(x.Path)
}

type column struct {
	header string
	key    string
	group  model.StatGroup
	places int32
	text   func(model.Player) string
}

func columns(v pipeline.View) []column {
	cols := []column{
		{header: "Name", key: "name", text: func(p model.Player) string { return p.Name }},
		{header: "Team", key: "team", text: func(p model.Player) string { return p.Team }},
		{header: "Pos", key: "position", text: func(p model.Player) string { return p.Position }},
	}
	for _, s := range v.Columns {
		places := s.Format.Places()
		if s.Key == model.StatPoints {
			places = 2
		}
		cols = append(cols, column{header: s.Label, key: s.Key, group: s.Group, places: places})
	}
	return cols
}

// Build lays the view out as a workbook: one row per player in view order,
// only visible stat columns, the sorted column header in bold and
// role-irrelevant cells greyed out.
func Build(v pipeline.View) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", PlayersSheet); err != nil {
		return nil, err
	}
	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	cols := columns(v)
	for i, c := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(PlayersSheet, cell, c.header); err != nil {
			return nil, err
		}
		style := st.header
		if c.key == v.Sort.Key {
			style = st.sortedHeader
		}
		if err := f.SetCellStyle(PlayersSheet, cell, cell, style); err != nil {
			return nil, err
		}
	}

	for r, row := range v.Rows {
		for i, c := range cols {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			if c.text != nil {
				if err := f.SetCellValue(PlayersSheet, cell, c.text(row.Scored.Player)); err != nil {
					return nil, err
				}
				continue
			}
			if err := f.SetCellValue(PlayersSheet, cell, row.Scored.Value(c.key)); err != nil {
				return nil, err
			}
			style, err := st.number(c.places, c.group != "" && c.group == row.Dimmed)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellStyle(PlayersSheet, cell, cell, style); err != nil {
				return nil, err
			}
		}
	}

	last, _ := excelize.ColumnNumberToName(len(cols))
	if err := f.SetColWidth(PlayersSheet, "A", "A", 24); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(PlayersSheet, "B", last, 11); err != nil {
		return nil, err
	}
	if err := f.SetPanes(PlayersSheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return nil, err
	}

	if err := writeInfo(f, v); err != nil {
		return nil, err
	}
	return f, nil
}

func writeInfo(f *excelize.File, v pipeline.View) error {
	if _, err := f.NewSheet(InfoSheet); err != nil {
		return err
	}
	search := v.Search
	if search == "" {
		search = "-"
	}
	pairs := [][2]any{
		{"Season", v.Season.String()},
		{"Role", string(v.Role)},
		{"Search", search},
		{"Sort", v.Sort.Key + " " + string(v.Sort.Direction)},
		{"Rows", fmt.Sprintf("%d of %d", len(v.Rows), v.Total)},
		{"Last updated", v.LastUpdated},
	}
	keys := make([]string, 0, len(v.Weights))
	for k := range v.Weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pairs = append(pairs, [2]any{"Weight " + strings.ToUpper(k), v.Weights[k]})
	}
	for i, p := range pairs {
		if err := f.SetCellValue(InfoSheet, fmt.Sprintf("A%d", i+1), p[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(InfoSheet, fmt.Sprintf("B%d", i+1), p[1]); err != nil {
			return err
		}
	}
	return f.SetColWidth(InfoSheet, "A", "A", 18)
}

type styles struct {
	f            *excelize.File
	header       int
	sortedHeader int
	numbers      map[[2]int32]int
}

func newStyles(f *excelize.File) (*styles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	sorted, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return nil, err
	}
	return &styles{f: f, header: header, sortedHeader: sorted, numbers: map[[2]int32]int{}}, nil
}

// number returns a style with the given decimals, grey when dimmed.
func (s *styles) number(places int32, dimmed bool) (int, error) {
	key := [2]int32{places, 0}
	if dimmed {
		key[1] = 1
	}
	if id, ok := s.numbers[key]; ok {
		return id, nil
	}
	numFmt := "0"
	if places > 0 {
		numFmt += "." + strings.Repeat("0", int(places))
	}
	style := &excelize.Style{CustomNumFmt: &numFmt}
	if dimmed {
		style.Font = &excelize.Font{Color: "999999"}
	}
	id, err := s.f.NewStyle(style)
	if err != nil {
		return 0, err
	}
	s.numbers[key] = id
	return id, nil
}
