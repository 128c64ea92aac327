// Package compare builds the side-by-side stat comparison of two scored
// players.
package compare

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/diamonddraft/diamond-draft/internal/model"
	"github.com/diamonddraft/diamond-draft/internal/points"
)

var ErrNotFound = errors.New("player not found")

// Class marks which side of a comparison line is ahead.
type Class string

const (
	Neutral Class = ""
	Better  Class = "stat-better"
	Worse   Class = "stat-worse"
)

// Side is one player's cell in a comparison line.
type Side struct {
	Value   float64 `json:"value"`
	Display string  `json:"display"`
	Class   Class   `json:"class"`
	// Delta is the signed margin, set on the winning side only.
	Delta string `json:"delta,omitempty"`
}

type Line struct {
	Key   string          `json:"key"`
	Label string          `json:"label"`
	Group model.StatGroup `json:"group"`
	A     Side            `json:"a"`
	B     Side            `json:"b"`
}

// Compare classifies key for a against b. Display precision follows the
// stat catalog; unknown keys display as integers.
func Compare(a, b points.ScoredPlayer, key string, lowerIsBetter bool) Line {
	stat, ok := model.LookupStat(key)
	if !ok {
		stat = model.Stat{Key: key, Label: key, Format: model.FormatCount}
	}
	stat.LowerIsBetter = lowerIsBetter
	return compareValues(a.Value(key), b.Value(key), stat)
}

func compareValues(av, bv float64, stat model.Stat) Line {
	places := stat.Format.Places()
	line := Line{
		Key:   stat.Key,
		Label: stat.Label,
		Group: stat.Group,
		A:     Side{Value: av, Display: FormatValue(av, places)},
		B:     Side{Value: bv, Display: FormatValue(bv, places)},
	}

	diff := decimal.NewFromFloat(av).Sub(decimal.NewFromFloat(bv))
	if diff.IsZero() {
		return line
	}
	aWins := diff.IsPositive()
	if stat.LowerIsBetter {
		aWins = !aWins
	}
	// classes follow the raw values, so a gap that rounds away at display
	// precision still needs a visible delta
	deltaPlaces := places
	if deltaPlaces < 2 && diff.Abs().Round(deltaPlaces).IsZero() {
		deltaPlaces = 2
	}
	delta := "+" + diff.Abs().StringFixed(deltaPlaces)
	if aWins {
		line.A.Class, line.B.Class = Better, Worse
		line.A.Delta = delta
	} else {
		line.A.Class, line.B.Class = Worse, Better
		line.B.Delta = delta
	}
	return line
}

// FormatValue renders v with the given number of decimals, rounding half
// away from zero.
func FormatValue(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// Report is the full comparison of two players over the stat catalog.
type Report struct {
	A     points.ScoredPlayer `json:"a"`
	B     points.ScoredPlayer `json:"b"`
	Lines []Line              `json:"lines"`
}

// CompareAll compares a and b on every catalog stat in column order.
func CompareAll(a, b points.ScoredPlayer) Report {
	r := Report{A: a, B: b, Lines: make([]Line, 0, len(model.Catalog))}
	for _, s := range model.Catalog {
		r.Lines = append(r.Lines, compareValues(a.Value(s.Key), b.Value(s.Key), s))
	}
	return r
}

// Line returns the report line for key.
func (r Report) Line(key string) (Line, bool) {
	for _, l := range r.Lines {
		if l.Key == key {
			return l, true
		}
	}
	return Line{}, false
}

// Wins counts the lines won by each side.
func (r Report) Wins() (a, b int) {
	for _, l := range r.Lines {
		switch l.A.Class {
		case Better:
			a++
		case Worse:
			b++
		}
	}
	return a, b
}
