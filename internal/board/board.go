// Package board turns a scored roster into the rows of the player table:
// role filter, free-text search and column sort.
package board

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/diamonddraft/diamond-draft/internal/model"
	"github.com/diamonddraft/diamond-draft/internal/points"
)

type RoleFilter string

const (
	FilterAll     RoleFilter = "all"
	FilterBatter  RoleFilter = "batter"
	FilterPitcher RoleFilter = "pitcher"
)

// ParseRoleFilter maps user input to a filter. Unknown values mean all.
func ParseRoleFilter(s string) RoleFilter {
	switch RoleFilter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterBatter, "batters":
		return FilterBatter
	case FilterPitcher, "pitchers":
		return FilterPitcher
	}
	return FilterAll
}

func (f RoleFilter) keep(p model.Player) bool {
	switch f {
	case FilterBatter:
		return !p.IsPitcher
	case FilterPitcher:
		return p.IsPitcher
	}
	return true
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts asc/desc; anything else is desc.
func ParseDirection(s string) Direction {
	if Direction(strings.ToLower(strings.TrimSpace(s))) == Asc {
		return Asc
	}
	return Desc
}

func (d Direction) Toggle() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

// Filter keeps the players matching role and containing term (case-folded)
// in name, team or position. Input order is preserved and the input slice is
// not modified.
func Filter(players []points.ScoredPlayer, role RoleFilter, term string) []points.ScoredPlayer {
	fold := cases.Fold()
	needle := fold.String(term)
	out := make([]points.ScoredPlayer, 0, len(players))
	for _, sp := range players {
		if !role.keep(sp.Player) {
			continue
		}
		if needle != "" && !matches(fold, sp.Player, needle) {
			continue
		}
		out = append(out, sp)
	}
	return out
}

func matches(fold cases.Caser, p model.Player, needle string) bool {
	for _, field := range []string{p.Name, p.Team, p.Position} {
		if strings.Contains(fold.String(field), needle) {
			return true
		}
	}
	return false
}

// Text columns sort lexically; every other key sorts numerically.
const (
	KeyName     = "name"
	KeyTeam     = "team"
	KeyPosition = "position"
)

// IsSortKey reports whether key names a sortable column.
func IsSortKey(key string) bool {
	switch key {
	case KeyName, KeyTeam, KeyPosition:
		return true
	}
	_, ok := model.LookupStat(key)
	return ok
}

// Sort returns a new slice ordered by key in direction dir. Equal rows keep
// their relative input order. Lower-is-better stats are not inverted: asc
// always means the value grows down the table.
func Sort(players []points.ScoredPlayer, key string, dir Direction) []points.ScoredPlayer {
	out := slices.Clone(players)
	cmpFn := comparator(key)
	if dir == Desc {
		slices.SortStableFunc(out, func(a, b points.ScoredPlayer) int { return cmpFn(b, a) })
	} else {
		slices.SortStableFunc(out, cmpFn)
	}
	return out
}

func comparator(key string) func(a, b points.ScoredPlayer) int {
	var text func(model.Player) string
	switch key {
	case KeyName:
		text = func(p model.Player) string { return p.Name }
	case KeyTeam:
		text = func(p model.Player) string { return p.Team }
	case KeyPosition:
		text = func(p model.Player) string { return p.Position }
	}
	if text != nil {
		col := collate.New(language.English, collate.IgnoreCase)
		return func(a, b points.ScoredPlayer) int {
			return col.CompareString(text(a.Player), text(b.Player))
		}
	}
	return func(a, b points.ScoredPlayer) int {
		return cmp.Compare(a.Value(key), b.Value(key))
	}
}
