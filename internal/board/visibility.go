package board

import "github.com/diamonddraft/diamond-draft/internal/model"

// Visibility says which stat column groups the table shows.
type Visibility struct {
	Batting  bool `json:"batting"`
	Pitching bool `json:"pitching"`
}

// VisibilityFor derives column visibility from the role filter alone.
func VisibilityFor(role RoleFilter) Visibility {
	switch role {
	case FilterBatter:
		return Visibility{Batting: true}
	case FilterPitcher:
		return Visibility{Pitching: true}
	}
	return Visibility{Batting: true, Pitching: true}
}

// Shows reports whether a column of group g is visible. The overall group
// (points) is always shown.
func (v Visibility) Shows(g model.StatGroup) bool {
	switch g {
	case model.GroupBatting:
		return v.Batting
	case model.GroupPitching:
		return v.Pitching
	}
	return true
}

// Columns returns the visible catalog stats in column order.
func (v Visibility) Columns() []model.Stat {
	out := make([]model.Stat, 0, len(model.Catalog))
	for _, s := range model.Catalog {
		if v.Shows(s.Group) {
			out = append(out, s)
		}
	}
	return out
}

// DimmedGroup is the stat group that does not apply to p while both groups
// are on screen, or "" when nothing should be dimmed.
func DimmedGroup(p model.Player, v Visibility) model.StatGroup {
	if !v.Batting || !v.Pitching {
		return ""
	}
	if p.IsPitcher {
		return model.GroupBatting
	}
	return model.GroupPitching
}
