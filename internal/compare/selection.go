package compare

import (
	"fmt"
	"slices"

	"github.com/diamonddraft/diamond-draft/internal/points"
)

// MaxSelected is the number of players a comparison needs.
const MaxSelected = 2

// Selection is the ordered set of player ids picked for comparison. Adding a
// third id evicts the oldest.
type Selection struct {
	ids []int
}

// Add appends id. An id already selected is left in place.
func (s *Selection) Add(id int) {
	if slices.Contains(s.ids, id) {
		return
	}
	s.ids = append(s.ids, id)
	if len(s.ids) > MaxSelected {
		s.ids = slices.Delete(s.ids, 0, len(s.ids)-MaxSelected)
	}
}

// Remove drops id if selected.
func (s *Selection) Remove(id int) {
	s.ids = slices.DeleteFunc(s.ids, func(v int) bool { return v == id })
}

// Toggle removes a selected id or adds an unselected one.
func (s *Selection) Toggle(id int) {
	if slices.Contains(s.ids, id) {
		s.Remove(id)
		return
	}
	s.Add(id)
}

func (s *Selection) Clear() { s.ids = nil }

// IDs returns the selected ids, oldest first.
func (s *Selection) IDs() []int { return slices.Clone(s.ids) }

// Ready reports whether exactly two players are selected.
func (s *Selection) Ready() bool { return len(s.ids) == MaxSelected }

// Resolve looks the selected ids up in scored and compares them. It returns
// ok=false while fewer than two players are selected.
func (s *Selection) Resolve(scored []points.ScoredPlayer) (Report, bool, error) {
	if !s.Ready() {
		return Report{}, false, nil
	}
	pair, err := Lookup(scored, s.ids[0], s.ids[1])
	if err != nil {
		return Report{}, false, err
	}
	return CompareAll(pair[0], pair[1]), true, nil
}

// Lookup finds the scored players with the given ids, in argument order.
func Lookup(scored []points.ScoredPlayer, ids ...int) ([]points.ScoredPlayer, error) {
	out := make([]points.ScoredPlayer, 0, len(ids))
	for _, id := range ids {
		i := slices.IndexFunc(scored, func(sp points.ScoredPlayer) bool { return sp.Player.ID == id })
		if i < 0 {
			return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		out = append(out, scored[i])
	}
	return out, nil
}
