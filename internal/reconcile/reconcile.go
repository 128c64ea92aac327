// Package reconcile reports what changed between two roster snapshots.
package reconcile

import (
	"sort"
	"time"

	"github.com/diamonddraft/diamond-draft/internal/model"
)

// PlayerChange is one player present in both snapshots whose identity or
// stats differ.
type PlayerChange struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Fields  []string `json:"fields,omitempty"`
	Bundles []string `json:"bundles,omitempty"`
}

type Report struct {
	GeneratedAtUTC string         `json:"generated_at_utc"`
	PrevUpdated    string         `json:"prev_updated"`
	NextUpdated    string         `json:"next_updated"`
	Added          []int          `json:"added"`
	Removed        []int          `json:"removed"`
	Changed        []PlayerChange `json:"changed"`
}

// Empty reports whether the snapshots hold the same players and stats.
func (r *Report) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Changed) == 0
}

// BuildReport compares prev against next. A nil prev reports every player
// of next as added. All id lists are ascending.
func BuildReport(prev, next *model.Roster) *Report {
	if prev == nil {
		prev = &model.Roster{}
	}
	if next == nil {
		next = &model.Roster{}
	}
	before := prev.ByID()
	after := next.ByID()

	rep := &Report{
		GeneratedAtUTC: time.Now().UTC().Format(time.RFC3339),
		PrevUpdated:    prev.LastUpdated,
		NextUpdated:    next.LastUpdated,
		Added:          make([]int, 0),
		Removed:        make([]int, 0),
		Changed:        make([]PlayerChange, 0),
	}
	for id, p := range after {
		old, ok := before[id]
		if !ok {
			rep.Added = append(rep.Added, id)
			continue
		}
		if ch, changed := diffPlayer(old, p); changed {
			rep.Changed = append(rep.Changed, ch)
		}
	}
	for id := range before {
		if _, ok := after[id]; !ok {
			rep.Removed = append(rep.Removed, id)
		}
	}

	sort.Ints(rep.Added)
	sort.Ints(rep.Removed)
	sort.Slice(rep.Changed, func(i, j int) bool { return rep.Changed[i].ID < rep.Changed[j].ID })
	return rep
}

func diffPlayer(a, b model.Player) (PlayerChange, bool) {
	ch := PlayerChange{ID: b.ID, Name: b.Name}
	if a.Name != b.Name {
		ch.Fields = append(ch.Fields, "name")
	}
	if a.Team != b.Team {
		ch.Fields = append(ch.Fields, "team")
	}
	if a.Position != b.Position {
		ch.Fields = append(ch.Fields, "position")
	}
	if a.IsPitcher != b.IsPitcher {
		ch.Fields = append(ch.Fields, "is_pitcher")
	}

	keys := make(map[model.SeasonKey]struct{}, len(a.StatsBySeasonVariant)+len(b.StatsBySeasonVariant))
	for k := range a.StatsBySeasonVariant {
		keys[k] = struct{}{}
	}
	for k := range b.StatsBySeasonVariant {
		keys[k] = struct{}{}
	}
	for k := range keys {
		av, aok := a.StatsBySeasonVariant[k]
		bv, bok := b.StatsBySeasonVariant[k]
		if aok != bok || av != bv {
			ch.Bundles = append(ch.Bundles, k.String())
		}
	}
	sort.Strings(ch.Bundles)

	return ch, len(ch.Fields) > 0 || len(ch.Bundles) > 0
}
