package reconcile

import (
	"reflect"
	"testing"

	"github.com/diamonddraft/diamond-draft/internal/model"
)

var (
	k2024  = model.SeasonKey{Season: "2024", Variant: "actual"}
	k2025a = model.SeasonKey{Season: "2025", Variant: "actual"}
)

func roster(ts string, players ...model.Player) *model.Roster {
	return &model.Roster{LastUpdated: ts, Players: players}
}

func player(id int, name string, bundles map[model.SeasonKey]model.StatBundle) model.Player {
	return model.Player{ID: id, Name: name, Team: "NYY", Position: "SP", IsPitcher: true, StatsBySeasonVariant: bundles}
}

func TestBuildReport_NoChanges(t *testing.T) {
	a := roster("t1", player(1, "Ace", map[model.SeasonKey]model.StatBundle{k2024: {ERA: 3}}))
	b := roster("t2", player(1, "Ace", map[model.SeasonKey]model.StatBundle{k2024: {ERA: 3}}))

	rep := BuildReport(a, b)
	if !rep.Empty() {
		t.Fatalf("expected empty report, got %+v", rep)
	}
	if rep.PrevUpdated != "t1" || rep.NextUpdated != "t2" {
		t.Errorf("timestamps = %q -> %q", rep.PrevUpdated, rep.NextUpdated)
	}
}

func TestBuildReport_AddedRemovedChanged(t *testing.T) {
	prev := roster("t1",
		player(3, "Closer", nil),
		player(1, "Ace", map[model.SeasonKey]model.StatBundle{k2024: {ERA: 3}}),
		player(2, "Gone", nil),
	)
	moved := player(3, "Closer", nil)
	moved.Team = "BOS"
	next := roster("t2",
		player(1, "Ace", map[model.SeasonKey]model.StatBundle{k2024: {ERA: 3.1}, k2025a: {Wins: 2}}),
		moved,
		player(5, "Rookie", nil),
		player(4, "Prospect", nil),
	)

	rep := BuildReport(prev, next)
	if !reflect.DeepEqual(rep.Added, []int{4, 5}) {
		t.Errorf("added = %v, want [4 5]", rep.Added)
	}
	if !reflect.DeepEqual(rep.Removed, []int{2}) {
		t.Errorf("removed = %v, want [2]", rep.Removed)
	}
	if len(rep.Changed) != 2 {
		t.Fatalf("changed = %+v, want 2 entries", rep.Changed)
	}
	ace, closer := rep.Changed[0], rep.Changed[1]
	if ace.ID != 1 || !reflect.DeepEqual(ace.Bundles, []string{"2024_actual", "2025_actual"}) || len(ace.Fields) != 0 {
		t.Errorf("ace change = %+v", ace)
	}
	if closer.ID != 3 || !reflect.DeepEqual(closer.Fields, []string{"team"}) || len(closer.Bundles) != 0 {
		t.Errorf("closer change = %+v", closer)
	}
}

func TestBuildReport_NilPrev(t *testing.T) {
	rep := BuildReport(nil, roster("t", player(2, "B", nil), player(1, "A", nil)))
	if !reflect.DeepEqual(rep.Added, []int{1, 2}) {
		t.Errorf("added = %v", rep.Added)
	}
	if len(rep.Removed) != 0 || len(rep.Changed) != 0 {
		t.Errorf("unexpected removals or changes: %+v", rep)
	}
}
