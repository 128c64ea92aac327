package resolve

import (
	"testing"

	"github.com/diamonddraft/diamond-draft/internal/model"
)

func player() model.Player {
	return model.Player{
		ID:   1,
		Name: "Jones",
		StatsBySeasonVariant: map[model.SeasonKey]model.StatBundle{
			{Season: "2024", Variant: "actual"}:    {HR: 24},
			{Season: "2025", Variant: "projected"}: {HR: 30},
		},
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		key     model.SeasonKey
		wantHR  float64
		missing bool
	}{
		{"Season2024", model.SeasonKey{Season: "2024", Variant: "actual"}, 24, false},
		{"Season2024IgnoresVariant", model.SeasonKey{Season: "2024", Variant: "projected"}, 24, false},
		{"Projected2025", model.SeasonKey{Season: "2025", Variant: "projected"}, 30, false},
		{"Actual2025Missing", model.SeasonKey{Season: "2025", Variant: "actual"}, 0, true},
		{"UnknownSeason", model.SeasonKey{Season: "2019", Variant: "actual"}, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got []Missing
			r := New(func(m Missing) { got = append(got, m) })

			b := r.Resolve(player(), tc.key)
			if b.HR != tc.wantHR {
				t.Errorf("HR = %v, want %v", b.HR, tc.wantHR)
			}
			if tc.missing != (len(got) == 1) {
				t.Errorf("missing events = %d, want missing=%v", len(got), tc.missing)
			}
			if tc.missing && got[0].PlayerID != 1 {
				t.Errorf("missing PlayerID = %d, want 1", got[0].PlayerID)
			}
		})
	}
}

func TestResolve_MissingIsZeroBundle(t *testing.T) {
	var r *Resolver
	b := r.Resolve(model.Player{ID: 9}, model.DefaultSeasonKey)
	if b != (model.StatBundle{}) {
		t.Errorf("bundle = %+v, want zero", b)
	}
}

func TestResolve_HookDoesNotChangeOutput(t *testing.T) {
	p := player()
	key := model.SeasonKey{Season: "2025", Variant: "actual"}
	silent := New(nil).Resolve(p, key)
	hooked := New(func(Missing) {}).Resolve(p, key)
	if silent != hooked {
		t.Errorf("hook changed output: %+v vs %+v", silent, hooked)
	}
}
