package points

import (
	"encoding/json"
	"errors"

	"github.com/diamonddraft/diamond-draft/internal/model"
)

var errMissingPoints = errors.New("scored player has no points")

// ScoredPlayer is a copy of a roster player with its derived score and the
// bundle the score was computed from.
type ScoredPlayer struct {
	Player model.Player
	Stats  model.StatBundle
	Points float64
}

// Value returns a sortable/comparable value for key: points or a bundle stat.
func (s ScoredPlayer) Value(key string) float64 {
	if key == model.StatPoints {
		return s.Points
	}
	return s.Stats.Get(key)
}

func (s ScoredPlayer) MarshalJSON() ([]byte, error) {
	out := s.Player.Fields()
	out["stats"] = s.Stats
	out["points"] = s.Points
	return json.Marshal(out)
}

// UnmarshalJSON reads the shape produced by MarshalJSON and by remote
// recalculation endpoints. A missing "points" field is an error.
func (s *ScoredPlayer) UnmarshalJSON(data []byte) error {
	var p model.Player
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var extra struct {
		Points *float64          `json:"points"`
		Stats  *model.StatBundle `json:"stats"`
	}
	if err := json.Unmarshal(data, &extra); err != nil {
		return err
	}
	if extra.Points == nil {
		return errMissingPoints
	}
	*s = ScoredPlayer{Player: p, Points: *extra.Points}
	if extra.Stats != nil {
		s.Stats = *extra.Stats
	}
	return nil
}
