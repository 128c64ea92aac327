package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Seasons and variants recognised by the roster files.
const (
	Season2024 = "2024"
	Season2025 = "2025"

	VariantActual    = "actual"
	VariantProjected = "projected"
)

// SeasonKey selects one stat bundle of a player.
type SeasonKey struct {
	Season  string `json:"season"`
	Variant string `json:"variant"`
}

// DefaultSeasonKey is the selection used before the user picks anything.
var DefaultSeasonKey = SeasonKey{Season: Season2024, Variant: VariantActual}

// Normalize lower-cases both fields, fills in defaults and collapses 2024 to its
// single variant.
func (k SeasonKey) Normalize() SeasonKey {
	k.Season = strings.TrimSpace(k.Season)
	k.Variant = strings.ToLower(strings.TrimSpace(k.Variant))
	if k.Season == "" {
		k.Season = DefaultSeasonKey.Season
	}
	if k.Variant == "" || k.Season == Season2024 {
		k.Variant = VariantActual
	}
	return k
}

func (k SeasonKey) String() string {
	return k.Season + "_" + k.Variant
}

// ParseSeasonKey accepts "2024", "2025", "2025_actual" or "2025_projected".
func ParseSeasonKey(s string) SeasonKey {
	season, variant, _ := strings.Cut(strings.TrimSpace(s), "_")
	return SeasonKey{Season: season, Variant: variant}.Normalize()
}

// Player is one roster entry. Identity fields and IsPitcher never change after
// load; StatsBySeasonVariant is read-only to the scoring pipeline.
type Player struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Team      string `json:"team"`
	Position  string `json:"position"`
	IsPitcher bool   `json:"is_pitcher"`

	StatsBySeasonVariant map[SeasonKey]StatBundle `json:"-"`
}

// Role reports which scoring formula applies to the player.
func (p Player) Role() Role {
	if p.IsPitcher {
		return RolePitcher
	}
	return RoleBatter
}

// Bundle returns the stored bundle for key, if any.
func (p Player) Bundle(key SeasonKey) (StatBundle, bool) {
	b, ok := p.StatsBySeasonVariant[key]
	return b, ok
}

// statsFieldKeys maps the roster file's per-season objects to bundle keys.
// "stats_2025" is the older single 2025 object and is read as projected.
var statsFieldKeys = map[string]SeasonKey{
	"stats_2024":           {Season: Season2024, Variant: VariantActual},
	"stats_2025_actual":    {Season: Season2025, Variant: VariantActual},
	"stats_2025_projected": {Season: Season2025, Variant: VariantProjected},
	"stats_2025":           {Season: Season2025, Variant: VariantProjected},
}

type playerJSON struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Team      string `json:"team"`
	Position  string `json:"position"`
	IsPitcher bool   `json:"is_pitcher"`
}

func (p *Player) UnmarshalJSON(data []byte) error {
	var head playerJSON
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	var rest map[string]json.RawMessage
	if err := json.Unmarshal(data, &rest); err != nil {
		return err
	}

	*p = Player{
		ID:        head.ID,
		Name:      head.Name,
		Team:      head.Team,
		Position:  head.Position,
		IsPitcher: head.IsPitcher,
	}
	for field, key := range statsFieldKeys {
		raw, ok := rest[field]
		if !ok || string(raw) == "null" {
			continue
		}
		// an explicit stats_2025_projected wins over the legacy stats_2025 object
		if field == "stats_2025" {
			if _, ok := rest["stats_2025_projected"]; ok {
				continue
			}
		}
		var b StatBundle
		if err := json.Unmarshal(raw, &b); err != nil {
			return fmt.Errorf("player %d %s: %w", head.ID, field, err)
		}
		if p.StatsBySeasonVariant == nil {
			p.StatsBySeasonVariant = make(map[SeasonKey]StatBundle, 3)
		}
		p.StatsBySeasonVariant[key] = b
	}
	return nil
}

func (p Player) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Fields())
}

// Fields returns the roster-file representation of the player as a map, so
// derived views can add their own keys.
func (p Player) Fields() map[string]any {
	out := map[string]any{
		"id":         p.ID,
		"name":       p.Name,
		"team":       p.Team,
		"position":   p.Position,
		"is_pitcher": p.IsPitcher,
	}
	for key, b := range p.StatsBySeasonVariant {
		out[StatsField(key)] = b
	}
	return out
}

// StatsField is the roster-file object name holding the bundle for key.
func StatsField(key SeasonKey) string {
	key = key.Normalize()
	if key.Season == Season2024 {
		return "stats_2024"
	}
	return "stats_" + key.Season + "_" + key.Variant
}

// Roster is the in-memory collection delivered by a data source.
type Roster struct {
	Players     []Player `json:"players"`
	LastUpdated string   `json:"last_updated"`
}

// ByID indexes the roster by player id.
func (r *Roster) ByID() map[int]Player {
	out := make(map[int]Player, len(r.Players))
	for _, p := range r.Players {
		out[p.ID] = p
	}
	return out
}
