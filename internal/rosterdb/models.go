package rosterdb

import "github.com/diamonddraft/diamond-draft/internal/model"

// PlayerRow is one roster entry.
type PlayerRow struct {
	ID        int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:100;not null"`
	Team      string    `gorm:"size:50"`
	Position  string    `gorm:"size:20"`
	IsPitcher bool      `gorm:"not null;default:false"`
	Stats     []StatRow `gorm:"foreignKey:PlayerID;constraint:OnDelete:CASCADE"`
}

func (PlayerRow) TableName() string { return "players" }

// StatRow is one season/variant bundle of a player.
type StatRow struct {
	PlayerID int    `gorm:"primaryKey;autoIncrement:false"`
	Season   string `gorm:"primaryKey;size:4"`
	Variant  string `gorm:"primaryKey;size:16"`

	Hits       float64 `gorm:"default:0"`
	Avg        float64 `gorm:"default:0"`
	BABIP      float64 `gorm:"column:babip;default:0"`
	Runs       float64 `gorm:"default:0"`
	RBI        float64 `gorm:"column:rbi;default:0"`
	Steals     float64 `gorm:"default:0"`
	HR         float64 `gorm:"column:hr;default:0"`
	Wins       float64 `gorm:"default:0"`
	RunsScored float64 `gorm:"default:0"`
	ERA        float64 `gorm:"column:era;default:0"`
	FIP        float64 `gorm:"column:fip;default:0"`
	Strikeouts float64 `gorm:"default:0"`
	Walks      float64 `gorm:"default:0"`
	Saves      float64 `gorm:"default:0"`
}

func (StatRow) TableName() string { return "player_stats" }

// Meta holds roster-level values such as the refresh timestamp.
type Meta struct {
	Name  string `gorm:"primaryKey;size:64"`
	Value string
}

func (Meta) TableName() string { return "roster_meta" }

const metaLastUpdated = "last_updated"

// Models lists every table for AutoMigrate.
var Models = []any{&PlayerRow{}, &StatRow{}, &Meta{}}

func fromPlayer(p model.Player) PlayerRow {
	row := PlayerRow{
		ID:        p.ID,
		Name:      p.Name,
		Team:      p.Team,
		Position:  p.Position,
		IsPitcher: p.IsPitcher,
	}
	for key, b := range p.StatsBySeasonVariant {
		key = key.Normalize()
		row.Stats = append(row.Stats, StatRow{
			PlayerID:   p.ID,
			Season:     key.Season,
			Variant:    key.Variant,
			Hits:       b.Hits,
			Avg:        b.Avg,
			BABIP:      b.BABIP,
			Runs:       b.Runs,
			RBI:        b.RBI,
			Steals:     b.Steals,
			HR:         b.HR,
			Wins:       b.Wins,
			RunsScored: b.RunsScored,
			ERA:        b.ERA,
			FIP:        b.FIP,
			Strikeouts: b.Strikeouts,
			Walks:      b.Walks,
			Saves:      b.Saves,
		})
	}
	return row
}

func (r PlayerRow) toPlayer() model.Player {
	p := model.Player{
		ID:        r.ID,
		Name:      r.Name,
		Team:      r.Team,
		Position:  r.Position,
		IsPitcher: r.IsPitcher,
	}
	if len(r.Stats) == 0 {
		return p
	}
	p.StatsBySeasonVariant = make(map[model.SeasonKey]model.StatBundle, len(r.Stats))
	for _, s := range r.Stats {
		p.StatsBySeasonVariant[model.SeasonKey{Season: s.Season, Variant: s.Variant}] = model.StatBundle{
			Hits:       s.Hits,
			Avg:        s.Avg,
			BABIP:      s.BABIP,
			Runs:       s.Runs,
			RBI:        s.RBI,
			Steals:     s.Steals,
			HR:         s.HR,
			Wins:       s.Wins,
			RunsScored: s.RunsScored,
			ERA:        s.ERA,
			FIP:        s.FIP,
			Strikeouts: s.Strikeouts,
			Walks:      s.Walks,
			Saves:      s.Saves,
		}
	}
	return p
}
