package model

// Stat keys shared by bundles, weights, sort columns and comparisons.
const (
	StatHits       = "hits"
	StatAvg        = "avg"
	StatBABIP      = "babip"
	StatRuns       = "runs"
	StatRBI        = "rbi"
	StatSteals     = "steals"
	StatHR         = "hr"
	StatWins       = "wins"
	StatRunsScored = "runs_scored"
	StatERA        = "era"
	StatFIP        = "fip"
	StatStrikeouts = "strikeouts"
	StatWalks      = "walks"
	StatSaves      = "saves"

	// StatPoints is the derived fantasy score, not a bundle field.
	StatPoints = "points"
)

// Role is batter or pitcher.
type Role string

const (
	RoleBatter  Role = "batter"
	RolePitcher Role = "pitcher"
)

// StatGroup says which table column group a stat belongs to.
type StatGroup string

const (
	GroupBatting  StatGroup = "batting"
	GroupPitching StatGroup = "pitching"
	GroupOverall  StatGroup = "overall"
)

// Format is the display precision of a stat.
type Format int

const (
	// FormatCount rounds to an integer.
	FormatCount Format = iota
	// FormatRatio uses three decimals (avg, babip).
	FormatRatio
	// FormatRate uses two decimals (era, fip).
	FormatRate
)

// Places returns the number of decimals displayed for the format.
func (f Format) Places() int32 {
	switch f {
	case FormatRatio:
		return 3
	case FormatRate:
		return 2
	}
	return 0
}

// Stat describes one recognised statistic.
type Stat struct {
	Key           string    `json:"key"`
	Label         string    `json:"label"`
	Group         StatGroup `json:"group"`
	Format        Format    `json:"format"`
	LowerIsBetter bool      `json:"lower_is_better"`
	// Weighted is false for stats that never carry a scoring weight.
	Weighted bool `json:"weighted"`
}

// Catalog lists every stat in table column order.
var Catalog = []Stat{
	{Key: StatHits, Label: "Hits", Group: GroupBatting, Format: FormatCount, Weighted: true},
	{Key: StatAvg, Label: "AVG", Group: GroupBatting, Format: FormatRatio, Weighted: true},
	{Key: StatBABIP, Label: "BABIP", Group: GroupBatting, Format: FormatRatio, Weighted: true},
	{Key: StatRuns, Label: "Runs", Group: GroupBatting, Format: FormatCount, Weighted: true},
	{Key: StatRBI, Label: "RBI", Group: GroupBatting, Format: FormatCount, Weighted: true},
	{Key: StatSteals, Label: "Steals", Group: GroupBatting, Format: FormatCount, Weighted: true},
	{Key: StatHR, Label: "Home Runs", Group: GroupBatting, Format: FormatCount, Weighted: true},
	{Key: StatWins, Label: "Wins", Group: GroupPitching, Format: FormatCount, Weighted: true},
	{Key: StatRunsScored, Label: "Runs Scored", Group: GroupPitching, Format: FormatCount, Weighted: true},
	{Key: StatERA, Label: "ERA", Group: GroupPitching, Format: FormatRate, LowerIsBetter: true, Weighted: true},
	{Key: StatFIP, Label: "FIP", Group: GroupPitching, Format: FormatRate, LowerIsBetter: true, Weighted: true},
	{Key: StatStrikeouts, Label: "Strikeouts", Group: GroupPitching, Format: FormatCount, Weighted: true},
	{Key: StatWalks, Label: "Walks", Group: GroupPitching, Format: FormatCount, LowerIsBetter: true, Weighted: true},
	{Key: StatSaves, Label: "Saves", Group: GroupPitching, Format: FormatCount, Weighted: true},
	{Key: StatPoints, Label: "Fantasy Points", Group: GroupOverall, Format: FormatCount},
}

var catalogByKey = func() map[string]Stat {
	m := make(map[string]Stat, len(Catalog))
	for _, s := range Catalog {
		m[s.Key] = s
	}
	return m
}()

// LookupStat finds a stat by key.
func LookupStat(key string) (Stat, bool) {
	s, ok := catalogByKey[key]
	return s, ok
}

// WeightKeys returns every key that may carry a scoring weight, in catalog order.
func WeightKeys() []string {
	out := make([]string, 0, len(Catalog))
	for _, s := range Catalog {
		if s.Weighted {
			out = append(out, s.Key)
		}
	}
	return out
}

// GroupStats returns the catalog entries of one group, in column order.
func GroupStats(g StatGroup) []Stat {
	out := make([]Stat, 0, 8)
	for _, s := range Catalog {
		if s.Group == g {
			out = append(out, s)
		}
	}
	return out
}
