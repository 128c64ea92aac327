package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// StatBundle is one season/variant's stat set for one player. Every field is
// always present; missing source values decode as zero.
type StatBundle struct {
	Hits   float64 `json:"hits"`
	Avg    float64 `json:"avg"`
	BABIP  float64 `json:"babip"`
	Runs   float64 `json:"runs"`
	RBI    float64 `json:"rbi"`
	Steals float64 `json:"steals"`
	HR     float64 `json:"hr"`

	Wins       float64 `json:"wins"`
	RunsScored float64 `json:"runs_scored"`
	ERA        float64 `json:"era"`
	FIP        float64 `json:"fip"`
	Strikeouts float64 `json:"strikeouts"`
	Walks      float64 `json:"walks"`
	Saves      float64 `json:"saves"`
}

// Value returns the named stat. Unknown keys report false.
func (b StatBundle) Value(key string) (float64, bool) {
	switch key {
	case StatHits:
		return b.Hits, true
	case StatAvg:
		return b.Avg, true
	case StatBABIP:
		return b.BABIP, true
	case StatRuns:
		return b.Runs, true
	case StatRBI:
		return b.RBI, true
	case StatSteals:
		return b.Steals, true
	case StatHR:
		return b.HR, true
	case StatWins:
		return b.Wins, true
	case StatRunsScored:
		return b.RunsScored, true
	case StatERA:
		return b.ERA, true
	case StatFIP:
		return b.FIP, true
	case StatStrikeouts:
		return b.Strikeouts, true
	case StatWalks:
		return b.Walks, true
	case StatSaves:
		return b.Saves, true
	}
	return 0, false
}

// Get is Value with unknown keys read as zero.
func (b StatBundle) Get(key string) float64 {
	v, _ := b.Value(key)
	return v
}

func (b *StatBundle) set(key string, v float64) {
	switch key {
	case StatHits:
		b.Hits = v
	case StatAvg:
		b.Avg = v
	case StatBABIP:
		b.BABIP = v
	case StatRuns:
		b.Runs = v
	case StatRBI:
		b.RBI = v
	case StatSteals:
		b.Steals = v
	case StatHR:
		b.HR = v
	case StatWins:
		b.Wins = v
	case StatRunsScored:
		b.RunsScored = v
	case StatERA:
		b.ERA = v
	case StatFIP:
		b.FIP = v
	case StatStrikeouts:
		b.Strikeouts = v
	case StatWalks:
		b.Walks = v
	case StatSaves:
		b.Saves = v
	}
}

// UnmarshalJSON accepts numbers or numeric strings (".285"); any other value,
// including "-" placeholders and nulls, reads as zero.
func (b *StatBundle) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = StatBundle{}
	for key, v := range raw {
		b.set(key, Coerce(v))
	}
	return nil
}

// Coerce converts a loosely typed input value to a finite number, or zero.
func Coerce(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		f = n
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
