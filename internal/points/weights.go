package points

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/diamonddraft/diamond-draft/internal/model"
)

// Weights maps a stat key to its scoring weight. Built fresh for every
// scoring pass; keys that are absent read as zero.
type Weights map[string]float64

// Get returns the weight for key, or zero.
func (w Weights) Get(key string) float64 {
	return w[key]
}

// AllZero reports whether no recognised key carries a non-zero weight.
func (w Weights) AllZero() bool {
	for _, k := range model.WeightKeys() {
		if w[k] != 0 {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (w Weights) Clone() Weights {
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// ParseWeights builds a full weight set from loosely typed user input. Every
// recognised key is present in the result; missing or non-numeric values
// become zero and unrecognised keys are dropped.
func ParseWeights(in map[string]any) Weights {
	out := make(Weights, len(model.WeightKeys()))
	for _, k := range model.WeightKeys() {
		out[k] = model.Coerce(in[k])
	}
	return out
}

// ParseWeightStrings is ParseWeights for text inputs such as form fields.
func ParseWeightStrings(in map[string]string) Weights {
	m := make(map[string]any, len(in))
	for k, v := range in {
		m[k] = v
	}
	return ParseWeights(m)
}

// DefaultWeights is the preset used when no preset file is configured.
func DefaultWeights() Weights {
	return DefaultWeightsFor(model.StatAvg)
}

// DefaultWeightsFor is DefaultWeights for an engine whose average-like field
// is avgField. With "hits" the avg weight moves to hits as a plain counting
// weight, since 100 per hit would swamp every other term.
func DefaultWeightsFor(avgField string) Weights {
	w := ParseWeights(map[string]any{
		model.StatAvg:        100.0,
		model.StatRuns:       1.0,
		model.StatRBI:        1.0,
		model.StatSteals:     2.0,
		model.StatHR:         4.0,
		model.StatWins:       5.0,
		model.StatERA:        3.0,
		model.StatStrikeouts: 1.0,
		model.StatWalks:      1.0,
		model.StatSaves:      5.0,
	})
	if avgField == model.StatHits {
		w[model.StatAvg] = 0
		w[model.StatHits] = 1.0
	}
	return w
}

// PresetFile is the YAML layout of a weight preset file:
//
//	presets:
//	  default:
//	    avg: 100
//	    hr: 4
type PresetFile struct {
	Presets map[string]map[string]any `yaml:"presets"`
}

// LoadPresets reads named weight presets from a YAML file.
func LoadPresets(path string) (map[string]Weights, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	var pf PresetFile
	if err := yaml.Unmarshal(b, &pf); err != nil {
		return nil, fmt.Errorf("parse presets %s: %w", path, err)
	}
	out := make(map[string]Weights, len(pf.Presets))
	for name, raw := range pf.Presets {
		out[name] = ParseWeights(raw)
	}
	return out, nil
}

// LoadPreset returns the named preset from the file at path, or the default
// weights for avgField when path is empty. Preset files are taken as written:
// in hits mode a preset must carry its own hits weight.
func LoadPreset(path, name, avgField string) (Weights, error) {
	if path == "" {
		return DefaultWeightsFor(avgField), nil
	}
	presets, err := LoadPresets(path)
	if err != nil {
		return nil, err
	}
	w, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("preset %q not in %s (have %s)", name, path, strings.Join(PresetNames(presets), ", "))
	}
	return w, nil
}

// PresetNames returns preset names in sorted order.
func PresetNames(presets map[string]Weights) []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
