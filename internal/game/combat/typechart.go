package combat

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TypeChart maps (move type, defender type) to an effectiveness multiplier.
// Pairs not present are neutral.
type TypeChart struct {
	m map[string]map[string]float64
}

var allowedMultipliers = []float64{0, 0.5, 1, 1.5, 2}

// NewTypeChart validates and builds a chart keyed attack type -> defender type.
//
// Precondition: every multiplier is one of 0, 0.5, 1, 1.5, 2.
func NewTypeChart(entries map[string]map[string]float64) (*TypeChart, error) {
	tc := &TypeChart{m: make(map[string]map[string]float64, len(entries))}
	for atk, row := range entries {
		dst := make(map[string]float64, len(row))
		for def, mult := range row {
			if !allowedMultiplier(mult) {
				return nil, fmt.Errorf("type chart %s vs %s: multiplier %v not allowed", atk, def, mult)
			}
			dst[def] = mult
		}
		tc.m[atk] = dst
	}
	return tc, nil
}

func allowedMultiplier(v float64) bool {
	for _, a := range allowedMultipliers {
		if v == a {
			return true
		}
	}
	return false
}

// Multiplier returns the effectiveness of a moveType attack against defType.
func (tc *TypeChart) Multiplier(moveType, defType string) float64 {
	if row, ok := tc.m[moveType]; ok {
		if v, ok := row[defType]; ok {
			return v
		}
	}
	return 1
}

type typeChartFile struct {
	Chart map[string]map[string]float64 `yaml:"chart"`
}

// LoadTypeChart reads a YAML type chart from path.
func LoadTypeChart(path string) (*TypeChart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading type chart %s: %w", path, err)
	}
	return ParseTypeChart(data)
}

// ParseTypeChart decodes a YAML type chart.
func ParseTypeChart(data []byte) (*TypeChart, error) {
	var f typeChartFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing type chart: %w", err)
	}
	return NewTypeChart(f.Chart)
}

// DefaultTypeChart returns the built-in type interactions.
func DefaultTypeChart() *TypeChart {
	tc, err := NewTypeChart(map[string]map[string]float64{
		"fire":    {"grass": 2, "water": 0.5, "fire": 0.5, "bug": 1.5},
		"water":   {"fire": 2, "water": 0.5, "grass": 0.5, "rock": 1.5},
		"grass":   {"water": 2, "fire": 0.5, "grass": 0.5, "rock": 1.5},
		"dark":    {"psychic": 2, "ghost": 1.5, "dark": 0.5},
		"psychic": {"dark": 0, "psychic": 0.5, "poison": 1.5},
		"ghost":   {"normal": 0, "ghost": 2, "psychic": 1.5, "dark": 0.5},
		"normal":  {"ghost": 0, "rock": 0.5},
	})
	if err != nil {
		panic(fmt.Sprintf("combat: default type chart invalid: %v", err))
	}
	return tc
}

// EffectivenessText maps a multiplier onto its narrative phrase.
func EffectivenessText(mult float64) string {
	switch {
	case mult >= 2:
		return "devastatingly effective"
	case mult >= 1.5:
		return "very effective"
	case mult >= 1:
		return "effective"
	case mult > 0:
		return "not very effective"
	default:
		return "no effect"
	}
}
