package encounter

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Spawn is one weighted row of a location's encounter table.
type Spawn struct {
	Species string `yaml:"species"`
	Weight  int    `yaml:"weight"`
	MinAge  int    `yaml:"min_age"`
	MaxAge  int    `yaml:"max_age"`
}

// Location is a named area with its own encounter table.
type Location struct {
	ID string `yaml:"id"`
	// Environment tags are recorded on history entries of battles fought here.
	Environment []string `yaml:"environment"`
	// NearDeathChance is the chance a wild combatant is found already wounded.
	NearDeathChance float64 `yaml:"near_death_chance"`
	Spawns          []Spawn `yaml:"spawns"`
}

func (l Location) totalWeight() int {
	n := 0
	for _, s := range l.Spawns {
		n += s.Weight
	}
	return n
}

// Validate checks the table against the known species.
func (l Location) Validate(species map[string]Species) error {
	var errs []error
	if l.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if l.NearDeathChance < 0 || l.NearDeathChance > 1 {
		errs = append(errs, fmt.Errorf("near_death_chance must be in [0,1], got %v", l.NearDeathChance))
	}
	if len(l.Spawns) == 0 {
		errs = append(errs, errors.New("spawns must not be empty"))
	}
	for _, s := range l.Spawns {
		if _, ok := species[s.Species]; !ok {
			errs = append(errs, fmt.Errorf("unknown species %q", s.Species))
		}
		if s.Weight <= 0 {
			errs = append(errs, fmt.Errorf("spawn %q: weight must be > 0", s.Species))
		}
		if s.MinAge < 0 || s.MaxAge < s.MinAge {
			errs = append(errs, fmt.Errorf("spawn %q: age range [%d,%d] invalid", s.Species, s.MinAge, s.MaxAge))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("location %q: %w", l.ID, err)
	}
	return nil
}

type locationFile struct {
	Locations []Location `yaml:"locations"`
}

// LoadLocations reads the encounter tables at path.
func LoadLocations(path string, species map[string]Species) (map[string]Location, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading locations %s: %w", path, err)
	}
	return ParseLocations(data, species)
}

// ParseLocations decodes and validates encounter tables.
func ParseLocations(data []byte, species map[string]Species) (map[string]Location, error) {
	var f locationFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing locations: %w", err)
	}
	out := make(map[string]Location, len(f.Locations))
	for _, l := range f.Locations {
		if err := l.Validate(species); err != nil {
			return nil, err
		}
		if _, dup := out[l.ID]; dup {
			return nil, fmt.Errorf("duplicate location id %q", l.ID)
		}
		out[l.ID] = l
	}
	return out, nil
}
