package encounter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/faiths/internal/game/combat"
)

// LearnedMove is a move a species learns once it reaches Age.
type LearnedMove struct {
	Move string `yaml:"move"`
	Age  int    `yaml:"age"`
}

// Species is the template wild and starter combatants are built from.
type Species struct {
	ID        string        `yaml:"id"`
	Name      string        `yaml:"name"`
	Type      string        `yaml:"type"`
	BaseStats combat.Stats  `yaml:"base_stats"`
	Growth    combat.Stats  `yaml:"growth"`
	Learnset  []LearnedMove `yaml:"learnset"`
}

// Validate checks the species against the move registry.
func (s Species) Validate(moves *combat.MoveRegistry) error {
	var errs []error
	if s.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if s.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if s.BaseStats.Attack < 1 || s.BaseStats.Defense < 1 || s.BaseStats.Speed < 1 {
		errs = append(errs, fmt.Errorf("base stats must be >= 1, got %+v", s.BaseStats))
	}
	if s.Growth.Attack < 0 || s.Growth.Defense < 0 || s.Growth.Speed < 0 {
		errs = append(errs, fmt.Errorf("growth must be >= 0, got %+v", s.Growth))
	}
	if len(s.Learnset) == 0 {
		errs = append(errs, errors.New("learnset must not be empty"))
	}
	for _, lm := range s.Learnset {
		if _, ok := moves.Get(lm.Move); !ok {
			errs = append(errs, fmt.Errorf("unknown move %q", lm.Move))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("species %q: %w", s.ID, err)
	}
	return nil
}

// MovesAt returns up to combat.MaxKnownMoves moves known at age, most
// recently learned last. A species always knows its first learnset move.
func (s Species) MovesAt(age int) []string {
	learned := slices.Clone(s.Learnset)
	slices.SortStableFunc(learned, func(a, b LearnedMove) int { return a.Age - b.Age })
	var out []string
	for _, lm := range learned {
		if lm.Age > age && len(out) > 0 {
			break
		}
		if !slices.Contains(out, lm.Move) {
			out = append(out, lm.Move)
		}
	}
	if len(out) > combat.MaxKnownMoves {
		out = out[len(out)-combat.MaxKnownMoves:]
	}
	return out
}

// StatsAt returns the species' stats at age.
func (s Species) StatsAt(age int) combat.Stats {
	age = max(0, age)
	return combat.Stats{
		Attack:  max(1, s.BaseStats.Attack+s.Growth.Attack*age),
		Defense: max(1, s.BaseStats.Defense+s.Growth.Defense*age),
		Speed:   max(1, s.BaseStats.Speed+s.Growth.Speed*age),
	}
}

// LoadSpecies reads every *.yaml file in dir. Each file holds one species.
func LoadSpecies(dir string, moves *combat.MoveRegistry) (map[string]Species, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("listing species in %s: %w", dir, err)
	}
	out := make(map[string]Species, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading species %s: %w", p, err)
		}
		sp, err := ParseSpecies(data, moves)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		if _, dup := out[sp.ID]; dup {
			return nil, fmt.Errorf("duplicate species id %q in %s", sp.ID, p)
		}
		out[sp.ID] = sp
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no species found in %s", dir)
	}
	return out, nil
}

// ParseSpecies decodes one species document.
func ParseSpecies(data []byte, moves *combat.MoveRegistry) (Species, error) {
	var sp Species
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sp); err != nil {
		return Species{}, fmt.Errorf("parsing species: %w", err)
	}
	sp.ID = strings.ToLower(sp.ID)
	if err := sp.Validate(moves); err != nil {
		return Species{}, err
	}
	return sp, nil
}
