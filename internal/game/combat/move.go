package combat

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category decides whether a move deals damage.
type Category string

const (
	CategoryPhysical Category = "physical"
	CategorySpecial  Category = "special"
	CategoryStatus   Category = "status"
)

// Move is a named technique a combatant may know.
type Move struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Category    Category `yaml:"category"`
	Power       float64  `yaml:"power"`
	Accuracy    float64  `yaml:"accuracy"`
	Description string   `yaml:"description"`
	// HitLines and MissLines are optional narration variants. A line may
	// use the {actor}, {target} and {move} placeholders.
	HitLines  []string `yaml:"hit_lines,omitempty"`
	MissLines []string `yaml:"miss_lines,omitempty"`
}

var digits = regexp.MustCompile(`[0-9]`)

func validLines(kind string, lines []string) error {
	var errs []error
	for i, l := range lines {
		switch {
		case strings.TrimSpace(l) == "":
			errs = append(errs, fmt.Errorf("%s %d is blank", kind, i))
		case digits.MatchString(l):
			errs = append(errs, fmt.Errorf("%s %d must not contain digits: %q", kind, i, l))
		}
	}
	return errors.Join(errs...)
}

// Validate checks the move's invariants.
func (m Move) Validate() error {
	var errs []error
	if m.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if m.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if m.Type == "" {
		errs = append(errs, errors.New("type must not be empty"))
	}
	switch m.Category {
	case CategoryPhysical, CategorySpecial:
	case CategoryStatus:
		if m.Power != 0 {
			errs = append(errs, fmt.Errorf("status move must have power 0, got %v", m.Power))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown category %q", m.Category))
	}
	if m.Power < 0 {
		errs = append(errs, fmt.Errorf("power must be >= 0, got %v", m.Power))
	}
	if m.Accuracy <= 0 || m.Accuracy > 1 {
		errs = append(errs, fmt.Errorf("accuracy must be in (0,1], got %v", m.Accuracy))
	}
	if err := validLines("hit line", m.HitLines); err != nil {
		errs = append(errs, err)
	}
	if err := validLines("miss line", m.MissLines); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("move %q: %w", m.ID, err)
	}
	return nil
}

// MoveRegistry indexes moves by ID.
type MoveRegistry struct {
	byID map[string]Move
}

// NewMoveRegistry validates and indexes moves.
//
// Precondition: move IDs are unique.
func NewMoveRegistry(moves []Move) (*MoveRegistry, error) {
	r := &MoveRegistry{byID: make(map[string]Move, len(moves))}
	for _, m := range moves {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byID[m.ID]; dup {
			return nil, fmt.Errorf("duplicate move id %q", m.ID)
		}
		r.byID[m.ID] = m
	}
	return r, nil
}

// Get returns the move with the given ID.
func (r *MoveRegistry) Get(id string) (Move, bool) {
	m, ok := r.byID[id]
	return m, ok
}

// IDs returns every registered move ID in sorted order.
func (r *MoveRegistry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of registered moves.
func (r *MoveRegistry) Len() int { return len(r.byID) }

type moveFile struct {
	Moves []Move `yaml:"moves"`
}

// LoadMoves reads a YAML move list from path.
func LoadMoves(path string) (*MoveRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading moves %s: %w", path, err)
	}
	return ParseMoves(data)
}

// ParseMoves decodes a YAML move list. Unknown fields are rejected.
func ParseMoves(data []byte) (*MoveRegistry, error) {
	var f moveFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing moves: %w", err)
	}
	return NewMoveRegistry(f.Moves)
}

// DefaultMoves returns the built-in move list.
func DefaultMoves() *MoveRegistry {
	r, err := NewMoveRegistry([]Move{
		{ID: "tackle", Name: "Tackle", Type: "normal", Category: CategoryPhysical, Power: 40, Accuracy: 0.95,
			Description: "A full-body charge."},
		{ID: "scratch", Name: "Scratch", Type: "normal", Category: CategoryPhysical, Power: 35, Accuracy: 1.0,
			Description: "Hard claws rake the target."},
		{ID: "bite", Name: "Bite", Type: "dark", Category: CategoryPhysical, Power: 60, Accuracy: 0.9,
			Description: "Sharp fangs sink in."},
		{ID: "ember", Name: "Ember", Type: "fire", Category: CategorySpecial, Power: 40, Accuracy: 0.95,
			Description: "A small flame licks the target."},
		{ID: "water_gun", Name: "Water Gun", Type: "water", Category: CategorySpecial, Power: 40, Accuracy: 0.95,
			Description: "A blast of pressurised water."},
		{ID: "body_slam", Name: "Body Slam", Type: "normal", Category: CategoryPhysical, Power: 85, Accuracy: 0.85,
			Description: "The user drops its whole weight on the target."},
		{ID: "flamethrower", Name: "Flamethrower", Type: "fire", Category: CategorySpecial, Power: 90, Accuracy: 0.9,
			Description: "A roaring torrent of fire."},
		{ID: "growl", Name: "Growl", Type: "normal", Category: CategoryStatus, Power: 0, Accuracy: 1.0,
			Description: "A low, threatening snarl."},
	})
	if err != nil {
		panic(fmt.Sprintf("combat: default moves invalid: %v", err))
	}
	return r
}
