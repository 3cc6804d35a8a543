package battle

import (
	"fmt"
	"sync"

	"github.com/cory-johannsen/faiths/internal/game/combat"
)

// Registry tracks active encounters and guarantees a combatant is in at most
// one of them. All methods are safe for concurrent use; the encounters
// themselves are not.
type Registry struct {
	mu         sync.RWMutex
	deps       Deps
	cfg        Config
	encounters map[string]*Encounter
	engaged    map[int64]string
}

// NewRegistry creates an empty Registry that builds encounters from deps and cfg.
//
// Postcondition: Active() == 0.
func NewRegistry(deps Deps, cfg Config) *Registry {
	return &Registry{
		deps:       deps,
		cfg:        cfg,
		encounters: make(map[string]*Encounter),
		engaged:    make(map[int64]string),
	}
}

// Start begins an encounter between player and opponent. Environment tags,
// when given, replace the registry's configured ones for this encounter.
//
// Precondition: neither combatant is engaged elsewhere; both can fight.
// Postcondition: the encounter is registered until it finishes.
func (r *Registry) Start(player, opponent *combat.Combatant, environment ...string) (*Encounter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range []*combat.Combatant{player, opponent} {
		if id, busy := r.engaged[c.ID]; busy {
			return nil, fmt.Errorf("%s in encounter %s: %w", c.Name, id, ErrAlreadyEngaged)
		}
	}
	cfg := r.cfg
	if len(environment) > 0 {
		cfg.Environment = environment
	}
	enc, err := NewEncounter(player, opponent, r.deps, cfg)
	if err != nil {
		return nil, err
	}
	enc.onFinish = r.release
	r.encounters[enc.ID()] = enc
	r.engaged[player.ID] = enc.ID()
	r.engaged[opponent.ID] = enc.ID()
	return enc, nil
}

// Get returns the active encounter with id.
func (r *Registry) Get(id string) (*Encounter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	enc, ok := r.encounters[id]
	if !ok {
		return nil, fmt.Errorf("encounter %s: %w", id, ErrEncounterNotFound)
	}
	return enc, nil
}

// EncounterFor returns the active encounter a combatant is engaged in.
func (r *Registry) EncounterFor(combatantID int64) (*Encounter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.engaged[combatantID]
	if !ok {
		return nil, false
	}
	return r.encounters[id], true
}

// Active returns the number of running encounters.
func (r *Registry) Active() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.encounters)
}

func (r *Registry) release(enc *Encounter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.encounters, enc.ID())
	delete(r.engaged, enc.player.ID)
	delete(r.engaged, enc.opponent.ID)
}
