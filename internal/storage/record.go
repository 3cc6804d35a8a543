package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cory-johannsen/faiths/internal/game/combat"
	"github.com/cory-johannsen/faiths/internal/game/history"
)

// SchemaVersion is the record version written by Encode.
const SchemaVersion = 2

// Record is the persisted form of one party slot.
type Record struct {
	SchemaVersion int             `json:"schema_version"`
	Slot          string          `json:"slot"`
	SavedAt       time.Time       `json:"saved_at"`
	Combatant     combat.Snapshot `json:"combatant"`
}

// recordV1 is the original save layout: life state as two booleans and
// vitality under hp_percent.
type recordV1 struct {
	Version int `json:"version"`
	Pokemon struct {
		ID            int64           `json:"id"`
		Species       string          `json:"species"`
		Name          string          `json:"name"`
		Type          string          `json:"type"`
		Age           int             `json:"age"`
		Attack        int             `json:"attack"`
		Defense       int             `json:"defense"`
		Speed         int             `json:"speed"`
		Moves         []string        `json:"moves"`
		HPPercent     float64         `json:"hp_percent"`
		Alive         bool            `json:"alive"`
		Conscious     bool            `json:"conscious"`
		Injuries      []combat.Injury `json:"injuries"`
		VoSFlag       bool            `json:"vos_flag"`
		BattleHistory []history.Entry `json:"battle_history"`
	} `json:"pokemon"`
}

// Encode serialises c for slot at the current schema version.
func Encode(slot string, c *combat.Combatant, now time.Time) ([]byte, error) {
	data, err := json.Marshal(Record{
		SchemaVersion: SchemaVersion,
		Slot:          slot,
		SavedAt:       now.UTC(),
		Combatant:     c.Snapshot(),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding slot %s: %w", slot, err)
	}
	return data, nil
}

// Decode parses a record of any supported version and restores the combatant.
//
// Postcondition: the returned combatant satisfies every combatant invariant.
func Decode(data []byte, rules combat.Rules) (*combat.Combatant, error) {
	rec, err := DecodeRecord(data)
	if err != nil {
		return nil, err
	}
	c, err := combat.Restore(rec.Combatant, rules)
	if err != nil {
		return nil, fmt.Errorf("decoding slot %s: %w", rec.Slot, err)
	}
	return c, nil
}

// DecodeRecord parses data and migrates it to the current schema version.
func DecodeRecord(data []byte) (Record, error) {
	var header struct {
		SchemaVersion int `json:"schema_version"`
		Version       int `json:"version"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return Record{}, fmt.Errorf("decoding record: %w", err)
	}
	switch {
	case header.SchemaVersion == SchemaVersion:
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return Record{}, fmt.Errorf("decoding record v%d: %w", SchemaVersion, err)
		}
		return rec, nil
	case header.SchemaVersion == 0 && header.Version <= 1:
		var old recordV1
		if err := json.Unmarshal(data, &old); err != nil {
			return Record{}, fmt.Errorf("decoding record v1: %w", err)
		}
		return migrateV1(old), nil
	default:
		return Record{}, fmt.Errorf("unsupported record schema version %d", max(header.SchemaVersion, header.Version))
	}
}

func migrateV1(old recordV1) Record {
	p := old.Pokemon
	status := combat.StatusActive
	switch {
	case !p.Alive:
		status = combat.StatusDead
	case !p.Conscious:
		status = combat.StatusFainted
	}
	vitality := p.HPPercent
	if status != combat.StatusActive {
		vitality = 0
	}
	return Record{
		SchemaVersion: SchemaVersion,
		Combatant: combat.Snapshot{
			ID:              p.ID,
			Species:         p.Species,
			Name:            p.Name,
			Type:            p.Type,
			AgeYears:        p.Age,
			Stats:           combat.Stats{Attack: p.Attack, Defense: p.Defense, Speed: p.Speed},
			Moves:           p.Moves,
			VitalityPercent: vitality,
			Status:          status,
			Injuries:        p.Injuries,
			VoS:             p.VoSFlag,
			History:         p.BattleHistory,
			BattlesFought:   len(p.BattleHistory),
		},
	}
}
