// Package hazard implements the hazard manager: damage, slow, and
// ability-disable zones that apply their effect to any player whose
// position falls inside their bounds.
package hazard

import (
	"sort"

	"github.com/arenacore/arena/internal/geometry"
	"github.com/arenacore/arena/internal/mapschema"
)

// damageTickInterval is the fixed cadence at which damage hazards fire
// on_damage, aggregated across frames regardless of tick rate.
const damageTickInterval = 1.0 // seconds

// Hazard is one active hazard zone.
type Hazard struct {
	ID        string
	Kind      mapschema.HazardKind
	Bounds    geometry.Rect
	Intensity float64
	Active    bool
}

// OnDamageFunc is invoked once per elapsed damage-tick interval for a
// player standing inside a damage hazard.
type OnDamageFunc func(playerID string, intensity float64, sourceID string)

type playerHazardKey struct {
	playerID string
	hazardID string
}

// Manager tracks the active hazard set and per-player/per-hazard damage
// tick accumulators.
type Manager struct {
	hazards   map[string]*Hazard
	accumTime map[playerHazardKey]float64
	onDamage  OnDamageFunc
}

// NewManager creates an empty hazard manager.
func NewManager() *Manager {
	return &Manager{
		hazards:   make(map[string]*Hazard),
		accumTime: make(map[playerHazardKey]float64),
	}
}

// SetCallbacks wires the on_damage sink.
func (m *Manager) SetCallbacks(onDamage OnDamageFunc) {
	m.onDamage = onDamage
}

// LoadFromConfig replaces the active hazard set with one built from map
// config entries. Used when the map is loaded without dynamic spawning.
func (m *Manager) LoadFromConfig(configs []mapschema.HazardConfig) {
	m.hazards = make(map[string]*Hazard, len(configs))
	m.accumTime = make(map[playerHazardKey]float64)
	for _, c := range configs {
		m.hazards[c.ID] = &Hazard{
			ID:        c.ID,
			Kind:      c.Kind,
			Bounds:    c.Bounds,
			Intensity: c.Intensity,
			Active:    true,
		}
	}
}

// Add installs a single hazard, used by dynamic spawning and by
// authoritative add_server_hazard calls.
func (m *Manager) Add(h *Hazard) {
	h.Active = true
	m.hazards[h.ID] = h
}

// Remove deactivates and drops a hazard along with any accumulated damage
// state for it.
func (m *Manager) Remove(id string) {
	delete(m.hazards, id)
	for key := range m.accumTime {
		if key.hazardID == id {
			delete(m.accumTime, key)
		}
	}
}

// Get returns the hazard for id, if present and active.
func (m *Manager) Get(id string) (*Hazard, bool) {
	h, ok := m.hazards[id]
	if !ok || !h.Active {
		return nil, false
	}
	return h, true
}

// All returns every active hazard.
func (m *Manager) All() []*Hazard {
	out := make([]*Hazard, 0, len(m.hazards))
	for _, h := range m.hazards {
		if h.Active {
			out = append(out, h)
		}
	}
	return out
}

// HazardsAtPosition returns every active hazard containing p, ordered by
// hazard id for deterministic event emission.
func (m *Manager) HazardsAtPosition(p geometry.Vec2) []*Hazard {
	var out []*Hazard
	for _, h := range m.hazards {
		if h.Active && geometry.PointInRect(p, h.Bounds) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Tick advances damage-tick accumulators for every player/damage-hazard
// pair and fires on_damage for any pair that crossed the tick interval.
// players maps player id to current position.
func (m *Manager) Tick(dt float64, players map[string]geometry.Vec2) {
	inside := make(map[playerHazardKey]bool, len(players))

	playerIDs := make([]string, 0, len(players))
	for id := range players {
		playerIDs = append(playerIDs, id)
	}
	sort.Strings(playerIDs)

	hazardIDs := make([]string, 0, len(m.hazards))
	for id := range m.hazards {
		hazardIDs = append(hazardIDs, id)
	}
	sort.Strings(hazardIDs)

	for _, playerID := range playerIDs {
		pos := players[playerID]
		for _, hazardID := range hazardIDs {
			h := m.hazards[hazardID]
			if !h.Active || h.Kind != mapschema.HazardDamage {
				continue
			}
			if !geometry.PointInRect(pos, h.Bounds) {
				continue
			}
			key := playerHazardKey{playerID: playerID, hazardID: h.ID}
			inside[key] = true

			m.accumTime[key] += dt
			for m.accumTime[key] >= damageTickInterval {
				m.accumTime[key] -= damageTickInterval
				if m.onDamage != nil {
					m.onDamage(playerID, h.Intensity, h.ID)
				}
			}
		}
	}

	// Players/hazard pairs no longer overlapping reset their accumulator so
	// re-entry starts a fresh tick window rather than firing immediately.
	for key := range m.accumTime {
		if !inside[key] {
			delete(m.accumTime, key)
		}
	}
}
