// Package trap implements the trap manager: a per-trap state machine
// (armed -> warning -> triggered -> cooldown -> armed) driven by pressure,
// timed, or projectile trigger sources.
package trap

import (
	"sort"
	"time"

	"github.com/arenacore/arena/internal/geometry"
	"github.com/arenacore/arena/internal/mapschema"
)

// warningWindow is the fixed telegraph duration between a trap arming its
// trigger and the effect actually firing.
const warningWindow = 300 * time.Millisecond

// State is a trap's current position in its trigger lifecycle.
type State string

const (
	StateArmed     State = "armed"
	StateWarning   State = "warning"
	StateTriggered State = "triggered"
	StateCooldown  State = "cooldown"
)

// Trap is one trap instance.
type Trap struct {
	ID          string
	Kind        mapschema.TrapKind
	Position    geometry.Vec2
	Radius      float64
	Effect      mapschema.TrapEffect
	EffectValue float64
	Cooldown    float64
	Interval    *float64
	ChainRadius *float64

	State             State
	WarningDeadline   time.Time
	CooldownRemaining float64
	timedAccum        float64
}

// TriggeredFunc is invoked when a trap fires, with the set of affected
// player ids and the effect to apply to each.
type TriggeredFunc func(trapID string, affectedPlayers []string, effect mapschema.TrapEffect, effectValue float64)

// Manager owns every trap in the currently loaded map.
type Manager struct {
	traps       map[string]*Trap
	onTriggered TriggeredFunc
	now         func() time.Time
}

// NewManager creates an empty trap manager. now defaults to time.Now and
// may be overridden by tests for deterministic warning-window assertions.
func NewManager() *Manager {
	return &Manager{
		traps: make(map[string]*Trap),
		now:   time.Now,
	}
}

// SetCallbacks wires the TrapTriggered sink.
func (m *Manager) SetCallbacks(onTriggered TriggeredFunc) {
	m.onTriggered = onTriggered
}

// SetClock overrides the manager's time source, used by tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// LoadFromConfig replaces the active trap set with one built from map
// config entries.
func (m *Manager) LoadFromConfig(configs []mapschema.TrapConfig) {
	m.traps = make(map[string]*Trap, len(configs))
	for _, c := range configs {
		m.traps[c.ID] = &Trap{
			ID:          c.ID,
			Kind:        c.Kind,
			Position:    c.Position,
			Radius:      c.Radius,
			Effect:      c.Effect,
			EffectValue: c.EffectValue,
			Cooldown:    c.Cooldown,
			Interval:    c.Interval,
			ChainRadius: c.ChainRadius,
			State:       StateArmed,
		}
	}
}

// Add installs a single trap, used by dynamic spawning and authoritative
// add_server_trap calls.
func (m *Manager) Add(t *Trap) {
	t.State = StateArmed
	m.traps[t.ID] = t
}

// Remove drops a trap entirely.
func (m *Manager) Remove(id string) {
	delete(m.traps, id)
}

// Get returns the trap for id, if present.
func (m *Manager) Get(id string) (*Trap, bool) {
	t, ok := m.traps[id]
	return t, ok
}

// All returns every tracked trap.
func (m *Manager) All() []*Trap {
	out := make([]*Trap, 0, len(m.traps))
	for _, t := range m.traps {
		out = append(out, t)
	}
	return out
}

// playersWithinRadius returns the ids sorted, so downstream event
// payloads are independent of map iteration order.
func playersWithinRadius(pos geometry.Vec2, radius float64, players map[string]geometry.Vec2) []string {
	var out []string
	for id, p := range players {
		if geometry.Distance(pos, p) <= radius {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// OnProjectileHit arms the warning state for a projectile-triggered trap.
// Unknown ids and traps not currently armed are a no-op.
func (m *Manager) OnProjectileHit(trapID string, pos geometry.Vec2, playerIDs []string) {
	t, ok := m.traps[trapID]
	if !ok || t.Kind != mapschema.TrapProjectile || t.State != StateArmed {
		return
	}
	m.enterWarning(t)
}

func (m *Manager) enterWarning(t *Trap) {
	t.State = StateWarning
	t.WarningDeadline = m.now().Add(warningWindow)
}

// affectedPlayers merges the trap's radius set with its chain radius set
// (if present), deduplicating ids.
func affectedPlayers(t *Trap, players map[string]geometry.Vec2) []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range playersWithinRadius(t.Position, t.Radius, players) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	if t.ChainRadius != nil {
		for _, id := range playersWithinRadius(t.Position, *t.ChainRadius, players) {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	sort.Strings(out)
	return out
}

func (m *Manager) trigger(t *Trap, players map[string]geometry.Vec2) {
	t.State = StateTriggered
	affected := affectedPlayers(t, players)
	if m.onTriggered != nil {
		m.onTriggered(t.ID, affected, t.Effect, t.EffectValue)
	}
	t.State = StateCooldown
	t.CooldownRemaining = t.Cooldown
}

// Tick advances every trap's state machine by dt seconds. players maps
// player id to current position, used for pressure triggers and for
// collecting the affected-player set when a trap fires.
func (m *Manager) Tick(dt float64, players map[string]geometry.Vec2) {
	now := m.now()

	ids := make([]string, 0, len(m.traps))
	for id := range m.traps {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		t := m.traps[id]
		switch t.State {
		case StateArmed:
			switch t.Kind {
			case mapschema.TrapPressure:
				if len(playersWithinRadius(t.Position, t.Radius, players)) > 0 {
					m.enterWarning(t)
				}
			case mapschema.TrapTimed:
				if t.Interval != nil {
					t.timedAccum += dt
					if t.timedAccum >= *t.Interval {
						t.timedAccum = 0
						m.enterWarning(t)
					}
				}
			case mapschema.TrapProjectile:
				// armed -> warning only via OnProjectileHit
			}

		case StateWarning:
			if !now.Before(t.WarningDeadline) {
				m.trigger(t, players)
			}

		case StateTriggered:
			// trigger() immediately advances to cooldown in the same call;
			// a trap should never be observed parked in Triggered across ticks.
			t.State = StateCooldown
			t.CooldownRemaining = t.Cooldown

		case StateCooldown:
			t.CooldownRemaining -= dt
			if t.CooldownRemaining <= 0 {
				t.State = StateArmed
				t.timedAccum = 0
			}
		}
	}
}
