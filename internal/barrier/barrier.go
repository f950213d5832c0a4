// Package barrier implements the barrier manager: collision queries,
// minimum-translation-vector push-out resolution, and destructible barrier
// damage/health tracking.
package barrier

import (
	"github.com/arenacore/arena/internal/geometry"
	"github.com/arenacore/arena/internal/mapschema"
	"github.com/arenacore/arena/internal/spatial"
)

// DamageState classifies a destructible barrier's visual damage tier.
type DamageState string

const (
	StateIntact    DamageState = "intact"
	StateCracked   DamageState = "cracked"
	StateDamaged   DamageState = "damaged"
	StateDestroyed DamageState = "destroyed"
)

const maxResolveIterations = 8

// Barrier is one static or destructible obstacle in the arena.
type Barrier struct {
	ID          string
	Kind        mapschema.BarrierKind
	Position    geometry.Vec2
	Size        geometry.Vec2
	Health      int
	MaxHealth   int
	DamageState DamageState
	Direction   mapschema.Direction
	Active      bool
}

// Bounds returns the barrier's rectangular footprint.
func (b *Barrier) Bounds() geometry.Rect {
	return geometry.Rect{X: b.Position.X, Y: b.Position.Y, W: b.Size.X, H: b.Size.Y}
}

func damageStateFor(health, maxHealth int) DamageState {
	if maxHealth <= 0 {
		return StateDestroyed
	}
	ratio := float64(health) / float64(maxHealth)
	switch {
	case health <= 0:
		return StateDestroyed
	case ratio >= 0.67:
		return StateIntact
	case ratio >= 0.34:
		return StateCracked
	default:
		return StateDamaged
	}
}

// DestroyedFunc is supplied by the coordinator and invoked by
// Manager.ApplyDamage when a barrier is destroyed, so the coordinator can
// emit a BarrierDestroyed event.
type DestroyedFunc func(id string, position geometry.Vec2)

// Manager owns every barrier in the currently loaded map and answers
// collision and damage queries against them.
type Manager struct {
	barriers    map[string]*Barrier
	index       *spatial.Grid
	onDestroyed DestroyedFunc
}

// NewManager creates an empty barrier manager.
func NewManager() *Manager {
	return &Manager{
		barriers: make(map[string]*Barrier),
		index:    spatial.NewGrid(geometry.TileSize),
	}
}

// SetCallbacks wires the BarrierDestroyed sink.
func (m *Manager) SetCallbacks(onDestroyed DestroyedFunc) {
	m.onDestroyed = onDestroyed
}

// LoadFromConfig replaces the current barrier set with one built from
// map config entries.
func (m *Manager) LoadFromConfig(configs []mapschema.BarrierConfig) {
	m.barriers = make(map[string]*Barrier, len(configs))
	m.index = spatial.NewGrid(geometry.TileSize)

	for _, c := range configs {
		b := &Barrier{
			ID:       c.ID,
			Kind:     c.Kind,
			Position: c.Position,
			Size:     c.Size,
			Active:   true,
		}
		if c.Kind == mapschema.BarrierDestructible && c.Health != nil {
			b.Health = *c.Health
			b.MaxHealth = *c.Health
			b.DamageState = damageStateFor(b.Health, b.MaxHealth)
		} else {
			b.DamageState = StateIntact
		}
		if c.Direction != nil {
			b.Direction = *c.Direction
		}
		m.barriers[b.ID] = b
		m.index.Insert(b.ID, b.Bounds())
	}
}

// candidateIDs returns the broad-phase set of barrier ids near (cx, cy).
func (m *Manager) candidateIDs(cx, cy, radius float64) []string {
	return m.index.Query(cx, cy, radius)
}

// CandidatesNear exposes the broad-phase query for callers (the arena
// coordinator) that want to pass an explicit candidate list into
// CheckCollision/ResolveCollision rather than re-deriving it.
func (m *Manager) CandidatesNear(pos geometry.Vec2, radius float64) []string {
	candidates := m.candidateIDs(pos.X, pos.Y, radius)
	out := make([]string, len(candidates))
	copy(out, candidates)
	return out
}

// blockingApproach reports whether a one-way barrier's face currently
// blocks entry from the circle's side. Direction names the side that is
// open to entry: a barrier with direction=N allows entry from the north
// (i.e. blocks only approaches originating from the south, meaning the
// circle is currently below the barrier's far edge).
func blockingApproach(b *Barrier, center geometry.Vec2) bool {
	rect := b.Bounds()
	switch b.Direction {
	case mapschema.DirN:
		return center.Y >= rect.Y+rect.H
	case mapschema.DirS:
		return center.Y <= rect.Y
	case mapschema.DirE:
		return center.X <= rect.X
	case mapschema.DirW:
		return center.X >= rect.X+rect.W
	default:
		return true
	}
}

// CheckCollision reports whether a circle at pos with radius r intersects
// any active candidate barrier. candidateIds is typically the result of a
// prior broad-phase spatial query.
func (m *Manager) CheckCollision(pos geometry.Vec2, r float64, candidateIds []string) bool {
	for _, id := range candidateIds {
		b, ok := m.barriers[id]
		if !ok || !b.Active {
			continue
		}
		if !geometry.CircleIntersectsRect(pos, r, b.Bounds()) {
			continue
		}
		if b.Kind == mapschema.BarrierOneWay {
			if !blockingApproach(b, pos) {
				continue
			}
		}
		return true
	}
	return false
}

// ResolveCollision iteratively pushes pos out of every colliding candidate
// barrier along the minimum-penetration axis, up to maxResolveIterations
// passes, and returns the resolved position.
func (m *Manager) ResolveCollision(pos geometry.Vec2, r float64, candidateIds []string) geometry.Vec2 {
	resolved := pos
	for i := 0; i < maxResolveIterations; i++ {
		movedAny := false
		for _, id := range candidateIds {
			b, ok := m.barriers[id]
			if !ok || !b.Active {
				continue
			}
			if b.Kind == mapschema.BarrierOneWay && !blockingApproach(b, resolved) {
				continue
			}
			mtv, overlapping := geometry.Penetration(resolved, r, b.Bounds())
			if !overlapping {
				continue
			}
			resolved = resolved.Add(mtv)
			movedAny = true
		}
		if !movedAny {
			break
		}
	}
	return resolved
}

// ApplyDamage decrements a destructible barrier's health, recomputes its
// damage state, and deactivates it at zero health. Unknown ids and
// already-destroyed barriers are a no-op.
func (m *Manager) ApplyDamage(id string, dmg int) {
	b, ok := m.barriers[id]
	if !ok || !b.Active || b.DamageState == StateDestroyed {
		return
	}

	b.Health -= dmg
	if b.Health < 0 {
		b.Health = 0
	}
	b.DamageState = damageStateFor(b.Health, b.MaxHealth)

	if b.Health == 0 {
		b.Active = false
		m.index.Remove(b.ID)
		if m.onDestroyed != nil {
			m.onDestroyed(b.ID, b.Position)
		}
	}
}

// Get returns the barrier for id, if it exists.
func (m *Manager) Get(id string) (*Barrier, bool) {
	b, ok := m.barriers[id]
	return b, ok
}

// All returns every barrier currently tracked, active or not.
func (m *Manager) All() []*Barrier {
	out := make([]*Barrier, 0, len(m.barriers))
	for _, b := range m.barriers {
		out = append(out, b)
	}
	return out
}
