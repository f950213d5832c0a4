// Package transport implements the transport manager: paired and
// random-exit teleporters, and directional jump pads, each with
// per-player cooldowns tracked as absolute deadlines.
package transport

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/arenacore/arena/internal/geometry"
	"github.com/arenacore/arena/internal/mapschema"
)

const (
	// DefaultTeleportCooldown is the per-player cooldown applied to both
	// endpoints of a teleport.
	DefaultTeleportCooldown = 1500 * time.Millisecond
	// DefaultJumpPadCooldown is the per-player cooldown applied to a jump
	// pad after use.
	DefaultJumpPadCooldown = 1000 * time.Millisecond
)

// Teleporter is one teleporter pad.
type Teleporter struct {
	ID          string
	PairID      string
	Position    geometry.Vec2
	Radius      float64
	RandomExits []geometry.Vec2
	cooldowns   map[string]time.Time
}

// JumpPad is one directional jump pad.
type JumpPad struct {
	ID        string
	Position  geometry.Vec2
	Radius    float64
	Force     float64
	Direction mapschema.Direction
	cooldowns map[string]time.Time
}

// TeleportedFunc is invoked when a player teleports.
type TeleportedFunc func(playerID string, from, to geometry.Vec2)

// LaunchedFunc is invoked when a player is launched by a jump pad.
type LaunchedFunc func(playerID string, velocity geometry.Vec2)

// Manager owns every teleporter and jump pad in the currently loaded map.
type Manager struct {
	teleporters        map[string]*Teleporter
	jumpPads           map[string]*JumpPad
	teleporterCooldown time.Duration
	jumpPadCooldown    time.Duration

	onTeleported TeleportedFunc
	onLaunched   LaunchedFunc
	now          func() time.Time
	rng          *rand.Rand
}

// NewManager creates an empty transport manager using default cooldowns.
func NewManager() *Manager {
	return &Manager{
		teleporters:        make(map[string]*Teleporter),
		jumpPads:           make(map[string]*JumpPad),
		teleporterCooldown: DefaultTeleportCooldown,
		jumpPadCooldown:    DefaultJumpPadCooldown,
		now:                time.Now,
		rng:                rand.New(rand.NewSource(1)),
	}
}

// SetCallbacks wires the PlayerTeleported/PlayerLaunched sinks.
func (m *Manager) SetCallbacks(onTeleported TeleportedFunc, onLaunched LaunchedFunc) {
	m.onTeleported = onTeleported
	m.onLaunched = onLaunched
}

// SetClock overrides the manager's time source, used by tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// SetRand overrides the manager's random source, used by tests for
// deterministic random-exit selection.
func (m *Manager) SetRand(r *rand.Rand) {
	m.rng = r
}

// LoadFromConfig replaces the active teleporter and jump pad sets with
// ones built from map config entries.
func (m *Manager) LoadFromConfig(teleporters []mapschema.TeleporterConfig, jumpPads []mapschema.JumpPadConfig) {
	m.teleporters = make(map[string]*Teleporter, len(teleporters))
	for _, c := range teleporters {
		m.teleporters[c.ID] = &Teleporter{
			ID:          c.ID,
			PairID:      c.PairID,
			Position:    c.Position,
			Radius:      c.Radius,
			RandomExits: c.RandomExits,
			cooldowns:   make(map[string]time.Time),
		}
	}

	m.jumpPads = make(map[string]*JumpPad, len(jumpPads))
	for _, c := range jumpPads {
		m.jumpPads[c.ID] = &JumpPad{
			ID:        c.ID,
			Position:  c.Position,
			Radius:    c.Radius,
			Force:     c.Force,
			Direction: c.Direction,
			cooldowns: make(map[string]time.Time),
		}
	}
}

// Teleporters returns every loaded teleporter ordered by id, used by
// read-only consumers such as a debug renderer.
func (m *Manager) Teleporters() []*Teleporter {
	out := make([]*Teleporter, 0, len(m.teleporters))
	for _, id := range m.teleporterIDs() {
		out = append(out, m.teleporters[id])
	}
	return out
}

// JumpPads returns every loaded jump pad ordered by id.
func (m *Manager) JumpPads() []*JumpPad {
	out := make([]*JumpPad, 0, len(m.jumpPads))
	for _, id := range m.jumpPadIDs() {
		out = append(out, m.jumpPads[id])
	}
	return out
}

// teleporterIDs/jumpPadIDs return sorted id lists so that trigger checks
// and snapshot accessors resolve in an order independent of map
// iteration. With non-overlapping pads at most one can contain a player,
// but the sorted walk keeps the degenerate overlapping case reproducible
// for a given input.
func (m *Manager) teleporterIDs() []string {
	ids := make([]string, 0, len(m.teleporters))
	for id := range m.teleporters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *Manager) jumpPadIDs() []string {
	ids := make([]string, 0, len(m.jumpPads))
	for id := range m.jumpPads {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *Manager) pairedDestination(t *Teleporter) (geometry.Vec2, bool) {
	for _, id := range m.teleporterIDs() {
		other := m.teleporters[id]
		if other.ID != t.ID && other.PairID == t.PairID && len(other.RandomExits) == 0 {
			return other.Position, true
		}
	}
	return geometry.Vec2{}, false
}

func (t *Teleporter) cooldownElapsed(playerID string, now time.Time) bool {
	deadline, ok := t.cooldowns[playerID]
	return !ok || !now.Before(deadline)
}

// CheckTeleport tests whether pos falls inside any teleporter whose
// cooldown for playerID has elapsed. On success it returns the
// destination, sets the per-player cooldown on both endpoints, and emits
// PlayerTeleported.
func (m *Manager) CheckTeleport(playerID string, pos geometry.Vec2) (geometry.Vec2, bool) {
	now := m.now()

	for _, id := range m.teleporterIDs() {
		t := m.teleporters[id]
		if geometry.Distance(pos, t.Position) > t.Radius {
			continue
		}
		if !t.cooldownElapsed(playerID, now) {
			continue
		}

		var dest geometry.Vec2
		if len(t.RandomExits) > 0 {
			dest = t.RandomExits[m.rng.Intn(len(t.RandomExits))]
		} else {
			d, ok := m.pairedDestination(t)
			if !ok {
				continue
			}
			dest = d
		}

		deadline := now.Add(m.teleporterCooldown)
		t.cooldowns[playerID] = deadline
		if paired, ok := m.findByPosition(dest); ok {
			paired.cooldowns[playerID] = deadline
		}

		if m.onTeleported != nil {
			m.onTeleported(playerID, pos, dest)
		}
		return dest, true
	}
	return geometry.Vec2{}, false
}

func (m *Manager) findByPosition(pos geometry.Vec2) (*Teleporter, bool) {
	for _, id := range m.teleporterIDs() {
		if t := m.teleporters[id]; t.Position == pos {
			return t, true
		}
	}
	return nil, false
}

// jumpVector returns the 8-way launch velocity for a given direction and
// force, with magnitude exactly equal to force.
func jumpVector(dir mapschema.Direction, force float64) geometry.Vec2 {
	switch dir {
	case mapschema.DirN:
		return geometry.Vec2{X: 0, Y: -force}
	case mapschema.DirS:
		return geometry.Vec2{X: 0, Y: force}
	case mapschema.DirE:
		return geometry.Vec2{X: force, Y: 0}
	case mapschema.DirW:
		return geometry.Vec2{X: -force, Y: 0}
	case mapschema.DirNE, mapschema.DirNW, mapschema.DirSE, mapschema.DirSW:
		diag := force / math.Sqrt2
		x, y := diag, diag
		if dir == mapschema.DirNE || dir == mapschema.DirNW {
			y = -diag
		}
		if dir == mapschema.DirNW || dir == mapschema.DirSW {
			x = -diag
		}
		return geometry.Vec2{X: x, Y: y}
	default:
		return geometry.Vec2{}
	}
}

// CheckJumpPad tests whether pos falls inside any jump pad whose cooldown
// for playerID has elapsed. On success it returns the launch velocity,
// sets the pad's per-player cooldown, and emits PlayerLaunched.
func (m *Manager) CheckJumpPad(playerID string, pos geometry.Vec2) (geometry.Vec2, bool) {
	now := m.now()

	for _, id := range m.jumpPadIDs() {
		pad := m.jumpPads[id]
		if geometry.Distance(pos, pad.Position) > pad.Radius {
			continue
		}
		deadline, onCooldown := pad.cooldowns[playerID]
		if onCooldown && now.Before(deadline) {
			continue
		}

		velocity := jumpVector(pad.Direction, pad.Force)
		pad.cooldowns[playerID] = now.Add(m.jumpPadCooldown)

		if m.onLaunched != nil {
			m.onLaunched(playerID, velocity)
		}
		return velocity, true
	}
	return geometry.Vec2{}, false
}
