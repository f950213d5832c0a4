// Package arena implements the arena coordinator: it owns every
// simulation subsystem, drives them through a single-threaded tick, and
// exposes the full host-facing API (tick, collision/damage/teleport/jump
// queries, death notification, authoritative entity management, and
// callback registration).
//
// Nothing inside a tick suspends or re-enters the arena: callbacks are
// invoked synchronously from within Tick, and a host that wants
// asynchronous dispatch must copy the event data out and return.
package arena

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/arenacore/arena/internal/barrier"
	"github.com/arenacore/arena/internal/dynspawn"
	"github.com/arenacore/arena/internal/geometry"
	"github.com/arenacore/arena/internal/hazard"
	"github.com/arenacore/arena/internal/mapschema"
	"github.com/arenacore/arena/internal/tilemap"
	"github.com/arenacore/arena/internal/transport"
	"github.com/arenacore/arena/internal/trap"
	"github.com/arenacore/arena/internal/zonestack"
)

// LoadError wraps the human-readable reasons a MapConfig failed
// validation. load_map returns one of these rather than partially
// initializing the arena.
type LoadError struct {
	Reasons []string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("map config invalid: %s", strings.Join(e.Reasons, "; "))
}

// ArenaCallbacks is the full set of event sinks a host registers to
// observe simulation output. Every field is optional; a nil callback is
// simply not invoked.
type ArenaCallbacks struct {
	OnBarrierDestroyed func(barrierID string, position geometry.Vec2)
	OnTrapTriggered    func(trapID string, affectedPlayers []string, effect mapschema.TrapEffect, effectValue float64)
	OnPlayerTeleported func(playerID string, from, to geometry.Vec2)
	OnPlayerLaunched   func(playerID string, velocity geometry.Vec2)
	OnHazardDamage     func(playerID string, damage float64, sourceID string)

	// OnEffectAdded/OnEffectModified/OnEffectRemoved expose the zone effect
	// stack's own event stream. These are diagnostic; a host that only
	// cares about the gameplay events above may leave them nil.
	OnEffectAdded    func(playerID string, e zonestack.Effect)
	OnEffectModified func(playerID string, e zonestack.Effect)
	OnEffectRemoved  func(playerID, sourceID string)
}

// Arena owns every simulation subsystem for one loaded map.
type Arena struct {
	tileMap   *tilemap.TileMap
	barriers  *barrier.Manager
	hazards   *hazard.Manager
	traps     *trap.Manager
	transport *transport.Manager
	zones     *zonestack.Manager
	dynSpawn  *dynspawn.Manager

	useDynamicSpawning bool
	hazardSchedule     dynspawn.ScheduleConfig
	trapSchedule       dynspawn.ScheduleConfig

	callbacks ArenaCallbacks
	now       func() time.Time
}

// New creates an unloaded arena coordinator. now supplies the monotonic
// clock used for trap warning deadlines and transport cooldowns; rng
// drives dynamic spawn sampling.
func New(now func() time.Time, rng *rand.Rand) *Arena {
	a := &Arena{
		barriers:  barrier.NewManager(),
		hazards:   hazard.NewManager(),
		traps:     trap.NewManager(),
		transport: transport.NewManager(),
		zones:     zonestack.NewManager(),
		dynSpawn:  dynspawn.NewManager(rng),
		now:       now,
	}
	a.traps.SetClock(now)
	a.transport.SetClock(now)
	a.wireInternalCallbacks()
	return a
}

func (a *Arena) wireInternalCallbacks() {
	a.barriers.SetCallbacks(func(id string, pos geometry.Vec2) {
		if a.callbacks.OnBarrierDestroyed != nil {
			a.callbacks.OnBarrierDestroyed(id, pos)
		}
	})
	a.hazards.SetCallbacks(func(playerID string, intensity float64, sourceID string) {
		if a.callbacks.OnHazardDamage != nil {
			a.callbacks.OnHazardDamage(playerID, intensity, sourceID)
		}
	})
	a.traps.SetCallbacks(func(trapID string, affected []string, effect mapschema.TrapEffect, value float64) {
		if a.callbacks.OnTrapTriggered != nil {
			a.callbacks.OnTrapTriggered(trapID, affected, effect, value)
		}
	})
	a.transport.SetCallbacks(
		func(playerID string, from, to geometry.Vec2) {
			if a.callbacks.OnPlayerTeleported != nil {
				a.callbacks.OnPlayerTeleported(playerID, from, to)
			}
		},
		func(playerID string, velocity geometry.Vec2) {
			if a.callbacks.OnPlayerLaunched != nil {
				a.callbacks.OnPlayerLaunched(playerID, velocity)
			}
		},
	)
	a.zones.SetCallbacks(
		func(playerID string, e zonestack.Effect) {
			if a.callbacks.OnEffectAdded != nil {
				a.callbacks.OnEffectAdded(playerID, e)
			}
		},
		func(playerID string, e zonestack.Effect) {
			if a.callbacks.OnEffectModified != nil {
				a.callbacks.OnEffectModified(playerID, e)
			}
		},
		func(playerID, sourceID string) {
			if a.callbacks.OnEffectRemoved != nil {
				a.callbacks.OnEffectRemoved(playerID, sourceID)
			}
		},
	)
}

// SetCallbacks installs the host's event sinks.
func (a *Arena) SetCallbacks(cb ArenaCallbacks) {
	a.callbacks = cb
}

func exclusionZonesFromConfig(cfg *mapschema.MapConfig) []dynspawn.ExclusionZone {
	var zones []dynspawn.ExclusionZone
	for _, tp := range cfg.Teleporters {
		zones = append(zones, dynspawn.ExclusionZone{Position: tp.Position, Radius: tp.Radius})
	}
	for _, jp := range cfg.JumpPads {
		zones = append(zones, dynspawn.ExclusionZone{Position: jp.Position, Radius: jp.Radius})
	}
	for _, sp := range cfg.SpawnPoints {
		zones = append(zones, dynspawn.ExclusionZone{Position: sp.Position, Radius: geometry.TileSize})
	}
	return zones
}

// LoadMap validates cfg, and on success (re)initializes every subsystem
// from it. useDynamicSpawning selects whether hazards/traps start empty
// (populated later by the dynamic spawn manager) or are loaded directly
// from the config. hazardSchedule/trapSchedule are only consulted when
// useDynamicSpawning is true.
func (a *Arena) LoadMap(cfg *mapschema.MapConfig, useDynamicSpawning bool, hazardSchedule, trapSchedule dynspawn.ScheduleConfig) error {
	result := mapschema.Validate(cfg)
	if !result.Valid {
		return &LoadError{Reasons: result.Errors}
	}

	a.tileMap = tilemap.NewTileMap(cfg.Tiles)
	a.barriers.LoadFromConfig(cfg.Barriers)
	a.transport.LoadFromConfig(cfg.Teleporters, cfg.JumpPads)

	a.useDynamicSpawning = useDynamicSpawning
	a.hazardSchedule = hazardSchedule
	a.trapSchedule = trapSchedule

	if useDynamicSpawning {
		a.hazards.LoadFromConfig(nil)
		a.traps.LoadFromConfig(nil)
		a.dynSpawn.Initialize(a.now(), exclusionZonesFromConfig(cfg), hazardSchedule, trapSchedule)
	} else {
		a.hazards.LoadFromConfig(cfg.Hazards)
		a.traps.LoadFromConfig(cfg.Traps)
	}

	return nil
}

func hazardZoneKind(kind mapschema.HazardKind) (zonestack.Kind, bool) {
	switch kind {
	case mapschema.HazardDamage:
		return zonestack.KindDamageOverTime, true
	case mapschema.HazardSlow:
		return zonestack.KindSpeedModifier, true
	case mapschema.HazardEMP:
		return zonestack.KindPowerUpDisable, true
	default:
		return "", false
	}
}

func hazardZoneValue(h *hazard.Hazard) float64 {
	switch h.Kind {
	case mapschema.HazardDamage:
		return h.Intensity
	case mapschema.HazardSlow:
		return h.Intensity
	default:
		return 1
	}
}

// Tick advances every subsystem by dt seconds for the given player
// positions, in the order: dynamic spawn -> hazards -> traps -> transport
// cooldowns (lazily checked, no mutation needed) -> zone stack sync.
func (a *Arena) Tick(dt float64, players map[string]geometry.Vec2) {
	now := a.now()

	if a.useDynamicSpawning {
		result := a.dynSpawn.Tick(now)
		for _, id := range result.ExpiredHazardIDs {
			a.hazards.Remove(id)
		}
		for _, id := range result.ExpiredTrapIDs {
			a.traps.Remove(id)
		}
		if result.NewHazard != nil {
			a.hazards.Add(&hazard.Hazard{
				ID:   result.NewHazard.ID,
				Kind: result.NewHazard.Kind,
				Bounds: geometry.Rect{
					X: result.NewHazard.Position.X - geometry.TileSize/2,
					Y: result.NewHazard.Position.Y - geometry.TileSize/2,
					W: geometry.TileSize,
					H: geometry.TileSize,
				},
				Intensity: result.NewHazard.Intensity,
			})
		}
		if result.NewTrap != nil {
			a.traps.Add(&trap.Trap{
				ID:          result.NewTrap.ID,
				Kind:        mapschema.TrapPressure,
				Position:    result.NewTrap.Position,
				Radius:      result.NewTrap.Radius,
				Effect:      result.NewTrap.Effect,
				EffectValue: result.NewTrap.EffectValue,
				Cooldown:    result.NewTrap.Cooldown,
			})
		}
	}

	a.hazards.Tick(dt, players)
	a.traps.Tick(dt, players)
	// Transport cooldowns are absolute deadlines checked lazily inside
	// CheckTeleport/CheckJumpPad; there is no per-tick state to advance.

	playerIDs := make([]string, 0, len(players))
	for id := range players {
		playerIDs = append(playerIDs, id)
	}
	sort.Strings(playerIDs)

	for _, playerID := range playerIDs {
		pos := players[playerID]
		active := a.hazards.HazardsAtPosition(pos)
		activeIDs := make(map[string]bool, len(active))
		for _, h := range active {
			activeIDs[h.ID] = true
		}
		a.zones.CleanupStale(playerID, activeIDs)
		for _, h := range active {
			kind, ok := hazardZoneKind(h.Kind)
			if !ok {
				continue
			}
			a.zones.Add(playerID, zonestack.Effect{SourceID: h.ID, Kind: kind, Value: hazardZoneValue(h), Start: now})
		}
	}
}

// CheckBarrierCollision reports whether a circle at pos with radius r
// intersects any active barrier.
func (a *Arena) CheckBarrierCollision(pos geometry.Vec2, r float64) bool {
	candidates := a.barriers.CandidatesNear(pos, r)
	return a.barriers.CheckCollision(pos, r, candidates)
}

// ResolveCollision pushes pos out of every overlapping barrier and
// returns the resolved position.
func (a *Arena) ResolveCollision(pos geometry.Vec2, r float64) geometry.Vec2 {
	candidates := a.barriers.CandidatesNear(pos, r)
	return a.barriers.ResolveCollision(pos, r, candidates)
}

// DamageBarrier applies dmg to a destructible barrier.
func (a *Arena) DamageBarrier(id string, dmg int) {
	a.barriers.ApplyDamage(id, dmg)
}

// CheckTeleport attempts a teleport for playerID at pos.
func (a *Arena) CheckTeleport(playerID string, pos geometry.Vec2) (geometry.Vec2, bool) {
	return a.transport.CheckTeleport(playerID, pos)
}

// CheckJumpPad attempts a jump pad launch for playerID at pos.
func (a *Arena) CheckJumpPad(playerID string, pos geometry.Vec2) (geometry.Vec2, bool) {
	return a.transport.CheckJumpPad(playerID, pos)
}

// OnPlayerDeath clears a player's entire zone effect stack.
func (a *Arena) OnPlayerDeath(playerID string) {
	a.zones.OnPlayerDeath(playerID)
}

// OnProjectileHit arms a projectile-triggered trap's warning state. The
// projectile subsystem lives in the host; this is its entry point into
// the trap state machine.
func (a *Arena) OnProjectileHit(trapID string, pos geometry.Vec2, playerIDs []string) {
	a.traps.OnProjectileHit(trapID, pos, playerIDs)
}

// AddServerHazard installs an authoritative hazard outside the dynamic
// spawn schedule.
func (a *Arena) AddServerHazard(h *hazard.Hazard) {
	a.hazards.Add(h)
}

// RemoveServerHazard drops an authoritative hazard.
func (a *Arena) RemoveServerHazard(id string) {
	a.hazards.Remove(id)
}

// AddServerTrap installs an authoritative trap outside the dynamic spawn
// schedule.
func (a *Arena) AddServerTrap(t *trap.Trap) {
	a.traps.Add(t)
}

// RemoveServerTrap drops an authoritative trap.
func (a *Arena) RemoveServerTrap(id string) {
	a.traps.Remove(id)
}

// PlayerEffects returns the aggregated zone effect state for playerID.
func (a *Arena) PlayerEffects(playerID string) zonestack.EffectState {
	return a.zones.Aggregate(playerID)
}

// TileMap exposes the loaded tile grid for read-only queries (e.g. a host
// renderer or debug visualizer).
func (a *Arena) TileMap() *tilemap.TileMap {
	return a.tileMap
}

// Barrier returns a loaded barrier by id, if present.
func (a *Arena) Barrier(id string) (*barrier.Barrier, bool) {
	return a.barriers.Get(id)
}

// Barriers returns every loaded barrier.
func (a *Arena) Barriers() []*barrier.Barrier {
	return a.barriers.All()
}

// Hazards returns every active hazard, static or dynamically spawned.
func (a *Arena) Hazards() []*hazard.Hazard {
	return a.hazards.All()
}

// Traps returns every loaded trap, static or dynamically spawned.
func (a *Arena) Traps() []*trap.Trap {
	return a.traps.All()
}

// Teleporters returns every loaded teleporter pad.
func (a *Arena) Teleporters() []*transport.Teleporter {
	return a.transport.Teleporters()
}

// JumpPads returns every loaded jump pad.
func (a *Arena) JumpPads() []*transport.JumpPad {
	return a.transport.JumpPads()
}
