// Package dynspawn implements the dynamic spawn manager used in offline
// mode: it schedules hazard and trap spawn/despawn on independent
// schedules, sampling positions from five fixed spawn zones while
// respecting exclusion zones and a minimum separation from other spawns.
package dynspawn

import (
	"math/rand"
	"sort"
	"time"

	"github.com/arenacore/arena/internal/geometry"
	"github.com/arenacore/arena/internal/mapschema"
)

const (
	maxSampleAttempts = 20
	minSeparation     = 60.0
)

// ScheduleConfig controls one spawn schedule (hazards or traps).
type ScheduleConfig struct {
	InitialDelayMin, InitialDelayMax float64
	LifetimeMin, LifetimeMax         float64
	RespawnDelayMin, RespawnDelayMax float64
	MaxConcurrent                    int
}

// ExclusionZone is a circular area new spawns must not land inside,
// typically a teleporter, jump pad, or spawn point inflated by its own
// radius.
type ExclusionZone struct {
	Position geometry.Vec2
	Radius   float64
}

// SpawnedHazard is one dynamically spawned hazard instance.
type SpawnedHazard struct {
	ID          string
	Kind        mapschema.HazardKind
	Position    geometry.Vec2
	Intensity   float64
	DespawnTime time.Time
}

// SpawnedTrap is one dynamically spawned trap instance.
type SpawnedTrap struct {
	ID          string
	Position    geometry.Vec2
	Effect      mapschema.TrapEffect
	EffectValue float64
	Radius      float64
	Cooldown    float64
	DespawnTime time.Time
}

// TickResult reports the spawn/despawn decisions for a single tick. The
// coordinator is responsible for applying these to the hazard and trap
// managers.
type TickResult struct {
	ExpiredHazardIDs []string
	ExpiredTrapIDs   []string
	NewHazard        *SpawnedHazard
	NewTrap          *SpawnedTrap
}

// Manager runs the two independent spawn schedules.
type Manager struct {
	hazardSchedule ScheduleConfig
	trapSchedule   ScheduleConfig
	exclusions     []ExclusionZone

	activeHazards map[string]*SpawnedHazard
	activeTraps   map[string]*SpawnedTrap

	nextHazardSpawn time.Time
	nextTrapSpawn   time.Time

	rng    *rand.Rand
	nextID int
}

// NewManager creates a dynamic spawn manager. Call Initialize before the
// first Tick.
func NewManager(rng *rand.Rand) *Manager {
	return &Manager{
		activeHazards: make(map[string]*SpawnedHazard),
		activeTraps:   make(map[string]*SpawnedTrap),
		rng:           rng,
	}
}

func (m *Manager) uniform(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + m.rng.Float64()*(max-min)
}

// Initialize seeds both spawn schedules' first-spawn deadlines and records
// the exclusion zones new spawns must avoid.
func (m *Manager) Initialize(startTime time.Time, exclusions []ExclusionZone, hazardSchedule, trapSchedule ScheduleConfig) {
	m.exclusions = exclusions
	m.hazardSchedule = hazardSchedule
	m.trapSchedule = trapSchedule
	m.activeHazards = make(map[string]*SpawnedHazard)
	m.activeTraps = make(map[string]*SpawnedTrap)

	m.nextHazardSpawn = startTime.Add(time.Duration(m.uniform(hazardSchedule.InitialDelayMin, hazardSchedule.InitialDelayMax) * float64(time.Second)))
	m.nextTrapSpawn = startTime.Add(time.Duration(m.uniform(trapSchedule.InitialDelayMin, trapSchedule.InitialDelayMax) * float64(time.Second)))
}

func (m *Manager) newID(prefix string) string {
	m.nextID++
	return prefix + "-" + itoa(m.nextID)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := [20]byte{}
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[i:])
}

func (m *Manager) randomZonePosition() geometry.Vec2 {
	zone := spawnZones[m.rng.Intn(len(spawnZones))]
	return geometry.Vec2{
		X: zone.X + m.rng.Float64()*zone.W,
		Y: zone.Y + m.rng.Float64()*zone.H,
	}
}

func (m *Manager) violatesExclusion(pos geometry.Vec2) bool {
	for _, ez := range m.exclusions {
		if geometry.Distance(pos, ez.Position) < ez.Radius {
			return true
		}
	}
	return false
}

func (m *Manager) violatesSeparation(pos geometry.Vec2) bool {
	for _, h := range m.activeHazards {
		if geometry.Distance(pos, h.Position) < minSeparation {
			return true
		}
	}
	for _, t := range m.activeTraps {
		if geometry.Distance(pos, t.Position) < minSeparation {
			return true
		}
	}
	return false
}

// sampleFreePosition tries up to maxSampleAttempts times to find a spawn
// zone position clear of exclusion zones and other spawns. Returns false
// if no valid position was found within the attempt budget.
func (m *Manager) sampleFreePosition() (geometry.Vec2, bool) {
	for i := 0; i < maxSampleAttempts; i++ {
		pos := m.randomZonePosition()
		if m.violatesExclusion(pos) || m.violatesSeparation(pos) {
			continue
		}
		return pos, true
	}
	return geometry.Vec2{}, false
}

var hazardKindPool = []mapschema.HazardKind{
	mapschema.HazardSlow,
	mapschema.HazardSlow,
	mapschema.HazardDamage,
	mapschema.HazardEMP,
}

func (m *Manager) randomHazardKindAndIntensity() (mapschema.HazardKind, float64) {
	kind := hazardKindPool[m.rng.Intn(len(hazardKindPool))]
	switch kind {
	case mapschema.HazardDamage:
		return kind, m.uniform(5, 25)
	case mapschema.HazardSlow:
		return kind, m.uniform(0.25, 0.75)
	default:
		return mapschema.HazardEMP, 1
	}
}

type trapEffectOption struct {
	effect   mapschema.TrapEffect
	min, max float64
}

var trapEffectPool = []trapEffectOption{
	{mapschema.EffectDamageBurst, 30, 60},
	{mapschema.EffectKnockback, 150, 250},
	{mapschema.EffectStun, 0.3, 0.7},
}

func (m *Manager) randomTrapEffect() (mapschema.TrapEffect, float64) {
	opt := trapEffectPool[m.rng.Intn(len(trapEffectPool))]
	return opt.effect, m.uniform(opt.min, opt.max)
}

// Tick advances both schedules: it expires spawns past their despawn
// time and, if a schedule's deadline has elapsed and it is under its
// concurrency cap, attempts one new spawn.
func (m *Manager) Tick(now time.Time) TickResult {
	var result TickResult

	for id, h := range m.activeHazards {
		if !now.Before(h.DespawnTime) {
			result.ExpiredHazardIDs = append(result.ExpiredHazardIDs, id)
		}
	}
	sort.Strings(result.ExpiredHazardIDs)
	for _, id := range result.ExpiredHazardIDs {
		delete(m.activeHazards, id)
	}

	for id, tr := range m.activeTraps {
		if !now.Before(tr.DespawnTime) {
			result.ExpiredTrapIDs = append(result.ExpiredTrapIDs, id)
		}
	}
	sort.Strings(result.ExpiredTrapIDs)
	for _, id := range result.ExpiredTrapIDs {
		delete(m.activeTraps, id)
	}

	if !now.Before(m.nextHazardSpawn) && len(m.activeHazards) < m.hazardSchedule.MaxConcurrent {
		if pos, ok := m.sampleFreePosition(); ok {
			kind, intensity := m.randomHazardKindAndIntensity()
			h := &SpawnedHazard{
				ID:          m.newID("dynhazard"),
				Kind:        kind,
				Position:    pos,
				Intensity:   intensity,
				DespawnTime: now.Add(time.Duration(m.uniform(m.hazardSchedule.LifetimeMin, m.hazardSchedule.LifetimeMax) * float64(time.Second))),
			}
			m.activeHazards[h.ID] = h
			result.NewHazard = h
		}
		m.nextHazardSpawn = now.Add(time.Duration(m.uniform(m.hazardSchedule.RespawnDelayMin, m.hazardSchedule.RespawnDelayMax) * float64(time.Second)))
	}

	if !now.Before(m.nextTrapSpawn) && len(m.activeTraps) < m.trapSchedule.MaxConcurrent {
		if pos, ok := m.sampleFreePosition(); ok {
			effect, value := m.randomTrapEffect()
			tr := &SpawnedTrap{
				ID:          m.newID("dyntrap"),
				Position:    pos,
				Effect:      effect,
				EffectValue: value,
				Radius:      m.uniform(35, 50),
				Cooldown:    m.uniform(8, 15),
				DespawnTime: now.Add(time.Duration(m.uniform(m.trapSchedule.LifetimeMin, m.trapSchedule.LifetimeMax) * float64(time.Second))),
			}
			m.activeTraps[tr.ID] = tr
			result.NewTrap = tr
		}
		m.nextTrapSpawn = now.Add(time.Duration(m.uniform(m.trapSchedule.RespawnDelayMin, m.trapSchedule.RespawnDelayMax) * float64(time.Second)))
	}

	return result
}
