package dynspawn

import (
	"math/rand"
	"testing"
	"time"

	"github.com/arenacore/arena/internal/geometry"
)

func testSchedule() ScheduleConfig {
	return ScheduleConfig{
		InitialDelayMin: 0, InitialDelayMax: 0,
		LifetimeMin: 10, LifetimeMax: 20,
		RespawnDelayMin: 5, RespawnDelayMax: 10,
		MaxConcurrent: 2,
	}
}

func TestInitializeSeedsImmediateSpawnDeadline(t *testing.T) {
	m := NewManager(rand.New(rand.NewSource(1)))
	start := time.Unix(0, 0)
	m.Initialize(start, nil, testSchedule(), testSchedule())

	result := m.Tick(start)
	if result.NewHazard == nil {
		t.Fatal("expected a hazard to spawn immediately with zero initial delay")
	}
	if result.NewTrap == nil {
		t.Fatal("expected a trap to spawn immediately with zero initial delay")
	}
}

func TestSpawnedPositionIsInsideASpawnZone(t *testing.T) {
	m := NewManager(rand.New(rand.NewSource(7)))
	start := time.Unix(0, 0)
	m.Initialize(start, nil, testSchedule(), testSchedule())

	result := m.Tick(start)
	if result.NewHazard == nil {
		t.Fatal("expected hazard spawn")
	}

	inAnyZone := false
	for _, z := range spawnZones {
		if geometry.PointInRect(result.NewHazard.Position, z) {
			inAnyZone = true
			break
		}
	}
	if !inAnyZone {
		t.Errorf("spawned hazard position %v is not inside any spawn zone", result.NewHazard.Position)
	}
}

func TestRespectsMaxConcurrent(t *testing.T) {
	schedule := testSchedule()
	schedule.MaxConcurrent = 1
	schedule.RespawnDelayMin = 0
	schedule.RespawnDelayMax = 0

	m := NewManager(rand.New(rand.NewSource(3)))
	start := time.Unix(0, 0)
	m.Initialize(start, nil, schedule, schedule)

	first := m.Tick(start)
	if first.NewHazard == nil {
		t.Fatal("expected first hazard spawn")
	}

	second := m.Tick(start)
	if second.NewHazard != nil {
		t.Error("expected no new hazard spawn once at max concurrent")
	}
}

func TestExpiresHazardsPastDespawnTime(t *testing.T) {
	schedule := testSchedule()
	schedule.LifetimeMin = 5
	schedule.LifetimeMax = 5

	m := NewManager(rand.New(rand.NewSource(5)))
	start := time.Unix(0, 0)
	m.Initialize(start, nil, schedule, schedule)

	spawned := m.Tick(start)
	if spawned.NewHazard == nil {
		t.Fatal("expected hazard spawn")
	}
	hazardID := spawned.NewHazard.ID

	later := start.Add(6 * time.Second)
	result := m.Tick(later)

	found := false
	for _, id := range result.ExpiredHazardIDs {
		if id == hazardID {
			found = true
		}
	}
	if !found {
		t.Errorf("expected hazard %s to expire, got expired list %v", hazardID, result.ExpiredHazardIDs)
	}
}

func TestExclusionZoneBlocksSpawn(t *testing.T) {
	schedule := testSchedule()
	m := NewManager(rand.New(rand.NewSource(11)))
	start := time.Unix(0, 0)

	// Exclude every spawn zone entirely by covering the whole playfield.
	exclusions := []ExclusionZone{
		{Position: geometry.Vec2{X: geometry.WorldWidth / 2, Y: geometry.WorldHeight / 2}, Radius: 2000},
	}
	m.Initialize(start, exclusions, schedule, schedule)

	result := m.Tick(start)
	if result.NewHazard != nil {
		t.Error("expected no hazard spawn when every position is excluded")
	}
}

func TestMinimumSeparationEnforced(t *testing.T) {
	schedule := testSchedule()
	schedule.MaxConcurrent = 10
	schedule.RespawnDelayMin = 0
	schedule.RespawnDelayMax = 0

	m := NewManager(rand.New(rand.NewSource(13)))
	start := time.Unix(0, 0)
	m.Initialize(start, nil, schedule, schedule)

	var positions []geometry.Vec2
	for i := 0; i < 5; i++ {
		result := m.Tick(start)
		if result.NewHazard != nil {
			positions = append(positions, result.NewHazard.Position)
		}
	}

	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			if geometry.Distance(positions[i], positions[j]) < minSeparation {
				t.Errorf("hazards %d and %d are closer than minimum separation: %v", i, j, geometry.Distance(positions[i], positions[j]))
			}
		}
	}
}
