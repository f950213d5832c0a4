package barrier

import (
	"testing"

	"github.com/arenacore/arena/internal/geometry"
	"github.com/arenacore/arena/internal/mapschema"
)

func health(v int) *int                              { return &v }
func dir(d mapschema.Direction) *mapschema.Direction { return &d }

func TestCheckCollisionFullBarrier(t *testing.T) {
	m := NewManager()
	m.LoadFromConfig([]mapschema.BarrierConfig{
		{ID: "b1", Kind: mapschema.BarrierFull, Position: geometry.Vec2{X: 100, Y: 100}, Size: geometry.Vec2{X: 80, Y: 80}},
	})

	candidates := m.CandidatesNear(geometry.Vec2{X: 140, Y: 140}, 20)
	if !m.CheckCollision(geometry.Vec2{X: 140, Y: 140}, 10, candidates) {
		t.Error("expected collision inside full barrier")
	}
	if m.CheckCollision(geometry.Vec2{X: 1000, Y: 1000}, 10, candidates) {
		t.Error("expected no collision far from barrier")
	}
}

func TestCheckCollisionHalfBarrierActsAsFull(t *testing.T) {
	m := NewManager()
	m.LoadFromConfig([]mapschema.BarrierConfig{
		{ID: "b1", Kind: mapschema.BarrierHalf, Position: geometry.Vec2{X: 100, Y: 100}, Size: geometry.Vec2{X: 80, Y: 80}},
	})
	candidates := m.CandidatesNear(geometry.Vec2{X: 140, Y: 140}, 20)
	if !m.CheckCollision(geometry.Vec2{X: 140, Y: 140}, 10, candidates) {
		t.Error("expected half barrier to collide as a full collider")
	}
}

func TestCheckCollisionOneWayAllowsEntryFromOpenSide(t *testing.T) {
	m := NewManager()
	m.LoadFromConfig([]mapschema.BarrierConfig{
		{ID: "b1", Kind: mapschema.BarrierOneWay, Position: geometry.Vec2{X: 100, Y: 100}, Size: geometry.Vec2{X: 80, Y: 80}, Direction: dir(mapschema.DirN)},
	})

	// direction=N allows entry from the north: a circle above the barrier
	// (smaller Y) is on the open side and should not collide.
	above := geometry.Vec2{X: 140, Y: 95}
	candidatesAbove := m.CandidatesNear(above, 20)
	if m.CheckCollision(above, 10, candidatesAbove) {
		t.Error("expected no collision approaching from the open (north) side")
	}

	// Approaching from the south (below the barrier) should be blocked.
	below := geometry.Vec2{X: 140, Y: 185}
	candidatesBelow := m.CandidatesNear(below, 20)
	if !m.CheckCollision(below, 10, candidatesBelow) {
		t.Error("expected collision approaching from the blocked (south) side")
	}
}

func TestResolveCollisionPushesOut(t *testing.T) {
	m := NewManager()
	m.LoadFromConfig([]mapschema.BarrierConfig{
		{ID: "b1", Kind: mapschema.BarrierFull, Position: geometry.Vec2{X: 0, Y: 0}, Size: geometry.Vec2{X: 80, Y: 80}},
	})

	pos := geometry.Vec2{X: 40, Y: 40}
	candidates := m.CandidatesNear(pos, 50)
	resolved := m.ResolveCollision(pos, 10, candidates)

	if m.CheckCollision(resolved, 10, candidates) {
		t.Errorf("resolved position %v still collides", resolved)
	}
}

func TestApplyDamageTransitionsDamageStates(t *testing.T) {
	m := NewManager()
	m.LoadFromConfig([]mapschema.BarrierConfig{
		{ID: "b1", Kind: mapschema.BarrierDestructible, Position: geometry.Vec2{X: 0, Y: 0}, Size: geometry.Vec2{X: 80, Y: 80}, Health: health(100)},
	})

	b, _ := m.Get("b1")
	if b.DamageState != StateIntact {
		t.Fatalf("expected intact at full health, got %v", b.DamageState)
	}

	m.ApplyDamage("b1", 40) // 60/100 = cracked boundary just under 67%
	if b.DamageState != StateCracked {
		t.Errorf("expected cracked at 60%%, got %v", b.DamageState)
	}

	m.ApplyDamage("b1", 40) // 20/100 = damaged
	if b.DamageState != StateDamaged {
		t.Errorf("expected damaged at 20%%, got %v", b.DamageState)
	}

	var destroyedID string
	m.SetCallbacks(func(id string, pos geometry.Vec2) {
		destroyedID = id
	})
	m.ApplyDamage("b1", 100) // clamps to 0
	if b.DamageState != StateDestroyed {
		t.Errorf("expected destroyed at 0 health, got %v", b.DamageState)
	}
	if b.Active {
		t.Error("expected barrier inactive after destruction")
	}
	if destroyedID != "b1" {
		t.Errorf("expected onDestroyed callback fired for b1, got %q", destroyedID)
	}
}

func TestApplyDamageNoOpOnUnknownOrDestroyed(t *testing.T) {
	m := NewManager()
	m.LoadFromConfig([]mapschema.BarrierConfig{
		{ID: "b1", Kind: mapschema.BarrierDestructible, Position: geometry.Vec2{X: 0, Y: 0}, Size: geometry.Vec2{X: 80, Y: 80}, Health: health(50)},
	})

	callCount := 0
	m.SetCallbacks(func(id string, pos geometry.Vec2) { callCount++ })

	m.ApplyDamage("unknown", 10) // no-op, no panic
	m.ApplyDamage("b1", 50)      // destroys
	if callCount != 1 {
		t.Fatalf("expected exactly 1 destroyed callback, got %d", callCount)
	}

	m.ApplyDamage("b1", 10) // already destroyed, no-op
	if callCount != 1 {
		t.Errorf("expected no additional callback after barrier already destroyed, got %d calls", callCount)
	}
}

func TestCollisionSkipsDestroyedBarrier(t *testing.T) {
	m := NewManager()
	m.LoadFromConfig([]mapschema.BarrierConfig{
		{ID: "b1", Kind: mapschema.BarrierDestructible, Position: geometry.Vec2{X: 100, Y: 100}, Size: geometry.Vec2{X: 80, Y: 80}, Health: health(50)},
	})
	m.ApplyDamage("b1", 50)

	candidates := m.CandidatesNear(geometry.Vec2{X: 140, Y: 140}, 20)
	if m.CheckCollision(geometry.Vec2{X: 140, Y: 140}, 10, candidates) {
		t.Error("expected destroyed barrier not to collide")
	}
}
