package transport

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/arenacore/arena/internal/geometry"
	"github.com/arenacore/arena/internal/mapschema"
)

func fixedClock(start time.Time) (*time.Time, func() time.Time) {
	cur := start
	return &cur, func() time.Time { return cur }
}

func TestCheckTeleportPairedRoundTrip(t *testing.T) {
	m := NewManager()
	m.LoadFromConfig([]mapschema.TeleporterConfig{
		{ID: "tpA", PairID: "pair1", Position: geometry.Vec2{X: 100, Y: 100}, Radius: 30},
		{ID: "tpB", PairID: "pair1", Position: geometry.Vec2{X: 900, Y: 500}, Radius: 30},
	}, nil)

	var gotFrom, gotTo geometry.Vec2
	m.SetCallbacks(func(playerID string, from, to geometry.Vec2) {
		gotFrom, gotTo = from, to
	}, nil)

	dest, ok := m.CheckTeleport("p1", geometry.Vec2{X: 110, Y: 100})
	if !ok {
		t.Fatal("expected teleport to succeed")
	}
	if dest != (geometry.Vec2{X: 900, Y: 500}) {
		t.Errorf("expected destination at paired teleporter, got %v", dest)
	}
	if gotTo != dest || gotFrom != (geometry.Vec2{X: 110, Y: 100}) {
		t.Errorf("expected PlayerTeleported callback with matching from/to, got from=%v to=%v", gotFrom, gotTo)
	}
}

func TestCheckTeleportSetsCooldownOnBothEndpoints(t *testing.T) {
	m := NewManager()
	start := time.Unix(0, 0)
	cur, clock := fixedClock(start)
	m.SetClock(clock)
	m.LoadFromConfig([]mapschema.TeleporterConfig{
		{ID: "tpA", PairID: "pair1", Position: geometry.Vec2{X: 100, Y: 100}, Radius: 30},
		{ID: "tpB", PairID: "pair1", Position: geometry.Vec2{X: 900, Y: 500}, Radius: 30},
	}, nil)

	m.CheckTeleport("p1", geometry.Vec2{X: 100, Y: 100})

	// Immediately retrying from the destination should be blocked by cooldown.
	_, ok := m.CheckTeleport("p1", geometry.Vec2{X: 900, Y: 500})
	if ok {
		t.Error("expected destination teleporter to be on cooldown for the same player")
	}

	*cur = start.Add(2 * time.Second)
	_, ok = m.CheckTeleport("p1", geometry.Vec2{X: 900, Y: 500})
	if !ok {
		t.Error("expected teleport to succeed once cooldown elapses")
	}
}

func TestCheckTeleportRandomExit(t *testing.T) {
	m := NewManager()
	m.SetRand(rand.New(rand.NewSource(42)))
	exits := []geometry.Vec2{{X: 10, Y: 10}, {X: 500, Y: 500}}
	m.LoadFromConfig([]mapschema.TeleporterConfig{
		{ID: "tp1", Position: geometry.Vec2{X: 100, Y: 100}, Radius: 30, RandomExits: exits},
	}, nil)

	dest, ok := m.CheckTeleport("p1", geometry.Vec2{X: 100, Y: 100})
	if !ok {
		t.Fatal("expected teleport to succeed")
	}
	if dest != exits[0] && dest != exits[1] {
		t.Errorf("expected destination to be one of the random exits, got %v", dest)
	}
}

func TestCheckTeleportOutsideRadius(t *testing.T) {
	m := NewManager()
	m.LoadFromConfig([]mapschema.TeleporterConfig{
		{ID: "tpA", PairID: "pair1", Position: geometry.Vec2{X: 100, Y: 100}, Radius: 30},
		{ID: "tpB", PairID: "pair1", Position: geometry.Vec2{X: 900, Y: 500}, Radius: 30},
	}, nil)

	_, ok := m.CheckTeleport("p1", geometry.Vec2{X: 1000, Y: 1000})
	if ok {
		t.Error("expected no teleport far from any pad")
	}
}

func TestCheckJumpPadMagnitudeAndCooldown(t *testing.T) {
	m := NewManager()
	start := time.Unix(0, 0)
	cur, clock := fixedClock(start)
	m.SetClock(clock)
	m.LoadFromConfig(nil, []mapschema.JumpPadConfig{
		{ID: "jp1", Position: geometry.Vec2{X: 200, Y: 200}, Radius: 30, Force: 500, Direction: mapschema.DirNE},
	})

	var gotVelocity geometry.Vec2
	m.SetCallbacks(nil, func(playerID string, velocity geometry.Vec2) { gotVelocity = velocity })

	velocity, ok := m.CheckJumpPad("p1", geometry.Vec2{X: 200, Y: 200})
	if !ok {
		t.Fatal("expected jump pad to trigger")
	}
	mag := velocity.Length()
	if math.Abs(mag-500) > 1e-6 {
		t.Errorf("expected velocity magnitude 500, got %v", mag)
	}
	if gotVelocity != velocity {
		t.Errorf("expected PlayerLaunched callback velocity to match return value")
	}

	_, ok = m.CheckJumpPad("p1", geometry.Vec2{X: 200, Y: 200})
	if ok {
		t.Error("expected jump pad to be on cooldown immediately after use")
	}

	*cur = start.Add(1100 * time.Millisecond)
	_, ok = m.CheckJumpPad("p1", geometry.Vec2{X: 200, Y: 200})
	if !ok {
		t.Error("expected jump pad to fire again once cooldown elapses")
	}
}

func TestJumpVectorAxialMagnitudes(t *testing.T) {
	for _, dir := range []mapschema.Direction{mapschema.DirN, mapschema.DirS, mapschema.DirE, mapschema.DirW, mapschema.DirNE, mapschema.DirNW, mapschema.DirSE, mapschema.DirSW} {
		v := jumpVector(dir, 300)
		mag := v.Length()
		if math.Abs(mag-300) > 1e-6 {
			t.Errorf("direction %v: expected magnitude 300, got %v", dir, mag)
		}
	}
}

func TestCheckJumpPadOutsideRadius(t *testing.T) {
	m := NewManager()
	m.LoadFromConfig(nil, []mapschema.JumpPadConfig{
		{ID: "jp1", Position: geometry.Vec2{X: 200, Y: 200}, Radius: 30, Force: 500, Direction: mapschema.DirN},
	})
	_, ok := m.CheckJumpPad("p1", geometry.Vec2{X: 900, Y: 900})
	if ok {
		t.Error("expected no jump pad trigger far from any pad")
	}
}
