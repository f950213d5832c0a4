package geometry

import (
	"math"
	"testing"
)

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Rect
		expected bool
	}{
		{"identical", Rect{0, 0, 10, 10}, Rect{0, 0, 10, 10}, true},
		{"disjoint", Rect{0, 0, 10, 10}, Rect{20, 20, 10, 10}, false},
		{"touching edges", Rect{0, 0, 10, 10}, Rect{10, 0, 10, 10}, false},
		{"partial overlap", Rect{0, 0, 10, 10}, Rect{5, 5, 10, 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b); got != tt.expected {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestPointInRect(t *testing.T) {
	r := Rect{X: 100, Y: 100, W: 50, H: 50}

	if !PointInRect(Vec2{X: 125, Y: 125}, r) {
		t.Error("center point should be inside rect")
	}
	if PointInRect(Vec2{X: 0, Y: 0}, r) {
		t.Error("origin should be outside rect")
	}
	if !PointInRect(Vec2{X: 100, Y: 100}, r) {
		t.Error("top-left corner should count as inside")
	}
}

func TestPixelGridRoundTrip(t *testing.T) {
	for c := 0; c < GridCols; c++ {
		for r := 0; r < GridRows; r++ {
			rect := GridToPixelRect(c, r)
			for _, dx := range []float64{0, 1, 39, 79.9} {
				for _, dy := range []float64{0, 1, 39, 79.9} {
					gotC, gotR := PixelToGrid(rect.X+dx, rect.Y+dy)
					if gotC != c || gotR != r {
						t.Fatalf("PixelToGrid(%v,%v) = (%d,%d), want (%d,%d)", rect.X+dx, rect.Y+dy, gotC, gotR, c, r)
					}
				}
			}
		}
	}
}

func TestCircleIntersectsRect(t *testing.T) {
	r := Rect{X: 100, Y: 100, W: 80, H: 80}

	if !CircleIntersectsRect(Vec2{X: 140, Y: 140}, 10, r) {
		t.Error("circle centered inside rect should intersect")
	}
	if CircleIntersectsRect(Vec2{X: 400, Y: 400}, 10, r) {
		t.Error("distant circle should not intersect")
	}
	// Circle just outside the edge but within radius of the boundary.
	if !CircleIntersectsRect(Vec2{X: 95, Y: 140}, 10, r) {
		t.Error("circle overlapping the left edge should intersect")
	}
}

func TestPenetrationPushesOut(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 80, H: 80}
	center := Vec2{X: 40, Y: 40}
	radius := 10.0

	mtv, ok := Penetration(center, radius, r)
	if !ok {
		t.Fatal("expected overlap to be detected")
	}

	resolved := center.Add(mtv)
	if CircleIntersectsRect(resolved, radius, r) {
		t.Errorf("resolved position %v still intersects rect %v", resolved, r)
	}
}

func TestPenetrationNoOverlap(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 80, H: 80}
	_, ok := Penetration(Vec2{X: 1000, Y: 1000}, 10, r)
	if ok {
		t.Error("expected no overlap for distant circle")
	}
}

func TestDistance(t *testing.T) {
	d := Distance(Vec2{X: 0, Y: 0}, Vec2{X: 3, Y: 4})
	if math.Abs(d-5) > 1e-9 {
		t.Errorf("Distance = %v, want 5", d)
	}
}
