package geometry

import (
	"testing"

	"pgregory.net/rapid"
)

// TestPenetrationResolvesOverlap checks, across randomly generated
// circle/rect pairs, that applying the computed MTV always leaves the
// circle non-overlapping (or reports no overlap to begin with). This is
// the collision invariant internal/barrier's ResolveCollision loop
// depends on converging.
func TestPenetrationResolvesOverlap(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		r := Rect{
			X: rapid.Float64Range(-200, 200).Draw(rt, "rectX"),
			Y: rapid.Float64Range(-200, 200).Draw(rt, "rectY"),
			W: rapid.Float64Range(1, 200).Draw(rt, "rectW"),
			H: rapid.Float64Range(1, 200).Draw(rt, "rectH"),
		}
		center := Vec2{
			X: rapid.Float64Range(-400, 400).Draw(rt, "centerX"),
			Y: rapid.Float64Range(-400, 400).Draw(rt, "centerY"),
		}
		radius := rapid.Float64Range(1, 100).Draw(rt, "radius")

		mtv, ok := Penetration(center, radius, r)
		if !ok {
			return
		}

		resolved := center.Add(mtv)
		if CircleIntersectsRect(resolved, radius, r) {
			rt.Fatalf("resolved position %v still intersects rect %v (center=%v radius=%v)", resolved, r, center, radius)
		}
	})
}

// TestPixelGridConversionStaysInBounds checks that any in-world pixel
// coordinate maps to a grid cell inside the fixed 16x9 grid.
func TestPixelGridConversionStaysInBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.Float64Range(0, WorldWidth-0.001).Draw(rt, "x")
		y := rapid.Float64Range(0, WorldHeight-0.001).Draw(rt, "y")

		col, row := PixelToGrid(x, y)
		if !InGridBounds(col, row) {
			rt.Fatalf("PixelToGrid(%v, %v) = (%d, %d), out of bounds", x, y, col, row)
		}
	})
}
