package tilemap

import (
	"testing"

	"github.com/arenacore/arena/internal/geometry"
	"github.com/arenacore/arena/internal/mapschema"
)

func floorGrid() [][]mapschema.TileKind {
	tiles := make([][]mapschema.TileKind, geometry.GridRows)
	for r := range tiles {
		tiles[r] = make([]mapschema.TileKind, geometry.GridCols)
		for c := range tiles[r] {
			tiles[r][c] = mapschema.TileFloor
		}
	}
	return tiles
}

func TestGetTileRoundTripsThroughPixel(t *testing.T) {
	tiles := floorGrid()
	tiles[3][5] = mapschema.TileWall
	tm := NewTileMap(tiles)

	for c := 0; c < geometry.GridCols; c++ {
		for r := 0; r < geometry.GridRows; r++ {
			center := geometry.GridToPixelCenter(c, r)
			kind, ok := tm.GetTileAtPixel(center.X, center.Y)
			if !ok {
				t.Fatalf("GetTileAtPixel(%v) not ok for grid cell (%d,%d)", center, c, r)
			}
			want, _ := tm.GetTile(c, r)
			if kind != want {
				t.Errorf("GetTileAtPixel(%v) = %v, want %v", center, kind, want)
			}
		}
	}
}

func TestGetTileOutOfBounds(t *testing.T) {
	tm := NewTileMap(floorGrid())
	if _, ok := tm.GetTile(-1, 0); ok {
		t.Error("expected out-of-bounds column to fail")
	}
	if _, ok := tm.GetTile(0, geometry.GridRows); ok {
		t.Error("expected out-of-bounds row to fail")
	}
	if _, ok := tm.GetTileAtPixel(-10, -10); ok {
		t.Error("expected negative pixel position to fail")
	}
}

func TestWalkable(t *testing.T) {
	tiles := floorGrid()
	tiles[0][0] = mapschema.TileWall
	tiles[0][1] = mapschema.TileHalfWall
	tiles[0][2] = mapschema.TileHazardDamage
	tm := NewTileMap(tiles)

	if tm.Walkable(0, 0) {
		t.Error("wall tile should not be walkable")
	}
	if tm.Walkable(1, 0) {
		t.Error("half-wall tile should not be walkable")
	}
	if !tm.Walkable(2, 0) {
		t.Error("hazard tile should be walkable")
	}
	if tm.Walkable(-1, 0) {
		t.Error("out-of-bounds coordinate should not be walkable")
	}
}

func TestTilesByKind(t *testing.T) {
	tiles := floorGrid()
	tiles[2][3] = mapschema.TileWall
	tiles[4][5] = mapschema.TileWall
	tm := NewTileMap(tiles)

	walls := tm.TilesByKind(mapschema.TileWall)
	if len(walls) != 2 {
		t.Fatalf("expected 2 wall tiles, got %d", len(walls))
	}

	seen := map[[2]int]bool{}
	for _, coord := range walls {
		seen[coord] = true
	}
	if !seen[[2]int{3, 2}] || !seen[[2]int{5, 4}] {
		t.Errorf("TilesByKind missing expected coordinates, got %v", walls)
	}

	floors := tm.TilesByKind(mapschema.TileFloor)
	if len(floors) != geometry.GridRows*geometry.GridCols-2 {
		t.Errorf("expected %d floor tiles, got %d", geometry.GridRows*geometry.GridCols-2, len(floors))
	}
}

func TestSetTileInvalidatesCache(t *testing.T) {
	tm := NewTileMap(floorGrid())

	_ = tm.TilesByKind(mapschema.TileWall) // populate cache with zero walls

	if err := tm.SetTile(3, 3, mapschema.TileWall); err != nil {
		t.Fatalf("SetTile failed: %v", err)
	}

	walls := tm.TilesByKind(mapschema.TileWall)
	if len(walls) != 1 {
		t.Fatalf("expected cache to reflect new wall tile, got %d walls", len(walls))
	}
	if walls[0] != [2]int{3, 3} {
		t.Errorf("expected wall at (3,3), got %v", walls[0])
	}
}

func TestSetTileOutOfBounds(t *testing.T) {
	tm := NewTileMap(floorGrid())
	if err := tm.SetTile(100, 100, mapschema.TileWall); err == nil {
		t.Error("expected error for out-of-bounds SetTile")
	}
}
