// Package tilemap wraps the 16x9 informational tile grid loaded from a
// MapConfig. It answers tile-kind queries by grid coordinate or pixel
// position; it does not own entity lists (barriers, hazards, traps,
// teleporters, jump pads) — those live in their own manager packages and
// are cross-referenced by position only.
package tilemap

import (
	"fmt"

	"github.com/arenacore/arena/internal/geometry"
	"github.com/arenacore/arena/internal/mapschema"
)

// TileMap is the immutable-after-load (outside of editor/test use) tile
// grid for one arena map.
type TileMap struct {
	tiles [geometry.GridRows][geometry.GridCols]mapschema.TileKind

	// byKind caches the coordinates of every tile sharing a TileKind, built
	// lazily and invalidated by SetTile. Editors and tests are the only
	// expected callers of SetTile, so the grid is read far more often than
	// it is written.
	byKind map[mapschema.TileKind][][2]int
}

// NewTileMap builds a TileMap from an already-validated tile grid. The
// rows are copied into a fixed-size internal grid, so later mutation of
// the source slices does not leak into the map.
func NewTileMap(tiles [][]mapschema.TileKind) *TileMap {
	m := &TileMap{}
	for r := 0; r < geometry.GridRows && r < len(tiles); r++ {
		for c := 0; c < geometry.GridCols && c < len(tiles[r]); c++ {
			m.tiles[r][c] = tiles[r][c]
		}
	}
	return m
}

// GetTile returns the tile kind at the given column/row, or false if the
// coordinate is outside the grid.
func (m *TileMap) GetTile(col, row int) (mapschema.TileKind, bool) {
	if !geometry.InGridBounds(col, row) {
		return "", false
	}
	return m.tiles[row][col], true
}

// GetTileAtPixel returns the tile kind containing the given pixel
// position, or false if the position is outside the playfield.
func (m *TileMap) GetTileAtPixel(x, y float64) (mapschema.TileKind, bool) {
	col, row := geometry.PixelToGrid(x, y)
	return m.GetTile(col, row)
}

// SetTile overwrites the tile kind at the given coordinate and invalidates
// the kind cache. Rare: intended for editors and tests, not simulation
// code.
func (m *TileMap) SetTile(col, row int, kind mapschema.TileKind) error {
	if !geometry.InGridBounds(col, row) {
		return fmt.Errorf("tilemap: coordinate (%d,%d) out of bounds", col, row)
	}
	m.tiles[row][col] = kind
	m.byKind = nil
	return nil
}

// TilesByKind returns every (col, row) coordinate whose tile matches kind.
func (m *TileMap) TilesByKind(kind mapschema.TileKind) [][2]int {
	if m.byKind == nil {
		m.buildKindCache()
	}
	return m.byKind[kind]
}

func (m *TileMap) buildKindCache() {
	cache := make(map[mapschema.TileKind][][2]int)
	for row := 0; row < geometry.GridRows; row++ {
		for col := 0; col < geometry.GridCols; col++ {
			kind := m.tiles[row][col]
			cache[kind] = append(cache[kind], [2]int{col, row})
		}
	}
	m.byKind = cache
}

// Walkable reports whether a player may stand on the given tile. Wall and
// half-wall tiles are informational markers for full/half barrier
// placement and are never walkable; every other kind is.
func (m *TileMap) Walkable(col, row int) bool {
	kind, ok := m.GetTile(col, row)
	if !ok {
		return false
	}
	return kind != mapschema.TileWall && kind != mapschema.TileHalfWall
}

// GridToPixelCenter returns the pixel-space center of the given tile.
func (m *TileMap) GridToPixelCenter(col, row int) geometry.Vec2 {
	return geometry.GridToPixelCenter(col, row)
}
