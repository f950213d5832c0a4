// Package spatial provides a cache-efficient uniform grid used as the
// broad-phase candidate filter for barrier collision queries. Cell size is
// normally geometry.TileSize (80 units), matching the tile grid. A
// footprint whose far edge lies exactly on a cell boundary is also placed
// in the next cell, so a tile-aligned 80x80 barrier occupies a 2x2 block
// of cells; Query results are candidates, not exact overlaps.
//
// Unlike a point index, entities here are rectangles (barrier footprints)
// and may occupy multiple cells. Callers identify entities by string id so
// the index can be shared directly with the barrier manager's own id space
// instead of requiring a parallel index translation.
package spatial

import (
	"math"

	"github.com/arenacore/arena/internal/geometry"
)

// Grid is a uniform spatial index over the fixed-size arena playfield.
type Grid struct {
	cellSize    float64
	invCellSize float64
	cols, rows  int
	cells       map[int][]string // cell index -> entity ids present in that cell
	entityCells map[string][]int // entity id -> cell indices it occupies
	scratch     []string
}

// NewGrid builds a grid covering the full arena playfield at the given
// cell size. Cell size should normally be geometry.TileSize.
func NewGrid(cellSize float64) *Grid {
	cols := int(math.Ceil(geometry.WorldWidth / cellSize))
	rows := int(math.Ceil(geometry.WorldHeight / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &Grid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       make(map[int][]string),
		entityCells: make(map[string][]int),
		scratch:     make([]string, 0, 64),
	}
}

func (g *Grid) clampCol(col int) int {
	if col < 0 {
		return 0
	}
	if col >= g.cols {
		return g.cols - 1
	}
	return col
}

func (g *Grid) clampRow(row int) int {
	if row < 0 {
		return 0
	}
	if row >= g.rows {
		return g.rows - 1
	}
	return row
}

func (g *Grid) cellIndex(col, row int) int {
	return row*g.cols + col
}

func (g *Grid) cellRange(r geometry.Rect) (minCol, minRow, maxCol, maxRow int) {
	minCol = g.clampCol(int(r.X * g.invCellSize))
	minRow = g.clampRow(int(r.Y * g.invCellSize))
	maxCol = g.clampCol(int((r.X + r.W) * g.invCellSize))
	maxRow = g.clampRow(int((r.Y + r.H) * g.invCellSize))
	return
}

// Insert places an entity's rectangular footprint into every cell it
// overlaps. A previous insertion under the same id is removed first, so
// Insert can be called again to move an entity.
func (g *Grid) Insert(id string, bounds geometry.Rect) {
	g.Remove(id)

	minCol, minRow, maxCol, maxRow := g.cellRange(bounds)
	indices := make([]int, 0, (maxCol-minCol+1)*(maxRow-minRow+1))
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			idx := g.cellIndex(col, row)
			g.cells[idx] = append(g.cells[idx], id)
			indices = append(indices, idx)
		}
	}
	g.entityCells[id] = indices
}

// Remove drops an entity from every cell it currently occupies. A no-op if
// the id is unknown.
func (g *Grid) Remove(id string) {
	indices, ok := g.entityCells[id]
	if !ok {
		return
	}
	for _, idx := range indices {
		cell := g.cells[idx]
		for i, existing := range cell {
			if existing == id {
				cell[i] = cell[len(cell)-1]
				cell = cell[:len(cell)-1]
				break
			}
		}
		g.cells[idx] = cell
	}
	delete(g.entityCells, id)
}

// Clear removes every entity from the grid without shrinking map capacity.
func (g *Grid) Clear() {
	for k := range g.cells {
		delete(g.cells, k)
	}
	for k := range g.entityCells {
		delete(g.entityCells, k)
	}
}

// Query returns candidate entity ids whose cell overlaps a circle centered
// at (cx, cy) with the given radius. The result is a broad-phase filter: it
// may include entities that do not actually intersect the circle, and the
// caller must narrow-phase check each candidate. The returned slice is
// reused across calls and must be copied by the caller to persist it.
func (g *Grid) Query(cx, cy, radius float64) []string {
	g.scratch = g.scratch[:0]

	bounds := geometry.Rect{X: cx - radius, Y: cy - radius, W: radius * 2, H: radius * 2}
	minCol, minRow, maxCol, maxRow := g.cellRange(bounds)

	seen := make(map[string]bool, 8)
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			idx := g.cellIndex(col, row)
			for _, id := range g.cells[idx] {
				if seen[id] {
					continue
				}
				seen[id] = true
				g.scratch = append(g.scratch, id)
			}
		}
	}
	return g.scratch
}

// Dimensions returns the grid's column/row count and cell size.
func (g *Grid) Dimensions() (cols, rows int, cellSize float64) {
	return g.cols, g.rows, g.cellSize
}
