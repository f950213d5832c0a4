package dynspawn

import "github.com/arenacore/arena/internal/geometry"

// spawnZones are the five fixed rectangles dynamic spawning samples
// positions from: the four quadrants and a vertical mid-band, each inset
// from the arena's corners where transport pads typically sit. The fixed
// set (rather than the full playfield) is what gives dynamic spawns their
// symmetric-chaos character instead of uniform noise.
var spawnZones = [5]geometry.Rect{
	{X: 40, Y: 40, W: 520, H: 280},                                                // top-left quadrant
	{X: geometry.WorldWidth - 560, Y: 40, W: 520, H: 280},                         // top-right quadrant
	{X: 40, Y: geometry.WorldHeight - 320, W: 520, H: 280},                        // bottom-left quadrant
	{X: geometry.WorldWidth - 560, Y: geometry.WorldHeight - 320, W: 520, H: 280}, // bottom-right quadrant
	{X: geometry.WorldWidth/2 - 80, Y: 40, W: 160, H: geometry.WorldHeight - 80},  // vertical mid-band
}
