package mapschema

import (
	"fmt"
	"regexp"

	"github.com/arenacore/arena/internal/geometry"
)

var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// ValidationResult is the outcome of validating a MapConfig. It never
// carries an error value — Errors is always the complete list of reasons
// validation failed, empty when Valid is true.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Validate checks a MapConfig against every structural and semantic
// invariant in the map model. It does not mutate cfg and never panics.
func Validate(cfg *MapConfig) ValidationResult {
	result := ValidationResult{Valid: true}

	validateMetadata(cfg, &result)
	validateTileGrid(cfg, &result)
	validateSpawnPoints(cfg, &result)
	validateBarriers(cfg, &result)
	validateHazards(cfg, &result)
	validateTraps(cfg, &result)
	validateTeleporters(cfg, &result)

	return result
}

func validateMetadata(cfg *MapConfig, result *ValidationResult) {
	nameLen := len(cfg.Metadata.Name)
	if nameLen < 3 || nameLen > 50 {
		result.fail("metadata.name must be 3..50 characters, got %d", nameLen)
	}
	if cfg.Metadata.Author == "" {
		result.fail("metadata.author must not be empty")
	}
	if !versionPattern.MatchString(cfg.Metadata.Version) {
		result.fail("metadata.version %q does not match d+.d+.d+", cfg.Metadata.Version)
	}
	if len(cfg.Metadata.Description) > 200 {
		result.fail("metadata.description must be <=200 characters, got %d", len(cfg.Metadata.Description))
	}
}

var knownTileKinds = map[TileKind]bool{
	TileFloor: true, TileWall: true, TileHalfWall: true,
	TileHazardDamage: true, TileHazardSlow: true, TileHazardEMP: true,
	TileTrapPressure: true, TileTrapTimed: true,
	TileTeleporter: true, TileJumpPad: true,
}

func validateTileGrid(cfg *MapConfig, result *ValidationResult) {
	if len(cfg.Tiles) != geometry.GridRows {
		result.fail("tile grid must have exactly %d rows, got %d", geometry.GridRows, len(cfg.Tiles))
		return
	}
	for r, row := range cfg.Tiles {
		if len(row) != geometry.GridCols {
			result.fail("tile grid row %d must have exactly %d columns, got %d", r, geometry.GridCols, len(row))
			continue
		}
		for c, kind := range row {
			if !knownTileKinds[kind] {
				result.fail("tile (%d,%d) has unknown kind %q", c, r, kind)
			}
		}
	}
}

func validateSpawnPoints(cfg *MapConfig, result *ValidationResult) {
	seen := map[string]SpawnPointConfig{}
	for _, sp := range cfg.SpawnPoints {
		seen[sp.ID] = sp
	}

	for _, id := range []string{"player1", "player2"} {
		sp, ok := seen[id]
		if !ok {
			result.fail("spawn point %q is missing", id)
			continue
		}
		col, row := geometry.PixelToGrid(sp.Position.X, sp.Position.Y)
		if !geometry.InGridBounds(col, row) {
			result.fail("spawn point %q is outside the grid", id)
			continue
		}
		if kind, ok := cfg.TileAt(col, row); !ok || kind != TileFloor {
			result.fail("spawn point %q does not sit on a floor tile", id)
		}
	}
}

func validateBarriers(cfg *MapConfig, result *ValidationResult) {
	rects := make([]geometry.Rect, 0, len(cfg.Barriers))
	ids := make([]string, 0, len(cfg.Barriers))

	for _, b := range cfg.Barriers {
		rect := geometry.Rect{X: b.Position.X, Y: b.Position.Y, W: b.Size.X, H: b.Size.Y}

		if b.Kind == BarrierDestructible {
			if b.Health == nil {
				result.fail("barrier %q is destructible but has no health", b.ID)
			} else if *b.Health < 50 || *b.Health > 200 {
				result.fail("barrier %q health %d out of range [50,200]", b.ID, *b.Health)
			}
		}
		if b.Kind == BarrierOneWay && b.Direction == nil {
			result.fail("barrier %q is one_way but has no direction", b.ID)
		}

		for i, other := range rects {
			if geometry.Overlaps(rect, other) {
				result.fail("barrier %q overlaps barrier %q", b.ID, ids[i])
			}
		}
		rects = append(rects, rect)
		ids = append(ids, b.ID)
	}
}

func validateHazards(cfg *MapConfig, result *ValidationResult) {
	for _, h := range cfg.Hazards {
		switch h.Kind {
		case HazardDamage:
			if h.Intensity < 5 || h.Intensity > 25 {
				result.fail("hazard %q damage intensity %.2f out of range [5,25]", h.ID, h.Intensity)
			}
		case HazardSlow:
			if h.Intensity < 0.25 || h.Intensity > 0.75 {
				result.fail("hazard %q slow intensity %.2f out of range [0.25,0.75]", h.ID, h.Intensity)
			}
		case HazardEMP:
			if h.Intensity != 1 {
				result.fail("hazard %q emp intensity must be 1, got %.2f", h.ID, h.Intensity)
			}
		default:
			result.fail("hazard %q has unknown kind %q", h.ID, h.Kind)
		}
	}
}

func validateTraps(cfg *MapConfig, result *ValidationResult) {
	for _, tr := range cfg.Traps {
		if tr.Cooldown < 5 || tr.Cooldown > 30 {
			result.fail("trap %q cooldown %.2f out of range [5,30]", tr.ID, tr.Cooldown)
		}
		if tr.Kind == TrapTimed {
			if tr.Interval == nil {
				result.fail("trap %q is timed but has no interval", tr.ID)
			} else if *tr.Interval < 5 || *tr.Interval > 30 {
				result.fail("trap %q interval %.2f out of range [5,30]", tr.ID, *tr.Interval)
			}
		}
	}
}

func validateTeleporters(cfg *MapConfig, result *ValidationResult) {
	pairCounts := map[string]int{}
	for _, tp := range cfg.Teleporters {
		if len(tp.RandomExits) > 0 {
			continue // unpaired random-exit teleporters are skipped
		}
		pairCounts[tp.PairID]++
	}
	for pairID, count := range pairCounts {
		if count != 2 {
			result.fail("teleporter pair %q has %d pads, want exactly 2", pairID, count)
		}
	}
}
