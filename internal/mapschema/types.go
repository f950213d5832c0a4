// Package mapschema defines MapConfig — the logical shape of a loadable
// arena map — and its structural/semantic validator. Validation never
// panics: Validate always returns a (possibly empty) list of human-readable
// reasons and the caller decides whether the configuration is usable.
package mapschema

import "github.com/arenacore/arena/internal/geometry"

// TileKind classifies a single grid cell.
type TileKind string

const (
	TileFloor        TileKind = "floor"
	TileWall         TileKind = "wall"
	TileHalfWall     TileKind = "half_wall"
	TileHazardDamage TileKind = "hazard_damage"
	TileHazardSlow   TileKind = "hazard_slow"
	TileHazardEMP    TileKind = "hazard_emp"
	TileTrapPressure TileKind = "trap_pressure"
	TileTrapTimed    TileKind = "trap_timed"
	TileTeleporter   TileKind = "teleporter"
	TileJumpPad      TileKind = "jump_pad"
)

// BarrierKind classifies a barrier's collision and damage behavior.
type BarrierKind string

const (
	BarrierFull         BarrierKind = "full"
	BarrierHalf         BarrierKind = "half"
	BarrierDestructible BarrierKind = "destructible"
	BarrierOneWay       BarrierKind = "one_way"
)

// Direction is one of the eight compass facings (four cardinal, four
// diagonal) used by one-way barriers and jump pads.
type Direction string

const (
	DirN  Direction = "N"
	DirS  Direction = "S"
	DirE  Direction = "E"
	DirW  Direction = "W"
	DirNE Direction = "NE"
	DirNW Direction = "NW"
	DirSE Direction = "SE"
	DirSW Direction = "SW"
)

// HazardKind classifies the effect a hazard zone applies to players inside it.
type HazardKind string

const (
	HazardDamage HazardKind = "damage"
	HazardSlow   HazardKind = "slow"
	HazardEMP    HazardKind = "emp"
)

// TrapKind classifies what triggers a trap.
type TrapKind string

const (
	TrapPressure   TrapKind = "pressure"
	TrapTimed      TrapKind = "timed"
	TrapProjectile TrapKind = "projectile"
)

// TrapEffect classifies what a trap does to affected players when triggered.
type TrapEffect string

const (
	EffectDamageBurst TrapEffect = "damage_burst"
	EffectKnockback   TrapEffect = "knockback"
	EffectStun        TrapEffect = "stun"
)

// Metadata describes authorship and display information for a map.
type Metadata struct {
	Name        string `yaml:"name" json:"name"`
	Author      string `yaml:"author" json:"author"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
	Theme       string `yaml:"theme,omitempty" json:"theme,omitempty"`
}

// BarrierConfig describes a single barrier entity at load time.
type BarrierConfig struct {
	ID        string        `yaml:"id" json:"id"`
	Kind      BarrierKind   `yaml:"kind" json:"kind"`
	Position  geometry.Vec2 `yaml:"position" json:"position"`
	Size      geometry.Vec2 `yaml:"size" json:"size"`
	Health    *int          `yaml:"health,omitempty" json:"health,omitempty"`
	Direction *Direction    `yaml:"direction,omitempty" json:"direction,omitempty"`
}

// HazardConfig describes a single hazard zone at load time.
type HazardConfig struct {
	ID        string        `yaml:"id" json:"id"`
	Kind      HazardKind    `yaml:"kind" json:"kind"`
	Bounds    geometry.Rect `yaml:"bounds" json:"bounds"`
	Intensity float64       `yaml:"intensity" json:"intensity"`
}

// TrapConfig describes a single trap at load time.
type TrapConfig struct {
	ID          string        `yaml:"id" json:"id"`
	Kind        TrapKind      `yaml:"kind" json:"kind"`
	Position    geometry.Vec2 `yaml:"position" json:"position"`
	Radius      float64       `yaml:"radius" json:"radius"`
	Effect      TrapEffect    `yaml:"effect" json:"effect"`
	EffectValue float64       `yaml:"effectValue" json:"effectValue"`
	Cooldown    float64       `yaml:"cooldown" json:"cooldown"`
	Interval    *float64      `yaml:"interval,omitempty" json:"interval,omitempty"`
	ChainRadius *float64      `yaml:"chainRadius,omitempty" json:"chainRadius,omitempty"`
}

// TeleporterConfig describes a single teleporter pad at load time.
type TeleporterConfig struct {
	ID          string          `yaml:"id" json:"id"`
	PairID      string          `yaml:"pairId,omitempty" json:"pairId,omitempty"`
	Position    geometry.Vec2   `yaml:"position" json:"position"`
	Radius      float64         `yaml:"radius" json:"radius"`
	RandomExits []geometry.Vec2 `yaml:"randomExits,omitempty" json:"randomExits,omitempty"`
}

// JumpPadConfig describes a single jump pad at load time.
type JumpPadConfig struct {
	ID        string        `yaml:"id" json:"id"`
	Position  geometry.Vec2 `yaml:"position" json:"position"`
	Radius    float64       `yaml:"radius" json:"radius"`
	Direction Direction     `yaml:"direction" json:"direction"`
	Force     float64       `yaml:"force" json:"force"`
}

// SpawnPointConfig describes a player spawn point at load time.
type SpawnPointConfig struct {
	ID       string        `yaml:"id" json:"id"`
	Position geometry.Vec2 `yaml:"position" json:"position"`
}

// MapConfig is the full, loadable description of an arena map. Tiles is
// row-major and must decode to exactly GridRows x GridCols; Validate
// reports any other shape as an error rather than truncating or padding.
type MapConfig struct {
	Metadata      Metadata           `yaml:"metadata" json:"metadata"`
	Tiles         [][]TileKind       `yaml:"tiles" json:"tiles"`
	Barriers      []BarrierConfig    `yaml:"barriers" json:"barriers"`
	Hazards       []HazardConfig     `yaml:"hazards" json:"hazards"`
	Traps         []TrapConfig       `yaml:"traps" json:"traps"`
	Teleporters   []TeleporterConfig `yaml:"teleporters" json:"teleporters"`
	JumpPads      []JumpPadConfig    `yaml:"jumpPads" json:"jumpPads"`
	SpawnPoints   []SpawnPointConfig `yaml:"spawnPoints" json:"spawnPoints"`
	PowerUpSpawns []geometry.Vec2    `yaml:"powerUpSpawns,omitempty" json:"powerUpSpawns,omitempty"`
}

// TileAt returns the tile kind at (col, row), or false when the
// coordinate falls outside the configured grid. Safe on malformed grids.
func (c *MapConfig) TileAt(col, row int) (TileKind, bool) {
	if row < 0 || row >= len(c.Tiles) {
		return "", false
	}
	if col < 0 || col >= len(c.Tiles[row]) {
		return "", false
	}
	return c.Tiles[row][col], true
}
