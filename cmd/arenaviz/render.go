package main

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/arenacore/arena/internal/arena"
	"github.com/arenacore/arena/internal/barrier"
	"github.com/arenacore/arena/internal/config"
	"github.com/arenacore/arena/internal/geometry"
	"github.com/arenacore/arena/internal/hazard"
	"github.com/arenacore/arena/internal/mapschema"
	"github.com/arenacore/arena/internal/transport"
	"github.com/arenacore/arena/internal/trap"
)

var renderCmd = &cobra.Command{
	Use:   "render [trajectory-file]",
	Args:  cobra.ExactArgs(1),
	Short: "Run a scripted player trajectory through an arena and dump one PNG per tick",
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().String("map", "", "map config file (yaml or json), required")
	renderCmd.Flags().String("out", "arenaviz-frames", "output directory for PNG frames")
	renderCmd.Flags().Int64("seed", 1, "seed for the dynamic spawn PRNG")
	renderCmd.Flags().Bool("dynamic-spawn", false, "enable offline dynamic hazard/trap spawning")
	renderCmd.MarkFlagRequired("map")
}

type trajectorySample struct {
	Dt      float64                  `json:"dt"`
	Players map[string]geometry.Vec2 `json:"players"`
}

func runRender(cmd *cobra.Command, args []string) error {
	mapPath, _ := cmd.Flags().GetString("map")
	outDir, _ := cmd.Flags().GetString("out")
	seed, _ := cmd.Flags().GetInt64("seed")
	dynamicSpawn, _ := cmd.Flags().GetBool("dynamic-spawn")

	mapCfg, err := mapschema.LoadMapConfigFile(mapPath)
	if err != nil {
		return errors.Wrap(err, "load map config")
	}

	trajData, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrap(err, "read trajectory file")
	}
	var samples []trajectorySample
	if err := json.Unmarshal(trajData, &samples); err != nil {
		return errors.Wrap(err, "decode trajectory file")
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}

	simClock := time.Unix(0, 0)
	core := arena.New(func() time.Time { return simClock }, rand.New(rand.NewSource(seed)))
	if err := core.LoadMap(mapCfg, dynamicSpawn, config.DefaultHazardSchedule(), config.DefaultTrapSchedule()); err != nil {
		return errors.Wrap(err, "load map into arena")
	}

	for i, sample := range samples {
		core.Tick(sample.Dt, sample.Players)
		simClock = simClock.Add(time.Duration(sample.Dt * float64(time.Second)))

		dc := gg.NewContext(int(geometry.WorldWidth), int(geometry.WorldHeight))
		drawFrame(dc, core, sample.Players)

		path := filepath.Join(outDir, fmt.Sprintf("tick-%05d.png", i))
		if err := dc.SavePNG(path); err != nil {
			return errors.Wrapf(err, "save frame %d", i)
		}
	}

	fmt.Printf("wrote %d frames to %s\n", len(samples), outDir)
	return nil
}

func drawFrame(dc *gg.Context, core *arena.Arena, players map[string]geometry.Vec2) {
	drawBackground(dc)
	drawGrid(dc)
	drawBarriers(dc, core.Barriers())
	drawHazards(dc, core.Hazards())
	drawTraps(dc, core.Traps())
	drawTeleporters(dc, core.Teleporters())
	drawJumpPads(dc, core.JumpPads())
	drawPlayers(dc, players)
}

func drawBackground(dc *gg.Context) {
	dc.SetColor(color.RGBA{18, 18, 24, 255})
	dc.DrawRectangle(0, 0, geometry.WorldWidth, geometry.WorldHeight)
	dc.Fill()
}

func drawGrid(dc *gg.Context) {
	dc.SetColor(color.RGBA{40, 40, 52, 255})
	dc.SetLineWidth(1)
	for c := 0; c <= geometry.GridCols; c++ {
		x := float64(c) * geometry.TileSize
		dc.DrawLine(x, 0, x, geometry.WorldHeight)
		dc.Stroke()
	}
	for r := 0; r <= geometry.GridRows; r++ {
		y := float64(r) * geometry.TileSize
		dc.DrawLine(0, y, geometry.WorldWidth, y)
		dc.Stroke()
	}
}

func drawBarriers(dc *gg.Context, barriers []*barrier.Barrier) {
	for _, b := range barriers {
		if !b.Active {
			continue
		}
		switch b.DamageState {
		case barrier.StateCracked:
			dc.SetColor(color.RGBA{200, 150, 60, 255})
		case barrier.StateDamaged:
			dc.SetColor(color.RGBA{200, 80, 60, 255})
		default:
			dc.SetColor(color.RGBA{120, 120, 140, 255})
		}
		dc.DrawRectangle(b.Position.X, b.Position.Y, b.Size.X, b.Size.Y)
		dc.Fill()
	}
}

func drawHazards(dc *gg.Context, hazards []*hazard.Hazard) {
	for _, h := range hazards {
		switch h.Kind {
		case mapschema.HazardDamage:
			dc.SetColor(color.RGBA{200, 30, 30, 90})
		case mapschema.HazardSlow:
			dc.SetColor(color.RGBA{30, 100, 200, 90})
		default:
			dc.SetColor(color.RGBA{180, 30, 200, 90})
		}
		dc.DrawRectangle(h.Bounds.X, h.Bounds.Y, h.Bounds.W, h.Bounds.H)
		dc.Fill()
	}
}

func drawTraps(dc *gg.Context, traps []*trap.Trap) {
	for _, t := range traps {
		switch t.State {
		case trap.StateWarning:
			dc.SetColor(color.RGBA{255, 200, 0, 255})
		case trap.StateCooldown:
			dc.SetColor(color.RGBA{90, 90, 90, 255})
		default:
			dc.SetColor(color.RGBA{255, 120, 0, 255})
		}
		dc.DrawCircle(t.Position.X, t.Position.Y, t.Radius)
		dc.Fill()
	}
}

func drawTeleporters(dc *gg.Context, teleporters []*transport.Teleporter) {
	dc.SetColor(color.RGBA{60, 220, 220, 255})
	for _, t := range teleporters {
		dc.DrawCircle(t.Position.X, t.Position.Y, t.Radius)
		dc.Stroke()
	}
}

func drawJumpPads(dc *gg.Context, pads []*transport.JumpPad) {
	dc.SetColor(color.RGBA{220, 220, 60, 255})
	for _, p := range pads {
		dc.DrawCircle(p.Position.X, p.Position.Y, p.Radius)
		dc.Stroke()
	}
}

func drawPlayers(dc *gg.Context, players map[string]geometry.Vec2) {
	colors := []color.RGBA{{60, 180, 255, 255}, {255, 90, 90, 255}}

	ids := make([]string, 0, len(players))
	for id := range players {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for i, id := range ids {
		pos := players[id]
		dc.SetColor(colors[i%len(colors)])
		dc.DrawCircle(pos.X, pos.Y, 16)
		dc.Fill()
		dc.SetColor(color.White)
		if err := dc.LoadFontFace(fontPath(), 14); err == nil {
			dc.DrawStringAnchored(id, pos.X, pos.Y-22, 0.5, 0.5)
		}
	}
}

func fontPath() string {
	paths := []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/System/Library/Fonts/Helvetica.ttc",
		`C:\Windows\Fonts\arial.ttf`,
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
