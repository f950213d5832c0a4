package main

import (
	"encoding/json"
	"math/rand"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/arenacore/arena/internal/arena"
	"github.com/arenacore/arena/internal/config"
	"github.com/arenacore/arena/internal/geometry"
	"github.com/arenacore/arena/internal/mapschema"
)

var replayCmd = &cobra.Command{
	Use:   "replay [trajectory-file]",
	Args:  cobra.ExactArgs(1),
	Short: "Drive the arena through a recorded player trajectory and print the event stream",
	Long: `replay loads a map and a trajectory file (a JSON array of
{"dt": 0.016, "players": {"P1": {"x": 0, "y": 0}}} samples, one per tick)
and prints each emitted simulation event as a JSON line. Given the same
map, trajectory, and --seed, the arena emits the same event stream.
Printing is capped at 10,000 events per second after a burst of 1,000;
events over that cap are dropped, so a very dense stream can print
differently from run to run.`,
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().String("map", "", "map config file (yaml or json), required")
	replayCmd.Flags().Bool("dynamic-spawn", false, "enable offline dynamic hazard/trap spawning")
	replayCmd.Flags().Int64("seed", 1, "seed for the dynamic spawn PRNG")
	replayCmd.MarkFlagRequired("map")
}

type trajectorySample struct {
	Dt      float64                  `json:"dt"`
	Players map[string]geometry.Vec2 `json:"players"`
}

// eventPrinter caps stdout event throughput so a runaway event stream
// (a damage hazard ticking every frame, say) cannot stall the replay,
// then encodes each event as a single JSON line.
type eventPrinter struct {
	limiter *rate.Limiter
	enc     *json.Encoder
}

func newEventPrinter() *eventPrinter {
	return &eventPrinter{
		limiter: rate.NewLimiter(rate.Limit(10_000), 1_000),
		enc:     json.NewEncoder(os.Stdout),
	}
}

func (p *eventPrinter) emit(kind string, data interface{}) {
	if !p.limiter.Allow() {
		return
	}
	p.enc.Encode(map[string]interface{}{"event": kind, "data": data})
}

func runReplay(cmd *cobra.Command, args []string) error {
	mapPath, _ := cmd.Flags().GetString("map")
	dynamicSpawn, _ := cmd.Flags().GetBool("dynamic-spawn")
	seed, _ := cmd.Flags().GetInt64("seed")

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

	printer := newEventPrinter()

	simClock := time.Unix(0, 0)
	core := arena.New(func() time.Time { return simClock }, rand.New(rand.NewSource(seed)))
	if err := core.LoadMap(mapCfg, dynamicSpawn, config.DefaultHazardSchedule(), config.DefaultTrapSchedule()); err != nil {
		return errors.Wrap(err, "load map into arena")
	}

	core.SetCallbacks(arena.ArenaCallbacks{
		OnBarrierDestroyed: func(id string, pos geometry.Vec2) {
			printer.emit("barrier_destroyed", map[string]interface{}{"barrierId": id, "position": pos})
		},
		OnTrapTriggered: func(id string, affected []string, effect mapschema.TrapEffect, value float64) {
			printer.emit("trap_triggered", map[string]interface{}{"trapId": id, "affectedPlayers": affected, "effect": effect, "effectValue": value})
		},
		OnPlayerTeleported: func(id string, from, to geometry.Vec2) {
			printer.emit("player_teleported", map[string]interface{}{"playerId": id, "from": from, "to": to})
		},
		OnPlayerLaunched: func(id string, velocity geometry.Vec2) {
			printer.emit("player_launched", map[string]interface{}{"playerId": id, "velocity": velocity})
		},
		OnHazardDamage: func(id string, damage float64, sourceID string) {
			printer.emit("hazard_damage", map[string]interface{}{"playerId": id, "damage": damage, "sourceId": sourceID})
		},
	})

	for _, sample := range samples {
		core.Tick(sample.Dt, sample.Players)
		simClock = simClock.Add(time.Duration(sample.Dt * float64(time.Second)))
	}

	return nil
}
