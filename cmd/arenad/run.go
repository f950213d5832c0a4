package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/arenacore/arena/internal/apiserver"
	"github.com/arenacore/arena/internal/arena"
	"github.com/arenacore/arena/internal/config"
	"github.com/arenacore/arena/internal/mapschema"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Args:  cobra.NoArgs,
	Short: "Load a map and serve the arena simulation over HTTP/WebSocket",
	RunE:  runArena,
}

func init() {
	runCmd.Flags().String("map", "", "map config file (yaml or json); overrides ARENA_MAP_PATH")
	runCmd.Flags().Bool("dynamic-spawn", false, "enable offline dynamic hazard/trap spawning; overrides ARENA_DYNAMIC_SPAWN")
	runCmd.Flags().Int64("seed", 1, "seed for the dynamic spawn PRNG")
}

func loadEnv() {
	envFile := cfgFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Debug().Str("file", envFile).Msg("no .env file found, using process environment only")
	} else {
		log.Info().Str("file", envFile).Msg("loaded environment file")
	}
}

func runArena(cmd *cobra.Command, args []string) error {
	loadEnv()

	appCfg := config.Load()

	mapPath, _ := cmd.Flags().GetString("map")
	if mapPath == "" {
		mapPath = appCfg.World.DefaultMapPath
	}
	dynamicSpawn, _ := cmd.Flags().GetBool("dynamic-spawn")
	if cmd.Flags().Changed("dynamic-spawn") {
		appCfg.World.UseDynamicSpawning = dynamicSpawn
	}
	seed, _ := cmd.Flags().GetInt64("seed")

	log.Info().Str("map", mapPath).Bool("dynamicSpawn", appCfg.World.UseDynamicSpawning).Msg("loading map")

	mapCfg, err := mapschema.LoadMapConfigFile(mapPath)
	if err != nil {
		return errors.Wrap(err, "load map config")
	}

	core := arena.New(time.Now, rand.New(rand.NewSource(seed)))
	if err := core.LoadMap(mapCfg, appCfg.World.UseDynamicSpawning, appCfg.HazardSchedule, appCfg.TrapSchedule); err != nil {
		if loadErr, ok := err.(*arena.LoadError); ok {
			for _, reason := range loadErr.Reasons {
				log.Error().Str("reason", reason).Msg("map validation failed")
			}
		}
		return errors.Wrap(err, "load map into arena")
	}

	server := apiserver.NewServer(core)

	debugCfg := apiserver.DefaultObservabilityConfig()
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := apiserver.StartDebugServer(debugCfg); err != nil {
			log.Warn().Err(err).Msg("debug server disabled")
		}
	}

	addr := fmt.Sprintf(":%d", appCfg.Server.Port)
	go func() {
		log.Info().Str("addr", addr).Msg("arena API server starting")
		if err := server.Start(addr); err != nil {
			log.Fatal().Err(err).Msg("arena API server crashed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	server.Stop()
	return nil
}
