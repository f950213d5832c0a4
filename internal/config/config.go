// Package config provides centralized configuration management for the
// arena host binaries. This is the single source of truth for server,
// simulation, and spawn-schedule settings; other packages reference these
// values rather than hardcoding their own.
package config

import (
	"os"
	"strconv"

	"github.com/arenacore/arena/internal/dynspawn"
)

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings for the arena daemon.
type ServerConfig struct {
	Port          int
	TickRate      int // ticks per second
	MaxTotalGames int
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:          8080,
		TickRate:      60,
		MaxTotalGames: 10_000,
	}
}

// ServerFromEnv returns server configuration with environment variable
// overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("ARENA_PORT", 0); p > 0 {
		cfg.Port = p
	}
	if tr := getEnvInt("ARENA_TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}
	if mg := getEnvInt("ARENA_MAX_GAMES", 0); mg > 0 {
		cfg.MaxTotalGames = mg
	}

	return cfg
}

// =============================================================================
// WORLD / SIMULATION CONFIGURATION
// =============================================================================

// WorldConfig holds simulation-wide settings independent of any one map.
type WorldConfig struct {
	DefaultMapPath     string
	UseDynamicSpawning bool
}

// DefaultWorld returns the default world configuration.
func DefaultWorld() WorldConfig {
	return WorldConfig{
		DefaultMapPath:     "maps/default.yaml",
		UseDynamicSpawning: false,
	}
}

// WorldFromEnv returns world configuration with environment variable
// overrides.
func WorldFromEnv() WorldConfig {
	cfg := DefaultWorld()

	if p := os.Getenv("ARENA_MAP_PATH"); p != "" {
		cfg.DefaultMapPath = p
	}
	if os.Getenv("ARENA_DYNAMIC_SPAWN") == "true" {
		cfg.UseDynamicSpawning = true
	}

	return cfg
}

// =============================================================================
// SPAWN SCHEDULE CONFIGURATION
// =============================================================================

// DefaultHazardSchedule returns the default dynamic hazard spawn schedule.
func DefaultHazardSchedule() dynspawn.ScheduleConfig {
	return dynspawn.ScheduleConfig{
		InitialDelayMin: 3, InitialDelayMax: 10,
		LifetimeMin: 15, LifetimeMax: 30,
		RespawnDelayMin: 5, RespawnDelayMax: 15,
		MaxConcurrent: 3,
	}
}

// DefaultTrapSchedule returns the default dynamic trap spawn schedule.
func DefaultTrapSchedule() dynspawn.ScheduleConfig {
	return dynspawn.ScheduleConfig{
		InitialDelayMin: 5, InitialDelayMax: 15,
		LifetimeMin: 20, LifetimeMax: 40,
		RespawnDelayMin: 8, RespawnDelayMax: 20,
		MaxConcurrent: 2,
	}
}

// HazardScheduleFromEnv returns the hazard spawn schedule with environment
// variable overrides for its concurrency cap.
func HazardScheduleFromEnv() dynspawn.ScheduleConfig {
	cfg := DefaultHazardSchedule()
	if mc := getEnvInt("ARENA_MAX_HAZARDS", 0); mc > 0 {
		cfg.MaxConcurrent = mc
	}
	return cfg
}

// TrapScheduleFromEnv returns the trap spawn schedule with environment
// variable overrides for its concurrency cap.
func TrapScheduleFromEnv() dynspawn.ScheduleConfig {
	cfg := DefaultTrapSchedule()
	if mc := getEnvInt("ARENA_MAX_TRAPS", 0); mc > 0 {
		cfg.MaxConcurrent = mc
	}
	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration for an arena
// host process.
type AppConfig struct {
	Server         ServerConfig
	World          WorldConfig
	HazardSchedule dynspawn.ScheduleConfig
	TrapSchedule   dynspawn.ScheduleConfig
}

// Load returns the complete configuration with environment overrides
// applied.
func Load() AppConfig {
	return AppConfig{
		Server:         ServerFromEnv(),
		World:          WorldFromEnv(),
		HazardSchedule: HazardScheduleFromEnv(),
		TrapSchedule:   TrapScheduleFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
