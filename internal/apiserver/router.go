package apiserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/arenacore/arena/internal/barrier"
	"github.com/arenacore/arena/internal/dynspawn"
	"github.com/arenacore/arena/internal/geometry"
	"github.com/arenacore/arena/internal/hazard"
	"github.com/arenacore/arena/internal/mapschema"
	"github.com/arenacore/arena/internal/transport"
	"github.com/arenacore/arena/internal/trap"
	"github.com/arenacore/arena/internal/zonestack"
)

// ArenaInterface defines the arena coordinator methods the API layer
// calls. This interface enables mocking for tests without driving a real
// simulation. Keep this minimal - only include methods the API actually
// needs.
type ArenaInterface interface {
	LoadMap(cfg *mapschema.MapConfig, useDynamicSpawning bool, hazardSchedule, trapSchedule dynspawn.ScheduleConfig) error
	Tick(dt float64, players map[string]geometry.Vec2)
	CheckBarrierCollision(pos geometry.Vec2, r float64) bool
	ResolveCollision(pos geometry.Vec2, r float64) geometry.Vec2
	DamageBarrier(id string, dmg int)
	CheckTeleport(playerID string, pos geometry.Vec2) (geometry.Vec2, bool)
	CheckJumpPad(playerID string, pos geometry.Vec2) (geometry.Vec2, bool)
	OnPlayerDeath(playerID string)
	AddServerHazard(h *hazard.Hazard)
	RemoveServerHazard(id string)
	AddServerTrap(t *trap.Trap)
	RemoveServerTrap(id string)
	PlayerEffects(playerID string) zonestack.EffectState
	Barriers() []*barrier.Barrier
	Hazards() []*hazard.Hazard
	Traps() []*trap.Trap
	Teleporters() []*transport.Teleporter
	JumpPads() []*transport.JumpPad
}

// RouterConfig contains all dependencies needed to construct the HTTP
// router. Designed for dependency injection and testability.
//
// Example usage in tests:
//
//	cfg := apiserver.RouterConfig{
//	    Arena: mockArena,
//	    RateLimitConfig: &apiserver.RateLimitConfig{
//	        Tick:  apiserver.ClassLimit{PerSecond: 1000, Burst: 1000},
//	        Load:  apiserver.ClassLimit{PerSecond: 1000, Burst: 1000},
//	        Query: apiserver.ClassLimit{PerSecond: 1000, Burst: 1000},
//	    },
//	}
//	router := apiserver.NewRouter(cfg)
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Arena is the simulation coordinator (required).
	Arena ArenaInterface

	// RateLimiter is an optional pre-configured rate limiter. If nil, a
	// new one is created from RateLimitConfig.
	RateLimiter *APILimiter

	// RateLimitConfig configures the limiter when RateLimiter is nil. If
	// both are nil, DefaultRateLimitConfig is used.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins overrides the allowed CORS origins. If nil, only
	// localhost is permitted.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (useful for
	// benchmarks and quiet test output).
	DisableLogging bool
}

type routerHandlers struct {
	arena ArenaInterface
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: this function is PURE - it has no side effects beyond
// constructing the rate limiter (which starts one cleanup goroutine).
// No network listeners are opened, so it is safe to use with
// httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(requestMetrics)

	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewAPILimiter(rateLimitCfg)
	}

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{arena: cfg.Arena}
	limit := rateLimiter.Limit

	// Limits are applied per route class, not router-wide: the tick route
	// must admit a full-rate host loop, while the map-load route is the
	// most expensive call on the surface and gets the tightest budget.
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", limit(ClassQuery, h.handleState))
		r.Post("/map/load", limit(ClassLoad, h.handleLoadMap))
		r.Post("/tick", limit(ClassTick, h.handleTick))
		r.Post("/collision/check", limit(ClassQuery, h.handleCheckCollision))
		r.Post("/collision/resolve", limit(ClassQuery, h.handleResolveCollision))
		r.Post("/barrier/damage", limit(ClassQuery, h.handleDamageBarrier))
		r.Get("/barriers", limit(ClassQuery, h.handleListBarriers))
		r.Post("/transport/teleport", limit(ClassQuery, h.handleCheckTeleport))
		r.Post("/transport/jumppad", limit(ClassQuery, h.handleCheckJumpPad))
		r.Post("/player/death", limit(ClassQuery, h.handlePlayerDeath))
		r.Get("/player/{id}/effects", limit(ClassQuery, h.handlePlayerEffects))
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}

// requestMetrics records latency and status for every request against
// the matched chi route pattern, keeping metric cardinality bounded by
// the route table rather than by raw URLs.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}
		RecordRequest(r.Method, pattern, ww.Status(), time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type loadMapRequest struct {
	Config             *mapschema.MapConfig    `json:"config"`
	UseDynamicSpawning bool                    `json:"useDynamicSpawning"`
	HazardSchedule     dynspawn.ScheduleConfig `json:"hazardSchedule"`
	TrapSchedule       dynspawn.ScheduleConfig `json:"trapSchedule"`
}

func (h *routerHandlers) handleLoadMap(w http.ResponseWriter, r *http.Request) {
	var req loadMapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.arena.LoadMap(req.Config, req.UseDynamicSpawning, req.HazardSchedule, req.TrapSchedule); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	UpdateActiveGames(1) // one arena per daemon; loaded means live
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type tickRequest struct {
	Dt      float64                  `json:"dt"`
	Players map[string]geometry.Vec2 `json:"players"`
}

func (h *routerHandlers) handleTick(w http.ResponseWriter, r *http.Request) {
	var req tickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	start := time.Now()
	h.arena.Tick(req.Dt, req.Players)
	RecordTick(time.Since(start))
	UpdateActivePlayers(len(req.Players))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type circleRequest struct {
	Position geometry.Vec2 `json:"position"`
	Radius   float64       `json:"radius"`
}

func (h *routerHandlers) handleCheckCollision(w http.ResponseWriter, r *http.Request) {
	var req circleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	collides := h.arena.CheckBarrierCollision(req.Position, req.Radius)
	writeJSON(w, http.StatusOK, map[string]bool{"collides": collides})
}

func (h *routerHandlers) handleResolveCollision(w http.ResponseWriter, r *http.Request) {
	var req circleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resolved := h.arena.ResolveCollision(req.Position, req.Radius)
	writeJSON(w, http.StatusOK, resolved)
}

type damageBarrierRequest struct {
	BarrierID string `json:"barrierId"`
	Damage    int    `json:"damage"`
}

func (h *routerHandlers) handleDamageBarrier(w http.ResponseWriter, r *http.Request) {
	var req damageBarrierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.arena.DamageBarrier(req.BarrierID, req.Damage)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *routerHandlers) handleListBarriers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.arena.Barriers())
}

type arenaStateResponse struct {
	Barriers    []*barrier.Barrier      `json:"barriers"`
	Hazards     []*hazard.Hazard        `json:"hazards"`
	Traps       []*trap.Trap            `json:"traps"`
	Teleporters []*transport.Teleporter `json:"teleporters"`
	JumpPads    []*transport.JumpPad    `json:"jumpPads"`
}

// handleState returns a full snapshot of the loaded arena's entities, for
// hosts that want to resync a client without replaying every event.
func (h *routerHandlers) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, arenaStateResponse{
		Barriers:    h.arena.Barriers(),
		Hazards:     h.arena.Hazards(),
		Traps:       h.arena.Traps(),
		Teleporters: h.arena.Teleporters(),
		JumpPads:    h.arena.JumpPads(),
	})
}

type playerPositionRequest struct {
	PlayerID string        `json:"playerId"`
	Position geometry.Vec2 `json:"position"`
}

func (h *routerHandlers) handleCheckTeleport(w http.ResponseWriter, r *http.Request) {
	var req playerPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dest, ok := h.arena.CheckTeleport(req.PlayerID, req.Position)
	writeJSON(w, http.StatusOK, map[string]interface{}{"teleported": ok, "destination": dest})
}

func (h *routerHandlers) handleCheckJumpPad(w http.ResponseWriter, r *http.Request) {
	var req playerPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	velocity, ok := h.arena.CheckJumpPad(req.PlayerID, req.Position)
	writeJSON(w, http.StatusOK, map[string]interface{}{"launched": ok, "velocity": velocity})
}

type playerIDRequest struct {
	PlayerID string `json:"playerId"`
}

func (h *routerHandlers) handlePlayerDeath(w http.ResponseWriter, r *http.Request) {
	var req playerIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.arena.OnPlayerDeath(req.PlayerID)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *routerHandlers) handlePlayerEffects(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "id")
	writeJSON(w, http.StatusOK, h.arena.PlayerEffects(playerID))
}

// GetRateLimiterFromRouter returns the rate limiter a RouterConfig would
// construct, useful for tests that need to inspect limiter stats.
func GetRateLimiterFromRouter(cfg RouterConfig) *APILimiter {
	if cfg.RateLimiter != nil {
		return cfg.RateLimiter
	}
	rateLimitCfg := DefaultRateLimitConfig
	if cfg.RateLimitConfig != nil {
		rateLimitCfg = *cfg.RateLimitConfig
	}
	return NewAPILimiter(rateLimitCfg)
}
