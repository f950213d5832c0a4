package apiserver

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arenacore/arena/internal/arena"
)

// Server is the HTTP API server with WebSocket event streaming. It
// combines the HTTP router with an event hub that fans arena callbacks
// out to connected clients in real time.
type Server struct {
	arenaCore   *arena.Arena
	router      *chi.Mux
	hub         *EventHub
	rateLimiter *APILimiter
}

// NewServer creates a new API server with production-default
// configuration.
//
// The event hub's broadcast loop and the network listener do not start
// until Start() is called. The API rate limiter's cleanup goroutine is
// started here, by NewAPILimiter; Stop ends it.
func NewServer(core *arena.Arena) *Server {
	s := &Server{
		arenaCore: core,
		hub:       NewEventHub(),
	}

	s.rateLimiter = NewAPILimiter(DefaultRateLimitConfig)

	s.router = NewRouter(RouterConfig{
		Arena:       core,
		RateLimiter: s.rateLimiter,
	})
	s.router.Get("/ws", s.handleWS)

	core.SetCallbacks(arena.ArenaCallbacks{
		OnBarrierDestroyed: s.hub.BroadcastBarrierDestroyed,
		OnTrapTriggered:    s.hub.BroadcastTrapTriggered,
		OnPlayerTeleported: s.hub.BroadcastPlayerTeleported,
		OnPlayerLaunched:   s.hub.BroadcastPlayerLaunched,
		OnHazardDamage:     s.hub.BroadcastHazardDamage,
	})

	return s
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.hub.HandleWebSocket(w, r)
}

// Start starts the event hub's broadcast loop and then serves HTTP on
// addr, blocking until the listener fails. Call it once; signal the
// process to stop.
func (s *Server) Start(addr string) error {
	go s.hub.Run()

	log.Printf("arena API server starting on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler for use with httptest.
//
//	ts := httptest.NewServer(server.Router())
//	defer ts.Close()
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop stops the rate limiter's cleanup goroutine. It does not stop the
// event hub's broadcast loop or the HTTP listener.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}
