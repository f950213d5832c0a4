package apiserver

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/arenacore/arena/internal/geometry"
	"github.com/arenacore/arena/internal/mapschema"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections
	// allowed across all clients.
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP is the maximum WebSocket connections allowed
	// from a single IP.
	MaxWSConnectionsPerIP = 10
)

var allowedWSOrigins = []string{"http://localhost", "http://127.0.0.1"}

func isAllowedWSOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	for _, o := range allowedWSOrigins {
		if len(origin) >= len(o) && origin[:len(o)] == o {
			return true
		}
	}
	return false
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if isAllowedWSOrigin(origin) {
			return true
		}
		log.Printf("websocket connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

type wsClient struct {
	conn *websocket.Conn
	ip   string
}

// EventHub fans out arena simulation events (barrier destroyed, trap
// triggered, player teleported/launched, hazard damage) to every
// connected WebSocket client. It is driven by wiring its Broadcast
// helpers into an arena.ArenaCallbacks set.
type EventHub struct {
	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	wsLimiter *WSConnLimiter
}

// NewEventHub creates a hub with per-IP connection limiting.
func NewEventHub() *EventHub {
	return &EventHub{
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		wsLimiter:  NewWSConnLimiter(MaxWSConnectionsPerIP),
	}
}

// Run drives the hub's register/unregister/broadcast loop. Call it in
// its own goroutine.
func (h *EventHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			h.mu.Unlock()
			UpdateWSConnections(h.ClientCount())

		case conn := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[conn]; ok {
				h.wsLimiter.Release(client.ip)
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()
			UpdateWSConnections(h.ClientCount())

		case message := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					h.mu.RUnlock()
					h.mu.Lock()
					if client, ok := h.clients[conn]; ok {
						h.wsLimiter.Release(client.ip)
						delete(h.clients, conn)
					}
					h.mu.Unlock()
					h.mu.RLock()
				}
			}
			h.mu.RUnlock()
			IncrementWSMessages()
		}
	}
}

// Broadcast sends a {event, data} envelope to every connected client.
func (h *EventHub) Broadcast(event string, data interface{}) {
	msg := map[string]interface{}{"event": event, "data": data}
	jsonBytes, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- jsonBytes:
	default:
		// Buffer full: drop rather than block the simulation tick.
	}
}

// ClientCount returns the number of connected clients.
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastBarrierDestroyed publishes a barrier_destroyed event.
func (h *EventHub) BroadcastBarrierDestroyed(barrierID string, position geometry.Vec2) {
	h.Broadcast("barrier_destroyed", map[string]interface{}{"barrierId": barrierID, "position": position})
	RecordEvent("barrier_destroyed")
}

// BroadcastTrapTriggered publishes a trap_triggered event.
func (h *EventHub) BroadcastTrapTriggered(trapID string, affectedPlayers []string, effect mapschema.TrapEffect, effectValue float64) {
	h.Broadcast("trap_triggered", map[string]interface{}{
		"trapId":          trapID,
		"affectedPlayers": affectedPlayers,
		"effect":          effect,
		"effectValue":     effectValue,
	})
	RecordEvent("trap_triggered")
}

// BroadcastPlayerTeleported publishes a player_teleported event.
func (h *EventHub) BroadcastPlayerTeleported(playerID string, from, to geometry.Vec2) {
	h.Broadcast("player_teleported", map[string]interface{}{"playerId": playerID, "from": from, "to": to})
	RecordEvent("player_teleported")
}

// BroadcastPlayerLaunched publishes a player_launched event.
func (h *EventHub) BroadcastPlayerLaunched(playerID string, velocity geometry.Vec2) {
	h.Broadcast("player_launched", map[string]interface{}{"playerId": playerID, "velocity": velocity})
	RecordEvent("player_launched")
}

// BroadcastHazardDamage publishes a hazard_damage event.
func (h *EventHub) BroadcastHazardDamage(playerID string, damage float64, sourceID string) {
	h.Broadcast("hazard_damage", map[string]interface{}{"playerId": playerID, "damage": damage, "sourceId": sourceID})
	RecordEvent("hazard_damage")
}

// HandleWebSocket upgrades an incoming HTTP request to a WebSocket
// connection, enforcing total and per-IP connection caps.
func (h *EventHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if h.ClientCount() >= MaxWSConnectionsTotal {
		RecordConnectionRejected("ws_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	if !h.wsLimiter.Acquire(ip) {
		RecordConnectionRejected("ws_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.wsLimiter.Release(ip)
		return
	}

	client := &wsClient{conn: conn, ip: ip}
	h.register <- client

	go func() {
		defer func() { h.unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}
