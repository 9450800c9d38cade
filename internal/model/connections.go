package model

import (
	"errors"
	"sync"

	"golang.org/x/exp/maps"

	"github.com/benbeisheim/dama-backend/internal/ws"
)

// Conn is the part of a websocket connection a game writes to.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

var ErrNotAuthorized = errors.New("not authorized to observe this game")

type observer struct {
	conn Conn
	mu   sync.Mutex // one writer at a time per connection
}

func (o *observer) write(msg ws.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.conn.WriteJSON(msg)
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]*observer // playerID -> connection
	mu          sync.RWMutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]*observer),
	}
}

// RegisterConnection attaches conn as playerID's observer and sends it the
// current state. A second connection for the same player replaces the first.
func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	g.mu.Lock()
	authorized := g.isPlayerOrOpenLocked(playerID)
	g.mu.Unlock()
	if !authorized {
		return ErrNotAuthorized
	}

	g.connections.mu.Lock()
	old := g.connections.connections[playerID]
	obs := &observer{conn: conn}
	g.connections.connections[playerID] = obs
	g.connections.mu.Unlock()

	if old != nil {
		g.log.Debug().Str("player", playerID).Msg("replacing existing connection")
		old.conn.Close()
	}
	g.log.Info().Str("player", playerID).Msg("connection registered")

	msg, err := ws.NewMessage(ws.MessageTypeGameState, g.GetState())
	if err != nil {
		return err
	}
	return obs.write(msg)
}

func (g *Game) isPlayerOrOpenLocked(playerID string) bool {
	_, ok := g.sideOfLocked(playerID)
	return ok || g.canSpectateLocked()
}

// UnregisterConnection drops playerID's observer if it is still conn.
func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if obs, ok := g.connections.connections[playerID]; ok && obs.conn == conn {
		delete(g.connections.connections, playerID)
		g.log.Info().Str("player", playerID).Msg("connection unregistered")
	}
}

// ConnectionCount returns the number of attached observers.
func (g *Game) ConnectionCount() int {
	g.connections.mu.RLock()
	defer g.connections.mu.RUnlock()
	return len(g.connections.connections)
}

// BroadcastState sends the current state to every observer.
func (g *Game) BroadcastState() {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, g.GetState())
	if err != nil {
		g.log.Error().Err(err).Msg("failed to marshal state")
		return
	}
	g.Broadcast(msg)
}

// Broadcast sends msg to every observer. Observers whose write fails are dropped.
func (g *Game) Broadcast(msg ws.Message) {
	g.connections.mu.RLock()
	active := maps.Clone(g.connections.connections)
	g.connections.mu.RUnlock()

	for playerID, obs := range active {
		if err := obs.write(msg); err != nil {
			g.log.Warn().Err(err).Str("player", playerID).Msg("failed to send to observer")
			g.UnregisterConnection(playerID, obs.conn)
		}
	}
}

// Send writes msg to playerID's observer only.
func (g *Game) Send(playerID string, msg ws.Message) error {
	g.connections.mu.RLock()
	obs, ok := g.connections.connections[playerID]
	g.connections.mu.RUnlock()
	if !ok {
		return ErrNotInGame
	}
	return obs.write(msg)
}

// CloseConnections closes every attached observer.
func (g *Game) CloseConnections() {
	g.connections.mu.Lock()
	active := maps.Values(g.connections.connections)
	g.connections.connections = make(map[string]*observer)
	g.connections.mu.Unlock()

	for _, obs := range active {
		obs.conn.Close()
	}
}
