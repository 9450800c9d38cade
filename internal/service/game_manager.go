package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/exp/maps"

	"github.com/benbeisheim/dama-backend/internal/model"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan model.MatchFoundEvent
	// pending holds matches made before the player's channel was registered.
	pending   map[string]model.MatchFoundEvent
	clockTime time.Duration
	log       zerolog.Logger
	mu        sync.RWMutex

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewGameManager starts the matchmaking loop, pairing queued players every
// interval. Close stops it.
func NewGameManager(clockTime, interval time.Duration, log zerolog.Logger) *GameManager {
	gm := &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan model.MatchFoundEvent),
		pending:          make(map[string]model.MatchFoundEvent),
		clockTime:        clockTime,
		log:              log.With().Str("component", "game_manager").Logger(),
		stop:             make(chan struct{}),
		done:             make(chan struct{}),
	}

	go gm.processMatchmaking(interval)

	return gm
}

// Close stops matchmaking and closes every game's observers.
func (gm *GameManager) Close() {
	gm.stopOnce.Do(func() {
		close(gm.stop)
		<-gm.done

		gm.mu.RLock()
		games := maps.Values(gm.games)
		gm.mu.RUnlock()
		for _, game := range games {
			game.CloseConnections()
		}
	})
}

func (gm *GameManager) processMatchmaking(interval time.Duration) {
	defer close(gm.done)
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-gm.stop:
			return
		case <-ticker.C:
			for gm.matchOnce() {
			}
		}
	}
}

// matchOnce pairs the two longest-waiting players into an online game and
// notifies both. It reports whether a pair was made.
func (gm *GameManager) matchOnce() bool {
	first, second, ok := gm.queue.NextPair()
	if !ok {
		return false
	}

	game := gm.newGame(model.ModeOnline)
	firstSide, err := game.AddPlayer(first)
	if err != nil {
		gm.log.Error().Err(err).Msg("seating matched player")
		return true
	}
	secondSide, err := game.AddPlayer(second)
	if err != nil {
		gm.log.Error().Err(err).Msg("seating matched player")
		return true
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.games[game.ID] = game
	gm.notifyLocked(first, model.MatchFoundEvent{GameID: game.ID, Side: firstSide})
	gm.notifyLocked(second, model.MatchFoundEvent{GameID: game.ID, Side: secondSide})
	gm.log.Info().Str("game", game.ID).Str("near", first).Str("far", second).Int("games", len(gm.games)).Msg("match made")
	return true
}

// notifyLocked delivers event on the player's channel and retires the
// channel, or parks the event until a channel is registered.
func (gm *GameManager) notifyLocked(playerID string, event model.MatchFoundEvent) {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		gm.pending[playerID] = event
		return
	}
	delete(gm.matchingChannels, playerID)
	select {
	case ch <- event:
	default:
		gm.log.Warn().Str("player", playerID).Msg("matchmaking channel full, parking event")
		gm.pending[playerID] = event
	}
	close(ch)
}

// RegisterMatchmakingChannel sets the channel a player's match is delivered
// on. The channel needs a buffer of at least one and is closed after delivery.
func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan model.MatchFoundEvent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, ok := gm.matchingChannels[playerID]; ok {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch

	if event, ok := gm.pending[playerID]; ok {
		delete(gm.pending, playerID)
		gm.notifyLocked(playerID, event)
	}
}

// UnregisterMatchmakingChannel forgets ch if it is still the player's channel.
// The caller keeps ownership of ch.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan model.MatchFoundEvent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if current, ok := gm.matchingChannels[playerID]; ok && current == ch {
		delete(gm.matchingChannels, playerID)
	}
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	if err := gm.queue.AddPlayer(playerID); err != nil {
		return err
	}
	gm.log.Debug().Str("player", playerID).Int("queued", gm.queue.Size()).Msg("player queued")
	return nil
}

func (gm *GameManager) LeaveMatchmaking(playerID string) {
	gm.queue.Remove(playerID)
}

func (gm *GameManager) newGame(mode model.GameMode) *model.Game {
	return model.NewGame(uuid.New().String(), mode, gm.clockTime, gm.log)
}

// CreateGame registers a new game with a fresh id.
func (gm *GameManager) CreateGame(mode model.GameMode) (*model.Game, error) {
	game := gm.newGame(mode)
	if err := gm.addGame(game); err != nil {
		return nil, err
	}
	return game, nil
}

func (gm *GameManager) addGame(game *model.Game) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[game.ID]; exists {
		return fmt.Errorf("%w: %s", ErrGameExists, game.ID)
	}
	gm.games[game.ID] = game
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}

	return game, nil
}
