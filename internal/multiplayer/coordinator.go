package multiplayer

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pong/internal/core"
)

// Lobby errors.
var (
	ErrLobbyNotFound = errors.New("multiplayer: lobby not found")
	ErrLobbyFull     = errors.New("multiplayer: lobby is full")
	ErrStopped       = errors.New("multiplayer: coordinator stopped")
)

// Lobby is a host waiting for an opponent.
type Lobby struct {
	Code      string
	Host      Channel
	CreatedAt time.Time
}

// CoordinatorConfig holds configuration for the coordinator.
type CoordinatorConfig struct {
	LobbyTimeout  time.Duration // How long a lobby waits for a joiner
	CleanupPeriod time.Duration // How often expired lobbies are removed
	MaxScore      int           // Announced to both peers on start
}

// DefaultCoordinatorConfig returns sensible defaults.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		LobbyTimeout:  2 * time.Minute,
		CleanupPeriod: 30 * time.Second,
		MaxScore:      5,
	}
}

// ResultSaver persists finished rooms. Optional.
type ResultSaver interface {
	SaveRoomResult(ctx context.Context, result RoomResult) error
}

// Stats are live coordinator counters.
type Stats struct {
	Lobbies        int    `json:"lobbies"`
	Rooms          int    `json:"rooms"`
	CompletedRooms uint64 `json:"completed_rooms"`
}

// Coordinator pairs peers by join code and relays their messages.
type Coordinator struct {
	config CoordinatorConfig
	saver  ResultSaver
	logger *log.Logger

	mu        sync.RWMutex
	lobbies   map[string]*Lobby
	rooms     map[string]*Room
	completed uint64
	stopped   bool

	wg   sync.WaitGroup
	done chan struct{}
}

// NewCoordinator creates a new coordinator.
func NewCoordinator(cfg CoordinatorConfig, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	return &Coordinator{
		config:  cfg,
		logger:  logger,
		lobbies: make(map[string]*Lobby),
		rooms:   make(map[string]*Room),
		done:    make(chan struct{}),
	}
}

// SetResultSaver sets the optional room result saver.
func (c *Coordinator) SetResultSaver(saver ResultSaver) {
	c.saver = saver
}

// Start begins periodic lobby cleanup.
func (c *Coordinator) Start() {
	go c.cleanupLoop()
}

// Stop closes every lobby and room and waits for rooms to finish.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	close(c.done)
	for code, lobby := range c.lobbies {
		_ = lobby.Host.Close() //nolint:errcheck // shutting down
		delete(c.lobbies, code)
	}
	rooms := make([]*Room, 0, len(c.rooms))
	for _, room := range c.rooms {
		rooms = append(rooms, room)
	}
	c.mu.Unlock()

	for _, room := range rooms {
		room.Stop()
	}
	c.wg.Wait()
}

// CreateLobby registers host as waiting and sends it the join code.
func (c *Coordinator) CreateLobby(host Channel) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return "", ErrStopped
	}

	code := c.generateUniqueCode()
	c.lobbies[code] = &Lobby{Code: code, Host: host, CreatedAt: time.Now()}

	msg, err := NewMessage(MsgHello, AuthoritativeSide, 0, HelloPayload{Code: code})
	if err != nil {
		return "", err
	}
	_ = host.Send(msg) //nolint:errcheck // a closed host is removed below

	go c.watchLobby(code, host)
	c.logger.Info("lobby created", "code", code)
	return code, nil
}

// Join pairs joiner with the lobby's host and starts relaying.
func (c *Coordinator) Join(code string, joiner Channel) error {
	code = strings.ToUpper(strings.TrimSpace(code))

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return ErrStopped
	}
	lobby, ok := c.lobbies[code]
	if !ok {
		c.mu.Unlock()
		if _, active := c.room(code); active {
			return fmt.Errorf("%w: %s", ErrLobbyFull, code)
		}
		return fmt.Errorf("%w: %s", ErrLobbyNotFound, code)
	}
	delete(c.lobbies, code)

	room := NewRoom(code, lobby.Host, joiner, c.logger)
	c.rooms[code] = room
	c.wg.Add(1)
	c.mu.Unlock()

	for side, peer := range []Channel{lobby.Host, joiner} {
		msg, err := NewMessage(MsgStart, AuthoritativeSide, 0, StartPayload{
			Code:     code,
			Side:     core.Side(side),
			MaxScore: c.config.MaxScore,
		})
		if err == nil {
			_ = peer.Send(msg) //nolint:errcheck // the room notices closed peers
		}
	}
	c.logger.Info("lobby paired", "code", code)

	go func() {
		defer c.wg.Done()
		room.Run(func(result RoomResult) {
			c.roomEnded(room, result)
		})
	}()
	return nil
}

func (c *Coordinator) room(code string) (*Room, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.rooms[code]
	return r, ok
}

func (c *Coordinator) roomEnded(room *Room, result RoomResult) {
	c.mu.Lock()
	delete(c.rooms, room.Code())
	c.completed++
	c.mu.Unlock()

	if c.saver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.saver.SaveRoomResult(ctx, result); err != nil {
		c.logger.Error("failed to save room result", "code", result.Code, "err", err)
	}
}

// watchLobby removes a lobby whose host disconnects before anyone joins.
func (c *Coordinator) watchLobby(code string, host Channel) {
	select {
	case <-host.Done():
	case <-c.done:
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if lobby, ok := c.lobbies[code]; ok && lobby.Host == host {
		delete(c.lobbies, code)
		c.logger.Info("lobby host left", "code", code)
	}
}

func (c *Coordinator) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpiredLobbies(time.Now())
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) cleanupExpiredLobbies(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for code, lobby := range c.lobbies {
		if now.Sub(lobby.CreatedAt) > c.config.LobbyTimeout {
			if msg, err := NewMessage(MsgError, AuthoritativeSide, 0, ErrorPayload{Message: "lobby expired"}); err == nil {
				_ = lobby.Host.Send(msg) //nolint:errcheck // host may be gone
			}
			delete(c.lobbies, code)
			c.logger.Info("lobby expired", "code", code)
		}
	}
}

// Must be called with the lock held.
func (c *Coordinator) generateUniqueCode() string {
	for {
		code := generateJoinCode()
		_, lobby := c.lobbies[code]
		_, room := c.rooms[code]
		if !lobby && !room {
			return code
		}
	}
}

// generateJoinCode creates a 6-character uppercase alphanumeric code.
func generateJoinCode() string {
	b := make([]byte, 4) // 4 bytes = 32 bits, base32 encodes to 8 chars, we take 6
	_, err := rand.Read(b)
	if err != nil {
		return fmt.Sprintf("%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	return strings.ToUpper(base32.StdEncoding.EncodeToString(b)[:6])
}

// Stats returns a snapshot of the coordinator counters.
func (c *Coordinator) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Lobbies:        len(c.lobbies),
		Rooms:          len(c.rooms),
		CompletedRooms: c.completed,
	}
}

// HasLobby reports whether a lobby with code is waiting.
func (c *Coordinator) HasLobby(code string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.lobbies[strings.ToUpper(code)]
	return ok
}
