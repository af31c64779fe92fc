package multiplayer

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pong/internal/core"
)

// RoomEndReason describes why a room closed.
type RoomEndReason int

const (
	RoomEndCompleted  RoomEndReason = iota // The authoritative side reported game over
	RoomEndDisconnect                      // A peer disconnected
	RoomEndStopped                         // The coordinator shut down
)

func (r RoomEndReason) String() string {
	switch r {
	case RoomEndCompleted:
		return "completed"
	case RoomEndDisconnect:
		return "disconnect"
	case RoomEndStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// RoomResult is the outcome of a relayed match as observed by the coordinator.
type RoomResult struct {
	Code     string
	Reason   RoomEndReason
	Winner   core.Side // -1 without a winner
	Scores   [2]int
	Messages uint64
	Duration time.Duration
}

// Room forwards state messages between two paired peers. The side of every
// forwarded message is overwritten with the sender's seat, so a peer cannot
// impersonate the authoritative side.
type Room struct {
	code   string
	peers  [2]Channel
	logger *log.Logger

	mu       sync.Mutex
	scores   [2]int
	winner   core.Side
	over     bool
	messages uint64
	started  time.Time

	done     chan struct{}
	doneOnce sync.Once
}

// NewRoom pairs host (authoritative side) and joiner.
func NewRoom(code string, host, joiner Channel, logger *log.Logger) *Room {
	if logger == nil {
		logger = log.Default()
	}
	return &Room{
		code:    code,
		peers:   [2]Channel{host, joiner},
		logger:  logger.With("code", code),
		winner:  -1,
		started: time.Now(),
		done:    make(chan struct{}),
	}
}

// Code returns the join code the room was created from.
func (r *Room) Code() string {
	return r.code
}

// Run relays messages until a peer disconnects, the match ends, or Stop is
// called. onComplete receives the result exactly once.
func (r *Room) Run(onComplete func(RoomResult)) {
	var wg sync.WaitGroup
	reasons := make(chan RoomEndReason, 2)

	for side := range r.peers {
		wg.Add(1)
		go func(from core.Side) {
			defer wg.Done()
			reasons <- r.pump(from)
		}(core.Side(side))
	}

	reason := <-reasons
	r.Stop()
	wg.Wait()

	if reason == RoomEndDisconnect {
		for _, p := range r.peers {
			select {
			case <-p.Done():
			default:
				_ = p.Send(Message{Type: MsgPeerLeft}) //nolint:errcheck // peer may be gone
			}
		}
	}

	result := r.result(reason)
	r.logger.Info("room closed", "reason", result.Reason, "scores", result.Scores, "messages", result.Messages)
	if onComplete != nil {
		onComplete(result)
	}
}

// pump forwards messages from one seat to the other.
func (r *Room) pump(from core.Side) RoomEndReason {
	src, dst := r.peers[from], r.peers[from.Opponent()]
	for {
		select {
		case msg, ok := <-src.Inbound():
			if !ok {
				return RoomEndDisconnect
			}
			if !msg.IsState() {
				continue
			}
			msg.Side = from
			r.observe(msg)
			if err := dst.Send(msg); err != nil {
				return RoomEndDisconnect
			}
			if msg.Type == MsgGameOver && from == AuthoritativeSide {
				return RoomEndCompleted
			}
		case <-src.Done():
			return RoomEndDisconnect
		case <-r.done:
			return RoomEndStopped
		}
	}
}

// observe tracks scores reported by the authoritative side.
func (r *Room) observe(msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages++
	if msg.Side != AuthoritativeSide {
		return
	}
	switch msg.Type {
	case MsgScore:
		var p ScorePayload
		if msg.DecodePayload(&p) == nil {
			r.scores = p.Scores
		}
	case MsgGameOver:
		var p GameOverPayload
		if msg.DecodePayload(&p) == nil && p.Winner.Valid() {
			r.scores = p.Scores
			r.winner = p.Winner
			r.over = true
		}
	}
}

func (r *Room) result(reason RoomEndReason) RoomResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.over {
		reason = RoomEndCompleted
	}
	return RoomResult{
		Code:     r.code,
		Reason:   reason,
		Winner:   r.winner,
		Scores:   r.scores,
		Messages: r.messages,
		Duration: time.Since(r.started),
	}
}

// Stop ends the relay loops.
func (r *Room) Stop() {
	r.doneOnce.Do(func() {
		close(r.done)
	})
}

// Done is closed once the room stops relaying.
func (r *Room) Done() <-chan struct{} {
	return r.done
}
