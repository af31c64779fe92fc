package multiplayer

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/games/pong"
)

// Relay mirrors a local engine to a remote peer through a Channel.
//
// Each tick it drains inbound messages before paddles move, publishes the
// local paddle when it moved, and, on the authoritative side, publishes the
// ball every tick and the scores when they change. The non-authoritative side
// disables local scoring and adopts the peer's ball and scores.
type Relay struct {
	ch     Channel
	side   core.Side
	logger *log.Logger

	seq      uint64
	lastSeq  map[MessageType]uint64
	lastY    float64
	sentY    bool
	scores   [2]int
	sentOver bool
	gone     bool
	onGone   []func()
}

// NewRelay creates a relay for the local side.
func NewRelay(ch Channel, side core.Side, logger *log.Logger) *Relay {
	if logger == nil {
		logger = log.Default()
	}
	return &Relay{
		ch:      ch,
		side:    side,
		logger:  logger.With("side", side),
		lastSeq: make(map[MessageType]uint64),
	}
}

// Side returns the local side.
func (r *Relay) Side() core.Side {
	return r.side
}

// Authoritative reports whether the local side owns ball and score state.
func (r *Relay) Authoritative() bool {
	return r.side == AuthoritativeSide
}

// PeerGone reports whether the peer disconnected or the channel closed.
func (r *Relay) PeerGone() bool {
	return r.gone
}

// OnPeerGone registers a callback fired once when the peer goes away.
func (r *Relay) OnPeerGone(fn func()) {
	r.onGone = append(r.onGone, fn)
}

// Attach registers the relay hooks on e.
func (r *Relay) Attach(e *pong.Engine) {
	e.SetScoringEnabled(r.Authoritative())
	e.AddHooks(pong.Hooks{
		PrePaddle: r.drain,
		PostBall:  r.publishMotion,
		PostScore: r.publishScore,
	})
	if r.Authoritative() {
		e.OnGameOver(func(winner core.Side) {
			r.publishGameOver(winner, e.Scores())
		})
	}
}

// Close closes the channel.
func (r *Relay) Close() error {
	return r.ch.Close()
}

// drain applies every queued inbound message. Messages queued before the
// channel closed are applied before the peer is treated as gone.
func (r *Relay) drain(e *pong.Engine) {
	for pending := true; pending; {
		select {
		case msg := <-r.ch.Inbound():
			r.apply(e, msg)
		default:
			pending = false
		}
	}
	select {
	case <-r.ch.Done():
		r.peerGone(e)
	default:
	}
}

// apply applies one inbound message. Stale messages and state the sender
// has no authority over are dropped.
func (r *Relay) apply(e *pong.Engine, msg Message) {
	if msg.Type == MsgPeerLeft {
		r.peerGone(e)
		return
	}
	if !msg.IsState() || msg.Side == r.side {
		return
	}
	if msg.Seq <= r.lastSeq[msg.Type] {
		r.logger.Debug("dropping stale message", "type", msg.Type, "seq", msg.Seq)
		return
	}
	if msg.Type != MsgPaddle && msg.Side != AuthoritativeSide {
		r.logger.Debug("dropping unauthorized message", "type", msg.Type, "from", msg.Side)
		return
	}

	switch msg.Type {
	case MsgPaddle:
		var p PaddlePayload
		if err := msg.DecodePayload(&p); err != nil {
			r.logger.Warn("bad paddle message", "err", err)
			return
		}
		e.ApplyPaddle(msg.Side, p.Y)
	case MsgBall:
		var b BallPayload
		if err := msg.DecodePayload(&b); err != nil {
			r.logger.Warn("bad ball message", "err", err)
			return
		}
		e.ApplyBall(b.X, b.Y, b.VX, b.VY)
	case MsgScore:
		var s ScorePayload
		if err := msg.DecodePayload(&s); err != nil {
			r.logger.Warn("bad score message", "err", err)
			return
		}
		r.scores = s.Scores
		e.ApplyScores(s.Scores)
	case MsgGameOver:
		var g GameOverPayload
		if err := msg.DecodePayload(&g); err != nil {
			r.logger.Warn("bad game over message", "err", err)
			return
		}
		r.scores = g.Scores
		e.ApplyScores(g.Scores)
		e.ApplyGameOver(g.Winner)
	}
	r.lastSeq[msg.Type] = msg.Seq
}

func (r *Relay) publishMotion(e *pong.Engine) {
	s := e.State()
	if y := s.Paddles[r.side].Y; !r.sentY || y != r.lastY {
		r.send(MsgPaddle, PaddlePayload{Y: y})
		r.lastY, r.sentY = y, true
	}
	if r.Authoritative() {
		b := s.Ball
		r.send(MsgBall, BallPayload{X: b.X, Y: b.Y, VX: b.VX, VY: b.VY})
	}
}

func (r *Relay) publishScore(e *pong.Engine) {
	if !r.Authoritative() {
		return
	}
	if scores := e.Scores(); scores != r.scores {
		r.scores = scores
		r.send(MsgScore, ScorePayload{Scores: scores})
	}
}

func (r *Relay) publishGameOver(winner core.Side, scores [2]int) {
	if r.sentOver {
		return
	}
	r.sentOver = true
	r.send(MsgGameOver, GameOverPayload{Winner: winner, Scores: scores})
}

func (r *Relay) send(t MessageType, payload any) {
	if r.gone {
		return
	}
	r.seq++
	msg, err := NewMessage(t, r.side, r.seq, payload)
	if err != nil {
		r.logger.Warn("encode failed", "type", t, "err", err)
		return
	}
	if err := r.ch.Send(msg); err != nil {
		r.logger.Debug("send failed", "type", t, "err", err)
	}
}

func (r *Relay) peerGone(e *pong.Engine) {
	if r.gone {
		return
	}
	r.gone = true
	r.logger.Info("peer disconnected")
	e.Pause()
	for _, fn := range r.onGone {
		fn()
	}
}
