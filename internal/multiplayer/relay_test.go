package multiplayer

import (
	"math/rand"
	"testing"
	"time"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/games/pong"
)

type testPeer struct {
	engine *pong.Engine
	relay  *Relay
	now    time.Time
}

func newTestPeer(t *testing.T, ch Channel, side core.Side, seed int64) *testPeer {
	t.Helper()
	p := &testPeer{now: time.Unix(0, 0)}
	e, err := pong.New(config.DefaultPongConfig(), core.NewScreenCanvas(core.NewScreen(80, 24)),
		pong.WithClock(func() time.Time { return p.now }),
		pong.WithRand(rand.New(rand.NewSource(seed))))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	p.engine = e
	p.relay = NewRelay(ch, side, nil)
	p.relay.Attach(e)
	return p
}

func (p *testPeer) tick() {
	p.now = p.now.Add(time.Second / 60)
	p.engine.Tick()
}

func newPeerPair(t *testing.T) (*testPeer, *testPeer) {
	t.Helper()
	a, b := NewPipe(256)
	host := newTestPeer(t, a, core.SideLeft, 1)
	guest := newTestPeer(t, b, core.SideRight, 2)
	host.engine.Start()
	guest.engine.Start()
	return host, guest
}

func TestRelayMirrorsBall(t *testing.T) {
	host, guest := newPeerPair(t)
	if !host.relay.Authoritative() || guest.relay.Authoritative() {
		t.Fatal("host must be authoritative, guest not")
	}

	hs := host.engine.State()
	hs.Ball.X, hs.Ball.Y, hs.Ball.VX, hs.Ball.VY = 300, 200, 5, 3

	host.tick()
	guest.tick()

	hb, gb := hs.Ball, guest.engine.State().Ball
	// The guest adopts the ball at the tick boundary, then advances it once.
	if gb.X != hb.X+hb.VX || gb.Y != hb.Y+hb.VY {
		t.Errorf("guest ball = (%v,%v), expected (%v,%v)", gb.X, gb.Y, hb.X+hb.VX, hb.Y+hb.VY)
	}
}

func TestRelayMirrorsPaddles(t *testing.T) {
	host, guest := newPeerPair(t)

	guest.engine.State().Paddles[core.SideRight].Y = 40
	guest.tick()
	host.tick()
	if y := host.engine.State().Paddles[core.SideRight].Y; y != 40 {
		t.Errorf("host sees guest paddle at %v, expected 40", y)
	}

	host.engine.State().Paddles[core.SideLeft].Y = 420
	host.tick()
	guest.tick()
	if y := guest.engine.State().Paddles[core.SideLeft].Y; y != 420 {
		t.Errorf("guest sees host paddle at %v, expected 420", y)
	}
}

func TestRelayScoresAndGameOver(t *testing.T) {
	host, guest := newPeerPair(t)
	host.engine.SetMaxScore(1)
	guest.engine.SetMaxScore(1)

	var guestWinner core.Side = -1
	guest.engine.OnGameOver(func(w core.Side) { guestWinner = w })

	// Ball about to leave on the left with the left paddle out of the way.
	hs := host.engine.State()
	hs.Paddles[core.SideLeft].Y = 0
	hs.Ball.X, hs.Ball.Y, hs.Ball.VX, hs.Ball.VY = 12, 300, -5, 0

	host.tick()
	if host.engine.Lifecycle() != pong.Ended {
		t.Fatalf("host Lifecycle = %v, expected Ended", host.engine.Lifecycle())
	}
	guest.tick()

	if guest.engine.Scores() != [2]int{0, 1} {
		t.Errorf("guest scores = %v, expected [0 1]", guest.engine.Scores())
	}
	if guest.engine.Lifecycle() != pong.Ended || guestWinner != core.SideRight {
		t.Errorf("guest Lifecycle = %v winner = %v", guest.engine.Lifecycle(), guestWinner)
	}
}

func TestRelayGuestDoesNotScore(t *testing.T) {
	a, b := NewPipe(256)
	guest := newTestPeer(t, b, core.SideRight, 2)
	defer a.Close() //nolint:errcheck // test cleanup
	guest.engine.Start()

	gs := guest.engine.State()
	gs.Paddles[core.SideLeft].Y = 0
	gs.Ball.X, gs.Ball.Y, gs.Ball.VX, gs.Ball.VY = 12, 300, -5, 0
	guest.tick()

	if guest.engine.Scores() != [2]int{} {
		t.Errorf("guest scored locally: %v", guest.engine.Scores())
	}
}

func TestRelayDropsStaleAndUnauthorized(t *testing.T) {
	a, b := NewPipe(256)
	defer a.Close() //nolint:errcheck // test cleanup
	guest := newTestPeer(t, b, core.SideRight, 2)
	guest.engine.Start()
	e := guest.engine

	send := func(typ MessageType, side core.Side, seq uint64, payload any) {
		msg, err := NewMessage(typ, side, seq, payload)
		if err != nil {
			t.Fatalf("NewMessage() error = %v", err)
		}
		if err := a.Send(msg); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
	}

	send(MsgPaddle, core.SideLeft, 5, PaddlePayload{Y: 100})
	send(MsgPaddle, core.SideLeft, 4, PaddlePayload{Y: 300})
	guest.tick()
	if y := e.State().Paddles[core.SideLeft].Y; y != 100 {
		t.Errorf("paddle Y = %v, expected stale update dropped", y)
	}

	// Messages claiming the local side are ignored.
	send(MsgPaddle, core.SideRight, 7, PaddlePayload{Y: 0})
	before := e.State().Paddles[core.SideRight].Y
	guest.tick()
	if y := e.State().Paddles[core.SideRight].Y; y != before {
		t.Errorf("local paddle moved to %v by a peer message", y)
	}

	send(MsgScore, core.SideLeft, 6, ScorePayload{Scores: [2]int{1, 0}})
	guest.tick()
	if e.Scores() != [2]int{1, 0} {
		t.Errorf("scores = %v, expected [1 0]", e.Scores())
	}
}

func TestRelayHostIgnoresGuestBall(t *testing.T) {
	a, b := NewPipe(256)
	defer b.Close() //nolint:errcheck // test cleanup
	host := newTestPeer(t, a, core.SideLeft, 1)
	host.engine.Start()

	for _, typ := range []MessageType{MsgBall, MsgScore, MsgGameOver} {
		var payload any
		switch typ {
		case MsgBall:
			payload = BallPayload{X: 10, Y: 10, VX: 1, VY: 1}
		case MsgScore:
			payload = ScorePayload{Scores: [2]int{0, 4}}
		case MsgGameOver:
			payload = GameOverPayload{Winner: core.SideRight, Scores: [2]int{0, 5}}
		}
		msg, err := NewMessage(typ, core.SideRight, 1, payload)
		if err != nil {
			t.Fatalf("NewMessage() error = %v", err)
		}
		_ = b.Send(msg)
	}

	hs := host.engine.State()
	hs.Ball.X, hs.Ball.Y, hs.Ball.VX, hs.Ball.VY = 400, 300, 5, 0
	host.tick()

	if hs.Ball.X != 405 || hs.Ball.Y != 300 {
		t.Errorf("host ball = (%v,%v), expected its own simulation", hs.Ball.X, hs.Ball.Y)
	}
	if host.engine.Scores() != [2]int{} || host.engine.Lifecycle() != pong.Playing {
		t.Errorf("host scores = %v lifecycle = %v", host.engine.Scores(), host.engine.Lifecycle())
	}
}

func TestRelayPeerGonePauses(t *testing.T) {
	host, guest := newPeerPair(t)

	gone := 0
	guest.relay.OnPeerGone(func() { gone++ })

	_ = host.relay.Close()
	guest.tick()
	guest.tick()

	if !guest.relay.PeerGone() || gone != 1 {
		t.Errorf("PeerGone() = %v callbacks = %d", guest.relay.PeerGone(), gone)
	}
	if guest.engine.Lifecycle() != pong.Paused {
		t.Errorf("Lifecycle = %v, expected Paused", guest.engine.Lifecycle())
	}
}

func TestRelayGameOverBeforeClose(t *testing.T) {
	for i := 0; i < 50; i++ {
		a, b := NewPipe(8)
		guest := newTestPeer(t, b, core.SideRight, 2)
		guest.engine.Start()

		msg, err := NewMessage(MsgGameOver, core.SideLeft, 1,
			GameOverPayload{Winner: core.SideLeft, Scores: [2]int{5, 3}})
		if err != nil {
			t.Fatalf("NewMessage() error = %v", err)
		}
		_ = a.Send(msg)
		_ = a.Close()
		guest.tick()

		if guest.engine.Lifecycle() != pong.Ended {
			t.Fatalf("run %d: Lifecycle = %v, expected Ended", i, guest.engine.Lifecycle())
		}
		if s := guest.engine.State(); s.Winner != core.SideLeft || s.Scores != [2]int{5, 3} {
			t.Fatalf("run %d: winner = %v scores = %v", i, s.Winner, s.Scores)
		}
		if !guest.relay.PeerGone() {
			t.Fatalf("run %d: PeerGone() = false after close", i)
		}
	}
}

func TestRelayPeerLeftMessage(t *testing.T) {
	a, b := NewPipe(8)
	defer a.Close() //nolint:errcheck // test cleanup
	guest := newTestPeer(t, b, core.SideRight, 2)
	guest.engine.Start()

	_ = a.Send(Message{Type: MsgPeerLeft})
	guest.tick()
	if !guest.relay.PeerGone() || guest.engine.Lifecycle() != pong.Paused {
		t.Errorf("PeerGone() = %v Lifecycle = %v", guest.relay.PeerGone(), guest.engine.Lifecycle())
	}
}
