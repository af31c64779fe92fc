package multiplayer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pong/internal/core"
)

func TestServerLobbyOverWebSocket(t *testing.T) {
	c := newTestCoordinator()
	defer c.Stop()
	srv := httptest.NewServer(NewServer(c, log.New(io.Discard)).Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	host, err := Dial(ctx, srv.URL, "", log.New(io.Discard))
	if err != nil {
		t.Fatalf("Dial(host) error = %v", err)
	}
	defer host.Close() //nolint:errcheck // test cleanup

	codes := make(chan string, 1)
	hostStart := make(chan StartPayload, 1)
	go func() {
		sp, err := AwaitStart(ctx, host, func(code string) { codes <- code })
		if err == nil {
			hostStart <- sp
		}
	}()

	var code string
	select {
	case code = <-codes:
	case <-ctx.Done():
		t.Fatal("no join code received")
	}

	joiner, err := Dial(ctx, srv.URL, code, log.New(io.Discard))
	if err != nil {
		t.Fatalf("Dial(joiner) error = %v", err)
	}
	defer joiner.Close() //nolint:errcheck // test cleanup

	js, err := AwaitStart(ctx, joiner, nil)
	if err != nil {
		t.Fatalf("AwaitStart(joiner) error = %v", err)
	}
	if js.Side != core.SideRight || js.Code != code {
		t.Errorf("joiner start = %+v", js)
	}

	select {
	case hs := <-hostStart:
		if hs.Side != core.SideLeft {
			t.Errorf("host side = %v, expected left", hs.Side)
		}
	case <-ctx.Done():
		t.Fatal("host never started")
	}

	msg, _ := NewMessage(MsgPaddle, core.SideRight, 1, PaddlePayload{Y: 123})
	_ = joiner.Send(msg)
	select {
	case got := <-host.Inbound():
		var p PaddlePayload
		if got.Type != MsgPaddle || got.DecodePayload(&p) != nil || p.Y != 123 {
			t.Errorf("host got %+v", got)
		}
	case <-ctx.Done():
		t.Fatal("paddle message not relayed")
	}

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck // test cleanup
	var stats Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode /health: %v", err)
	}
	if stats.Rooms != 1 {
		t.Errorf("health rooms = %d, expected 1", stats.Rooms)
	}
}

func TestServerRejectsUnknownCode(t *testing.T) {
	c := newTestCoordinator()
	defer c.Stop()
	srv := httptest.NewServer(NewServer(c, log.New(io.Discard)).Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := Dial(ctx, srv.URL, "ZZZZZZ", log.New(io.Discard))
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer ch.Close() //nolint:errcheck // test cleanup

	if _, err := AwaitStart(ctx, ch, nil); !errors.Is(err, ErrRejected) && !errors.Is(err, ErrChannelClosed) {
		t.Errorf("AwaitStart() error = %v, expected rejection", err)
	}
}
