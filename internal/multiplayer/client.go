package multiplayer

import (
	"context"
	"errors"
	"fmt"
)

// ErrRejected is returned when the relay refuses a lobby operation.
var ErrRejected = errors.New("multiplayer: rejected by relay")

// AwaitStart consumes handshake messages until the match starts. onHello, if
// set, receives the join code when the relay created a lobby for this peer.
func AwaitStart(ctx context.Context, ch Channel, onHello func(code string)) (StartPayload, error) {
	for {
		select {
		case msg := <-ch.Inbound():
			switch msg.Type {
			case MsgHello:
				var p HelloPayload
				if err := msg.DecodePayload(&p); err != nil {
					return StartPayload{}, err
				}
				if onHello != nil {
					onHello(p.Code)
				}
			case MsgStart:
				var p StartPayload
				if err := msg.DecodePayload(&p); err != nil {
					return StartPayload{}, err
				}
				if !p.Side.Valid() {
					return StartPayload{}, fmt.Errorf("multiplayer: invalid side %d", p.Side)
				}
				return p, nil
			case MsgError:
				var p ErrorPayload
				_ = msg.DecodePayload(&p) //nolint:errcheck // message is optional
				return StartPayload{}, fmt.Errorf("%w: %s", ErrRejected, p.Message)
			}
		case <-ch.Done():
			return StartPayload{}, ErrChannelClosed
		case <-ctx.Done():
			return StartPayload{}, ctx.Err()
		}
	}
}
