// Package multiplayer provides remote play: the wire messages exchanged by two
// peers, the channels carrying them, the engine relay that publishes and applies
// state, and the lobby coordinator that pairs peers by join code.
package multiplayer

import (
	"encoding/json"
	"fmt"

	"github.com/vovakirdan/tui-pong/internal/core"
)

// MessageType tags a Message.
type MessageType string

// Lobby handshake messages, sent by the coordinator.
const (
	MsgHello    MessageType = "hello"     // Lobby created, carries the join code
	MsgStart    MessageType = "start"     // Opponent paired, carries the assigned side
	MsgError    MessageType = "error"     // Lobby operation failed
	MsgPeerLeft MessageType = "peer_left" // Opponent disconnected
)

// Game state messages, exchanged between peers.
const (
	MsgPaddle   MessageType = "paddle"
	MsgBall     MessageType = "ball"
	MsgScore    MessageType = "score"
	MsgGameOver MessageType = "game_over"
)

// AuthoritativeSide is the side whose ball, score and game-over messages are
// trusted. The lobby host always plays it.
const AuthoritativeSide = core.SideLeft

// Message is the JSON envelope for everything sent over a Channel.
// Seq is monotonic per sender; receivers drop messages at or below the last
// applied Seq of the same type.
type Message struct {
	Type    MessageType     `json:"type"`
	Seq     uint64          `json:"seq,omitempty"`
	Side    core.Side       `json:"side"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// PaddlePayload carries a paddle position.
type PaddlePayload struct {
	Y float64 `json:"y"`
}

// BallPayload carries the authoritative ball state.
type BallPayload struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

// ScorePayload carries both scores.
type ScorePayload struct {
	Scores [2]int `json:"scores"`
}

// GameOverPayload carries the final result.
type GameOverPayload struct {
	Winner core.Side `json:"winner"`
	Scores [2]int    `json:"scores"`
}

// HelloPayload is sent to a host once its lobby exists.
type HelloPayload struct {
	Code string `json:"code"`
}

// StartPayload is sent to both peers when the match begins.
type StartPayload struct {
	Code     string    `json:"code"`
	Side     core.Side `json:"side"`
	MaxScore int       `json:"max_score,omitempty"`
}

// ErrorPayload describes a failed lobby operation.
type ErrorPayload struct {
	Message string `json:"message"`
}

// NewMessage builds a message with a JSON-encoded payload.
func NewMessage(t MessageType, side core.Side, seq uint64, payload any) (Message, error) {
	msg := Message{Type: t, Seq: seq, Side: side}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Message{}, fmt.Errorf("multiplayer: encode %s payload: %w", t, err)
		}
		msg.Payload = data
	}
	return msg, nil
}

// DecodePayload unmarshals the payload into v.
func (m Message) DecodePayload(v any) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("multiplayer: %s message has no payload", m.Type)
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("multiplayer: decode %s payload: %w", m.Type, err)
	}
	return nil
}

// IsState reports whether the message carries game state relayed between peers.
func (m Message) IsState() bool {
	switch m.Type {
	case MsgPaddle, MsgBall, MsgScore, MsgGameOver:
		return true
	default:
		return false
	}
}

// Encode serializes a message for the wire.
func Encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// Decode parses a wire message.
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("multiplayer: decode message: %w", err)
	}
	if msg.Type == "" {
		return Message{}, fmt.Errorf("multiplayer: message without type")
	}
	return msg, nil
}
