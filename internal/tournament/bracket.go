// Package tournament runs single-elimination brackets over pong matches.
package tournament

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"github.com/google/uuid"

	"github.com/vovakirdan/tui-pong/internal/core"
)

var (
	ErrTooFewPlayers = errors.New("tournament: at least two players required")
	ErrInvalidPlayer = errors.New("tournament: invalid player name")
	ErrMatchNotFound = errors.New("tournament: match not found")
	ErrMatchNotReady = errors.New("tournament: match is waiting for players")
	ErrMatchDecided  = errors.New("tournament: match already decided")
	ErrInvalidResult = errors.New("tournament: invalid result")
	ErrNotFound      = errors.New("tournament: not found")
)

// Match is one bracket slot. Players[i] plays side i; an empty name is a bye.
type Match struct {
	ID      string
	Round   int
	Slot    int
	Players [2]string
	Scores  [2]int
	Winner  core.Side // -1 until decided
}

// Decided reports whether the match has a winner.
func (m Match) Decided() bool {
	return m.Winner.Valid()
}

// Playable reports whether both players are known and no winner is set.
func (m Match) Playable() bool {
	return !m.Decided() && m.Players[0] != "" && m.Players[1] != ""
}

// WinnerName returns the name of the winning player, or "".
func (m Match) WinnerName() string {
	if !m.Decided() {
		return ""
	}
	return m.Players[m.Winner]
}

// Bracket is a single-elimination tournament.
type Bracket struct {
	ID       string
	Name     string
	Size     int       // Power of two
	Rounds   [][]Match // Rounds[0] is the opening round
	Champion string
}

// New builds a bracket for the given players. The list is padded with byes
// to the next power of two; the first players in the list receive the byes.
func New(name string, players []string) (*Bracket, error) {
	if len(players) < 2 {
		return nil, ErrTooFewPlayers
	}
	seen := make(map[string]bool, len(players))
	for _, p := range players {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPlayer, p)
		}
		seen[p] = true
	}

	size := 1 << bits.Len(uint(len(players)-1))
	seeds := make([]string, size)
	for i, p := range players {
		seeds[i] = strings.TrimSpace(p)
	}

	b := &Bracket{
		ID:   uuid.NewString(),
		Name: name,
		Size: size,
	}

	rounds := bits.Len(uint(size)) - 1
	b.Rounds = make([][]Match, rounds)
	for r := range rounds {
		n := size >> (r + 1)
		b.Rounds[r] = make([]Match, n)
		for s := range n {
			b.Rounds[r][s] = Match{ID: uuid.NewString(), Round: r, Slot: s, Winner: -1}
		}
	}

	// Seed i meets seed size-1-i, so byes never meet each other.
	for s := range b.Rounds[0] {
		m := &b.Rounds[0][s]
		m.Players = [2]string{seeds[s], seeds[size-1-s]}
	}
	for s := range b.Rounds[0] {
		m := &b.Rounds[0][s]
		if m.Players[1] == "" {
			m.Winner = core.SideLeft
			b.advance(*m)
		}
	}
	return b, nil
}

// Pending returns the matches that can be played now, in bracket order.
func (b *Bracket) Pending() []Match {
	var out []Match
	for _, round := range b.Rounds {
		for _, m := range round {
			if m.Playable() {
				out = append(out, m)
			}
		}
	}
	return out
}

// Match looks up a match by ID.
func (b *Bracket) Match(id string) (Match, bool) {
	if m := b.find(id); m != nil {
		return *m, true
	}
	return Match{}, false
}

// Submit records the result of a playable match and advances its winner.
func (b *Bracket) Submit(matchID string, winner core.Side, scores [2]int) error {
	m := b.find(matchID)
	if m == nil {
		return fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if m.Decided() {
		return ErrMatchDecided
	}
	if !m.Playable() {
		return ErrMatchNotReady
	}
	if !winner.Valid() || scores[0] < 0 || scores[1] < 0 || scores[winner] < scores[winner.Opponent()] {
		return fmt.Errorf("%w: winner %v with %v", ErrInvalidResult, winner, scores)
	}

	m.Winner = winner
	m.Scores = scores
	b.advance(*m)
	return nil
}

// Done reports whether a champion has been decided.
func (b *Bracket) Done() bool {
	return b.Champion != ""
}

func (b *Bracket) advance(m Match) {
	name := m.WinnerName()
	if m.Round == len(b.Rounds)-1 {
		b.Champion = name
		return
	}
	next := &b.Rounds[m.Round+1][m.Slot/2]
	next.Players[m.Slot%2] = name
}

func (b *Bracket) find(id string) *Match {
	for r := range b.Rounds {
		for s := range b.Rounds[r] {
			if b.Rounds[r][s].ID == id {
				return &b.Rounds[r][s]
			}
		}
	}
	return nil
}
