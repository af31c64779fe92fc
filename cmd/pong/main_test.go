package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/tournament"
)

func TestParseSide(t *testing.T) {
	tests := []struct {
		in      string
		want    core.Side
		wantErr bool
	}{
		{"left", core.SideLeft, false},
		{"l", core.SideLeft, false},
		{"right", core.SideRight, false},
		{"r", core.SideRight, false},
		{"middle", 0, true},
	}

	for _, tt := range tests {
		got, err := parseSide(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSide(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseSide(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWinnerLabel(t *testing.T) {
	if got := winnerLabel(0); got != "Left" {
		t.Errorf("winnerLabel(0) = %q, want Left", got)
	}
	if got := winnerLabel(1); got != "Right" {
		t.Errorf("winnerLabel(1) = %q, want Right", got)
	}
	if got := winnerLabel(-1); got != "-" {
		t.Errorf("winnerLabel(-1) = %q, want -", got)
	}
}

func TestRoundName(t *testing.T) {
	tests := []struct {
		round, rounds int
		want          string
	}{
		{0, 3, "Round 1"},
		{1, 3, "Semifinals"},
		{2, 3, "Final"},
		{0, 1, "Final"},
	}
	for _, tt := range tests {
		if got := roundName(tt.round, tt.rounds); got != tt.want {
			t.Errorf("roundName(%d, %d) = %q, want %q", tt.round, tt.rounds, got, tt.want)
		}
	}
}

func TestFindMatch(t *testing.T) {
	b, err := tournament.New("cup", []string{"alice", "bob", "carol", "dave"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	first := b.Rounds[0][0]

	got, err := findMatch(b, first.ID)
	if err != nil || got.ID != first.ID {
		t.Errorf("findMatch(full ID) = %v, %v", got.ID, err)
	}

	got, err = findMatch(b, first.ID[:12])
	if err != nil || got.ID != first.ID {
		t.Errorf("findMatch(prefix) = %v, %v", got.ID, err)
	}

	if _, err := findMatch(b, "not-a-match"); !errors.Is(err, tournament.ErrMatchNotFound) {
		t.Errorf("findMatch(unknown) error = %v, want %v", err, tournament.ErrMatchNotFound)
	}

	if _, err := findMatch(b, ""); err == nil {
		t.Error("findMatch(\"\") should be ambiguous")
	}
}

func TestPrintBracket(t *testing.T) {
	b, err := tournament.New("cup", []string{"alice", "bob", "carol"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var buf bytes.Buffer
	printBracket(&buf, b)
	out := buf.String()

	for _, want := range []string{"Semifinals", "Final", "alice", "bye", "ready", "waiting"} {
		if !strings.Contains(out, want) {
			t.Errorf("bracket output missing %q:\n%s", want, out)
		}
	}
}
