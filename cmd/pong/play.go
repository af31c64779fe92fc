package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/platform/tui"
	"github.com/vovakirdan/tui-pong/internal/session"
)

var (
	flagMode       string
	flagDifficulty string
	flagMaxScore   int
	flagSide       string
	flagRelayURL   string
	flagJoinCode   string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a match",
	Long: `Start a match of Pong.

Without --mode a menu lets you pick the opponent and browse match history.

Modes:
  ai      - Play against the AI (--difficulty easy, medium, hard)
  local   - Two players on one keyboard (W/S and Up/Down)
  remote  - Play online through a relay (--relay URL, --code to join)

Controls:
  W/S, Up/Down  - Move paddle
  Space/Enter   - Serve
  P/Esc         - Pause (not online)
  R             - Rematch
  Q/Ctrl+C      - Quit

Examples:
  pong play
  pong play --mode ai --difficulty hard
  pong play --mode local --max-score 11
  pong play --mode remote --relay ws://localhost:8080/ws
  pong play --mode remote --relay ws://localhost:8080/ws --code ABCDEF`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagMode, "mode", "", "Game mode: ai, local, remote (empty = menu)")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "AI difficulty: easy, medium, hard")
	playCmd.Flags().IntVar(&flagMaxScore, "max-score", 0, "Points needed to win (0 = config default)")
	playCmd.Flags().StringVar(&flagSide, "side", "left", "Your paddle against the AI: left or right")
	playCmd.Flags().StringVar(&flagRelayURL, "relay", "ws://localhost:8080/ws", "Relay WebSocket URL for remote mode")
	playCmd.Flags().StringVar(&flagJoinCode, "code", "", "Join code of a hosted remote match")
}

func runPlay(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	if flagMaxScore > 0 {
		cfg.Gameplay.MaxScore = flagMaxScore
	}

	logger, closeLog := newLogger("pong", io.Discard)
	defer closeLog()

	width, height := terminalSize()
	view := tui.View{Width: width, Height: height, Logger: logger}

	// Open match storage
	store := openStore()
	if store != nil {
		defer store.Close()
		view.Saver = store
	}

	var err error
	if flagMode == "" {
		// A nil *Store must not become a non-nil interface.
		var appStore tui.AppStore
		if store != nil {
			appStore = store
		}
		err = tui.RunApp(cfg, appStore, view)
	} else {
		err = playMode(cfg, view)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		os.Exit(1)
	}
}

func playMode(cfg config.PongConfig, view tui.View) error {
	mode, err := session.ParseMode(flagMode)
	if err != nil {
		return err
	}
	if mode == session.ModeRemote {
		return tui.RunOnline(cfg, flagRelayURL, flagJoinCode, view)
	}

	opts := session.Options{
		Mode:      mode,
		LocalSide: core.SideLeft,
		Rand:      newRand(),
		Logger:    view.Logger,
	}
	if mode == session.ModeVsAI {
		if opts.Difficulty, err = config.ParseDifficulty(flagDifficulty); err != nil {
			return err
		}
		if opts.LocalSide, err = parseSide(flagSide); err != nil {
			return err
		}
	}
	return tui.Run(cfg, opts, view)
}

func parseSide(s string) (core.Side, error) {
	switch s {
	case "left", "l":
		return core.SideLeft, nil
	case "right", "r":
		return core.SideRight, nil
	default:
		return 0, fmt.Errorf("unknown side %q (want left or right)", s)
	}
}
