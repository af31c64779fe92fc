// pong is a terminal Pong game with an AI opponent, local and online play,
// and single-elimination tournaments.
//
// Usage:
//
//	pong play                 - Pick a mode from the menu
//	pong play --mode ai       - Play against the AI
//	pong play --mode remote   - Host or join an online match
//	pong relay                - Run the online match relay
//	pong serve                - Start SSH server for remote play
//	pong history              - Show recent matches
//	pong tournament <cmd>     - Manage tournaments
//	pong simulate             - Watch two AI tiers play each other headless
//
// Global flags:
//
//	--config <path>   - Custom pong YAML config
//	--seed <value>    - Set RNG seed for reproducible gameplay
//	--db <path>       - Set database path (default: ~/.pong/pong.db)
//	--log-file <path> - Write logs to a file while the TUI runs
package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/platform/tui"
	"github.com/vovakirdan/tui-pong/internal/storage"
)

var (
	// Global flags
	flagConfig  string
	flagSeed    int64
	flagDBPath  string
	flagLogFile string
	flagVerbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pong",
	Short: "Pong in your terminal",
	Long: `Pong is a terminal game of Pong. Play against an AI opponent,
a friend on the same keyboard, or someone online through a relay.

Available commands:
  play        - Play a match (menu, local, ai or remote)
  relay       - Run the online match relay
  serve       - Start SSH server for remote play
  history     - View match history
  tournament  - Create and run tournaments
  simulate    - Run an AI vs AI match without a terminal UI

Examples:
  pong play
  pong play --mode ai --difficulty hard
  pong relay --addr :8080
  pong play --mode remote --relay ws://localhost:8080/ws
  pong tournament create "Friday" alice bob carol dave`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom pong config YAML")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", storage.DefaultPath, "Path to match database")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(relayCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(tournamentCmd)
	rootCmd.AddCommand(simulateCmd)
}

// loadConfig reads the pong config or exits.
func loadConfig() config.PongConfig {
	cfg, err := config.LoadPong(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// newLogger builds the command logger. Server commands log to stderr; the
// TUI would be garbled by that, so interactive commands pass io.Discard
// unless --log-file is set. The returned close func is always non-nil.
func newLogger(prefix string, fallback io.Writer) (*log.Logger, func()) {
	out := fallback
	closeFn := func() {}
	if flagLogFile != "" {
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not open log file: %v\n", err)
		} else {
			out = f
			closeFn = func() { _ = f.Close() } //nolint:errcheck // best effort
		}
	}
	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if flagVerbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger, closeFn
}

// newRand seeds an RNG from --seed, or the clock when it is zero.
func newRand() *rand.Rand {
	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)) //nolint:gosec // gameplay randomness
}

// terminalSize returns the terminal size with an 80x24 fallback.
func terminalSize() (int, int) {
	width, height := tui.DefaultWidth, tui.DefaultHeight
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return width, height
}

// openStore opens the match database. A failure only warns: matches still
// play without history.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open match database: %v\n", err)
		return nil
	}
	return store
}
