package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/platform/tui"
	"github.com/vovakirdan/tui-pong/internal/session"
)

var (
	flagHistoryMode  string
	flagHistoryLimit int
	flagHistoryTUI   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show match history",
	Long: `Display recent matches and per-mode totals.

Examples:
  pong history
  pong history --mode ai --limit 20
  pong history --tui`,
	Args: cobra.NoArgs,
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&flagHistoryMode, "mode", "", "Only show matches of this mode: ai, local, remote")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 10, "Number of matches to show")
	historyCmd.Flags().BoolVar(&flagHistoryTUI, "tui", false, "Browse the history in the terminal UI")
}

func runHistory(_ *cobra.Command, _ []string) {
	mode := ""
	if flagHistoryMode != "" {
		m, err := session.ParseMode(flagHistoryMode)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		mode = string(m)
	}

	store := openStore()
	if store == nil {
		os.Exit(1)
	}
	defer store.Close()

	if flagHistoryTUI {
		width, height := terminalSize()
		if err := tui.RunScoreboard(store, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error running history: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx := context.Background()
	matches, err := store.RecentMatches(ctx, mode, flagHistoryLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving matches: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Match History")
	fmt.Println()

	if len(matches) == 0 {
		fmt.Println("No matches recorded yet.")
		fmt.Println()
		fmt.Println("Play 'pong play' to record the first one!")
		return
	}

	// Print header
	fmt.Printf("  %-16s  %-7s  %-6s  %-7s  %-6s  %s\n", "Date", "Mode", "Level", "Score", "Winner", "End")
	fmt.Printf("  %-16s  %-7s  %-6s  %-7s  %-6s  %s\n", "----", "----", "-----", "-----", "------", "---")

	for _, m := range matches {
		level := m.Difficulty
		if level == "" {
			level = "-"
		}
		fmt.Printf("  %-16s  %-7s  %-6s  %-7s  %-6s  %s\n",
			m.CreatedAt.Format("2006-01-02 15:04"),
			m.Mode,
			level,
			fmt.Sprintf("%d - %d", m.Scores[0], m.Scores[1]),
			winnerLabel(m.Winner),
			m.EndReason,
		)
	}

	stats, err := store.MatchStats(ctx)
	if err != nil || len(stats) == 0 {
		return
	}
	fmt.Println()
	fmt.Printf("  %-7s  %-7s  %-9s  %-10s  %s\n", "Mode", "Matches", "Left wins", "Right wins", "Avg points")
	for _, st := range stats {
		fmt.Printf("  %-7s  %-7d  %-9d  %-10d  %.1f\n", st.Mode, st.Matches, st.LeftWins, st.RightWins, st.AvgPoints)
	}
}

func winnerLabel(w int) string {
	if side := core.Side(w); side.Valid() {
		return side.String()
	}
	return "-"
}
