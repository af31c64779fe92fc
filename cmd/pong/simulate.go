package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/session"
)

var (
	flagSimLeft     string
	flagSimRight    string
	flagSimGames    int
	flagSimMaxScore int
	flagSimInterval time.Duration
	flagSimMaxTicks uint64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run AI vs AI matches without a terminal UI",
	Long: `Play one AI tier against another and print the results.

Matches run as fast as possible unless --interval throttles the frames.
Useful for tuning a config file: the AI sees the same game clock either way.

Examples:
  pong simulate
  pong simulate --left hard --right easy --games 20
  pong simulate --config ./my-pong.yaml --max-score 11
  pong simulate --interval 16ms`,
	Args: cobra.NoArgs,
	Run:  runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&flagSimLeft, "left", "medium", "Left AI difficulty")
	simulateCmd.Flags().StringVar(&flagSimRight, "right", "medium", "Right AI difficulty")
	simulateCmd.Flags().IntVar(&flagSimGames, "games", 1, "Number of matches to play")
	simulateCmd.Flags().IntVar(&flagSimMaxScore, "max-score", 0, "Points needed to win (0 = config default)")
	simulateCmd.Flags().DurationVar(&flagSimInterval, "interval", 0, "Wall time between frames (0 = unthrottled)")
	simulateCmd.Flags().Uint64Var(&flagSimMaxTicks, "max-ticks", session.DefaultSimulationTicks, "Give up on a match after this many ticks")
}

func runSimulate(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	left, err := config.ParseDifficulty(flagSimLeft)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	right, err := config.ParseDifficulty(flagSimRight)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog := newLogger("pong", os.Stderr)
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rng := newRand()
	var wins [2]int
	var points [2]int
	played := 0

	fmt.Printf("%s (left) vs %s (right)\n\n", left, right)
	for i := range flagSimGames {
		res, err := session.Simulate(ctx, cfg, session.SimulateOptions{
			Left:     left,
			Right:    right,
			MaxScore: flagSimMaxScore,
			Interval: flagSimInterval,
			MaxTicks: flagSimMaxTicks,
			Rand:     rng,
			Logger:   logger,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Stopped: %v\n", err)
			break
		}
		played++
		points[0] += res.Scores[0]
		points[1] += res.Scores[1]

		winner := "none (tick limit)"
		if res.Winner.Valid() {
			wins[res.Winner]++
			winner = res.Winner.String()
		}
		fmt.Printf("  #%-3d  %2d - %-2d  %-17s  %6d ticks  %s\n",
			i+1, res.Scores[0], res.Scores[1], winner, res.Ticks, res.GameTime.Round(time.Second))
	}

	if played > 1 {
		fmt.Println()
		fmt.Printf("Left  (%s): %d wins, %d points\n", left, wins[0], points[0])
		fmt.Printf("Right (%s): %d wins, %d points\n", right, wins[1], points[1])
	}
}
