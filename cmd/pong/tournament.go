package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/platform/tui"
	"github.com/vovakirdan/tui-pong/internal/session"
	"github.com/vovakirdan/tui-pong/internal/storage"
	"github.com/vovakirdan/tui-pong/internal/tournament"
)

var tournamentCmd = &cobra.Command{
	Use:   "tournament",
	Short: "Create and run single-elimination tournaments",
	Long: `Manage single-elimination tournaments.

Players are seeded in the order given; when the field is not a power of
two, the first players receive byes. Match IDs may be shortened to any
unique prefix.

Examples:
  pong tournament create Friday alice bob carol dave
  pong tournament list
  pong tournament show <id>
  pong tournament play <id>
  pong tournament report <id> <match> 5 3`,
}

var tournamentCreateCmd = &cobra.Command{
	Use:   "create <name> <player> <player>...",
	Short: "Create a tournament",
	Args:  cobra.MinimumNArgs(3),
	Run:   runTournamentCreate,
}

var tournamentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tournaments",
	Args:  cobra.NoArgs,
	Run:   runTournamentList,
}

var tournamentShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a bracket",
	Args:  cobra.ExactArgs(1),
	Run:   runTournamentShow,
}

var tournamentReportCmd = &cobra.Command{
	Use:   "report <id> <match> <left-score> <right-score>",
	Short: "Record the result of a bracket match",
	Args:  cobra.ExactArgs(4),
	Run:   runTournamentReport,
}

var tournamentPlayCmd = &cobra.Command{
	Use:   "play <id>",
	Short: "Play the next pending match on this keyboard",
	Args:  cobra.ExactArgs(1),
	Run:   runTournamentPlay,
}

var flagTournamentLimit int

func init() {
	tournamentListCmd.Flags().IntVar(&flagTournamentLimit, "limit", 20, "Number of tournaments to show")

	tournamentCmd.AddCommand(tournamentCreateCmd)
	tournamentCmd.AddCommand(tournamentListCmd)
	tournamentCmd.AddCommand(tournamentShowCmd)
	tournamentCmd.AddCommand(tournamentReportCmd)
	tournamentCmd.AddCommand(tournamentPlayCmd)
}

// openTournaments opens the database and the bracket service, or exits.
func openTournaments() (*storage.Store, *tournament.LocalService) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening match database: %v\n", err)
		os.Exit(1)
	}
	return store, tournament.NewLocalService(store)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func runTournamentCreate(_ *cobra.Command, args []string) {
	store, svc := openTournaments()
	defer store.Close()

	b, err := svc.Create(context.Background(), args[0], args[1:])
	if err != nil {
		store.Close()
		fail("%v", err)
	}
	fmt.Printf("Created tournament %q (%s)\n\n", b.Name, b.ID)
	printBracket(os.Stdout, b)
}

func runTournamentList(_ *cobra.Command, _ []string) {
	store, svc := openTournaments()
	defer store.Close()

	list, err := svc.List(context.Background(), flagTournamentLimit)
	if err != nil {
		store.Close()
		fail("%v", err)
	}
	if len(list) == 0 {
		fmt.Println("No tournaments yet.")
		fmt.Println()
		fmt.Println("Create one with 'pong tournament create <name> <players...>'")
		return
	}

	fmt.Printf("  %-36s  %-16s  %-4s  %-10s  %s\n", "ID", "Name", "Size", "Champion", "Created")
	fmt.Printf("  %-36s  %-16s  %-4s  %-10s  %s\n", "--", "----", "----", "--------", "-------")
	for _, t := range list {
		champion := t.Champion
		if champion == "" {
			champion = "-"
		}
		fmt.Printf("  %-36s  %-16s  %-4d  %-10s  %s\n",
			t.ID, t.Name, t.Size, champion, t.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func runTournamentShow(_ *cobra.Command, args []string) {
	store, svc := openTournaments()
	defer store.Close()

	b, err := svc.Get(context.Background(), args[0])
	if err != nil {
		store.Close()
		fail("%v", err)
	}
	fmt.Printf("%s (%s)\n\n", b.Name, b.ID)
	printBracket(os.Stdout, b)
}

func runTournamentReport(_ *cobra.Command, args []string) {
	left, errL := strconv.Atoi(args[2])
	right, errR := strconv.Atoi(args[3])
	if errL != nil || errR != nil {
		fail("scores must be integers")
	}
	if left == right {
		fail("a match cannot end in a draw")
	}
	winner := core.SideLeft
	if right > left {
		winner = core.SideRight
	}

	store, svc := openTournaments()
	defer store.Close()

	ctx := context.Background()
	b, err := svc.Get(ctx, args[0])
	if err != nil {
		store.Close()
		fail("%v", err)
	}
	m, err := findMatch(b, args[1])
	if err != nil {
		store.Close()
		fail("%v", err)
	}
	if err := svc.SubmitResult(ctx, b.ID, m.ID, winner, [2]int{left, right}); err != nil {
		store.Close()
		fail("%v", err)
	}
	fmt.Printf("%s wins %d - %d\n", m.Players[winner], left, right)
	printChampion(ctx, svc, b.ID)
}

func runTournamentPlay(_ *cobra.Command, args []string) {
	cfg := loadConfig()
	logger, closeLog := newLogger("pong", io.Discard)
	defer closeLog()

	store, svc := openTournaments()
	defer store.Close()

	ctx := context.Background()
	b, err := svc.Get(ctx, args[0])
	if err != nil {
		store.Close()
		fail("%v", err)
	}
	pending := b.Pending()
	if len(pending) == 0 {
		fmt.Printf("No matches left to play. Champion: %s\n", b.Champion)
		return
	}
	next := pending[0]
	fmt.Printf("Round %d: %s (left) vs %s (right)\n", next.Round+1, next.Players[0], next.Players[1])

	width, height := terminalSize()
	model, err := tui.NewModel(cfg, session.Options{
		Mode:   session.ModeLocal,
		Rand:   newRand(),
		Logger: logger,
	}, tui.View{Width: width, Height: height, Saver: store, Logger: logger})
	if err != nil {
		store.Close()
		fail("%v", err)
	}
	reporter := session.ReportTo(model.Match(), svc, b.ID, next.ID)

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		store.Close()
		fail("running game: %v", err)
	}

	select {
	case <-reporter.Ended():
	default:
		fmt.Println("Match not finished; no result recorded.")
		return
	}
	<-reporter.Done()
	if err := reporter.Err(); err != nil {
		store.Close()
		fail("recording result: %v", err)
	}
	printChampion(ctx, svc, b.ID)
}

// findMatch resolves a match ID or a unique prefix of one.
func findMatch(b *tournament.Bracket, ref string) (tournament.Match, error) {
	if m, ok := b.Match(ref); ok {
		return m, nil
	}
	var found []tournament.Match
	for _, round := range b.Rounds {
		for _, m := range round {
			if strings.HasPrefix(m.ID, ref) {
				found = append(found, m)
			}
		}
	}
	switch len(found) {
	case 0:
		return tournament.Match{}, fmt.Errorf("%w: %s", tournament.ErrMatchNotFound, ref)
	case 1:
		return found[0], nil
	default:
		return tournament.Match{}, fmt.Errorf("match prefix %q is ambiguous", ref)
	}
}

func printChampion(ctx context.Context, svc tournament.Service, id string) {
	b, err := svc.Get(ctx, id)
	if err != nil {
		return
	}
	if b.Done() {
		fmt.Printf("\nChampion: %s\n", b.Champion)
		return
	}
	fmt.Println()
	printBracket(os.Stdout, b)
}

func printBracket(w io.Writer, b *tournament.Bracket) {
	for r, round := range b.Rounds {
		fmt.Fprintf(w, "%s\n", roundName(r, len(b.Rounds)))
		for _, m := range round {
			fmt.Fprintf(w, "  %-8s  %-12s %-12s  %s\n", m.ID[:8], slotName(m.Players[0]), slotName(m.Players[1]), matchStatus(m))
		}
	}
	if b.Done() {
		fmt.Fprintf(w, "\nChampion: %s\n", b.Champion)
	}
}

func roundName(r, rounds int) string {
	switch rounds - r {
	case 1:
		return "Final"
	case 2:
		return "Semifinals"
	default:
		return fmt.Sprintf("Round %d", r+1)
	}
}

func slotName(p string) string {
	if p == "" {
		return "-"
	}
	return p
}

func matchStatus(m tournament.Match) string {
	switch {
	case m.Decided() && (m.Players[0] == "" || m.Players[1] == ""):
		return "bye"
	case m.Decided():
		return fmt.Sprintf("%d - %d  %s", m.Scores[0], m.Scores[1], m.WinnerName())
	case m.Playable():
		return "ready"
	default:
		return "waiting"
	}
}
