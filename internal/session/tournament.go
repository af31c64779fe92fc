package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/tournament"
)

// DefaultReportTimeout bounds a result submission.
const DefaultReportTimeout = 5 * time.Second

// TournamentReporter submits the outcome of a match to a bracket service
// when the match ends. The submission runs on its own goroutine so a slow
// service does not stall the game loop.
type TournamentReporter struct {
	svc          tournament.Service
	tournamentID string
	matchID      string
	timeout      time.Duration
	logger       *log.Logger

	once  sync.Once
	ended chan struct{}
	done  chan struct{}
	err   error
}

// ReportTo registers a reporter on m for the given bracket match. Only the
// first finished game is reported; rematches are not.
func ReportTo(m *Match, svc tournament.Service, tournamentID, matchID string) *TournamentReporter {
	r := &TournamentReporter{
		svc:          svc,
		tournamentID: tournamentID,
		matchID:      matchID,
		timeout:      DefaultReportTimeout,
		logger:       m.logger.With("tournament", tournamentID, "match", matchID),
		ended:        make(chan struct{}),
		done:         make(chan struct{}),
	}
	m.OnGameOver(func(winner core.Side) {
		r.once.Do(func() {
			close(r.ended)
			go r.submit(winner, m.Scores())
		})
	})
	return r
}

func (r *TournamentReporter) submit(winner core.Side, scores [2]int) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	r.err = r.svc.SubmitResult(ctx, r.tournamentID, r.matchID, winner, scores)
	if r.err != nil {
		r.logger.Error("result submission failed", "err", r.err)
	} else {
		r.logger.Info("result submitted", "winner", winner, "scores", scores)
	}
	close(r.done)
}

// Ended is closed when the match finishes and a submission has started.
func (r *TournamentReporter) Ended() <-chan struct{} {
	return r.ended
}

// Done is closed once the submission returned.
func (r *TournamentReporter) Done() <-chan struct{} {
	return r.done
}

// Err returns the submission error. Only valid after Done is closed.
func (r *TournamentReporter) Err() error {
	return r.err
}
