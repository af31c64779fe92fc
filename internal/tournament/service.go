package tournament

import (
	"context"
	"fmt"
	"sync"

	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/storage"
)

// Service is the bracket backend a match reports to.
type Service interface {
	Create(ctx context.Context, name string, players []string) (*Bracket, error)
	Get(ctx context.Context, id string) (*Bracket, error)
	List(ctx context.Context, limit int) ([]storage.TournamentRecord, error)
	SubmitResult(ctx context.Context, tournamentID, matchID string, winner core.Side, scores [2]int) error
}

// Store is the persistence LocalService needs.
type Store interface {
	SaveTournament(ctx context.Context, t storage.TournamentRecord, bracket []storage.BracketRecord) error
	LoadTournament(ctx context.Context, id string) (*storage.TournamentRecord, []storage.BracketRecord, error)
	ListTournaments(ctx context.Context, limit int) ([]storage.TournamentRecord, error)
}

// LocalService keeps brackets in a local store.
type LocalService struct {
	mu    sync.Mutex
	store Store
}

// NewLocalService creates a service backed by store.
func NewLocalService(store Store) *LocalService {
	return &LocalService{store: store}
}

var _ Service = (*LocalService)(nil)

// Create builds and persists a new bracket.
func (s *LocalService) Create(ctx context.Context, name string, players []string) (*Bracket, error) {
	b, err := New(name, players)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Get loads a bracket by ID.
func (s *LocalService) Get(ctx context.Context, id string) (*Bracket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, id)
}

// List returns tournament headers, newest first.
func (s *LocalService) List(ctx context.Context, limit int) ([]storage.TournamentRecord, error) {
	return s.store.ListTournaments(ctx, limit)
}

// SubmitResult records a match result and persists the advanced bracket.
func (s *LocalService) SubmitResult(ctx context.Context, tournamentID, matchID string, winner core.Side, scores [2]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.load(ctx, tournamentID)
	if err != nil {
		return err
	}
	if err := b.Submit(matchID, winner, scores); err != nil {
		return err
	}
	return s.save(ctx, b)
}

func (s *LocalService) save(ctx context.Context, b *Bracket) error {
	header := storage.TournamentRecord{
		ID:       b.ID,
		Name:     b.Name,
		Size:     b.Size,
		Champion: b.Champion,
	}
	var slots []storage.BracketRecord
	for _, round := range b.Rounds {
		for _, m := range round {
			slots = append(slots, storage.BracketRecord{
				Round:   m.Round,
				Slot:    m.Slot,
				Players: m.Players,
				Scores:  m.Scores,
				Winner:  int(m.Winner),
				MatchID: m.ID,
			})
		}
	}
	if err := s.store.SaveTournament(ctx, header, slots); err != nil {
		return fmt.Errorf("tournament: %w", err)
	}
	return nil
}

func (s *LocalService) load(ctx context.Context, id string) (*Bracket, error) {
	header, slots, err := s.store.LoadTournament(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("tournament: %w", err)
	}
	if header == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	b := &Bracket{
		ID:       header.ID,
		Name:     header.Name,
		Size:     header.Size,
		Champion: header.Champion,
	}
	for _, slot := range slots {
		for len(b.Rounds) <= slot.Round {
			b.Rounds = append(b.Rounds, nil)
		}
		b.Rounds[slot.Round] = append(b.Rounds[slot.Round], Match{
			ID:      slot.MatchID,
			Round:   slot.Round,
			Slot:    slot.Slot,
			Players: slot.Players,
			Scores:  slot.Scores,
			Winner:  core.Side(slot.Winner),
		})
	}
	return b, nil
}
