package storage

import (
	"context"
	"fmt"
	"time"
)

// TournamentRecord is the header row of a tournament.
type TournamentRecord struct {
	ID        string
	Name      string
	Size      int // Bracket size, a power of two
	Champion  string
	CreatedAt time.Time
}

// BracketRecord is one bracket slot.
type BracketRecord struct {
	Round   int
	Slot    int
	Players [2]string
	Scores  [2]int
	Winner  int // -1 until played
	MatchID string
}

// SaveTournament inserts or replaces a tournament and its whole bracket in
// one transaction.
func (s *Store) SaveTournament(ctx context.Context, t TournamentRecord, bracket []BracketRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tournaments (id, name, size, champion) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, size = excluded.size, champion = excluded.champion`,
		t.ID, t.Name, t.Size, t.Champion,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save tournament: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tournament_matches WHERE tournament_id = ?`, t.ID); err != nil {
		return fmt.Errorf("storage: cannot clear bracket: %w", err)
	}
	for _, b := range bracket {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tournament_matches
			 (tournament_id, round, slot, player0, player1, score0, score1, winner, match_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, b.Round, b.Slot, b.Players[0], b.Players[1], b.Scores[0], b.Scores[1], b.Winner, b.MatchID,
		)
		if err != nil {
			return fmt.Errorf("storage: cannot save bracket slot %d/%d: %w", b.Round, b.Slot, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit tournament: %w", err)
	}
	return nil
}

// LoadTournament reads a tournament and its bracket ordered by round and slot.
// Returns nil if the tournament does not exist.
func (s *Store) LoadTournament(ctx context.Context, id string) (*TournamentRecord, []BracketRecord, error) {
	var t TournamentRecord
	var createdAt any
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, size, champion, created_at FROM tournaments WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.Size, &t.Champion, &createdAt)
	if isNoRows(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("storage: cannot query tournament: %w", err)
	}
	t.CreatedAt = parseTime(createdAt)

	rows, err := s.db.QueryContext(ctx,
		`SELECT round, slot, player0, player1, score0, score1, winner, match_id
		 FROM tournament_matches
		 WHERE tournament_id = ?
		 ORDER BY round, slot`,
		id,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("storage: cannot query bracket: %w", err)
	}
	defer rows.Close()

	var bracket []BracketRecord
	for rows.Next() {
		var b BracketRecord
		if err := rows.Scan(&b.Round, &b.Slot, &b.Players[0], &b.Players[1],
			&b.Scores[0], &b.Scores[1], &b.Winner, &b.MatchID); err != nil {
			return nil, nil, fmt.Errorf("storage: cannot scan bracket row: %w", err)
		}
		bracket = append(bracket, b)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return &t, bracket, nil
}

// ListTournaments returns tournament headers, newest first.
func (s *Store) ListTournaments(ctx context.Context, limit int) ([]TournamentRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, size, champion, created_at
		 FROM tournaments
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query tournaments: %w", err)
	}
	defer rows.Close()

	var list []TournamentRecord
	for rows.Next() {
		var t TournamentRecord
		var createdAt any
		if err := rows.Scan(&t.ID, &t.Name, &t.Size, &t.Champion, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan tournament row: %w", err)
		}
		t.CreatedAt = parseTime(createdAt)
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return list, nil
}
