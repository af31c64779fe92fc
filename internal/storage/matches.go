package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/tui-pong/internal/multiplayer"
)

// MatchRecord is one finished or abandoned match.
type MatchRecord struct {
	ID         string
	Mode       string // "local", "ai" or "remote"
	Difficulty string // Set for matches against the AI
	Code       string // Lobby code for relayed matches
	Scores     [2]int
	Winner     int // 0 left, 1 right, -1 none
	Ticks      uint64
	Duration   time.Duration
	EndReason  string
	CreatedAt  time.Time
}

// ModeStats aggregates matches of one mode.
type ModeStats struct {
	Mode       string
	Matches    int
	LeftWins   int
	RightWins  int
	AvgPoints  float64 // Points per match, both sides
	LastPlayed time.Time
}

// SaveMatch records a match. An empty ID is replaced by a new UUID, which is
// returned.
func (s *Store) SaveMatch(ctx context.Context, rec MatchRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.EndReason == "" {
		rec.EndReason = "completed"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO matches
		 (id, mode, difficulty, code, score0, score1, winner, ticks, duration_ms, end_reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Mode, rec.Difficulty, rec.Code,
		rec.Scores[0], rec.Scores[1], rec.Winner,
		int64(rec.Ticks), //nolint:gosec // tick counts stay far below MaxInt64
		rec.Duration.Milliseconds(), rec.EndReason,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save match: %w", err)
	}
	return rec.ID, nil
}

// SaveRoomResult implements multiplayer.ResultSaver.
func (s *Store) SaveRoomResult(ctx context.Context, r multiplayer.RoomResult) error {
	_, err := s.SaveMatch(ctx, MatchRecord{
		Mode:      "remote",
		Code:      r.Code,
		Scores:    r.Scores,
		Winner:    int(r.Winner),
		Duration:  r.Duration,
		EndReason: r.Reason.String(),
	})
	return err
}

var _ multiplayer.ResultSaver = (*Store)(nil)

const matchColumns = `id, mode, difficulty, code, score0, score1, winner, ticks, duration_ms, end_reason, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (MatchRecord, error) {
	var rec MatchRecord
	var ticks, durationMs int64
	var createdAt any
	err := row.Scan(&rec.ID, &rec.Mode, &rec.Difficulty, &rec.Code,
		&rec.Scores[0], &rec.Scores[1], &rec.Winner,
		&ticks, &durationMs, &rec.EndReason, &createdAt)
	if err != nil {
		return MatchRecord{}, err
	}
	rec.Ticks = uint64(max(0, ticks)) //nolint:gosec // clamped non-negative
	rec.Duration = time.Duration(durationMs) * time.Millisecond
	rec.CreatedAt = parseTime(createdAt)
	return rec, nil
}

// MatchByID retrieves a match by its ID. Returns nil if it does not exist.
func (s *Store) MatchByID(ctx context.Context, id string) (*MatchRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = ?`, id)
	rec, err := scanMatch(row)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match: %w", err)
	}
	return &rec, nil
}

// RecentMatches retrieves the most recent matches, newest first.
// An empty mode selects every mode.
func (s *Store) RecentMatches(ctx context.Context, mode string, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+matchColumns+`
		 FROM matches
		 WHERE ? = '' OR mode = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		mode, mode, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	defer rows.Close()

	var records []MatchRecord
	for rows.Next() {
		rec, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return records, nil
}

// MatchStats aggregates the match history per mode.
func (s *Store) MatchStats(ctx context.Context) ([]ModeStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT mode, COUNT(*),
		        SUM(CASE WHEN winner = 0 THEN 1 ELSE 0 END),
		        SUM(CASE WHEN winner = 1 THEN 1 ELSE 0 END),
		        AVG(score0 + score1),
		        MAX(created_at)
		 FROM matches
		 GROUP BY mode
		 ORDER BY mode`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get match stats: %w", err)
	}
	defer rows.Close()

	var stats []ModeStats
	for rows.Next() {
		var st ModeStats
		var lastPlayed any
		if err := rows.Scan(&st.Mode, &st.Matches, &st.LeftWins, &st.RightWins, &st.AvgPoints, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTime(lastPlayed)
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return stats, nil
}
