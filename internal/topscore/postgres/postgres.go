// Package postgres implements the postgres-backed TopScoreSink (spec.md
// §6), grounded on the teacher's storage.PostgresRepo: a thin pgxpool
// wrapper. Record logs write failures against
// domain.ErrTopScoreSinkFailed; New and Top return the pgx errors as
// they come, without mapping them to sentinels.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/cnamway/keybout/domain"
	"github.com/cnamway/keybout/internal/game"
	"github.com/cnamway/keybout/internal/scoring"
)

// Sink is a game.TopScoreSink backed by postgres.
type Sink struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func New(ctx context.Context, connString string, log zerolog.Logger) (*Sink, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &Sink{pool: pool, log: log}, nil
}

func (s *Sink) Close() {
	s.pool.Close()
}

// Record persists one row per scoring player for the round that just
// ended. It is best-effort (spec.md §7 "Collaborator failure"): a
// failure is logged against domain.ErrTopScoreSinkFailed and never
// propagated, since the caller runs this on its own goroutine with
// nothing to receive an error anyway.
func (s *Sink) Record(ctx context.Context, style game.Style, language string, difficulty game.Difficulty, roundScores []scoring.Score, effectiveWordsCount int) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	batch := &pgx.Batch{}
	for _, sc := range roundScores {
		batch.Queue(
			`INSERT INTO top_scores (username, style, language, difficulty, points, speed, effective_words_count)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			sc.UserName, style.String(), language, difficulty.String(), sc.Points, sc.Speed, effectiveWordsCount,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range roundScores {
		if _, err := results.Exec(); err != nil {
			s.log.Error().Err(err).Msg(domain.ErrTopScoreSinkFailed.Error())
			return
		}
	}
}

// Top returns up to limit recorded rows for the given style/language/
// difficulty, ordered by points then speed. Rows are not grouped by
// player, so a player with several recorded rounds can appear more than
// once. Not part of game.TopScoreSink
// — this is the read side for a future leaderboard endpoint, grounded on
// the same table Record writes.
func (s *Sink) Top(ctx context.Context, style game.Style, language string, difficulty game.Difficulty, limit int) ([]scoring.Score, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT username, points, speed FROM top_scores
		 WHERE style = $1 AND language = $2 AND difficulty = $3
		 ORDER BY points DESC, speed DESC
		 LIMIT $4`,
		style.String(), language, difficulty.String(), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []scoring.Score
	for rows.Next() {
		var sc scoring.Score
		if err := rows.Scan(&sc.UserName, &sc.Points, &sc.Speed); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}
