// Package topscore provides TopScoreSink implementations for the Game
// Service's persistent top-score collaborator (spec.md §6).
package topscore

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cnamway/keybout/internal/game"
	"github.com/cnamway/keybout/internal/scoring"
)

// Noop is the fallback TopScoreSink used when no database is configured
// (config.TopScoreDatabaseURL empty). Record degrades to a debug log line
// rather than silently doing nothing, so an operator can tell the sink is
// disabled from the logs instead of missing scores with no trace.
type Noop struct {
	Log zerolog.Logger
}

func (n Noop) Record(_ context.Context, style game.Style, language string, difficulty game.Difficulty, roundScores []scoring.Score, effectiveWordsCount int) {
	n.Log.Debug().
		Str("style", style.String()).
		Str("language", language).
		Int("scores", len(roundScores)).
		Msg("top-score sink disabled, dropping round result")
}
