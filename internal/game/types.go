// Package game implements the Game Service: the per-game round
// lifecycle, word assignment, scoring, manager election, and disconnect
// collapse described in spec.md §4.5–§4.6.
package game

import (
	"context"

	"github.com/cnamway/keybout/internal/scoring"
)

// Style is the word-generation style (spec.md §3 GameDescriptor.style).
type Style int

const (
	StyleRegular Style = iota
	StyleHidden
	StyleCalculus
)

func (s Style) String() string {
	switch s {
	case StyleRegular:
		return "regular"
	case StyleHidden:
		return "hidden"
	case StyleCalculus:
		return "calculus"
	default:
		return "unknown"
	}
}

// ParseStyle parses the wire-protocol style token (spec.md §4.1
// create-game args).
func ParseStyle(s string) (Style, bool) {
	switch s {
	case "regular":
		return StyleRegular, true
	case "hidden":
		return StyleHidden, true
	case "calculus":
		return StyleCalculus, true
	default:
		return 0, false
	}
}

// Difficulty is the word/expression difficulty (spec.md §3).
type Difficulty int

const (
	DifficultyEasy Difficulty = iota
	DifficultyNormal
	DifficultyHard
)

func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "easy"
	case DifficultyNormal:
		return "normal"
	case DifficultyHard:
		return "hard"
	default:
		return "unknown"
	}
}

func ParseDifficulty(s string) (Difficulty, bool) {
	switch s {
	case "easy":
		return DifficultyEasy, true
	case "normal":
		return DifficultyNormal, true
	case "hard":
		return DifficultyHard, true
	default:
		return 0, false
	}
}

// ModeKind is the game mode (spec.md §3, §4.5, §9: Capture or Race).
type ModeKind int

const (
	ModeCapture ModeKind = iota
	ModeRace
)

func (m ModeKind) String() string {
	if m == ModeRace {
		return "race"
	}
	return "capture"
}

func ParseMode(s string) (ModeKind, bool) {
	switch s {
	case "capture":
		return ModeCapture, true
	case "race":
		return ModeRace, true
	default:
		return 0, false
	}
}

// Word is a single assignable word or calculus expression (spec.md §3).
type Word struct {
	Label     string // what the user types
	Display   string // what is shown; may differ for hidden/calculus styles
	ClaimedBy string // empty until claimed
}

// Descriptor is a pending, not-yet-started game (spec.md §3
// GameDescriptor).
type Descriptor struct {
	ID         uint64
	Creator    string
	Style      Style
	Mode       ModeKind
	Rounds     int
	WordsCount int
	Language   string
	Difficulty Difficulty
	Players    []string // creator included, in join order
}

// DictionaryProvider is the external word-dictionary collaborator
// (spec.md §6).
type DictionaryProvider interface {
	Generate(ctx context.Context, language string, count int, style Style, difficulty Difficulty) ([]Word, error)
}

// CalculusProvider is the external arithmetic-expression collaborator
// (spec.md §6).
type CalculusProvider interface {
	Generate(ctx context.Context, count int, difficulty Difficulty) ([]Word, error)
}

// TopScoreSink is the persistent top-score store (spec.md §6). Record is
// best-effort: implementations must never let a failure propagate into
// the calling game worker (spec.md §7 "Collaborator failure").
type TopScoreSink interface {
	Record(ctx context.Context, style Style, language string, difficulty Difficulty, roundScores []scoring.Score, effectiveWordsCount int)
}
