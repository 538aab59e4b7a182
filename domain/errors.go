// Package domain holds error sentinels shared across the core's
// components, per the error taxonomy in spec.md §7.
package domain

import "errors"

// Semantic rejections: the session stays in its current state and a
// dedicated response is emitted, never a generic error.
var (
	ErrNameTooLong   = errors.New("too-long-name")
	ErrNameMalformed = errors.New("incorrect-name")
	ErrNameInUse     = errors.New("used-name")
)

// Collaborator failures: logged and degraded, never propagated into a
// game-ending error.
var (
	ErrDictionaryShortCount = errors.New("dictionary-returned-fewer-words-than-requested")
	ErrTopScoreSinkFailed   = errors.New("top-score-sink-failed")
)

// Internal invariant violations: logged and ignored.
var (
	ErrUnknownWord    = errors.New("claimed-word-not-in-round")
	ErrGameNotFound   = errors.New("game-not-found")
	ErrNotGameManager = errors.New("not-game-manager")
)
