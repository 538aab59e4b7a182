// Package scoring implements the pure per-round and per-game score
// computations of spec.md §3/§4.5/§8: resetting points between rounds,
// computing speed, and the two sort orders (roundScores, gameScores).
package scoring

import "sort"

// Score is a single player's running tally within a game (spec.md §3).
type Score struct {
	UserName               string
	Points                 int
	Speed                  float64
	BestSpeed              float64
	Victories              int
	LatestVictoryTimestamp int64
}

// ResetPoints zeros points and speed between rounds. Victories and
// BestSpeed accumulate across the whole game and are untouched here.
func (s *Score) ResetPoints() {
	s.Points = 0
	s.Speed = 0
}

// ApplySpeed computes this round's words-per-minute from points and
// elapsed time, and folds it into BestSpeed (spec.md §4.5 step 2).
func (s *Score) ApplySpeed(elapsedMillis int64) {
	if elapsedMillis <= 0 {
		s.Speed = 0
	} else {
		s.Speed = float64(s.Points) * 60000 / float64(elapsedMillis)
	}
	if s.Speed > s.BestSpeed {
		s.BestSpeed = s.Speed
	}
}

// SortRoundScores orders scores by (-points, -speed), per spec.md §8.
// The sort is stable, so the existing relative order (player join
// order) breaks ties deterministically — this is the tie-break
// preserved for the "nobody claimed anything" case (spec.md §9).
func SortRoundScores(scores []*Score) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Points != scores[j].Points {
			return scores[i].Points > scores[j].Points
		}
		return scores[i].Speed > scores[j].Speed
	})
}

// SortGameScores orders scores by (-victories, -bestSpeed,
// +latestVictoryTimestamp), per spec.md §8.
func SortGameScores(scores []*Score) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Victories != scores[j].Victories {
			return scores[i].Victories > scores[j].Victories
		}
		if scores[i].BestSpeed != scores[j].BestSpeed {
			return scores[i].BestSpeed > scores[j].BestSpeed
		}
		return scores[i].LatestVictoryTimestamp < scores[j].LatestVictoryTimestamp
	})
}

// GameOver reports whether any score has reached the victories
// threshold for the game (spec.md §8 "Game-over condition").
func GameOver(gameScores []*Score, rounds int) bool {
	for _, s := range gameScores {
		if s.Victories >= rounds {
			return true
		}
	}
	return false
}
