package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cnamway/keybout/internal/scoring"
)

func TestScore_ApplySpeed(t *testing.T) {
	s := &scoring.Score{Points: 3}
	s.ApplySpeed(30000) // 30s elapsed
	assert.InDelta(t, 6.0, s.Speed, 0.0001)
	assert.InDelta(t, 6.0, s.BestSpeed, 0.0001)

	// A slower round shouldn't regress BestSpeed.
	s.ResetPoints()
	s.Points = 1
	s.ApplySpeed(30000)
	assert.InDelta(t, 2.0, s.Speed, 0.0001)
	assert.InDelta(t, 6.0, s.BestSpeed, 0.0001)
}

func TestSortRoundScores_PointsThenSpeedThenStableOrder(t *testing.T) {
	a := &scoring.Score{UserName: "a", Points: 1, Speed: 1}
	b := &scoring.Score{UserName: "b", Points: 4, Speed: 2}
	c := &scoring.Score{UserName: "c", Points: 0, Speed: 0}
	scores := []*scoring.Score{a, b, c}

	scoring.SortRoundScores(scores)

	assert.Equal(t, []string{"b", "a", "c"}, names(scores))
}

func TestSortRoundScores_ZeroPointsTieBreaksByJoinOrder(t *testing.T) {
	a := &scoring.Score{UserName: "a"}
	b := &scoring.Score{UserName: "b"}
	scores := []*scoring.Score{a, b}

	scoring.SortRoundScores(scores)

	assert.Equal(t, []string{"a", "b"}, names(scores))
}

func TestSortGameScores_VictoriesThenBestSpeedThenEarliestVictory(t *testing.T) {
	a := &scoring.Score{UserName: "a", Victories: 1, BestSpeed: 5, LatestVictoryTimestamp: 200}
	b := &scoring.Score{UserName: "b", Victories: 1, BestSpeed: 5, LatestVictoryTimestamp: 100}
	c := &scoring.Score{UserName: "c", Victories: 2, BestSpeed: 1}
	scores := []*scoring.Score{a, b, c}

	scoring.SortGameScores(scores)

	assert.Equal(t, []string{"c", "b", "a"}, names(scores))
}

func TestGameOver(t *testing.T) {
	scores := []*scoring.Score{{Victories: 0}, {Victories: 1}}
	assert.True(t, scoring.GameOver(scores, 1))
	assert.False(t, scoring.GameOver(scores, 2))
}

func names(scores []*scoring.Score) []string {
	out := make([]string, len(scores))
	for i, s := range scores {
		out[i] = s.UserName
	}
	return out
}
