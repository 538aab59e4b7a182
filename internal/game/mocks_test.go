package game

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cnamway/keybout/internal/scoring"
	"github.com/cnamway/keybout/internal/session"
)

// --- Player ---

type MockPlayer struct {
	mock.Mock
	name string
}

func newMockPlayer(name string) *MockPlayer {
	return &MockPlayer{name: name}
}

func (m *MockPlayer) Username() string { return m.name }

func (m *MockPlayer) Send(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockPlayer) SetState(state session.State) {
	m.Called(state)
}

// --- DictionaryProvider ---

type MockDictionary struct {
	mock.Mock
}

func (m *MockDictionary) Generate(ctx context.Context, language string, count int, style Style, difficulty Difficulty) ([]Word, error) {
	args := m.Called(ctx, language, count, style, difficulty)
	return args.Get(0).([]Word), args.Error(1)
}

// --- CalculusProvider ---

type MockCalculus struct {
	mock.Mock
}

func (m *MockCalculus) Generate(ctx context.Context, count int, difficulty Difficulty) ([]Word, error) {
	args := m.Called(ctx, count, difficulty)
	return args.Get(0).([]Word), args.Error(1)
}

// --- TopScoreSink ---

type MockTopScoreSink struct {
	mock.Mock
}

func (m *MockTopScoreSink) Record(ctx context.Context, style Style, language string, difficulty Difficulty, roundScores []scoring.Score, effectiveWordsCount int) {
	m.Called(ctx, style, language, difficulty, roundScores, effectiveWordsCount)
}

// --- Clock ---

type MockClock struct {
	mock.Mock
}

func (m *MockClock) NowMillis() int64 {
	args := m.Called()
	return args.Get(0).(int64)
}

// --- Scheduler ---
//
// fakeScheduler never fires on its own: tests drive the round lifecycle
// by calling the unexported handler methods directly (startPlay,
// claimRemainingWords, ...), the same way the teacher's room_test.go
// bypasses its actor's channel loop. It only records what was scheduled,
// so a test can assert the countdown/expiration delay if it cares to.
type fakeScheduler struct {
	scheduled []time.Duration
}

func (f *fakeScheduler) Schedule(delay time.Duration, _ func()) {
	f.scheduled = append(f.scheduled, delay)
}

// --- Host ---

type MockHost struct {
	mock.Mock
}

func (m *MockHost) GameEnded(gameID uint64) {
	m.Called(gameID)
}
