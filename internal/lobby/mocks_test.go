package lobby

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cnamway/keybout/internal/game"
	"github.com/cnamway/keybout/internal/scoring"
	"github.com/cnamway/keybout/internal/session"
)

type MockPlayer struct {
	mock.Mock
	name string
}

func newMockPlayer(name string) *MockPlayer {
	p := &MockPlayer{name: name}
	p.On("SetState", mock.Anything).Return()
	p.On("Send", mock.Anything).Return(nil)
	return p
}

func (m *MockPlayer) Username() string { return m.name }

func (m *MockPlayer) Send(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockPlayer) SetState(s session.State) { m.Called(s) }

type fakeNotifier struct {
	sent map[string]int
}

func newFakeNotifier() *fakeNotifier { return &fakeNotifier{sent: map[string]int{}} }

func (f *fakeNotifier) Send(handle string, _ []byte) error {
	f.sent[handle]++
	return nil
}

type fakeSessionSource struct {
	inLobby []*session.Session
}

func (f *fakeSessionSource) InLobbyStates() []*session.Session { return f.inLobby }

type stubDictionary struct{}

func (stubDictionary) Generate(_ context.Context, _ string, count int, _ game.Style, _ game.Difficulty) ([]game.Word, error) {
	words := make([]game.Word, count)
	for i := range words {
		words[i] = game.Word{Label: string(rune('a' + i)), Display: string(rune('a' + i))}
	}
	return words, nil
}

type stubCalculus struct{}

func (stubCalculus) Generate(_ context.Context, count int, _ game.Difficulty) ([]game.Word, error) {
	words := make([]game.Word, count)
	for i := range words {
		words[i] = game.Word{Label: string(rune('0' + i)), Display: string(rune('0' + i))}
	}
	return words, nil
}

type stubTopScoreSink struct{}

func (stubTopScoreSink) Record(context.Context, game.Style, string, game.Difficulty, []scoring.Score, int) {
}

type stubClock struct{}

func (stubClock) NowMillis() int64 { return 1000 }

type stubScheduler struct{}

func (stubScheduler) Schedule(time.Duration, func()) {}

func testDeps() GameDeps {
	return GameDeps{
		Dictionary: stubDictionary{},
		Calculus:   stubCalculus{},
		TopScores:  stubTopScoreSink{},
		Clock:      stubClock{},
		Scheduler:  stubScheduler{},
	}
}
