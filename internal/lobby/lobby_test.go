package lobby

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnamway/keybout/internal/game"
	"github.com/cnamway/keybout/internal/session"
)

const (
	timeout  = time.Second
	interval = 5 * time.Millisecond
)

func setupLobby(t *testing.T) (*Lobby, *fakeNotifier, *fakeSessionSource) {
	t.Helper()
	notifier := newFakeNotifier()
	sessions := &fakeSessionSource{}
	l := New(sessions, notifier, testDeps(), zerolog.Nop())
	go l.Run()
	t.Cleanup(func() { close(l.closed) })
	return l, notifier, sessions
}

func TestLobby_CreateGame_AddsToGamesListAndSetsCreatorState(t *testing.T) {
	l, _, _ := setupLobby(t)
	alice := newMockPlayer("alice")

	id := l.CreateGame(alice, game.ModeCapture, game.StyleRegular, 3, 5, "en", game.DifficultyEasy)

	views := l.GamesList()
	require.Len(t, views, 1)
	assert.Equal(t, id, views[0].ID)
	assert.Equal(t, "alice", views[0].Creator)
	assert.Equal(t, []string{"alice"}, views[0].Players)
	alice.AssertCalled(t, "SetState", session.Created)
}

func TestLobby_JoinGame_AddsPlayerToDescriptor(t *testing.T) {
	l, _, _ := setupLobby(t)
	alice := newMockPlayer("alice")
	bob := newMockPlayer("bob")

	id := l.CreateGame(alice, game.ModeCapture, game.StyleRegular, 3, 5, "en", game.DifficultyEasy)
	err := l.JoinGame(bob, id)
	require.NoError(t, err)

	views := l.GamesList()
	require.Len(t, views, 1)
	assert.Equal(t, []string{"alice", "bob"}, views[0].Players)
	bob.AssertCalled(t, "SetState", session.Joined)
}

func TestLobby_JoinGame_UnknownIDReturnsError(t *testing.T) {
	l, _, _ := setupLobby(t)
	bob := newMockPlayer("bob")

	err := l.JoinGame(bob, 999)
	assert.Error(t, err)
}

func TestLobby_DeleteGame_RemovesDescriptorAndResetsJoiners(t *testing.T) {
	l, _, _ := setupLobby(t)
	alice := newMockPlayer("alice")
	bob := newMockPlayer("bob")

	id := l.CreateGame(alice, game.ModeCapture, game.StyleRegular, 3, 5, "en", game.DifficultyEasy)
	require.NoError(t, l.JoinGame(bob, id))

	require.NoError(t, l.DeleteGame(alice, id))

	assert.Empty(t, l.GamesList())
	alice.AssertCalled(t, "SetState", session.Identified)
	bob.AssertCalled(t, "SetState", session.Identified)
}

func TestLobby_LeaveGame_CreatorLeavingDestroysDescriptor(t *testing.T) {
	l, _, _ := setupLobby(t)
	alice := newMockPlayer("alice")
	bob := newMockPlayer("bob")

	id := l.CreateGame(alice, game.ModeCapture, game.StyleRegular, 3, 5, "en", game.DifficultyEasy)
	require.NoError(t, l.JoinGame(bob, id))

	require.NoError(t, l.LeaveGame(alice, id))

	assert.Empty(t, l.GamesList())
	bob.AssertCalled(t, "SetState", session.Identified)
}

func TestLobby_LeaveGame_JoinerLeavingKeepsDescriptorAlive(t *testing.T) {
	l, _, _ := setupLobby(t)
	alice := newMockPlayer("alice")
	bob := newMockPlayer("bob")

	id := l.CreateGame(alice, game.ModeCapture, game.StyleRegular, 3, 5, "en", game.DifficultyEasy)
	require.NoError(t, l.JoinGame(bob, id))

	require.NoError(t, l.LeaveGame(bob, id))

	views := l.GamesList()
	require.Len(t, views, 1)
	assert.Equal(t, []string{"alice"}, views[0].Players)
}

func TestLobby_StartGame_PromotesDescriptorAndStartsCountdown(t *testing.T) {
	l, _, _ := setupLobby(t)
	alice := newMockPlayer("alice")
	bob := newMockPlayer("bob")

	id := l.CreateGame(alice, game.ModeCapture, game.StyleRegular, 3, 5, "en", game.DifficultyEasy)
	require.NoError(t, l.JoinGame(bob, id))

	g, err := l.StartGame(alice, id)
	require.NoError(t, err)
	require.NotNil(t, g)

	assert.Empty(t, l.GamesList(), "a started game is no longer pending")
	assert.Equal(t, g, l.ResolveGame(id))
	alice.AssertCalled(t, "SetState", session.Started)
	bob.AssertCalled(t, "SetState", session.Started)
}

func TestLobby_StartGame_RejectsNonCreator(t *testing.T) {
	l, _, _ := setupLobby(t)
	alice := newMockPlayer("alice")
	bob := newMockPlayer("bob")

	id := l.CreateGame(alice, game.ModeCapture, game.StyleRegular, 3, 5, "en", game.DifficultyEasy)
	require.NoError(t, l.JoinGame(bob, id))

	_, err := l.StartGame(bob, id)
	assert.Error(t, err)
}

func TestLobby_GameEnded_RemovesFromRunningAndRefreshesGamesList(t *testing.T) {
	l, notifier, sessions := setupLobby(t)
	alice := newMockPlayer("alice")
	sessions.inLobby = []*session.Session{{Handle: "h1"}}

	id := l.CreateGame(alice, game.ModeCapture, game.StyleRegular, 3, 5, "en", game.DifficultyEasy)
	g, err := l.StartGame(alice, id)
	require.NoError(t, err)

	before := notifier.sent["h1"]
	g.RemovePlayer(alice) // last player leaving destroys the game, triggers GameEnded
	require.Eventually(t, func() bool {
		return notifier.sent["h1"] > before
	}, timeout, interval, "expected a fresh games-list after the game ended")

	assert.Nil(t, l.ResolveGame(id))
}
