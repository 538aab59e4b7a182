package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cnamway/keybout/domain"
	"github.com/cnamway/keybout/internal/session"
)

func TestValidateName(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"ok", "alice", nil},
		{"too long", "this-name-is-way-too-long", domain.ErrNameTooLong},
		{"empty", "", domain.ErrNameMalformed},
		{"whitespace", "al ice", domain.ErrNameMalformed},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := session.ValidateName(c.input, 16)
			if c.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, c.wantErr)
			}
		})
	}
}

func TestRegistry_TryAccept_EnforcesUniqueness(t *testing.T) {
	reg := session.NewRegistry()

	a := session.New("handle-a")
	reg.Add(a)
	b := session.New("handle-b")
	reg.Add(b)

	assert.True(t, reg.TryAccept(a, "alice"))
	assert.False(t, reg.TryAccept(b, "alice"))
	assert.True(t, reg.NameInUse("alice"))

	reg.Remove(a.Handle)
	assert.False(t, reg.NameInUse("alice"))
	assert.True(t, reg.TryAccept(b, "alice"))
}

func TestRegistry_InLobbyStates(t *testing.T) {
	reg := session.NewRegistry()

	unidentified := session.New("h1")
	reg.Add(unidentified)

	identified := session.New("h2")
	identified.SetState(session.Identified)
	reg.Add(identified)

	running := session.New("h3")
	running.SetState(session.Running)
	reg.Add(running)

	got := reg.InLobbyStates()
	assert.Len(t, got, 1)
	assert.Equal(t, identified.Handle, got[0].Handle)
}
