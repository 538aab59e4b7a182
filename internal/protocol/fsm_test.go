package protocol_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cnamway/keybout/internal/protocol"
	"github.com/cnamway/keybout/internal/session"
)

func TestLegal_TableDriven(t *testing.T) {
	cases := []struct {
		verb  protocol.Verb
		state session.State
		want  bool
	}{
		{protocol.VerbConnect, session.Unidentified, true},
		{protocol.VerbConnect, session.Identified, false},
		{protocol.VerbCreateGame, session.Identified, true},
		{protocol.VerbCreateGame, session.Unidentified, false},
		{protocol.VerbClaimWord, session.Running, true},
		{protocol.VerbClaimWord, session.Started, false},
		{protocol.VerbStartRound, session.EndRound, true},
		{protocol.VerbStartRound, session.Scores, true},
		{protocol.VerbStartRound, session.Running, false},
		{protocol.VerbQuitGame, session.Running, true},
		{protocol.VerbQuitGame, session.Started, false},
		{protocol.Verb("made-up-verb"), session.Identified, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, protocol.Legal(c.state, c.verb), "verb=%s state=%s", c.verb, c.state)
	}
}

func TestNeedsManagerCheck(t *testing.T) {
	assert.True(t, protocol.NeedsManagerCheck(protocol.VerbStartRound))
	assert.False(t, protocol.NeedsManagerCheck(protocol.VerbClaimWord))
}

func TestNeedsGameOverCheck(t *testing.T) {
	assert.True(t, protocol.NeedsGameOverCheck(protocol.VerbQuitGame, session.Running))
	assert.False(t, protocol.NeedsGameOverCheck(protocol.VerbQuitGame, session.EndRound))
	assert.False(t, protocol.NeedsGameOverCheck(protocol.VerbClaimWord, session.Running))
}
