// Package protocol implements the Session Router / Protocol FSM
// (spec.md §4.1, §4.3): a (state × verb) legality table so illegal
// commands are rejected without the caller hand-rolling a chain of ifs.
package protocol

import "github.com/cnamway/keybout/internal/session"

// Verb is one of the exhaustive inbound wire verbs (spec.md §4.1).
type Verb string

const (
	VerbConnect     Verb = "connect"
	VerbCreateGame  Verb = "create-game"
	VerbDeleteGame  Verb = "delete-game"
	VerbJoinGame    Verb = "join-game"
	VerbLeaveGame   Verb = "leave-game"
	VerbStartGame   Verb = "start-game"
	VerbStartRound  Verb = "start-round"
	VerbClaimWord   Verb = "claim-word"
	VerbQuitGame    Verb = "quit-game"
)

// legalFrom is the (verb → allowed states) table from spec.md §4.1.
// start-round and quit-game additionally need a business-rule check
// (manager identity, game-over state) beyond pure FSM legality — see
// NeedsManagerCheck and NeedsGameOverCheck.
var legalFrom = map[Verb]map[session.State]bool{
	VerbConnect:    {session.Unidentified: true},
	VerbCreateGame: {session.Identified: true},
	VerbDeleteGame: {session.Created: true},
	VerbJoinGame:   {session.Identified: true},
	VerbLeaveGame:  {session.Joined: true},
	VerbStartGame:  {session.Created: true},
	VerbStartRound: {session.EndRound: true, session.Scores: true},
	VerbClaimWord:  {session.Running: true},
	VerbQuitGame:   {session.EndRound: true, session.Scores: true, session.Running: true},
}

// Legal reports whether verb may be accepted from state, per the table
// above. Unknown verbs are always illegal (spec.md §4.1 "Unknown verbs
// ... silently ignored").
func Legal(state session.State, verb Verb) bool {
	states, ok := legalFrom[verb]
	if !ok {
		return false
	}
	return states[state]
}

// NeedsManagerCheck reports whether verb additionally requires the
// caller to be the game's current manager once FSM-legal (spec.md §4.1
// start-round: "only if session.displayName == game.manager").
func NeedsManagerCheck(verb Verb) bool {
	return verb == VerbStartRound
}

// NeedsGameOverCheck reports whether verb, when arriving from RUNNING,
// is only legal in the "game-over branch" (spec.md §4.1 quit-game):
// a session that still believes it's RUNNING because it hasn't
// processed the scores broadcast yet, but the round already ended the
// game. The router must additionally confirm the game is over before
// accepting quit-game from RUNNING specifically.
func NeedsGameOverCheck(verb Verb, state session.State) bool {
	return verb == VerbQuitGame && state == session.Running
}
