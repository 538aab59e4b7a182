// Package session implements the Session Registry (spec.md §4.2): a
// process-wide mapping from session handle to session metadata, with
// name-uniqueness enforcement.
package session

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/cnamway/keybout/domain"
)

// State is one of the protocol states a session can occupy server-side
// (spec.md §4.3). The client-only transient mirrors (CREATING, DELETING,
// ...) are never represented here — see SPEC_FULL.md §12.
type State int

const (
	Unidentified State = iota
	Identified
	Created
	Joined
	Started
	Running
	EndRound
	Scores
)

func (s State) String() string {
	switch s {
	case Unidentified:
		return "UNIDENTIFIED"
	case Identified:
		return "IDENTIFIED"
	case Created:
		return "CREATED"
	case Joined:
		return "JOINED"
	case Started:
		return "STARTED"
	case Running:
		return "RUNNING"
	case EndRound:
		return "END_ROUND"
	case Scores:
		return "SCORES"
	default:
		return "UNKNOWN"
	}
}

// Session is a single connected client (spec.md §3). Handle is opaque
// and assigned at connect time; DisplayName is empty until `connect` is
// accepted. GameID is 0 when the session isn't attached to any game.
type Session struct {
	mu          sync.RWMutex
	Handle      string
	DisplayName string
	state       State
	GameID      uint64
}

// NewHandle generates an opaque session handle, matching the teacher's
// use of uuid.NewString() for per-connection identifiers.
func NewHandle() string {
	return uuid.NewString()
}

func New(handle string) *Session {
	return &Session{Handle: handle, state: Unidentified}
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) SetState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

// Registry is the process-wide session table. All writes are serialized
// by its own mutex; name-uniqueness checks (spec.md §4.2) hold the same
// lock as registration so a race between two "connect alice" frames
// cannot both succeed.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add registers a brand new, not-yet-identified session.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.Handle] = s
}

// Remove drops a session on disconnect (spec.md §4.3 "Any state →
// (disconnect)→ terminal").
func (r *Registry) Remove(handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, handle)
}

func (r *Registry) Get(handle string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[handle]
	return s, ok
}

// NameInUse reports whether name is already the accepted display name of
// some live session (case-sensitive, spec.md §4.2 rule 3).
func (r *Registry) NameInUse(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if s.DisplayName == name {
			return true
		}
	}
	return false
}

// TryAccept atomically checks name uniqueness and assigns it, so two
// concurrent `connect alice` frames can never both succeed (spec.md
// invariant "Name uniqueness").
func (r *Registry) TryAccept(s *Session, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for handle, other := range r.sessions {
		if handle != s.Handle && other.DisplayName == name {
			return false
		}
	}
	s.DisplayName = name
	return true
}

// InLobbyStates returns every session whose state is one of the states
// that should receive games-list broadcasts (spec.md §4.4): IDENTIFIED,
// CREATED, or JOINED. (QUITTING is a client-only transient mirror, spec.md
// §4.3, so it never appears server-side; END_ROUND-with-gameOver sessions
// that sent quit-game transition straight back to IDENTIFIED.)
func (r *Registry) InLobbyStates() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		switch s.State() {
		case Identified, Created, Joined:
			out = append(out, s)
		}
	}
	return out
}

// ValidateName applies the first two checks in spec.md §4.2, in order.
// The third check (uniqueness) needs registry access and is performed by
// TryAccept.
func ValidateName(name string, maxLength int) error {
	if len(name) > maxLength {
		return domain.ErrNameTooLong
	}
	if name == "" || strings.ContainsAny(name, " \t\n\r\v\f") {
		return domain.ErrNameMalformed
	}
	return nil
}
