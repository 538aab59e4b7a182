// Package router implements the Session Router (spec.md §2, §4.1,
// §4.3): it owns no state of its own beyond the connection table,
// consulting the Session Registry's per-session FSM state before
// delegating a legal command to the Lobby or the session's Game.
package router

import (
	"errors"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cnamway/keybout/domain"
	"github.com/cnamway/keybout/internal/game"
	"github.com/cnamway/keybout/internal/protocol"
	"github.com/cnamway/keybout/internal/session"
	"github.com/cnamway/keybout/internal/wire"
)

// Connection is the Transport Adapter's per-session send/close
// capability (spec.md §2). The router never touches a raw socket.
type Connection interface {
	Send(data []byte) error
	Close()
}

// Lobby is the slice of *lobby.Lobby the router needs, narrowed to an
// interface so router tests can fake it.
type Lobby interface {
	CreateGame(creator game.Player, mode game.ModeKind, style game.Style, rounds, wordsCount int, language string, difficulty game.Difficulty) uint64
	DeleteGame(creator game.Player, gameID uint64) error
	JoinGame(player game.Player, gameID uint64) error
	LeaveGame(player game.Player, gameID uint64) error
	StartGame(creator game.Player, gameID uint64) (*game.Game, error)
	ResolveGame(gameID uint64) *game.Game
	RemoveFromPendingGame(player game.Player, gameID uint64)
	SendGamesListTo(handle string)
}

// Router is the Session Router: one instance shared by every
// connection, dispatching each inbound frame through the Protocol FSM
// to the Lobby or the addressed Game.
type Router struct {
	registry      *session.Registry
	lobby         Lobby
	maxNameLength int
	log           zerolog.Logger

	mu    sync.RWMutex
	conns map[string]Connection
}

func New(registry *session.Registry, l Lobby, maxNameLength int, log zerolog.Logger) *Router {
	return &Router{
		registry:      registry,
		lobby:         l,
		maxNameLength: maxNameLength,
		log:           log,
		conns:         make(map[string]Connection),
	}
}

// Accept registers a brand-new connection and returns its session
// handle (spec.md §3 "Created on connect").
func (r *Router) Accept(conn Connection) string {
	handle := session.NewHandle()
	r.registry.Add(session.New(handle))

	r.mu.Lock()
	r.conns[handle] = conn
	r.mu.Unlock()

	return handle
}

// Disconnect implements spec.md §4.6 for every protocol state.
func (r *Router) Disconnect(handle string) {
	sess, ok := r.registry.Get(handle)
	if ok {
		switch sess.State() {
		case session.Unidentified, session.Identified:
			// drop, nothing else references this session.
		case session.Created, session.Joined:
			r.lobby.RemoveFromPendingGame(r.playerFor(sess), sess.GameID)
		default: // Started, Running, EndRound, Scores: a running game.
			if g := r.lobby.ResolveGame(sess.GameID); g != nil {
				g.RemovePlayer(r.playerFor(sess))
			}
		}
	}

	r.registry.Remove(handle)
	r.mu.Lock()
	delete(r.conns, handle)
	r.mu.Unlock()
}

// HandleFrame implements spec.md §2's "frame → Parser → Router
// (consults session FSM) → Lobby or Game mutation" data flow for one
// inbound line from one session.
func (r *Router) HandleFrame(handle string, frame string) {
	sess, ok := r.registry.Get(handle)
	if !ok {
		return
	}

	cmd := wire.Parse(frame)
	verb := protocol.Verb(cmd.Verb)
	state := sess.State()

	if !protocol.Legal(state, verb) {
		return
	}
	if protocol.NeedsGameOverCheck(verb, state) {
		g := r.lobby.ResolveGame(sess.GameID)
		if g == nil || !g.IsOver() {
			return
		}
	}
	if protocol.NeedsManagerCheck(verb) {
		g := r.lobby.ResolveGame(sess.GameID)
		if g == nil || g.Manager() != sess.DisplayName {
			return
		}
	}

	switch verb {
	case protocol.VerbConnect:
		r.handleConnect(handle, sess, cmd.Args)
	case protocol.VerbCreateGame:
		r.handleCreateGame(sess, cmd.Args)
	case protocol.VerbDeleteGame:
		r.lobby.DeleteGame(r.playerFor(sess), sess.GameID)
		sess.GameID = 0
	case protocol.VerbJoinGame:
		r.handleJoinGame(sess, cmd.Args)
	case protocol.VerbLeaveGame:
		r.lobby.LeaveGame(r.playerFor(sess), sess.GameID)
		sess.GameID = 0
	case protocol.VerbStartGame:
		r.handleStartGame(sess)
	case protocol.VerbStartRound:
		if g := r.lobby.ResolveGame(sess.GameID); g != nil {
			g.StartRound(r.playerFor(sess))
		}
	case protocol.VerbClaimWord:
		r.handleClaimWord(sess, cmd.Args)
	case protocol.VerbQuitGame:
		r.handleQuitGame(sess)
	}
}

func (r *Router) handleConnect(handle string, sess *session.Session, args []string) {
	if len(args) != 1 {
		return
	}
	name := args[0]

	if err := session.ValidateName(name, r.maxNameLength); err != nil {
		r.sendNameError(handle, err)
		return
	}
	if !r.registry.TryAccept(sess, name) {
		r.sendNameError(handle, domain.ErrNameInUse)
		return
	}

	sess.SetState(session.Identified)
	r.lobby.SendGamesListTo(handle)
}

func (r *Router) sendNameError(handle string, err error) {
	var payload []byte
	var marshalErr error
	switch {
	case errors.Is(err, domain.ErrNameTooLong):
		payload, marshalErr = wire.TooLongName()
	case errors.Is(err, domain.ErrNameInUse):
		payload, marshalErr = wire.UsedName()
	default:
		payload, marshalErr = wire.IncorrectName()
	}
	if marshalErr != nil {
		r.log.Error().Err(marshalErr).Msg("failed to marshal name-rejection payload")
		return
	}
	r.sendTo(handle, payload)
}

func (r *Router) handleCreateGame(sess *session.Session, args []string) {
	if len(args) != 6 {
		return
	}
	mode, ok := game.ParseMode(args[0])
	if !ok {
		return
	}
	style, ok := game.ParseStyle(args[1])
	if !ok {
		return
	}
	rounds, err := strconv.Atoi(args[2])
	if err != nil || rounds < 1 {
		return
	}
	wordsCount, err := strconv.Atoi(args[3])
	if err != nil || wordsCount < 1 {
		return
	}
	language := args[4]
	difficulty, ok := game.ParseDifficulty(args[5])
	if !ok {
		return
	}

	id := r.lobby.CreateGame(r.playerFor(sess), mode, style, rounds, wordsCount, language, difficulty)
	sess.GameID = id
}

func (r *Router) handleJoinGame(sess *session.Session, args []string) {
	if len(args) != 1 {
		return
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return
	}

	if err := r.lobby.JoinGame(r.playerFor(sess), id); err != nil {
		r.log.Debug().Uint64("gameId", id).Err(err).Msg("join-game rejected")
		return
	}
	sess.GameID = id
}

func (r *Router) handleStartGame(sess *session.Session) {
	g, err := r.lobby.StartGame(r.playerFor(sess), sess.GameID)
	if err != nil {
		r.log.Debug().Uint64("gameId", sess.GameID).Err(err).Msg("start-game rejected")
		return
	}
	_ = g // session state transitions are driven by the game itself.
}

func (r *Router) handleClaimWord(sess *session.Session, args []string) {
	if len(args) != 1 {
		return
	}
	g := r.lobby.ResolveGame(sess.GameID)
	if g == nil {
		return
	}
	g.ClaimWord(r.playerFor(sess), args[0])
}

func (r *Router) handleQuitGame(sess *session.Session) {
	if g := r.lobby.ResolveGame(sess.GameID); g != nil {
		g.RemovePlayer(r.playerFor(sess))
	}
	sess.GameID = 0
	sess.SetState(session.Identified)
}

func (r *Router) sendTo(handle string, data []byte) error {
	r.mu.RLock()
	conn, ok := r.conns[handle]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	if err := conn.Send(data); err != nil {
		r.log.Warn().Str("handle", handle).Err(err).Msg("send failed, disconnecting session")
		go r.Disconnect(handle)
		return err
	}
	return nil
}

// Send implements lobby.Notifier.
func (r *Router) Send(handle string, data []byte) error {
	return r.sendTo(handle, data)
}

func (r *Router) playerFor(sess *session.Session) game.Player {
	return &sessionPlayer{sess: sess, router: r}
}

// sessionPlayer adapts a *session.Session plus the router's send
// capability into the game.Player interface the Lobby and Game expect.
type sessionPlayer struct {
	sess   *session.Session
	router *Router
}

func (p *sessionPlayer) Username() string { return p.sess.DisplayName }

func (p *sessionPlayer) Send(data []byte) error {
	return p.router.sendTo(p.sess.Handle, data)
}

func (p *sessionPlayer) SetState(s session.State) {
	p.sess.SetState(s)
}
