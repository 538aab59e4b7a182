// Package lobby implements the Lobby Manager (spec.md §4.4): the set
// of pending games, create/join/leave/delete/start-game, and the
// games-list broadcast to everyone not inside a running game.
package lobby

import (
	"github.com/rs/zerolog"

	"github.com/cnamway/keybout/domain"
	"github.com/cnamway/keybout/internal/clock"
	"github.com/cnamway/keybout/internal/game"
	"github.com/cnamway/keybout/internal/scheduler"
	"github.com/cnamway/keybout/internal/session"
	"github.com/cnamway/keybout/internal/wire"
)

// Notifier is the Lobby's only outbound capability: write a
// already-serialized frame to a session by handle. The transport layer
// supplies the concrete implementation.
type Notifier interface {
	Send(handle string, data []byte) error
}

// SessionSource is the read-only slice of the Session Registry the
// Lobby needs to compute its games-list broadcast audience (spec.md
// §4.4, §5 "the session registry is read from many workers").
type SessionSource interface {
	InLobbyStates() []*session.Session
}

type pendingGame struct {
	desc    game.Descriptor
	players []game.Player
}

type createReq struct {
	creator    game.Player
	mode       game.ModeKind
	style      game.Style
	rounds     int
	wordsCount int
	language   string
	difficulty game.Difficulty
	resp       chan uint64
}

type gameReq struct {
	player game.Player
	gameID uint64
	resp   chan error
}

type startGameReq struct {
	player game.Player
	gameID uint64
	resp   chan startGameResult
}

type startGameResult struct {
	game *game.Game
	err  error
}

type resolveReq struct {
	gameID uint64
	resp   chan *game.Game
}

type gamesListReq struct {
	resp chan []wire.GameDescriptorView
}

// Lobby is the single actor owning pending descriptors and the
// running-games table (spec.md §5: "The Lobby worker serializes
// create/delete/join/leave and game instantiation").
type Lobby struct {
	pending  map[uint64]*pendingGame
	running  map[uint64]*game.Game
	nextID   uint64
	sessions SessionSource
	notifier Notifier
	deps     GameDeps
	log      zerolog.Logger

	creates     chan createReq
	deletes     chan gameReq
	joins       chan gameReq
	leaves      chan gameReq
	startGames  chan startGameReq
	resolves    chan resolveReq
	gamesLists  chan gamesListReq
	gameEndings chan uint64
	closed      chan struct{}
}

// GameDeps is the fixed set of collaborators every running Game needs,
// threaded through from the Lobby since the Lobby is what instantiates
// Games (spec.md §4.4 start-game).
type GameDeps struct {
	Dictionary game.DictionaryProvider
	Calculus   game.CalculusProvider
	TopScores  game.TopScoreSink
	Clock      clock.Clock
	Scheduler  scheduler.Scheduler
}

func New(sessions SessionSource, notifier Notifier, deps GameDeps, log zerolog.Logger) *Lobby {
	return &Lobby{
		pending:  make(map[uint64]*pendingGame),
		running:  make(map[uint64]*game.Game),
		nextID:   1,
		sessions: sessions,
		notifier: notifier,
		deps:     deps,
		log:      log,

		creates:     make(chan createReq, 64),
		deletes:     make(chan gameReq, 64),
		joins:       make(chan gameReq, 64),
		leaves:      make(chan gameReq, 64),
		startGames:  make(chan startGameReq, 64),
		resolves:    make(chan resolveReq, 256),
		gamesLists:  make(chan gamesListReq, 64),
		gameEndings: make(chan uint64, 64),
		closed:      make(chan struct{}),
	}
}

// Run is the Lobby's single-goroutine actor loop.
func (l *Lobby) Run() {
	for {
		select {
		case req := <-l.creates:
			req.resp <- l.handleCreate(req)
		case req := <-l.deletes:
			req.resp <- l.handleDelete(req.player, req.gameID)
		case req := <-l.joins:
			req.resp <- l.handleJoin(req.player, req.gameID)
		case req := <-l.leaves:
			req.resp <- l.handleLeave(req.player, req.gameID)
		case req := <-l.startGames:
			req.resp <- l.handleStartGame(req.player, req.gameID)
		case req := <-l.resolves:
			req.resp <- l.running[req.gameID]
		case req := <-l.gamesLists:
			req.resp <- l.gamesListView()
		case gameID := <-l.gameEndings:
			l.handleGameEnded(gameID)
		case <-l.closed:
			return
		}
	}
}

// GameEnded implements game.Host: called from a Game worker goroutine,
// so it's funneled back onto the Lobby's own actor loop to stay
// serialized with create/join/leave (spec.md §4.6).
func (l *Lobby) GameEnded(gameID uint64) {
	select {
	case l.gameEndings <- gameID:
	case <-l.closed:
	}
}

// CreateGame is spec.md §4.4 create-game (IDENTIFIED only, checked by
// the router's FSM before this is called).
func (l *Lobby) CreateGame(creator game.Player, mode game.ModeKind, style game.Style, rounds, wordsCount int, language string, difficulty game.Difficulty) uint64 {
	resp := make(chan uint64, 1)
	l.creates <- createReq{creator: creator, mode: mode, style: style, rounds: rounds, wordsCount: wordsCount, language: language, difficulty: difficulty, resp: resp}
	return <-resp
}

func (l *Lobby) DeleteGame(creator game.Player, gameID uint64) error {
	resp := make(chan error, 1)
	l.deletes <- gameReq{player: creator, gameID: gameID, resp: resp}
	return <-resp
}

func (l *Lobby) JoinGame(player game.Player, gameID uint64) error {
	resp := make(chan error, 1)
	l.joins <- gameReq{player: player, gameID: gameID, resp: resp}
	return <-resp
}

func (l *Lobby) LeaveGame(player game.Player, gameID uint64) error {
	resp := make(chan error, 1)
	l.leaves <- gameReq{player: player, gameID: gameID, resp: resp}
	return <-resp
}

// StartGame is spec.md §4.4 start-game: atomically promotes the
// descriptor to a running Game, starts its worker, and kicks off the
// first countdown. On success it returns the running *game.Game so the
// router can remember the session→game mapping.
func (l *Lobby) StartGame(creator game.Player, gameID uint64) (*game.Game, error) {
	resp := make(chan startGameResult, 1)
	l.startGames <- startGameReq{player: creator, gameID: gameID, resp: resp}
	result := <-resp
	return result.game, result.err
}

// ResolveGame looks up a running game by id, for routing claim-word /
// leave-game / quit-game / start-round to the right Game worker.
func (l *Lobby) ResolveGame(gameID uint64) *game.Game {
	resp := make(chan *game.Game, 1)
	l.resolves <- resolveReq{gameID: gameID, resp: resp}
	return <-resp
}

// GamesList returns the current pending-games view (spec.md §4.4).
func (l *Lobby) GamesList() []wire.GameDescriptorView {
	resp := make(chan []wire.GameDescriptorView, 1)
	l.gamesLists <- gamesListReq{resp: resp}
	return <-resp
}

// SendGamesListTo emits a one-off games-list to a single session, used
// right after name acceptance (spec.md §4.2: "emit the current
// games-list to this session").
func (l *Lobby) SendGamesListTo(handle string) {
	payload, err := wire.GamesList(l.GamesList())
	if err != nil {
		l.log.Error().Err(err).Msg("failed to marshal games-list")
		return
	}
	if err := l.notifier.Send(handle, payload); err != nil {
		l.log.Warn().Str("handle", handle).Err(err).Msg("games-list send failed")
	}
}

func (l *Lobby) handleCreate(req createReq) uint64 {
	id := l.nextID
	l.nextID++

	desc := game.Descriptor{
		ID:         id,
		Creator:    req.creator.Username(),
		Style:      req.style,
		Mode:       req.mode,
		Rounds:     req.rounds,
		WordsCount: req.wordsCount,
		Language:   req.language,
		Difficulty: req.difficulty,
		Players:    []string{req.creator.Username()},
	}
	l.pending[id] = &pendingGame{desc: desc, players: []game.Player{req.creator}}
	req.creator.SetState(session.Created)

	l.broadcastGamesList()
	return id
}

func (l *Lobby) handleDelete(requester game.Player, gameID uint64) error {
	pg, ok := l.pending[gameID]
	if !ok || pg.desc.Creator != requester.Username() {
		return domain.ErrGameNotFound
	}

	delete(l.pending, gameID)
	for _, p := range pg.players {
		p.SetState(session.Identified)
	}

	l.broadcastGamesList()
	return nil
}

func (l *Lobby) handleJoin(player game.Player, gameID uint64) error {
	pg, ok := l.pending[gameID]
	if !ok {
		return domain.ErrGameNotFound
	}

	pg.desc.Players = append(pg.desc.Players, player.Username())
	pg.players = append(pg.players, player)
	player.SetState(session.Joined)

	l.broadcastGamesList()
	return nil
}

func (l *Lobby) handleLeave(player game.Player, gameID uint64) error {
	pg, ok := l.pending[gameID]
	if !ok {
		return domain.ErrGameNotFound
	}

	l.removePlayerFromPending(pg, player.Username())
	player.SetState(session.Identified)

	l.broadcastGamesList()
	return nil
}

// removePlayerFromPending implements spec.md §4.6's pending-game
// disconnect branch, shared between explicit leave-game and a session
// closing while JOINED. If the creator left, the whole descriptor is
// destroyed and every remaining joiner returns to IDENTIFIED.
func (l *Lobby) removePlayerFromPending(pg *pendingGame, username string) {
	if pg.desc.Creator == username {
		delete(l.pending, pg.desc.ID)
		for _, p := range pg.players {
			if p.Username() != username {
				p.SetState(session.Identified)
			}
		}
		return
	}

	for i, p := range pg.players {
		if p.Username() == username {
			pg.players = append(pg.players[:i], pg.players[i+1:]...)
			break
		}
	}
	for i, name := range pg.desc.Players {
		if name == username {
			pg.desc.Players = append(pg.desc.Players[:i], pg.desc.Players[i+1:]...)
			break
		}
	}
}

// RemoveFromPendingGame is the disconnect entry point for a session
// that was CREATED or JOINED when its socket closed (spec.md §4.6): the
// same collapse logic as an explicit leave-game, just reached from a
// closed socket instead of a command.
func (l *Lobby) RemoveFromPendingGame(player game.Player, gameID uint64) {
	l.LeaveGame(player, gameID)
}

func (l *Lobby) handleStartGame(creator game.Player, gameID uint64) startGameResult {
	pg, ok := l.pending[gameID]
	if !ok || pg.desc.Creator != creator.Username() {
		return startGameResult{err: domain.ErrGameNotFound}
	}
	delete(l.pending, gameID)

	g := game.NewGame(gameID, pg.desc, pg.players, game.Deps{
		Dictionary: l.deps.Dictionary,
		Calculus:   l.deps.Calculus,
		TopScores:  l.deps.TopScores,
		Clock:      l.deps.Clock,
		Scheduler:  l.deps.Scheduler,
		Host:       l,
		Log:        l.log,
	})
	l.running[gameID] = g
	// Start runs before the worker goroutine exists, so the first
	// countdown never touches game state concurrently with Run.
	g.Start()
	go g.Run()

	l.broadcastGamesList()
	return startGameResult{game: g}
}

func (l *Lobby) handleGameEnded(gameID uint64) {
	delete(l.running, gameID)
	l.broadcastGamesList()
}

func (l *Lobby) broadcastGamesList() {
	payload, err := wire.GamesList(l.gamesListView())
	if err != nil {
		l.log.Error().Err(err).Msg("failed to marshal games-list")
		return
	}
	for _, s := range l.sessions.InLobbyStates() {
		if err := l.notifier.Send(s.Handle, payload); err != nil {
			l.log.Warn().Str("handle", s.Handle).Err(err).Msg("games-list send failed")
		}
	}
}

func (l *Lobby) gamesListView() []wire.GameDescriptorView {
	views := make([]wire.GameDescriptorView, 0, len(l.pending))
	for _, pg := range l.pending {
		views = append(views, wire.GameDescriptorView{
			ID:         pg.desc.ID,
			Creator:    pg.desc.Creator,
			Mode:       pg.desc.Mode.String(),
			Style:      pg.desc.Style.String(),
			Rounds:     pg.desc.Rounds,
			WordsCount: pg.desc.WordsCount,
			Language:   pg.desc.Language,
			Difficulty: pg.desc.Difficulty.String(),
			Players:    append([]string(nil), pg.desc.Players...),
		})
	}
	return views
}
