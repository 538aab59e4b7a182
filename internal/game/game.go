package game

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/cnamway/keybout/domain"
	"github.com/cnamway/keybout/internal/clock"
	"github.com/cnamway/keybout/internal/broadcast"
	"github.com/cnamway/keybout/internal/scheduler"
	"github.com/cnamway/keybout/internal/scoring"
	"github.com/cnamway/keybout/internal/session"
	"github.com/cnamway/keybout/internal/wire"
)

// Player is the capability a Game needs from a connected participant:
// send it bytes, know its display name, and move its protocol state
// forward when a broadcast implies a transition (spec.md §4.3).
type Player interface {
	Username() string
	Send(data []byte) error
	SetState(state session.State)
}

// Host is the Game's callback into whatever owns its lifecycle (the
// Lobby): notified once, when the game is fully destroyed, so the
// lobby can drop it from its running-games table and refresh the
// games-list broadcast (spec.md §4.6).
type Host interface {
	GameEnded(gameID uint64)
}

const countdownDuration = 5 * time.Second

type claimRequest struct {
	player Player
	label  string
}

type epochTask struct {
	epoch uint64
	fn    func()
}

// Game is the running per-room instance of spec.md §3/§4.5. All state
// below is owned exclusively by the goroutine running Run; every other
// goroutine must go through the channels (ClaimWord, RemovePlayer,
// StartRound) or post scheduled work via scheduleEpochTask. Unit tests
// call the handle* methods directly, single-threaded, bypassing Run —
// the same pattern the teacher's room_test.go uses against its Room.
type Game struct {
	id         uint64
	style      Style
	mode       Mode
	rounds     int
	declared   int
	language   string
	difficulty Difficulty

	manager             string
	players             []Player
	userScores          map[string]*scoring.Score
	wordAssignments     map[string]*assignedWord
	roundID             int
	roundEpoch          uint64
	roundStartMillis    int64
	effectiveWordsCount int
	gameOver            bool
	roundExpiration     time.Duration

	dictionary DictionaryProvider
	calculus   CalculusProvider
	topScores  TopScoreSink
	clock      clock.Clock
	scheduler  scheduler.Scheduler
	host       Host
	log        zerolog.Logger

	claims      chan claimRequest
	leaves      chan Player
	startRounds chan Player
	epochTasks  chan epochTask
	closed      chan struct{}
}

// Deps bundles the Game's external collaborators (spec.md §6), so
// construction sites don't need a long positional parameter list.
type Deps struct {
	Dictionary DictionaryProvider
	Calculus   CalculusProvider
	TopScores  TopScoreSink
	Clock      clock.Clock
	Scheduler  scheduler.Scheduler
	Host       Host
	Log        zerolog.Logger
}

// NewGame promotes a pending Descriptor to a running Game (spec.md §4.4
// start-game). players must be in the same order as descriptor.Players.
func NewGame(id uint64, d Descriptor, players []Player, deps Deps) *Game {
	userScores := make(map[string]*scoring.Score, len(players))
	for _, p := range players {
		userScores[p.Username()] = &scoring.Score{UserName: p.Username()}
	}

	g := &Game{
		id:         id,
		style:      d.Style,
		mode:       NewMode(d.Mode),
		rounds:     d.Rounds,
		declared:   d.WordsCount,
		language:   d.Language,
		difficulty: d.Difficulty,

		manager:    d.Creator,
		players:    append([]Player(nil), players...),
		userScores: userScores,

		dictionary: deps.Dictionary,
		calculus:   deps.Calculus,
		topScores:  deps.TopScores,
		clock:      deps.Clock,
		scheduler:  deps.Scheduler,
		host:       deps.Host,
		log:        deps.Log.With().Uint64("gameId", id).Logger(),

		claims:      make(chan claimRequest, 64),
		leaves:      make(chan Player, 16),
		startRounds: make(chan Player, 4),
		epochTasks:  make(chan epochTask, 16),
		closed:      make(chan struct{}),
	}

	g.roundExpiration = roundExpirationDuration(d.Style, d.WordsCount)
	return g
}

// Run serializes every external interaction with the game's state onto
// a single goroutine (spec.md §5 "claim-word, disconnect, start-round,
// and timer callbacks are serialized").
func (g *Game) Run() {
	for {
		select {
		case req := <-g.claims:
			g.handleClaim(req.player, req.label)
		case p := <-g.leaves:
			g.handleRemovePlayer(p)
		case p := <-g.startRounds:
			g.handleStartRound(p)
		case task := <-g.epochTasks:
			scheduler.EpochGuard(task.epoch, g.currentEpoch, task.fn)()
		case <-g.closed:
			return
		}
	}
}

// ClaimWord is the external entry point for spec.md §4.5 claimWord.
func (g *Game) ClaimWord(p Player, label string) {
	select {
	case g.claims <- claimRequest{player: p, label: label}:
	case <-g.closed:
	}
}

// RemovePlayer is the external entry point for spec.md §4.6's running-
// game disconnect branch; quit-game routes through the same path.
func (g *Game) RemovePlayer(p Player) {
	select {
	case g.leaves <- p:
	case <-g.closed:
	}
}

// StartRound is the external entry point for spec.md §4.5 "Next round".
func (g *Game) StartRound(p Player) {
	select {
	case g.startRounds <- p:
	case <-g.closed:
	}
}

// currentEpoch backs scheduler.EpochGuard's staleness check; it is only
// ever read on the goroutine running Run, alongside roundEpoch's writes.
func (g *Game) currentEpoch() uint64 {
	return g.roundEpoch
}

// scheduleEpochTask re-enters the game's own worker before fn touches
// state, per spec.md §6's Scheduler contract, and no-ops if the round
// has moved on by the time it fires (spec.md §5, §9).
func (g *Game) scheduleEpochTask(epoch uint64, delay time.Duration, fn func()) {
	g.scheduler.Schedule(delay, func() {
		select {
		case g.epochTasks <- epochTask{epoch: epoch, fn: fn}:
		case <-g.closed:
		}
	})
}

// Start kicks off the first round; called once by the Lobby right
// after NewGame (spec.md §4.4 start-game: "instantiates a Game ...
// calls startCountdown() on the game").
func (g *Game) Start() {
	g.startCountdown()
}

func roundExpirationDuration(style Style, declaredWordsCount int) time.Duration {
	base := time.Duration(declaredWordsCount) * 2 * time.Second
	switch style {
	case StyleHidden:
		base = base * 3 / 2
	case StyleCalculus:
		base = base * 5 / 4
	}
	return base
}

func (g *Game) playerNames() []string {
	names := make([]string, len(g.players))
	for i, p := range g.players {
		names[i] = p.Username()
	}
	return names
}

func (g *Game) broadcastAll(payload []byte, err error) {
	if err != nil {
		g.log.Error().Err(err).Msg("failed to marshal outbound payload")
		return
	}
	broadcast.FanOut(g.players, payload, func(p Player, sendErr error) {
		g.log.Warn().Str("player", p.Username()).Err(sendErr).Msg("send failed, treating as disconnect")
		g.RemovePlayer(p)
	})
}

// startCountdown begins a new round: it resets per-round points, tells
// every player who the manager is and the game's rounds setting (the
// victories needed to end the game), and
// schedules startPlay after the fixed countdown (spec.md §4.5 "Next
// round", §9 countdown duration).
func (g *Game) startCountdown() {
	g.roundID++
	for _, s := range g.userScores {
		s.ResetPoints()
	}

	payload, err := wire.GameStart(g.id, g.manager, g.rounds)
	g.broadcastAll(payload, err)
	for _, p := range g.players {
		p.SetState(session.Started)
	}

	epoch := g.roundEpoch
	g.scheduleEpochTask(epoch, countdownDuration, g.startPlay)
}

// startPlay generates this round's words, assigns them per the game's
// Mode, and opens the claiming window (spec.md §4.5 step 1).
func (g *Game) startPlay() {
	g.effectiveWordsCount = g.mode.EffectiveWordsCount(g.declared, len(g.players))

	var (
		words []Word
		err   error
	)
	if g.style == StyleCalculus {
		words, err = g.calculus.Generate(context.Background(), g.effectiveWordsCount, g.difficulty)
	} else {
		words, err = g.dictionary.Generate(context.Background(), g.language, g.effectiveWordsCount, g.style, g.difficulty)
	}
	if err != nil {
		g.log.Warn().Err(err).Msg("word generation degraded, proceeding with fewer words than declared")
	}

	g.wordAssignments = g.mode.Assign(words, g.playerNames())
	g.roundStartMillis = g.clock.NowMillis()

	payload, marshalErr := wire.WordsList(g.wordsListView())
	g.broadcastAll(payload, marshalErr)
	for _, p := range g.players {
		p.SetState(session.Running)
	}

	epoch := g.roundEpoch
	g.scheduleEpochTask(epoch, g.roundExpiration, g.claimRemainingWords)
}

func (g *Game) wordsListView() []wire.WordView {
	views := make([]wire.WordView, 0, len(g.wordAssignments))
	for _, a := range g.wordAssignments {
		views = append(views, wire.WordView{Label: a.Label, Display: a.Display, ClaimedBy: a.ClaimedBy})
	}
	return views
}

// handleClaim is spec.md §4.5 claimWord. Unknown labels and re-claims
// of an already-claimed word are silently ignored (the former is logged
// as an internal invariant violation, domain.ErrUnknownWord; the latter
// is just a race between two players' frames and not an error at all).
func (g *Game) handleClaim(p Player, label string) {
	assignment, ok := g.wordAssignments[label]
	if !ok {
		g.log.Debug().Str("player", p.Username()).Str("label", label).Err(domain.ErrUnknownWord).Msg("claim rejected")
		return
	}
	if assignment.ClaimedBy != "" {
		return
	}
	if assignment.Owner != "" && assignment.Owner != p.Username() {
		return
	}

	assignment.ClaimedBy = p.Username()
	if score, ok := g.userScores[p.Username()]; ok {
		score.Points++
	}

	payload, err := wire.WordsList(g.wordsListView())
	g.broadcastAll(payload, err)

	if g.mode.RoundComplete(g.wordAssignments, p.Username()) {
		g.endRound()
	}
}

// claimRemainingWords is the round-expiration timer callback (spec.md
// §4.5 step 1, §9): whatever hasn't been claimed by now stays
// unclaimed for scoring purposes.
func (g *Game) claimRemainingWords() {
	g.endRound()
}

// endRound computes this round's and this game's standings, elects the
// round winner, checks the game-over condition, and broadcasts scores
// (spec.md §4.5 step 2, §8).
func (g *Game) endRound() {
	g.roundEpoch++

	elapsed := g.clock.NowMillis() - g.roundStartMillis

	// Both slices start in player join order, the tie-break both sorts
	// fall back to when scores are otherwise equal (spec.md §8, §9).
	roundScores := make([]*scoring.Score, 0, len(g.players))
	for _, p := range g.players {
		s := g.userScores[p.Username()]
		s.ApplySpeed(elapsed)
		roundScores = append(roundScores, s)
	}
	scoring.SortRoundScores(roundScores)
	if len(roundScores) > 0 {
		roundScores[0].Victories++
		roundScores[0].LatestVictoryTimestamp = g.clock.NowMillis()
	}

	gameScores := make([]*scoring.Score, 0, len(g.players))
	for _, p := range g.players {
		gameScores = append(gameScores, g.userScores[p.Username()])
	}
	scoring.SortGameScores(gameScores)
	g.gameOver = scoring.GameOver(gameScores, g.rounds)

	payload, err := wire.Scores(
		toScoreViews(roundScores),
		toScoreViews(gameScores),
		g.manager,
		elapsed,
		g.gameOver,
		g.wordsListView(),
	)
	g.broadcastAll(payload, err)
	for _, p := range g.players {
		p.SetState(session.EndRound)
	}

	g.recordTopScore(roundScores)
}

// recordTopScore copies the round's scores by value before handing
// them to the sink's own goroutine (spec.md §6), since userScores keeps
// mutating the same *Score pointers on the next round.
func (g *Game) recordTopScore(roundScores []*scoring.Score) {
	if g.topScores == nil {
		return
	}
	snapshot := make([]scoring.Score, len(roundScores))
	for i, s := range roundScores {
		snapshot[i] = *s
	}
	go g.topScores.Record(context.Background(), g.style, g.language, g.difficulty, snapshot, g.effectiveWordsCount)
}

func toScoreViews(scores []*scoring.Score) []wire.ScoreView {
	views := make([]wire.ScoreView, len(scores))
	for i, s := range scores {
		views[i] = wire.ScoreView{
			UserName:               s.UserName,
			Points:                 s.Points,
			Speed:                  s.Speed,
			BestSpeed:              s.BestSpeed,
			Victories:              s.Victories,
			LatestVictoryTimestamp: s.LatestVictoryTimestamp,
		}
	}
	return views
}

// handleStartRound is spec.md §4.5 "Next round": only the manager may
// advance out of END_ROUND/SCORES, and only when the game isn't over.
func (g *Game) handleStartRound(p Player) {
	if p.Username() != g.manager {
		g.log.Debug().Str("player", p.Username()).Err(domain.ErrNotGameManager).Msg("start-round rejected")
		return
	}
	if g.gameOver {
		return
	}
	g.startCountdown()
}

// handleRemovePlayer is the shared tail of spec.md §4.6's running-game
// disconnect branch and the quit-game command: drop the player, elect a
// new manager if the old one just left, and destroy the game once empty.
func (g *Game) handleRemovePlayer(p Player) {
	idx := -1
	for i, existing := range g.players {
		if existing.Username() == p.Username() {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}
	g.players = append(g.players[:idx], g.players[idx+1:]...)
	delete(g.userScores, p.Username())

	if len(g.players) == 0 {
		g.roundEpoch++
		close(g.closed)
		g.host.GameEnded(g.id)
		return
	}

	if p.Username() == g.manager {
		g.manager = g.players[0].Username()
		payload, err := wire.Manager(g.manager)
		g.broadcastAll(payload, err)
	}
}

// IsOver reports whether the current game has already met its
// game-over condition, for the router's edge-case legality check on
// quit-game arriving while a session still thinks it's RUNNING (spec.md
// §4.3).
func (g *Game) IsOver() bool {
	return g.gameOver
}

// Manager returns the current game manager's display name.
func (g *Game) Manager() string {
	return g.manager
}

// ID returns the game's identifier.
func (g *Game) ID() uint64 {
	return g.id
}
