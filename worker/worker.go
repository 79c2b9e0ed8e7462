package worker

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/SWCCGArena/rando-python/board"
	"github.com/SWCCGArena/rando-python/brain"
	"github.com/SWCCGArena/rando-python/config"
	"github.com/SWCCGArena/rando-python/decision"
	"github.com/SWCCGArena/rando-python/transport"
)

// Decoder turns one long-poll XML batch into board events plus, if the
// batch carried one, the pending decision request. It is an interface so
// the worker can be driven by a stub in tests without a real GEMP server.
type Decoder interface {
	Decode(xmlBody string) (events []board.Event, pending *decision.Request, err error)
}

// Worker drives one bot identity end to end: it owns the transport
// session, the board state, and the brain, and is the only goroutine that
// ever touches any of them.
type Worker struct {
	cfg     config.Config
	client  *transport.Client
	brain   brain.Brain
	decoder Decoder

	state       State
	hallChannel transport.ChannelTracker
	gameChannel transport.ChannelTracker
	stop        chan struct{}
	id          string

	gameID              string
	board               *board.BoardState
	pendingDecision     *decision.Request
	consecutiveTimeouts int
}

// New constructs a stopped Worker. It does not connect until Run is called.
func New(cfg config.Config, client *transport.Client, b brain.Brain, decoder Decoder) *Worker {
	return &Worker{
		cfg:     cfg,
		client:  client,
		brain:   b,
		decoder: decoder,
		state:   StateStopped,
		stop:    make(chan struct{}),
		id:      uuid.NewString(),
	}
}

// Stop requests cooperative shutdown; the worker checks this between
// suspension points and must reach Stopped within one poll interval.
func (w *Worker) Stop() {
	close(w.stop)
}

func (w *Worker) stopped() bool {
	select {
	case <-w.stop:
		return true
	default:
		return false
	}
}

func (w *Worker) transition(to State) {
	if !CanTransition(w.state, to) {
		log.Error().Str("worker", w.id).Str("from", string(w.state)).Str("to", string(to)).Msg("worker: illegal state transition attempted")
		return
	}
	log.Info().Str("worker", w.id).Str("from", string(w.state)).Str("to", string(to)).Msg("worker: state transition")
	w.state = to
}

// State returns the worker's current lifecycle state, for admin display.
func (w *Worker) State() State { return w.state }

// Board returns the current board snapshot, or nil outside Playing.
func (w *Worker) Board() *board.BoardState { return w.board }

// Run drives the full lifecycle until Stop is called or login fails. It
// is the worker's only suspension-bearing method: every blocking call
// inside it is one of the three documented suspension points.
func (w *Worker) Run(ctx context.Context) error {
	w.transition(StateConnecting)

	if err := w.client.Login(w.cfg.Username, w.cfg.Password); err != nil {
		log.Error().Err(err).Str("worker", w.id).Msg("worker: login failed")
		w.transition(StateStopped)
		return err
	}
	w.transition(StateInLobby)

	for !w.stopped() {
		switch w.state {
		case StateInLobby:
			w.runLobby(ctx)
		case StateWaitingForOpponent:
			w.runWaitingForOpponent(ctx)
		case StateJoining:
			w.runJoining(ctx)
		case StatePlaying:
			w.runPlaying(ctx)
		case StateGameEnded:
			w.transition(StateInLobby)
		default:
			w.transition(StateStopped)
		}
	}
	w.transition(StateStopped)
	return nil
}

func (w *Worker) runLobby(ctx context.Context) {
	tables, newChannel, err := w.client.HallList()
	if err != nil {
		log.Warn().Err(err).Msg("worker: hall list failed, retrying")
		w.sleep(ctx, w.cfg.PollInterval)
		return
	}
	if obsErr := w.hallChannel.Observe(newChannel); obsErr != nil {
		log.Error().Err(obsErr).Msg("worker: hall channel regressed")
	}

	for _, t := range tables {
		if t.GameID != "" && strings.EqualFold(t.Name, w.cfg.TableName) {
			w.gameID = t.GameID
			w.transition(StateJoining)
			return
		}
	}

	w.transition(StateWaitingForOpponent)
}

func (w *Worker) runWaitingForOpponent(ctx context.Context) {
	tables, newChannel, err := w.client.UpdateHall(w.hallChannel.Next())
	if err != nil {
		log.Warn().Err(err).Msg("worker: hall update failed")
		w.sleep(ctx, w.cfg.PollInterval)
		w.transition(StateInLobby)
		return
	}
	if obsErr := w.hallChannel.Observe(newChannel); obsErr != nil {
		log.Error().Err(obsErr).Msg("worker: hall channel regressed")
	}

	for _, t := range tables {
		if t.GameID != "" {
			w.gameID = t.GameID
			w.transition(StateJoining)
			return
		}
	}
	w.sleep(ctx, w.cfg.HallCheckIntervalInGame)
}

func (w *Worker) runJoining(ctx context.Context) {
	xml, initialChannel, err := w.client.JoinGame(w.gameID)
	if err != nil {
		log.Error().Err(err).Msg("worker: join game failed")
		w.transition(StateInLobby)
		return
	}

	// Each game owns its own channel sequence, independent of the hall's.
	w.gameChannel = transport.ChannelTracker{}
	if obsErr := w.gameChannel.Observe(initialChannel); obsErr != nil {
		log.Error().Err(obsErr).Msg("worker: initial game channel regressed")
	}

	w.board = board.New()
	w.applyBatch(xml)
	w.brain.OnGameStart(w.board.MySide, w.board.OpponentName)
	w.transition(StatePlaying)
}

func (w *Worker) runPlaying(ctx context.Context) {
	result, err := w.client.GameUpdate(w.gameID, w.gameChannel.Next())
	if err != nil {
		w.consecutiveTimeouts++
		log.Warn().Err(err).Int("consecutive", w.consecutiveTimeouts).Msg("worker: game update failed")
		if w.consecutiveTimeouts >= w.cfg.ConsecutiveTimeoutLimit {
			w.reconnect(ctx)
		}
		return
	}
	w.consecutiveTimeouts = 0

	if result.SessionExpired {
		w.reconnect(ctx)
		return
	}
	if obsErr := w.gameChannel.Observe(result.ChannelNumber); obsErr != nil {
		log.Error().Err(obsErr).Msg("worker: game channel regressed")
	}
	if result.NoUpdate {
		return
	}

	w.applyBatch(result.XML)

	if w.pendingDecision != nil {
		w.answerPendingDecision()
	}

	if w.board != nil && w.board.GameOver {
		w.brain.OnGameEnd(w.board.Won, w.board)
		w.transition(StateGameEnded)
	}
}

func (w *Worker) applyBatch(xml string) {
	if w.decoder == nil || xml == "" {
		return
	}
	events, pending, err := w.decoder.Decode(xml)
	if err != nil {
		log.Error().Err(err).Str("worker", w.id).Msg("worker: failed to decode event batch")
		return
	}
	for _, e := range events {
		if applied, reason := w.board.Apply(e); !applied {
			log.Warn().Str("tag", string(e.Tag)).Str("reason", reason).Msg("worker: event not applied")
		}
	}
	if pending != nil {
		w.pendingDecision = pending
	}
}

func (w *Worker) answerPendingDecision() {
	req := *w.pendingDecision
	resp := w.brain.MakeDecision(w.board, req)
	if err := w.client.PostDecision(w.gameID, w.gameChannel.Next(), resp.DecisionID, resp.Value); err != nil {
		log.Error().Err(err).Msg("worker: post decision failed")
	}
	w.pendingDecision = nil
}

func (w *Worker) reconnect(ctx context.Context) {
	log.Warn().Str("worker", w.id).Msg("worker: reconnecting after repeated timeouts")
	if err := w.client.Login(w.cfg.Username, w.cfg.Password); err != nil {
		log.Error().Err(err).Msg("worker: reconnect login failed")
		w.transition(StateStopped)
		return
	}
	w.consecutiveTimeouts = 0
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	case <-w.stop:
	}
}
