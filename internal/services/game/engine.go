// Package game implements the session engine: the bounded session store,
// the per-turn word-chain state machine, and the challenge broker that
// forms matches.
package game

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hmngo/wordchain/internal/dependencies/clock"
	"github.com/hmngo/wordchain/internal/dependencies/random"
	"github.com/hmngo/wordchain/internal/model"
	"github.com/hmngo/wordchain/internal/services/account"
	"github.com/hmngo/wordchain/internal/services/dictionary"
	"github.com/hmngo/wordchain/internal/services/history"
)

const (
	sessionIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	sessionIDLength   = 10
)

// Update describes an accepted guess, for fan-out to both participants.
// Player names are carried so consumers never need to touch the live
// session.
type Update struct {
	SessionID  model.SessionID
	Player1    string
	Player2    string
	Word       string
	NextTurn   int
	NextPlayer string
}

// Termination describes a session's terminal transition. It is produced
// exactly once per session.
type Termination struct {
	SessionID  model.SessionID
	Winner     string
	Loser      string
	Reason     string
	ScoreDelta int
	Record     *model.GameHistoryRecord
}

// GuessResult is the outcome of a guess that changed session state:
// exactly one of Accepted or Terminated is set.
type GuessResult struct {
	Accepted   *Update
	Terminated *Termination
}

// Engine drives session state. Every transition (guess, explicit end,
// disconnect) is serialized on one mutex, which is what makes the
// terminal transition exactly-once.
type Engine struct {
	mu sync.Mutex

	store      *Store
	dictionary *dictionary.Service
	accounts   *account.Service
	archiver   *history.Service
	clock      clock.Clock
	random     random.Random
	logger     *slog.Logger
	rules      Rules
}

// NewEngine creates the session engine.
func NewEngine(
	store *Store,
	dictionary *dictionary.Service,
	accounts *account.Service,
	archiver *history.Service,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
	rules Rules,
) *Engine {
	return &Engine{
		store:      store,
		dictionary: dictionary,
		accounts:   accounts,
		archiver:   archiver,
		clock:      clock,
		random:     random,
		logger:     logger,
		rules:      rules,
	}
}

// Rules returns the engine's active ruleset.
func (e *Engine) Rules() Rules {
	return e.rules
}

// snapshot copies a live session into a caller-owned value. Callers of
// the read accessors only ever see snapshots; the live pointer never
// leaves the engine mutex.
func snapshot(sess *model.Session) model.Session {
	out := *sess
	out.Moves = append([]model.Move(nil), sess.Moves...)
	return out
}

// StartSession allocates a session for the pair, or returns the existing
// one when a duplicate accept races in. The returned bool reports whether
// a new session was created.
func (e *Engine) StartSession(ctx context.Context, p1, p2 string) (model.Session, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if existing, ok := e.store.FindByPlayers(p1, p2); ok {
		return snapshot(existing), false, nil
	}

	now := e.clock.Now()
	sess := &model.Session{
		ID:            model.SessionID("GAME-" + e.random.String(sessionIDLength, sessionIDAlphabet)),
		Player1:       p1,
		Player2:       p2,
		CurrentTurn:   1,
		LastWord:      "",
		TurnStartedAt: now,
		Active:        true,
		StartTime:     now,
	}

	if err := e.store.Allocate(sess); err != nil {
		return model.Session{}, false, err
	}

	e.logger.Info("session started",
		slog.String("session_id", string(sess.ID)),
		slog.String("player1", p1),
		slog.String("player2", p2),
	)
	return snapshot(sess), true, nil
}

// Session returns a snapshot of the active session with the given id.
func (e *Engine) Session(id model.SessionID) (model.Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.store.Find(id)
	if !ok {
		return model.Session{}, false
	}
	return snapshot(sess), true
}

// SessionFor returns a snapshot of the active session a player
// participates in.
func (e *Engine) SessionFor(name string) (model.Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.store.FindByParticipant(name)
	if !ok {
		return model.Session{}, false
	}
	return snapshot(sess), true
}

// Guess runs one transition of the state machine.
//
// A non-nil error reports a rejection that left the session running
// (wrong turn, dictionary miss, duplicate, non-terminal chain mismatch).
// A result with Terminated set reports that this guess ended the session
// (timeout or attempt limit); Accepted is set when the word was taken.
func (e *Engine) Guess(ctx context.Context, id model.SessionID, player, word string) (*GuessResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.store.Find(id)
	if !ok {
		return nil, model.ErrSessionNotFound
	}

	if !sess.IsParticipant(player) || sess.TurnHolder() != player {
		return nil, model.ErrNotYourTurn
	}

	now := e.clock.Now()

	// Lazy timeout detection: only the next guess notices an expired
	// turn. The very first guess of a session is exempt.
	if len(sess.Moves) > 0 && now.Sub(sess.TurnStartedAt) > e.rules.TurnTimeLimit {
		term := e.finalize(ctx, sess, sess.Opponent(player), model.EndReasonTimeout, now)
		return &GuessResult{Terminated: term}, nil
	}

	if !e.dictionary.IsValidWord(word) {
		// Does not consume an attempt
		return nil, model.ErrNotInDictionary
	}

	if sess.WordUsed(word) {
		return nil, model.ErrWordAlreadyUsed
	}

	if e.rules.RequiredTokens > 0 && tokenCount(word) != e.rules.RequiredTokens {
		return e.failAttempt(ctx, sess, player, word, model.MoveBadTokenCount, model.ErrBadTokenCount, now)
	}

	// The session's first accepted word starts the chain unconditionally
	if sess.LastWord != "" && !chains(e.rules.ChainMode, sess.LastWord, word) {
		return e.failAttempt(ctx, sess, player, word, model.MoveMismatch, model.ErrChainMismatch, now)
	}

	e.appendMove(sess, player, word, model.MoveValid, now)
	sess.LastWord = word
	if player == sess.Player1 {
		sess.Player1Score += e.rules.ScorePerWord
	} else {
		sess.Player2Score += e.rules.ScorePerWord
	}
	sess.FlipTurn()
	sess.AttemptsInTurn = 0
	sess.TurnStartedAt = now

	return &GuessResult{Accepted: &Update{
		SessionID:  sess.ID,
		Player1:    sess.Player1,
		Player2:    sess.Player2,
		Word:       word,
		NextTurn:   sess.CurrentTurn,
		NextPlayer: sess.TurnHolder(),
	}}, nil
}

// failAttempt records a rejected attempt, terminating the session when
// the turn's attempt limit is exhausted.
func (e *Engine) failAttempt(ctx context.Context, sess *model.Session, player, word, moveResult string, ruleErr error, now time.Time) (*GuessResult, error) {
	sess.AttemptsInTurn++
	e.appendMove(sess, player, word, moveResult, now)

	if sess.AttemptsInTurn >= e.rules.MaxAttemptsPerTurn {
		term := e.finalize(ctx, sess, sess.Opponent(player), model.EndReasonAttemptsExceeded, now)
		return &GuessResult{Terminated: term}, nil
	}
	return nil, ruleErr
}

func (e *Engine) appendMove(sess *model.Session, player, word, result string, now time.Time) {
	if len(sess.Moves) >= e.rules.MaxLoggedMoves {
		return
	}
	sess.Moves = append(sess.Moves, model.Move{
		PlayerName: player,
		Guess:      word,
		Result:     result,
		PlayedAt:   now,
	})
}

// EndSession explicitly terminates a session. An empty winner defaults to
// player1, preserving the legacy END semantics.
func (e *Engine) EndSession(ctx context.Context, id model.SessionID, winner string) (*Termination, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.store.Find(id)
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	if winner == "" || !sess.IsParticipant(winner) {
		winner = sess.Player1
	}

	return e.finalize(ctx, sess, winner, model.EndReasonExplicit, e.clock.Now()), nil
}

// HandleDisconnect terminates the session the named player was in, if
// any, declaring the remaining participant winner. Returning nil, nil
// means the player held no active session.
func (e *Engine) HandleDisconnect(ctx context.Context, player string) (*Termination, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.store.FindByParticipant(player)
	if !ok {
		return nil, nil
	}

	return e.finalize(ctx, sess, sess.Opponent(player), model.EndReasonDisconnect, e.clock.Now()), nil
}

// finalize runs the terminal transition: archive, score, and release,
// in that order. Callers hold e.mu; the session is always found through
// the store first, so once the slot is released no later event can
// reach this path again for the same id.
func (e *Engine) finalize(ctx context.Context, sess *model.Session, winner, reason string, now time.Time) *Termination {
	record := e.archiver.BuildRecord(sess, winner, reason, now)

	// A failed history write or score update is logged, never fatal:
	// the session still ends and the slot is still reclaimed.
	if err := e.archiver.Archive(ctx, record); err != nil {
		e.logger.Error("history archive failed",
			slog.String("session_id", string(sess.ID)),
			slog.String("error", err.Error()),
		)
	}
	if _, err := e.accounts.AddScore(ctx, winner, e.rules.WinnerScoreDelta); err != nil {
		e.logger.Error("winner score update failed",
			slog.String("session_id", string(sess.ID)),
			slog.String("winner", winner),
			slog.String("error", err.Error()),
		)
	}

	e.store.Release(sess.ID)

	e.logger.Info("session terminated",
		slog.String("session_id", string(sess.ID)),
		slog.String("winner", winner),
		slog.String("reason", reason),
	)

	return &Termination{
		SessionID:  sess.ID,
		Winner:     winner,
		Loser:      sess.Opponent(winner),
		Reason:     reason,
		ScoreDelta: e.rules.WinnerScoreDelta,
		Record:     record,
	}
}
