package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hmngo/wordchain/internal/model"
	"github.com/hmngo/wordchain/internal/protocol"
	"github.com/hmngo/wordchain/internal/registry"
	"github.com/hmngo/wordchain/internal/services/account"
	"github.com/hmngo/wordchain/internal/services/game"
	"github.com/hmngo/wordchain/internal/services/history"
)

// wireTimeLayout is the timestamp format used in history payloads,
// matching the legacy database format.
const wireTimeLayout = "2006-01-02 15:04:05"

// closestScoreLimit caps the GAME_SCORE listing.
const closestScoreLimit = 10

// Dispatcher routes decoded requests into the services and writes the
// responses. It runs synchronously on each connection's read goroutine.
type Dispatcher struct {
	accounts *account.Service
	engine   *game.Engine
	broker   *game.Broker
	archiver *history.Service
	registry *registry.Registry
	logger   *slog.Logger
}

// NewDispatcher wires the request router.
func NewDispatcher(
	accounts *account.Service,
	engine *game.Engine,
	broker *game.Broker,
	archiver *history.Service,
	reg *registry.Registry,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		accounts: accounts,
		engine:   engine,
		broker:   broker,
		archiver: archiver,
		registry: reg,
		logger:   logger,
	}
}

// statusFor maps service errors onto the wire status taxonomy.
func statusFor(err error) protocol.StatusCode {
	switch {
	case errors.Is(err, model.ErrInvalidCredentials):
		return protocol.StatusUnauthorized
	case errors.Is(err, model.ErrNotYourTurn):
		return protocol.StatusForbidden
	case errors.Is(err, model.ErrUserNotFound),
		errors.Is(err, model.ErrSessionNotFound),
		errors.Is(err, model.ErrChallengeNotFound):
		return protocol.StatusNotFound
	case errors.Is(err, model.ErrRegistryFull),
		errors.Is(err, model.ErrNoSessionSlots):
		return protocol.StatusServiceUnavailable
	case errors.Is(err, model.ErrUserExists),
		errors.Is(err, model.ErrInvalidUsername),
		errors.Is(err, model.ErrAlreadyConnected),
		errors.Is(err, model.ErrPlayerOffline),
		errors.Is(err, model.ErrAlreadyInSession),
		errors.Is(err, model.ErrChallengePending),
		errors.Is(err, model.ErrChallengeSelf),
		errors.Is(err, model.ErrNotInDictionary),
		errors.Is(err, model.ErrWordAlreadyUsed),
		errors.Is(err, model.ErrChainMismatch),
		errors.Is(err, model.ErrBadTokenCount),
		errors.Is(err, protocol.ErrMalformedPayload):
		return protocol.StatusBadRequest
	default:
		return protocol.StatusInternalError
	}
}

func (d *Dispatcher) reply(cl *Client, t protocol.MessageType, status protocol.StatusCode, format string, args ...any) {
	if err := cl.Send(protocol.NewMessage(t, status, format, args...)); err != nil {
		d.logger.Warn("reply write failed",
			slog.String("remote", cl.RemoteAddr()),
			slog.String("type", t.String()),
			slog.String("error", err.Error()),
		)
	}
}

func (d *Dispatcher) replyErr(cl *Client, t protocol.MessageType, err error) {
	d.reply(cl, t, statusFor(err), "%s", err.Error())
}

// sendTo delivers a frame to a named player's connection, best effort.
func (d *Dispatcher) sendTo(name string, msg *protocol.Message) {
	conn, ok := d.registry.Lookup(name)
	if !ok {
		return
	}
	if err := conn.Send(msg); err != nil {
		d.logger.Warn("fan-out write failed",
			slog.String("player", name),
			slog.String("type", msg.Type.String()),
			slog.String("error", err.Error()),
		)
	}
}

// Handle processes one inbound frame.
func (d *Dispatcher) Handle(ctx context.Context, cl *Client, msg *protocol.Message) {
	if msg.Type == protocol.GameUpdate {
		// Server-to-client only
		d.reply(cl, protocol.GameUpdate, protocol.StatusNotImplemented, "GAME_UPDATE is not a client request")
		return
	}

	req, err := protocol.ParseRequest(msg.Type, msg.Payload)
	if err != nil {
		d.reply(cl, msg.Type, protocol.StatusBadRequest, "%s", err.Error())
		return
	}

	switch req := req.(type) {
	case protocol.Signup:
		d.handleSignup(ctx, cl, req)
	case protocol.Login:
		d.handleLogin(ctx, cl, req)
	case protocol.Logout:
		d.handleLogout(ctx, cl, req)
	case protocol.ListUsers:
		d.handleListUsers(ctx, cl)
	case protocol.ScoreLookup:
		d.handleScoreLookup(ctx, cl, req)
	case protocol.ScoreBoard:
		d.handleScoreBoard(ctx, cl, req)
	case protocol.Challenge:
		d.handleChallenge(ctx, cl, req)
	case protocol.ChallengeReply:
		d.handleChallengeReply(ctx, cl, req)
	case protocol.CancelChallenge:
		d.handleChallengeCancel(ctx, cl, req)
	case protocol.StartGame:
		d.handleStartGame(ctx, cl, req)
	case protocol.TargetLookup:
		d.handleTargetLookup(cl, req)
	case protocol.TurnLookup:
		d.handleTurnLookup(cl, req)
	case protocol.Guess:
		d.handleGuess(ctx, cl, req)
	case protocol.EndGame:
		d.handleEndGame(ctx, cl, req)
	case protocol.HistoryList:
		d.handleHistoryList(ctx, cl, req)
	case protocol.HistoryDetail:
		d.handleHistoryDetail(ctx, cl, req)
	default:
		d.reply(cl, msg.Type, protocol.StatusBadRequest, "unsupported message type %s", msg.Type)
	}
}

func (d *Dispatcher) handleSignup(ctx context.Context, cl *Client, req protocol.Signup) {
	if err := d.accounts.Signup(ctx, req.Username, req.Password); err != nil {
		d.replyErr(cl, protocol.SignupRequest, err)
		return
	}
	d.reply(cl, protocol.SignupRequest, protocol.StatusCreated, "SIGNUP_SUCCESS")
}

func (d *Dispatcher) handleLogin(ctx context.Context, cl *Client, req protocol.Login) {
	if cl.Name() != "" {
		d.reply(cl, protocol.LoginRequest, protocol.StatusBadRequest, "connection already logged in as %s", cl.Name())
		return
	}
	// Checked before any account mutation so a duplicate login cannot
	// knock the established connection's online flag over in rollback.
	if d.registry.Online(req.Username) {
		d.replyErr(cl, protocol.LoginRequest, model.ErrAlreadyConnected)
		return
	}

	if err := d.accounts.Login(ctx, req.Username, req.Password); err != nil {
		d.replyErr(cl, protocol.LoginRequest, err)
		return
	}
	if err := d.registry.Register(req.Username, cl); err != nil {
		// Roll the online flag back so the account is not stranded. When
		// another live connection owns the name, the flag is theirs to keep.
		if !errors.Is(err, model.ErrAlreadyConnected) {
			if offErr := d.accounts.SetOffline(ctx, req.Username); offErr != nil {
				d.logger.Error("login rollback failed",
					slog.String("username", req.Username),
					slog.String("error", offErr.Error()),
				)
			}
		}
		d.replyErr(cl, protocol.LoginRequest, err)
		return
	}

	cl.setName(req.Username)
	d.reply(cl, protocol.LoginRequest, protocol.StatusSuccess, "LOGIN_SUCCESS")
}

func (d *Dispatcher) handleLogout(ctx context.Context, cl *Client, req protocol.Logout) {
	if err := d.accounts.Logout(ctx, req.Username, req.Password); err != nil {
		d.replyErr(cl, protocol.LogoutRequest, err)
		return
	}

	if cl.Name() == req.Username {
		d.teardown(ctx, cl, req.Username)
	} else {
		// Logout by credentials from another connection still drops the
		// named player's live state. The victim connection stays open
		// but loses its name binding so it can log in again.
		d.cascade(ctx, req.Username)
		if conn, ok := d.registry.Lookup(req.Username); ok {
			if victim, ok := conn.(*Client); ok {
				victim.setName("")
			}
		}
		d.registry.Unregister(req.Username)
	}
	d.reply(cl, protocol.LogoutRequest, protocol.StatusSuccess, "LOGOUT_SUCCESS")
}

func (d *Dispatcher) handleListUsers(ctx context.Context, cl *Client) {
	users, err := d.accounts.OnlineUsers(ctx)
	if err != nil {
		d.replyErr(cl, protocol.ListUser, err)
		return
	}
	d.reply(cl, protocol.ListUser, protocol.StatusSuccess, "%s", formatUserList(users))
}

func (d *Dispatcher) handleScoreLookup(ctx context.Context, cl *Client, req protocol.ScoreLookup) {
	score, err := d.accounts.Score(ctx, req.Username)
	if err != nil {
		d.replyErr(cl, protocol.GetScoreByUser, err)
		return
	}
	d.reply(cl, protocol.GetScoreByUser, protocol.StatusSuccess, "%s,%d", req.Username, score)
}

func (d *Dispatcher) handleScoreBoard(ctx context.Context, cl *Client, req protocol.ScoreBoard) {
	users, err := d.accounts.ClosestScores(ctx, req.Username, closestScoreLimit)
	if err != nil {
		d.replyErr(cl, protocol.GameScore, err)
		return
	}
	d.reply(cl, protocol.GameScore, protocol.StatusSuccess, "%s", formatUserList(users))
}

func (d *Dispatcher) handleChallenge(ctx context.Context, cl *Client, req protocol.Challenge) {
	if cl.Name() == "" {
		d.reply(cl, protocol.ChallengeRequest, protocol.StatusUnauthorized, "login required")
		return
	}
	if req.Challenger != cl.Name() {
		d.reply(cl, protocol.ChallengeRequest, protocol.StatusForbidden, "challenger must be the logged-in player")
		return
	}

	ch, err := d.broker.Propose(ctx, req.Challenger, req.Opponent)
	if err != nil {
		d.replyErr(cl, protocol.ChallengeRequest, err)
		return
	}

	d.sendTo(ch.Opponent, protocol.NewMessage(
		protocol.ChallengeRequest, protocol.StatusAccepted,
		"%s|%s", ch.Challenger, ch.Opponent,
	))
	d.reply(cl, protocol.ChallengeRequest, protocol.StatusAccepted, "CHALLENGE_SENT")
}

func (d *Dispatcher) handleChallengeReply(ctx context.Context, cl *Client, req protocol.ChallengeReply) {
	ch, err := d.broker.Respond(ctx, req.Challenger, req.Opponent)
	if err != nil {
		d.replyErr(cl, protocol.ChallengeResponse, err)
		return
	}

	if !req.Accept {
		d.sendTo(ch.Challenger, protocol.NewMessage(
			protocol.ChallengeResponse, protocol.StatusForbidden,
			"%s|REJECT", ch.Opponent,
		))
		d.reply(cl, protocol.ChallengeResponse, protocol.StatusSuccess, "CHALLENGE_REJECTED")
		return
	}

	d.startSession(ctx, cl, protocol.ChallengeResponse, ch.Challenger, ch.Opponent)
}

func (d *Dispatcher) handleChallengeCancel(ctx context.Context, cl *Client, req protocol.CancelChallenge) {
	if err := d.broker.Cancel(ctx, req.Challenger, req.Opponent); err != nil {
		d.replyErr(cl, protocol.ChallengeCancel, err)
		return
	}
	d.sendTo(req.Opponent, protocol.NewMessage(
		protocol.ChallengeCancel, protocol.StatusSuccess,
		"%s|%s", req.Challenger, req.Opponent,
	))
	d.reply(cl, protocol.ChallengeCancel, protocol.StatusSuccess, "CHALLENGE_CANCELLED")
}

func (d *Dispatcher) handleStartGame(ctx context.Context, cl *Client, req protocol.StartGame) {
	if !d.registry.Online(req.Player1) || !d.registry.Online(req.Player2) {
		d.replyErr(cl, protocol.GameStart, model.ErrPlayerOffline)
		return
	}
	d.startSession(ctx, cl, protocol.GameStart, req.Player1, req.Player2)
}

// startSession allocates (or reuses) the pair's session and notifies
// both participants with the session snapshot.
func (d *Dispatcher) startSession(ctx context.Context, cl *Client, replyType protocol.MessageType, p1, p2 string) {
	sess, created, err := d.engine.StartSession(ctx, p1, p2)
	if err != nil {
		d.replyErr(cl, replyType, err)
		return
	}

	status := protocol.StatusSuccess
	if created {
		status = protocol.StatusCreated
	}
	notice := protocol.NewMessage(
		protocol.GameStart, status,
		"%s|%s|%d", sess.ID, sess.LastWord, sess.CurrentTurn,
	)
	d.sendTo(sess.Player1, notice)
	d.sendTo(sess.Player2, notice)

	if replyType != protocol.GameStart || (cl.Name() != sess.Player1 && cl.Name() != sess.Player2) {
		d.reply(cl, replyType, status, "%s|%s|%d", sess.ID, sess.LastWord, sess.CurrentTurn)
	}
}

func (d *Dispatcher) handleTargetLookup(cl *Client, req protocol.TargetLookup) {
	sess, ok := d.engine.Session(model.SessionID(req.SessionID))
	if !ok {
		d.replyErr(cl, protocol.GameGetTarget, model.ErrSessionNotFound)
		return
	}
	d.reply(cl, protocol.GameGetTarget, protocol.StatusSuccess, "%s|%d", sess.LastWord, sess.CurrentTurn)
}

func (d *Dispatcher) handleTurnLookup(cl *Client, req protocol.TurnLookup) {
	sess, ok := d.engine.Session(model.SessionID(req.SessionID))
	if !ok {
		d.replyErr(cl, protocol.GameTurn, model.ErrSessionNotFound)
		return
	}
	d.reply(cl, protocol.GameTurn, protocol.StatusSuccess, "%s|%s", sess.TurnHolder(), sess.LastWord)
}

func (d *Dispatcher) handleGuess(ctx context.Context, cl *Client, req protocol.Guess) {
	res, err := d.engine.Guess(ctx, model.SessionID(req.SessionID), req.PlayerName, req.Word)
	if err != nil {
		d.replyErr(cl, protocol.GameGuess, err)
		return
	}

	if res.Terminated != nil {
		d.broadcastTermination(res.Terminated)
		return
	}

	update := protocol.NewMessage(
		protocol.GameUpdate, protocol.StatusSuccess,
		"OK|%s|%d", res.Accepted.Word, res.Accepted.NextTurn,
	)
	d.sendTo(res.Accepted.Player1, update)
	d.sendTo(res.Accepted.Player2, update)
}

func (d *Dispatcher) handleEndGame(ctx context.Context, cl *Client, req protocol.EndGame) {
	term, err := d.engine.EndSession(ctx, model.SessionID(req.SessionID), req.Winner)
	if err != nil {
		d.replyErr(cl, protocol.GameEnd, err)
		return
	}
	d.broadcastTermination(term)
}

func (d *Dispatcher) handleHistoryList(ctx context.Context, cl *Client, req protocol.HistoryList) {
	records, err := d.archiver.RecordsForPlayer(ctx, req.PlayerName)
	if err != nil {
		d.replyErr(cl, protocol.ListGameHistory, err)
		return
	}

	summaries := make([]string, 0, len(records))
	for _, r := range records {
		summaries = append(summaries, fmt.Sprintf("%s,%s,%s,%s,%s",
			r.SessionID, r.Player1, r.Player2, r.Winner, r.EndReason))
	}
	d.reply(cl, protocol.ListGameHistory, protocol.StatusSuccess, "%s", strings.Join(summaries, ";"))
}

func (d *Dispatcher) handleHistoryDetail(ctx context.Context, cl *Client, req protocol.HistoryDetail) {
	record, err := d.archiver.Record(ctx, model.SessionID(req.SessionID))
	if err != nil {
		d.replyErr(cl, protocol.GameDetailRequest, err)
		return
	}

	moves := make([]string, 0, len(record.Moves))
	for _, m := range record.Moves {
		moves = append(moves, fmt.Sprintf("%s,%s,%s", m.PlayerName, m.Guess, m.Result))
	}
	d.reply(cl, protocol.GameDetailRequest, protocol.StatusSuccess,
		"%s|%s|%s|%d|%d|%s|%s|%s|%s|%s|%s",
		record.SessionID, record.Player1, record.Player2,
		record.Player1Score, record.Player2Score,
		record.Winner, record.FinalWord, record.EndReason,
		record.StartTime.UTC().Format(wireTimeLayout),
		record.EndTime.UTC().Format(wireTimeLayout),
		strings.Join(moves, ";"),
	)
}

// broadcastTermination sends the terminal GAME_END frame to both
// participants, best effort.
func (d *Dispatcher) broadcastTermination(term *game.Termination) {
	notice := protocol.NewMessage(
		protocol.GameEnd, protocol.StatusSuccess,
		"%s|%d", term.Winner, term.ScoreDelta,
	)
	d.sendTo(term.Winner, notice)
	d.sendTo(term.Loser, notice)
}

// cascade runs the live-state teardown for a player who is going away:
// pending challenges dropped, any active session terminated with the
// opponent declared winner.
func (d *Dispatcher) cascade(ctx context.Context, name string) {
	d.broker.DropFor(name)

	term, err := d.engine.HandleDisconnect(ctx, name)
	if err != nil {
		d.logger.Error("disconnect cascade failed",
			slog.String("player", name),
			slog.String("error", err.Error()),
		)
		return
	}
	if term != nil {
		d.broadcastTermination(term)
	}
}

// teardown detaches a logged-in connection: cascade, then registry and
// name cleanup. The online flag is assumed already handled by the caller.
func (d *Dispatcher) teardown(ctx context.Context, cl *Client, name string) {
	d.cascade(ctx, name)
	d.registry.Unregister(name)
	cl.setName("")
}

// Disconnect runs the full disconnect path for a closed connection.
func (d *Dispatcher) Disconnect(ctx context.Context, cl *Client) {
	name := cl.Name()
	if name == "" {
		return
	}

	d.cascade(ctx, name)
	d.registry.Unregister(name)
	cl.setName("")

	if err := d.accounts.SetOffline(ctx, name); err != nil {
		d.logger.Error("failed to mark player offline",
			slog.String("player", name),
			slog.String("error", err.Error()),
		)
	}
	d.logger.Info("player disconnected", slog.String("player", name))
}

// formatUserList renders users as "name,score" records joined by ";".
func formatUserList(users []*model.User) string {
	records := make([]string, 0, len(users))
	for _, u := range users {
		records = append(records, fmt.Sprintf("%s,%d", u.Username, u.Score))
	}
	return strings.Join(records, ";")
}
