package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedPayload is returned when a request payload cannot be decoded
// into its typed form.
var ErrMalformedPayload = errors.New("malformed request payload")

// Request is the decoded form of an inbound message payload. Payloads are
// parsed exactly once, at the dispatcher boundary; handlers only ever see
// these typed variants.
type Request interface {
	isRequest()
}

// Signup carries a new account's credentials.
type Signup struct {
	Username string
	Password string
}

// Login authenticates an account and attaches the connection to it.
type Login struct {
	Username string
	Password string
}

// Logout detaches the connection and marks the account offline.
type Logout struct {
	Username string
	Password string
}

// ListUsers requests the online-user listing. It carries no fields.
type ListUsers struct{}

// ScoreLookup requests one user's persisted score.
type ScoreLookup struct {
	Username string
}

// ScoreBoard requests users ranked by score proximity to Username.
type ScoreBoard struct {
	Username string
}

// Challenge invites Opponent to a match with Challenger.
type Challenge struct {
	Challenger string
	Opponent   string
}

// ChallengeReply accepts or rejects a pending challenge.
type ChallengeReply struct {
	Challenger string
	Opponent   string
	Accept     bool
}

// CancelChallenge withdraws a challenge before the opponent answers.
type CancelChallenge struct {
	Challenger string
	Opponent   string
}

// StartGame creates (or reuses) a session for the two named players.
type StartGame struct {
	Player1 string
	Player2 string
}

// TargetLookup asks for a session's current word and turn holder.
type TargetLookup struct {
	SessionID string
}

// TurnLookup asks which player currently holds the turn.
type TurnLookup struct {
	SessionID string
}

// Guess submits a word for the session's current turn.
type Guess struct {
	SessionID  string
	PlayerName string
	Word       string
}

// EndGame explicitly terminates a session. Winner may be empty.
type EndGame struct {
	SessionID string
	Winner    string
}

// HistoryList requests the persisted match records for one player.
type HistoryList struct {
	PlayerName string
}

// HistoryDetail requests one full match record including its move log.
type HistoryDetail struct {
	SessionID string
}

func (Signup) isRequest()          {}
func (Login) isRequest()           {}
func (Logout) isRequest()          {}
func (ListUsers) isRequest()       {}
func (ScoreLookup) isRequest()     {}
func (ScoreBoard) isRequest()      {}
func (Challenge) isRequest()       {}
func (ChallengeReply) isRequest()  {}
func (CancelChallenge) isRequest() {}
func (StartGame) isRequest()       {}
func (TargetLookup) isRequest()    {}
func (TurnLookup) isRequest()      {}
func (Guess) isRequest()           {}
func (EndGame) isRequest()         {}
func (HistoryList) isRequest()     {}
func (HistoryDetail) isRequest()   {}

// legacyTags maps the historical misspelled tags some clients still send
// onto their canonical message names.
var legacyTags = map[string]string{
	"CHALLANGE_REQUEST":  "CHALLENGE_REQUEST",
	"CHALLANGE_RESPONSE": "CHALLENGE_RESPONSE",
	"CHALLANGE_CANCEL":   "CHALLENGE_CANCEL",
}

// splitPayload splits a pipe-delimited payload into fields, dropping an
// optional leading tag naming the message type. Clients are inconsistent
// about including the tag, so both forms are accepted.
func splitPayload(t MessageType, payload string) []string {
	fields := strings.Split(payload, "|")
	if len(fields) > 0 {
		tag := fields[0]
		if canonical, ok := legacyTags[tag]; ok {
			tag = canonical
		}
		if tag == t.String() {
			fields = fields[1:]
		}
	}
	return fields
}

func fieldError(t MessageType, want int, got []string) error {
	return fmt.Errorf("%w: %s expects %d fields, got %d", ErrMalformedPayload, t, want, len(got))
}

// ParseRequest decodes a payload into its typed request. Unknown message
// types and field-count mismatches yield ErrMalformedPayload.
func ParseRequest(t MessageType, payload string) (Request, error) {
	fields := splitPayload(t, payload)

	// An all-empty split means an empty payload
	empty := len(fields) == 1 && fields[0] == ""

	switch t {
	case SignupRequest, LoginRequest, LogoutRequest:
		if len(fields) != 2 || fields[0] == "" || fields[1] == "" {
			return nil, fieldError(t, 2, fields)
		}
		switch t {
		case SignupRequest:
			return Signup{Username: fields[0], Password: fields[1]}, nil
		case LoginRequest:
			return Login{Username: fields[0], Password: fields[1]}, nil
		default:
			return Logout{Username: fields[0], Password: fields[1]}, nil
		}

	case ListUser:
		return ListUsers{}, nil

	case GetScoreByUser:
		if empty || len(fields) != 1 {
			return nil, fieldError(t, 1, fields)
		}
		return ScoreLookup{Username: fields[0]}, nil

	case GameScore:
		if empty || len(fields) != 1 {
			return nil, fieldError(t, 1, fields)
		}
		return ScoreBoard{Username: fields[0]}, nil

	case ChallengeRequest:
		if len(fields) != 2 || fields[0] == "" || fields[1] == "" {
			return nil, fieldError(t, 2, fields)
		}
		return Challenge{Challenger: fields[0], Opponent: fields[1]}, nil

	case ChallengeResponse:
		if len(fields) != 3 || fields[0] == "" || fields[1] == "" {
			return nil, fieldError(t, 3, fields)
		}
		return ChallengeReply{
			Challenger: fields[0],
			Opponent:   fields[1],
			Accept:     strings.EqualFold(fields[2], "ACCEPT"),
		}, nil

	case ChallengeCancel:
		if len(fields) != 2 || fields[0] == "" || fields[1] == "" {
			return nil, fieldError(t, 2, fields)
		}
		return CancelChallenge{Challenger: fields[0], Opponent: fields[1]}, nil

	case GameStart:
		if len(fields) != 2 || fields[0] == "" || fields[1] == "" {
			return nil, fieldError(t, 2, fields)
		}
		return StartGame{Player1: fields[0], Player2: fields[1]}, nil

	case GameGetTarget:
		if empty || len(fields) != 1 {
			return nil, fieldError(t, 1, fields)
		}
		return TargetLookup{SessionID: fields[0]}, nil

	case GameTurn:
		if empty || len(fields) != 1 {
			return nil, fieldError(t, 1, fields)
		}
		return TurnLookup{SessionID: fields[0]}, nil

	case GameGuess:
		if len(fields) != 3 || fields[0] == "" || fields[1] == "" || fields[2] == "" {
			return nil, fieldError(t, 3, fields)
		}
		return Guess{SessionID: fields[0], PlayerName: fields[1], Word: fields[2]}, nil

	case GameEnd:
		// Winner field is optional
		if empty || fields[0] == "" {
			return nil, fieldError(t, 1, fields)
		}
		req := EndGame{SessionID: fields[0]}
		if len(fields) > 1 {
			req.Winner = fields[1]
		}
		return req, nil

	case ListGameHistory:
		if empty || len(fields) != 1 {
			return nil, fieldError(t, 1, fields)
		}
		return HistoryList{PlayerName: fields[0]}, nil

	case GameDetailRequest:
		if empty || len(fields) != 1 {
			return nil, fieldError(t, 1, fields)
		}
		return HistoryDetail{SessionID: fields[0]}, nil
	}

	return nil, fmt.Errorf("%w: unsupported message type %s", ErrMalformedPayload, t)
}
