// Package protocol implements the framed wire protocol spoken between the
// server and its clients: a fixed-size binary frame carrying a message
// type, an HTTP-like status code, and a pipe-delimited ASCII payload.
package protocol

import "fmt"

// MessageType identifies the operation a frame carries. The numeric values
// are part of the wire contract and must not be renumbered.
type MessageType uint32

const (
	SignupRequest     MessageType = 0
	LoginRequest      MessageType = 1
	LogoutRequest     MessageType = 2
	ListUser          MessageType = 3
	GameStart         MessageType = 5
	GameGuess         MessageType = 6
	GameTurn          MessageType = 7
	GameEnd           MessageType = 8
	GameGetTarget     MessageType = 9
	GameJoin          MessageType = 10
	GameLeave         MessageType = 11
	GameUpdate        MessageType = 12
	ChallengeRequest  MessageType = 13
	ChallengeResponse MessageType = 14
	ChallengeCancel   MessageType = 15
	ListGameHistory   MessageType = 16
	GameScore         MessageType = 17
	GameDetailRequest MessageType = 18
	GetScoreByUser    MessageType = 19
)

var messageTypeNames = map[MessageType]string{
	SignupRequest:     "SIGNUP_REQUEST",
	LoginRequest:      "LOGIN_REQUEST",
	LogoutRequest:     "LOGOUT_REQUEST",
	ListUser:          "LIST_USER",
	GameStart:         "GAME_START",
	GameGuess:         "GAME_GUESS",
	GameTurn:          "GAME_TURN",
	GameEnd:           "GAME_END",
	GameGetTarget:     "GAME_GET_TARGET",
	GameJoin:          "GAME_JOIN",
	GameLeave:         "GAME_LEAVE",
	GameUpdate:        "GAME_UPDATE",
	ChallengeRequest:  "CHALLENGE_REQUEST",
	ChallengeResponse: "CHALLENGE_RESPONSE",
	ChallengeCancel:   "CHALLENGE_CANCEL",
	ListGameHistory:   "LIST_GAME_HISTORY",
	GameScore:         "GAME_SCORE",
	GameDetailRequest: "GAME_DETAIL_REQUEST",
	GetScoreByUser:    "GET_SCORE_BY_USER_REQUEST",
}

func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint32(t))
}

// StatusCode is the HTTP-like result taxonomy carried in every frame.
type StatusCode uint32

const (
	StatusSuccess  StatusCode = 200
	StatusCreated  StatusCode = 201
	StatusAccepted StatusCode = 202

	StatusBadRequest   StatusCode = 400
	StatusUnauthorized StatusCode = 401
	StatusForbidden    StatusCode = 403
	StatusNotFound     StatusCode = 404

	StatusInternalError      StatusCode = 500
	StatusNotImplemented     StatusCode = 501
	StatusServiceUnavailable StatusCode = 503
)

// Message is one decoded protocol frame.
type Message struct {
	Type    MessageType
	Status  StatusCode
	Payload string
}

// NewMessage builds a frame with a formatted payload.
func NewMessage(t MessageType, status StatusCode, format string, args ...any) *Message {
	payload := format
	if len(args) > 0 {
		payload = fmt.Sprintf(format, args...)
	}
	return &Message{Type: t, Status: status, Payload: payload}
}
