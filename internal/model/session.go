package model

import "time"

// SessionID uniquely identifies a live match
type SessionID string

// Move outcome tags recorded in a session's move log
const (
	MoveValid         = "VALID"
	MoveMismatch      = "MISMATCH"
	MoveBadTokenCount = "INVALID_TOKEN_COUNT"
)

// End reasons recorded when a session terminates
const (
	EndReasonTimeout          = "TIMEOUT"
	EndReasonAttemptsExceeded = "ATTEMPTS_EXCEEDED"
	EndReasonDisconnect       = "DISCONNECT"
	EndReasonExplicit         = "END"
)

// Move is one guess submission within a session, accepted or rejected.
// The log is append-only and chronological.
type Move struct {
	PlayerName string    `json:"player_name"`
	Guess      string    `json:"guess"`
	Result     string    `json:"result"`
	PlayedAt   time.Time `json:"played_at"`
}

// Session is one active two-player match. Instances are owned exclusively
// by the session store; everything else refers to them by id or slot index.
type Session struct {
	ID          SessionID
	Player1     string
	Player2     string
	CurrentTurn int // 1 or 2
	LastWord    string

	TurnStartedAt  time.Time
	AttemptsInTurn int

	Player1Score int
	Player2Score int

	Active    bool
	StartTime time.Time
	Moves     []Move
}

// IsParticipant reports whether name is one of the session's two players.
func (s *Session) IsParticipant(name string) bool {
	return name == s.Player1 || name == s.Player2
}

// TurnHolder returns the name of the player whose turn it is.
func (s *Session) TurnHolder() string {
	if s.CurrentTurn == 2 {
		return s.Player2
	}
	return s.Player1
}

// Opponent returns the other participant's name, or "" if name is not a
// participant.
func (s *Session) Opponent(name string) string {
	switch name {
	case s.Player1:
		return s.Player2
	case s.Player2:
		return s.Player1
	}
	return ""
}

// WordUsed reports whether word already appears in the move log.
func (s *Session) WordUsed(word string) bool {
	for _, m := range s.Moves {
		if m.Guess == word {
			return true
		}
	}
	return false
}

// FlipTurn passes the turn to the other player.
func (s *Session) FlipTurn() {
	if s.CurrentTurn == 1 {
		s.CurrentTurn = 2
	} else {
		s.CurrentTurn = 1
	}
}
